// Package host implements the Plugin Host orchestrator: feature
// negotiation, port wiring, and per-audio-callback processing for a
// single plugin instance.
package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kestrelaudio/lv2host/pkg/atom"
	"github.com/kestrelaudio/lv2host/pkg/driver"
	"github.com/kestrelaudio/lv2host/pkg/midi"
	"github.com/kestrelaudio/lv2host/pkg/pluginapi"
	"github.com/kestrelaudio/lv2host/pkg/port"
	"github.com/kestrelaudio/lv2host/pkg/urid"
	"github.com/kestrelaudio/lv2host/pkg/worker"
)

// State is the host's lifecycle state, per spec.md §4.4.4.
type State int32

const (
	Uninitialized State = iota
	Initialized
	Running
	Stopped
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// defaultRequiredAtomSize is the floor spec.md §4.4.1 step 4 specifies
// for event-port buffer sizing.
const defaultRequiredAtomSize = 8192

// Options configures a Host at Open.
type Options struct {
	Logger                 *logrus.Logger
	Tracer                 trace.Tracer
	Meter                  metric.Meter
	MaxBlockFrames         int
	ResourceSampleInterval time.Duration
}

// Host orchestrates one plugin instance: feature negotiation, port
// wiring, and per-audio-callback processing.
type Host struct {
	logger   *logrus.Logger
	tracer   trace.Tracer
	meter    metric.Meter
	opensCtr metric.Int64Counter

	world  pluginapi.World
	desc   pluginapi.Descriptor
	handle pluginapi.Handle

	urids *urid.Table

	ports          []*port.Port
	channelOfPort  map[int]int // audio port index -> declared channel
	requiredAtomSize int
	maxBlockFrames int
	sampleRate     float64

	midiURID uint32
	// midiTimelines holds a decoded-event timeline per MIDI-capable
	// event-output port, populated from the raw atom bytes the plugin
	// produced each Process call. Nil for ports that are not
	// MIDI-capable or not outputs.
	midiTimelines map[int]*midi.Queue

	pump    *worker.Pump
	workExt pluginapi.WorkExtension
	stateExt pluginapi.StateExtension

	drv driver.Driver

	state atomic.Int32

	// heap-pinned feature payloads, kept alive for the plugin's lifetime
	uridMapData        *pluginapi.URIDMapData
	uridUnmapData      *pluginapi.URIDUnmapData
	optionsData        *pluginapi.OptionsData
	workerScheduleData *pluginapi.WorkerScheduleData
	statePathData      *pluginapi.StatePathData

	metrics        *metricsSet
	healthWorkerOK atomic.Bool
	shutdown       atomic.Bool

	resourceStop     chan struct{}
	resourceWG       sync.WaitGroup
	resourceInterval time.Duration

	seqURID uint32

	// scratchIn/scratchOut are preallocated per logical audio channel
	// (not per port), separately for each direction so an in-place
	// filter's output connection never aliases its input connection.
	// Allocated once from Start, never reallocated on the audio thread.
	scratchIn    [][]float32
	scratchOut   [][]float32
	scratchReady bool

	lastResponsesDropped float64
	lastOutboundDropped  float64
}

// Open performs the open sequence described in spec.md §4.4.1: resolve
// the plugin, seed the URID table, classify ports, negotiate features,
// instantiate, optionally start the worker, connect non-audio ports,
// and activate.
func Open(uri string, sampleRate float64, world pluginapi.World, opts Options) (*Host, error) {
	h := &Host{
		world:          world,
		urids:          urid.Seed(urid.New()),
		sampleRate:     sampleRate,
		maxBlockFrames: opts.MaxBlockFrames,
		channelOfPort:  make(map[int]int),
		midiTimelines:  make(map[int]*midi.Queue),
		metrics:        newMetricsSet(),
		resourceInterval: opts.ResourceSampleInterval,
	}
	if h.maxBlockFrames <= 0 {
		h.maxBlockFrames = 4096
	}
	h.logger = opts.Logger
	if h.logger == nil {
		h.logger = logrus.New()
	}
	h.tracer = opts.Tracer
	h.meter = opts.Meter
	if h.meter != nil {
		if ctr, err := h.meter.Int64Counter("lv2host_opens_total"); err == nil {
			h.opensCtr = ctr
		}
	}

	ctx, span := h.startSpan(context.Background(), "host.Open")
	defer span.End()

	desc, err := world.Resolve(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPluginNotFound, uri, err)
	}
	h.desc = desc

	for _, req := range desc.RequiredFeatures() {
		if !offeredFeatureURIs[req] {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFeature, req)
		}
	}

	h.seqURID = h.urids.Map(urid.URISequence)
	h.midiURID = h.urids.Map(urid.URIMidiEvent)

	h.requiredAtomSize = defaultRequiredAtomSize
	for _, pp := range desc.Ports() {
		if min, ok := pp.MinimumEventBufferSize(); ok && min > h.requiredAtomSize {
			h.requiredAtomSize = min
		}
	}

	if err := h.buildPorts(desc.Ports()); err != nil {
		return nil, err
	}

	features := h.buildFeatures()
	handle, err := desc.Instantiate(sampleRate, features)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInstantiationFailed, err)
	}
	h.handle = handle

	if ext := handle.Extension(pluginapi.WorkExtensionURI); ext != nil {
		if we, ok := ext.(pluginapi.WorkExtension); ok {
			h.workExt = we
			h.pump, err = worker.New(h.dispatchWork, h.deliverResponse)
			if err != nil {
				return nil, fmt.Errorf("host: worker pump: %w", err)
			}
			if err := h.pump.Start(); err != nil {
				return nil, fmt.Errorf("host: worker start: %w", err)
			}
			h.healthWorkerOK.Store(true)
		}
	}
	if ext := handle.Extension(pluginapi.StateExtensionURI); ext != nil {
		if se, ok := ext.(pluginapi.StateExtension); ok {
			h.stateExt = se
		}
	}

	if err := h.connectNonAudioPorts(); err != nil {
		return nil, fmt.Errorf("host: connect ports: %w", err)
	}

	if err := h.handle.Activate(); err != nil {
		return nil, fmt.Errorf("host: activate: %w", err)
	}

	h.state.Store(int32(Initialized))
	if h.opensCtr != nil {
		h.opensCtr.Add(ctx, 1)
	}
	h.logger.WithContext(ctx).WithField("uri", uri).Info("plugin opened")
	return h, nil
}

func (h *Host) buildPorts(declared []pluginapi.Port) error {
	h.ports = make([]*port.Port, len(declared))
	nextInputChannel, nextOutputChannel := 0, 0
	for i, pp := range declared {
		cls := pp.Classify()
		idx := pp.Index()
		switch {
		case cls.Has(port.Audio):
			h.ports[i] = port.NewAudio(idx, "", cls.Has(port.Input))
			if ch, ok := pp.ChannelDesignation(); ok {
				h.channelOfPort[idx] = ch
			} else if cls.Has(port.Input) {
				h.channelOfPort[idx] = nextInputChannel
				nextInputChannel++
			} else {
				h.channelOfPort[idx] = nextOutputChannel
				nextOutputChannel++
			}
		case cls.Has(port.Control):
			h.ports[i] = port.NewControl(idx, "", pp.Minimum(), pp.Maximum(), pp.Default(), cls.Has(port.Input))
		case cls.Has(port.Event):
			buf := port.NewEventBuffer(h.requiredAtomSize)
			kind := atom.Coalescing
			if cls.Has(port.MIDICapable) {
				kind = atom.Lossless
			}
			ch, err := atom.New(kind, h.requiredAtomSize, h.requiredAtomSize)
			if err != nil {
				return fmt.Errorf("host: atom channel for port %d: %w", idx, err)
			}
			h.ports[i] = port.NewEvent(idx, "", cls.Has(port.Input), cls.Has(port.MIDICapable), buf, ch)
			if cls.Has(port.MIDICapable) && cls.Has(port.Output) {
				h.midiTimelines[idx] = midi.NewQueue()
			}
		default:
			h.ports[i] = &port.Port{Index: idx, Class: cls}
		}
	}
	return nil
}

func (h *Host) connectNonAudioPorts() error {
	for _, p := range h.ports {
		switch {
		case p.Class.Has(port.Control):
			if err := h.handle.Connect(p.Index, p.ControlPointer()); err != nil {
				return err
			}
		case p.Class.Has(port.Event):
			if err := h.handle.Connect(p.Index, p.EventBuffer.PointerTo()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Start transitions Initialized/Stopped -> Running: the driver begins
// invoking Process as its Callback.
func (h *Host) Start(d driver.Driver) error {
	st := State(h.state.Load())
	if st != Initialized && st != Stopped {
		return fmt.Errorf("host: Start: %w (state=%s)", ErrNotReady, st)
	}
	_, span := h.startSpan(context.Background(), "host.Start")
	defer span.End()

	h.drv = d
	h.allocateScratch(stereoChannels, d.FramesPerBurst())
	h.startResourceSampler()
	if err := d.Start(h.Process); err != nil {
		return fmt.Errorf("host: driver start: %w", err)
	}
	h.state.Store(int32(Running))
	return nil
}

// Stop transitions Running -> Stopped: the driver halts, and in-flight
// worker responses are drained before returning.
func (h *Host) Stop() error {
	if State(h.state.Load()) != Running {
		return nil
	}
	_, span := h.startSpan(context.Background(), "host.Stop")
	defer span.End()

	if h.drv != nil {
		if err := h.drv.Stop(); err != nil {
			return fmt.Errorf("host: driver stop: %w", err)
		}
	}
	if h.pump != nil {
		h.pump.Drain(h.requiredAtomSize)
	}
	h.stopResourceSampler()
	h.state.Store(int32(Stopped))
	return nil
}

// Close transitions any state to Disposed. It is idempotent and joins
// the worker before freeing any resource the worker may observe.
func (h *Host) Close() error {
	if State(h.state.Load()) == Disposed {
		return nil
	}
	_, span := h.startSpan(context.Background(), "host.Close")
	defer span.End()

	h.shutdown.Store(true)
	if h.pump != nil {
		h.pump.Stop()
		h.healthWorkerOK.Store(false)
	}
	if h.handle != nil {
		_ = h.handle.Deactivate()
		_ = h.handle.Free()
	}
	h.state.Store(int32(Disposed))
	return nil
}

// State returns the host's current lifecycle state.
func (h *Host) State() State { return State(h.state.Load()) }

func (h *Host) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if h.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.Start(ctx, name)
}
