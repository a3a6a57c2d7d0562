// Package port describes a plugin's port topology: classification,
// control scalars, and the event buffers and atom channels event ports
// own. Ports are created during plugin open, immutable in classification
// thereafter, and destroyed when the plugin closes.
package port

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/kestrelaudio/lv2host/pkg/atom"
)

// Class is a classification bitset. The audio-thread hot loop branches
// on this plain-data bitset and never traverses a virtual table.
type Class uint8

const (
	Audio Class = 1 << iota
	Control
	Event
	Input
	Output
	MIDICapable
)

func (c Class) Has(flag Class) bool { return c&flag != 0 }

// Port is a single plugin port descriptor.
type Port struct {
	Index        int
	Class        Class
	Default      float64
	Min          float64
	Max          float64
	Name         string

	// control holds the current scalar value for a Control port, stored
	// atomically (as float64 bits) so the audio thread can read it on
	// the hot path without locking while the UI thread writes it.
	//
	// Deliberately float64, not the 32-bit float a real LV2 control port
	// ABI uses: the host's public SetControl/ControlValue surface is
	// intentionally generalized to full precision rather than the
	// literal wire width, and ControlPointer hands the plugin the whole
	// 8-byte word. A pluginapi.Handle that needs the exact LV2 ABI is
	// responsible for its own float32 narrowing at the boundary, the way
	// examples/fixtureplugin reads it back via math.Float64frombits.
	control atomic.Uint64

	// Event-port-only state: an owning sequence buffer and its Atom
	// Channel. Nil for audio/control ports.
	EventBuffer *EventBuffer
	Channel     *atom.Channel
}

// NewControl creates a control port with the given default value.
func NewControl(index int, name string, min, max, def float64, input bool) *Port {
	p := &Port{
		Index:   index,
		Class:   Control | direction(input),
		Name:    name,
		Min:     min,
		Max:     max,
		Default: def,
	}
	p.SetControlValue(def)
	return p
}

// NewAudio creates an audio port.
func NewAudio(index int, name string, input bool) *Port {
	return &Port{Index: index, Class: Audio | direction(input), Name: name}
}

// NewEvent creates an event port backed by buf and ch. midiCapable marks
// whether the plugin declared this port as able to carry MIDI.
func NewEvent(index int, name string, input, midiCapable bool, buf *EventBuffer, ch *atom.Channel) *Port {
	cls := Event | direction(input)
	if midiCapable {
		cls |= MIDICapable
	}
	return &Port{Index: index, Class: cls, Name: name, EventBuffer: buf, Channel: ch}
}

func direction(input bool) Class {
	if input {
		return Input
	}
	return Output
}

// ControlValue returns the port's current scalar value. Safe to call
// from the audio thread.
func (p *Port) ControlValue() float64 {
	return math.Float64frombits(p.control.Load())
}

// SetControlValue stores a new scalar value. Safe to call from the UI
// thread concurrently with ControlValue on the audio thread.
func (p *Port) SetControlValue(v float64) {
	p.control.Store(math.Float64bits(v))
}

// ControlPointer exposes the scalar slot's address for connecting to
// the plugin ABI. The underlying atomic.Uint64 is laid out as a plain
// 8-byte word, so this is safe to hand to a plugin that treats it as a
// float64*.
func (p *Port) ControlPointer() unsafe.Pointer {
	return unsafe.Pointer(&p.control)
}
