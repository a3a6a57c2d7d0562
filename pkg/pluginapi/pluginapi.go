// Package pluginapi defines the host's contract with a plugin metadata
// and instantiation backend. The host core never discovers or parses
// plugin bundles itself — it resolves a URI through a World and drives
// the resulting Handle. Production backends typically wrap a real LV2
// discovery library (via cgo or a subprocess); tests substitute an
// in-memory fixture.
package pluginapi

import (
	"unsafe"

	"github.com/kestrelaudio/lv2host/pkg/port"
)

// World resolves a plugin URI to its Descriptor.
type World interface {
	Resolve(uri string) (Descriptor, error)
}

// Feature is a negotiated LV2 feature passed to Instantiate; URI
// identifies the feature and Data is its feature-specific payload
// (often nil, sometimes a function pointer struct from pkg/host).
type Feature struct {
	URI  string
	Data unsafe.Pointer
}

// Descriptor is a resolved, not-yet-instantiated plugin.
type Descriptor interface {
	URI() string
	Ports() []Port
	RequiredFeatures() []string
	Instantiate(sampleRate float64, features []Feature) (Handle, error)
}

// Port is one port of a Descriptor's declared topology, as reported by
// the metadata backend before instantiation.
type Port interface {
	Index() int
	Classify() port.Class
	Default() float64
	Minimum() float64
	Maximum() float64

	// MinimumEventBufferSize reports the plugin's declared minimum
	// buffer size for an event port, if any.
	MinimumEventBufferSize() (size int, ok bool)

	// ChannelDesignation reports a host-channel hint (e.g. 0=left,
	// 1=right) for an audio port, if the backend can supply one. The
	// host falls back to declaration order when ok is false.
	ChannelDesignation() (channel int, ok bool)
}

// Handle is a live, instantiated plugin instance.
type Handle interface {
	// Connect binds a port index to a host-owned buffer: a *float32 for
	// audio ports, the port's 8-byte float64 scalar slot for control
	// ports, or an event buffer's backing array pointer for event ports.
	Connect(portIndex int, buffer unsafe.Pointer) error
	Activate() error
	// Run processes frames samples using the currently connected
	// buffers. Must not allocate.
	Run(frames int)
	Deactivate() error
	Free() error

	// Extension resolves an LV2 extension interface by URI (e.g. the
	// work or state interfaces), returning nil if unsupported.
	Extension(uri string) interface{}
}
