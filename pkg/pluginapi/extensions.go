package pluginapi

// WorkExtensionURI identifies the worker extension a Handle.Extension
// call may return a WorkExtension for.
const WorkExtensionURI = "http://lv2plug.in/ns/ext/worker#interface"

// StateExtensionURI identifies the state extension.
const StateExtensionURI = "http://lv2plug.in/ns/ext/state#interface"

// WorkExtension is the plugin-side half of the Worker Pump contract:
// the plugin implements Work (called off the audio thread) and
// WorkResponse (called on the audio thread once a response is
// delivered).
type WorkExtension interface {
	// Work handles one scheduled request. req is backed by pooled
	// memory valid only for the duration of this call; copy it to
	// retain it. respond may be called zero or more times to push data
	// back toward the audio thread.
	Work(req []byte, respond func(resp []byte) error) error
	// WorkResponse delivers one response previously produced by Work,
	// invoked on the audio thread after Run returns. resp is backed by pooled memory valid
	// only for the duration of this call; copy it to retain it.
	WorkResponse(resp []byte) error
}

// StateExtension lets a plugin save and restore its internal state
// outside of the port-value model.
type StateExtension interface {
	Save() (map[string][]byte, error)
	Restore(state map[string][]byte) error
}
