// Package driver defines the host's contract with an audio I/O backend.
// The host core never talks to a sound device directly; it is handed a
// Driver implementation (real hardware, a test harness, a file-based
// renderer) and drives it through this interface.
package driver

// Action tells the driver what to do after a callback returns.
type Action int

const (
	// Continue requests another callback at the driver's normal cadence.
	Continue Action = iota
	// Stop requests the driver halt the audio stream after this callback.
	Stop
)

// Callback processes one audio burst in place. buf is interleaved
// float32 samples, channels wide, frames long. Implementations must not
// allocate or block.
type Callback func(buf []float32, channels, frames int) Action

// Driver is the external audio I/O contract the host core consumes. It
// never appears in the audio-processing hot path itself — only its
// Callback does.
type Driver interface {
	// FramesPerBurst reports the fixed burst size this driver will pass
	// to Callback, used by the host to size its de-interleave scratch
	// space up front.
	FramesPerBurst() int

	// Start begins invoking cb at the driver's cadence. It returns once
	// the stream is running; Callback invocations happen on a
	// driver-owned thread.
	Start(cb Callback) error

	// Stop halts the stream. It blocks until no further Callback
	// invocation will occur.
	Stop() error
}
