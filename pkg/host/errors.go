package host

import "errors"

var (
	// ErrPluginNotFound is returned by Open when the requested URI does
	// not resolve in the metadata world.
	ErrPluginNotFound = errors.New("host: plugin not found")
	// ErrUnsupportedFeature is returned by Open when the plugin requires
	// a feature the host does not offer.
	ErrUnsupportedFeature = errors.New("host: plugin requires an unsupported feature")
	// ErrInstantiationFailed is returned by Open when the metadata
	// backend's Instantiate call fails.
	ErrInstantiationFailed = errors.New("host: plugin instantiation failed")
	// ErrNotReady is returned by control-surface and lifecycle operations
	// invoked from an invalid state.
	ErrNotReady = errors.New("host: not ready")
	// ErrBadFrames names an invalid callback frame count. Process does
	// not return it: it reports that case to the driver only as
	// driver.Stop.
	ErrBadFrames = errors.New("host: invalid frame count")
	// ErrWrongPortKind is returned by FormatControl and by any control
	// surface call that needs a typed error return (most are swallowed
	// as no-ops per spec).
	ErrWrongPortKind = errors.New("host: operation does not match port kind")
)
