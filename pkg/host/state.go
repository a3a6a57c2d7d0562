package host

import "fmt"

// SaveState snapshots the plugin's opaque internal state via the
// metadata library's state extension, if the plugin advertises one. The
// bundle format is opaque to the host (spec.md §6); the host only
// supplies the URID map/unmap and path helpers, already wired through
// buildFeatures.
//
// Deliberately returns an in-memory map rather than spec.md §6's
// save_state(path)/load_state(path) signature: committing a snapshot to
// disk at a given path is the embedding host application's job, not
// this layer's — it owns bundle layout, naming, and write durability.
// A caller wanting path-based persistence writes this map out itself.
func (h *Host) SaveState() (map[string][]byte, error) {
	if h.stateExt == nil {
		return nil, nil
	}
	snap, err := h.stateExt.Save()
	if err != nil {
		return nil, fmt.Errorf("host: save_state: %w", err)
	}
	return snap, nil
}

// LoadState restores a previously saved snapshot. Valid only while the
// plugin is stopped (load during Running requires the plugin to
// advertise thread-safe restore, which this host does not currently
// negotiate, so LoadState rejects the Running state outright).
func (h *Host) LoadState(snapshot map[string][]byte) error {
	if h.stateExt == nil {
		return nil
	}
	if State(h.state.Load()) == Running {
		return fmt.Errorf("host: load_state: %w", ErrNotReady)
	}
	if err := h.stateExt.Restore(snapshot); err != nil {
		return fmt.Errorf("host: load_state: %w", err)
	}
	return nil
}
