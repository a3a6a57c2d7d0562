package host

import (
	"fmt"

	"github.com/kestrelaudio/lv2host/pkg/midi"
	"github.com/kestrelaudio/lv2host/pkg/port"
)

// SetControl validates the port is a control input and stores value in
// its scalar slot. A mismatched port is a silent no-op, per spec.md
// §4.4.3 and §7 (WrongPortKind is swallowed at the control surface).
//
// value is float64 throughout this surface, a deliberate generalization
// beyond the 32-bit LV2 control-port ABI; see pkg/port.Port.control.
func (h *Host) SetControl(portIndex int, value float64) {
	p := h.portByIndex(portIndex)
	if p == nil || !p.Class.Has(port.Control) || !p.Class.Has(port.Input) {
		return
	}
	p.SetControlValue(value)
}

// ControlValue reads a control port's current scalar value. ok is false
// for a non-existent or non-control port.
func (h *Host) ControlValue(portIndex int) (value float64, ok bool) {
	p := h.portByIndex(portIndex)
	if p == nil || !p.Class.Has(port.Control) {
		return 0, false
	}
	return p.ControlValue(), true
}

// PostAtom validates the port is an event input and delegates to its
// Atom Channel's Post.
func (h *Host) PostAtom(portIndex int, typ uint32, body []byte) error {
	p := h.portByIndex(portIndex)
	if p == nil || !p.Class.Has(port.Event) || !p.Class.Has(port.Input) {
		return fmt.Errorf("host: PostAtom port %d: %w", portIndex, ErrWrongPortKind)
	}
	return p.Channel.Post(typ, body)
}

// ReadAtom reads one complete outbound event from an event-output port,
// or ok=false if none is available.
func (h *Host) ReadAtom(portIndex int) (typ uint32, body []byte, ok bool) {
	p := h.portByIndex(portIndex)
	if p == nil || !p.Class.Has(port.Event) || !p.Class.Has(port.Output) {
		return 0, nil, false
	}
	return p.Channel.ReadOutbound()
}

// FormatControl renders a control port's current value as a display
// string, e.g. for a host application's own UI. Supplemented feature,
// grounded on the teacher's parameter formatter idiom.
func (h *Host) FormatControl(portIndex int) (string, error) {
	p := h.portByIndex(portIndex)
	if p == nil || !p.Class.Has(port.Control) {
		return "", fmt.Errorf("host: FormatControl port %d: %w", portIndex, ErrWrongPortKind)
	}
	return fmt.Sprintf("%.3f", p.ControlValue()), nil
}

// MIDIEvents returns the decoded MIDI timeline accumulated so far for a
// MIDI-capable event-output port — every raw MIDI atom Process has
// observed the plugin produce, decoded via pkg/midi. ok is false for a
// port that is not a MIDI-capable output.
func (h *Host) MIDIEvents(portIndex int) (events []midi.Event, ok bool) {
	q, ok := h.midiTimelines[portIndex]
	if !ok {
		return nil, false
	}
	return q.All(), true
}

// ClearMIDIEvents discards the accumulated decoded timeline for a
// MIDI-capable event-output port, e.g. once a caller has consumed it.
func (h *Host) ClearMIDIEvents(portIndex int) {
	if q, ok := h.midiTimelines[portIndex]; ok {
		q.Clear()
	}
}

func (h *Host) portByIndex(index int) *port.Port {
	for _, p := range h.ports {
		if p.Index == index {
			return p
		}
	}
	return nil
}
