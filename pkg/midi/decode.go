package midi

const (
	statusNoteOff         = 0x8
	statusNoteOn          = 0x9
	statusPolyPressure    = 0xA
	statusControlChange   = 0xB
	statusProgramChange   = 0xC
	statusChannelPressure = 0xD
	statusPitchBend       = 0xE
)

const (
	systemClock    = 0xF8
	systemStart    = 0xFA
	systemContinue = 0xFB
	systemStop     = 0xFC
)

// Decode interprets one raw MIDI message (the body of an atom-sequence
// sub-event whose type is the well-known MIDI event URID) at the given
// sample frame. It returns ok=false for messages this host has no typed
// representation for (e.g. sysex, active sensing).
func Decode(frame int32, raw []byte) (Event, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	status := raw[0]

	if status >= systemClock {
		switch status {
		case systemClock:
			return SystemEvent{BaseEvent{Offset: frame}, EventTypeClock}, true
		case systemStart:
			return SystemEvent{BaseEvent{Offset: frame}, EventTypeStart}, true
		case systemStop:
			return SystemEvent{BaseEvent{Offset: frame}, EventTypeStop}, true
		case systemContinue:
			return SystemEvent{BaseEvent{Offset: frame}, EventTypeContinue}, true
		default:
			return nil, false
		}
	}

	kind := status >> 4
	ch := status & 0x0F
	base := BaseEvent{EventChannel: ch, Offset: frame}

	switch kind {
	case statusNoteOff:
		if len(raw) < 3 {
			return nil, false
		}
		return NoteOffEvent{base, raw[1], raw[2]}, true
	case statusNoteOn:
		if len(raw) < 3 {
			return nil, false
		}
		if raw[2] == 0 {
			// Running-status convention: velocity-0 note-on is a note-off.
			return NoteOffEvent{base, raw[1], 0}, true
		}
		return NoteOnEvent{base, raw[1], raw[2]}, true
	case statusPolyPressure:
		if len(raw) < 3 {
			return nil, false
		}
		return PolyPressureEvent{base, raw[1], raw[2]}, true
	case statusControlChange:
		if len(raw) < 3 {
			return nil, false
		}
		return ControlChangeEvent{base, raw[1], raw[2]}, true
	case statusProgramChange:
		if len(raw) < 2 {
			return nil, false
		}
		return ProgramChangeEvent{base, raw[1]}, true
	case statusChannelPressure:
		if len(raw) < 2 {
			return nil, false
		}
		return ChannelPressureEvent{base, raw[1]}, true
	case statusPitchBend:
		if len(raw) < 3 {
			return nil, false
		}
		raw14 := int16(raw[1]) | int16(raw[2])<<7
		return PitchBendEvent{base, raw14 - 8192}, true
	default:
		return nil, false
	}
}

// DecodeSequence decodes every sub-event of an atom sequence body whose
// sub-event type equals midiEventURID, in ascending frame order. It is
// a host-side/test convenience, never called from the audio callback.
func DecodeSequence(events func(fn func(frame int32, typ uint32, body []byte)), midiEventURID uint32) []Event {
	var out []Event
	events(func(frame int32, typ uint32, body []byte) {
		if typ != midiEventURID {
			return
		}
		if ev, ok := Decode(frame, body); ok {
			out = append(out, ev)
		}
	})
	return out
}
