package midi

import "testing"

func TestDecodeNoteOn(t *testing.T) {
	ev, ok := Decode(10, []byte{0x91, 60, 100})
	if !ok {
		t.Fatal("Decode: expected ok")
	}
	note, ok := ev.(NoteOnEvent)
	if !ok {
		t.Fatalf("Decode: got %T, want NoteOnEvent", ev)
	}
	if note.Channel() != 1 || note.Note != 60 || note.Velocity != 100 || note.SampleOffset() != 10 {
		t.Fatalf("Decode: got %+v", note)
	}
}

func TestDecodeNoteOnVelocityZeroIsNoteOff(t *testing.T) {
	ev, ok := Decode(0, []byte{0x90, 60, 0})
	if !ok {
		t.Fatal("Decode: expected ok")
	}
	if _, ok := ev.(NoteOffEvent); !ok {
		t.Fatalf("Decode: got %T, want NoteOffEvent", ev)
	}
}

func TestDecodeControlChange(t *testing.T) {
	ev, ok := Decode(5, []byte{0xB2, 1, 64})
	if !ok {
		t.Fatal("Decode: expected ok")
	}
	cc, ok := ev.(ControlChangeEvent)
	if !ok || cc.Channel() != 2 || cc.Value != 64 {
		t.Fatalf("Decode: got %+v, ok=%v", ev, ok)
	}
}

func TestDecodePitchBendCenter(t *testing.T) {
	ev, ok := Decode(0, []byte{0xE0, 0x00, 0x40}) // 0x40<<7 | 0x00 = 8192 -> centered
	if !ok {
		t.Fatal("Decode: expected ok")
	}
	pb, ok := ev.(PitchBendEvent)
	if !ok || pb.Value != 0 {
		t.Fatalf("Decode: got %+v", ev)
	}
}

func TestDecodeSystemRealtime(t *testing.T) {
	ev, ok := Decode(0, []byte{0xFA})
	if !ok {
		t.Fatal("Decode: expected ok")
	}
	if ev.Type() != EventTypeStart {
		t.Fatalf("Decode: got type %v, want Start", ev.Type())
	}
}

func TestDecodeRejectsTruncatedMessage(t *testing.T) {
	if _, ok := Decode(0, []byte{0x90, 60}); ok {
		t.Fatal("Decode: expected ok=false for a truncated note-on")
	}
}

func TestDecodeSequence(t *testing.T) {
	const midiURID = 7
	raw := []struct {
		frame int32
		typ   uint32
		body  []byte
	}{
		{0, midiURID, []byte{0x90, 60, 100}},
		{12, 99, []byte{1, 2, 3}}, // non-MIDI sub-event, must be skipped
		{20, midiURID, []byte{0x80, 60, 0}},
	}
	events := DecodeSequence(func(fn func(int32, uint32, []byte)) {
		for _, r := range raw {
			fn(r.frame, r.typ, r.body)
		}
	}, midiURID)

	if len(events) != 2 {
		t.Fatalf("DecodeSequence: got %d events, want 2", len(events))
	}
	if events[0].SampleOffset() != 0 || events[1].SampleOffset() != 20 {
		t.Fatalf("DecodeSequence: offsets = %d, %d", events[0].SampleOffset(), events[1].SampleOffset())
	}
}
