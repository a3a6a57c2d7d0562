package port

import (
	"encoding/binary"
	"unsafe"

	"github.com/kestrelaudio/lv2host/internal/align"
)

// sequenceHeaderLen is the fixed LV2 atom-sequence header layout this
// host writes into event buffers: type(u32) + size(u32), followed by a
// body of time-stamped sub-events. The body's declared size is the
// single source of truth for iteration (iteration never stops early on
// a zero-size or zero-type record).
const sequenceHeaderLen = 8

// EventBuffer is an aligned, fixed-capacity byte buffer holding one
// atom sequence, owned exclusively by the audio thread once connected.
type EventBuffer struct {
	data []byte
}

// NewEventBuffer allocates an event buffer of at least minSize bytes,
// rounded up to a 64-byte alignment boundary as required by the plugin
// ABI for atom sequences.
func NewEventBuffer(minSize int) *EventBuffer {
	const alignment = 64
	size := align.Up(minSize, alignment)
	// Over-allocate by the alignment so we can hand back a slice whose
	// backing array starts on an aligned boundary.
	raw := make([]byte, size+alignment)
	offset := align.OffsetInSlice(raw, alignment)
	return &EventBuffer{data: raw[offset : offset+size]}
}

// Bytes returns the backing slice for connecting to the plugin ABI.
func (b *EventBuffer) Bytes() []byte { return b.data }

// PointerTo exposes the buffer's backing array address for connecting
// to the plugin ABI.
func (b *EventBuffer) PointerTo() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b.data))
}

// ResetInput zeroes the sequence header to an empty input sequence
// (type=Sequence, size=0) ready to receive one appended event.
func (b *EventBuffer) ResetInput(sequenceType uint32) {
	binary.LittleEndian.PutUint32(b.data[0:4], sequenceType)
	binary.LittleEndian.PutUint32(b.data[4:8], 0)
}

// ResetOutput resets the buffer to the convention the plugin ABI
// actually expects before run: type=Sequence, size=available body
// capacity. (Two other conventions appear in the original source this
// host is modeled on — see DESIGN.md — neither is reproduced here.)
func (b *EventBuffer) ResetOutput(sequenceType uint32) {
	avail := uint32(len(b.data) - sequenceHeaderLen)
	binary.LittleEndian.PutUint32(b.data[0:4], sequenceType)
	binary.LittleEndian.PutUint32(b.data[4:8], avail)
}

// AppendEvent appends one time-stamped sub-event to the sequence body at
// the given frame offset, growing the header's declared size. Returns
// false if it does not fit in the remaining capacity.
func (b *EventBuffer) AppendEvent(frame int32, typ uint32, body []byte) bool {
	size := binary.LittleEndian.Uint32(b.data[4:8])
	pos := sequenceHeaderLen + int(size)
	need := 4 + 4 + 4 + len(body) // frame + type + size + body
	if pos+need > len(b.data) {
		return false
	}
	binary.LittleEndian.PutUint32(b.data[pos:pos+4], uint32(frame))
	binary.LittleEndian.PutUint32(b.data[pos+4:pos+8], typ)
	binary.LittleEndian.PutUint32(b.data[pos+8:pos+12], uint32(len(body)))
	copy(b.data[pos+12:pos+12+len(body)], body)
	binary.LittleEndian.PutUint32(b.data[4:8], size+uint32(need))
	return true
}

// Events iterates the sequence body, yielding each sub-event's frame
// offset, type, and body, strictly bounded by the header's declared
// size — never by sentinel zero values.
func (b *EventBuffer) Events(fn func(frame int32, typ uint32, body []byte)) {
	size := binary.LittleEndian.Uint32(b.data[4:8])
	end := sequenceHeaderLen + int(size)
	if end > len(b.data) {
		end = len(b.data)
	}
	pos := sequenceHeaderLen
	for pos+12 <= end {
		frame := int32(binary.LittleEndian.Uint32(b.data[pos : pos+4]))
		typ := binary.LittleEndian.Uint32(b.data[pos+4 : pos+8])
		bodyLen := int(binary.LittleEndian.Uint32(b.data[pos+8 : pos+12]))
		bodyStart := pos + 12
		if bodyStart+bodyLen > end {
			break
		}
		fn(frame, typ, b.data[bodyStart:bodyStart+bodyLen])
		pos = bodyStart + bodyLen
	}
}
