// Package midi decodes raw MIDI bytes carried in an atom sequence's
// event bodies into typed Go values, and offers a small timeline queue
// for host-side instrumentation and tests. Nothing here runs on the
// audio callback's hot path.
package midi

import "fmt"

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
	EventTypePolyPressure
	EventTypeControlChange
	EventTypeProgramChange
	EventTypeChannelPressure
	EventTypePitchBend
	EventTypeSystemExclusive
	EventTypeClock
	EventTypeStart
	EventTypeStop
	EventTypeContinue
)

type Event interface {
	Type() EventType
	Channel() uint8
	SampleOffset() int32
	String() string
}

type BaseEvent struct {
	EventChannel uint8
	Offset       int32
}

func (e BaseEvent) Channel() uint8      { return e.EventChannel }
func (e BaseEvent) SampleOffset() int32 { return e.Offset }

type NoteOnEvent struct {
	BaseEvent
	Note, Velocity uint8
}

func (e NoteOnEvent) Type() EventType { return EventTypeNoteOn }
func (e NoteOnEvent) String() string {
	return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d}", e.EventChannel, e.Note, e.Velocity, e.Offset)
}

type NoteOffEvent struct {
	BaseEvent
	Note, Velocity uint8
}

func (e NoteOffEvent) Type() EventType { return EventTypeNoteOff }
func (e NoteOffEvent) String() string {
	return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}", e.EventChannel, e.Note, e.Velocity, e.Offset)
}

type ControlChangeEvent struct {
	BaseEvent
	Controller, Value uint8
}

func (e ControlChangeEvent) Type() EventType { return EventTypeControlChange }
func (e ControlChangeEvent) String() string {
	return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}", e.EventChannel, e.Controller, e.Value, e.Offset)
}

type PitchBendEvent struct {
	BaseEvent
	Value int16 // -8192..8191, 0 is center
}

func (e PitchBendEvent) Type() EventType { return EventTypePitchBend }
func (e PitchBendEvent) String() string {
	return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}", e.EventChannel, e.Value, e.Offset)
}

type PolyPressureEvent struct {
	BaseEvent
	Note, Pressure uint8
}

func (e PolyPressureEvent) Type() EventType { return EventTypePolyPressure }
func (e PolyPressureEvent) String() string {
	return fmt.Sprintf("PolyPressure{ch:%d, note:%d, pressure:%d, offset:%d}", e.EventChannel, e.Note, e.Pressure, e.Offset)
}

type ChannelPressureEvent struct {
	BaseEvent
	Pressure uint8
}

func (e ChannelPressureEvent) Type() EventType { return EventTypeChannelPressure }
func (e ChannelPressureEvent) String() string {
	return fmt.Sprintf("ChannelPressure{ch:%d, pressure:%d, offset:%d}", e.EventChannel, e.Pressure, e.Offset)
}

type ProgramChangeEvent struct {
	BaseEvent
	Program uint8
}

func (e ProgramChangeEvent) Type() EventType { return EventTypeProgramChange }
func (e ProgramChangeEvent) String() string {
	return fmt.Sprintf("ProgramChange{ch:%d, prog:%d, offset:%d}", e.EventChannel, e.Program, e.Offset)
}

type SystemEvent struct {
	BaseEvent
	Kind EventType // Clock, Start, Stop, or Continue
}

func (e SystemEvent) Type() EventType { return e.Kind }
func (e SystemEvent) String() string  { return fmt.Sprintf("System{kind:%d, offset:%d}", e.Kind, e.Offset) }
