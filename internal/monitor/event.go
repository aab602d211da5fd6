package monitor

import "fmt"

// EventKind is the type of a controller event crossing the port boundary.
type EventKind int

const (
	KindNoteOn EventKind = iota
	KindNoteOff
	KindControlChange
	KindClock
)

func (k EventKind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindControlChange:
		return "control_change"
	case KindClock:
		return "clock"
	}
	return "unknown"
}

// Event is one typed controller message. Channel is zero-based; it only
// becomes one-based on screen.
type Event struct {
	Kind       EventKind
	Channel    int
	Note       int
	Velocity   int
	Controller int
	Value      int
}

func NoteOn(ch, note, vel int) Event {
	return Event{Kind: KindNoteOn, Channel: ch, Note: note, Velocity: vel}
}

func NoteOff(ch, note int) Event {
	return Event{Kind: KindNoteOff, Channel: ch, Note: note}
}

func ControlChange(ch, controller, value int) Event {
	return Event{Kind: KindControlChange, Channel: ch, Controller: controller, Value: value}
}

func Clock() Event { return Event{Kind: KindClock} }

func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("note_on ch=%d note=%d vel=%d", e.Channel, e.Note, e.Velocity)
	case KindNoteOff:
		return fmt.Sprintf("note_off ch=%d note=%d", e.Channel, e.Note)
	case KindControlChange:
		return fmt.Sprintf("cc ch=%d ctrl=%d val=%d", e.Channel, e.Controller, e.Value)
	}
	return e.Kind.String()
}

func in7bit(v int) bool { return v >= 0 && v <= 127 }

// valid reports whether the event's fields are inside their MIDI ranges.
func (e Event) valid() bool {
	if e.Channel < 0 || e.Channel > 15 {
		return false
	}
	switch e.Kind {
	case KindNoteOn:
		return in7bit(e.Note) && in7bit(e.Velocity)
	case KindNoteOff:
		return in7bit(e.Note)
	case KindControlChange:
		return in7bit(e.Controller) && in7bit(e.Value)
	case KindClock:
		return true
	}
	return false
}

// debounceKey identifies the logical input an event belongs to. Presses and
// releases of one key share an identity so contact bounce in either
// direction collapses into the first edge.
func (e Event) debounceKey() string {
	switch e.Kind {
	case KindNoteOn, KindNoteOff:
		return fmt.Sprintf("note/%d", e.Note)
	case KindControlChange:
		return fmt.Sprintf("cc/%d/%d", e.Channel, e.Controller)
	}
	return ""
}
