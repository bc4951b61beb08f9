package engine

import "fmt"

// EventType classifies a normalized key event.
type EventType uint8

const (
	// EventDown reports a key transitioning from up to down.
	EventDown EventType = iota + 1
	// EventUp reports a key transitioning from down to up.
	EventUp
	// EventRepeat reports a platform auto-repeat of a held key.
	EventRepeat
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventDown:
		return "down"
	case EventUp:
		return "up"
	case EventRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Action is the raw key transition reported by the platform. The system
// variants carry the same press/release semantics and differ only in how
// they are logged.
type Action uint8

const (
	// ActionDown is a plain key press.
	ActionDown Action = iota
	// ActionUp is a plain key release.
	ActionUp
	// ActionSysDown is a press delivered through the system key path.
	ActionSysDown
	// ActionSysUp is a release delivered through the system key path.
	ActionSysUp
)

// IsDown reports whether the action is a press.
func (a Action) IsDown() bool {
	return a == ActionDown || a == ActionSysDown
}

// System reports whether the action arrived through the system key path.
func (a Action) System() bool {
	return a == ActionSysDown || a == ActionSysUp
}

// ParseAction parses the string form produced by Action.String.
func ParseAction(s string) (Action, error) {
	switch s {
	case "down":
		return ActionDown, nil
	case "up":
		return ActionUp, nil
	case "sysdown":
		return ActionSysDown, nil
	case "sysup":
		return ActionSysUp, nil
	default:
		return 0, fmt.Errorf("unknown key action %q", s)
	}
}

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionUp:
		return "up"
	case ActionSysDown:
		return "sysdown"
	case ActionSysUp:
		return "sysup"
	default:
		return "unknown"
	}
}

// Event is the normalized, platform-independent key event record
// dispatched to the host.
type Event struct {
	// Timestamp is the capture time in microseconds on the engine's
	// monotonic clock.
	Timestamp int64

	// Type classifies the event.
	Type EventType

	// Physical identifies the hardware key position. Zero only on the
	// neutral liveness event.
	Physical uint64

	// Logical identifies the meaning of the press. Zero only on the
	// neutral liveness event.
	Logical uint64

	// Character is the UTF-8 encoding of the decoded code point.
	// Only Down and Repeat events carry one; Up events are always empty.
	Character []byte

	// Synthesized marks events the engine generated itself to reconcile
	// state rather than translating one raw input.
	Synthesized bool
}

// ResponseToken correlates a dispatched event with the host's eventual
// acknowledgment. Token zero means fire-and-forget: no acknowledgment is
// expected and none may be delivered.
type ResponseToken uint64

// Callback receives the host's verdict for one raw input, exactly once.
type Callback func(handled bool)

// Dispatcher delivers events to the host. For every event dispatched with
// a non-zero token, the host must eventually call Engine.Resolve with that
// token, exactly once.
type Dispatcher interface {
	Dispatch(ev Event, token ResponseToken)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ev Event, token ResponseToken)

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ev Event, token ResponseToken) { f(ev, token) }
