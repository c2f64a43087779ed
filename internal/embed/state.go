package embed

// State is a surface's lifecycle position. Transitions only move forward.
type State int

const (
	StateUninitialized State = iota
	StateAttached
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAttached:
		return "attached"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
