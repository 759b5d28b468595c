package notify

import "fmt"

// State is the visual lifecycle state of a notification.
type State int

const (
	StateEntering State = iota
	StateVisible
	StateLeaving
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateVisible:
		return "visible"
	case StateLeaving:
		return "leaving"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// transitions lists the allowed forward moves. Entering may skip straight to
// leaving when a notification is dismissed before its entrance completes.
var transitions = map[State][]State{
	StateEntering: {StateVisible, StateLeaving},
	StateVisible:  {StateLeaving},
	StateLeaving:  {StateRemoved},
}

// CanTransition reports whether a notification may move from one state to
// another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Live reports whether the notification still occupies the store.
func (s State) Live() bool {
	return s != StateRemoved
}

func (n *Notification) transition(to State) error {
	if !CanTransition(n.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.State, to)
	}
	n.State = to
	return nil
}
