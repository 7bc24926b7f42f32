// Package fsm tracks the lifecycle of one control channel.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting_reply"
	StateClosed        State = "closed"
	StateBroken        State = "broken"
)

const (
	EventSend      Event = "send"
	EventReply     Event = "reply"
	EventTimeout   Event = "timeout"
	EventPeerGone  Event = "peer_gone"
	EventViolation Event = "violation"
	EventClose     Event = "close"
)

// Transition returns the state that follows current on event.
// close is accepted from every state; closed is terminal.
func Transition(current State, event Event) (State, error) {
	if event == EventClose {
		switch current {
		case StateIdle, StateAwaitingReply, StateClosed, StateBroken:
			return StateClosed, nil
		default:
			return current, fmt.Errorf("unknown state %q", current)
		}
	}

	switch current {
	case StateIdle:
		switch event {
		case EventSend:
			return StateAwaitingReply, nil
		case EventViolation:
			return StateBroken, nil
		case EventPeerGone:
			return StateClosed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateAwaitingReply:
		switch event {
		case EventReply, EventTimeout:
			return StateIdle, nil
		case EventPeerGone:
			return StateClosed, nil
		case EventViolation:
			return StateBroken, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateBroken:
		switch event {
		case EventPeerGone:
			return StateClosed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateClosed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Usable reports whether new operations may start in s.
func Usable(s State) bool {
	return s == StateIdle
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
