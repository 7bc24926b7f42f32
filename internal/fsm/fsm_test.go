package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionRequestCycle(t *testing.T) {
	s := StateIdle

	next, err := Transition(s, EventSend)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingReply, next)

	next, err = Transition(next, EventReply)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next)

	next, err = Transition(next, EventSend)
	require.NoError(t, err)
	next, err = Transition(next, EventTimeout)
	require.NoError(t, err)
	require.Equal(t, StateIdle, next, "a timed out request leaves the channel usable")
}

func TestTransitionCloseFromAnyStateGoesClosed(t *testing.T) {
	states := []State{StateIdle, StateAwaitingReply, StateBroken, StateClosed}
	for _, state := range states {
		next, err := Transition(state, EventClose)
		require.NoError(t, err)
		require.Equal(t, StateClosed, next)
	}
}

func TestTransitionMatrix(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr bool
	}{
		{name: "idle reply invalid", state: StateIdle, event: EventReply, want: StateIdle, wantErr: true},
		{name: "idle timeout invalid", state: StateIdle, event: EventTimeout, want: StateIdle, wantErr: true},
		{name: "idle violation breaks", state: StateIdle, event: EventViolation, want: StateBroken},
		{name: "idle peer gone closes", state: StateIdle, event: EventPeerGone, want: StateClosed},
		{name: "awaiting send invalid", state: StateAwaitingReply, event: EventSend, want: StateAwaitingReply, wantErr: true},
		{name: "awaiting violation breaks", state: StateAwaitingReply, event: EventViolation, want: StateBroken},
		{name: "awaiting peer gone closes", state: StateAwaitingReply, event: EventPeerGone, want: StateClosed},
		{name: "broken send invalid", state: StateBroken, event: EventSend, want: StateBroken, wantErr: true},
		{name: "broken reply invalid", state: StateBroken, event: EventReply, want: StateBroken, wantErr: true},
		{name: "closed send invalid", state: StateClosed, event: EventSend, want: StateClosed, wantErr: true},
		{name: "closed violation invalid", state: StateClosed, event: EventViolation, want: StateClosed, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid transition")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionUnknownState(t *testing.T) {
	next, err := Transition(State("mystery"), EventSend)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, State("mystery"), next)

	_, err = Transition(State("mystery"), EventClose)
	require.Error(t, err)
}

func TestUsable(t *testing.T) {
	require.True(t, Usable(StateIdle))
	require.False(t, Usable(StateAwaitingReply))
	require.False(t, Usable(StateBroken))
	require.False(t, Usable(StateClosed))
}
