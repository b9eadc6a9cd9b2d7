package game

import (
	"errors"
	"testing"
)

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
		ok   bool
	}{
		{StateStart, StateLoading, true},
		{StateStart, StatePlaying, false},
		{StateLoading, StatePlaying, true},
		{StateLoading, StateClear, false},
		{StatePlaying, StateClear, true},
		{StatePlaying, StateGameOver, true},
		{StatePlaying, StateStart, false},
		{StateClear, StateStart, true},
		{StateClear, StateGameOver, false},
		{StateGameOver, StateStart, true},
		{StateGameOver, StatePlaying, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			m := &StateMachine{current: tt.from}
			err := m.Transition(tt.to)
			if tt.ok && err != nil {
				t.Fatalf("Transition: %v", err)
			}
			if !tt.ok {
				var te ErrTransition
				if !errors.As(err, &te) {
					t.Fatalf("got %v, want ErrTransition", err)
				}
				if m.Current() != tt.from {
					t.Errorf("state changed to %s on a refused transition", m.Current())
				}
			}
		})
	}
}

func TestStateMachineNotifies(t *testing.T) {
	m := NewStateMachine()
	var got []string
	m.OnChange(func(from, to State) { got = append(got, from.String()+">"+to.String()) })

	_ = m.Transition(StateLoading)
	_ = m.Transition(StateClear) // refused
	_ = m.Transition(StatePlaying)

	want := []string{"start>loading", "loading>playing"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestStateEnded(t *testing.T) {
	for _, s := range []State{StateStart, StateLoading, StatePlaying} {
		if s.Ended() {
			t.Errorf("%s.Ended() = true", s)
		}
	}
	for _, s := range []State{StateClear, StateGameOver} {
		if !s.Ended() {
			t.Errorf("%s.Ended() = false", s)
		}
	}
}
