package game

import "fmt"

// State is the top-level game phase.
type State uint8

const (
	StateStart State = iota
	StateLoading
	StatePlaying
	StateClear
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateClear:
		return "clear"
	case StateGameOver:
		return "gameover"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Ended reports whether s is a terminal round state.
func (s State) Ended() bool {
	return s == StateClear || s == StateGameOver
}

var transitions = map[State][]State{
	StateStart:    {StateLoading},
	StateLoading:  {StatePlaying},
	StatePlaying:  {StateClear, StateGameOver},
	StateClear:    {StateStart},
	StateGameOver: {StateStart},
}

// ErrTransition is returned for a move the state graph does not allow.
type ErrTransition struct {
	From, To State
}

func (e ErrTransition) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// StateMachine tracks the current state and notifies on every change.
type StateMachine struct {
	current  State
	onChange []func(from, to State)
}

// NewStateMachine starts in StateStart.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StateStart}
}

// Current returns the active state.
func (m *StateMachine) Current() State { return m.current }

// OnChange registers fn to run after every successful transition.
func (m *StateMachine) OnChange(fn func(from, to State)) {
	m.onChange = append(m.onChange, fn)
}

// CanTransition reports whether to is reachable from the current state.
func (m *StateMachine) CanTransition(to State) bool {
	for _, s := range transitions[m.current] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves to the given state.
func (m *StateMachine) Transition(to State) error {
	if !m.CanTransition(to) {
		return ErrTransition{From: m.current, To: to}
	}
	from := m.current
	m.current = to
	for _, fn := range m.onChange {
		fn(from, to)
	}
	return nil
}
