package mdp

import (
	"fmt"
	"math"
	"sort"
)

// ProbabilityTolerance bounds how far a transition distribution may sum away from 1.
const ProbabilityTolerance = 1e-9

type State int

type Action int

// Transition is one outcome of taking an action in a state.
type Transition struct {
	Probability float64
	NextState   State
	Reward      float64
	IsTerminal  bool
}

// Table is the raw form a model is built from: state -> action -> outcomes.
type Table map[State]map[Action][]Transition

// Model holds the dynamics of a finite MDP. It is read-only once built.
type Model struct {
	table   []map[Action][]Transition
	actions [][]Action
}

// NewModel validates the table and returns a model owning a private copy of it.
func NewModel(table Table) (*Model, error) {
	n := len(table)
	if n == 0 {
		return nil, fmt.Errorf("%w: no states", ErrInvalidModel)
	}

	m := &Model{
		table:   make([]map[Action][]Transition, n),
		actions: make([][]Action, n),
	}

	for s := 0; s < n; s++ {
		entries, ok := table[State(s)]
		if !ok {
			return nil, fmt.Errorf("%w: states must be 0..%d, state %d missing", ErrInvalidModel, n-1, s)
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("%w: state %d has no actions", ErrInvalidModel, s)
		}

		m.table[s] = make(map[Action][]Transition, len(entries))
		for a, outcomes := range entries {
			if err := checkOutcomes(State(s), a, outcomes, n); err != nil {
				return nil, err
			}
			m.table[s][a] = append([]Transition(nil), outcomes...)
			m.actions[s] = append(m.actions[s], a)
		}
		sort.Slice(m.actions[s], func(i, j int) bool { return m.actions[s][i] < m.actions[s][j] })
	}

	return m, nil
}

func checkOutcomes(s State, a Action, outcomes []Transition, n int) error {
	if len(outcomes) == 0 {
		return fmt.Errorf("%w: state %d action %d has no transitions", ErrInvalidModel, s, a)
	}

	var sum float64
	for i, t := range outcomes {
		if math.IsNaN(t.Probability) || t.Probability < 0 || t.Probability > 1 {
			return fmt.Errorf("%w: state %d action %d transition %d has probability %v", ErrInvalidModel, s, a, i, t.Probability)
		}
		if t.NextState < 0 || int(t.NextState) >= n {
			return fmt.Errorf("%w: state %d action %d transition %d leads to unknown state %d", ErrInvalidModel, s, a, i, t.NextState)
		}
		if math.IsNaN(t.Reward) || math.IsInf(t.Reward, 0) {
			return fmt.Errorf("%w: state %d action %d transition %d has non-finite reward", ErrInvalidModel, s, a, i)
		}
		sum += t.Probability
	}

	if math.Abs(sum-1) > ProbabilityTolerance {
		return &ProbabilitySumError{State: s, Action: a, Sum: sum}
	}
	return nil
}

func (m *Model) NumStates() int {
	return len(m.table)
}

// Actions returns the actions defined for s in ascending order, or nil for an unknown state.
func (m *Model) Actions(s State) []Action {
	if !m.hasState(s) {
		return nil
	}
	return append([]Action(nil), m.actions[s]...)
}

// Transitions returns a copy of the outcomes of taking a in s.
func (m *Model) Transitions(s State, a Action) ([]Transition, error) {
	outcomes, err := m.lookup(s, a)
	if err != nil {
		return nil, err
	}
	return append([]Transition(nil), outcomes...), nil
}

// IsTerminal reports whether every action in s loops back to s as a terminal, reward-free outcome.
func (m *Model) IsTerminal(s State) bool {
	if !m.hasState(s) {
		return false
	}
	for _, outcomes := range m.table[s] {
		for _, t := range outcomes {
			if t.Probability == 0 {
				continue
			}
			if t.NextState != s || !t.IsTerminal || t.Reward != 0 {
				return false
			}
		}
	}
	return true
}

// Table returns a deep copy of the model's dynamics.
func (m *Model) Table() Table {
	table := make(Table, len(m.table))
	for s, entries := range m.table {
		table[State(s)] = make(map[Action][]Transition, len(entries))
		for a, outcomes := range entries {
			table[State(s)][a] = append([]Transition(nil), outcomes...)
		}
	}
	return table
}

func (m *Model) lookup(s State, a Action) ([]Transition, error) {
	if !m.hasState(s) {
		return nil, fmt.Errorf("%w: state %d", ErrInvalidKey, s)
	}
	outcomes, ok := m.table[s][a]
	if !ok {
		return nil, fmt.Errorf("%w: action %d in state %d", ErrInvalidKey, a, s)
	}
	return outcomes, nil
}

func (m *Model) hasState(s State) bool {
	return s >= 0 && int(s) < len(m.table)
}
