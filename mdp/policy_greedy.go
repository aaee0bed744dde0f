package mdp

import (
	"fmt"
	"math"
)

// ActionValues computes a one-step lookahead value for every state/action pair under v.
func ActionValues(m *Model, v []float64, gamma float64) ([]map[Action]float64, error) {
	if len(v) != m.NumStates() {
		return nil, fmt.Errorf("%w: value vector has %d entries, model has %d states", ErrInvalidParameter, len(v), m.NumStates())
	}
	if err := checkGamma(gamma); err != nil {
		return nil, err
	}

	q := make([]map[Action]float64, m.NumStates())
	for s, entries := range m.table {
		q[s] = make(map[Action]float64, len(entries))
		for a, outcomes := range entries {
			q[s][a] = backup(outcomes, v, gamma)
		}
	}
	return q, nil
}

// GreedyPolicy picks, in every state, the action with the highest lookahead value under v.
// Ties go to the lowest action id.
func GreedyPolicy(m *Model, v []float64, gamma float64) (TabularPolicy, error) {
	q, err := ActionValues(m, v, gamma)
	if err != nil {
		return nil, err
	}

	policy := TabularPolicy{}
	for s, values := range q {
		bestA := Action(0)
		bestV := math.Inf(-1)
		for _, a := range m.actions[s] {
			if values[a] > bestV {
				bestV = values[a]
				bestA = a
			}
		}
		policy[State(s)] = bestA
	}
	return policy, nil
}
