package mdp

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SampleTransition draws one outcome of taking a in s, weighted by probability.
// A nil src falls back to the global generator.
func (m *Model) SampleTransition(s State, a Action, src rand.Source) (Transition, error) {
	outcomes, err := m.lookup(s, a)
	if err != nil {
		return Transition{}, err
	}

	weights := make([]float64, len(outcomes))
	for i, t := range outcomes {
		weights[i] = t.Probability
	}

	i, ok := sampleuv.NewWeighted(weights, src).Take()
	if !ok {
		return Transition{}, fmt.Errorf("%w: state %d action %d has no outcome to sample", ErrInvalidModel, s, a)
	}
	return outcomes[i], nil
}
