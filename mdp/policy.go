package mdp

import (
	"time"

	"golang.org/x/exp/rand"
)

// Policy maps every state to the single action taken there.
type Policy interface {
	Name() string

	// Act returns the action for s, or false if the policy has none.
	Act(State) (Action, bool)
}

type TabularPolicy map[State]Action

func (p TabularPolicy) Name() string {
	return "tabular"
}

func (p TabularPolicy) Act(s State) (Action, bool) {
	a, ok := p[s]
	return a, ok
}

// NewRandomPolicy picks one action per state uniformly at random.
func NewRandomPolicy(m *Model, src rand.Source) TabularPolicy {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	rng := rand.New(src)

	policy := TabularPolicy{}
	for s := 0; s < m.NumStates(); s++ {
		actions := m.actions[s]
		policy[State(s)] = actions[rng.Intn(len(actions))]
	}
	return policy
}
