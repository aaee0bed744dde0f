package mdp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// slipperyChain builds a walk over n states whose two ends are terminal. Action 0 moves
// left and action 1 moves right, each slipping the other way with probability slip.
// Reaching the right end pays 1.
func slipperyChain(t *testing.T, n int, slip float64) *Model {
	t.Helper()

	outcome := func(p float64, next int) Transition {
		terminal := next == 0 || next == n-1
		reward := 0.0
		if next == n-1 {
			reward = 1
		}
		return Transition{Probability: p, NextState: State(next), Reward: reward, IsTerminal: terminal}
	}

	table := Table{}
	for s := 0; s < n; s++ {
		if s == 0 || s == n-1 {
			table[State(s)] = map[Action][]Transition{
				0: {{1, State(s), 0, true}},
				1: {{1, State(s), 0, true}},
			}
			continue
		}
		table[State(s)] = map[Action][]Transition{
			0: {outcome(1-slip, s-1), outcome(slip, s+1)},
			1: {outcome(1-slip, s+1), outcome(slip, s-1)},
		}
	}

	m, err := NewModel(table)
	require.NoError(t, err)
	return m
}

func alwaysRight(m *Model) TabularPolicy {
	policy := TabularPolicy{}
	for s := 0; s < m.NumStates(); s++ {
		policy[State(s)] = 1
	}
	return policy
}

func TestEvaluateScenarios(t *testing.T) {
	t.Run("two state chain into a terminal state", func(t *testing.T) {
		m, err := NewModel(Table{
			0: {0: {{1.0, 0, 0, true}}},
			1: {0: {{1.0, 0, 0, true}}},
		})
		require.NoError(t, err)

		v, sweeps, err := Evaluate(m, TabularPolicy{0: 0, 1: 0}, DefaultGamma, DefaultEpsilon)

		require.NoError(t, err)
		require.Equal(t, []float64{0, 0}, v)
		require.Equal(t, 1, sweeps, "All-zero values converge on the first sweep")
	})

	t.Run("deterministic reward chain", func(t *testing.T) {
		m, err := NewModel(Table{
			0: {0: {{1.0, 0, 0, true}}, 1: {{1.0, 0, 0, true}}},
			1: {0: {{1.0, 0, 0, true}}, 1: {{1.0, 2, 1, true}}},
			2: {0: {{1.0, 2, 0, true}}, 1: {{1.0, 2, 0, true}}},
		})
		require.NoError(t, err)

		v, _, err := Evaluate(m, TabularPolicy{0: 0, 1: 1, 2: 0}, DefaultGamma, DefaultEpsilon)

		require.NoError(t, err)
		require.InDelta(t, 1.0, v[1], DefaultEpsilon)
		require.Equal(t, 0.0, v[2])
	})

	t.Run("stochastic two outcome action", func(t *testing.T) {
		m, err := NewModel(banditSlipperyTable())
		require.NoError(t, err)

		v, _, err := Evaluate(m, TabularPolicy{0: 0, 1: 1, 2: 0}, DefaultGamma, DefaultEpsilon)

		require.NoError(t, err)
		require.InDelta(t, 0.8, v[1], 1e-9)
	})

	t.Run("policy naming an undefined action", func(t *testing.T) {
		m, err := NewModel(banditSlipperyTable())
		require.NoError(t, err)

		_, _, err = Evaluate(m, TabularPolicy{0: 0, 1: 5, 2: 0}, DefaultGamma, DefaultEpsilon)

		require.ErrorIs(t, err, ErrInvalidPolicy)
	})

	t.Run("policy missing a state", func(t *testing.T) {
		m, err := NewModel(banditSlipperyTable())
		require.NoError(t, err)

		_, _, err = Evaluate(m, TabularPolicy{0: 0, 1: 1}, DefaultGamma, DefaultEpsilon)

		require.ErrorIs(t, err, ErrInvalidPolicy)
	})

	t.Run("nil policy", func(t *testing.T) {
		m, err := NewModel(banditSlipperyTable())
		require.NoError(t, err)

		_, _, err = Evaluate(m, nil, DefaultGamma, DefaultEpsilon)

		require.ErrorIs(t, err, ErrInvalidPolicy)
	})
}

func TestNewEvaluatorParameters(t *testing.T) {
	testCases := []struct {
		name    string
		options []Option
	}{
		{"gamma of one", []Option{WithGamma(1)}},
		{"negative gamma", []Option{WithGamma(-0.1)}},
		{"nan gamma", []Option{WithGamma(math.NaN())}},
		{"zero epsilon", []Option{WithEpsilon(0)}},
		{"negative epsilon", []Option{WithEpsilon(-1e-3)}},
		{"nan epsilon", []Option{WithEpsilon(math.NaN())}},
		{"zero sweep ceiling", []Option{WithMaxSweeps(0)}},
		{"zero workers", []Option{WithWorkers(0)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEvaluator(tc.options...)
			require.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		e, err := NewEvaluator()

		require.NoError(t, err)
		require.Equal(t, 0.9, e.Gamma())
		require.Equal(t, 1e-5, e.Epsilon())
	})

	t.Run("gamma of zero is allowed", func(t *testing.T) {
		m, err := NewModel(banditSlipperyTable())
		require.NoError(t, err)

		v, _, err := Evaluate(m, TabularPolicy{0: 0, 1: 1, 2: 0}, 0, DefaultEpsilon)

		require.NoError(t, err)
		require.InDelta(t, 0.8, v[1], 1e-12)
	})

	t.Run("nil model", func(t *testing.T) {
		e, err := NewEvaluator()
		require.NoError(t, err)

		_, err = e.Evaluate(nil, TabularPolicy{})

		require.ErrorIs(t, err, ErrInvalidParameter)
	})
}

func TestEvaluateSweepCeiling(t *testing.T) {
	// A non-terminal self loop paying 1 forever needs ~gamma/(1-gamma) worth of sweeps.
	m, err := NewModel(Table{
		0: {0: {{1.0, 0, 1, false}}},
	})
	require.NoError(t, err)

	e, err := NewEvaluator(WithGamma(0.999), WithMaxSweeps(10))
	require.NoError(t, err)

	_, err = e.Evaluate(m, TabularPolicy{0: 0})
	require.ErrorIs(t, err, ErrNonConvergence)

	e, err = NewEvaluator(WithGamma(0.5), WithEpsilon(1e-10))
	require.NoError(t, err)

	result, err := e.Evaluate(m, TabularPolicy{0: 0})
	require.NoError(t, err)
	require.InDelta(t, 2.0, result.Values[0], 1e-9, "Should approach 1/(1-gamma)")
}

func TestEvaluateDiverges(t *testing.T) {
	// Values overflow to +Inf on the second sweep.
	m, err := NewModel(Table{
		0: {0: {{1.0, 0, 1e308, false}}},
	})
	require.NoError(t, err)

	e, err := NewEvaluator(WithGamma(0.99))
	require.NoError(t, err)

	_, err = e.Evaluate(m, TabularPolicy{0: 0})
	require.ErrorIs(t, err, ErrNonConvergence)
}

func TestEvaluateDeterminism(t *testing.T) {
	m := slipperyChain(t, 9, 0.2)
	policy := NewRandomPolicy(m, rand.NewSource(3))

	v1, sweeps1, err := Evaluate(m, policy, 0.95, 1e-8)
	require.NoError(t, err)
	v2, sweeps2, err := Evaluate(m, policy, 0.95, 1e-8)
	require.NoError(t, err)

	require.Equal(t, v1, v2, "Values should be bit identical")
	require.Equal(t, sweeps1, sweeps2)

	t.Run("parallel sweeps match sequential sweeps", func(t *testing.T) {
		for _, workers := range []int{2, 3, 8, 64} {
			e, err := NewEvaluator(WithGamma(0.95), WithEpsilon(1e-8), WithWorkers(workers))
			require.NoError(t, err)

			result, err := e.Evaluate(m, policy)
			require.NoError(t, err)
			require.Equal(t, v1, result.Values, "workers=%d", workers)
			require.Equal(t, sweeps1, result.Sweeps, "workers=%d", workers)
		}
	})
}

func TestEvaluateTerminalSink(t *testing.T) {
	m := slipperyChain(t, 7, 0.3)

	v, _, err := Evaluate(m, alwaysRight(m), 0.99, 1e-10)

	require.NoError(t, err)
	for s := 0; s < m.NumStates(); s++ {
		if m.IsTerminal(State(s)) {
			require.Equal(t, 0.0, v[s], "Terminal state %d should hold no value", s)
		}
	}
	require.Greater(t, v[5], v[1], "States nearer the goal are worth more")
}

func TestEvaluateBellmanResidual(t *testing.T) {
	m := slipperyChain(t, 9, 0.25)
	policy := alwaysRight(m)
	gamma, epsilon := 0.9, 1e-6

	v, _, err := Evaluate(m, policy, gamma, epsilon)
	require.NoError(t, err)

	q, err := ActionValues(m, v, gamma)
	require.NoError(t, err)
	for s := range v {
		a, _ := policy.Act(State(s))
		require.InDelta(t, v[s], q[s][a], epsilon, "state %d", s)
	}
}

func TestEvaluateContraction(t *testing.T) {
	m := slipperyChain(t, 11, 0.3)
	gamma := 0.9

	e, err := NewEvaluator(WithGamma(gamma), WithEpsilon(1e-10))
	require.NoError(t, err)

	result, err := e.Evaluate(m, alwaysRight(m))
	require.NoError(t, err)
	require.Len(t, result.Deltas, result.Sweeps)
	require.Less(t, result.Deltas[len(result.Deltas)-1], 1e-10)

	for i := 1; i < len(result.Deltas); i++ {
		require.LessOrEqual(t, result.Deltas[i], gamma*result.Deltas[i-1]+1e-12,
			"Sweep %d should shrink the delta by at least gamma", i+1)
	}
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	m := slipperyChain(t, 5, 0.1)
	before := m.Table()
	policy := alwaysRight(m)

	_, _, err := Evaluate(m, policy, 0.9, 1e-6)

	require.NoError(t, err)
	require.Equal(t, before, m.Table())
	require.Equal(t, alwaysRight(m), policy)
}
