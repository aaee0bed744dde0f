package env

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/CodeStranger-Fred/policyeval/mdp"
)

// RunStats holds the rewards collected by one run, one entry per step taken.
type RunStats struct {
	Rewards []float64
}

// Return is the discounted sum of the collected rewards.
func (r RunStats) Return(gamma float64) float64 {
	var g, discount float64 = 0, 1
	for _, reward := range r.Rewards {
		g += discount * reward
		discount *= gamma
	}
	return g
}

// RunPolicy follows policy from the start state until a terminal state or numSteps steps.
func RunPolicy(e *Environment, policy mdp.Policy, numSteps int, src rand.Source) (RunStats, error) {
	if numSteps < 0 {
		return RunStats{}, fmt.Errorf("%w: steps must not be negative, got %d", mdp.ErrInvalidParameter, numSteps)
	}

	sim := NewSimulator(e, src)
	stats := RunStats{Rewards: make([]float64, 0, numSteps)}

	for i := 0; i < numSteps && !e.Model.IsTerminal(sim.Current()); i++ {
		a, ok := policy.Act(sim.Current())
		if !ok {
			return stats, fmt.Errorf("%w: no action for state %d", mdp.ErrInvalidPolicy, sim.Current())
		}
		t, err := sim.StepWithChoice(a)
		if err != nil {
			return stats, err
		}
		stats.Rewards = append(stats.Rewards, t.Reward)
	}
	return stats, nil
}

// AverageReturn runs policy numRuns times and averages the discounted returns.
// It estimates the start state's value by sampling.
func AverageReturn(e *Environment, policy mdp.Policy, gamma float64, numRuns, numSteps int, src rand.Source) (float64, error) {
	if numRuns < 1 {
		return 0, fmt.Errorf("%w: runs must be positive, got %d", mdp.ErrInvalidParameter, numRuns)
	}

	var sum float64
	for i := 0; i < numRuns; i++ {
		stats, err := RunPolicy(e, policy, numSteps, src)
		if err != nil {
			return 0, err
		}
		sum += stats.Return(gamma)
	}
	return sum / float64(numRuns), nil
}
