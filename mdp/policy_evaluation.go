package mdp

import (
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultGamma     = 0.9
	DefaultEpsilon   = 1e-5
	DefaultMaxSweeps = 100000
)

type Option func(e *Evaluator)

func WithGamma(gamma float64) Option {
	return func(e *Evaluator) {
		e.gamma = gamma
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(e *Evaluator) {
		e.epsilon = epsilon
	}
}

// WithMaxSweeps caps the number of sweeps before evaluation gives up with ErrNonConvergence.
func WithMaxSweeps(sweeps int) Option {
	return func(e *Evaluator) {
		e.maxSweeps = sweeps
	}
}

// WithWorkers splits every sweep across n goroutines.
func WithWorkers(n int) Option {
	return func(e *Evaluator) {
		e.workers = n
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// Evaluator computes state values of a fixed policy by synchronous sweeps of the
// Bellman expectation backup. It holds no per-call state and is safe for concurrent use.
type Evaluator struct {
	gamma     float64
	epsilon   float64
	maxSweeps int
	workers   int
	logger    zerolog.Logger
}

type Result struct {
	Values []float64
	Sweeps int
	// Deltas holds the max-abs change of every sweep, in order.
	Deltas []float64
}

func NewEvaluator(options ...Option) (*Evaluator, error) {
	e := &Evaluator{ // Default values
		gamma:     DefaultGamma,
		epsilon:   DefaultEpsilon,
		maxSweeps: DefaultMaxSweeps,
		workers:   1,
		logger:    zerolog.Nop(),
	}
	for _, option := range options {
		option(e)
	}

	if err := checkGamma(e.gamma); err != nil {
		return nil, err
	}
	if math.IsNaN(e.epsilon) || e.epsilon <= 0 {
		return nil, fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidParameter, e.epsilon)
	}
	if e.maxSweeps < 1 {
		return nil, fmt.Errorf("%w: max sweeps must be at least 1, got %d", ErrInvalidParameter, e.maxSweeps)
	}
	if e.workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidParameter, e.workers)
	}
	return e, nil
}

func (e *Evaluator) Gamma() float64 {
	return e.gamma
}

func (e *Evaluator) Epsilon() float64 {
	return e.epsilon
}

// Evaluate returns the value of every state under policy.
func (e *Evaluator) Evaluate(m *Model, policy Policy) (*Result, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", ErrInvalidParameter)
	}
	rows, err := resolve(m, policy)
	if err != nil {
		return nil, err
	}

	n := m.NumStates()
	prev := make([]float64, n)
	next := make([]float64, n)
	result := &Result{}

	for sweep := 1; sweep <= e.maxSweeps; sweep++ {
		e.sweep(rows, prev, next)

		delta := floats.Distance(prev, next, math.Inf(1))
		if floats.HasNaN(next) || math.IsInf(delta, 0) {
			e.logger.Warn().Int("sweep", sweep).Msg("state values diverged")
			return nil, fmt.Errorf("%w: values became non-finite at sweep %d", ErrNonConvergence, sweep)
		}
		result.Deltas = append(result.Deltas, delta)
		e.logger.Trace().Int("sweep", sweep).Float64("delta", delta).Msg("sweep done")

		if delta < e.epsilon {
			result.Values = next
			result.Sweeps = sweep
			e.logger.Debug().Int("sweeps", sweep).Float64("delta", delta).Str("policy", policy.Name()).Msg("policy evaluation converged")
			return result, nil
		}

		// next is fully overwritten by the following sweep
		prev, next = next, prev
	}

	e.logger.Warn().Int("max_sweeps", e.maxSweeps).Float64("delta", result.Deltas[len(result.Deltas)-1]).Msg("sweep ceiling reached")
	return nil, fmt.Errorf("%w: delta %v after %d sweeps, epsilon %v", ErrNonConvergence, result.Deltas[len(result.Deltas)-1], e.maxSweeps, e.epsilon)
}

func (e *Evaluator) sweep(rows [][]Transition, prev, next []float64) {
	n := len(rows)
	if e.workers == 1 || n < 2 {
		e.backupRange(rows, prev, next, 0, n)
		return
	}

	chunk := (n + e.workers - 1) / e.workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			e.backupRange(rows, prev, next, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

func (e *Evaluator) backupRange(rows [][]Transition, prev, next []float64, lo, hi int) {
	for s := lo; s < hi; s++ {
		next[s] = backup(rows[s], prev, e.gamma)
	}
}

// backup is the expected one-step return of outcomes; terminal outcomes carry no future value.
func backup(outcomes []Transition, v []float64, gamma float64) float64 {
	var value float64
	for _, t := range outcomes {
		var future float64
		if !t.IsTerminal {
			future = v[t.NextState]
		}
		value += t.Probability * (t.Reward + gamma*future)
	}
	return value
}

// resolve looks up the outcomes of the policy's action in every state.
func resolve(m *Model, policy Policy) ([][]Transition, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: nil policy", ErrInvalidPolicy)
	}

	rows := make([][]Transition, m.NumStates())
	for s := range rows {
		a, ok := policy.Act(State(s))
		if !ok {
			return nil, fmt.Errorf("%w: no action for state %d", ErrInvalidPolicy, s)
		}
		outcomes, ok := m.table[s][a]
		if !ok {
			return nil, fmt.Errorf("%w: action %d is not defined in state %d", ErrInvalidPolicy, a, s)
		}
		rows[s] = outcomes
	}
	return rows, nil
}

func checkGamma(gamma float64) error {
	if math.IsNaN(gamma) || gamma < 0 || gamma >= 1 {
		return fmt.Errorf("%w: gamma must be in [0, 1), got %v", ErrInvalidParameter, gamma)
	}
	return nil
}

// Evaluate runs policy evaluation with the default sweep ceiling and returns the values
// and the number of sweeps it took.
func Evaluate(m *Model, policy Policy, gamma, epsilon float64) ([]float64, int, error) {
	e, err := NewEvaluator(WithGamma(gamma), WithEpsilon(epsilon))
	if err != nil {
		return nil, 0, err
	}
	result, err := e.Evaluate(m, policy)
	if err != nil {
		return nil, 0, err
	}
	return result.Values, result.Sweeps, nil
}
