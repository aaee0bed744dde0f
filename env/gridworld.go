package env

import (
	"fmt"
	"math"

	"github.com/CodeStranger-Fred/policyeval/mdp"
)

// Grid actions.
const (
	GridLeft mdp.Action = iota
	GridRight
	GridUp
	GridDown
)

var gridActions = []string{"left", "right", "up", "down"}

// StochasticWindyGridWorld is a grid whose columns push the agent upwards after every move.
// With probability StochasticWind0 there is no push, with StochasticWind1 the push is
// BaseWind[col] rows, and with StochasticWind2 it is one row more. The top-left and
// bottom-right cells are terminal and every move costs 1.
type StochasticWindyGridWorld struct {
	Rows            int
	Cols            int
	BaseWind        []int
	StochasticWind0 float64
	StochasticWind1 float64
	StochasticWind2 float64
}

func DefaultWindyGridWorld() StochasticWindyGridWorld {
	return StochasticWindyGridWorld{
		Rows:            4,
		Cols:            4,
		BaseWind:        []int{1, 2, 2, 1},
		StochasticWind0: 0.1,
		StochasticWind1: 0.8,
		StochasticWind2: 0.1,
	}
}

func (w StochasticWindyGridWorld) Check() error {
	if w.Rows < 1 || w.Cols < 1 || w.Rows*w.Cols < 2 {
		return fmt.Errorf("grid must have at least two cells, got %dx%d", w.Rows, w.Cols)
	}
	if len(w.BaseWind) != w.Cols {
		return fmt.Errorf("base wind has %d columns, grid has %d", len(w.BaseWind), w.Cols)
	}
	for c, wind := range w.BaseWind {
		if wind < 0 {
			return fmt.Errorf("base wind of column %d is negative", c)
		}
	}
	for _, p := range []float64{w.StochasticWind0, w.StochasticWind1, w.StochasticWind2} {
		if p < 0 {
			return fmt.Errorf("wind probability %v is negative", p)
		}
	}
	if math.Abs(w.StochasticWind0+w.StochasticWind1+w.StochasticWind2-1) > mdp.ProbabilityTolerance {
		return fmt.Errorf("wind probabilities sum to %v, want 1", w.StochasticWind0+w.StochasticWind1+w.StochasticWind2)
	}
	return nil
}

// Environment builds the grid's dynamics. Episodes start in the bottom-left cell.
func (w StochasticWindyGridWorld) Environment() (*Environment, error) {
	if err := w.Check(); err != nil {
		return nil, fmt.Errorf("failed to build windy gridworld: %w", err)
	}

	table := mdp.Table{}
	for r := 0; r < w.Rows; r++ {
		for c := 0; c < w.Cols; c++ {
			s0 := w.State(r, c)
			if w.IsTerminal(s0) {
				table[s0] = absorbing(s0, len(gridActions))
				continue
			}
			table[s0] = map[mdp.Action][]mdp.Transition{}
			for a := range gridActions {
				table[s0][mdp.Action(a)] = w.Transition(s0, mdp.Action(a))
			}
		}
	}

	return NewEnvironment("windy", w.State(w.Rows-1, 0), w.Rows, w.Cols, gridActions, table)
}

// Transition lists the outcomes of action in s0, merging pushes that land on the same cell.
func (w StochasticWindyGridWorld) Transition(s0 mdp.State, action mdp.Action) []mdp.Transition {
	s1 := w.Shift(s0, action)
	col := w.Col(s1)
	pushes := []struct {
		rows int
		p    float64
	}{
		{0, w.StochasticWind0},
		{w.BaseWind[col], w.StochasticWind1},
		{w.BaseWind[col] + 1, w.StochasticWind2},
	}

	var outcomes []mdp.Transition
	for _, push := range pushes {
		if push.p == 0 {
			continue
		}
		next := w.State(w.ClipRow(w.Row(s1)-push.rows), col)
		outcomes = add(outcomes, next, push.p, w.IsTerminal(next))
	}
	return outcomes
}

func add(outcomes []mdp.Transition, next mdp.State, p float64, terminal bool) []mdp.Transition {
	for i := range outcomes {
		if outcomes[i].NextState == next {
			outcomes[i].Probability += p
			return outcomes
		}
	}
	return append(outcomes, to(p, next, -1, terminal))
}

func (w StochasticWindyGridWorld) IsTerminal(s mdp.State) bool {
	return s == w.State(0, 0) || s == w.State(w.Rows-1, w.Cols-1)
}

func (w StochasticWindyGridWorld) State(r int, c int) mdp.State {
	return mdp.State(r*w.Cols + c)
}

func (w StochasticWindyGridWorld) Row(s mdp.State) int {
	return int(s) / w.Cols
}

func (w StochasticWindyGridWorld) Col(s mdp.State) int {
	return int(s) % w.Cols
}

func (w StochasticWindyGridWorld) Shift(s0 mdp.State, action mdp.Action) mdp.State {
	r1, c1 := w.Row(s0), w.Col(s0)
	switch action {
	case GridUp:
		r1--
	case GridDown:
		r1++
	case GridRight:
		c1++
	case GridLeft:
		c1--
	}
	return w.State(w.ClipRow(r1), w.ClipCol(c1))
}

func (w StochasticWindyGridWorld) ClipRow(r int) int {
	return max(0, min(r, w.Rows-1))
}

func (w StochasticWindyGridWorld) ClipCol(c int) int {
	return max(0, min(c, w.Cols-1))
}
