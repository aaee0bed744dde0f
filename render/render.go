// Package render draws value vectors, policies and positions of an environment on a terminal.
package render

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"

	"github.com/CodeStranger-Fred/policyeval/env"
	"github.com/CodeStranger-Fred/policyeval/mdp"
)

type Printer struct {
	w   io.Writer
	au  aurora.Aurora
	env *env.Environment
}

// NewPrinter writes to w; colors toggles ANSI escapes.
func NewPrinter(w io.Writer, e *env.Environment, colors bool) *Printer {
	return &Printer{w: w, au: aurora.NewAurora(colors), env: e}
}

// Values prints one cell per state laid out on the environment's grid.
func (p *Printer) Values(v []float64) {
	p.grid(func(s mdp.State) aurora.Value {
		cell := format2x2(v[s])
		switch {
		case p.env.Model.IsTerminal(s):
			return p.au.White(cell)
		case v[s] < 0:
			return p.au.Red(cell)
		}
		return p.au.Blue(cell)
	})
}

// Policy prints the action chosen in every non-terminal state.
func (p *Printer) Policy(policy mdp.Policy) {
	p.grid(func(s mdp.State) aurora.Value {
		if p.env.Model.IsTerminal(s) {
			return p.au.White(fmt.Sprintf("%6s ", "*"))
		}
		a, ok := policy.Act(s)
		if !ok {
			return p.au.Red(fmt.Sprintf("%6s ", "?"))
		}
		return p.au.Blue(fmt.Sprintf("%6s ", p.env.ActionName(a)))
	})
}

// State highlights the current state among the state ids.
func (p *Printer) State(current mdp.State) {
	p.grid(func(s mdp.State) aurora.Value {
		cell := fmt.Sprintf("%5d ", s)
		if s == current {
			return p.au.Green(cell)
		}
		return p.au.Blue(cell)
	})
}

func (p *Printer) grid(cell func(mdp.State) aurora.Value) {
	rows, cols := p.env.Rows, p.env.Cols
	if rows*cols != p.env.Model.NumStates() {
		rows, cols = p.env.Model.NumStates(), 1
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			fmt.Fprint(p.w, cell(mdp.State(r*cols+c)))
			fmt.Fprint(p.w, p.au.White("|"))
		}
		fmt.Fprintln(p.w)
	}
}

func format2x2(x float64) string {
	if x < 0 {
		return " -" + fmt.Sprintf("%05.2f", -x)
	}
	return fmt.Sprintf(" %05.2f", x)
}
