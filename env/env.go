// Package env provides ready-made MDPs and a reset/step simulator over them.
package env

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/exp/rand"

	"github.com/CodeStranger-Fred/policyeval/mdp"
)

// Environment is a named model with a default start state and a grid layout for display.
type Environment struct {
	Name  string
	Model *mdp.Model
	Start mdp.State

	Rows int
	Cols int

	ActionNames []string
}

// NewEnvironment validates table and wraps it with a start state and a rows x cols layout.
// A layout that does not cover every state is rendered as a single column.
func NewEnvironment(name string, start mdp.State, rows, cols int, actionNames []string, table mdp.Table) (*Environment, error) {
	model, err := mdp.NewModel(table)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", name, err)
	}
	if start < 0 || int(start) >= model.NumStates() {
		return nil, fmt.Errorf("failed to build %s: %w: start state %d", name, mdp.ErrInvalidKey, start)
	}
	return &Environment{
		Name:        name,
		Model:       model,
		Start:       start,
		Rows:        rows,
		Cols:        cols,
		ActionNames: append([]string(nil), actionNames...),
	}, nil
}

// Transitions exposes the model lookup the evaluator depends on.
func (e *Environment) Transitions(s mdp.State, a mdp.Action) ([]mdp.Transition, error) {
	return e.Model.Transitions(s, a)
}

// ActionName returns a readable name for a, falling back to its number.
func (e *Environment) ActionName(a mdp.Action) string {
	if a >= 0 && int(a) < len(e.ActionNames) {
		return e.ActionNames[a]
	}
	return strconv.Itoa(int(a))
}

// ParseAction accepts an action name or number. Numbers must fall within ActionNames when names are known.
func (e *Environment) ParseAction(name string) (mdp.Action, error) {
	for i, n := range e.ActionNames {
		if n == name {
			return mdp.Action(i), nil
		}
	}
	a, err := strconv.Atoi(name)
	if err != nil || a < 0 || (len(e.ActionNames) > 0 && a >= len(e.ActionNames)) {
		return 0, fmt.Errorf("%w: unknown action %q for %s", mdp.ErrInvalidKey, name, e.Name)
	}
	return mdp.Action(a), nil
}

// Simulator walks an environment one sampled outcome at a time.
type Simulator struct {
	env     *Environment
	current mdp.State
	src     rand.Source
}

// NewSimulator starts at the environment's start state. A nil src is seeded from the clock.
func NewSimulator(e *Environment, src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	return &Simulator{env: e, current: e.Start, src: src}
}

func (s *Simulator) Current() mdp.State {
	return s.current
}

// Reset moves back to the start state.
func (s *Simulator) Reset() mdp.State {
	s.current = s.env.Start
	return s.current
}

// Step returns every possible outcome of action from the current state without moving.
func (s *Simulator) Step(action mdp.Action) ([]mdp.Transition, error) {
	return s.env.Model.Transitions(s.current, action)
}

// StepWithChoice samples one outcome of action and moves to its next state.
func (s *Simulator) StepWithChoice(action mdp.Action) (mdp.Transition, error) {
	t, err := s.env.Model.SampleTransition(s.current, action, s.src)
	if err != nil {
		return mdp.Transition{}, err
	}
	s.current = t.NextState
	return t, nil
}

type Constructor func() (*Environment, error)

var registry = map[string]Constructor{
	"bw":    BanditWalk,
	"bsw":   BanditSlipperyWalk,
	"fl":    FrozenLake,
	"swf":   SlipperyWalkFive,
	"windy": DefaultWindyGridWorld().Environment,
}

// Names lists the built-in environments in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a fresh instance of the named environment.
func New(name string) (*Environment, error) {
	constructor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown environment %q, want one of %v", mdp.ErrInvalidKey, name, Names())
	}
	return constructor()
}
