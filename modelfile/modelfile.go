// Package modelfile reads and writes environments as JSON documents checked against a JSON schema.
package modelfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/CodeStranger-Fred/policyeval/env"
	"github.com/CodeStranger-Fred/policyeval/mdp"
)

const schemaURL = "https://github.com/CodeStranger-Fred/policyeval/model.schema.json"

//go:embed model.schema.json
var schemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

type File struct {
	Name        string      `json:"name"`
	Start       int         `json:"start"`
	Rows        int         `json:"rows,omitempty"`
	Cols        int         `json:"cols,omitempty"`
	ActionNames []string    `json:"action_names,omitempty"`
	States      []StateJSON `json:"states"`
}

type StateJSON struct {
	State   int          `json:"state"`
	Actions []ActionJSON `json:"actions"`
}

type ActionJSON struct {
	Action      int              `json:"action"`
	Transitions []TransitionJSON `json:"transitions"`
}

type TransitionJSON struct {
	Probability float64 `json:"probability"`
	NextState   int     `json:"next_state"`
	Reward      float64 `json:"reward"`
	Terminal    bool    `json:"terminal"`
}

// Decode validates raw against the model schema and builds the environment it describes.
func Decode(raw []byte) (*env.Environment, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("model file does not match schema: %w", err)
	}

	var f File
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode model file: %w", err)
	}

	table := mdp.Table{}
	for _, st := range f.States {
		s := mdp.State(st.State)
		if _, dup := table[s]; dup {
			return nil, fmt.Errorf("%w: state %d listed twice", mdp.ErrInvalidModel, s)
		}
		table[s] = make(map[mdp.Action][]mdp.Transition, len(st.Actions))
		for _, act := range st.Actions {
			a := mdp.Action(act.Action)
			if _, dup := table[s][a]; dup {
				return nil, fmt.Errorf("%w: state %d lists action %d twice", mdp.ErrInvalidModel, s, a)
			}
			for _, t := range act.Transitions {
				table[s][a] = append(table[s][a], mdp.Transition{
					Probability: t.Probability,
					NextState:   mdp.State(t.NextState),
					Reward:      t.Reward,
					IsTerminal:  t.Terminal,
				})
			}
		}
	}

	return env.NewEnvironment(f.Name, mdp.State(f.Start), f.Rows, f.Cols, f.ActionNames, table)
}

func Load(path string) (*env.Environment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	return Decode(raw)
}

// Encode writes e as an indented model document with states and actions in ascending order.
func Encode(w io.Writer, e *env.Environment) error {
	f := File{
		Name:        e.Name,
		Start:       int(e.Start),
		Rows:        e.Rows,
		Cols:        e.Cols,
		ActionNames: e.ActionNames,
	}

	table := e.Model.Table()
	for s := 0; s < e.Model.NumStates(); s++ {
		st := StateJSON{State: s}
		actions := make([]int, 0, len(table[mdp.State(s)]))
		for a := range table[mdp.State(s)] {
			actions = append(actions, int(a))
		}
		sort.Ints(actions)

		for _, a := range actions {
			act := ActionJSON{Action: a}
			for _, t := range table[mdp.State(s)][mdp.Action(a)] {
				act.Transitions = append(act.Transitions, TransitionJSON{
					Probability: t.Probability,
					NextState:   int(t.NextState),
					Reward:      t.Reward,
					Terminal:    t.IsTerminal,
				})
			}
			st.Actions = append(st.Actions, act)
		}
		f.States = append(f.States, st)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func Save(path string, e *env.Environment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file %s: %w", path, err)
	}

	if err := Encode(f, e); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close model file %s: %w", path, err)
	}
	return nil
}
