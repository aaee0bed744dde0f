package mdp

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKey       = errors.New("undefined state or action")
	ErrInvalidPolicy    = errors.New("invalid policy")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNonConvergence   = errors.New("policy evaluation did not converge")
	ErrInvalidModel     = errors.New("invalid model")
)

// ProbabilitySumError reports a state/action whose outcome probabilities do not sum to 1.
// It matches ErrInvalidModel.
type ProbabilitySumError struct {
	State  State
	Action Action
	Sum    float64
}

func (e *ProbabilitySumError) Error() string {
	return fmt.Sprintf("invalid model: probabilities for state %d action %d sum to %v, want 1", e.State, e.Action, e.Sum)
}

func (e *ProbabilitySumError) Is(target error) bool {
	return target == ErrInvalidModel
}
