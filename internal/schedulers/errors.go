package schedulers

import (
	"errors"
	"fmt"
)

var (
	ErrInvariantViolation = errors.New("invariant violation")
	ErrTickLimit          = errors.New("tick limit exceeded")
	ErrInvalidOptions     = errors.New("invalid scheduler options")
)

// Phase names the step of a tick in which something was observed.
type Phase string

const (
	PhaseAdmit      Phase = "admit"
	PhaseTurnaround Phase = "turnaround"
	PhaseCore       Phase = "core"
	PhaseResponse   Phase = "response"
	PhaseDispatch   Phase = "dispatch"
	PhaseIo         Phase = "io"
	PhaseCheck      Phase = "check"
)

// InvariantViolation aborts a run. It carries enough context to find the
// offending process in a tick trace.
type InvariantViolation struct {
	Pid    int
	Tick   int
	Phase  Phase
	Reason string
	Err    error
}

func (e *InvariantViolation) Error() string {
	msg := fmt.Sprintf("invariant violation at tick %d (%s), pid %d: %s", e.Tick, e.Phase, e.Pid, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantViolation) Is(target error) bool {
	return target == ErrInvariantViolation
}

func (e *InvariantViolation) Unwrap() error {
	return e.Err
}
