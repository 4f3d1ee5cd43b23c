package fsm

import (
	"context"
	"errors"
	"fmt"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/innledger/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// Validator checks period transitions with looplab/fsm. The machine is
// stateful, so Apply seeds a fresh one with the period's current state.
type Validator struct {
	events loopfsm.Events
}

// New builds a validator from domain.PeriodTransitions.
func New() *Validator {
	events := make(loopfsm.Events, 0, len(domain.PeriodTransitions))
	for _, t := range domain.PeriodTransitions {
		events = append(events, loopfsm.EventDesc{
			Name: string(t.Event),
			Src:  []string{string(t.Src)},
			Dst:  string(t.Dst),
		})
	}
	return &Validator{events: events}
}

// Apply returns the state reached by applying event to current, or a
// *domain.TransitionError when the period cannot take that event.
func (v *Validator) Apply(ctx context.Context, current domain.PeriodState, event domain.PeriodEvent) (domain.PeriodState, error) {
	machine := loopfsm.NewFSM(string(current), v.events, nil)

	err := machine.Event(ctx, string(event))
	switch {
	case err == nil:
		return domain.PeriodState(machine.Current()), nil
	case rejected(err):
		return "", &domain.TransitionError{Event: event, Current: current}
	default:
		return "", fmt.Errorf("period %s on %s: %w", event, current, err)
	}
}

func rejected(err error) bool {
	var invalid loopfsm.InvalidEventError
	var unknown loopfsm.UnknownEventError
	var none loopfsm.NoTransitionError
	return errors.As(err, &invalid) || errors.As(err, &unknown) || errors.As(err, &none)
}
