package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/neomorfeo/innledger/internal/adapter/fsm"
	"github.com/neomorfeo/innledger/internal/domain"
)

func TestValidator_AllTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.PeriodTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_InvalidTransition(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// An open month cannot be reopened.
	_, err := v.Apply(ctx, domain.PeriodOpen, domain.EventReopen)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Event != domain.EventReopen {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventReopen)
	}
	if trErr.Current != domain.PeriodOpen {
		t.Errorf("current = %q, want %q", trErr.Current, domain.PeriodOpen)
	}
}

func TestValidator_CloseTwice(t *testing.T) {
	v := adapter.New()

	_, err := v.Apply(context.Background(), domain.PeriodClosed, domain.EventClose)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}

func TestValidator_FullCycle(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	state := domain.PeriodOpen
	for _, event := range []domain.PeriodEvent{domain.EventClose, domain.EventReopen, domain.EventClose} {
		next, err := v.Apply(ctx, state, event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", state, event, err)
		}
		state = next
	}
	if state != domain.PeriodClosed {
		t.Errorf("final state = %q, want %q", state, domain.PeriodClosed)
	}
}

func TestValidator_UnknownEvent(t *testing.T) {
	v := adapter.New()

	_, err := v.Apply(context.Background(), domain.PeriodOpen, domain.PeriodEvent("archive"))
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
}
