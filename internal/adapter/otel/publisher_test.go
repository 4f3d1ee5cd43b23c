package otel_test

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/neomorfeo/innledger/internal/adapter/otel"
	"github.com/neomorfeo/innledger/internal/domain"
)

// --- Mock publisher ---

type mockPublisher struct {
	events []domain.ChangeEvent
}

func (m *mockPublisher) Publish(_ context.Context, e domain.ChangeEvent) error {
	m.events = append(m.events, e)
	return nil
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(_ context.Context, _ domain.ChangeEvent) error {
	return fmt.Errorf("publish failed")
}

func expenseDeleted() domain.ChangeEvent {
	return domain.ChangeEvent{
		Entity:   domain.KindExpense,
		Change:   domain.ChangeDeleted,
		TenantID: "h-1",
		ActorID:  "u-1",
		Before:   domain.Expense{ID: "e-1", TenantID: "h-1"},
	}
}

// --- Tests ---

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockPublisher{}
	pub := adapter.NewTracingPublisher(inner)

	if err := pub.Publish(context.Background(), expenseDeleted()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}

	assertAttribute(t, spans[0], "event.entity", "expense")
	assertAttribute(t, spans[0], "event.change", "deleted")
	assertAttribute(t, spans[0], "hotel.id", "h-1")
	assertAttribute(t, spans[0], "actor.id", "u-1")

	if len(inner.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(inner.events))
	}
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(&failingPublisher{})

	if err := pub.Publish(context.Background(), expenseDeleted()); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}
