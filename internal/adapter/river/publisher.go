package river

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/innledger/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries a committed change through the queue. Before and
// After are JSON snapshots of the entity so the worker never needs to query
// the database.
type EventJobArgs struct {
	Entity   string          `json:"entity"`
	Change   string          `json:"change"`
	TenantID string          `json:"hotel_id"`
	ActorID  string          `json:"actor_id"`
	Before   json.RawMessage `json:"before,omitempty"`
	After    json.RawMessage `json:"after,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "ledger.change" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a change event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	args, err := NewEventJobArgs(event)
	if err != nil {
		return err
	}
	if _, err := p.client.Insert(ctx, args, nil); err != nil {
		return fmt.Errorf("enqueuing change job: %w", err)
	}
	return nil
}

// NewEventJobArgs snapshots event into job arguments.
func NewEventJobArgs(event domain.ChangeEvent) (EventJobArgs, error) {
	before, err := snapshot(event.Before)
	if err != nil {
		return EventJobArgs{}, fmt.Errorf("encoding before snapshot: %w", err)
	}
	after, err := snapshot(event.After)
	if err != nil {
		return EventJobArgs{}, fmt.Errorf("encoding after snapshot: %w", err)
	}
	return EventJobArgs{
		Entity:   string(event.Entity),
		Change:   string(event.Change),
		TenantID: event.TenantID,
		ActorID:  event.ActorID,
		Before:   before,
		After:    after,
	}, nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
