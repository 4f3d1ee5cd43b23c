package river

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
)

// EventWorker processes change jobs from the River queue. It renders a
// one-line notification and logs it.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single change job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "ledger change",
		"summary", Summary(job.Args),
		"entity", job.Args.Entity,
		"change", job.Args.Change,
		"hotel_id", job.Args.TenantID,
		"actor_id", job.Args.ActorID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// Summary renders the notification text for a change, e.g.
// "payment 7f3c created by u-1 (amount 150)".
func Summary(args EventJobArgs) string {
	snap := args.After
	if len(snap) == 0 {
		snap = args.Before
	}

	var fields struct {
		ID     string          `json:"id"`
		Amount json.RawMessage `json:"amount"`
		Month  string          `json:"month"`
	}
	if len(snap) > 0 {
		if err := json.Unmarshal(snap, &fields); err != nil {
			slog.Debug("change snapshot not decoded, summary omits its fields",
				"entity", args.Entity,
				"error", err,
			)
		}
	}

	s := args.Entity
	switch {
	case fields.Month != "":
		s += " " + fields.Month
	case fields.ID != "":
		s += " " + fields.ID
	}
	s += " " + args.Change
	if args.ActorID != "" {
		s += " by " + args.ActorID
	}
	if len(fields.Amount) > 0 {
		var amount string
		if err := json.Unmarshal(fields.Amount, &amount); err != nil {
			amount = string(fields.Amount)
		}
		s += fmt.Sprintf(" (amount %s)", amount)
	}
	return s
}
