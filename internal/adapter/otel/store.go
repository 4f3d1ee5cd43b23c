package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/innledger/internal/domain"
)

const tracerName = "github.com/neomorfeo/innledger/internal/adapter/otel"

// TracingStore wraps a domain.Store with OpenTelemetry tracing.
// Each method creates a span named after the repository call, tagged with
// the tenant and entity ids, and records errors.
type TracingStore struct {
	next   domain.Store
	tracer trace.Tracer
}

// Compile-time check: TracingStore implements domain.Store.
var _ domain.Store = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.Store) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingStore) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// exec traces a call without a result.
func (s *TracingStore) exec(ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := s.start(ctx, name, attrs...)
	err := fn(ctx)
	finish(span, err)
	return err
}

// fetch traces a call returning one value.
func fetch[T any](ctx context.Context, s *TracingStore, name string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := s.start(ctx, name, attrs...)
	v, err := fn(ctx)
	finish(span, err)
	return v, err
}

// list traces a call returning a slice and records its length.
func list[T any](ctx context.Context, s *TracingStore, name string, attrs []attribute.KeyValue, fn func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := s.start(ctx, name, attrs...)
	v, err := fn(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(v)))
	}
	finish(span, err)
	return v, err
}

func ids(tenantID, id string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("hotel.id", tenantID),
		attribute.String("entity.id", id),
	}
}

func tenant(tenantID string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("hotel.id", tenantID)}
}

func window(tenantID string, r domain.TimeRange) []attribute.KeyValue {
	attrs := tenant(tenantID)
	if !r.IsZero() {
		attrs = append(attrs,
			attribute.String("range.from", r.From.UTC().Format("2006-01-02T15:04:05Z")),
			attribute.String("range.to", r.To.UTC().Format("2006-01-02T15:04:05Z")),
		)
	}
	return attrs
}

// --- hotels ---

func (s *TracingStore) CreateHotel(ctx context.Context, h domain.Hotel) error {
	return s.exec(ctx, "Store.CreateHotel", tenant(h.ID), func(ctx context.Context) error {
		return s.next.CreateHotel(ctx, h)
	})
}

func (s *TracingStore) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	return fetch(ctx, s, "Store.GetHotel", tenant(id), func(ctx context.Context) (domain.Hotel, error) {
		return s.next.GetHotel(ctx, id)
	})
}

func (s *TracingStore) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	return s.exec(ctx, "Store.UpdateHotel", tenant(h.ID), func(ctx context.Context) error {
		return s.next.UpdateHotel(ctx, h)
	})
}

func (s *TracingStore) DeleteHotel(ctx context.Context, id string) error {
	return s.exec(ctx, "Store.DeleteHotel", tenant(id), func(ctx context.Context) error {
		return s.next.DeleteHotel(ctx, id)
	})
}

// --- rooms ---

func (s *TracingStore) CreateRoom(ctx context.Context, r domain.Room) error {
	return s.exec(ctx, "Store.CreateRoom", ids(r.TenantID, r.ID), func(ctx context.Context) error {
		return s.next.CreateRoom(ctx, r)
	})
}

func (s *TracingStore) GetRoom(ctx context.Context, tenantID, id string) (domain.Room, error) {
	return fetch(ctx, s, "Store.GetRoom", ids(tenantID, id), func(ctx context.Context) (domain.Room, error) {
		return s.next.GetRoom(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListRooms(ctx context.Context, tenantID string) ([]domain.Room, error) {
	return list(ctx, s, "Store.ListRooms", tenant(tenantID), func(ctx context.Context) ([]domain.Room, error) {
		return s.next.ListRooms(ctx, tenantID)
	})
}

func (s *TracingStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	return s.exec(ctx, "Store.UpdateRoom", ids(r.TenantID, r.ID), func(ctx context.Context) error {
		return s.next.UpdateRoom(ctx, r)
	})
}

func (s *TracingStore) DeleteRoom(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeleteRoom", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeleteRoom(ctx, tenantID, id)
	})
}

// --- stays ---

func (s *TracingStore) CreateStay(ctx context.Context, st domain.Stay) error {
	attrs := append(ids(st.TenantID, st.ID),
		attribute.String("room.id", st.RoomID),
		attribute.String("stay.status", string(st.Status)),
	)
	return s.exec(ctx, "Store.CreateStay", attrs, func(ctx context.Context) error {
		return s.next.CreateStay(ctx, st)
	})
}

func (s *TracingStore) GetStay(ctx context.Context, tenantID, id string) (domain.Stay, error) {
	return fetch(ctx, s, "Store.GetStay", ids(tenantID, id), func(ctx context.Context) (domain.Stay, error) {
		return s.next.GetStay(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListStays(ctx context.Context, tenantID string, f domain.StayFilter) ([]domain.Stay, error) {
	attrs := tenant(tenantID)
	if f.RoomID != "" {
		attrs = append(attrs, attribute.String("room.id", f.RoomID))
	}
	if f.Overlapping != nil {
		attrs = append(attrs,
			attribute.String("interval.start", f.Overlapping.Start.Format(domain.DateLayout)),
			attribute.String("interval.end", f.Overlapping.End.Format(domain.DateLayout)),
		)
	}
	return list(ctx, s, "Store.ListStays", attrs, func(ctx context.Context) ([]domain.Stay, error) {
		return s.next.ListStays(ctx, tenantID, f)
	})
}

func (s *TracingStore) UpdateStay(ctx context.Context, st domain.Stay) error {
	attrs := append(ids(st.TenantID, st.ID),
		attribute.String("room.id", st.RoomID),
		attribute.String("stay.status", string(st.Status)),
	)
	return s.exec(ctx, "Store.UpdateStay", attrs, func(ctx context.Context) error {
		return s.next.UpdateStay(ctx, st)
	})
}

func (s *TracingStore) DeleteStay(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeleteStay", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeleteStay(ctx, tenantID, id)
	})
}

// --- payments ---

func (s *TracingStore) CreatePayment(ctx context.Context, p domain.Payment) error {
	attrs := append(ids(p.TenantID, p.ID), attribute.String("stay.id", p.StayID))
	return s.exec(ctx, "Store.CreatePayment", attrs, func(ctx context.Context) error {
		return s.next.CreatePayment(ctx, p)
	})
}

func (s *TracingStore) GetPayment(ctx context.Context, tenantID, id string) (domain.Payment, error) {
	return fetch(ctx, s, "Store.GetPayment", ids(tenantID, id), func(ctx context.Context) (domain.Payment, error) {
		return s.next.GetPayment(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListPayments(ctx context.Context, tenantID string, r domain.TimeRange) ([]domain.Payment, error) {
	return list(ctx, s, "Store.ListPayments", window(tenantID, r), func(ctx context.Context) ([]domain.Payment, error) {
		return s.next.ListPayments(ctx, tenantID, r)
	})
}

func (s *TracingStore) CountPaymentsForStay(ctx context.Context, tenantID, stayID string) (int, error) {
	attrs := append(tenant(tenantID), attribute.String("stay.id", stayID))
	return fetch(ctx, s, "Store.CountPaymentsForStay", attrs, func(ctx context.Context) (int, error) {
		return s.next.CountPaymentsForStay(ctx, tenantID, stayID)
	})
}

func (s *TracingStore) UpdatePayment(ctx context.Context, p domain.Payment) error {
	return s.exec(ctx, "Store.UpdatePayment", ids(p.TenantID, p.ID), func(ctx context.Context) error {
		return s.next.UpdatePayment(ctx, p)
	})
}

func (s *TracingStore) DeletePayment(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeletePayment", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeletePayment(ctx, tenantID, id)
	})
}

// --- expenses ---

func (s *TracingStore) CreateExpense(ctx context.Context, e domain.Expense) error {
	return s.exec(ctx, "Store.CreateExpense", ids(e.TenantID, e.ID), func(ctx context.Context) error {
		return s.next.CreateExpense(ctx, e)
	})
}

func (s *TracingStore) GetExpense(ctx context.Context, tenantID, id string) (domain.Expense, error) {
	return fetch(ctx, s, "Store.GetExpense", ids(tenantID, id), func(ctx context.Context) (domain.Expense, error) {
		return s.next.GetExpense(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListExpenses(ctx context.Context, tenantID string, r domain.TimeRange) ([]domain.Expense, error) {
	return list(ctx, s, "Store.ListExpenses", window(tenantID, r), func(ctx context.Context) ([]domain.Expense, error) {
		return s.next.ListExpenses(ctx, tenantID, r)
	})
}

func (s *TracingStore) UpdateExpense(ctx context.Context, e domain.Expense) error {
	return s.exec(ctx, "Store.UpdateExpense", ids(e.TenantID, e.ID), func(ctx context.Context) error {
		return s.next.UpdateExpense(ctx, e)
	})
}

func (s *TracingStore) DeleteExpense(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeleteExpense", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeleteExpense(ctx, tenantID, id)
	})
}

// --- transfers ---

func (s *TracingStore) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	return s.exec(ctx, "Store.CreateTransfer", ids(t.TenantID, t.ID), func(ctx context.Context) error {
		return s.next.CreateTransfer(ctx, t)
	})
}

func (s *TracingStore) GetTransfer(ctx context.Context, tenantID, id string) (domain.Transfer, error) {
	return fetch(ctx, s, "Store.GetTransfer", ids(tenantID, id), func(ctx context.Context) (domain.Transfer, error) {
		return s.next.GetTransfer(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListTransfers(ctx context.Context, tenantID string, r domain.TimeRange) ([]domain.Transfer, error) {
	return list(ctx, s, "Store.ListTransfers", window(tenantID, r), func(ctx context.Context) ([]domain.Transfer, error) {
		return s.next.ListTransfers(ctx, tenantID, r)
	})
}

func (s *TracingStore) UpdateTransfer(ctx context.Context, t domain.Transfer) error {
	return s.exec(ctx, "Store.UpdateTransfer", ids(t.TenantID, t.ID), func(ctx context.Context) error {
		return s.next.UpdateTransfer(ctx, t)
	})
}

func (s *TracingStore) DeleteTransfer(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeleteTransfer", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeleteTransfer(ctx, tenantID, id)
	})
}

// --- closings ---

func (s *TracingStore) InsertClosingIfAbsent(ctx context.Context, c domain.MonthClosing) (domain.MonthClosing, bool, error) {
	ctx, span := s.start(ctx, "Store.InsertClosingIfAbsent",
		attribute.String("hotel.id", c.TenantID),
		attribute.String("closing.month", c.Month.String()),
	)
	stored, created, err := s.next.InsertClosingIfAbsent(ctx, c)
	if err == nil {
		span.SetAttributes(attribute.Bool("closing.created", created))
	}
	finish(span, err)
	return stored, created, err
}

func (s *TracingStore) GetClosing(ctx context.Context, tenantID string, month domain.Month) (domain.MonthClosing, error) {
	attrs := append(tenant(tenantID), attribute.String("closing.month", month.String()))
	return fetch(ctx, s, "Store.GetClosing", attrs, func(ctx context.Context) (domain.MonthClosing, error) {
		return s.next.GetClosing(ctx, tenantID, month)
	})
}

func (s *TracingStore) ListClosings(ctx context.Context, tenantID string) ([]domain.MonthClosing, error) {
	return list(ctx, s, "Store.ListClosings", tenant(tenantID), func(ctx context.Context) ([]domain.MonthClosing, error) {
		return s.next.ListClosings(ctx, tenantID)
	})
}

func (s *TracingStore) DeleteClosing(ctx context.Context, tenantID string, month domain.Month) error {
	attrs := append(tenant(tenantID), attribute.String("closing.month", month.String()))
	return s.exec(ctx, "Store.DeleteClosing", attrs, func(ctx context.Context) error {
		return s.next.DeleteClosing(ctx, tenantID, month)
	})
}

// --- profiles ---

func (s *TracingStore) CreateProfile(ctx context.Context, p domain.Profile) error {
	return s.exec(ctx, "Store.CreateProfile", ids(p.TenantID, p.ID), func(ctx context.Context) error {
		return s.next.CreateProfile(ctx, p)
	})
}

func (s *TracingStore) GetProfile(ctx context.Context, tenantID, id string) (domain.Profile, error) {
	return fetch(ctx, s, "Store.GetProfile", ids(tenantID, id), func(ctx context.Context) (domain.Profile, error) {
		return s.next.GetProfile(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListProfiles(ctx context.Context, tenantID string) ([]domain.Profile, error) {
	return list(ctx, s, "Store.ListProfiles", tenant(tenantID), func(ctx context.Context) ([]domain.Profile, error) {
		return s.next.ListProfiles(ctx, tenantID)
	})
}

func (s *TracingStore) UpdateProfile(ctx context.Context, p domain.Profile) error {
	return s.exec(ctx, "Store.UpdateProfile", ids(p.TenantID, p.ID), func(ctx context.Context) error {
		return s.next.UpdateProfile(ctx, p)
	})
}

func (s *TracingStore) DeleteProfile(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeleteProfile", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeleteProfile(ctx, tenantID, id)
	})
}

// --- custom channels ---

func (s *TracingStore) CreateChannel(ctx context.Context, c domain.CustomChannel) error {
	return s.exec(ctx, "Store.CreateChannel", ids(c.TenantID, c.ID), func(ctx context.Context) error {
		return s.next.CreateChannel(ctx, c)
	})
}

func (s *TracingStore) GetChannel(ctx context.Context, tenantID, id string) (domain.CustomChannel, error) {
	return fetch(ctx, s, "Store.GetChannel", ids(tenantID, id), func(ctx context.Context) (domain.CustomChannel, error) {
		return s.next.GetChannel(ctx, tenantID, id)
	})
}

func (s *TracingStore) ListChannels(ctx context.Context, tenantID string) ([]domain.CustomChannel, error) {
	return list(ctx, s, "Store.ListChannels", tenant(tenantID), func(ctx context.Context) ([]domain.CustomChannel, error) {
		return s.next.ListChannels(ctx, tenantID)
	})
}

func (s *TracingStore) DeleteChannel(ctx context.Context, tenantID, id string) error {
	return s.exec(ctx, "Store.DeleteChannel", ids(tenantID, id), func(ctx context.Context) error {
		return s.next.DeleteChannel(ctx, tenantID, id)
	})
}
