package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/neomorfeo/innledger/internal/domain"
)

// ClosingService computes period totals and drives the open/closed state of
// each (hotel, month). The existence of a MonthClosing is the closed state.
type ClosingService struct {
	store     domain.Store
	guard     *AccessGuard
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	clock     domain.Clock
}

// NewClosingService wires a ClosingService.
func NewClosingService(
	store domain.Store,
	guard *AccessGuard,
	validator domain.TransitionValidator,
	publisher domain.EventPublisher,
	clock domain.Clock,
) *ClosingService {
	return &ClosingService{
		store:     store,
		guard:     guard,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

// ClosePreviousMonth closes the calendar month before the current one in the
// hotel's timezone. When that month is already closed the stored closing is
// returned unchanged and created is false.
func (s *ClosingService) ClosePreviousMonth(ctx context.Context, caller domain.Caller) (closing domain.MonthClosing, created bool, err error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.MonthClosing{}, false, err
	}
	loc, err := s.location(ctx, caller.TenantID)
	if err != nil {
		return domain.MonthClosing{}, false, err
	}
	now := s.clock.Now()
	month := domain.MonthOf(now.In(loc)).Previous()

	existing, err := s.store.GetClosing(ctx, caller.TenantID, month)
	state := domain.PeriodClosed
	switch {
	case errors.Is(err, domain.ErrNotFound):
		state = domain.PeriodOpen
	case err != nil:
		return domain.MonthClosing{}, false, fmt.Errorf("loading closing %s: %w", month, err)
	}

	if _, err := s.validator.Apply(ctx, state, domain.EventClose); err != nil {
		var terr *domain.TransitionError
		if errors.As(err, &terr) {
			return existing, false, nil
		}
		return domain.MonthClosing{}, false, err
	}

	totals, err := s.ComputeTotals(ctx, caller.TenantID, month.FirstDay(), month.LastDay())
	if err != nil {
		return domain.MonthClosing{}, false, err
	}

	stored, created, err := s.store.InsertClosingIfAbsent(ctx, domain.MonthClosing{
		ID:       generateID(),
		TenantID: caller.TenantID,
		Month:    month,
		ClosedAt: now.UTC(),
		Totals:   totals,
	})
	if err != nil {
		return domain.MonthClosing{}, false, fmt.Errorf("storing closing %s: %w", month, err)
	}
	if created {
		emit(ctx, s.publisher, domain.ChangeEvent{
			Entity:   domain.KindMonthClosing,
			Change:   domain.ChangeCreated,
			TenantID: caller.TenantID,
			ActorID:  caller.UserID,
			After:    stored,
		})
	}
	return stored, created, nil
}

// ReopenMonth deletes the closing of month. Admin only. Reopening a month
// that is not closed fails with *NotFoundError.
func (s *ClosingService) ReopenMonth(ctx context.Context, caller domain.Caller, month domain.Month) error {
	if err := s.guard.RequireAdmin(caller, "reopening a month"); err != nil {
		return err
	}

	closing, err := s.store.GetClosing(ctx, caller.TenantID, month)
	state := domain.PeriodClosed
	switch {
	case errors.Is(err, domain.ErrNotFound):
		state = domain.PeriodOpen
	case err != nil:
		return fmt.Errorf("loading closing %s: %w", month, err)
	}

	if _, err := s.validator.Apply(ctx, state, domain.EventReopen); err != nil {
		var terr *domain.TransitionError
		if errors.As(err, &terr) {
			return &domain.NotFoundError{Kind: domain.KindMonthClosing, ID: month.String()}
		}
		return err
	}

	if err := s.store.DeleteClosing(ctx, caller.TenantID, month); err != nil {
		return fmt.Errorf("deleting closing %s: %w", month, err)
	}
	emit(ctx, s.publisher, domain.ChangeEvent{
		Entity:   domain.KindMonthClosing,
		Change:   domain.ChangeDeleted,
		TenantID: caller.TenantID,
		ActorID:  caller.UserID,
		Before:   closing,
	})
	return nil
}

// ComputeTotals aggregates the hotel's ledger and occupancy over the
// inclusive calendar range [from, to], read in the hotel's timezone.
func (s *ClosingService) ComputeTotals(ctx context.Context, tenantID string, from, to time.Time) (domain.TotalsSnapshot, error) {
	loc, err := s.location(ctx, tenantID)
	if err != nil {
		return domain.TotalsSnapshot{}, err
	}
	from, to = domain.Date(from), domain.Date(to)
	window := domain.DayWindow(from, to, loc)

	payments, err := s.store.ListPayments(ctx, tenantID, window)
	if err != nil {
		return domain.TotalsSnapshot{}, fmt.Errorf("listing payments: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx, tenantID, window)
	if err != nil {
		return domain.TotalsSnapshot{}, fmt.Errorf("listing expenses: %w", err)
	}
	rooms, err := s.store.ListRooms(ctx, tenantID)
	if err != nil {
		return domain.TotalsSnapshot{}, fmt.Errorf("listing rooms: %w", err)
	}
	active := 0
	for _, r := range rooms {
		if r.Active {
			active++
		}
	}

	var stays []domain.Stay
	if !to.Before(from) {
		stays, err = s.store.ListStays(ctx, tenantID, domain.StayFilter{
			Statuses:    domain.OccupiedStatuses,
			Overlapping: &domain.Interval{Start: from, End: to.AddDate(0, 0, 1)},
		})
		if err != nil {
			return domain.TotalsSnapshot{}, fmt.Errorf("listing stays: %w", err)
		}
	}

	return domain.ComputeTotals(domain.TotalsInput{
		From:        from,
		To:          to,
		Payments:    payments,
		Expenses:    expenses,
		Stays:       stays,
		ActiveRooms: active,
	}), nil
}

// Report computes totals for an arbitrary inclusive range. Admin only.
func (s *ClosingService) Report(ctx context.Context, caller domain.Caller, from, to time.Time) (domain.TotalsSnapshot, error) {
	if err := s.guard.RequireAdmin(caller, "viewing reports"); err != nil {
		return domain.TotalsSnapshot{}, err
	}
	if domain.Date(to).Before(domain.Date(from)) {
		return domain.TotalsSnapshot{}, &domain.ValidationError{
			Kind:    domain.ErrInvalidInterval,
			Message: "to must not be before from",
		}
	}
	return s.ComputeTotals(ctx, caller.TenantID, from, to)
}

// ListClosings returns the hotel's closings, newest month first.
func (s *ClosingService) ListClosings(ctx context.Context, caller domain.Caller) ([]domain.MonthClosing, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	closings, err := s.store.ListClosings(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("listing closings: %w", err)
	}
	sort.Slice(closings, func(i, j int) bool { return closings[i].Month > closings[j].Month })
	return closings, nil
}

// GetClosing returns the closing of month.
func (s *ClosingService) GetClosing(ctx context.Context, caller domain.Caller, month domain.Month) (domain.MonthClosing, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.MonthClosing{}, err
	}
	return s.store.GetClosing(ctx, caller.TenantID, month)
}

// EnsureOpen is the mutation gate. It fails with *PeriodClosedError when at
// falls inside a closed month of the hotel, unless the caller is an admin.
func (s *ClosingService) EnsureOpen(ctx context.Context, caller domain.Caller, at time.Time) error {
	if caller.IsAdmin() {
		return nil
	}
	loc, err := s.location(ctx, caller.TenantID)
	if err != nil {
		return err
	}
	month := domain.MonthOf(at.In(loc))
	_, err = s.store.GetClosing(ctx, caller.TenantID, month)
	switch {
	case err == nil:
		return &domain.PeriodClosedError{Month: month}
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("checking closing %s: %w", month, err)
	}
}

// location is the hotel's timezone. An unknown hotel reads as UTC.
func (s *ClosingService) location(ctx context.Context, tenantID string) (*time.Location, error) {
	hotel, err := s.store.GetHotel(ctx, tenantID)
	if errors.Is(err, domain.ErrNotFound) {
		return time.UTC, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading hotel %s: %w", tenantID, err)
	}
	return hotel.Location(), nil
}
