package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/innledger/internal/domain"
)

// CreateStayCommand holds the fields of a new stay. An empty Status means BOOKED.
type CreateStayCommand struct {
	RoomID           string
	GuestName        string
	GuestPhone       string
	CheckIn          time.Time
	CheckOut         time.Time
	Status           domain.StayStatus
	PricePerNight    decimal.Decimal
	WeeklyDiscount   decimal.Decimal
	ManualAdjustment decimal.Decimal
	DepositExpected  decimal.Decimal
	Comment          string
}

// StayPatch lists the stay fields to change. Nil fields are kept.
type StayPatch struct {
	RoomID           *string
	GuestName        *string
	GuestPhone       *string
	CheckIn          *time.Time
	CheckOut         *time.Time
	Status           *domain.StayStatus
	PricePerNight    *decimal.Decimal
	WeeklyDiscount   *decimal.Decimal
	ManualAdjustment *decimal.Decimal
	DepositExpected  *decimal.Decimal
	Comment          *string
}

func (p StayPatch) apply(s domain.Stay) domain.Stay {
	if p.RoomID != nil {
		s.RoomID = *p.RoomID
	}
	if p.GuestName != nil {
		s.GuestName = strings.TrimSpace(*p.GuestName)
	}
	if p.GuestPhone != nil {
		s.GuestPhone = strings.TrimSpace(*p.GuestPhone)
	}
	if p.CheckIn != nil {
		s.CheckIn = domain.Date(*p.CheckIn)
	}
	if p.CheckOut != nil {
		s.CheckOut = domain.Date(*p.CheckOut)
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.PricePerNight != nil {
		s.PricePerNight = *p.PricePerNight
	}
	if p.WeeklyDiscount != nil {
		s.WeeklyDiscount = *p.WeeklyDiscount
	}
	if p.ManualAdjustment != nil {
		s.ManualAdjustment = *p.ManualAdjustment
	}
	if p.DepositExpected != nil {
		s.DepositExpected = *p.DepositExpected
	}
	if p.Comment != nil {
		s.Comment = *p.Comment
	}
	return s
}

// maxRelockAttempts bounds how often an update retries when the stay moved
// to another room between its read and the lock.
const maxRelockAttempts = 3

// BookingService creates, edits and deletes stays. Writes to one room are
// serialized through RoomLocks so the overlap check and the write are atomic.
type BookingService struct {
	store    domain.Store
	guard    *AccessGuard
	detector *OverlapDetector
	locks    *RoomLocks
	clock    domain.Clock
}

// NewBookingService wires a BookingService.
func NewBookingService(store domain.Store, guard *AccessGuard, locks *RoomLocks, clock domain.Clock) *BookingService {
	return &BookingService{
		store:    store,
		guard:    guard,
		detector: NewOverlapDetector(store),
		locks:    locks,
		clock:    clock,
	}
}

// CreateStay validates and persists a new stay. A blocking stay that
// overlaps another blocking stay of the room fails with *RoomOccupiedError.
func (s *BookingService) CreateStay(ctx context.Context, caller domain.Caller, cmd CreateStayCommand) (domain.Stay, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Stay{}, err
	}
	if cmd.Status == "" {
		cmd.Status = domain.StatusBooked
	}

	stay := domain.Stay{
		ID:               generateID(),
		TenantID:         caller.TenantID,
		RoomID:           cmd.RoomID,
		GuestName:        strings.TrimSpace(cmd.GuestName),
		GuestPhone:       strings.TrimSpace(cmd.GuestPhone),
		CheckIn:          domain.Date(cmd.CheckIn),
		CheckOut:         domain.Date(cmd.CheckOut),
		Status:           cmd.Status,
		PricePerNight:    cmd.PricePerNight,
		WeeklyDiscount:   cmd.WeeklyDiscount,
		ManualAdjustment: cmd.ManualAdjustment,
		DepositExpected:  cmd.DepositExpected,
		Comment:          cmd.Comment,
		CreatedAt:        s.clock.Now(),
	}
	if err := validateStay(stay); err != nil {
		return domain.Stay{}, err
	}

	unlock := s.locks.Lock(caller.TenantID, stay.RoomID)
	defer unlock()

	if _, err := s.store.GetRoom(ctx, caller.TenantID, stay.RoomID); err != nil {
		return domain.Stay{}, err
	}
	if err := s.checkAvailable(ctx, stay); err != nil {
		return domain.Stay{}, err
	}
	if err := s.store.CreateStay(ctx, stay); err != nil {
		return domain.Stay{}, fmt.Errorf("creating stay: %w", err)
	}
	return stay, nil
}

// UpdateStay applies patch to a stay and re-runs the overlap check whenever
// the result is blocking, excluding the stay itself.
func (s *BookingService) UpdateStay(ctx context.Context, caller domain.Caller, id string, patch StayPatch) (domain.Stay, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Stay{}, err
	}

	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		current, err := s.store.GetStay(ctx, caller.TenantID, id)
		if err != nil {
			return domain.Stay{}, err
		}
		next := patch.apply(current)

		unlock := s.locks.Lock(caller.TenantID, current.RoomID, next.RoomID)
		updated, retry, err := s.updateLocked(ctx, caller.TenantID, id, current.RoomID, patch)
		unlock()
		if retry {
			continue
		}
		return updated, err
	}
	return domain.Stay{}, &domain.ConflictError{Kind: domain.KindStay, Key: id}
}

// updateLocked runs with the locks of lockedRoom and the patch target held.
// It reports retry when the stay changed rooms after the locks were chosen.
func (s *BookingService) updateLocked(ctx context.Context, tenantID, id, lockedRoom string, patch StayPatch) (domain.Stay, bool, error) {
	current, err := s.store.GetStay(ctx, tenantID, id)
	if err != nil {
		return domain.Stay{}, false, err
	}
	if current.RoomID != lockedRoom {
		return domain.Stay{}, true, nil
	}

	next := patch.apply(current)
	if err := validateStay(next); err != nil {
		return domain.Stay{}, false, err
	}
	if patch.RoomID != nil {
		if _, err := s.store.GetRoom(ctx, tenantID, next.RoomID); err != nil {
			return domain.Stay{}, false, err
		}
	}
	if err := s.checkAvailable(ctx, next); err != nil {
		return domain.Stay{}, false, err
	}
	if err := s.store.UpdateStay(ctx, next); err != nil {
		return domain.Stay{}, false, fmt.Errorf("updating stay %s: %w", id, err)
	}
	return next, false, nil
}

// DeleteStay removes a stay unless the guest is checked in or payments
// reference it.
func (s *BookingService) DeleteStay(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.guard.Authorize(caller); err != nil {
		return err
	}

	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		current, err := s.store.GetStay(ctx, caller.TenantID, id)
		if err != nil {
			return err
		}

		unlock := s.locks.Lock(caller.TenantID, current.RoomID)
		retry, err := s.deleteLocked(ctx, caller.TenantID, id, current.RoomID)
		unlock()
		if retry {
			continue
		}
		return err
	}
	return &domain.ConflictError{Kind: domain.KindStay, Key: id}
}

func (s *BookingService) deleteLocked(ctx context.Context, tenantID, id, lockedRoom string) (bool, error) {
	stay, err := s.store.GetStay(ctx, tenantID, id)
	if err != nil {
		return false, err
	}
	if stay.RoomID != lockedRoom {
		return true, nil
	}
	if stay.Status == domain.StatusCheckedIn {
		return false, domain.ErrActiveStay
	}

	n, err := s.store.CountPaymentsForStay(ctx, tenantID, id)
	if err != nil {
		return false, fmt.Errorf("counting payments of stay %s: %w", id, err)
	}
	if n > 0 {
		return false, domain.ErrHasPayments
	}

	if err := s.store.DeleteStay(ctx, tenantID, id); err != nil {
		return false, fmt.Errorf("deleting stay %s: %w", id, err)
	}
	return false, nil
}

// GetStay returns one stay of the caller's hotel.
func (s *BookingService) GetStay(ctx context.Context, caller domain.Caller, id string) (domain.Stay, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Stay{}, err
	}
	return s.store.GetStay(ctx, caller.TenantID, id)
}

// ListStays returns the caller's stays, newest check-in first. roomID, when
// set, limits the list to one room.
func (s *BookingService) ListStays(ctx context.Context, caller domain.Caller, roomID string) ([]domain.Stay, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	stays, err := s.store.ListStays(ctx, caller.TenantID, domain.StayFilter{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("listing stays: %w", err)
	}
	sort.SliceStable(stays, func(i, j int) bool {
		if !stays[i].CheckIn.Equal(stays[j].CheckIn) {
			return stays[i].CheckIn.After(stays[j].CheckIn)
		}
		return stays[i].CreatedAt.After(stays[j].CreatedAt)
	})
	return stays, nil
}

func (s *BookingService) checkAvailable(ctx context.Context, stay domain.Stay) error {
	if !stay.Status.Blocking() {
		return nil
	}
	other, found, err := s.detector.FirstConflict(ctx, stay.TenantID, stay.RoomID, stay.Interval(), domain.BlockingStatuses, stay.ID)
	if err != nil {
		return err
	}
	if found {
		return &domain.RoomOccupiedError{RoomID: stay.RoomID, ConflictingID: other.ID}
	}
	return nil
}

func validateStay(s domain.Stay) error {
	if s.RoomID == "" {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "room_id is required"}
	}
	if !s.Status.Valid() {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: fmt.Sprintf("unknown status %q", s.Status)}
	}
	if _, err := domain.NewInterval(s.CheckIn, s.CheckOut); err != nil {
		return err
	}
	return nil
}
