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

// CreatePaymentCommand records money received for a stay. A zero PaidAt means now.
type CreatePaymentCommand struct {
	StayID  string
	PaidAt  time.Time
	Channel domain.Channel
	Amount  decimal.Decimal
	Comment string
}

// PaymentPatch lists the payment fields to change. Nil fields are kept.
type PaymentPatch struct {
	PaidAt  *time.Time
	Channel *domain.Channel
	Amount  *decimal.Decimal
	Comment *string
}

func (p PaymentPatch) financial() bool {
	return p.PaidAt != nil || p.Channel != nil || p.Amount != nil
}

// CreateExpenseCommand records money spent. A zero SpentAt means now and an
// empty Category means OTHER.
type CreateExpenseCommand struct {
	SpentAt  time.Time
	Category domain.ExpenseCategory
	Channel  domain.Channel
	Amount   decimal.Decimal
	Comment  string
}

// ExpensePatch lists the expense fields to change. Nil fields are kept.
type ExpensePatch struct {
	SpentAt  *time.Time
	Category *domain.ExpenseCategory
	Channel  *domain.Channel
	Amount   *decimal.Decimal
	Comment  *string
}

func (p ExpensePatch) financial() bool {
	return p.SpentAt != nil || p.Category != nil || p.Channel != nil || p.Amount != nil
}

// CreateTransferCommand moves funds between registers. A zero TransferredAt means now.
type CreateTransferCommand struct {
	TransferredAt time.Time
	From          domain.Channel
	To            domain.Channel
	Amount        decimal.Decimal
	Comment       string
}

// TransferPatch lists the transfer fields to change. Nil fields are kept.
type TransferPatch struct {
	TransferredAt *time.Time
	From          *domain.Channel
	To            *domain.Channel
	Amount        *decimal.Decimal
	Comment       *string
}

func (p TransferPatch) financial() bool {
	return p.TransferredAt != nil || p.From != nil || p.To != nil || p.Amount != nil
}

// LedgerService manages payments, expenses and transfers. Deletes and
// financially impactful edits of records dated in a closed month are
// rejected for non-admins. Creation is not gated.
type LedgerService struct {
	store     domain.Store
	guard     *AccessGuard
	closings  *ClosingService
	locks     *RoomLocks
	publisher domain.EventPublisher
	clock     domain.Clock
}

// NewLedgerService wires a LedgerService. locks must be the instance shared
// with the BookingService.
func NewLedgerService(
	store domain.Store,
	guard *AccessGuard,
	closings *ClosingService,
	locks *RoomLocks,
	publisher domain.EventPublisher,
	clock domain.Clock,
) *LedgerService {
	return &LedgerService{
		store:     store,
		guard:     guard,
		closings:  closings,
		locks:     locks,
		publisher: publisher,
		clock:     clock,
	}
}

// --- payments ---

// CreatePayment records a payment against an existing stay of the hotel.
func (s *LedgerService) CreatePayment(ctx context.Context, caller domain.Caller, cmd CreatePaymentCommand) (domain.Payment, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Payment{}, err
	}
	if err := cmd.Channel.Validate(); err != nil {
		return domain.Payment{}, err
	}
	now := s.clock.Now()
	p := domain.Payment{
		ID:        generateID(),
		TenantID:  caller.TenantID,
		StayID:    cmd.StayID,
		PaidAt:    orNow(cmd.PaidAt, now),
		Channel:   cmd.Channel,
		Amount:    cmd.Amount,
		Comment:   cmd.Comment,
		CreatedAt: now,
	}

	// The stay's room lock makes this insert atomic with DeleteStay's
	// payment check.
	err := s.withStayRoom(ctx, caller.TenantID, cmd.StayID, func() error {
		if err := s.store.CreatePayment(ctx, p); err != nil {
			return fmt.Errorf("creating payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.emit(ctx, caller, domain.KindPayment, domain.ChangeCreated, nil, p)
	return p, nil
}

// GetPayment returns one payment of the hotel.
func (s *LedgerService) GetPayment(ctx context.Context, caller domain.Caller, id string) (domain.Payment, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Payment{}, err
	}
	return s.store.GetPayment(ctx, caller.TenantID, id)
}

// ListPayments returns the hotel's payments in r, newest first.
func (s *LedgerService) ListPayments(ctx context.Context, caller domain.Caller, r domain.TimeRange) ([]domain.Payment, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx, caller.TenantID, r)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].PaidAt.After(payments[j].PaidAt) })
	return payments, nil
}

// UpdatePayment applies patch to a payment.
func (s *LedgerService) UpdatePayment(ctx context.Context, caller domain.Caller, id string, patch PaymentPatch) (domain.Payment, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Payment{}, err
	}
	before, err := s.store.GetPayment(ctx, caller.TenantID, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if patch.financial() {
		if err := s.gate(ctx, caller, before.PaidAt, patch.PaidAt); err != nil {
			return domain.Payment{}, err
		}
	}

	after := before
	if patch.PaidAt != nil {
		after.PaidAt = *patch.PaidAt
	}
	if patch.Channel != nil {
		after.Channel = *patch.Channel
	}
	if patch.Amount != nil {
		after.Amount = *patch.Amount
	}
	if patch.Comment != nil {
		after.Comment = *patch.Comment
	}
	if err := after.Channel.Validate(); err != nil {
		return domain.Payment{}, err
	}

	if err := s.store.UpdatePayment(ctx, after); err != nil {
		return domain.Payment{}, fmt.Errorf("updating payment %s: %w", id, err)
	}
	s.emit(ctx, caller, domain.KindPayment, domain.ChangeUpdated, before, after)
	return after, nil
}

// DeletePayment removes a payment.
func (s *LedgerService) DeletePayment(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.guard.Authorize(caller); err != nil {
		return err
	}
	before, err := s.store.GetPayment(ctx, caller.TenantID, id)
	if err != nil {
		return err
	}
	if err := s.gate(ctx, caller, before.PaidAt, nil); err != nil {
		return err
	}
	if err := s.store.DeletePayment(ctx, caller.TenantID, id); err != nil {
		return fmt.Errorf("deleting payment %s: %w", id, err)
	}
	s.emit(ctx, caller, domain.KindPayment, domain.ChangeDeleted, before, nil)
	return nil
}

// --- expenses ---

// CreateExpense records an expense made by the caller.
func (s *LedgerService) CreateExpense(ctx context.Context, caller domain.Caller, cmd CreateExpenseCommand) (domain.Expense, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Expense{}, err
	}
	if cmd.Category == "" {
		cmd.Category = domain.CategoryOther
	}
	now := s.clock.Now()
	e := domain.Expense{
		ID:        generateID(),
		TenantID:  caller.TenantID,
		SpentAt:   orNow(cmd.SpentAt, now),
		Category:  cmd.Category,
		Channel:   cmd.Channel,
		Amount:    cmd.Amount,
		CreatedBy: caller.UserID,
		Comment:   cmd.Comment,
		CreatedAt: now,
	}
	if err := validateExpense(e); err != nil {
		return domain.Expense{}, err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return domain.Expense{}, fmt.Errorf("creating expense: %w", err)
	}
	s.emit(ctx, caller, domain.KindExpense, domain.ChangeCreated, nil, e)
	return e, nil
}

// GetExpense returns one expense of the hotel.
func (s *LedgerService) GetExpense(ctx context.Context, caller domain.Caller, id string) (domain.Expense, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Expense{}, err
	}
	return s.store.GetExpense(ctx, caller.TenantID, id)
}

// ListExpenses returns expenses in r, newest first. Non-admins only see
// the expenses they created.
func (s *LedgerService) ListExpenses(ctx context.Context, caller domain.Caller, r domain.TimeRange) ([]domain.Expense, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	all, err := s.store.ListExpenses(ctx, caller.TenantID, r)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	expenses := all[:0]
	for _, e := range all {
		if caller.IsAdmin() || e.CreatedBy == caller.UserID {
			expenses = append(expenses, e)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool { return expenses[i].SpentAt.After(expenses[j].SpentAt) })
	return expenses, nil
}

// UpdateExpense applies patch to an expense.
func (s *LedgerService) UpdateExpense(ctx context.Context, caller domain.Caller, id string, patch ExpensePatch) (domain.Expense, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Expense{}, err
	}
	before, err := s.store.GetExpense(ctx, caller.TenantID, id)
	if err != nil {
		return domain.Expense{}, err
	}
	if patch.financial() {
		if err := s.gate(ctx, caller, before.SpentAt, patch.SpentAt); err != nil {
			return domain.Expense{}, err
		}
	}

	after := before
	if patch.SpentAt != nil {
		after.SpentAt = *patch.SpentAt
	}
	if patch.Category != nil {
		after.Category = *patch.Category
	}
	if patch.Channel != nil {
		after.Channel = *patch.Channel
	}
	if patch.Amount != nil {
		after.Amount = *patch.Amount
	}
	if patch.Comment != nil {
		after.Comment = *patch.Comment
	}
	if err := validateExpense(after); err != nil {
		return domain.Expense{}, err
	}

	if err := s.store.UpdateExpense(ctx, after); err != nil {
		return domain.Expense{}, fmt.Errorf("updating expense %s: %w", id, err)
	}
	s.emit(ctx, caller, domain.KindExpense, domain.ChangeUpdated, before, after)
	return after, nil
}

// DeleteExpense removes an expense.
func (s *LedgerService) DeleteExpense(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.guard.Authorize(caller); err != nil {
		return err
	}
	before, err := s.store.GetExpense(ctx, caller.TenantID, id)
	if err != nil {
		return err
	}
	if err := s.gate(ctx, caller, before.SpentAt, nil); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, caller.TenantID, id); err != nil {
		return fmt.Errorf("deleting expense %s: %w", id, err)
	}
	s.emit(ctx, caller, domain.KindExpense, domain.ChangeDeleted, before, nil)
	return nil
}

// --- transfers ---

// CreateTransfer records a movement of funds between two registers.
func (s *LedgerService) CreateTransfer(ctx context.Context, caller domain.Caller, cmd CreateTransferCommand) (domain.Transfer, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Transfer{}, err
	}
	now := s.clock.Now()
	t := domain.Transfer{
		ID:            generateID(),
		TenantID:      caller.TenantID,
		TransferredAt: orNow(cmd.TransferredAt, now),
		From:          cmd.From,
		To:            cmd.To,
		Amount:        cmd.Amount,
		Comment:       cmd.Comment,
		CreatedAt:     now,
	}
	if err := t.Validate(); err != nil {
		return domain.Transfer{}, err
	}
	if err := s.store.CreateTransfer(ctx, t); err != nil {
		return domain.Transfer{}, fmt.Errorf("creating transfer: %w", err)
	}
	s.emit(ctx, caller, domain.KindTransfer, domain.ChangeCreated, nil, t)
	return t, nil
}

// GetTransfer returns one transfer of the hotel.
func (s *LedgerService) GetTransfer(ctx context.Context, caller domain.Caller, id string) (domain.Transfer, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Transfer{}, err
	}
	return s.store.GetTransfer(ctx, caller.TenantID, id)
}

// ListTransfers returns the hotel's transfers in r, newest first.
func (s *LedgerService) ListTransfers(ctx context.Context, caller domain.Caller, r domain.TimeRange) ([]domain.Transfer, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	transfers, err := s.store.ListTransfers(ctx, caller.TenantID, r)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].TransferredAt.After(transfers[j].TransferredAt)
	})
	return transfers, nil
}

// UpdateTransfer applies patch to a transfer. The result must still be a valid transfer.
func (s *LedgerService) UpdateTransfer(ctx context.Context, caller domain.Caller, id string, patch TransferPatch) (domain.Transfer, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Transfer{}, err
	}
	before, err := s.store.GetTransfer(ctx, caller.TenantID, id)
	if err != nil {
		return domain.Transfer{}, err
	}
	if patch.financial() {
		if err := s.gate(ctx, caller, before.TransferredAt, patch.TransferredAt); err != nil {
			return domain.Transfer{}, err
		}
	}

	after := before
	if patch.TransferredAt != nil {
		after.TransferredAt = *patch.TransferredAt
	}
	if patch.From != nil {
		after.From = *patch.From
	}
	if patch.To != nil {
		after.To = *patch.To
	}
	if patch.Amount != nil {
		after.Amount = *patch.Amount
	}
	if patch.Comment != nil {
		after.Comment = *patch.Comment
	}
	if err := after.Validate(); err != nil {
		return domain.Transfer{}, err
	}

	if err := s.store.UpdateTransfer(ctx, after); err != nil {
		return domain.Transfer{}, fmt.Errorf("updating transfer %s: %w", id, err)
	}
	s.emit(ctx, caller, domain.KindTransfer, domain.ChangeUpdated, before, after)
	return after, nil
}

// DeleteTransfer removes a transfer.
func (s *LedgerService) DeleteTransfer(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.guard.Authorize(caller); err != nil {
		return err
	}
	before, err := s.store.GetTransfer(ctx, caller.TenantID, id)
	if err != nil {
		return err
	}
	if err := s.gate(ctx, caller, before.TransferredAt, nil); err != nil {
		return err
	}
	if err := s.store.DeleteTransfer(ctx, caller.TenantID, id); err != nil {
		return fmt.Errorf("deleting transfer %s: %w", id, err)
	}
	s.emit(ctx, caller, domain.KindTransfer, domain.ChangeDeleted, before, nil)
	return nil
}

// gate checks the record's current date and, when the edit moves it, the new date.
func (s *LedgerService) gate(ctx context.Context, caller domain.Caller, current time.Time, next *time.Time) error {
	if err := s.closings.EnsureOpen(ctx, caller, current); err != nil {
		return err
	}
	if next != nil {
		return s.closings.EnsureOpen(ctx, caller, *next)
	}
	return nil
}

// withStayRoom runs fn while holding the lock of the stay's room.
func (s *LedgerService) withStayRoom(ctx context.Context, tenantID, stayID string, fn func() error) error {
	for attempt := 0; attempt < maxRelockAttempts; attempt++ {
		stay, err := s.store.GetStay(ctx, tenantID, stayID)
		if err != nil {
			return err
		}
		unlock := s.locks.Lock(tenantID, stay.RoomID)
		again, err := s.store.GetStay(ctx, tenantID, stayID)
		if err != nil {
			unlock()
			return err
		}
		if again.RoomID != stay.RoomID {
			unlock()
			continue
		}
		err = fn()
		unlock()
		return err
	}
	return &domain.ConflictError{Kind: domain.KindStay, Key: stayID}
}

func (s *LedgerService) emit(ctx context.Context, caller domain.Caller, kind domain.EntityKind, change domain.ChangeKind, before, after any) {
	emit(ctx, s.publisher, domain.ChangeEvent{
		Entity:   kind,
		Change:   change,
		TenantID: caller.TenantID,
		ActorID:  caller.UserID,
		Before:   before,
		After:    after,
	})
}

func validateExpense(e domain.Expense) error {
	if !e.Category.Valid() {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: fmt.Sprintf("unknown category %q", e.Category)}
	}
	if err := e.Channel.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "expense needs a creator"}
	}
	return nil
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}
