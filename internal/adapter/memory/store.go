// Package memory provides an in-memory domain.Store for tests and local runs.
package memory

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/neomorfeo/innledger/internal/domain"
)

// table holds one entity kind. Rows remember their tenant so lookups from
// another tenant miss.
type table[T any] struct {
	kind domain.EntityKind
	rows map[string]row[T]
}

type row[T any] struct {
	tenantID string
	value    T
}

func newTable[T any](kind domain.EntityKind) table[T] {
	return table[T]{kind: kind, rows: make(map[string]row[T])}
}

func (t table[T]) get(tenantID, id string) (T, error) {
	r, ok := t.rows[id]
	if !ok || r.tenantID != tenantID {
		var zero T
		return zero, &domain.NotFoundError{Kind: t.kind, ID: id}
	}
	return r.value, nil
}

func (t table[T]) insert(tenantID, id string, v T) error {
	if _, ok := t.rows[id]; ok {
		return &domain.ConflictError{Kind: t.kind, Key: id}
	}
	t.rows[id] = row[T]{tenantID: tenantID, value: v}
	return nil
}

func (t table[T]) replace(tenantID, id string, v T) error {
	if _, err := t.get(tenantID, id); err != nil {
		return err
	}
	t.rows[id] = row[T]{tenantID: tenantID, value: v}
	return nil
}

func (t table[T]) remove(tenantID, id string) error {
	if _, err := t.get(tenantID, id); err != nil {
		return err
	}
	delete(t.rows, id)
	return nil
}

func (t table[T]) list(tenantID string, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, r := range t.rows {
		if r.tenantID == tenantID && (keep == nil || keep(r.value)) {
			out = append(out, r.value)
		}
	}
	return out
}

// Store is a mutex-guarded domain.Store.
type Store struct {
	mu        sync.RWMutex
	hotels    map[string]domain.Hotel
	rooms     table[domain.Room]
	stays     table[domain.Stay]
	payments  table[domain.Payment]
	expenses  table[domain.Expense]
	transfers table[domain.Transfer]
	profiles  table[domain.Profile]
	channels  table[domain.CustomChannel]
	closings  map[closingKey]domain.MonthClosing
}

type closingKey struct {
	tenantID string
	month    domain.Month
}

var _ domain.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		hotels:    make(map[string]domain.Hotel),
		rooms:     newTable[domain.Room](domain.KindRoom),
		stays:     newTable[domain.Stay](domain.KindStay),
		payments:  newTable[domain.Payment](domain.KindPayment),
		expenses:  newTable[domain.Expense](domain.KindExpense),
		transfers: newTable[domain.Transfer](domain.KindTransfer),
		profiles:  newTable[domain.Profile](domain.KindProfile),
		channels:  newTable[domain.CustomChannel](domain.KindCustomChannel),
		closings:  make(map[closingKey]domain.MonthClosing),
	}
}

// --- hotels ---

func (s *Store) CreateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; ok {
		return &domain.ConflictError{Kind: domain.KindHotel, Key: h.ID}
	}
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) GetHotel(_ context.Context, id string) (domain.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, &domain.NotFoundError{Kind: domain.KindHotel, ID: id}
	}
	return h, nil
}

func (s *Store) UpdateHotel(_ context.Context, h domain.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[h.ID]; !ok {
		return &domain.NotFoundError{Kind: domain.KindHotel, ID: h.ID}
	}
	s.hotels[h.ID] = h
	return nil
}

func (s *Store) DeleteHotel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[id]; !ok {
		return &domain.NotFoundError{Kind: domain.KindHotel, ID: id}
	}
	delete(s.hotels, id)
	return nil
}

// --- rooms ---

func (s *Store) CreateRoom(_ context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms.insert(r.TenantID, r.ID, r)
}

func (s *Store) GetRoom(_ context.Context, tenantID, id string) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms.get(tenantID, id)
}

func (s *Store) ListRooms(_ context.Context, tenantID string) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms.list(tenantID, nil), nil
}

func (s *Store) UpdateRoom(_ context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms.replace(r.TenantID, r.ID, r)
}

func (s *Store) DeleteRoom(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms.remove(tenantID, id)
}

// --- stays ---

func (s *Store) CreateStay(_ context.Context, st domain.Stay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stays.insert(st.TenantID, st.ID, st)
}

func (s *Store) GetStay(_ context.Context, tenantID, id string) (domain.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stays.get(tenantID, id)
}

func (s *Store) ListStays(_ context.Context, tenantID string, f domain.StayFilter) ([]domain.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stays.list(tenantID, func(st domain.Stay) bool {
		if f.RoomID != "" && st.RoomID != f.RoomID {
			return false
		}
		if len(f.Statuses) > 0 && !st.Status.In(f.Statuses) {
			return false
		}
		if f.Overlapping != nil && !st.Interval().Overlaps(*f.Overlapping) {
			return false
		}
		return true
	}), nil
}

func (s *Store) UpdateStay(_ context.Context, st domain.Stay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stays.replace(st.TenantID, st.ID, st)
}

func (s *Store) DeleteStay(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stays.remove(tenantID, id)
}

// --- payments ---

func (s *Store) CreatePayment(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.stays.get(p.TenantID, p.StayID); err != nil {
		return err
	}
	return s.payments.insert(p.TenantID, p.ID, p)
}

func (s *Store) GetPayment(_ context.Context, tenantID, id string) (domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payments.get(tenantID, id)
}

func (s *Store) ListPayments(_ context.Context, tenantID string, r domain.TimeRange) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payments.list(tenantID, func(p domain.Payment) bool { return r.Contains(p.PaidAt) }), nil
}

func (s *Store) CountPaymentsForStay(_ context.Context, tenantID, stayID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments.list(tenantID, func(p domain.Payment) bool { return p.StayID == stayID })), nil
}

func (s *Store) UpdatePayment(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments.replace(p.TenantID, p.ID, p)
}

func (s *Store) DeletePayment(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments.remove(tenantID, id)
}

// --- expenses ---

func (s *Store) CreateExpense(_ context.Context, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expenses.insert(e.TenantID, e.ID, e)
}

func (s *Store) GetExpense(_ context.Context, tenantID, id string) (domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expenses.get(tenantID, id)
}

func (s *Store) ListExpenses(_ context.Context, tenantID string, r domain.TimeRange) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expenses.list(tenantID, func(e domain.Expense) bool { return r.Contains(e.SpentAt) }), nil
}

func (s *Store) UpdateExpense(_ context.Context, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expenses.replace(e.TenantID, e.ID, e)
}

func (s *Store) DeleteExpense(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expenses.remove(tenantID, id)
}

// --- transfers ---

func (s *Store) CreateTransfer(_ context.Context, t domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfers.insert(t.TenantID, t.ID, t)
}

func (s *Store) GetTransfer(_ context.Context, tenantID, id string) (domain.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transfers.get(tenantID, id)
}

func (s *Store) ListTransfers(_ context.Context, tenantID string, r domain.TimeRange) ([]domain.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transfers.list(tenantID, func(t domain.Transfer) bool { return r.Contains(t.TransferredAt) }), nil
}

func (s *Store) UpdateTransfer(_ context.Context, t domain.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfers.replace(t.TenantID, t.ID, t)
}

func (s *Store) DeleteTransfer(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfers.remove(tenantID, id)
}

// --- closings ---

// InsertClosingIfAbsent stores c unless its month is already closed. The
// write lock makes the check and the insert one step.
func (s *Store) InsertClosingIfAbsent(_ context.Context, c domain.MonthClosing) (domain.MonthClosing, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := closingKey{tenantID: c.TenantID, month: c.Month}
	if existing, ok := s.closings[k]; ok {
		return copyClosing(existing), false, nil
	}
	s.closings[k] = copyClosing(c)
	return copyClosing(c), true, nil
}

func (s *Store) GetClosing(_ context.Context, tenantID string, month domain.Month) (domain.MonthClosing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.closings[closingKey{tenantID: tenantID, month: month}]
	if !ok {
		return domain.MonthClosing{}, &domain.NotFoundError{Kind: domain.KindMonthClosing, ID: month.String()}
	}
	return copyClosing(c), nil
}

func (s *Store) ListClosings(_ context.Context, tenantID string) ([]domain.MonthClosing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MonthClosing, 0)
	for k, c := range s.closings {
		if k.tenantID == tenantID {
			out = append(out, copyClosing(c))
		}
	}
	return out, nil
}

func (s *Store) DeleteClosing(_ context.Context, tenantID string, month domain.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := closingKey{tenantID: tenantID, month: month}
	if _, ok := s.closings[k]; !ok {
		return &domain.NotFoundError{Kind: domain.KindMonthClosing, ID: month.String()}
	}
	delete(s.closings, k)
	return nil
}

// copyClosing detaches the snapshot maps from the stored value.
func copyClosing(c domain.MonthClosing) domain.MonthClosing {
	c.Totals.RevenueByMethod = maps.Clone(c.Totals.RevenueByMethod)
	c.Totals.ExpensesByCategory = maps.Clone(c.Totals.ExpensesByCategory)
	return c
}

// --- profiles ---

func (s *Store) CreateProfile(_ context.Context, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := s.profiles.list(p.TenantID, func(o domain.Profile) bool {
		return strings.EqualFold(o.Username, p.Username)
	})
	if len(taken) > 0 {
		return &domain.ConflictError{Kind: domain.KindProfile, Key: p.Username}
	}
	return s.profiles.insert(p.TenantID, p.ID, p)
}

func (s *Store) GetProfile(_ context.Context, tenantID, id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.get(tenantID, id)
}

func (s *Store) ListProfiles(_ context.Context, tenantID string) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles.list(tenantID, nil), nil
}

func (s *Store) UpdateProfile(_ context.Context, p domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.replace(p.TenantID, p.ID, p)
}

func (s *Store) DeleteProfile(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.remove(tenantID, id)
}

// --- custom channels ---

func (s *Store) CreateChannel(_ context.Context, c domain.CustomChannel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := s.channels.list(c.TenantID, func(o domain.CustomChannel) bool { return o.Name == c.Name })
	if len(taken) > 0 {
		return &domain.ConflictError{Kind: domain.KindCustomChannel, Key: c.Name}
	}
	return s.channels.insert(c.TenantID, c.ID, c)
}

func (s *Store) GetChannel(_ context.Context, tenantID, id string) (domain.CustomChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels.get(tenantID, id)
}

func (s *Store) ListChannels(_ context.Context, tenantID string) ([]domain.CustomChannel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels.list(tenantID, nil), nil
}

func (s *Store) DeleteChannel(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels.remove(tenantID, id)
}
