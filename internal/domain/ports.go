package domain

import (
	"context"
	"time"
)

// Every repository method takes the tenant id explicitly. Lookups of records
// owned by another tenant return a *NotFoundError, never the record.

// HotelRepository persists tenant settings.
type HotelRepository interface {
	CreateHotel(ctx context.Context, hotel Hotel) error
	GetHotel(ctx context.Context, id string) (Hotel, error)
	UpdateHotel(ctx context.Context, hotel Hotel) error
	DeleteHotel(ctx context.Context, id string) error
}

// RoomRepository persists rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, tenantID, id string) (Room, error)
	ListRooms(ctx context.Context, tenantID string) ([]Room, error)
	UpdateRoom(ctx context.Context, room Room) error
	DeleteRoom(ctx context.Context, tenantID, id string) error
}

// StayFilter narrows a stay scan. Zero fields do not filter.
type StayFilter struct {
	RoomID   string
	Statuses []StayStatus
	// Overlapping keeps stays whose [check_in, check_out) intersects the range.
	Overlapping *Interval
}

// StayRepository persists stays.
type StayRepository interface {
	CreateStay(ctx context.Context, stay Stay) error
	GetStay(ctx context.Context, tenantID, id string) (Stay, error)
	ListStays(ctx context.Context, tenantID string, filter StayFilter) ([]Stay, error)
	UpdateStay(ctx context.Context, stay Stay) error
	DeleteStay(ctx context.Context, tenantID, id string) error
}

// PaymentRepository persists payments. Range scans are by paid_at.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, p Payment) error
	GetPayment(ctx context.Context, tenantID, id string) (Payment, error)
	ListPayments(ctx context.Context, tenantID string, r TimeRange) ([]Payment, error)
	CountPaymentsForStay(ctx context.Context, tenantID, stayID string) (int, error)
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, tenantID, id string) error
}

// ExpenseRepository persists expenses. Range scans are by spent_at.
type ExpenseRepository interface {
	CreateExpense(ctx context.Context, e Expense) error
	GetExpense(ctx context.Context, tenantID, id string) (Expense, error)
	ListExpenses(ctx context.Context, tenantID string, r TimeRange) ([]Expense, error)
	UpdateExpense(ctx context.Context, e Expense) error
	DeleteExpense(ctx context.Context, tenantID, id string) error
}

// TransferRepository persists transfers. Range scans are by transferred_at.
type TransferRepository interface {
	CreateTransfer(ctx context.Context, t Transfer) error
	GetTransfer(ctx context.Context, tenantID, id string) (Transfer, error)
	ListTransfers(ctx context.Context, tenantID string, r TimeRange) ([]Transfer, error)
	UpdateTransfer(ctx context.Context, t Transfer) error
	DeleteTransfer(ctx context.Context, tenantID, id string) error
}

// ClosingRepository persists month closings.
type ClosingRepository interface {
	// InsertClosingIfAbsent atomically stores c unless a closing already
	// exists for (c.TenantID, c.Month). It returns the stored closing and
	// whether this call created it.
	InsertClosingIfAbsent(ctx context.Context, c MonthClosing) (MonthClosing, bool, error)
	GetClosing(ctx context.Context, tenantID string, month Month) (MonthClosing, error)
	ListClosings(ctx context.Context, tenantID string) ([]MonthClosing, error)
	DeleteClosing(ctx context.Context, tenantID string, month Month) error
}

// ProfileRepository persists hotel users.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, p Profile) error
	GetProfile(ctx context.Context, tenantID, id string) (Profile, error)
	ListProfiles(ctx context.Context, tenantID string) ([]Profile, error)
	UpdateProfile(ctx context.Context, p Profile) error
	DeleteProfile(ctx context.Context, tenantID, id string) error
}

// ChannelRepository persists custom payment channels. Names are unique per tenant.
type ChannelRepository interface {
	CreateChannel(ctx context.Context, c CustomChannel) error
	GetChannel(ctx context.Context, tenantID, id string) (CustomChannel, error)
	ListChannels(ctx context.Context, tenantID string) ([]CustomChannel, error)
	DeleteChannel(ctx context.Context, tenantID, id string) error
}

// Store is the full tenant store. Adapters implement it as one unit.
type Store interface {
	HotelRepository
	RoomRepository
	StayRepository
	PaymentRepository
	ExpenseRepository
	TransferRepository
	ClosingRepository
	ProfileRepository
	ChannelRepository
}

// EventPublisher defines the contract for emitting domain change events.
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// TransitionValidator applies a period event to a state.
type TransitionValidator interface {
	Apply(ctx context.Context, current PeriodState, event PeriodEvent) (PeriodState, error)
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}
