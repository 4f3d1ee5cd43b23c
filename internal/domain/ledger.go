package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment settles part of a stay. A negative amount is a refund.
type Payment struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"hotel_id"`
	StayID    string          `json:"stay_id"`
	PaidAt    time.Time       `json:"paid_at"`
	Channel   Channel         `json:"channel"`
	Amount    decimal.Decimal `json:"amount"`
	Comment   string          `json:"comment,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ExpenseCategory groups expenses in reports.
type ExpenseCategory string

const (
	CategorySalary    ExpenseCategory = "SALARY"
	CategoryUtilities ExpenseCategory = "UTILITIES"
	CategoryFood      ExpenseCategory = "FOOD"
	CategoryRepair    ExpenseCategory = "REPAIR"
	CategoryCleaning  ExpenseCategory = "CLEANING"
	CategoryOther     ExpenseCategory = "OTHER"
)

// Valid reports whether c is a known category.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategorySalary, CategoryUtilities, CategoryFood, CategoryRepair, CategoryCleaning, CategoryOther:
		return true
	}
	return false
}

// Expense is money spent by the hotel.
type Expense struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"hotel_id"`
	SpentAt   time.Time       `json:"spent_at"`
	Category  ExpenseCategory `json:"category"`
	Channel   Channel         `json:"channel"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy string          `json:"created_by,omitempty"`
	Comment   string          `json:"comment,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Transfer moves funds between two registers. It is not revenue.
type Transfer struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"hotel_id"`
	TransferredAt time.Time       `json:"transferred_at"`
	From          Channel         `json:"from"`
	To            Channel         `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
	Comment       string          `json:"comment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate checks the transfer invariants: distinct channels and a positive amount.
func (t Transfer) Validate() error {
	if t.From.IsZero() || t.To.IsZero() {
		return invalidInterval("from and to channels are required")
	}
	if t.From.Label() == t.To.Label() {
		return invalidInterval("cannot transfer to the same register")
	}
	if !t.Amount.IsPositive() {
		return invalidInterval("amount must be positive")
	}
	return nil
}

// CustomChannel is a hotel-defined payment channel name.
type CustomChannel struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"hotel_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
