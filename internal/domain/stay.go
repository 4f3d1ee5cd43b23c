package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is a physical, bookable room. Uniqueness of Number within a hotel is
// left to callers.
type Room struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"hotel_id"`
	Number    string          `json:"number"`
	Floor     int             `json:"floor"`
	Type      RoomType        `json:"room_type"`
	Capacity  int             `json:"capacity"`
	BasePrice decimal.Decimal `json:"base_price"`
	Active    bool            `json:"active"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StayStatus is the lifecycle state of a stay.
type StayStatus string

const (
	StatusBooked     StayStatus = "BOOKED"
	StatusCheckedIn  StayStatus = "CHECKED_IN"
	StatusCheckedOut StayStatus = "CHECKED_OUT"
	StatusCancelled  StayStatus = "CANCELLED"
)

// BlockingStatuses occupy a room and are conflict-checked.
var BlockingStatuses = []StayStatus{StatusBooked, StatusCheckedIn}

// OccupiedStatuses count toward sold room-nights.
var OccupiedStatuses = []StayStatus{StatusCheckedIn, StatusCheckedOut}

// Valid reports whether s is a known status.
func (s StayStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return true
	}
	return false
}

// In reports whether s is one of set.
func (s StayStatus) In(set []StayStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Blocking reports whether s occupies the room.
func (s StayStatus) Blocking() bool {
	return s.In(BlockingStatuses)
}

// Interval is a half-open date range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates that checkOut is strictly after checkIn.
func NewInterval(checkIn, checkOut time.Time) (Interval, error) {
	in, out := Date(checkIn), Date(checkOut)
	if !out.After(in) {
		return Interval{}, invalidInterval("check_out_date must be after check_in_date")
	}
	return Interval{Start: in, End: out}, nil
}

// Overlaps reports whether two half-open intervals share at least one night.
// A checkout on the same day as another check-in does not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Nights is the length of the interval in days.
func (i Interval) Nights() int {
	return DaysBetween(i.Start, i.End)
}

// Stay is a booking of one room by one guest.
type Stay struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"hotel_id"`
	RoomID           string          `json:"room_id"`
	GuestName        string          `json:"guest_name"`
	GuestPhone       string          `json:"guest_phone,omitempty"`
	CheckIn          time.Time       `json:"check_in_date"`
	CheckOut         time.Time       `json:"check_out_date"`
	Status           StayStatus      `json:"status"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	WeeklyDiscount   decimal.Decimal `json:"weekly_discount_amount"`
	ManualAdjustment decimal.Decimal `json:"manual_adjustment_amount"`
	DepositExpected  decimal.Decimal `json:"deposit_expected"`
	Comment          string          `json:"comment,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Interval returns the stay's occupancy interval.
func (s Stay) Interval() Interval {
	return Interval{Start: Date(s.CheckIn), End: Date(s.CheckOut)}
}

// ExpectedTotal is the nightly price over the stay minus the weekly
// discount plus any manual adjustment.
func (s Stay) ExpectedTotal() decimal.Decimal {
	nights := decimal.NewFromInt(int64(s.Interval().Nights()))
	return s.PricePerNight.Mul(nights).Sub(s.WeeklyDiscount).Add(s.ManualAdjustment)
}
