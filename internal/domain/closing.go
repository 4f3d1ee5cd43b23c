package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodState is the closing state of a (hotel, month) pair.
type PeriodState string

const (
	PeriodOpen   PeriodState = "open"
	PeriodClosed PeriodState = "closed"
)

// PeriodEvent triggers a period state transition.
type PeriodEvent string

const (
	EventClose  PeriodEvent = "close"
	EventReopen PeriodEvent = "reopen"
)

// PeriodTransition defines a valid state change: an event moves a period from Src to Dst.
type PeriodTransition struct {
	Event PeriodEvent
	Src   PeriodState
	Dst   PeriodState
}

// PeriodTransitions is the complete period state machine. It is consumed by
// the FSM adapter.
var PeriodTransitions = []PeriodTransition{
	{Event: EventClose, Src: PeriodOpen, Dst: PeriodClosed},
	{Event: EventReopen, Src: PeriodClosed, Dst: PeriodOpen},
}

// MonthClosing freezes a month's totals. Its existence is what makes the
// month closed; reopening deletes it.
type MonthClosing struct {
	ID       string         `json:"id"`
	TenantID string         `json:"hotel_id"`
	Month    Month          `json:"month"`
	ClosedAt time.Time      `json:"closed_at"`
	Totals   TotalsSnapshot `json:"totals"`
}

// TotalsSnapshot is the financial and occupancy summary of a date range.
// Closed months store it verbatim and never recompute it.
type TotalsSnapshot struct {
	RevenueByMethod    map[string]decimal.Decimal `json:"revenue_by_method"`
	TotalRevenue       decimal.Decimal            `json:"total_revenue"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
	TotalExpenses      decimal.Decimal            `json:"total_expenses"`
	Profit             decimal.Decimal            `json:"profit"`
	SoldNights         int64                      `json:"sold_nights"`
	AvailableNights    int64                      `json:"available_nights"`
	OccupancyRate      decimal.Decimal            `json:"occupancy_rate"`
	ADR                decimal.Decimal            `json:"adr"`
	RevPAR             decimal.Decimal            `json:"revpar"`
}

// ratioPlaces is the rounding applied to occupancy, ADR and RevPAR.
const ratioPlaces = 2

var hundred = decimal.NewFromInt(100)

// TotalsInput is everything ComputeTotals needs. Payments and expenses must
// already be limited to the window; stays are clipped here.
type TotalsInput struct {
	From        time.Time // first day, inclusive
	To          time.Time // last day, inclusive
	Payments    []Payment
	Expenses    []Expense
	Stays       []Stay
	ActiveRooms int
}

// ComputeTotals aggregates revenue, expenses and occupancy for [From, To].
// Every ratio with a zero denominator is reported as 0.
func ComputeTotals(in TotalsInput) TotalsSnapshot {
	snap := TotalsSnapshot{
		RevenueByMethod:    make(map[string]decimal.Decimal),
		ExpensesByCategory: make(map[string]decimal.Decimal),
	}

	for _, p := range in.Payments {
		label := p.Channel.Label()
		snap.RevenueByMethod[label] = snap.RevenueByMethod[label].Add(p.Amount)
		snap.TotalRevenue = snap.TotalRevenue.Add(p.Amount)
	}
	for _, e := range in.Expenses {
		key := string(e.Category)
		snap.ExpensesByCategory[key] = snap.ExpensesByCategory[key].Add(e.Amount)
		snap.TotalExpenses = snap.TotalExpenses.Add(e.Amount)
	}
	snap.Profit = snap.TotalRevenue.Sub(snap.TotalExpenses)

	from, to := Date(in.From), Date(in.To)
	days := DaysBetween(from, to) + 1
	if days < 0 {
		days = 0
	}
	snap.AvailableNights = int64(in.ActiveRooms) * int64(days)

	window := Interval{Start: from, End: to.AddDate(0, 0, 1)}
	for _, s := range in.Stays {
		if !s.Status.In(OccupiedStatuses) {
			continue
		}
		snap.SoldNights += int64(clippedNights(s.Interval(), window))
	}

	sold := decimal.NewFromInt(snap.SoldNights)
	available := decimal.NewFromInt(snap.AvailableNights)
	if snap.AvailableNights > 0 {
		snap.OccupancyRate = sold.Div(available).Mul(hundred).Round(ratioPlaces)
		snap.RevPAR = snap.TotalRevenue.Div(available).Round(ratioPlaces)
	}
	if snap.SoldNights > 0 {
		snap.ADR = snap.TotalRevenue.Div(sold).Round(ratioPlaces)
	}
	return snap
}

// clippedNights counts the nights of stay that fall inside window.
func clippedNights(stay, window Interval) int {
	start := stay.Start
	if window.Start.After(start) {
		start = window.Start
	}
	end := stay.End
	if window.End.Before(end) {
		end = window.End
	}
	if n := DaysBetween(start, end); n > 0 {
		return n
	}
	return 0
}
