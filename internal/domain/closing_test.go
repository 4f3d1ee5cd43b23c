package domain_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/innledger/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestComputeTotals_FullMonthStay(t *testing.T) {
	snap := domain.ComputeTotals(domain.TotalsInput{
		From:        day("2024-03-01"),
		To:          day("2024-03-31"),
		ActiveRooms: 1,
		Payments: []domain.Payment{
			{Channel: domain.StandardChannel(domain.MethodCash), Amount: dec("3100")},
		},
		Stays: []domain.Stay{{
			CheckIn:       day("2024-03-01"),
			CheckOut:      day("2024-04-01"),
			Status:        domain.StatusCheckedOut,
			PricePerNight: dec("100"),
		}},
	})

	assertDecimal(t, "TotalRevenue", snap.TotalRevenue, "3100")
	if snap.SoldNights != 31 {
		t.Errorf("SoldNights = %d, want 31", snap.SoldNights)
	}
	if snap.AvailableNights != 31 {
		t.Errorf("AvailableNights = %d, want 31", snap.AvailableNights)
	}
	assertDecimal(t, "OccupancyRate", snap.OccupancyRate, "100")
	assertDecimal(t, "ADR", snap.ADR, "100")
	assertDecimal(t, "RevPAR", snap.RevPAR, "100")
}

func TestComputeTotals_ZeroDenominators(t *testing.T) {
	snap := domain.ComputeTotals(domain.TotalsInput{
		From:     day("2024-03-01"),
		To:       day("2024-03-31"),
		Payments: []domain.Payment{{Amount: dec("500")}},
	})

	if snap.AvailableNights != 0 || snap.SoldNights != 0 {
		t.Fatalf("nights = %d/%d, want 0/0", snap.SoldNights, snap.AvailableNights)
	}
	assertDecimal(t, "OccupancyRate", snap.OccupancyRate, "0")
	assertDecimal(t, "ADR", snap.ADR, "0")
	assertDecimal(t, "RevPAR", snap.RevPAR, "0")
}

func TestComputeTotals_ClipsPartialStays(t *testing.T) {
	snap := domain.ComputeTotals(domain.TotalsInput{
		From:        day("2024-03-01"),
		To:          day("2024-03-31"),
		ActiveRooms: 2,
		Stays: []domain.Stay{
			// 3 nights in February, 2 in March.
			{CheckIn: day("2024-02-27"), CheckOut: day("2024-03-03"), Status: domain.StatusCheckedOut},
			// 2 nights in March, 3 in April.
			{CheckIn: day("2024-03-30"), CheckOut: day("2024-04-04"), Status: domain.StatusCheckedIn},
			// Not occupied.
			{CheckIn: day("2024-03-10"), CheckOut: day("2024-03-15"), Status: domain.StatusCancelled},
			{CheckIn: day("2024-03-10"), CheckOut: day("2024-03-15"), Status: domain.StatusBooked},
			// Outside the window.
			{CheckIn: day("2024-04-10"), CheckOut: day("2024-04-15"), Status: domain.StatusCheckedOut},
		},
	})

	if snap.SoldNights != 4 {
		t.Errorf("SoldNights = %d, want 4", snap.SoldNights)
	}
	if snap.AvailableNights != 62 {
		t.Errorf("AvailableNights = %d, want 62", snap.AvailableNights)
	}
	assertDecimal(t, "OccupancyRate", snap.OccupancyRate, "6.45")
}

func TestComputeTotals_GroupsByLabelAndCategory(t *testing.T) {
	snap := domain.ComputeTotals(domain.TotalsInput{
		From: day("2024-03-01"),
		To:   day("2024-03-31"),
		Payments: []domain.Payment{
			{Channel: domain.StandardChannel(domain.MethodCash), Amount: dec("100")},
			{Channel: domain.StandardChannel(domain.MethodCash), Amount: dec("50.50")},
			{Channel: domain.ChannelFromParts("CARD", "Payme"), Amount: dec("200")},
			{Channel: domain.StandardChannel(domain.MethodCash), Amount: dec("-20")},
		},
		Expenses: []domain.Expense{
			{Category: domain.CategoryFood, Amount: dec("30")},
			{Category: domain.CategoryFood, Amount: dec("10")},
			{Category: domain.CategorySalary, Amount: dec("100")},
		},
	})

	assertDecimal(t, "CASH", snap.RevenueByMethod["CASH"], "130.50")
	assertDecimal(t, "Payme", snap.RevenueByMethod["Payme"], "200")
	if _, ok := snap.RevenueByMethod["CARD"]; ok {
		t.Error("custom label should replace the fixed method as grouping key")
	}
	assertDecimal(t, "TotalRevenue", snap.TotalRevenue, "330.50")
	assertDecimal(t, "FOOD", snap.ExpensesByCategory["FOOD"], "40")
	assertDecimal(t, "TotalExpenses", snap.TotalExpenses, "140")
	assertDecimal(t, "Profit", snap.Profit, "190.50")
}

func TestTotalsSnapshot_JSONRoundTrip(t *testing.T) {
	snap := domain.ComputeTotals(domain.TotalsInput{
		From:        day("2024-03-01"),
		To:          day("2024-03-31"),
		ActiveRooms: 3,
		Payments:    []domain.Payment{{Channel: domain.CustomChannelLabel("Payme"), Amount: dec("1000.25")}},
		Expenses:    []domain.Expense{{Category: domain.CategoryRepair, Amount: dec("99.99")}},
		Stays: []domain.Stay{
			{CheckIn: day("2024-03-02"), CheckOut: day("2024-03-09"), Status: domain.StatusCheckedOut},
		},
	})

	first, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back domain.TotalsSnapshot
	if err := json.Unmarshal(first, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second, err := json.Marshal(back)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("round trip changed the snapshot:\n%s\n%s", first, second)
	}

	for _, key := range []string{
		"revenue_by_method", "total_revenue", "expenses_by_category", "total_expenses",
		"profit", "sold_nights", "available_nights", "occupancy_rate", "adr", "revpar",
	} {
		if !bytes.Contains(first, []byte(`"`+key+`"`)) {
			t.Errorf("snapshot JSON missing %q", key)
		}
	}
}

func TestComputeTotals_InvertedRange(t *testing.T) {
	snap := domain.ComputeTotals(domain.TotalsInput{
		From:        day("2024-03-31"),
		To:          day("2024-03-01"),
		ActiveRooms: 5,
	})
	if snap.AvailableNights != 0 {
		t.Errorf("AvailableNights = %d, want 0", snap.AvailableNights)
	}
}
