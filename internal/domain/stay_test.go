package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/innledger/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewInterval_RejectsEmptyAndInverted(t *testing.T) {
	cases := []struct{ in, out string }{
		{"2024-03-05", "2024-03-05"},
		{"2024-03-05", "2024-03-04"},
	}
	for _, tc := range cases {
		_, err := domain.NewInterval(day(tc.in), day(tc.out))
		if !errors.Is(err, domain.ErrInvalidInterval) {
			t.Errorf("NewInterval(%s, %s) = %v, want ErrInvalidInterval", tc.in, tc.out, err)
		}
	}
}

func TestInterval_Overlaps(t *testing.T) {
	existing, _ := domain.NewInterval(day("2024-03-01"), day("2024-03-05"))

	cases := []struct {
		name     string
		in, out  string
		overlaps bool
	}{
		{"back to back after", "2024-03-05", "2024-03-08", false},
		{"back to back before", "2024-02-25", "2024-03-01", false},
		{"tail overlap", "2024-03-04", "2024-03-06", true},
		{"head overlap", "2024-02-28", "2024-03-02", true},
		{"contained", "2024-03-02", "2024-03-03", true},
		{"containing", "2024-02-01", "2024-04-01", true},
		{"identical", "2024-03-01", "2024-03-05", true},
		{"disjoint", "2024-04-01", "2024-04-02", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			proposed, err := domain.NewInterval(day(tc.in), day(tc.out))
			if err != nil {
				t.Fatalf("NewInterval: %v", err)
			}
			if got := existing.Overlaps(proposed); got != tc.overlaps {
				t.Errorf("Overlaps = %v, want %v", got, tc.overlaps)
			}
			if got := proposed.Overlaps(existing); got != tc.overlaps {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestStayStatus_Blocking(t *testing.T) {
	want := map[domain.StayStatus]bool{
		domain.StatusBooked:     true,
		domain.StatusCheckedIn:  true,
		domain.StatusCheckedOut: false,
		domain.StatusCancelled:  false,
	}
	for status, blocking := range want {
		if status.Blocking() != blocking {
			t.Errorf("%s.Blocking() = %v, want %v", status, !blocking, blocking)
		}
	}
}

func TestStay_ExpectedTotal(t *testing.T) {
	s := domain.Stay{
		CheckIn:          day("2024-03-01"),
		CheckOut:         day("2024-03-08"),
		PricePerNight:    decimal.NewFromInt(100),
		WeeklyDiscount:   decimal.NewFromInt(50),
		ManualAdjustment: decimal.NewFromInt(-10),
	}
	if got := s.ExpectedTotal(); !got.Equal(decimal.NewFromInt(640)) {
		t.Errorf("ExpectedTotal = %s, want 640", got)
	}
}
