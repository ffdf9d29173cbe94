package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

var testRoom = domain.Room{
	ID:             "room-1",
	PricingDaily:   500,
	PricingWeekly:  3000,
	PricingMonthly: 4000,
}

func TestQuoteFor_EndDates(t *testing.T) {
	t.Parallel()

	starts := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	for _, start := range starts {
		tests := []struct {
			plan domain.Plan
			want time.Time
		}{
			{domain.PlanDaily, start.Add(24 * time.Hour)},
			{domain.PlanWeekly, start.Add(7 * 24 * time.Hour)},
			{domain.PlanMonthly, start.AddDate(0, 1, 0)},
		}
		for _, tt := range tests {
			q, err := QuoteFor(testRoom, tt.plan, start)
			if err != nil {
				t.Fatalf("%s from %s: %v", tt.plan, start.Format("2006-01-02"), err)
			}
			if !q.EndDate.Equal(tt.want) {
				t.Fatalf("%s from %s: expected %s, got %s", tt.plan, start.Format("2006-01-02"), tt.want, q.EndDate)
			}
		}
	}
}

func TestQuoteFor_MonthlyCrossesYear(t *testing.T) {
	t.Parallel()

	q, err := QuoteFor(testRoom, domain.PlanMonthly, time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !q.EndDate.Equal(want) {
		t.Fatalf("expected %s, got %s", want, q.EndDate)
	}
}

func TestQuoteFor_AmountIsTierPrice(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	tests := map[domain.Plan]int64{
		domain.PlanDaily:   500,
		domain.PlanWeekly:  3000,
		domain.PlanMonthly: 4000,
	}
	for plan, want := range tests {
		q, err := QuoteFor(testRoom, plan, start)
		if err != nil {
			t.Fatalf("%s: %v", plan, err)
		}
		if q.Amount != want {
			t.Fatalf("%s: expected amount %d, got %d", plan, want, q.Amount)
		}
	}

	// The display estimate for monthly would be 500*24 = 12000; the booking
	// still charges the explicit tier price.
	if Display(testRoom.PricingDaily).Monthly == testRoom.PricingMonthly {
		t.Fatalf("test fixture should keep display and tier prices distinct")
	}
}

func TestQuoteFor_UnknownPlan(t *testing.T) {
	t.Parallel()

	_, err := QuoteFor(testRoom, domain.Plan("hourly"), time.Now())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		daily   int64
		weekly  int64
		monthly int64
	}{
		{daily: 500, weekly: 3150, monthly: 12000},
		{daily: 1000, weekly: 6300, monthly: 24000},
		{daily: 15, weekly: 95, monthly: 360},
		{daily: 0, weekly: 0, monthly: 0},
	}
	for _, tt := range tests {
		got := Display(tt.daily)
		if got.Daily != tt.daily || got.Weekly != tt.weekly || got.Monthly != tt.monthly {
			t.Fatalf("daily %d: expected %d/%d, got %+v", tt.daily, tt.weekly, tt.monthly, got)
		}
	}
}

func TestValidateStartDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	if err := ValidateStartDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), now); err != nil {
		t.Fatalf("today should be allowed, got %v", err)
	}
	if err := ValidateStartDate(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), now); err != nil {
		t.Fatalf("tomorrow should be allowed, got %v", err)
	}
	if err := ValidateStartDate(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for yesterday, got %v", err)
	}
	if err := ValidateStartDate(time.Time{}, now); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero date, got %v", err)
	}
}
