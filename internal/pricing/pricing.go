// Package pricing turns a room's tier prices and a stay plan into a booking
// quote, and separately produces the discounted estimates shown in search.
package pricing

import (
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

// Quote is the stored outcome of a plan selection.
type Quote struct {
	StartDate time.Time
	EndDate   time.Time
	Amount    int64
}

// QuoteFor derives the end date and the snapshot amount for a stay. The
// amount is always the room's own tier price.
func QuoteFor(room domain.Room, plan domain.Plan, start time.Time) (Quote, error) {
	end, err := EndDate(plan, start)
	if err != nil {
		return Quote{}, err
	}
	return Quote{StartDate: start, EndDate: end, Amount: TierPrice(room, plan)}, nil
}

// EndDate adds one day, seven days or one calendar month to start.
// Month arithmetic follows time.AddDate normalisation (Jan 31 + 1 month
// lands in early March).
func EndDate(plan domain.Plan, start time.Time) (time.Time, error) {
	switch plan {
	case domain.PlanDaily:
		return start.AddDate(0, 0, 1), nil
	case domain.PlanWeekly:
		return start.AddDate(0, 0, 7), nil
	case domain.PlanMonthly:
		return start.AddDate(0, 1, 0), nil
	}
	return time.Time{}, domain.Invalid("plan", "must be one of daily, weekly, monthly")
}

// TierPrice returns the room's explicit price for plan, or 0 for an
// unknown plan.
func TierPrice(room domain.Room, plan domain.Plan) int64 {
	switch plan {
	case domain.PlanDaily:
		return room.PricingDaily
	case domain.PlanWeekly:
		return room.PricingWeekly
	case domain.PlanMonthly:
		return room.PricingMonthly
	}
	return 0
}

// DisplayPrices are marketing estimates derived from a daily rate. They are
// never persisted and never charged.
type DisplayPrices struct {
	Daily   int64
	Weekly  int64
	Monthly int64
}

// Display computes weekly = daily*7*0.9 and monthly = daily*30*0.8,
// rounded half up to the minor unit.
func Display(daily int64) DisplayPrices {
	return DisplayPrices{
		Daily:   daily,
		Weekly:  roundDiv(daily*63, 10),
		Monthly: daily * 24,
	}
}

func roundDiv(n, d int64) int64 {
	if n < 0 {
		return -roundDiv(-n, d)
	}
	return (n + d/2) / d
}

// ValidateStartDate rejects a start date whose calendar day is before
// today's. Both are compared in UTC.
func ValidateStartDate(start, now time.Time) error {
	if start.IsZero() {
		return domain.Invalid("start_date", "is required")
	}
	if Day(start).Before(Day(now)) {
		return domain.Invalid("start_date", "must not be in the past")
	}
	return nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
