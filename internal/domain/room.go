package domain

import "time"

// Room is bed inventory with three price tiers (minor currency units).
// BedsAvailable is only ever changed through reserve/release.
type Room struct {
	ID             string
	HostelID       string
	Type           string
	BedsTotal      int
	BedsAvailable  int
	PricingDaily   int64
	PricingWeekly  int64
	PricingMonthly int64
	CreatedAt      time.Time
	DeletedAt      *time.Time
}

// Validate checks the static invariants of a room definition.
func (r Room) Validate() error {
	if r.Type == "" {
		return Invalid("type", "is required")
	}
	if r.BedsTotal <= 0 {
		return Invalid("beds_total", "must be positive")
	}
	if r.BedsAvailable < 0 || r.BedsAvailable > r.BedsTotal {
		return Invalid("beds_available", "must be between 0 and beds_total")
	}
	if r.PricingDaily <= 0 || r.PricingWeekly <= 0 || r.PricingMonthly <= 0 {
		return Invalid("pricing", "all tiers must be positive")
	}
	return nil
}
