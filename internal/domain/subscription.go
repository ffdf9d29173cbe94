package domain

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	}
	return false
}

// Subscription is one link of an owner's append-only billing chain.
// The owner's current subscription is the row with the latest ExpiresOn.
type Subscription struct {
	ID          string
	OwnerID     string
	PlanName    string
	Amount      int64
	Status      SubscriptionStatus
	ExpiresOn   time.Time
	GraceEndsOn *time.Time
	CreatedAt   time.Time
}

// EffectiveStatus applies time-driven expiry to an active row.
func (s Subscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if s.Status == SubscriptionActive && now.After(s.ExpiresOn) {
		return SubscriptionExpired
	}
	return s.Status
}

// Usable reports whether the owner's listings may stay live: the
// subscription is active, or expired but still inside its grace window.
func (s Subscription) Usable(now time.Time) bool {
	switch s.EffectiveStatus(now) {
	case SubscriptionActive:
		return true
	case SubscriptionExpired:
		return s.GraceEndsOn != nil && !now.After(*s.GraceEndsOn)
	}
	return false
}

// Cancellable reports whether the explicit cancel transition applies.
func (s Subscription) Cancellable() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionExpired
}

// Payment is an immutable ledger row. Either the owner/subscription pair or
// the user/hostel/booking triple is set.
type Payment struct {
	ID               string
	OwnerID          *string
	SubscriptionID   *string
	UserID           *string
	HostelID         *string
	BookingID        *string
	Amount           int64
	Status           string
	GatewayPaymentID string
	CreatedAt        time.Time
}

const GatewayStatusSuccess = "success"

// GatewayConfirmation is the data a payment gateway callback supplies.
type GatewayConfirmation struct {
	PaymentID string
	Amount    int64
	Status    string
}

// Verify checks the callback against the amount the server expects.
func (g GatewayConfirmation) Verify(expected int64) error {
	if g.PaymentID == "" {
		return Invalid("payment_id", "is required")
	}
	if g.Status != GatewayStatusSuccess {
		return ErrPaymentNotSuccessful
	}
	if g.Amount != expected {
		return ErrPaymentAmountMismatch
	}
	return nil
}
