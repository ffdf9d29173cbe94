package domain

import "time"

type Plan string

const (
	PlanDaily   Plan = "daily"
	PlanWeekly  Plan = "weekly"
	PlanMonthly Plan = "monthly"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanDaily, PlanWeekly, PlanMonthly:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCash   PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCash
}

type PaymentStatus string

const (
	PaymentStatusPaid PaymentStatus = "paid"
	PaymentStatusCash PaymentStatus = "cash"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCash
}

// PaymentStatusFor derives the stored payment status from the method chosen
// at checkout. Online payments are verified before the booking is written.
func PaymentStatusFor(m PaymentMethod) PaymentStatus {
	if m == PaymentOnline {
		return PaymentStatusPaid
	}
	return PaymentStatusCash
}

type BookingFor string

const (
	BookingForSelf  BookingFor = "self"
	BookingForOther BookingFor = "other"
)

func (b BookingFor) Valid() bool {
	return b == BookingForSelf || b == BookingForOther
}

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

type BookingAction string

const BookingCancel BookingAction = "cancel"

// BookingLifecycle holds the only stored transition. Completion is a
// read-time projection, see Booking.EffectiveStatus.
var BookingLifecycle = NewStateMachine(
	Transition[BookingStatus, BookingAction]{From: BookingStatusConfirmed, Action: BookingCancel, To: BookingStatusCancelled, Roles: []Role{RoleHosteller, RoleAdmin}},
)

type Booking struct {
	ID            string
	HostellerID   string
	HostelID      string
	RoomID        string
	Plan          Plan
	StartDate     time.Time
	EndDate       time.Time
	Amount        int64
	PaymentStatus PaymentStatus
	Status        BookingStatus
	BookingFor    BookingFor
	GuestName     string
	GuestPhone    string
	Note          string
	CreatedAt     time.Time
	CancelledAt   *time.Time
}

// EffectiveStatus projects a confirmed booking whose end date has passed
// as completed. Nothing is written.
func (b Booking) EffectiveStatus(now time.Time) BookingStatus {
	if b.Status == BookingStatusConfirmed && b.EndDate.Before(now) {
		return BookingStatusCompleted
	}
	return b.Status
}
