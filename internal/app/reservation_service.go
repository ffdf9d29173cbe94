package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/pricing"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBooking(ctx context.Context, booking domain.Booking) error
	CreatePayment(ctx context.Context, payment domain.Payment) error
	GetBooking(ctx context.Context, bookingID string) (domain.Booking, error)
	GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, at time.Time, note string) error
	ListBookingsByHosteller(ctx context.Context, hostellerID string) ([]domain.Booking, error)
	ListBookingsByHostel(ctx context.Context, hostelID string) ([]domain.Booking, error)
}

// HostelReader resolves the listing and room a booking targets.
type HostelReader interface {
	GetHostel(ctx context.Context, hostelID string) (domain.Hostel, error)
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)
}

// Where the caller should go after a successful booking.
const (
	NextPaymentConfirmation = "payment_confirmation"
	NextBookings            = "bookings"
)

type ReservationService struct {
	bookings  BookingRepository
	listings  HostelReader
	inventory *InventoryService
	clock     clock.Clock
	publisher EventPublisher
	search    SearchInvalidator
	logger    *slog.Logger
}

type ReservationServiceOption func(*ReservationService)

func WithBookingEvents(p EventPublisher) ReservationServiceOption {
	return func(s *ReservationService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithBookingSearchInvalidator drops cached search results whenever a
// booking changes a room's free beds.
func WithBookingSearchInvalidator(inv SearchInvalidator) ReservationServiceOption {
	return func(s *ReservationService) {
		if inv != nil {
			s.search = inv
		}
	}
}

func WithBookingLogger(logger *slog.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewReservationService(bookings BookingRepository, listings HostelReader, inventory *InventoryService, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		bookings:  bookings,
		listings:  listings,
		inventory: inventory,
		clock:     clk,
		publisher: nopPublisher{},
		search:    nopInvalidator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CreateBookingInput struct {
	HostelID      string
	RoomID        string
	Plan          domain.Plan
	StartDate     time.Time
	BookingFor    domain.BookingFor
	GuestName     string
	GuestPhone    string
	PaymentMethod domain.PaymentMethod
	// Gateway carries the payment gateway callback for online payments.
	Gateway *domain.GatewayConfirmation
}

func (in CreateBookingInput) validate(now time.Time) error {
	if in.HostelID == "" || in.RoomID == "" {
		return domain.ErrInvalidID
	}
	if !in.Plan.Valid() {
		return domain.Invalid("plan", "must be one of daily, weekly, monthly")
	}
	if !in.BookingFor.Valid() {
		return domain.Invalid("booking_for", "must be self or other")
	}
	if !in.PaymentMethod.Valid() {
		return domain.Invalid("payment_method", "must be online or cash")
	}
	if in.BookingFor == domain.BookingForOther {
		if strings.TrimSpace(in.GuestName) == "" {
			return domain.Invalid("guest_name", "is required when booking for someone else")
		}
		if strings.TrimSpace(in.GuestPhone) == "" {
			return domain.Invalid("guest_phone", "is required when booking for someone else")
		}
	}
	if in.PaymentMethod == domain.PaymentOnline && in.Gateway == nil {
		return domain.Invalid("payment", "gateway confirmation is required for online payment")
	}
	return pricing.ValidateStartDate(in.StartDate, now)
}

type BookingResult struct {
	Booking domain.Booking
	Next    string
}

// CreateBooking allocates one bed and records the booking. The bed
// decrement, the booking row and any payment row commit together.
func (s *ReservationService) CreateBooking(ctx context.Context, actor domain.Actor, in CreateBookingInput) (BookingResult, error) {
	if err := actor.Require(domain.RoleHosteller); err != nil {
		return BookingResult{}, err
	}
	now := s.clock.Now()
	if err := in.validate(now); err != nil {
		return BookingResult{}, err
	}

	hostel, err := s.listings.GetHostel(ctx, in.HostelID)
	if err != nil {
		return BookingResult{}, err
	}
	if !hostel.Bookable() {
		return BookingResult{}, domain.ErrHostelNotBookable
	}
	room, err := s.listings.GetRoom(ctx, in.RoomID)
	if err != nil {
		return BookingResult{}, err
	}
	if room.HostelID != hostel.ID || room.DeletedAt != nil {
		return BookingResult{}, domain.ErrRoomNotFound
	}

	quote, err := pricing.QuoteFor(room, in.Plan, pricing.Day(in.StartDate))
	if err != nil {
		return BookingResult{}, err
	}
	if in.PaymentMethod == domain.PaymentOnline {
		if err := in.Gateway.Verify(quote.Amount); err != nil {
			return BookingResult{}, err
		}
	}

	booking := domain.Booking{
		ID:            newID(),
		HostellerID:   actor.UserID,
		HostelID:      hostel.ID,
		RoomID:        room.ID,
		Plan:          in.Plan,
		StartDate:     quote.StartDate,
		EndDate:       quote.EndDate,
		Amount:        quote.Amount,
		PaymentStatus: domain.PaymentStatusFor(in.PaymentMethod),
		Status:        domain.BookingStatusConfirmed,
		BookingFor:    in.BookingFor,
		CreatedAt:     now,
	}
	if in.BookingFor == domain.BookingForOther {
		booking.GuestName = strings.TrimSpace(in.GuestName)
		booking.GuestPhone = strings.TrimSpace(in.GuestPhone)
	}

	err = s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.inventory.Reserve(txCtx, room.ID, 1); err != nil {
			return err
		}
		if err := s.bookings.CreateBooking(txCtx, booking); err != nil {
			return err
		}
		if in.PaymentMethod != domain.PaymentOnline {
			return nil
		}
		userID, hostelID, bookingID := actor.UserID, hostel.ID, booking.ID
		return s.bookings.CreatePayment(txCtx, domain.Payment{
			ID:               newID(),
			UserID:           &userID,
			HostelID:         &hostelID,
			BookingID:        &bookingID,
			Amount:           quote.Amount,
			Status:           in.Gateway.Status,
			GatewayPaymentID: in.Gateway.PaymentID,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return BookingResult{}, err
	}

	s.invalidateSearch(ctx)
	s.publisher.Publish(EventBookingCreated, bookingEvent(booking))

	next := NextBookings
	if in.PaymentMethod == domain.PaymentOnline {
		next = NextPaymentConfirmation
	}
	return BookingResult{Booking: booking, Next: next}, nil
}

// CancelBooking cancels a confirmed booking that has not yet ended and
// returns its bed to the room.
func (s *ReservationService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID, note string) (domain.Booking, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleAdmin); err != nil {
		return domain.Booking{}, err
	}
	if bookingID == "" {
		return domain.Booking{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Booking
	err := s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.bookings.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && booking.HostellerID != actor.UserID {
			return domain.ErrBookingNotFound
		}
		if booking.EffectiveStatus(now) == domain.BookingStatusCompleted {
			return domain.ErrInvalidTransition
		}
		next, err := domain.BookingLifecycle.Next(booking.Status, domain.BookingCancel, actor.Role)
		if err != nil {
			return err
		}

		note = strings.TrimSpace(note)
		if err := s.bookings.CancelBooking(txCtx, booking.ID, now, note); err != nil {
			return err
		}
		if err := s.inventory.Release(txCtx, booking.RoomID, 1); err != nil {
			return err
		}

		booking.Status = next
		booking.CancelledAt = &now
		if note != "" {
			booking.Note = note
		}
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.invalidateSearch(ctx)
	s.publisher.Publish(EventBookingCancelled, bookingEvent(result))
	return result, nil
}

// GetBooking is visible to the hosteller who made it, the people managing
// the hostel, and admins.
func (s *ReservationService) GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (domain.Booking, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Booking{}, err
	}
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking.HostellerID != actor.UserID && !actor.IsAdmin() {
		hostel, err := s.listings.GetHostel(ctx, booking.HostelID)
		if err != nil {
			return domain.Booking{}, err
		}
		if actor.Role == domain.RoleHosteller || !hostel.ManagedBy(actor) {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
	}
	return project(booking, s.clock.Now()), nil
}

func (s *ReservationService) ListHostellerBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	if err := actor.Require(domain.RoleHosteller); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListBookingsByHosteller(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return projectAll(bookings, s.clock.Now()), nil
}

func (s *ReservationService) ListHostelBookings(ctx context.Context, actor domain.Actor, hostelID string) ([]domain.Booking, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}
	hostel, err := s.listings.GetHostel(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	if !hostel.ManagedBy(actor) {
		return nil, domain.ErrForbidden
	}
	bookings, err := s.bookings.ListBookingsByHostel(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	return projectAll(bookings, s.clock.Now()), nil
}

func project(b domain.Booking, now time.Time) domain.Booking {
	b.Status = b.EffectiveStatus(now)
	return b
}

func projectAll(bookings []domain.Booking, now time.Time) []domain.Booking {
	out := make([]domain.Booking, len(bookings))
	for i, b := range bookings {
		out[i] = project(b, now)
	}
	return out
}

type BookingEvent struct {
	BookingID   string               `json:"booking_id"`
	HostelID    string               `json:"hostel_id"`
	RoomID      string               `json:"room_id"`
	HostellerID string               `json:"hosteller_id"`
	Status      domain.BookingStatus `json:"status"`
}

func bookingEvent(b domain.Booking) BookingEvent {
	return BookingEvent{BookingID: b.ID, HostelID: b.HostelID, RoomID: b.RoomID, HostellerID: b.HostellerID, Status: b.Status}
}

func (s *ReservationService) invalidateSearch(ctx context.Context) {
	if err := s.search.Invalidate(ctx); err != nil {
		s.logger.Warn("search cache invalidation failed", "error", err)
	}
}
