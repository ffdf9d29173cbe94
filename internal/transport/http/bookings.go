package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

// BookingCreator is the minimal interface needed to create a booking.
type BookingCreator interface {
	CreateBooking(ctx context.Context, actor domain.Actor, in app.CreateBookingInput) (app.BookingResult, error)
}

type BookingCanceller interface {
	CancelBooking(ctx context.Context, actor domain.Actor, bookingID, note string) (domain.Booking, error)
}

type BookingReader interface {
	GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (domain.Booking, error)
	ListHostellerBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	ListHostelBookings(ctx context.Context, actor domain.Actor, hostelID string) ([]domain.Booking, error)
}

type gatewayBody struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Amount    int64  `json:"amount" validate:"gte=0"`
	Status    string `json:"status" validate:"required"`
}

func (b *gatewayBody) confirmation() *domain.GatewayConfirmation {
	if b == nil {
		return nil
	}
	return &domain.GatewayConfirmation{PaymentID: b.PaymentID, Amount: b.Amount, Status: b.Status}
}

type createBookingRequest struct {
	HostelID      string       `json:"hostel_id" validate:"required"`
	RoomID        string       `json:"room_id" validate:"required"`
	Plan          string       `json:"plan" validate:"required,oneof=daily weekly monthly"`
	StartDate     string       `json:"start_date" validate:"required"`
	BookingFor    string       `json:"booking_for" validate:"omitempty,oneof=self other"`
	GuestName     string       `json:"guest_name"`
	GuestPhone    string       `json:"guest_phone"`
	PaymentMethod string       `json:"payment_method" validate:"required,oneof=online cash"`
	Payment       *gatewayBody `json:"payment"`
}

type createBookingResponse struct {
	Booking bookingResponse `json:"booking"`
	Next    string          `json:"next"`
}

// HandleCreateBooking books one bed. The response names the follow-up the
// client should show next.
func HandleCreateBooking(svc BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start, err := parseDate("start_date", req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
			return
		}
		bookingFor := domain.BookingFor(req.BookingFor)
		if bookingFor == "" {
			bookingFor = domain.BookingForSelf
		}

		res, err := svc.CreateBooking(r.Context(), actorFrom(r.Context()), app.CreateBookingInput{
			HostelID:      req.HostelID,
			RoomID:        req.RoomID,
			Plan:          domain.Plan(req.Plan),
			StartDate:     start,
			BookingFor:    bookingFor,
			GuestName:     req.GuestName,
			GuestPhone:    req.GuestPhone,
			PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
			Gateway:       req.Payment.confirmation(),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, createBookingResponse{Booking: newBookingResponse(res.Booking), Next: res.Next})
	}
}

type cancelBookingRequest struct {
	Note string `json:"note"`
}

// HandleCancelBooking accepts an empty body or {"note": "..."}.
func HandleCancelBooking(svc BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelBookingRequest
		if !decodeOptionalJSON(w, r, &req) {
			return
		}
		booking, err := svc.CancelBooking(r.Context(), actorFrom(r.Context()), pathID(r, "id"), strings.TrimSpace(req.Note))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingResponse(booking))
	}
}

// decodeOptionalJSON is decodeJSON that treats an empty body as {}.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codeInvalidRequestBody, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return decodeJSON(w, r, dst)
}

func HandleGetBooking(svc BookingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		booking, err := svc.GetBooking(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingResponse(booking))
	}
}

// HandleListMyBookings lists the caller's own bookings.
func HandleListMyBookings(svc BookingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookings, err := svc.ListHostellerBookings(r.Context(), actorFrom(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingList(bookings))
	}
}

func HandleListHostelBookings(svc BookingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookings, err := svc.ListHostelBookings(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newBookingList(bookings))
	}
}
