package http

import (
	"context"
	"net/http"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

// HostelSubmitter is the minimal interface needed to create a listing.
type HostelSubmitter interface {
	SubmitHostel(ctx context.Context, actor domain.Actor, in app.SubmitHostelInput) (domain.HostelWithRooms, error)
}

// HostelTransitioner moves a listing through its approval lifecycle.
type HostelTransitioner interface {
	SubmitDraft(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error)
	VerifyHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error)
	RejectHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error)
	SuspendHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error)
}

type HostelDeleter interface {
	DeleteHostel(ctx context.Context, actor domain.Actor, hostelID string) (int, error)
}

type RoomAdder interface {
	AddRoom(ctx context.Context, actor domain.Actor, hostelID string, in app.RoomInput) (domain.Room, error)
}

type HostelReader interface {
	GetHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.HostelWithRooms, error)
	ListOwnerHostels(ctx context.Context, actor domain.Actor, ownerID string) ([]domain.Hostel, error)
	ListPendingHostels(ctx context.Context, actor domain.Actor) ([]domain.Hostel, error)
}

type AvailabilityReader interface {
	GetAvailability(ctx context.Context, roomID string) (int, error)
}

type submitHostelRequest struct {
	Name      string          `json:"name" validate:"required"`
	Type      string          `json:"type" validate:"required,oneof=boys girls co-ed"`
	Address   addressBody     `json:"address" validate:"required"`
	OwnerID   string          `json:"owner_id"`
	Images    []imageBody     `json:"images" validate:"dive"`
	Amenities map[string]bool `json:"amenities"`
	Rooms     []roomBody      `json:"rooms" validate:"dive"`
	Draft     bool            `json:"draft"`
}

// imageBody carries base64 encoded image bytes.
type imageBody struct {
	Name        string `json:"name" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	Data        []byte `json:"data" validate:"required"`
}

type roomBody struct {
	Type           string `json:"type" validate:"required"`
	BedsTotal      int    `json:"beds_total" validate:"gte=1"`
	PricingDaily   int64  `json:"pricing_daily" validate:"gte=0"`
	PricingWeekly  int64  `json:"pricing_weekly" validate:"gte=0"`
	PricingMonthly int64  `json:"pricing_monthly" validate:"gte=0"`
}

func (b roomBody) input() app.RoomInput {
	return app.RoomInput{
		Type:           b.Type,
		BedsTotal:      b.BedsTotal,
		PricingDaily:   b.PricingDaily,
		PricingWeekly:  b.PricingWeekly,
		PricingMonthly: b.PricingMonthly,
	}
}

func (req submitHostelRequest) input() app.SubmitHostelInput {
	in := app.SubmitHostelInput{
		Name:      req.Name,
		Type:      domain.HostelType(req.Type),
		Address:   domain.Address{Line: req.Address.Line, City: req.Address.City, State: req.Address.State},
		OwnerID:   req.OwnerID,
		Amenities: req.Amenities,
		Draft:     req.Draft,
	}
	for _, img := range req.Images {
		in.Images = append(in.Images, app.ImageUpload{Name: img.Name, ContentType: img.ContentType, Data: img.Data})
	}
	for _, room := range req.Rooms {
		in.Rooms = append(in.Rooms, room.input())
	}
	return in
}

// HandleSubmitHostel creates a hostel with its rooms.
func HandleSubmitHostel(svc HostelSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitHostelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		hostel, err := svc.SubmitHostel(r.Context(), actorFrom(r.Context()), req.input())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newHostelWithRoomsResponse(hostel))
	}
}

// HandleHostelTransition applies one lifecycle action to the hostel in the path.
func HandleHostelTransition(svc HostelTransitioner, action domain.ListingAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var apply func(context.Context, domain.Actor, string) (domain.Hostel, error)
		switch action {
		case domain.ListingSubmit:
			apply = svc.SubmitDraft
		case domain.ListingVerify:
			apply = svc.VerifyHostel
		case domain.ListingReject:
			apply = svc.RejectHostel
		case domain.ListingSuspend:
			apply = svc.SuspendHostel
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		hostel, err := apply(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newHostelResponse(hostel))
	}
}

type deleteHostelResponse struct {
	ID                string `json:"id"`
	CancelledBookings int    `json:"cancelled_bookings"`
}

func HandleDeleteHostel(svc HostelDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r, "id")
		cancelled, err := svc.DeleteHostel(r.Context(), actorFrom(r.Context()), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteHostelResponse{ID: id, CancelledBookings: cancelled})
	}
}

func HandleAddRoom(svc RoomAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roomBody
		if !decodeJSON(w, r, &req) {
			return
		}
		room, err := svc.AddRoom(r.Context(), actorFrom(r.Context()), pathID(r, "id"), req.input())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newRoomResponse(room))
	}
}

func HandleGetHostel(svc HostelReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostel, err := svc.GetHostel(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newHostelWithRoomsResponse(hostel))
	}
}

func HandleListOwnerHostels(svc HostelReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostels, err := svc.ListOwnerHostels(r.Context(), actorFrom(r.Context()), pathID(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newHostelList(hostels))
	}
}

// HandleListPendingHostels serves the admin review queue.
func HandleListPendingHostels(svc HostelReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hostels, err := svc.ListPendingHostels(r.Context(), actorFrom(r.Context()))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newHostelList(hostels))
	}
}

type availabilityResponse struct {
	RoomID        string `json:"room_id"`
	BedsAvailable int    `json:"beds_available"`
}

func HandleRoomAvailability(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r, "id")
		beds, err := svc.GetAvailability(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, availabilityResponse{RoomID: id, BedsAvailable: beds})
	}
}
