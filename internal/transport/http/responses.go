package http

import (
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/pricing"
)

type addressBody struct {
	Line  string `json:"line" validate:"required"`
	City  string `json:"city" validate:"required"`
	State string `json:"state" validate:"required"`
}

type hostelResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Address    addressBody     `json:"address"`
	OwnerID    string          `json:"owner_id"`
	AgentID    *string         `json:"agent_id,omitempty"`
	Status     string          `json:"status"`
	CreatedBy  string          `json:"created_by"`
	Images     []string        `json:"images"`
	Amenities  map[string]bool `json:"amenities"`
	CreatedAt  time.Time       `json:"created_at"`
	VerifiedOn *time.Time      `json:"verified_on,omitempty"`
	RejectedOn *time.Time      `json:"rejected_on,omitempty"`
	Rooms      []roomResponse  `json:"rooms,omitempty"`
}

type roomResponse struct {
	ID             string `json:"id"`
	HostelID       string `json:"hostel_id"`
	Type           string `json:"type"`
	BedsTotal      int    `json:"beds_total"`
	BedsAvailable  int    `json:"beds_available"`
	PricingDaily   int64  `json:"pricing_daily"`
	PricingWeekly  int64  `json:"pricing_weekly"`
	PricingMonthly int64  `json:"pricing_monthly"`
}

func newHostelResponse(h domain.Hostel) hostelResponse {
	images := h.Images
	if images == nil {
		images = []string{}
	}
	amenities := h.Amenities
	if amenities == nil {
		amenities = map[string]bool{}
	}
	return hostelResponse{
		ID:         h.ID,
		Name:       h.Name,
		Type:       string(h.Type),
		Address:    addressBody{Line: h.Address.Line, City: h.Address.City, State: h.Address.State},
		OwnerID:    h.OwnerID,
		AgentID:    h.AgentID,
		Status:     string(h.Status),
		CreatedBy:  string(h.CreatedBy),
		Images:     images,
		Amenities:  amenities,
		CreatedAt:  h.CreatedAt,
		VerifiedOn: h.VerifiedOn,
		RejectedOn: h.RejectedOn,
	}
}

func newHostelWithRoomsResponse(h domain.HostelWithRooms) hostelResponse {
	resp := newHostelResponse(h.Hostel)
	resp.Rooms = make([]roomResponse, 0, len(h.Rooms))
	for _, room := range h.Rooms {
		resp.Rooms = append(resp.Rooms, newRoomResponse(room))
	}
	return resp
}

func newHostelList(hostels []domain.Hostel) []hostelResponse {
	out := make([]hostelResponse, 0, len(hostels))
	for _, h := range hostels {
		out = append(out, newHostelResponse(h))
	}
	return out
}

func newRoomResponse(r domain.Room) roomResponse {
	return roomResponse{
		ID:             r.ID,
		HostelID:       r.HostelID,
		Type:           r.Type,
		BedsTotal:      r.BedsTotal,
		BedsAvailable:  r.BedsAvailable,
		PricingDaily:   r.PricingDaily,
		PricingWeekly:  r.PricingWeekly,
		PricingMonthly: r.PricingMonthly,
	}
}

type bookingResponse struct {
	ID            string     `json:"id"`
	HostellerID   string     `json:"hosteller_id"`
	HostelID      string     `json:"hostel_id"`
	RoomID        string     `json:"room_id"`
	Plan          string     `json:"plan"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	Amount        int64      `json:"amount"`
	PaymentStatus string     `json:"payment_status"`
	Status        string     `json:"status"`
	BookingFor    string     `json:"booking_for"`
	GuestName     string     `json:"guest_name,omitempty"`
	GuestPhone    string     `json:"guest_phone,omitempty"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

func newBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		HostellerID:   b.HostellerID,
		HostelID:      b.HostelID,
		RoomID:        b.RoomID,
		Plan:          string(b.Plan),
		StartDate:     b.StartDate.Format(dateLayout),
		EndDate:       b.EndDate.Format(dateLayout),
		Amount:        b.Amount,
		PaymentStatus: string(b.PaymentStatus),
		Status:        string(b.Status),
		BookingFor:    string(b.BookingFor),
		GuestName:     b.GuestName,
		GuestPhone:    b.GuestPhone,
		Note:          b.Note,
		CreatedAt:     b.CreatedAt,
		CancelledAt:   b.CancelledAt,
	}
}

func newBookingList(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, newBookingResponse(b))
	}
	return out
}

type subscriptionResponse struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	PlanName    string     `json:"plan_name"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	Effective   string     `json:"effective_status,omitempty"`
	Usable      *bool      `json:"usable,omitempty"`
	ExpiresOn   time.Time  `json:"expires_on"`
	GraceEndsOn *time.Time `json:"grace_ends_on,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newSubscriptionResponse(s domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		PlanName:    s.PlanName,
		Amount:      s.Amount,
		Status:      string(s.Status),
		ExpiresOn:   s.ExpiresOn,
		GraceEndsOn: s.GraceEndsOn,
		CreatedAt:   s.CreatedAt,
	}
}

func newSubscriptionView(v app.SubscriptionView) subscriptionResponse {
	resp := newSubscriptionResponse(v.Subscription)
	resp.Effective = string(v.Effective)
	usable := v.Usable
	resp.Usable = &usable
	return resp
}

type complaintResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HostelID    *string   `json:"hostel_id,omitempty"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newComplaintResponse(c domain.Complaint) complaintResponse {
	return complaintResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		HostelID:    c.HostelID,
		Subject:     c.Subject,
		Description: c.Description,
		Status:      string(c.Status),
		Priority:    string(c.Priority),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type searchResultResponse struct {
	Hostel        hostelResponse `json:"hostel"`
	CheapestDaily int64          `json:"cheapest_daily"`
	Display       displayPrices  `json:"display_prices"`
}

// displayPrices are advertised estimates only.
type displayPrices struct {
	Daily   int64 `json:"daily"`
	Weekly  int64 `json:"weekly"`
	Monthly int64 `json:"monthly"`
}

func newDisplayPrices(p pricing.DisplayPrices) displayPrices {
	return displayPrices{Daily: p.Daily, Weekly: p.Weekly, Monthly: p.Monthly}
}

type wishlistItemResponse struct {
	HostelID  string    `json:"hostel_id"`
	CreatedAt time.Time `json:"created_at"`
}

type profileResponse struct {
	UserID       string     `json:"user_id"`
	Role         string     `json:"role"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone,omitempty"`
	BusinessName string     `json:"business_name,omitempty"`
	SignatureURL string     `json:"signature_url,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func newProfileResponse(p domain.Profile) profileResponse {
	resp := profileResponse{UserID: p.UserID, Role: string(p.Role), FullName: p.FullName, Phone: p.Phone}
	if p.Owner != nil {
		resp.BusinessName = p.Owner.BusinessName
		resp.SignatureURL = p.Owner.SignatureURL
	}
	if !p.UpdatedAt.IsZero() {
		at := p.UpdatedAt
		resp.UpdatedAt = &at
	}
	return resp
}
