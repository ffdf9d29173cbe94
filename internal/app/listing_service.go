package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type ListingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateHostel(ctx context.Context, hostel domain.Hostel) error
	CreateRoom(ctx context.Context, room domain.Room) error
	GetHostel(ctx context.Context, hostelID string) (domain.Hostel, error)
	GetHostelForUpdate(ctx context.Context, hostelID string) (domain.Hostel, error)
	ListRooms(ctx context.Context, hostelID string) ([]domain.Room, error)
	ListHostelsByOwner(ctx context.Context, ownerID string) ([]domain.Hostel, error)
	ListHostelsByStatus(ctx context.Context, status domain.HostelStatus) ([]domain.Hostel, error)
	UpdateHostelStatus(ctx context.Context, hostelID string, status domain.HostelStatus, at time.Time) error
	SoftDeleteHostel(ctx context.Context, hostelID string, at time.Time) error
	CancelActiveBookings(ctx context.Context, hostelID string, now time.Time, note string) (int, error)
}

type ListingService struct {
	repo      ListingRepository
	clock     clock.Clock
	store     ObjectStore
	publisher EventPublisher
	search    SearchInvalidator
	logger    *slog.Logger
}

type ListingServiceOption func(*ListingService)

func WithObjectStore(store ObjectStore) ListingServiceOption {
	return func(s *ListingService) { s.store = store }
}

func WithListingEvents(p EventPublisher) ListingServiceOption {
	return func(s *ListingService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithSearchInvalidator(inv SearchInvalidator) ListingServiceOption {
	return func(s *ListingService) {
		if inv != nil {
			s.search = inv
		}
	}
}

func WithListingLogger(logger *slog.Logger) ListingServiceOption {
	return func(s *ListingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewListingService(repo ListingRepository, clk clock.Clock, opts ...ListingServiceOption) *ListingService {
	svc := &ListingService{
		repo:      repo,
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

type ImageUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

type RoomInput struct {
	Type           string
	BedsTotal      int
	PricingDaily   int64
	PricingWeekly  int64
	PricingMonthly int64
}

func (in RoomInput) room(hostelID string, now time.Time) domain.Room {
	return domain.Room{
		ID:             newID(),
		HostelID:       hostelID,
		Type:           strings.TrimSpace(in.Type),
		BedsTotal:      in.BedsTotal,
		BedsAvailable:  in.BedsTotal,
		PricingDaily:   in.PricingDaily,
		PricingWeekly:  in.PricingWeekly,
		PricingMonthly: in.PricingMonthly,
		CreatedAt:      now,
	}
}

type SubmitHostelInput struct {
	Name    string
	Type    domain.HostelType
	Address domain.Address
	// OwnerID is required when an agent or admin lists on an owner's behalf.
	OwnerID   string
	Images    []ImageUpload
	Amenities map[string]bool
	Rooms     []RoomInput
	Draft     bool
}

func (in SubmitHostelInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "is required")
	}
	if !in.Type.Valid() {
		return domain.Invalid("type", "must be one of boys, girls, co-ed")
	}
	if strings.TrimSpace(in.Address.Line) == "" || strings.TrimSpace(in.Address.City) == "" || strings.TrimSpace(in.Address.State) == "" {
		return domain.Invalid("address", "line, city and state are required")
	}
	for _, img := range in.Images {
		if len(img.Data) == 0 {
			return domain.Invalid("images", "must not be empty")
		}
	}
	return nil
}

// SubmitHostel creates a listing and its rooms. Images are uploaded before
// anything is written; an upload failure leaves no trace in storage.
func (s *ListingService) SubmitHostel(ctx context.Context, actor domain.Actor, in SubmitHostelInput) (domain.HostelWithRooms, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.HostelWithRooms{}, err
	}
	if err := in.validate(); err != nil {
		return domain.HostelWithRooms{}, err
	}

	ownerID := in.OwnerID
	var agentID *string
	switch actor.Role {
	case domain.RoleOwner:
		if ownerID != "" && ownerID != actor.UserID {
			return domain.HostelWithRooms{}, domain.ErrForbidden
		}
		ownerID = actor.UserID
	case domain.RoleAgent:
		id := actor.UserID
		agentID = &id
	}
	if ownerID == "" {
		return domain.HostelWithRooms{}, domain.Invalid("owner_id", "is required")
	}

	status, err := domain.InitialHostelStatus(actor.Role, in.Draft)
	if err != nil {
		return domain.HostelWithRooms{}, err
	}

	now := s.clock.Now()
	hostel := domain.Hostel{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Address:   in.Address,
		OwnerID:   ownerID,
		AgentID:   agentID,
		Status:    status,
		CreatedBy: actor.Role,
		Amenities: in.Amenities,
		CreatedAt: now,
	}
	if status == domain.HostelStatusVerified {
		hostel.VerifiedOn = &now
	}

	rooms := make([]domain.Room, 0, len(in.Rooms))
	for _, ri := range in.Rooms {
		room := ri.room(hostel.ID, now)
		if err := room.Validate(); err != nil {
			return domain.HostelWithRooms{}, err
		}
		rooms = append(rooms, room)
	}

	urls, err := s.uploadImages(ctx, hostel.ID, in.Images)
	if err != nil {
		return domain.HostelWithRooms{}, err
	}
	hostel.Images = urls

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateHostel(txCtx, hostel); err != nil {
			return err
		}
		for _, room := range rooms {
			if err := s.repo.CreateRoom(txCtx, room); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.HostelWithRooms{}, err
	}

	switch hostel.Status {
	case domain.HostelStatusVerified:
		s.listingChanged(ctx, EventListingVerified, hostel)
	case domain.HostelStatusPending:
		s.publisher.Publish(EventListingSubmitted, listingEvent(hostel))
	}
	return domain.HostelWithRooms{Hostel: hostel, Rooms: rooms}, nil
}

func (s *ListingService) uploadImages(ctx context.Context, hostelID string, images []ImageUpload) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.store == nil {
		return nil, domain.Upstream("object store", errObjectStoreMissing)
	}
	urls := make([]string, 0, len(images))
	for i, img := range images {
		name := img.Name
		if name == "" {
			name = "image"
		}
		url, err := s.store.Upload(ctx, "hostels/"+hostelID+"/"+strconv.Itoa(i)+"-"+name, img.ContentType, img.Data)
		if err != nil {
			return nil, domain.Upstream("object store", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// SubmitDraft sends a draft listing to review.
func (s *ListingService) SubmitDraft(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error) {
	return s.transition(ctx, actor, hostelID, domain.ListingSubmit)
}

// VerifyHostel makes a pending listing public.
func (s *ListingService) VerifyHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error) {
	return s.transition(ctx, actor, hostelID, domain.ListingVerify)
}

// RejectHostel closes a pending listing.
func (s *ListingService) RejectHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error) {
	return s.transition(ctx, actor, hostelID, domain.ListingReject)
}

// SuspendHostel returns a verified listing to review.
func (s *ListingService) SuspendHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.Hostel, error) {
	return s.transition(ctx, actor, hostelID, domain.ListingSuspend)
}

func (s *ListingService) transition(ctx context.Context, actor domain.Actor, hostelID string, action domain.ListingAction) (domain.Hostel, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Hostel{}, err
	}
	if hostelID == "" {
		return domain.Hostel{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Hostel
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hostel, err := s.repo.GetHostelForUpdate(txCtx, hostelID)
		if err != nil {
			return err
		}
		if hostel.DeletedAt != nil {
			return domain.ErrHostelNotFound
		}
		if action == domain.ListingSubmit && !hostel.ManagedBy(actor) {
			return domain.ErrForbidden
		}

		next, err := domain.ListingLifecycle.Next(hostel.Status, action, actor.Role)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateHostelStatus(txCtx, hostelID, next, now); err != nil {
			return err
		}

		hostel.Status = next
		switch next {
		case domain.HostelStatusVerified:
			hostel.VerifiedOn = &now
		case domain.HostelStatusRejected:
			hostel.RejectedOn = &now
		}
		result = hostel
		return nil
	})
	if err != nil {
		return domain.Hostel{}, err
	}

	switch action {
	case domain.ListingVerify:
		s.listingChanged(ctx, EventListingVerified, result)
	case domain.ListingReject:
		s.listingChanged(ctx, EventListingRejected, result)
	case domain.ListingSuspend:
		s.listingChanged(ctx, EventListingSuspended, result)
	case domain.ListingSubmit:
		s.publisher.Publish(EventListingSubmitted, listingEvent(result))
	}
	return result, nil
}

// SuspendOwnerListings suspends every verified listing of ownerID.
func (s *ListingService) SuspendOwnerListings(ctx context.Context, actor domain.Actor, ownerID string) (int, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return 0, err
	}
	hostels, err := s.repo.ListHostelsByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	suspended := 0
	for _, h := range hostels {
		if h.Status != domain.HostelStatusVerified || h.DeletedAt != nil {
			continue
		}
		if _, err := s.SuspendHostel(ctx, actor, h.ID); err != nil {
			return suspended, err
		}
		suspended++
	}
	return suspended, nil
}

// DeleteHostel soft-deletes a listing and its rooms and cancels bookings
// that have not yet ended.
func (s *ListingService) DeleteHostel(ctx context.Context, actor domain.Actor, hostelID string) (int, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAdmin); err != nil {
		return 0, err
	}

	now := s.clock.Now()
	var cancelled int
	var deleted domain.Hostel
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hostel, err := s.repo.GetHostelForUpdate(txCtx, hostelID)
		if err != nil {
			return err
		}
		if hostel.DeletedAt != nil {
			return domain.ErrHostelNotFound
		}
		if !hostel.ManagedBy(actor) {
			return domain.ErrForbidden
		}
		if err := s.repo.SoftDeleteHostel(txCtx, hostelID, now); err != nil {
			return err
		}
		n, err := s.repo.CancelActiveBookings(txCtx, hostelID, now, "hostel deleted")
		if err != nil {
			return err
		}
		cancelled = n
		hostel.DeletedAt = &now
		deleted = hostel
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.listingChanged(ctx, EventListingDeleted, deleted)
	return cancelled, nil
}

// AddRoom adds inventory to a listing. New rooms start fully available.
func (s *ListingService) AddRoom(ctx context.Context, actor domain.Actor, hostelID string, in RoomInput) (domain.Room, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Room{}, err
	}
	hostel, err := s.repo.GetHostel(ctx, hostelID)
	if err != nil {
		return domain.Room{}, err
	}
	if hostel.DeletedAt != nil {
		return domain.Room{}, domain.ErrHostelNotFound
	}
	if !hostel.ManagedBy(actor) {
		return domain.Room{}, domain.ErrForbidden
	}

	room := in.room(hostelID, s.clock.Now())
	if err := room.Validate(); err != nil {
		return domain.Room{}, err
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	if hostel.Bookable() {
		s.invalidateSearch(ctx)
	}
	return room, nil
}

// GetHostel returns a listing with its rooms. Listings that are not live
// are visible only to the people who manage them.
func (s *ListingService) GetHostel(ctx context.Context, actor domain.Actor, hostelID string) (domain.HostelWithRooms, error) {
	hostel, err := s.repo.GetHostel(ctx, hostelID)
	if err != nil {
		return domain.HostelWithRooms{}, err
	}
	if hostel.DeletedAt != nil {
		return domain.HostelWithRooms{}, domain.ErrHostelNotFound
	}
	if !hostel.Bookable() && !hostel.ManagedBy(actor) {
		return domain.HostelWithRooms{}, domain.ErrHostelNotFound
	}
	rooms, err := s.repo.ListRooms(ctx, hostelID)
	if err != nil {
		return domain.HostelWithRooms{}, err
	}
	return domain.HostelWithRooms{Hostel: hostel, Rooms: rooms}, nil
}

func (s *ListingService) ListOwnerHostels(ctx context.Context, actor domain.Actor, ownerID string) ([]domain.Hostel, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleOwner && actor.UserID != ownerID {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListHostelsByOwner(ctx, ownerID)
}

// ListPendingHostels is the admin review queue.
func (s *ListingService) ListPendingHostels(ctx context.Context, actor domain.Actor) ([]domain.Hostel, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListHostelsByStatus(ctx, domain.HostelStatusPending)
}

func (s *ListingService) listingChanged(ctx context.Context, event string, hostel domain.Hostel) {
	s.invalidateSearch(ctx)
	s.publisher.Publish(event, listingEvent(hostel))
}

func (s *ListingService) invalidateSearch(ctx context.Context) {
	if err := s.search.Invalidate(ctx); err != nil {
		s.logger.Warn("search cache invalidation failed", "error", err)
	}
}

type ListingEvent struct {
	HostelID string              `json:"hostel_id"`
	OwnerID  string              `json:"owner_id"`
	Name     string              `json:"name"`
	Status   domain.HostelStatus `json:"status"`
}

func listingEvent(h domain.Hostel) ListingEvent {
	return ListingEvent{HostelID: h.ID, OwnerID: h.OwnerID, Name: h.Name, Status: h.Status}
}
