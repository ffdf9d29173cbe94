package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type fakeTxKey struct{}

// fakeStore is an in-memory stand-in for every repository. WithTx
// serialises transactions and restores the previous state on error.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	hostels    map[string]domain.Hostel
	rooms      map[string]domain.Room
	bookings   map[string]domain.Booking
	payments   []domain.Payment
	subs       map[string]domain.Subscription
	complaints map[string]domain.Complaint
	wishlist   map[string]domain.WishlistItem

	failCreateBooking error
	failCreateHostel  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hostels:    make(map[string]domain.Hostel),
		rooms:      make(map[string]domain.Room),
		bookings:   make(map[string]domain.Booking),
		subs:       make(map[string]domain.Subscription),
		complaints: make(map[string]domain.Complaint),
		wishlist:   make(map[string]domain.WishlistItem),
	}
}

type fakeSnapshot struct {
	hostels    map[string]domain.Hostel
	rooms      map[string]domain.Room
	bookings   map[string]domain.Booking
	payments   []domain.Payment
	subs       map[string]domain.Subscription
	complaints map[string]domain.Complaint
	wishlist   map[string]domain.WishlistItem
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fakeSnapshot{
		hostels:    copyMap(s.hostels),
		rooms:      copyMap(s.rooms),
		bookings:   copyMap(s.bookings),
		payments:   append([]domain.Payment(nil), s.payments...),
		subs:       copyMap(s.subs),
		complaints: copyMap(s.complaints),
		wishlist:   copyMap(s.wishlist),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostels = snap.hostels
	s.rooms = snap.rooms
	s.bookings = snap.bookings
	s.payments = snap.payments
	s.subs = snap.subs
	s.complaints = snap.complaints
	s.wishlist = snap.wishlist
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// listings

func (s *fakeStore) CreateHostel(_ context.Context, h domain.Hostel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateHostel != nil {
		return s.failCreateHostel
	}
	s.hostels[h.ID] = h
	return nil
}

func (s *fakeStore) CreateRoom(_ context.Context, r domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hostels[r.HostelID]; !ok {
		return domain.ErrHostelNotFound
	}
	s.rooms[r.ID] = r
	return nil
}

func (s *fakeStore) GetHostel(_ context.Context, id string) (domain.Hostel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hostels[id]
	if !ok {
		return domain.Hostel{}, domain.ErrHostelNotFound
	}
	return h, nil
}

func (s *fakeStore) GetHostelForUpdate(ctx context.Context, id string) (domain.Hostel, error) {
	return s.GetHostel(ctx, id)
}

func (s *fakeStore) ListRooms(_ context.Context, hostelID string) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Room
	for _, r := range s.rooms {
		if r.HostelID == hostelID && r.DeletedAt == nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) hostelsWhere(match func(domain.Hostel) bool) []domain.Hostel {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Hostel
	for _, h := range s.hostels {
		if match(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) ListHostelsByOwner(_ context.Context, ownerID string) ([]domain.Hostel, error) {
	return s.hostelsWhere(func(h domain.Hostel) bool { return h.OwnerID == ownerID && h.DeletedAt == nil }), nil
}

func (s *fakeStore) ListHostelsByStatus(_ context.Context, status domain.HostelStatus) ([]domain.Hostel, error) {
	return s.hostelsWhere(func(h domain.Hostel) bool { return h.Status == status && h.DeletedAt == nil }), nil
}

func (s *fakeStore) UpdateHostelStatus(_ context.Context, id string, status domain.HostelStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hostels[id]
	if !ok {
		return domain.ErrHostelNotFound
	}
	h.Status = status
	switch status {
	case domain.HostelStatusVerified:
		h.VerifiedOn = &at
	case domain.HostelStatusRejected:
		h.RejectedOn = &at
	}
	s.hostels[id] = h
	return nil
}

func (s *fakeStore) SoftDeleteHostel(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hostels[id]
	if !ok {
		return domain.ErrHostelNotFound
	}
	h.DeletedAt = &at
	s.hostels[id] = h
	for rid, r := range s.rooms {
		if r.HostelID == id && r.DeletedAt == nil {
			r.DeletedAt = &at
			s.rooms[rid] = r
		}
	}
	return nil
}

func (s *fakeStore) CancelActiveBookings(_ context.Context, hostelID string, now time.Time, note string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, b := range s.bookings {
		if b.HostelID == hostelID && b.Status == domain.BookingStatusConfirmed && b.EndDate.After(now) {
			b.Status = domain.BookingStatusCancelled
			b.CancelledAt = &now
			b.Note = note
			s.bookings[id] = b
			n++
		}
	}
	return n, nil
}

// inventory

func (s *fakeStore) GetRoom(_ context.Context, id string) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return r, nil
}

func (s *fakeStore) Reserve(_ context.Context, id string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok || r.DeletedAt != nil {
		return domain.ErrRoomNotFound
	}
	if r.BedsAvailable < count {
		return domain.ErrInsufficientInventory
	}
	r.BedsAvailable -= count
	s.rooms[id] = r
	return nil
}

func (s *fakeStore) Release(_ context.Context, id string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	r.BedsAvailable += count
	if r.BedsAvailable > r.BedsTotal {
		r.BedsAvailable = r.BedsTotal
	}
	s.rooms[id] = r
	return nil
}

// bookings

func (s *fakeStore) CreateBooking(_ context.Context, b domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateBooking != nil {
		return s.failCreateBooking
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *fakeStore) CreatePayment(_ context.Context, p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, p)
	return nil
}

func (s *fakeStore) GetBooking(_ context.Context, id string) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

func (s *fakeStore) GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	return s.GetBooking(ctx, id)
}

func (s *fakeStore) CancelBooking(_ context.Context, id string, at time.Time, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = domain.BookingStatusCancelled
	b.CancelledAt = &at
	if note != "" {
		b.Note = note
	}
	s.bookings[id] = b
	return nil
}

func (s *fakeStore) bookingsWhere(match func(domain.Booking) bool) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) ListBookingsByHosteller(_ context.Context, id string) ([]domain.Booking, error) {
	return s.bookingsWhere(func(b domain.Booking) bool { return b.HostellerID == id }), nil
}

func (s *fakeStore) ListBookingsByHostel(_ context.Context, id string) ([]domain.Booking, error) {
	return s.bookingsWhere(func(b domain.Booking) bool { return b.HostelID == id }), nil
}

// subscriptions

func (s *fakeStore) CreateSubscription(_ context.Context, sub domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID] = sub
	return nil
}

func (s *fakeStore) GetSubscriptionForUpdate(_ context.Context, id string) (domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return domain.Subscription{}, domain.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (s *fakeStore) CurrentSubscription(ctx context.Context, ownerID string) (*domain.Subscription, error) {
	subs, _ := s.ListSubscriptions(ctx, ownerID)
	if len(subs) == 0 {
		return nil, nil
	}
	return &subs[0], nil
}

// ListSubscriptions orders by expiry, latest first.
func (s *fakeStore) ListSubscriptions(_ context.Context, ownerID string) ([]domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Subscription
	for _, sub := range s.subs {
		if sub.OwnerID == ownerID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresOn.After(out[j].ExpiresOn) })
	return out, nil
}

func (s *fakeStore) UpdateSubscriptionStatus(_ context.Context, id string, status domain.SubscriptionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return domain.ErrSubscriptionNotFound
	}
	sub.Status = status
	s.subs[id] = sub
	return nil
}

func (s *fakeStore) ListSubscribedOwners(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, sub := range s.subs {
		if !seen[sub.OwnerID] {
			seen[sub.OwnerID] = true
			out = append(out, sub.OwnerID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// complaints

func (s *fakeStore) CreateComplaint(_ context.Context, c domain.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[c.ID] = c
	return nil
}

func (s *fakeStore) GetComplaintForUpdate(_ context.Context, id string) (domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return domain.Complaint{}, domain.ErrComplaintNotFound
	}
	return c, nil
}

func (s *fakeStore) UpdateComplaintStatus(_ context.Context, id string, status domain.ComplaintStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return domain.ErrComplaintNotFound
	}
	c.Status = status
	c.UpdatedAt = at
	s.complaints[id] = c
	return nil
}

func (s *fakeStore) ListComplaints(_ context.Context, q ComplaintQuery) ([]domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Complaint
	for _, c := range s.complaints {
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		if q.FiledBy != "" && c.UserID != q.FiledBy {
			continue
		}
		if q.HostelOwner != "" {
			if c.HostelID == nil || s.hostels[*c.HostelID].OwnerID != q.HostelOwner {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// wishlist

func (s *fakeStore) AddWishlistItem(_ context.Context, item domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := item.UserID + "|" + item.HostelID
	if _, ok := s.wishlist[key]; !ok {
		s.wishlist[key] = item
	}
	return nil
}

func (s *fakeStore) RemoveWishlistItem(_ context.Context, userID, hostelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wishlist, userID+"|"+hostelID)
	return nil
}

func (s *fakeStore) ListWishlist(_ context.Context, userID string) ([]domain.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WishlistItem
	for _, item := range s.wishlist {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostelID < out[j].HostelID })
	return out, nil
}

// search

func (s *fakeStore) ListBookableHostels(ctx context.Context) ([]domain.HostelWithRooms, error) {
	hostels := s.hostelsWhere(func(h domain.Hostel) bool { return h.Bookable() })
	out := make([]domain.HostelWithRooms, 0, len(hostels))
	for _, h := range hostels {
		rooms, _ := s.ListRooms(ctx, h.ID)
		out = append(out, domain.HostelWithRooms{Hostel: h, Rooms: rooms})
	}
	return out, nil
}

// fixtures

func (s *fakeStore) putHostel(h domain.Hostel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hostels[h.ID] = h
}

func (s *fakeStore) putRoom(r domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.ID] = r
}

func (s *fakeStore) putBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

func (s *fakeStore) putSubscription(sub domain.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID] = sub
}

func (s *fakeStore) room(id string) domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id]
}

func (s *fakeStore) hostel(id string) domain.Hostel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostels[id]
}

func (s *fakeStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *fakeStore) paymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

type publishedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type countingInvalidator struct {
	mu sync.Mutex
	n  int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type fakeObjectStore struct {
	mu      sync.Mutex
	uploads []string
	failAt  int
}

var errUploadFailed = errors.New("upload failed")

func (f *fakeObjectStore) Upload(_ context.Context, name, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.uploads)+1 == f.failAt {
		return "", errUploadFailed
	}
	f.uploads = append(f.uploads, name)
	return "https://cdn.example.test/" + name, nil
}

var (
	adminActor     = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	ownerActor     = domain.Actor{UserID: "owner-1", Role: domain.RoleOwner}
	otherOwner     = domain.Actor{UserID: "owner-2", Role: domain.RoleOwner}
	agentActor     = domain.Actor{UserID: "agent-1", Role: domain.RoleAgent}
	hostellerActor = domain.Actor{UserID: "guest-1", Role: domain.RoleHosteller}
	otherHosteller = domain.Actor{UserID: "guest-2", Role: domain.RoleHosteller}
)

func verifiedHostel(id, ownerID string) domain.Hostel {
	verified := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.Hostel{
		ID:         id,
		Name:       "Hostel " + id,
		Type:       domain.HostelTypeCoed,
		Address:    domain.Address{Line: "1 Main St", City: "Pune", State: "MH"},
		OwnerID:    ownerID,
		Status:     domain.HostelStatusVerified,
		CreatedBy:  domain.RoleOwner,
		CreatedAt:  verified,
		VerifiedOn: &verified,
	}
}

func testRoomFor(id, hostelID string, total, available int) domain.Room {
	return domain.Room{
		ID:             id,
		HostelID:       hostelID,
		Type:           "dorm",
		BedsTotal:      total,
		BedsAvailable:  available,
		PricingDaily:   500,
		PricingWeekly:  3000,
		PricingMonthly: 4000,
	}
}
