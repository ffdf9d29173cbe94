package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

func TestListingService_SubmitHostel(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	input := func() SubmitHostelInput {
		return SubmitHostelInput{
			Name:      "Sunrise Stay",
			Type:      domain.HostelTypeGirls,
			Address:   domain.Address{Line: "12 Hill Rd", City: "Pune", State: "MH"},
			OwnerID:   "owner-1",
			Amenities: map[string]bool{"wifi": true},
			Images:    []ImageUpload{{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte{1, 2, 3}}},
			Rooms: []RoomInput{
				{Type: "dorm", BedsTotal: 10, PricingDaily: 500, PricingWeekly: 3000, PricingMonthly: 4000},
			},
		}
	}

	makeSvc := func() (*ListingService, *fakeStore, *fakeObjectStore, *recordingPublisher) {
		store := newFakeStore()
		objects := &fakeObjectStore{}
		pub := &recordingPublisher{}
		svc := NewListingService(store, clock.NewFixed(now), WithObjectStore(objects), WithListingEvents(pub))
		return svc, store, objects, pub
	}

	t.Run("owner and admin with identical payload", func(t *testing.T) {
		svc, _, _, _ := makeSvc()

		owned, err := svc.SubmitHostel(context.Background(), ownerActor, input())
		if err != nil {
			t.Fatalf("owner submit: %v", err)
		}
		if owned.Status != domain.HostelStatusPending {
			t.Fatalf("expected pending for owner, got %s", owned.Status)
		}
		if owned.VerifiedOn != nil {
			t.Fatalf("expected no verified_on for owner listing")
		}

		admin, err := svc.SubmitHostel(context.Background(), adminActor, input())
		if err != nil {
			t.Fatalf("admin submit: %v", err)
		}
		if admin.Status != domain.HostelStatusVerified {
			t.Fatalf("expected verified for admin, got %s", admin.Status)
		}
		if admin.VerifiedOn == nil || !admin.VerifiedOn.Equal(now) {
			t.Fatalf("expected verified_on %v, got %v", now, admin.VerifiedOn)
		}
	})

	t.Run("rooms start fully available and images become urls", func(t *testing.T) {
		svc, store, objects, _ := makeSvc()

		got, err := svc.SubmitHostel(context.Background(), ownerActor, input())
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if len(got.Rooms) != 1 || got.Rooms[0].BedsAvailable != 10 {
			t.Fatalf("expected one room with 10 beds available, got %+v", got.Rooms)
		}
		if store.room(got.Rooms[0].ID).BedsAvailable != 10 {
			t.Fatalf("expected stored room to be fully available")
		}
		if len(got.Images) != 1 || len(objects.uploads) != 1 {
			t.Fatalf("expected one uploaded image, got %v", got.Images)
		}
		if store.hostel(got.ID).Images[0] != got.Images[0] {
			t.Fatalf("expected stored image url %s", got.Images[0])
		}
	})

	t.Run("agent listing records agent and owner", func(t *testing.T) {
		svc, _, _, _ := makeSvc()

		got, err := svc.SubmitHostel(context.Background(), agentActor, input())
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if got.AgentID == nil || *got.AgentID != agentActor.UserID {
			t.Fatalf("expected agent id %s, got %v", agentActor.UserID, got.AgentID)
		}
		if got.OwnerID != "owner-1" || got.CreatedBy != domain.RoleAgent {
			t.Fatalf("unexpected owner/created_by: %s/%s", got.OwnerID, got.CreatedBy)
		}
	})

	t.Run("draft stays draft until submitted", func(t *testing.T) {
		svc, _, _, pub := makeSvc()

		in := input()
		in.Draft = true
		got, err := svc.SubmitHostel(context.Background(), ownerActor, in)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if got.Status != domain.HostelStatusDraft {
			t.Fatalf("expected draft, got %s", got.Status)
		}
		if len(pub.types()) != 0 {
			t.Fatalf("expected no events for a draft, got %v", pub.types())
		}

		submitted, err := svc.SubmitDraft(context.Background(), ownerActor, got.ID)
		if err != nil {
			t.Fatalf("submit draft: %v", err)
		}
		if submitted.Status != domain.HostelStatusPending {
			t.Fatalf("expected pending, got %s", submitted.Status)
		}
		if _, err := svc.SubmitDraft(context.Background(), otherOwner, got.ID); err != domain.ErrForbidden {
			t.Fatalf("expected ErrForbidden for another owner, got %v", err)
		}
	})

	t.Run("upload failure inserts nothing", func(t *testing.T) {
		svc, store, objects, _ := makeSvc()
		objects.failAt = 2

		in := input()
		in.Images = append(in.Images, ImageUpload{Name: "back.jpg", Data: []byte{4}})
		_, err := svc.SubmitHostel(context.Background(), ownerActor, in)
		if !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("expected upstream error, got %v", err)
		}
		if !errors.Is(err, errUploadFailed) {
			t.Fatalf("expected wrapped upload error, got %v", err)
		}
		if len(store.hostels) != 0 || len(store.rooms) != 0 {
			t.Fatalf("expected no rows after failed upload")
		}
	})

	t.Run("insert failure leaves nothing behind", func(t *testing.T) {
		svc, store, _, _ := makeSvc()
		store.failCreateHostel = errors.New("boom")

		if _, err := svc.SubmitHostel(context.Background(), ownerActor, input()); err == nil {
			t.Fatalf("expected error")
		}
		if len(store.hostels) != 0 || len(store.rooms) != 0 {
			t.Fatalf("expected no rows after failed insert")
		}
	})

	t.Run("rejects hostellers and invalid input", func(t *testing.T) {
		svc, _, _, _ := makeSvc()

		if _, err := svc.SubmitHostel(context.Background(), hostellerActor, input()); err != domain.ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}

		bad := input()
		bad.Type = "mixed"
		if _, err := svc.SubmitHostel(context.Background(), ownerActor, bad); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for type, got %v", err)
		}

		bad = input()
		bad.Rooms[0].BedsTotal = 0
		if _, err := svc.SubmitHostel(context.Background(), ownerActor, bad); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for beds, got %v", err)
		}

		bad = input()
		bad.OwnerID = "owner-9"
		if _, err := svc.SubmitHostel(context.Background(), ownerActor, bad); err != domain.ErrForbidden {
			t.Fatalf("expected ErrForbidden for foreign owner id, got %v", err)
		}
	})
}

func TestListingService_Review(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	setup := func(status domain.HostelStatus) (*ListingService, *fakeStore, *recordingPublisher, *countingInvalidator) {
		store := newFakeStore()
		h := verifiedHostel("h1", "owner-1")
		h.Status = status
		h.VerifiedOn = nil
		store.putHostel(h)
		pub := &recordingPublisher{}
		inv := &countingInvalidator{}
		svc := NewListingService(store, clock.NewFixed(now), WithListingEvents(pub), WithSearchInvalidator(inv))
		return svc, store, pub, inv
	}

	t.Run("verify pending", func(t *testing.T) {
		svc, store, pub, inv := setup(domain.HostelStatusPending)

		got, err := svc.VerifyHostel(context.Background(), adminActor, "h1")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != domain.HostelStatusVerified || store.hostel("h1").VerifiedOn == nil {
			t.Fatalf("expected verified with timestamp, got %+v", store.hostel("h1"))
		}
		if inv.count() != 1 {
			t.Fatalf("expected search cache invalidated once, got %d", inv.count())
		}
		if types := pub.types(); len(types) != 1 || types[0] != EventListingVerified {
			t.Fatalf("expected listing.verified event, got %v", types)
		}
	})

	t.Run("reject pending", func(t *testing.T) {
		svc, store, pub, _ := setup(domain.HostelStatusPending)

		if _, err := svc.RejectHostel(context.Background(), adminActor, "h1"); err != nil {
			t.Fatalf("reject: %v", err)
		}
		if h := store.hostel("h1"); h.Status != domain.HostelStatusRejected || h.RejectedOn == nil {
			t.Fatalf("expected rejected with timestamp, got %+v", h)
		}
		if types := pub.types(); len(types) != 1 || types[0] != EventListingRejected {
			t.Fatalf("expected listing.rejected event, got %v", types)
		}
	})

	t.Run("verify outside pending is rejected", func(t *testing.T) {
		for _, status := range []domain.HostelStatus{domain.HostelStatusDraft, domain.HostelStatusVerified, domain.HostelStatusRejected} {
			svc, store, pub, inv := setup(status)
			if _, err := svc.VerifyHostel(context.Background(), adminActor, "h1"); err != domain.ErrInvalidTransition {
				t.Fatalf("%s: expected ErrInvalidTransition, got %v", status, err)
			}
			if store.hostel("h1").Status != status {
				t.Fatalf("%s: status changed", status)
			}
			if len(pub.types()) != 0 || inv.count() != 0 {
				t.Fatalf("%s: expected no side effects", status)
			}
		}
	})

	t.Run("owner cannot verify", func(t *testing.T) {
		svc, _, _, _ := setup(domain.HostelStatusPending)
		if _, err := svc.VerifyHostel(context.Background(), ownerActor, "h1"); err != domain.ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("missing hostel", func(t *testing.T) {
		svc, _, _, _ := setup(domain.HostelStatusPending)
		if _, err := svc.VerifyHostel(context.Background(), adminActor, "nope"); err != domain.ErrHostelNotFound {
			t.Fatalf("expected ErrHostelNotFound, got %v", err)
		}
	})

	t.Run("pending queue is admin only", func(t *testing.T) {
		svc, _, _, _ := setup(domain.HostelStatusPending)
		list, err := svc.ListPendingHostels(context.Background(), adminActor)
		if err != nil || len(list) != 1 {
			t.Fatalf("expected one pending hostel, got %d (%v)", len(list), err)
		}
		if _, err := svc.ListPendingHostels(context.Background(), ownerActor); err != domain.ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestListingService_DeleteHostel(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.putHostel(verifiedHostel("h1", "owner-1"))
	store.putRoom(testRoomFor("r1", "h1", 4, 2))
	store.putBooking(domain.Booking{ID: "future", HostelID: "h1", RoomID: "r1", Status: domain.BookingStatusConfirmed, EndDate: now.Add(72 * time.Hour)})
	store.putBooking(domain.Booking{ID: "past", HostelID: "h1", RoomID: "r1", Status: domain.BookingStatusConfirmed, EndDate: now.Add(-72 * time.Hour)})
	inv := &countingInvalidator{}
	svc := NewListingService(store, clock.NewFixed(now), WithSearchInvalidator(inv))

	if _, err := svc.DeleteHostel(context.Background(), otherOwner, "h1"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for another owner, got %v", err)
	}

	cancelled, err := svc.DeleteHostel(context.Background(), ownerActor, "h1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("expected one cancelled booking, got %d", cancelled)
	}
	if store.hostel("h1").DeletedAt == nil || store.room("r1").DeletedAt == nil {
		t.Fatalf("expected hostel and room soft-deleted")
	}
	if b, _ := store.GetBooking(context.Background(), "future"); b.Status != domain.BookingStatusCancelled || b.Note != "hostel deleted" {
		t.Fatalf("expected future booking cancelled, got %+v", b)
	}
	if b, _ := store.GetBooking(context.Background(), "past"); b.Status != domain.BookingStatusConfirmed {
		t.Fatalf("expected past booking untouched, got %s", b.Status)
	}
	if inv.count() != 1 {
		t.Fatalf("expected cache invalidated")
	}
	if _, err := svc.GetHostel(context.Background(), ownerActor, "h1"); err != domain.ErrHostelNotFound {
		t.Fatalf("expected deleted hostel to be hidden, got %v", err)
	}
	if _, err := svc.DeleteHostel(context.Background(), ownerActor, "h1"); err != domain.ErrHostelNotFound {
		t.Fatalf("expected ErrHostelNotFound on second delete, got %v", err)
	}
}

func TestListingService_AddRoomAndGet(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	pending := verifiedHostel("h1", "owner-1")
	pending.Status = domain.HostelStatusPending
	store.putHostel(pending)
	svc := NewListingService(store, clock.NewFixed(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	room, err := svc.AddRoom(context.Background(), ownerActor, "h1", RoomInput{Type: "private", BedsTotal: 2, PricingDaily: 900, PricingWeekly: 5500, PricingMonthly: 20000})
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	if room.BedsAvailable != 2 {
		t.Fatalf("expected 2 beds available, got %d", room.BedsAvailable)
	}
	if _, err := svc.AddRoom(context.Background(), otherOwner, "h1", RoomInput{Type: "x", BedsTotal: 1, PricingDaily: 1, PricingWeekly: 1, PricingMonthly: 1}); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	got, err := svc.GetHostel(context.Background(), ownerActor, "h1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Rooms) != 1 {
		t.Fatalf("expected 1 room, got %d", len(got.Rooms))
	}
	if _, err := svc.GetHostel(context.Background(), hostellerActor, "h1"); err != domain.ErrHostelNotFound {
		t.Fatalf("expected pending hostel hidden from hostellers, got %v", err)
	}
}

func TestListingService_SuspendOwnerListings(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.putHostel(verifiedHostel("h1", "owner-1"))
	store.putHostel(verifiedHostel("h2", "owner-1"))
	rejected := verifiedHostel("h3", "owner-1")
	rejected.Status = domain.HostelStatusRejected
	store.putHostel(rejected)
	store.putHostel(verifiedHostel("h4", "owner-2"))
	pub := &recordingPublisher{}
	svc := NewListingService(store, clock.NewFixed(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), WithListingEvents(pub))

	n, err := svc.SuspendOwnerListings(context.Background(), domain.SystemActor, "owner-1")
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 suspended, got %d", n)
	}
	for _, id := range []string{"h1", "h2"} {
		if store.hostel(id).Status != domain.HostelStatusPending {
			t.Fatalf("%s: expected pending, got %s", id, store.hostel(id).Status)
		}
	}
	if store.hostel("h3").Status != domain.HostelStatusRejected || store.hostel("h4").Status != domain.HostelStatusVerified {
		t.Fatalf("expected other listings untouched")
	}
	if _, err := svc.SuspendOwnerListings(context.Background(), ownerActor, "owner-1"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for owner, got %v", err)
	}
}
