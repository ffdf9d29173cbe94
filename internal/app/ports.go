package app

import (
	"context"
	"errors"
)

// Event names published on state changes.
const (
	EventListingVerified     = "listing.verified"
	EventListingRejected     = "listing.rejected"
	EventListingSuspended    = "listing.suspended"
	EventListingSubmitted    = "listing.submitted"
	EventListingDeleted      = "listing.deleted"
	EventBookingCreated      = "booking.created"
	EventBookingCancelled    = "booking.cancelled"
	EventSubscriptionRenewed = "subscription.renewed"
	EventComplaintUpdated    = "complaint.updated"
)

// EventPublisher fans state changes out to live subscribers. Publish must
// not block the caller.
type EventPublisher interface {
	Publish(eventType string, payload any)
}

// ObjectStore stores binary content and returns its public URL.
type ObjectStore interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// SearchInvalidator drops cached search results after listing or bed
// availability changes.
type SearchInvalidator interface {
	Invalidate(ctx context.Context) error
}

var errObjectStoreMissing = errors.New("object store not configured")

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }
