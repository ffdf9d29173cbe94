package domain

import (
	"strings"
	"time"
)

type HostelType string

const (
	HostelTypeBoys  HostelType = "boys"
	HostelTypeGirls HostelType = "girls"
	HostelTypeCoed  HostelType = "co-ed"
)

func (t HostelType) Valid() bool {
	switch t {
	case HostelTypeBoys, HostelTypeGirls, HostelTypeCoed:
		return true
	}
	return false
}

type HostelStatus string

const (
	HostelStatusDraft    HostelStatus = "draft"
	HostelStatusPending  HostelStatus = "pending"
	HostelStatusVerified HostelStatus = "verified"
	HostelStatusRejected HostelStatus = "rejected"
)

func (s HostelStatus) Valid() bool {
	switch s {
	case HostelStatusDraft, HostelStatusPending, HostelStatusVerified, HostelStatusRejected:
		return true
	}
	return false
}

type ListingAction string

const (
	ListingSubmit  ListingAction = "submit"
	ListingVerify  ListingAction = "verify"
	ListingReject  ListingAction = "reject"
	ListingSuspend ListingAction = "suspend"
)

// ListingLifecycle governs hostel visibility. Suspension returns a verified
// listing to review when its owner's subscription lapses.
var ListingLifecycle = NewStateMachine(
	Transition[HostelStatus, ListingAction]{From: HostelStatusDraft, Action: ListingSubmit, To: HostelStatusPending, Roles: []Role{RoleOwner, RoleAgent, RoleAdmin}},
	Transition[HostelStatus, ListingAction]{From: HostelStatusPending, Action: ListingVerify, To: HostelStatusVerified, Roles: []Role{RoleAdmin}},
	Transition[HostelStatus, ListingAction]{From: HostelStatusPending, Action: ListingReject, To: HostelStatusRejected, Roles: []Role{RoleAdmin}},
	Transition[HostelStatus, ListingAction]{From: HostelStatusVerified, Action: ListingSuspend, To: HostelStatusPending, Roles: []Role{RoleAdmin}},
)

// InitialHostelStatus is the entry state of a new listing. Admins
// self-certify; owners and agents go through review.
func InitialHostelStatus(createdBy Role, draft bool) (HostelStatus, error) {
	switch createdBy {
	case RoleAdmin:
		return HostelStatusVerified, nil
	case RoleOwner, RoleAgent:
		if draft {
			return HostelStatusDraft, nil
		}
		return HostelStatusPending, nil
	}
	return "", ErrForbidden
}

type Address struct {
	Line  string
	City  string
	State string
}

func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Line, a.City, a.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Hostel is a listing together with its approval status.
type Hostel struct {
	ID         string
	Name       string
	Type       HostelType
	Address    Address
	OwnerID    string
	AgentID    *string
	Status     HostelStatus
	CreatedBy  Role
	Images     []string
	Amenities  map[string]bool
	CreatedAt  time.Time
	VerifiedOn *time.Time
	RejectedOn *time.Time
	DeletedAt  *time.Time
}

// Bookable reports whether beds may be allocated against the hostel.
func (h Hostel) Bookable() bool {
	return h.Status == HostelStatusVerified && h.DeletedAt == nil
}

// ManagedBy reports whether the actor may administer this listing.
func (h Hostel) ManagedBy(a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	if a.Role == RoleOwner && a.UserID == h.OwnerID {
		return true
	}
	return a.Role == RoleAgent && h.AgentID != nil && *h.AgentID == a.UserID
}

// HostelWithRooms is the search-facing aggregate.
type HostelWithRooms struct {
	Hostel
	Rooms []Room
}
