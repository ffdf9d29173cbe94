package domain

import "time"

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in-progress"
	ComplaintEscalated  ComplaintStatus = "escalated"
	ComplaintResolved   ComplaintStatus = "resolved"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintOpen, ComplaintInProgress, ComplaintEscalated, ComplaintResolved:
		return true
	}
	return false
}

type ComplaintPriority string

const (
	PriorityHigh   ComplaintPriority = "high"
	PriorityMedium ComplaintPriority = "medium"
	PriorityLow    ComplaintPriority = "low"
)

func (p ComplaintPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type ComplaintAction string

const (
	ComplaintStart    ComplaintAction = "start"
	ComplaintEscalate ComplaintAction = "escalate"
	ComplaintResolve  ComplaintAction = "resolve"
)

var complaintHandlers = []Role{RoleAdmin, RoleOwner}

var ComplaintLifecycle = NewStateMachine(
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintOpen, Action: ComplaintStart, To: ComplaintInProgress, Roles: complaintHandlers},
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintOpen, Action: ComplaintEscalate, To: ComplaintEscalated, Roles: complaintHandlers},
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintOpen, Action: ComplaintResolve, To: ComplaintResolved, Roles: complaintHandlers},
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintInProgress, Action: ComplaintEscalate, To: ComplaintEscalated, Roles: complaintHandlers},
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintInProgress, Action: ComplaintResolve, To: ComplaintResolved, Roles: complaintHandlers},
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintEscalated, Action: ComplaintStart, To: ComplaintInProgress, Roles: []Role{RoleAdmin}},
	Transition[ComplaintStatus, ComplaintAction]{From: ComplaintEscalated, Action: ComplaintResolve, To: ComplaintResolved, Roles: []Role{RoleAdmin}},
)

type Complaint struct {
	ID          string
	UserID      string
	HostelID    *string
	Subject     string
	Description string
	Status      ComplaintStatus
	Priority    ComplaintPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type WishlistItem struct {
	UserID    string
	HostelID  string
	CreatedAt time.Time
}
