package app

import (
	"context"
	"strings"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

// ComplaintQuery narrows a complaint listing. Empty fields do not filter.
type ComplaintQuery struct {
	Status      domain.ComplaintStatus
	FiledBy     string
	HostelOwner string
}

type ComplaintRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateComplaint(ctx context.Context, c domain.Complaint) error
	GetComplaintForUpdate(ctx context.Context, complaintID string) (domain.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, complaintID string, status domain.ComplaintStatus, at time.Time) error
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]domain.Complaint, error)
}

type ComplaintService struct {
	repo      ComplaintRepository
	listings  HostelReader
	clock     clock.Clock
	publisher EventPublisher
}

type ComplaintServiceOption func(*ComplaintService)

func WithComplaintEvents(p EventPublisher) ComplaintServiceOption {
	return func(s *ComplaintService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func NewComplaintService(repo ComplaintRepository, listings HostelReader, clk clock.Clock, opts ...ComplaintServiceOption) *ComplaintService {
	svc := &ComplaintService{repo: repo, listings: listings, clock: clk, publisher: nopPublisher{}}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type FileComplaintInput struct {
	HostelID    string
	Subject     string
	Description string
	Priority    domain.ComplaintPriority
}

func (s *ComplaintService) File(ctx context.Context, actor domain.Actor, in FileComplaintInput) (domain.Complaint, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Complaint{}, err
	}
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return domain.Complaint{}, domain.Invalid("subject", "is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Complaint{}, domain.Invalid("priority", "must be one of high, medium, low")
	}

	now := s.clock.Now()
	c := domain.Complaint{
		ID:          newID(),
		UserID:      actor.UserID,
		Subject:     subject,
		Description: strings.TrimSpace(in.Description),
		Status:      domain.ComplaintOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.HostelID != "" {
		if _, err := s.listings.GetHostel(ctx, in.HostelID); err != nil {
			return domain.Complaint{}, err
		}
		hostelID := in.HostelID
		c.HostelID = &hostelID
	}
	if err := s.repo.CreateComplaint(ctx, c); err != nil {
		return domain.Complaint{}, err
	}
	return c, nil
}

// Transition moves a complaint along its lifecycle. Owners may only act on
// complaints about their own hostels.
func (s *ComplaintService) Transition(ctx context.Context, actor domain.Actor, complaintID string, action domain.ComplaintAction) (domain.Complaint, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Complaint{}, err
	}
	now := s.clock.Now()
	var result domain.Complaint
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		c, err := s.repo.GetComplaintForUpdate(txCtx, complaintID)
		if err != nil {
			return err
		}
		if actor.Role == domain.RoleOwner {
			if c.HostelID == nil {
				return domain.ErrForbidden
			}
			hostel, err := s.listings.GetHostel(txCtx, *c.HostelID)
			if err != nil {
				return err
			}
			if hostel.OwnerID != actor.UserID {
				return domain.ErrForbidden
			}
		}
		next, err := domain.ComplaintLifecycle.Next(c.Status, action, actor.Role)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateComplaintStatus(txCtx, c.ID, next, now); err != nil {
			return err
		}
		c.Status = next
		c.UpdatedAt = now
		result = c
		return nil
	})
	if err != nil {
		return domain.Complaint{}, err
	}
	s.publisher.Publish(EventComplaintUpdated, ComplaintEvent{ComplaintID: result.ID, HostelID: result.HostelID, Status: result.Status})
	return result, nil
}

// List returns all complaints to admins, complaints about their hostels to
// owners, and filed complaints to everyone else.
func (s *ComplaintService) List(ctx context.Context, actor domain.Actor, status domain.ComplaintStatus) ([]domain.Complaint, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "must be one of open, in-progress, escalated, resolved")
	}
	q := ComplaintQuery{Status: status}
	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleOwner:
		q.HostelOwner = actor.UserID
	default:
		q.FiledBy = actor.UserID
	}
	return s.repo.ListComplaints(ctx, q)
}

type ComplaintEvent struct {
	ComplaintID string                 `json:"complaint_id"`
	HostelID    *string                `json:"hostel_id,omitempty"`
	Status      domain.ComplaintStatus `json:"status"`
}
