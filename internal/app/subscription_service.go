package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type SubscriptionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateSubscription(ctx context.Context, sub domain.Subscription) error
	CreatePayment(ctx context.Context, payment domain.Payment) error
	GetSubscriptionForUpdate(ctx context.Context, subscriptionID string) (domain.Subscription, error)
	// CurrentSubscription returns the owner's row with the latest expiry, or
	// nil when the owner never subscribed.
	CurrentSubscription(ctx context.Context, ownerID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, ownerID string) ([]domain.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus) error
	ListSubscribedOwners(ctx context.Context) ([]string, error)
}

// ListingSuspender takes an owner's live listings out of search.
type ListingSuspender interface {
	SuspendOwnerListings(ctx context.Context, actor domain.Actor, ownerID string) (int, error)
}

// PlanCatalog maps plan names to their monthly price in minor units.
type PlanCatalog map[string]int64

type SubscriptionService struct {
	repo      SubscriptionRepository
	plans     PlanCatalog
	clock     clock.Clock
	grace     time.Duration
	suspender ListingSuspender
	publisher EventPublisher
	logger    *slog.Logger
}

type SubscriptionServiceOption func(*SubscriptionService)

// WithGracePeriod sets how long an expired subscription stays usable.
func WithGracePeriod(d time.Duration) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		if d >= 0 {
			s.grace = d
		}
	}
}

func WithListingSuspender(suspender ListingSuspender) SubscriptionServiceOption {
	return func(s *SubscriptionService) { s.suspender = suspender }
}

func WithSubscriptionEvents(p EventPublisher) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithSubscriptionLogger(logger *slog.Logger) SubscriptionServiceOption {
	return func(s *SubscriptionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSubscriptionService(repo SubscriptionRepository, plans PlanCatalog, clk clock.Clock, opts ...SubscriptionServiceOption) *SubscriptionService {
	svc := &SubscriptionService{
		repo:      repo,
		plans:     plans,
		clock:     clk,
		publisher: nopPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RecordPaymentInput struct {
	OwnerID  string
	PlanName string
	Gateway  domain.GatewayConfirmation
}

// RecordPayment appends a payment and a fresh subscription running one
// month from now. Earlier rows are left untouched.
func (s *SubscriptionService) RecordPayment(ctx context.Context, actor domain.Actor, in RecordPaymentInput) (domain.Subscription, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Subscription{}, err
	}
	if actor.Role == domain.RoleOwner {
		in.OwnerID = actor.UserID
	}
	if in.OwnerID == "" {
		return domain.Subscription{}, domain.Invalid("owner_id", "is required")
	}
	price, ok := s.plans[strings.TrimSpace(in.PlanName)]
	if !ok {
		return domain.Subscription{}, domain.ErrUnknownPlan
	}
	if err := in.Gateway.Verify(price); err != nil {
		return domain.Subscription{}, err
	}

	now := s.clock.Now()
	sub := domain.Subscription{
		ID:        newID(),
		OwnerID:   in.OwnerID,
		PlanName:  strings.TrimSpace(in.PlanName),
		Amount:    price,
		Status:    domain.SubscriptionActive,
		ExpiresOn: now.AddDate(0, 1, 0),
		CreatedAt: now,
	}
	if s.grace > 0 {
		grace := sub.ExpiresOn.Add(s.grace)
		sub.GraceEndsOn = &grace
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateSubscription(txCtx, sub); err != nil {
			return err
		}
		ownerID, subID := sub.OwnerID, sub.ID
		return s.repo.CreatePayment(txCtx, domain.Payment{
			ID:               newID(),
			OwnerID:          &ownerID,
			SubscriptionID:   &subID,
			Amount:           price,
			Status:           in.Gateway.Status,
			GatewayPaymentID: in.Gateway.PaymentID,
			CreatedAt:        now,
		})
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	s.publisher.Publish(EventSubscriptionRenewed, subscriptionEvent(sub))
	return sub, nil
}

type AdminSubscriptionInput struct {
	OwnerID     string
	PlanName    string
	Amount      int64
	ExpiresOn   time.Time
	GraceEndsOn *time.Time
}

// CreateByAdmin records a subscription granted outside the gateway.
func (s *SubscriptionService) CreateByAdmin(ctx context.Context, actor domain.Actor, in AdminSubscriptionInput) (domain.Subscription, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return domain.Subscription{}, err
	}
	switch {
	case in.OwnerID == "":
		return domain.Subscription{}, domain.Invalid("owner_id", "is required")
	case strings.TrimSpace(in.PlanName) == "":
		return domain.Subscription{}, domain.Invalid("plan_name", "is required")
	case in.Amount < 0:
		return domain.Subscription{}, domain.Invalid("amount", "must not be negative")
	case in.ExpiresOn.IsZero():
		return domain.Subscription{}, domain.Invalid("expires_on", "is required")
	case in.GraceEndsOn != nil && in.GraceEndsOn.Before(in.ExpiresOn):
		return domain.Subscription{}, domain.Invalid("grace_ends_on", "must not be before expires_on")
	}

	sub := domain.Subscription{
		ID:          newID(),
		OwnerID:     in.OwnerID,
		PlanName:    strings.TrimSpace(in.PlanName),
		Amount:      in.Amount,
		Status:      domain.SubscriptionActive,
		ExpiresOn:   in.ExpiresOn,
		GraceEndsOn: in.GraceEndsOn,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return domain.Subscription{}, err
	}
	s.publisher.Publish(EventSubscriptionRenewed, subscriptionEvent(sub))
	return sub, nil
}

// SubscriptionView is a subscription with its time-derived state.
type SubscriptionView struct {
	domain.Subscription
	Effective domain.SubscriptionStatus
	Usable    bool
}

func (s *SubscriptionService) view(sub domain.Subscription) SubscriptionView {
	now := s.clock.Now()
	return SubscriptionView{Subscription: sub, Effective: sub.EffectiveStatus(now), Usable: sub.Usable(now)}
}

func (s *SubscriptionService) Current(ctx context.Context, actor domain.Actor, ownerID string) (SubscriptionView, error) {
	if err := authorizeOwner(actor, ownerID); err != nil {
		return SubscriptionView{}, err
	}
	sub, err := s.repo.CurrentSubscription(ctx, ownerID)
	if err != nil {
		return SubscriptionView{}, err
	}
	if sub == nil {
		return SubscriptionView{}, domain.ErrSubscriptionNotFound
	}
	return s.view(*sub), nil
}

func (s *SubscriptionService) History(ctx context.Context, actor domain.Actor, ownerID string) ([]SubscriptionView, error) {
	if err := authorizeOwner(actor, ownerID); err != nil {
		return nil, err
	}
	subs, err := s.repo.ListSubscriptions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, s.view(sub))
	}
	return out, nil
}

// Cancel ends an active or expired subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, actor domain.Actor, subscriptionID string) (domain.Subscription, error) {
	if err := actor.Require(domain.RoleOwner, domain.RoleAdmin); err != nil {
		return domain.Subscription{}, err
	}
	var result domain.Subscription
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		sub, err := s.repo.GetSubscriptionForUpdate(txCtx, subscriptionID)
		if err != nil {
			return err
		}
		if actor.Role == domain.RoleOwner && sub.OwnerID != actor.UserID {
			return domain.ErrSubscriptionNotFound
		}
		if !sub.Cancellable() {
			return domain.ErrInvalidTransition
		}
		if err := s.repo.UpdateSubscriptionStatus(txCtx, sub.ID, domain.SubscriptionCancelled); err != nil {
			return err
		}
		sub.Status = domain.SubscriptionCancelled
		result = sub
		return nil
	})
	if err != nil {
		return domain.Subscription{}, err
	}
	return result, nil
}

// SweepResult summarises one lapse sweep.
type SweepResult struct {
	Expired   int
	Owners    int
	Suspended int
}

// SweepLapsed marks time-expired rows as expired and suspends the verified
// listings of every owner whose current subscription is no longer usable.
// Owners who never subscribed are left alone.
func (s *SubscriptionService) SweepLapsed(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()
	owners, err := s.repo.ListSubscribedOwners(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	var errs []error
	for _, ownerID := range owners {
		sub, err := s.repo.CurrentSubscription(ctx, ownerID)
		if err != nil {
			errs = append(errs, fmt.Errorf("owner %s: %w", ownerID, err))
			continue
		}
		if sub == nil {
			continue
		}
		if sub.Status == domain.SubscriptionActive && sub.EffectiveStatus(now) == domain.SubscriptionExpired {
			if err := s.repo.UpdateSubscriptionStatus(ctx, sub.ID, domain.SubscriptionExpired); err != nil {
				errs = append(errs, fmt.Errorf("expire %s: %w", sub.ID, err))
				continue
			}
			res.Expired++
		}
		if sub.Usable(now) || s.suspender == nil {
			continue
		}
		n, err := s.suspender.SuspendOwnerListings(ctx, domain.SystemActor, ownerID)
		if n > 0 {
			res.Owners++
			res.Suspended += n
			s.logger.Info("suspended listings after subscription lapse", "owner_id", ownerID, "count", n)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("suspend owner %s: %w", ownerID, err))
		}
	}
	return res, errors.Join(errs...)
}

func authorizeOwner(actor domain.Actor, ownerID string) error {
	if err := actor.Require(domain.RoleOwner, domain.RoleAdmin); err != nil {
		return err
	}
	if ownerID == "" {
		return domain.ErrInvalidID
	}
	if actor.Role == domain.RoleOwner && actor.UserID != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

type SubscriptionEvent struct {
	SubscriptionID string    `json:"subscription_id"`
	OwnerID        string    `json:"owner_id"`
	PlanName       string    `json:"plan_name"`
	ExpiresOn      time.Time `json:"expires_on"`
}

func subscriptionEvent(s domain.Subscription) SubscriptionEvent {
	return SubscriptionEvent{SubscriptionID: s.ID, OwnerID: s.OwnerID, PlanName: s.PlanName, ExpiresOn: s.ExpiresOn}
}
