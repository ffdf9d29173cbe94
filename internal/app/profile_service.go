package app

import (
	"context"
	"strings"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	// UpsertProfile writes the profile row and, when Owner is set, the
	// owners row in one transaction.
	UpsertProfile(ctx context.Context, p domain.Profile) error
}

type ProfileService struct {
	repo  ProfileRepository
	clock clock.Clock
}

func NewProfileService(repo ProfileRepository, clk clock.Clock) *ProfileService {
	return &ProfileService{repo: repo, clock: clk}
}

type ProfileInput struct {
	FullName     string
	Phone        string
	BusinessName string
	SignatureURL string
}

// Me returns the caller's profile. A caller that never saved one gets an
// empty profile carrying the role from the token.
func (s *ProfileService) Me(ctx context.Context, actor domain.Actor) (domain.Profile, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Profile{}, err
	}
	p, err := s.repo.GetProfile(ctx, actor.UserID)
	if err == domain.ErrProfileNotFound {
		return domain.Profile{UserID: actor.UserID, Role: actor.Role}, nil
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// Save upserts the caller's profile. The role always comes from the actor.
func (s *ProfileService) Save(ctx context.Context, actor domain.Actor, in ProfileInput) (domain.Profile, error) {
	if err := actor.Require(domain.RoleHosteller, domain.RoleOwner, domain.RoleAgent, domain.RoleAdmin); err != nil {
		return domain.Profile{}, err
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return domain.Profile{}, domain.Invalid("full_name", "is required")
	}

	now := s.clock.Now()
	p := domain.Profile{
		UserID:    actor.UserID,
		Role:      actor.Role,
		FullName:  name,
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if actor.Role == domain.RoleOwner {
		p.Owner = &domain.OwnerDetails{
			BusinessName: strings.TrimSpace(in.BusinessName),
			SignatureURL: strings.TrimSpace(in.SignatureURL),
		}
	} else if in.BusinessName != "" || in.SignatureURL != "" {
		return domain.Profile{}, domain.Invalid("business_name", "is only accepted for owners")
	}

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	return s.repo.GetProfile(ctx, actor.UserID)
}
