package app

import (
	"context"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/clock"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type WishlistRepository interface {
	// AddWishlistItem is a no-op when the pair already exists.
	AddWishlistItem(ctx context.Context, item domain.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, userID, hostelID string) error
	ListWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error)
}

type WishlistService struct {
	repo     WishlistRepository
	listings HostelReader
	clock    clock.Clock
}

func NewWishlistService(repo WishlistRepository, listings HostelReader, clk clock.Clock) *WishlistService {
	return &WishlistService{repo: repo, listings: listings, clock: clk}
}

func (s *WishlistService) Add(ctx context.Context, actor domain.Actor, hostelID string) (domain.WishlistItem, error) {
	if err := actor.Require(domain.RoleHosteller); err != nil {
		return domain.WishlistItem{}, err
	}
	hostel, err := s.listings.GetHostel(ctx, hostelID)
	if err != nil {
		return domain.WishlistItem{}, err
	}
	if !hostel.Bookable() {
		return domain.WishlistItem{}, domain.ErrHostelNotFound
	}
	item := domain.WishlistItem{UserID: actor.UserID, HostelID: hostelID, CreatedAt: s.clock.Now()}
	if err := s.repo.AddWishlistItem(ctx, item); err != nil {
		return domain.WishlistItem{}, err
	}
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, actor domain.Actor, hostelID string) error {
	if err := actor.Require(domain.RoleHosteller); err != nil {
		return err
	}
	if hostelID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.RemoveWishlistItem(ctx, actor.UserID, hostelID)
}

func (s *WishlistService) List(ctx context.Context, actor domain.Actor) ([]domain.WishlistItem, error) {
	if err := actor.Require(domain.RoleHosteller); err != nil {
		return nil, err
	}
	return s.repo.ListWishlist(ctx, actor.UserID)
}
