package app

import (
	"context"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

// InventoryRepository performs the conditional bed counter updates. Reserve
// must check and decrement in one atomic step.
type InventoryRepository interface {
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)
	Reserve(ctx context.Context, roomID string, count int) error
	Release(ctx context.Context, roomID string, count int) error
}

type InventoryService struct {
	repo InventoryRepository
}

func NewInventoryService(repo InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// Reserve takes count beds from roomID or fails with
// ErrInsufficientInventory without changing anything.
func (s *InventoryService) Reserve(ctx context.Context, roomID string, count int) error {
	if roomID == "" {
		return domain.ErrInvalidID
	}
	if count < 1 {
		return domain.Invalid("count", "must be at least 1")
	}
	return s.repo.Reserve(ctx, roomID, count)
}

// Release returns count beds to roomID, never beyond its total.
func (s *InventoryService) Release(ctx context.Context, roomID string, count int) error {
	if roomID == "" {
		return domain.ErrInvalidID
	}
	if count < 1 {
		return domain.Invalid("count", "must be at least 1")
	}
	return s.repo.Release(ctx, roomID, count)
}

// GetAvailability returns the free beds of roomID.
func (s *InventoryService) GetAvailability(ctx context.Context, roomID string) (int, error) {
	if roomID == "" {
		return 0, domain.ErrInvalidID
	}
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room.DeletedAt != nil {
		return 0, domain.ErrRoomNotFound
	}
	return room.BedsAvailable, nil
}
