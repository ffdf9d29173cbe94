package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

// InventoryRepository owns the only statements that write beds_available.
type InventoryRepository struct {
	db
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db{pool: pool}}
}

func (r *InventoryRepository) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	return getRoom(ctx, r.db, roomID)
}

// Reserve decrements beds_available by count in a single conditional
// statement. Two callers racing for the last bed cannot both succeed.
func (r *InventoryRepository) Reserve(ctx context.Context, roomID string, count int) error {
	const stmt = `
UPDATE rooms
SET beds_available = beds_available - $2
WHERE id = $1 AND deleted_at IS NULL AND beds_available >= $2`

	tag, err := r.exec(ctx, stmt, roomID, count)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isCheckViolation(err) {
			return domain.ErrInsufficientInventory
		}
		return fmt.Errorf("reserve beds: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.missOrShortage(ctx, roomID)
}

// Release returns count beds, capped at beds_total.
func (r *InventoryRepository) Release(ctx context.Context, roomID string, count int) error {
	const stmt = `
UPDATE rooms
SET beds_available = LEAST(beds_available + $2, beds_total)
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, roomID, count)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("release beds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *InventoryRepository) missOrShortage(ctx context.Context, roomID string) error {
	var deleted bool
	err := r.queryRow(ctx, `SELECT deleted_at IS NOT NULL FROM rooms WHERE id = $1`, roomID).Scan(&deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRoomNotFound
		}
		return fmt.Errorf("check room: %w", err)
	}
	if deleted {
		return domain.ErrRoomNotFound
	}
	return domain.ErrInsufficientInventory
}
