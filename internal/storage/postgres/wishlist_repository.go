package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type WishlistRepository struct {
	db
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{db: db{pool: pool}}
}

func (r *WishlistRepository) AddWishlistItem(ctx context.Context, item domain.WishlistItem) error {
	const stmt = `
INSERT INTO wishlist (user_id, hostel_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, hostel_id) DO NOTHING`

	if _, err := r.exec(ctx, stmt, item.UserID, item.HostelID, item.CreatedAt); err != nil {
		switch {
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isForeignKeyViolation(err):
			return domain.ErrHostelNotFound
		}
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) RemoveWishlistItem(ctx context.Context, userID, hostelID string) error {
	if _, err := r.exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND hostel_id = $2`, userID, hostelID); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

func (r *WishlistRepository) ListWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	rows, err := r.query(ctx, `SELECT user_id, hostel_id, created_at FROM wishlist WHERE user_id = $1 ORDER BY created_at DESC, hostel_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WishlistItem, error) {
		var item domain.WishlistItem
		err := row.Scan(&item.UserID, &item.HostelID, &item.CreatedAt)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return items, nil
}
