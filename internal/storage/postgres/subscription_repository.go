package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

const subscriptionColumns = `id, owner_id, plan_name, amount, status, expires_on, grace_ends_on, created_at`

type SubscriptionRepository struct {
	db
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db{pool: pool}}
}

func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, s domain.Subscription) error {
	if !s.Status.Valid() {
		return domain.Invalid("status", "is not a subscription status")
	}
	const stmt = `
INSERT INTO subscriptions (id, owner_id, plan_name, amount, status, expires_on, grace_ends_on, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt, s.ID, s.OwnerID, s.PlanName, s.Amount, s.Status, s.ExpiresOn, s.GraceEndsOn, s.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isCheckViolation(err):
			return domain.Invalid("subscription", "violates a schema constraint")
		}
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) CreatePayment(ctx context.Context, p domain.Payment) error {
	return createPayment(ctx, r.db, p)
}

func (r *SubscriptionRepository) GetSubscriptionForUpdate(ctx context.Context, subscriptionID string) (domain.Subscription, error) {
	s, err := scanSubscription(r.queryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`, subscriptionID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Subscription{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, domain.ErrSubscriptionNotFound
		}
		return domain.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return s, nil
}

// CurrentSubscription returns the row with the latest expires_on, or nil.
func (r *SubscriptionRepository) CurrentSubscription(ctx context.Context, ownerID string) (*domain.Subscription, error) {
	const query = `SELECT ` + subscriptionColumns + `
FROM subscriptions
WHERE owner_id = $1
ORDER BY expires_on DESC, created_at DESC
LIMIT 1`

	s, err := scanSubscription(r.queryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("current subscription: %w", err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context, ownerID string) ([]domain.Subscription, error) {
	rows, err := r.query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE owner_id = $1 ORDER BY expires_on DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return out, nil
}

func (r *SubscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus) error {
	if !status.Valid() {
		return domain.Invalid("status", "is not a subscription status")
	}
	tag, err := r.exec(ctx, `UPDATE subscriptions SET status = $2 WHERE id = $1`, subscriptionID, status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepository) ListSubscribedOwners(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, `SELECT DISTINCT owner_id FROM subscriptions ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list subscribed owners: %w", err)
	}
	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list subscribed owners: %w", err)
	}
	return owners, nil
}

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(&s.ID, &s.OwnerID, &s.PlanName, &s.Amount, &s.Status, &s.ExpiresOn, &s.GraceEndsOn, &s.CreatedAt)
	return s, err
}
