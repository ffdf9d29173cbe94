package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type ProfileRepository struct {
	db
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db{pool: pool}}
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
SELECT p.user_id, p.role, p.full_name, p.phone, p.created_at, p.updated_at,
	o.business_name, o.signature_url
FROM profiles p
LEFT JOIN owners o ON o.user_id = p.user_id
WHERE p.user_id = $1`

	var (
		p             domain.Profile
		business, sig *string
	)
	err := r.queryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Role, &p.FullName, &p.Phone, &p.CreatedAt, &p.UpdatedAt, &business, &sig,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, domain.ErrProfileNotFound
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if business != nil {
		p.Owner = &domain.OwnerDetails{BusinessName: *business, SignatureURL: *sig}
	}
	return p, nil
}

func (r *ProfileRepository) UpsertProfile(ctx context.Context, p domain.Profile) error {
	if !p.Role.Valid() {
		return domain.Invalid("role", "is not a role")
	}
	return r.WithTx(ctx, func(txCtx context.Context) error {
		const upsertProfile = `
INSERT INTO profiles (user_id, role, full_name, phone, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
	role = EXCLUDED.role,
	full_name = EXCLUDED.full_name,
	phone = EXCLUDED.phone,
	updated_at = EXCLUDED.updated_at`

		if _, err := r.exec(txCtx, upsertProfile, p.UserID, p.Role, p.FullName, p.Phone, p.CreatedAt, p.UpdatedAt); err != nil {
			if isCheckViolation(err) {
				return domain.Invalid("profile", "violates a schema constraint")
			}
			return fmt.Errorf("upsert profile: %w", err)
		}
		if p.Owner == nil {
			return nil
		}

		const upsertOwner = `
INSERT INTO owners (user_id, business_name, signature_url, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
	business_name = EXCLUDED.business_name,
	signature_url = EXCLUDED.signature_url`

		if _, err := r.exec(txCtx, upsertOwner, p.UserID, p.Owner.BusinessName, p.Owner.SignatureURL, p.CreatedAt); err != nil {
			return fmt.Errorf("upsert owner: %w", err)
		}
		return nil
	})
}
