package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

const hostelColumns = `id, name, type, address_line, city, state, owner_id, agent_id, status, created_by,
	images, amenities, created_at, verified_on, rejected_on, deleted_at`

const roomColumns = `id, hostel_id, type, beds_total, beds_available, pricing_daily, pricing_weekly,
	pricing_monthly, created_at, deleted_at`

type ListingRepository struct {
	db
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db{pool: pool}}
}

func (r *ListingRepository) CreateHostel(ctx context.Context, h domain.Hostel) error {
	if !h.Type.Valid() || !h.Status.Valid() || !h.CreatedBy.Valid() {
		return domain.Invalid("hostel", "has an invalid enum value")
	}
	images := h.Images
	if images == nil {
		images = []string{}
	}
	amenities := h.Amenities
	if amenities == nil {
		amenities = map[string]bool{}
	}

	const stmt = `
INSERT INTO hostels (id, name, type, address_line, city, state, owner_id, agent_id, status, created_by,
	images, amenities, created_at, verified_on, rejected_on)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.exec(ctx, stmt,
		h.ID, h.Name, h.Type, h.Address.Line, h.Address.City, h.Address.State,
		h.OwnerID, h.AgentID, h.Status, h.CreatedBy,
		images, amenities, h.CreatedAt, h.VerifiedOn, h.RejectedOn,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isCheckViolation(err):
			return domain.Invalid("hostel", "violates a schema constraint")
		}
		return fmt.Errorf("create hostel: %w", err)
	}
	return nil
}

func (r *ListingRepository) CreateRoom(ctx context.Context, room domain.Room) error {
	const stmt = `
INSERT INTO rooms (id, hostel_id, type, beds_total, beds_available, pricing_daily, pricing_weekly, pricing_monthly, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		room.ID, room.HostelID, room.Type, room.BedsTotal, room.BedsAvailable,
		room.PricingDaily, room.PricingWeekly, room.PricingMonthly, room.CreatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrHostelNotFound
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isCheckViolation(err):
			return domain.Invalid("room", "violates a schema constraint")
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetHostel(ctx context.Context, hostelID string) (domain.Hostel, error) {
	return r.getHostel(ctx, `SELECT `+hostelColumns+` FROM hostels WHERE id = $1`, hostelID)
}

func (r *ListingRepository) GetHostelForUpdate(ctx context.Context, hostelID string) (domain.Hostel, error) {
	return r.getHostel(ctx, `SELECT `+hostelColumns+` FROM hostels WHERE id = $1 FOR UPDATE`, hostelID)
}

func (r *ListingRepository) getHostel(ctx context.Context, query, hostelID string) (domain.Hostel, error) {
	h, err := scanHostel(r.queryRow(ctx, query, hostelID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Hostel{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Hostel{}, domain.ErrHostelNotFound
		}
		return domain.Hostel{}, fmt.Errorf("get hostel: %w", err)
	}
	return h, nil
}

func (r *ListingRepository) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	return getRoom(ctx, r.db, roomID)
}

func (r *ListingRepository) ListRooms(ctx context.Context, hostelID string) ([]domain.Room, error) {
	rows, err := r.query(ctx, `SELECT `+roomColumns+` FROM rooms WHERE hostel_id = $1 AND deleted_at IS NULL ORDER BY created_at, id`, hostelID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	rooms, err := collectRooms(rows)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (r *ListingRepository) ListHostelsByOwner(ctx context.Context, ownerID string) ([]domain.Hostel, error) {
	return r.listHostels(ctx, `SELECT `+hostelColumns+` FROM hostels WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY created_at, id`, ownerID)
}

func (r *ListingRepository) ListHostelsByStatus(ctx context.Context, status domain.HostelStatus) ([]domain.Hostel, error) {
	if !status.Valid() {
		return nil, domain.Invalid("status", "is not a hostel status")
	}
	return r.listHostels(ctx, `SELECT `+hostelColumns+` FROM hostels WHERE status = $1 AND deleted_at IS NULL ORDER BY created_at, id`, status)
}

func (r *ListingRepository) listHostels(ctx context.Context, query string, args ...any) ([]domain.Hostel, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	defer rows.Close()

	var out []domain.Hostel
	for rows.Next() {
		h, err := scanHostel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan hostel: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list hostels: %w", err)
	}
	return out, nil
}

func (r *ListingRepository) UpdateHostelStatus(ctx context.Context, hostelID string, status domain.HostelStatus, at time.Time) error {
	if !status.Valid() {
		return domain.Invalid("status", "is not a hostel status")
	}
	const stmt = `
UPDATE hostels SET
	status = $2::text,
	verified_on = CASE WHEN $2::text = 'verified' THEN $3 ELSE verified_on END,
	rejected_on = CASE WHEN $2::text = 'rejected' THEN $3 ELSE rejected_on END
WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.exec(ctx, stmt, hostelID, status, at)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update hostel status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHostelNotFound
	}
	return nil
}

// SoftDeleteHostel marks the hostel and all of its rooms deleted.
func (r *ListingRepository) SoftDeleteHostel(ctx context.Context, hostelID string, at time.Time) error {
	return r.WithTx(ctx, func(txCtx context.Context) error {
		tag, err := r.exec(txCtx, `UPDATE hostels SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, hostelID, at)
		if err != nil {
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("delete hostel: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrHostelNotFound
		}
		if _, err := r.exec(txCtx, `UPDATE rooms SET deleted_at = $2 WHERE hostel_id = $1 AND deleted_at IS NULL`, hostelID, at); err != nil {
			return fmt.Errorf("delete rooms: %w", err)
		}
		return nil
	})
}

// CancelActiveBookings cancels the hostel's confirmed bookings that end
// after now and returns how many were cancelled.
func (r *ListingRepository) CancelActiveBookings(ctx context.Context, hostelID string, now time.Time, note string) (int, error) {
	const stmt = `
UPDATE bookings
SET status = 'cancelled', cancelled_at = $2, note = $3
WHERE hostel_id = $1 AND status = 'confirmed' AND end_date > ($2::timestamptz AT TIME ZONE 'UTC')::date`

	tag, err := r.exec(ctx, stmt, hostelID, now, note)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("cancel hostel bookings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanHostel(row pgx.Row) (domain.Hostel, error) {
	var h domain.Hostel
	err := row.Scan(
		&h.ID, &h.Name, &h.Type, &h.Address.Line, &h.Address.City, &h.Address.State,
		&h.OwnerID, &h.AgentID, &h.Status, &h.CreatedBy,
		&h.Images, &h.Amenities, &h.CreatedAt, &h.VerifiedOn, &h.RejectedOn, &h.DeletedAt,
	)
	return h, err
}

func scanRoom(row pgx.Row) (domain.Room, error) {
	var room domain.Room
	err := row.Scan(
		&room.ID, &room.HostelID, &room.Type, &room.BedsTotal, &room.BedsAvailable,
		&room.PricingDaily, &room.PricingWeekly, &room.PricingMonthly, &room.CreatedAt, &room.DeletedAt,
	)
	return room, err
}

func collectRooms(rows pgx.Rows) ([]domain.Room, error) {
	defer rows.Close()
	var out []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

func getRoom(ctx context.Context, d db, roomID string) (domain.Room, error) {
	room, err := scanRoom(d.queryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, roomID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Room{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}
