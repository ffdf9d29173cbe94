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

const bookingColumns = `id, hosteller_id, hostel_id, room_id, plan, start_date, end_date, amount, payment_status,
	status, booking_for, guest_name, guest_phone, note, created_at, cancelled_at`

type BookingRepository struct {
	db
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db{pool: pool}}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	if !b.Plan.Valid() || !b.PaymentStatus.Valid() || !b.Status.Valid() || !b.BookingFor.Valid() {
		return domain.Invalid("booking", "has an invalid enum value")
	}
	const stmt = `
INSERT INTO bookings (id, hosteller_id, hostel_id, room_id, plan, start_date, end_date, amount, payment_status,
	status, booking_for, guest_name, guest_phone, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.exec(ctx, stmt,
		b.ID, b.HostellerID, b.HostelID, b.RoomID, b.Plan, b.StartDate, b.EndDate, b.Amount, b.PaymentStatus,
		b.Status, b.BookingFor, b.GuestName, b.GuestPhone, b.Note, b.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isForeignKeyViolation(err):
			return domain.ErrRoomNotFound
		case isCheckViolation(err):
			return domain.Invalid("booking", "violates a schema constraint")
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) CreatePayment(ctx context.Context, p domain.Payment) error {
	return createPayment(ctx, r.db, p)
}

func (r *BookingRepository) GetBooking(ctx context.Context, bookingID string) (domain.Booking, error) {
	return r.getBooking(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID)
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, bookingID string) (domain.Booking, error) {
	return r.getBooking(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID)
}

func (r *BookingRepository) getBooking(ctx context.Context, query, bookingID string) (domain.Booking, error) {
	b, err := scanBooking(r.queryRow(ctx, query, bookingID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Booking{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// CancelBooking only moves confirmed rows; anything else reports an
// invalid transition.
func (r *BookingRepository) CancelBooking(ctx context.Context, bookingID string, at time.Time, note string) error {
	const stmt = `
UPDATE bookings
SET status = 'cancelled', cancelled_at = $2, note = CASE WHEN $3::text = '' THEN note ELSE $3::text END
WHERE id = $1 AND status = 'confirmed'`

	tag, err := r.exec(ctx, stmt, bookingID, at, note)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("cancel booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *BookingRepository) ListBookingsByHosteller(ctx context.Context, hostellerID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE hosteller_id = $1 ORDER BY start_date DESC, created_at DESC`, hostellerID)
}

func (r *BookingRepository) ListBookingsByHostel(ctx context.Context, hostelID string) ([]domain.Booking, error) {
	return r.listBookings(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE hostel_id = $1 ORDER BY start_date DESC, created_at DESC`, hostelID)
}

func (r *BookingRepository) listBookings(ctx context.Context, query string, arg string) ([]domain.Booking, error) {
	rows, err := r.query(ctx, query, arg)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.HostellerID, &b.HostelID, &b.RoomID, &b.Plan, &b.StartDate, &b.EndDate, &b.Amount, &b.PaymentStatus,
		&b.Status, &b.BookingFor, &b.GuestName, &b.GuestPhone, &b.Note, &b.CreatedAt, &b.CancelledAt,
	)
	return b, err
}

// createPayment appends a ledger row. The schema rejects updates and
// deletes; a repeated gateway payment id is reported as ErrAlreadyExists.
func createPayment(ctx context.Context, d db, p domain.Payment) error {
	const stmt = `
INSERT INTO payments (id, owner_id, subscription_id, user_id, hostel_id, booking_id, amount, status, gateway_payment_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := d.exec(ctx, stmt,
		p.ID, p.OwnerID, p.SubscriptionID, p.UserID, p.HostelID, p.BookingID,
		p.Amount, p.Status, p.GatewayPaymentID, p.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrAlreadyExists
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isCheckViolation(err), isForeignKeyViolation(err):
			return domain.Invalid("payment", "must reference a subscription or a booking")
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}
