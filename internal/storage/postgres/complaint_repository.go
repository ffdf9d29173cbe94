package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

const complaintColumns = `c.id, c.user_id, c.hostel_id, c.subject, c.description, c.status, c.priority, c.created_at, c.updated_at`

type ComplaintRepository struct {
	db
}

func NewComplaintRepository(pool *pgxpool.Pool) *ComplaintRepository {
	return &ComplaintRepository{db: db{pool: pool}}
}

func (r *ComplaintRepository) CreateComplaint(ctx context.Context, c domain.Complaint) error {
	if !c.Status.Valid() || !c.Priority.Valid() {
		return domain.Invalid("complaint", "has an invalid enum value")
	}
	const stmt = `
INSERT INTO complaints (id, user_id, hostel_id, subject, description, status, priority, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt, c.ID, c.UserID, c.HostelID, c.Subject, c.Description, c.Status, c.Priority, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		switch {
		case isInvalidUUID(err):
			return domain.ErrInvalidID
		case isForeignKeyViolation(err):
			return domain.ErrHostelNotFound
		case isCheckViolation(err):
			return domain.Invalid("complaint", "violates a schema constraint")
		}
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (r *ComplaintRepository) GetComplaintForUpdate(ctx context.Context, complaintID string) (domain.Complaint, error) {
	c, err := scanComplaint(r.queryRow(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.id = $1 FOR UPDATE`, complaintID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Complaint{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Complaint{}, domain.ErrComplaintNotFound
		}
		return domain.Complaint{}, fmt.Errorf("get complaint: %w", err)
	}
	return c, nil
}

func (r *ComplaintRepository) UpdateComplaintStatus(ctx context.Context, complaintID string, status domain.ComplaintStatus, at time.Time) error {
	if !status.Valid() {
		return domain.Invalid("status", "is not a complaint status")
	}
	tag, err := r.exec(ctx, `UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1`, complaintID, status, at)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update complaint status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrComplaintNotFound
	}
	return nil
}

func (r *ComplaintRepository) ListComplaints(ctx context.Context, q app.ComplaintQuery) ([]domain.Complaint, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if q.Status != "" {
		add("c.status = ?", q.Status)
	}
	if q.FiledBy != "" {
		add("c.user_id = ?", q.FiledBy)
	}
	if q.HostelOwner != "" {
		add("h.owner_id = ?", q.HostelOwner)
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints c LEFT JOIN hostels h ON h.id = c.hostel_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY c.created_at DESC, c.id`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var out []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return out, nil
}

func scanComplaint(row pgx.Row) (domain.Complaint, error) {
	var c domain.Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.HostelID, &c.Subject, &c.Description, &c.Status, &c.Priority, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
