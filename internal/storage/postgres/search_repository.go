package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lovaraju987/seven-nights-stay-sub000/internal/domain"
)

type SearchRepository struct {
	db
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{db: db{pool: pool}}
}

// ListBookableHostels loads verified, non-deleted hostels and their live
// rooms in two queries.
func (r *SearchRepository) ListBookableHostels(ctx context.Context) ([]domain.HostelWithRooms, error) {
	rows, err := r.query(ctx, `
SELECT `+hostelColumns+`
FROM hostels
WHERE status = 'verified' AND deleted_at IS NULL
ORDER BY verified_on DESC NULLS LAST, id`)
	if err != nil {
		return nil, fmt.Errorf("list bookable hostels: %w", err)
	}

	var out []domain.HostelWithRooms
	index := make(map[string]int)
	ids := make([]string, 0)
	for rows.Next() {
		h, err := scanHostel(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan hostel: %w", err)
		}
		index[h.ID] = len(out)
		ids = append(ids, h.ID)
		out = append(out, domain.HostelWithRooms{Hostel: h})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookable hostels: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	roomRows, err := r.query(ctx, `
SELECT `+roomColumns+`
FROM rooms
WHERE hostel_id = ANY($1::uuid[]) AND deleted_at IS NULL
ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list search rooms: %w", err)
	}
	rooms, err := collectRooms(roomRows)
	if err != nil {
		return nil, fmt.Errorf("list search rooms: %w", err)
	}
	for _, room := range rooms {
		i := index[room.HostelID]
		out[i].Rooms = append(out[i].Rooms, room)
	}
	return out, nil
}
