package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestbookRepository struct {
	db *pgxpool.Pool
}

func NewGuestbookRepository(db *pgxpool.Pool) *GuestbookRepository {
	return &GuestbookRepository{db: db}
}

func (r *GuestbookRepository) CreateEntry(ctx context.Context, e *domain.GuestbookEntry) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO guestbook_entries (owner_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		e.OwnerID, e.AuthorID, e.Body,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *GuestbookRepository) EntriesForOwner(ctx context.Context, ownerID int64, limit int) ([]domain.GuestbookEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, author_id, body, created_at
		 FROM guestbook_entries
		 WHERE owner_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GuestbookEntry
	for rows.Next() {
		var e domain.GuestbookEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.AuthorID, &e.Body, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *GuestbookRepository) CreateComment(ctx context.Context, c *domain.PictureComment) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO picture_comments (picture_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		c.PictureID, c.AuthorID, c.Body,
	).Scan(&c.ID, &c.CreatedAt)
}
