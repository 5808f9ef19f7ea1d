package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VisitorRepository struct {
	db *pgxpool.Pool
}

func NewVisitorRepository(db *pgxpool.Pool) *VisitorRepository {
	return &VisitorRepository{db: db}
}

func (r *VisitorRepository) RecordVisit(ctx context.Context, memberID, visitorID int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO visits (member_id, visitor_id) VALUES ($1, $2)`,
		memberID, visitorID)
	return err
}

// RecentVisitors returns the newest visits of a profile. The caller
// picks the limit from the owner's tier quotas (own vs stranger view).
func (r *VisitorRepository) RecentVisitors(ctx context.Context, memberID int64, limit int) ([]domain.Visit, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, member_id, visitor_id, created_at
		 FROM visits
		 WHERE member_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Visit
	for rows.Next() {
		var v domain.Visit
		if err := rows.Scan(&v.ID, &v.MemberID, &v.VisitorID, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
