package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PhotoRequestRepository struct {
	db *pgxpool.Pool
}

func NewPhotoRequestRepository(db *pgxpool.Pool) *PhotoRequestRepository {
	return &PhotoRequestRepository{db: db}
}

func (r *PhotoRequestRepository) Create(ctx context.Context, req *domain.ProfilePictureRequest) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO profile_picture_requests (member_id)
		 VALUES ($1)
		 RETURNING id, is_accepted, is_rejected, created_at`,
		req.MemberID,
	).Scan(&req.ID, &req.IsAccepted, &req.IsRejected, &req.CreatedAt)
}

func (r *PhotoRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ProfilePictureRequest, error) {
	var req domain.ProfilePictureRequest
	err := r.db.QueryRow(ctx,
		`SELECT id, member_id, is_accepted, is_rejected, examination_date, created_at
		 FROM profile_picture_requests WHERE id = $1`,
		id,
	).Scan(&req.ID, &req.MemberID, &req.IsAccepted, &req.IsRejected,
		&req.ExaminationDate, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkExamined stamps the moderation outcome.
func (r *PhotoRequestRepository) MarkExamined(ctx context.Context, id int64, accepted bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE profile_picture_requests
		 SET is_accepted = $1, is_rejected = NOT $1, examination_date = NOW()
		 WHERE id = $2`,
		accepted, id)
	return err
}
