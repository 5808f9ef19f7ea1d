package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GalleryRepository struct {
	db *pgxpool.Pool
}

func NewGalleryRepository(db *pgxpool.Pool) *GalleryRepository {
	return &GalleryRepository{db: db}
}

// CreateWithTx inserts a gallery row. The quota check, the insert and
// the member bookkeeping all live in the service's transaction under
// the member lock.
func (r *GalleryRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, g *domain.Gallery) error {
	return tx.QueryRow(ctx,
		`INSERT INTO galleries (member_id, name) VALUES ($1, $2)
		 RETURNING id, created_at`,
		g.MemberID, g.Name,
	).Scan(&g.ID, &g.CreatedAt)
}

// OwnedWithTx reports whether the gallery exists and belongs to the
// member.
func (r *GalleryRepository) OwnedWithTx(ctx context.Context, tx pgx.Tx, galleryID, memberID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM galleries WHERE id = $1 AND member_id = $2)`,
		galleryID, memberID).Scan(&exists)
	return exists, err
}

// GalleryIDsNewestFirstWithTx lists gallery ids in eviction order.
func (r *GalleryRepository) GalleryIDsNewestFirstWithTx(ctx context.Context, tx pgx.Tx, memberID int64) ([]int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT id FROM galleries
		 WHERE member_id = $1
		 ORDER BY created_at DESC, id DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	return idList(rows)
}

// DeleteGalleriesWithTx removes the galleries and returns how many
// pictures and bytes the cascade took with them, so the caller can fix
// the member bookkeeping inside the same transaction.
func (r *GalleryRepository) DeleteGalleriesWithTx(ctx context.Context, tx pgx.Tx, memberID int64, galleryIDs []int64) (pictures int, bytes int64, err error) {
	if len(galleryIDs) == 0 {
		return 0, 0, nil
	}

	err = tx.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size_bytes), 0)
		 FROM pictures
		 WHERE member_id = $1 AND gallery_id = ANY($2)`,
		memberID, galleryIDs,
	).Scan(&pictures, &bytes)
	if err != nil {
		return 0, 0, err
	}

	if _, err = tx.Exec(ctx,
		`DELETE FROM galleries WHERE member_id = $1 AND id = ANY($2)`,
		memberID, galleryIDs); err != nil {
		return 0, 0, err
	}

	return pictures, bytes, nil
}

// PicturesNewestFirstWithTx lists the member's pictures with their byte
// weight, newest first, for byte-quota trimming.
func (r *GalleryRepository) PicturesNewestFirstWithTx(ctx context.Context, tx pgx.Tx, memberID int64) ([]domain.PictureRef, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, size_bytes FROM pictures
		 WHERE member_id = $1
		 ORDER BY created_at DESC, id DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PictureRef
	for rows.Next() {
		var p domain.PictureRef
		if err := rows.Scan(&p.ID, &p.SizeBytes); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *GalleryRepository) DeletePicturesWithTx(ctx context.Context, tx pgx.Tx, memberID int64, pictureIDs []int64) error {
	if len(pictureIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`DELETE FROM pictures WHERE member_id = $1 AND id = ANY($2)`,
		memberID, pictureIDs)
	return err
}

// AddPictureWithTx stores picture metadata. The byte-quota check and
// the member's stored-bytes bookkeeping are the caller's, under the
// member lock.
func (r *GalleryRepository) AddPictureWithTx(ctx context.Context, tx pgx.Tx, p *domain.Picture) error {
	return tx.QueryRow(ctx,
		`INSERT INTO pictures (gallery_id, member_id, title, size_bytes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.GalleryID, p.MemberID, p.Title, p.SizeBytes,
	).Scan(&p.ID, &p.CreatedAt)
}

// GetPicture returns a picture row, for comment flows that need the
// owner.
func (r *GalleryRepository) GetPicture(ctx context.Context, id int64) (*domain.Picture, error) {
	var p domain.Picture
	err := r.db.QueryRow(ctx,
		`SELECT id, gallery_id, member_id, title, size_bytes, created_at
		 FROM pictures WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.GalleryID, &p.MemberID, &p.Title, &p.SizeBytes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
