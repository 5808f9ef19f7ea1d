package repository

import (
	"context"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, username, tier, emotion, about_me_set, gallery_count, picture_bytes, is_admin, created_at`

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.Username, &m.Tier, &m.Emotion, &m.AboutMeSet,
		&m.GalleryCount, &m.PictureBytes, &m.IsAdmin, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	return scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1`, id))
}

func (r *MemberRepository) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	return scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE username = $1`, username))
}

// Create inserts the member together with its empty ledger, in one
// transaction. The 1:1 pairing is an invariant of the whole engine.
func (r *MemberRepository) Create(ctx context.Context, m *domain.Member) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if m.Tier == "" {
		m.Tier = domain.TierBasic
	}
	if m.Emotion == "" {
		m.Emotion = domain.DefaultEmotion
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO members (username, tier, emotion, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, about_me_set, gallery_count, picture_bytes, created_at`,
		m.Username, m.Tier, m.Emotion, m.IsAdmin,
	).Scan(&m.ID, &m.AboutMeSet, &m.GalleryCount, &m.PictureBytes, &m.CreatedAt)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO ledgers (member_id) VALUES ($1)`, m.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// LockWithTx takes the per-member row lock that serializes every
// mutating engine operation for this member, and returns the current
// row under that lock.
func (r *MemberRepository) LockWithTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Member, error) {
	return scanMember(tx.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id))
}

func (r *MemberRepository) UpdateTierWithTx(ctx context.Context, tx pgx.Tx, id int64, tier domain.Tier) error {
	_, err := tx.Exec(ctx, `UPDATE members SET tier = $1 WHERE id = $2`, tier, id)
	return err
}

func (r *MemberRepository) SetEmotionWithTx(ctx context.Context, tx pgx.Tx, id int64, e domain.Emotion) error {
	_, err := tx.Exec(ctx, `UPDATE members SET emotion = $1 WHERE id = $2`, e, id)
	return err
}

func (r *MemberRepository) SetEmotion(ctx context.Context, id int64, e domain.Emotion) error {
	_, err := r.db.Exec(ctx, `UPDATE members SET emotion = $1 WHERE id = $2`, e, id)
	return err
}

func (r *MemberRepository) SetAboutMeDone(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE members SET about_me_set = TRUE WHERE id = $1`, id)
	return err
}

// AdjustResourcesWithTx applies the bookkeeping deltas a trim or an
// upload produced to the member row.
func (r *MemberRepository) AdjustResourcesWithTx(ctx context.Context, tx pgx.Tx, id int64, galleryDelta int, byteDelta int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE members
		 SET gallery_count = gallery_count + $1,
		     picture_bytes = picture_bytes + $2
		 WHERE id = $3`,
		galleryDelta, byteDelta, id)
	return err
}
