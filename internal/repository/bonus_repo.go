package repository

import (
	"context"
	"time"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BonusRepository struct {
	db *pgxpool.Pool
}

func NewBonusRepository(db *pgxpool.Pool) *BonusRepository {
	return &BonusRepository{db: db}
}

const bonusColumns = `id, name, description, scope, multiplier, start_date, end_date`

func scanCampaigns(rows pgx.Rows) ([]domain.BonusCampaign, error) {
	defer rows.Close()
	var out []domain.BonusCampaign
	for rows.Next() {
		var c domain.BonusCampaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Scope,
			&c.Multiplier, &c.StartDate, &c.EndDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ActiveOn returns every campaign whose window contains the given day.
func (r *BonusRepository) ActiveOn(ctx context.Context, day time.Time) ([]domain.BonusCampaign, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bonusColumns+`
		 FROM bonus_campaigns
		 WHERE start_date <= $1::date AND end_date >= $1::date
		 ORDER BY id`,
		day)
	if err != nil {
		return nil, err
	}
	return scanCampaigns(rows)
}

// ActiveOnWithTx is ActiveOn inside the grant transaction.
func (r *BonusRepository) ActiveOnWithTx(ctx context.Context, tx pgx.Tx, day time.Time) ([]domain.BonusCampaign, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+bonusColumns+`
		 FROM bonus_campaigns
		 WHERE start_date <= $1::date AND end_date >= $1::date
		 ORDER BY id`,
		day)
	if err != nil {
		return nil, err
	}
	return scanCampaigns(rows)
}

func (r *BonusRepository) Create(ctx context.Context, c *domain.BonusCampaign) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO bonus_campaigns (name, description, scope, multiplier, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		c.Name, c.Description, c.Scope, c.Multiplier, c.StartDate, c.EndDate,
	).Scan(&c.ID)
}
