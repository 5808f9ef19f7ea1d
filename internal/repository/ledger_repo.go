package repository

import (
	"context"
	"errors"
	"time"

	"membership_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerColumns = `id, member_id,
	profile_photo, about_me, presentation, schools, account_confirm,
	logins, guestbooks, messages, diaries, surfing, activity, type, bonus`

func scanLedger(row pgx.Row) (*domain.Ledger, error) {
	var l domain.Ledger
	err := row.Scan(&l.ID, &l.MemberID,
		&l.ProfilePhoto, &l.AboutMe, &l.Presentation, &l.Schools, &l.AccountConfirm,
		&l.Logins, &l.Guestbooks, &l.Messages, &l.Diaries, &l.Surfing, &l.Activity,
		&l.TierAward, &l.Bonus)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LedgerRepository) GetByMemberID(ctx context.Context, memberID int64) (*domain.Ledger, error) {
	return scanLedger(r.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE member_id = $1`, memberID))
}

func (r *LedgerRepository) GetByMemberIDWithTx(ctx context.Context, tx pgx.Tx, memberID int64) (*domain.Ledger, error) {
	return scanLedger(tx.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE member_id = $1`, memberID))
}

// CreateEntryWithTx appends a pending entry to the ledger. The caller
// stamps CreatedAt from its own clock, so the throttle never compares
// an app timestamp against a DB one.
func (r *LedgerRepository) CreateEntryWithTx(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	return tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (ledger_id, type, quantity, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, accepted`,
		e.LedgerID, e.Type, e.Quantity, e.CreatedAt,
	).Scan(&e.ID, &e.Accepted)
}

// HasEntryOfTypeWithTx reports whether any entry of the type exists for
// the ledger, pending or accepted. Used by the constant-award
// idempotency check.
func (r *LedgerRepository) HasEntryOfTypeWithTx(ctx context.Context, tx pgx.Tx, ledgerID int64, award domain.AwardType) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE ledger_id = $1 AND type = $2)`,
		ledgerID, award,
	).Scan(&exists)
	return exists, err
}

// LastEntryAtWithTx returns the creation time of the newest entry of
// the given type. The throttle only needs committed timestamps.
func (r *LedgerRepository) LastEntryAtWithTx(ctx context.Context, tx pgx.Tx, ledgerID int64, award domain.AwardType) (time.Time, bool, error) {
	var created time.Time
	err := tx.QueryRow(ctx,
		`SELECT created_at FROM ledger_entries
		 WHERE ledger_id = $1 AND type = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		ledgerID, award,
	).Scan(&created)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return created, true, nil
}

// PendingEntriesWithTx returns the reconciliation snapshot: every
// pending entry for the ledger, oldest first.
func (r *LedgerRepository) PendingEntriesWithTx(ctx context.Context, tx pgx.Tx, ledgerID int64) ([]domain.LedgerEntry, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, ledger_id, type, quantity, accepted, created_at
		 FROM ledger_entries
		 WHERE ledger_id = $1 AND NOT accepted
		 ORDER BY id`,
		ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.LedgerID, &e.Type, &e.Quantity, &e.Accepted, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PendingSums returns the per-type pending totals without locking, for
// display on the puls page.
func (r *LedgerRepository) PendingSums(ctx context.Context, ledgerID int64) (map[domain.AwardType]float64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT type, SUM(quantity)
		 FROM ledger_entries
		 WHERE ledger_id = $1 AND NOT accepted
		 GROUP BY type`,
		ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[domain.AwardType]float64)
	for rows.Next() {
		var t domain.AwardType
		var q float64
		if err := rows.Scan(&t, &q); err != nil {
			return nil, err
		}
		sums[t] = q
	}
	return sums, rows.Err()
}

// AcceptEntriesWithTx marks exactly the snapshot's entries accepted.
// Entries created after the snapshot was read keep pending.
func (r *LedgerRepository) AcceptEntriesWithTx(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`UPDATE ledger_entries SET accepted = TRUE WHERE id = ANY($1)`, ids)
	return err
}

// AddToCounterWithTx folds a reconciled amount into one ledger counter.
// The column set is fixed by the schema; award names map onto it 1:1.
func (r *LedgerRepository) AddToCounterWithTx(ctx context.Context, tx pgx.Tx, ledgerID int64, award domain.AwardType, amount int) error {
	col, ok := counterColumn(award)
	if !ok {
		return errors.New("ledger: no counter column for award type " + string(award))
	}
	_, err := tx.Exec(ctx,
		`UPDATE ledgers SET `+col+` = `+col+` + $1 WHERE id = $2`,
		amount, ledgerID)
	return err
}

func counterColumn(award domain.AwardType) (string, bool) {
	switch award {
	case domain.AwardProfilePhoto:
		return "profile_photo", true
	case domain.AwardAboutMe:
		return "about_me", true
	case domain.AwardPresentation:
		return "presentation", true
	case domain.AwardSchools:
		return "schools", true
	case domain.AwardAccountConfirm:
		return "account_confirm", true
	case domain.AwardLogins:
		return "logins", true
	case domain.AwardGuestbooks:
		return "guestbooks", true
	case domain.AwardMessages:
		return "messages", true
	case domain.AwardDiaries:
		return "diaries", true
	case domain.AwardSurfing:
		return "surfing", true
	case domain.AwardActivity:
		return "activity", true
	case domain.AwardTier:
		return "type", true
	case domain.AwardBonus:
		return "bonus", true
	}
	return "", false
}
