package service

import (
	"context"
	"errors"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"
	"membership_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrUnknownAwardType = errors.New("unknown award type")
)

// AccrualService grants puls for member actions and reconciles pending
// entries into the ledger counters. Every mutating call runs in one
// transaction holding the member's row lock, so two grants for the same
// member never interleave; members are independent of each other.
type AccrualService struct {
	db      *pgxpool.Pool
	catalog *domain.TierCatalog
	rules   domain.AccrualRules

	members *repository.MemberRepository
	ledgers *repository.LedgerRepository
	bonuses *repository.BonusRepository

	now func() time.Time
}

func NewAccrualService(db *pgxpool.Pool, catalog *domain.TierCatalog, rules domain.AccrualRules) *AccrualService {
	return &AccrualService{
		db:      db,
		catalog: catalog,
		rules:   rules,
		members: repository.NewMemberRepository(db),
		ledgers: repository.NewLedgerRepository(db),
		bonuses: repository.NewBonusRepository(db),
		now:     time.Now,
	}
}

// GrantResult reports what a grant produced. Entry is nil when the
// grant was a silent no-op (already awarded, or throttled).
type GrantResult struct {
	Entry   *domain.LedgerEntry `json:"entry,omitempty"`
	Bonus   *domain.LedgerEntry `json:"bonus,omitempty"`
	Skipped string              `json:"skipped,omitempty"` // "already_awarded" or "throttled"
}

// Grant awards points for an action. Constant achievements are
// idempotent: if the counter is already positive or an entry of the
// type exists (pending or accepted), nothing happens and no error is
// returned; repeated "complete about-me" requests are a normal flow.
func (s *AccrualService) Grant(ctx context.Context, memberID int64, award domain.AwardType, override float64) (*GrantResult, error) {
	if !award.IsConstant() && !award.IsVariable() {
		return nil, ErrUnknownAwardType
	}
	if override <= 0 {
		override = 1
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := s.grantWithTx(ctx, tx, memberID, award, override)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// GrantWithThrottle awards points unless an entry of the same type was
// created within minInterval. A throttled call creates nothing and
// returns no error. Entries are stamped from the service clock, so the
// window comparison never mixes the app clock with the DB clock, and
// the member row lock is all the serialization the gate needs.
func (s *AccrualService) GrantWithThrottle(ctx context.Context, memberID int64, award domain.AwardType, minInterval time.Duration) (*GrantResult, error) {
	if !award.IsConstant() && !award.IsVariable() {
		return nil, ErrUnknownAwardType
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	ledger, err := s.ledgers.GetByMemberIDWithTx(ctx, tx, member.ID)
	if err != nil {
		return nil, err
	}

	last, found, err := s.ledgers.LastEntryAtWithTx(ctx, tx, ledger.ID, award)
	if err != nil {
		return nil, err
	}
	if found && s.now().Sub(last) < minInterval {
		awardsThrottled.WithLabelValues(string(award)).Inc()
		return &GrantResult{Skipped: "throttled"}, nil
	}

	res, err := s.grantLocked(ctx, tx, member, ledger, award, 1)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *AccrualService) grantWithTx(ctx context.Context, tx pgx.Tx, memberID int64, award domain.AwardType, override float64) (*GrantResult, error) {
	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	ledger, err := s.ledgers.GetByMemberIDWithTx(ctx, tx, member.ID)
	if err != nil {
		return nil, err
	}

	return s.grantLocked(ctx, tx, member, ledger, award, override)
}

// grantLocked does the actual work; the caller holds the member lock.
func (s *AccrualService) grantLocked(ctx context.Context, tx pgx.Tx, member *domain.Member, ledger *domain.Ledger, award domain.AwardType, override float64) (*GrantResult, error) {
	if award.IsConstant() {
		if ledger.Counter(award) > 0 {
			return &GrantResult{Skipped: "already_awarded"}, nil
		}
		exists, err := s.ledgers.HasEntryOfTypeWithTx(ctx, tx, ledger.ID, award)
		if err != nil {
			return nil, err
		}
		if exists {
			return &GrantResult{Skipped: "already_awarded"}, nil
		}
	}

	quantity, ok := s.rules.Quantity(s.catalog, member.Tier, award, override)
	if !ok {
		return nil, ErrUnknownAwardType
	}

	entry := &domain.LedgerEntry{
		LedgerID:  ledger.ID,
		Type:      award,
		Quantity:  quantity,
		CreatedAt: s.now(),
	}
	if err := s.ledgers.CreateEntryWithTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	awardsGranted.WithLabelValues(string(award)).Inc()

	res := &GrantResult{Entry: entry}

	// Bonus top-up rides only on variable awards. Campaigns compose
	// additively; the bonus entry shares the grant's fate because it is
	// written in the same transaction.
	if !award.IsConstant() {
		campaigns, err := s.bonuses.ActiveOnWithTx(ctx, tx, s.now())
		if err != nil {
			return nil, err
		}
		sum := domain.BonusSum(campaigns, s.now(), award)
		if !sum.IsZero() {
			bonusQty, _ := decimal.NewFromFloat(quantity).Mul(sum).Float64()
			bonus := &domain.LedgerEntry{
				LedgerID:  ledger.ID,
				Type:      domain.AwardBonus,
				Quantity:  bonusQty,
				CreatedAt: s.now(),
			}
			if err := s.ledgers.CreateEntryWithTx(ctx, tx, bonus); err != nil {
				return nil, err
			}
			awardsGranted.WithLabelValues(string(domain.AwardBonus)).Inc()
			res.Bonus = bonus
		}
	}

	return res, nil
}

// ReconcileResult reports what a reconciliation promoted.
type ReconcileResult struct {
	Updated   map[domain.AwardType]int `json:"updated"`
	AnyChange bool                     `json:"any_change"`
}

// ReconcilePending promotes the member's pending entries: per-type sums
// are truncated to integers and folded into the counters, then exactly
// the snapshot's entries flip to accepted. One transaction, so a
// partial promotion cannot be observed or persisted; on failure the
// caller may simply retry.
func (s *AccrualService) ReconcilePending(ctx context.Context, memberID int64) (*ReconcileResult, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	member, err := s.members.LockWithTx(ctx, tx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	ledger, err := s.ledgers.GetByMemberIDWithTx(ctx, tx, member.ID)
	if err != nil {
		return nil, err
	}

	pending, err := s.ledgers.PendingEntriesWithTx(ctx, tx, ledger.ID)
	if err != nil {
		return nil, err
	}

	sums := domain.PendingSums(pending)

	res := &ReconcileResult{Updated: make(map[domain.AwardType]int)}
	for _, award := range domain.ReconcilableAwards {
		sum, ok := sums[award]
		if !ok || sum.Sign() <= 0 {
			continue
		}
		amount := int(sum.IntPart()) // truncation, not rounding
		if amount <= 0 {
			continue
		}
		if err := s.ledgers.AddToCounterWithTx(ctx, tx, ledger.ID, award, amount); err != nil {
			return nil, err
		}
		res.Updated[award] = amount
		res.AnyChange = true
	}

	ids := make([]int64, len(pending))
	for i, e := range pending {
		ids[i] = e.ID
	}
	if err := s.ledgers.AcceptEntriesWithTx(ctx, tx, ids); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	reconciliations.Inc()
	if res.AnyChange {
		logger.Debug("puls reconciled", "member_id", memberID, "types", len(res.Updated))
	}
	return res, nil
}
