package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AwardType - what a ledger entry was granted for
type AwardType string

const (
	// constant achievements, flat amount, at most once per member
	AwardProfilePhoto   AwardType = "profile_photo"
	AwardAboutMe        AwardType = "about_me"
	AwardPresentation   AwardType = "presentation"
	AwardSchools        AwardType = "schools"
	AwardAccountConfirm AwardType = "account_confirm"

	// variable awards, repeatable, scaled by tier
	AwardLogins     AwardType = "logins"
	AwardGuestbooks AwardType = "guestbooks"
	AwardMessages   AwardType = "messages"
	AwardDiaries    AwardType = "diaries"
	AwardSurfing    AwardType = "surfing"
	AwardActivity   AwardType = "activity"
	AwardTier       AwardType = "type"

	// bonus top-up riding on a variable award
	AwardBonus AwardType = "bonus"
)

// ConstantAwards lists the one-time achievements in ledger column order.
var ConstantAwards = []AwardType{
	AwardProfilePhoto,
	AwardAboutMe,
	AwardPresentation,
	AwardSchools,
	AwardAccountConfirm,
}

// VariableAwards lists the repeatable awards in ledger column order.
// AwardBonus is tracked separately; it rides on variable grants and has
// its own counter.
var VariableAwards = []AwardType{
	AwardLogins,
	AwardGuestbooks,
	AwardMessages,
	AwardDiaries,
	AwardSurfing,
	AwardActivity,
	AwardTier,
}

// IsConstant reports whether the award is a one-time achievement.
func (a AwardType) IsConstant() bool {
	for _, c := range ConstantAwards {
		if a == c {
			return true
		}
	}
	return false
}

// IsVariable reports whether the award is a repeatable, tier-scaled one.
func (a AwardType) IsVariable() bool {
	for _, v := range VariableAwards {
		if a == v {
			return true
		}
	}
	return false
}

// LedgerEntry - one recorded award, pending until reconciliation
// promotes it into the ledger counters.
type LedgerEntry struct {
	ID        int64     `db:"id" json:"id"`
	LedgerID  int64     `db:"ledger_id" json:"-"`
	Type      AwardType `db:"type" json:"type"`
	Quantity  float64   `db:"quantity" json:"quantity"`
	Accepted  bool      `db:"accepted" json:"accepted"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Ledger - per-member accrual record. Constant achievement columns hold
// the flat amount once awarded (a positive value doubles as the "already
// awarded" flag); variable columns accumulate over time.
type Ledger struct {
	ID       int64 `db:"id" json:"-"`
	MemberID int64 `db:"member_id" json:"-"`

	ProfilePhoto   int `db:"profile_photo" json:"profile_photo"`
	AboutMe        int `db:"about_me" json:"about_me"`
	Presentation   int `db:"presentation" json:"presentation"`
	Schools        int `db:"schools" json:"schools"`
	AccountConfirm int `db:"account_confirm" json:"account_confirm"`

	Logins     int `db:"logins" json:"logins"`
	Guestbooks int `db:"guestbooks" json:"guestbooks"`
	Messages   int `db:"messages" json:"messages"`
	Diaries    int `db:"diaries" json:"diaries"`
	Surfing    int `db:"surfing" json:"surfing"`
	Activity   int `db:"activity" json:"activity"`
	TierAward  int `db:"type" json:"type"`
	Bonus      int `db:"bonus" json:"bonus"`
}

// Counter returns the current counter value for an award type.
func (l *Ledger) Counter(a AwardType) int {
	switch a {
	case AwardProfilePhoto:
		return l.ProfilePhoto
	case AwardAboutMe:
		return l.AboutMe
	case AwardPresentation:
		return l.Presentation
	case AwardSchools:
		return l.Schools
	case AwardAccountConfirm:
		return l.AccountConfirm
	case AwardLogins:
		return l.Logins
	case AwardGuestbooks:
		return l.Guestbooks
	case AwardMessages:
		return l.Messages
	case AwardDiaries:
		return l.Diaries
	case AwardSurfing:
		return l.Surfing
	case AwardActivity:
		return l.Activity
	case AwardTier:
		return l.TierAward
	case AwardBonus:
		return l.Bonus
	}
	return 0
}

// ReconcilableAwards are every award type a pending entry may carry,
// i.e. everything that reconciliation can fold into a counter.
var ReconcilableAwards = func() []AwardType {
	out := make([]AwardType, 0, len(ConstantAwards)+len(VariableAwards)+1)
	out = append(out, ConstantAwards...)
	out = append(out, VariableAwards...)
	return append(out, AwardBonus)
}()

// ConstantTotal sums the one-time achievement counters.
func (l *Ledger) ConstantTotal() int {
	total := 0
	for _, a := range ConstantAwards {
		total += l.Counter(a)
	}
	return total
}

// VariableTotal sums the repeatable counters.
func (l *Ledger) VariableTotal() int {
	total := 0
	for _, a := range VariableAwards {
		total += l.Counter(a)
	}
	return total
}

// Total is the member's visible puls score.
func (l *Ledger) Total() int {
	return l.ConstantTotal() + l.VariableTotal() + l.Bonus
}

// AccrualRules - injected configuration of the accrual engine: the flat
// amount of constant achievements and per-action base rates for variable
// awards. Rates multiply with the tier multiplier and an optional
// override factor.
type AccrualRules struct {
	ConstantAmount int
	BaseRates      map[AwardType]float64
}

// DefaultAccrualRules returns the production point rates.
func DefaultAccrualRules() AccrualRules {
	return AccrualRules{
		ConstantAmount: 15,
		BaseRates: map[AwardType]float64{
			AwardLogins:     0.1,
			AwardGuestbooks: 0.1,
			AwardMessages:   0.1,
			AwardDiaries:    0.2,
			AwardSurfing:    0.5,
			AwardActivity:   0.2,
			AwardTier:       1.0,
		},
	}
}

// Quantity computes the award amount for a grant. Constant achievements
// are flat and tier-independent; variable awards scale with the tier
// multiplier and the override factor. Arithmetic runs on decimals so
// that rates like 0.1 compose without float drift.
func (r AccrualRules) Quantity(catalog *TierCatalog, tier Tier, award AwardType, override float64) (float64, bool) {
	if award.IsConstant() {
		return float64(r.ConstantAmount), true
	}
	rate, ok := r.BaseRates[award]
	if !ok {
		return 0, false
	}
	q := decimal.NewFromFloat(rate).
		Mul(decimal.NewFromInt(int64(catalog.MultiplierFor(tier)))).
		Mul(decimal.NewFromFloat(override))
	f, _ := q.Float64()
	return f, true
}

// PendingSums aggregates pending entry quantities per award type using
// decimal arithmetic. Bonus entries count toward the type they were
// recorded under ("bonus"), mirroring the entry rows themselves.
func PendingSums(entries []LedgerEntry) map[AwardType]decimal.Decimal {
	sums := make(map[AwardType]decimal.Decimal)
	for _, e := range entries {
		if e.Accepted {
			continue
		}
		sums[e.Type] = sums[e.Type].Add(decimal.NewFromFloat(e.Quantity))
	}
	return sums
}
