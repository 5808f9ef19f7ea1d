package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BonusScopeAll applies a campaign to every variable award type.
const BonusScopeAll = "all"

// BonusCampaign - time-boxed multiplier layered on top of variable
// awards. Scope is either "all" or a single variable award type.
type BonusCampaign struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Scope       string    `db:"scope" json:"scope"`
	Multiplier  float64   `db:"multiplier" json:"multiplier"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
}

// ActiveOn reports whether the campaign window contains the given day.
// Both bounds are inclusive, date precision.
func (b BonusCampaign) ActiveOn(day time.Time) bool {
	d := truncateToDay(day)
	return !d.Before(truncateToDay(b.StartDate)) && !d.After(truncateToDay(b.EndDate))
}

// AppliesTo reports whether the campaign covers the award type.
func (b BonusCampaign) AppliesTo(award AwardType) bool {
	return b.Scope == BonusScopeAll || b.Scope == string(award)
}

// BonusSum adds up the multipliers of every campaign active on the given
// day whose scope covers the award. The composition is deliberately
// additive: two campaigns at 0.5 and 0.3 yield 0.8, never 1.5*1.3.
func BonusSum(campaigns []BonusCampaign, day time.Time, award AwardType) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range campaigns {
		if c.ActiveOn(day) && c.AppliesTo(award) {
			sum = sum.Add(decimal.NewFromFloat(c.Multiplier))
		}
	}
	return sum
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
