package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAwardTypeKinds(t *testing.T) {
	if !AwardAboutMe.IsConstant() || AwardAboutMe.IsVariable() {
		t.Fatal("about_me must be constant")
	}
	if !AwardSurfing.IsVariable() || AwardSurfing.IsConstant() {
		t.Fatal("surfing must be variable")
	}
	if AwardBonus.IsConstant() || AwardBonus.IsVariable() {
		t.Fatal("bonus is neither grantable kind")
	}
	if AwardType("nonsense").IsConstant() || AwardType("nonsense").IsVariable() {
		t.Fatal("unknown award must be neither")
	}
}

func TestAccrualRules_QuantityConstant(t *testing.T) {
	c := mustCatalog(t)
	rules := DefaultAccrualRules()

	// flat 15 regardless of tier
	for _, tier := range c.Tiers() {
		q, ok := rules.Quantity(c, tier, AwardSchools, 1)
		if !ok || q != 15 {
			t.Fatalf("expected 15 at %s, got %v (ok=%v)", tier, q, ok)
		}
	}
}

func TestAccrualRules_QuantityScalesWithTier(t *testing.T) {
	c := mustCatalog(t)
	rules := DefaultAccrualRules()

	cases := []struct {
		tier Tier
		want float64
	}{
		{TierBasic, 0.1},
		{TierPro, 0.2},
		{TierXtreme, 0.3},
		{TierDivine, 0.4},
	}
	for _, tc := range cases {
		q, ok := rules.Quantity(c, tc.tier, AwardLogins, 1)
		if !ok || q != tc.want {
			t.Fatalf("logins at %s: expected %v, got %v (ok=%v)", tc.tier, tc.want, q, ok)
		}
	}
}

func TestAccrualRules_QuantityOverride(t *testing.T) {
	c := mustCatalog(t)
	rules := DefaultAccrualRules()

	q, ok := rules.Quantity(c, TierPro, AwardActivity, 2.5)
	if !ok || q != 1 { // 0.2 * 2 * 2.5
		t.Fatalf("expected 1, got %v (ok=%v)", q, ok)
	}
}

func TestAccrualRules_QuantityUnknownAward(t *testing.T) {
	c := mustCatalog(t)
	rules := DefaultAccrualRules()

	if _, ok := rules.Quantity(c, TierBasic, AwardType("nonsense"), 1); ok {
		t.Fatal("expected unknown award to be rejected")
	}
}

func TestLedgerTotals(t *testing.T) {
	l := &Ledger{
		AboutMe: 15,
		Schools: 15,
		Logins:  3,
		Surfing: 7,
		Bonus:   2,
	}
	if got := l.ConstantTotal(); got != 30 {
		t.Fatalf("constant total: expected 30, got %d", got)
	}
	if got := l.VariableTotal(); got != 10 {
		t.Fatalf("variable total: expected 10, got %d", got)
	}
	if got := l.Total(); got != 42 {
		t.Fatalf("total: expected 42, got %d", got)
	}
	if got := l.Counter(AwardSurfing); got != 7 {
		t.Fatalf("counter: expected 7, got %d", got)
	}
}

// Ten 0.1 entries must sum to exactly 1.0, which float64 addition does
// not guarantee. This is why reconciliation sums on decimals.
func TestPendingSums_ExactDecimalAddition(t *testing.T) {
	var entries []LedgerEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, LedgerEntry{Type: AwardLogins, Quantity: 0.1})
	}
	entries = append(entries, LedgerEntry{Type: AwardLogins, Quantity: 0.1, Accepted: true})

	sums := PendingSums(entries)
	if !sums[AwardLogins].Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected exactly 1, got %s", sums[AwardLogins])
	}
	if sums[AwardLogins].IntPart() != 1 {
		t.Fatalf("expected int part 1, got %d", sums[AwardLogins].IntPart())
	}
}

func TestPendingSums_SkipsAccepted(t *testing.T) {
	entries := []LedgerEntry{
		{Type: AwardSurfing, Quantity: 0.5},
		{Type: AwardSurfing, Quantity: 0.5, Accepted: true},
	}
	sums := PendingSums(entries)
	if !sums[AwardSurfing].Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("expected 0.5, got %s", sums[AwardSurfing])
	}
}

func TestReconcilableAwardsCoverBonus(t *testing.T) {
	found := false
	for _, a := range ReconcilableAwards {
		if a == AwardBonus {
			found = true
		}
	}
	if !found {
		t.Fatal("bonus must be reconcilable")
	}
}
