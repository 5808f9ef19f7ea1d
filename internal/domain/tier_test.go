package domain

import (
	"strings"
	"testing"
)

func mustCatalog(t *testing.T) *TierCatalog {
	t.Helper()
	c, err := NewTierCatalog(DefaultTierSpecs())
	if err != nil {
		t.Fatalf("default specs rejected: %v", err)
	}
	return c
}

func TestNewTierCatalog_DefaultSpecs(t *testing.T) {
	c := mustCatalog(t)

	tiers := c.Tiers()
	want := []Tier{TierBasic, TierPro, TierXtreme, TierDivine}
	if len(tiers) != len(want) {
		t.Fatalf("expected %d tiers, got %d", len(want), len(tiers))
	}
	for i, tier := range want {
		if tiers[i] != tier {
			t.Fatalf("expected tier %s at rank %d, got %s", tier, i, tiers[i])
		}
		if c.Rank(tier) != i {
			t.Fatalf("expected rank %d for %s, got %d", i, tier, c.Rank(tier))
		}
	}

	if got := c.MultiplierFor(TierDivine); got != 4 {
		t.Fatalf("expected Divine multiplier 4, got %d", got)
	}
	if got := c.LimitsFor(TierXtreme).MaxFriends; got != 130 {
		t.Fatalf("expected Xtreme friend quota 130, got %d", got)
	}
}

func TestNewTierCatalog_RejectsEmpty(t *testing.T) {
	if _, err := NewTierCatalog(nil); err == nil {
		t.Fatal("expected empty table to be rejected")
	}
}

func TestNewTierCatalog_RejectsDuplicateRank(t *testing.T) {
	specs := DefaultTierSpecs()
	spec := specs[TierPro]
	spec.Power = 0
	specs[TierPro] = spec

	if _, err := NewTierCatalog(specs); err == nil {
		t.Fatal("expected duplicate power to be rejected")
	}
}

func TestNewTierCatalog_RejectsSparseRanks(t *testing.T) {
	specs := DefaultTierSpecs()
	spec := specs[TierDivine]
	spec.Power = 9
	specs[TierDivine] = spec

	if _, err := NewTierCatalog(specs); err == nil {
		t.Fatal("expected sparse ranks to be rejected")
	}
}

func TestNewTierCatalog_RejectsShrinkingQuota(t *testing.T) {
	specs := DefaultTierSpecs()
	spec := specs[TierXtreme]
	spec.Quotas.MaxFriends = 10 // below Pro's 80
	specs[TierXtreme] = spec

	_, err := NewTierCatalog(specs)
	if err == nil {
		t.Fatal("expected shrinking friend quota to be rejected")
	}
	if !strings.Contains(err.Error(), "friends") {
		t.Fatalf("expected the offending quota in the error, got %v", err)
	}
}

func TestNewTierCatalog_RejectsShrinkingMultiplier(t *testing.T) {
	specs := DefaultTierSpecs()
	spec := specs[TierDivine]
	spec.Multiplier = 1
	specs[TierDivine] = spec

	if _, err := NewTierCatalog(specs); err == nil {
		t.Fatal("expected shrinking multiplier to be rejected")
	}
}

func TestTierCatalog_Known(t *testing.T) {
	c := mustCatalog(t)
	if !c.Known(TierBasic) {
		t.Fatal("expected Basic to be known")
	}
	if c.Known(Tier("Z")) {
		t.Fatal("expected Z to be unknown")
	}
}

func TestTierCatalog_PanicsOnUnknown(t *testing.T) {
	c := mustCatalog(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown tier")
		}
	}()
	c.Rank(Tier("Z"))
}

func TestTierString(t *testing.T) {
	if TierDivine.String() != "Divine" {
		t.Fatalf("got %s", TierDivine.String())
	}
	if Tier("Z").String() != "Z" {
		t.Fatalf("got %s", Tier("Z").String())
	}
}
