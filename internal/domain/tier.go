package domain

import (
	"errors"
	"fmt"
)

// Tier - membership level, single letter code as stored in the DB
type Tier string

const (
	TierBasic  Tier = "B"
	TierPro    Tier = "P"
	TierXtreme Tier = "X"
	TierDivine Tier = "D"
)

var ErrUnknownTier = errors.New("unknown tier")

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "Basic"
	case TierPro:
		return "Pro"
	case TierXtreme:
		return "Xtreme"
	case TierDivine:
		return "Divine"
	}
	return string(t)
}

// QuotaSet - per-tier upper bounds on member resources
type QuotaSet struct {
	MaxFriends               int   `json:"max_friends"`
	MaxBestFriends           int   `json:"max_best_friends"`
	MaxOwnVisitorsShown      int   `json:"max_own_visitors_shown"`
	MaxStrangerVisitorsShown int   `json:"max_stranger_visitors_shown"`
	MaxGalleryCount          int   `json:"max_gallery_count"`
	MaxStoredPictureBytes    int64 `json:"max_stored_picture_bytes"`
}

// TierSpec - one row of the catalog: rank ("power", 0 = lowest),
// quotas and the points multiplier applied to variable awards.
type TierSpec struct {
	Power      int      `json:"power"`
	Quotas     QuotaSet `json:"quotas"`
	Multiplier int      `json:"multiplier"`
}

// TierCatalog is an immutable lookup table validated at construction.
// Quotas must be monotonically non-decreasing in power; the downgrade
// reconciler relies on that.
type TierCatalog struct {
	specs map[Tier]TierSpec
}

// NewTierCatalog validates the given table and fails hard on any
// inconsistency, before any request-time logic can observe it.
func NewTierCatalog(specs map[Tier]TierSpec) (*TierCatalog, error) {
	if len(specs) == 0 {
		return nil, errors.New("tier catalog: empty table")
	}

	// ranks must be unique and dense starting from 0
	byPower := make(map[int]Tier, len(specs))
	for tier, spec := range specs {
		if prev, ok := byPower[spec.Power]; ok {
			return nil, fmt.Errorf("tier catalog: tiers %s and %s share power %d", prev, tier, spec.Power)
		}
		byPower[spec.Power] = tier
	}
	for p := 0; p < len(specs); p++ {
		if _, ok := byPower[p]; !ok {
			return nil, fmt.Errorf("tier catalog: missing power rank %d", p)
		}
	}

	for p := 1; p < len(specs); p++ {
		lo, hi := specs[byPower[p-1]], specs[byPower[p]]
		if err := checkMonotonic(byPower[p-1], byPower[p], lo.Quotas, hi.Quotas); err != nil {
			return nil, err
		}
		if hi.Multiplier < lo.Multiplier {
			return nil, fmt.Errorf("tier catalog: multiplier shrinks from %s to %s", byPower[p-1], byPower[p])
		}
	}

	cloned := make(map[Tier]TierSpec, len(specs))
	for k, v := range specs {
		cloned[k] = v
	}
	return &TierCatalog{specs: cloned}, nil
}

func checkMonotonic(lower, higher Tier, lo, hi QuotaSet) error {
	type pair struct {
		name string
		lo   int64
		hi   int64
	}
	pairs := []pair{
		{"friends", int64(lo.MaxFriends), int64(hi.MaxFriends)},
		{"best_friends", int64(lo.MaxBestFriends), int64(hi.MaxBestFriends)},
		{"own_visitors", int64(lo.MaxOwnVisitorsShown), int64(hi.MaxOwnVisitorsShown)},
		{"stranger_visitors", int64(lo.MaxStrangerVisitorsShown), int64(hi.MaxStrangerVisitorsShown)},
		{"galleries", int64(lo.MaxGalleryCount), int64(hi.MaxGalleryCount)},
		{"picture_bytes", lo.MaxStoredPictureBytes, hi.MaxStoredPictureBytes},
	}
	for _, p := range pairs {
		if p.hi < p.lo {
			return fmt.Errorf("tier catalog: %s quota shrinks from %s (%d) to %s (%d)",
				p.name, lower, p.lo, higher, p.hi)
		}
	}
	return nil
}

// Known reports whether the tier exists in the catalog.
func (c *TierCatalog) Known(t Tier) bool {
	_, ok := c.specs[t]
	return ok
}

// Rank returns the power rank of a tier. Unknown tiers are a
// programmer error, hence the panic.
func (c *TierCatalog) Rank(t Tier) int {
	spec, ok := c.specs[t]
	if !ok {
		panic(fmt.Sprintf("tier catalog: rank of unknown tier %q", t))
	}
	return spec.Power
}

// LimitsFor returns the quota set of a tier.
func (c *TierCatalog) LimitsFor(t Tier) QuotaSet {
	spec, ok := c.specs[t]
	if !ok {
		panic(fmt.Sprintf("tier catalog: limits of unknown tier %q", t))
	}
	return spec.Quotas
}

// MultiplierFor returns the points multiplier of a tier. Used only by
// the accrual engine, never by quota checks.
func (c *TierCatalog) MultiplierFor(t Tier) int {
	spec, ok := c.specs[t]
	if !ok {
		panic(fmt.Sprintf("tier catalog: multiplier of unknown tier %q", t))
	}
	return spec.Multiplier
}

// Tiers returns all known tiers ordered by power, lowest first.
func (c *TierCatalog) Tiers() []Tier {
	out := make([]Tier, len(c.specs))
	for t, spec := range c.specs {
		out[spec.Power] = t
	}
	return out
}

const mib = 1024 * 1024

// DefaultTierSpecs is the production catalog table. Injected through
// NewTierCatalog so tests can substitute their own.
func DefaultTierSpecs() map[Tier]TierSpec {
	return map[Tier]TierSpec{
		TierBasic: {
			Power:      0,
			Multiplier: 1,
			Quotas: QuotaSet{
				MaxFriends:               60,
				MaxBestFriends:           0,
				MaxOwnVisitorsShown:      5,
				MaxStrangerVisitorsShown: 3,
				MaxGalleryCount:          1,
				MaxStoredPictureBytes:    5 * mib,
			},
		},
		TierPro: {
			Power:      1,
			Multiplier: 2,
			Quotas: QuotaSet{
				MaxFriends:               80,
				MaxBestFriends:           5,
				MaxOwnVisitorsShown:      10,
				MaxStrangerVisitorsShown: 5,
				MaxGalleryCount:          10,
				MaxStoredPictureBytes:    10 * mib,
			},
		},
		TierXtreme: {
			Power:      2,
			Multiplier: 3,
			Quotas: QuotaSet{
				MaxFriends:               130,
				MaxBestFriends:           10,
				MaxOwnVisitorsShown:      15,
				MaxStrangerVisitorsShown: 8,
				MaxGalleryCount:          15,
				MaxStoredPictureBytes:    15 * mib,
			},
		},
		TierDivine: {
			Power:      3,
			Multiplier: 4,
			Quotas: QuotaSet{
				MaxFriends:               200,
				MaxBestFriends:           20,
				MaxOwnVisitorsShown:      20,
				MaxStrangerVisitorsShown: 10,
				MaxGalleryCount:          500,
				MaxStoredPictureBytes:    1000 * mib,
			},
		},
	}
}
