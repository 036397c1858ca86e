package leaguedomain

import (
	"fmt"
	"sort"
)

// Tier is one rung of the competitive ladder. Percentages are whole
// percents (30 = 30%). Room-size bounds govern the allocator; they are
// snapshotted onto each room at creation so later catalog edits never
// affect an already-open room.
type Tier struct {
	Name           TierName
	Order          int // 1..N, strictly increasing, 1 is the lowest
	PromotePercent int
	DemotePercent  int
	MinRoomSize    int
	MaxRoomSize    int
}

// Catalog is the process-wide, read-mostly tier list. It is an injected
// value so tests can supply synthetic catalogs.
type Catalog struct {
	tiers   []Tier
	byName  map[TierName]Tier
	byOrder map[int]Tier
}

// NewCatalog validates and indexes a tier list. Orders must be the
// contiguous range 1..N; the lowest tier must not demote and the highest
// must not promote, since there is nothing beyond either end.
func NewCatalog(tiers []Tier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier catalog is empty")
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	byName := make(map[TierName]Tier, len(sorted))
	byOrder := make(map[int]Tier, len(sorted))
	for i, t := range sorted {
		if t.Order != i+1 {
			return nil, fmt.Errorf("tier %q: order %d breaks the contiguous 1..N sequence", t.Name, t.Order)
		}
		if t.MinRoomSize <= 0 || t.MaxRoomSize <= 0 || t.MinRoomSize > t.MaxRoomSize {
			return nil, fmt.Errorf("tier %q: invalid room size bounds [%d, %d]", t.Name, t.MinRoomSize, t.MaxRoomSize)
		}
		if t.PromotePercent < 0 || t.PromotePercent > 100 || t.DemotePercent < 0 || t.DemotePercent > 100 {
			return nil, fmt.Errorf("tier %q: percentages out of range", t.Name)
		}
		if _, dup := byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tier name %q", t.Name)
		}
		byName[t.Name] = t
		byOrder[t.Order] = t
	}

	if sorted[0].DemotePercent != 0 {
		return nil, fmt.Errorf("lowest tier %q must have demote percentage 0", sorted[0].Name)
	}
	if sorted[len(sorted)-1].PromotePercent != 0 {
		return nil, fmt.Errorf("highest tier %q must have promote percentage 0", sorted[len(sorted)-1].Name)
	}

	return &Catalog{tiers: sorted, byName: byName, byOrder: byOrder}, nil
}

// Tiers returns the catalog in ascending order.
func (c *Catalog) Tiers() []Tier {
	out := make([]Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// ByName looks a tier up by name.
func (c *Catalog) ByName(name TierName) (Tier, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// ByOrder looks a tier up by its ladder position.
func (c *Catalog) ByOrder(order int) (Tier, bool) {
	t, ok := c.byOrder[order]
	return t, ok
}

// Lowest returns the bottom tier.
func (c *Catalog) Lowest() Tier {
	return c.tiers[0]
}

// Highest returns the top tier.
func (c *Catalog) Highest() Tier {
	return c.tiers[len(c.tiers)-1]
}

// Shift returns the tier `steps` rungs away from t, clamped to the
// catalog bounds. steps of +1/-1 implement promotion/demotion.
func (c *Catalog) Shift(t Tier, steps int) Tier {
	order := t.Order + steps
	if order < 1 {
		order = 1
	}
	if order > len(c.tiers) {
		order = len(c.tiers)
	}
	return c.tiers[order-1]
}

// DefaultTiers is the shipped ladder. Isinma is the warm-up tier every new
// user starts in.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Isinma", Order: 1, PromotePercent: 30, DemotePercent: 0, MinRoomSize: 5, MaxRoomSize: 20},
		{Name: "Bronze", Order: 2, PromotePercent: 25, DemotePercent: 15, MinRoomSize: 10, MaxRoomSize: 25},
		{Name: "Silver", Order: 3, PromotePercent: 20, DemotePercent: 15, MinRoomSize: 10, MaxRoomSize: 25},
		{Name: "Gold", Order: 4, PromotePercent: 15, DemotePercent: 20, MinRoomSize: 10, MaxRoomSize: 30},
		{Name: "Platinum", Order: 5, PromotePercent: 10, DemotePercent: 25, MinRoomSize: 10, MaxRoomSize: 30},
		{Name: "Elite", Order: 6, PromotePercent: 0, DemotePercent: 30, MinRoomSize: 10, MaxRoomSize: 30},
	}
}
