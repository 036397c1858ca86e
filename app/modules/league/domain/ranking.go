package leaguedomain

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// MemberScore is the immutable per-member input to finalization.
type MemberScore struct {
	UserID   UserID
	Points   Points
	JoinedAt time.Time
}

// RankedOutcome is one member's computed weekly result.
type RankedOutcome struct {
	UserID UserID
	Points Points
	Rank   int // 1 is best
	Result Result
}

// RankMembers assigns ranks 1..N by points descending. Ties break on the
// earlier joiner, then on user ID so the order is a total one and re-running
// finalization on the same inputs always reproduces it.
func RankMembers(members []MemberScore) []RankedOutcome {
	sorted := make([]MemberScore, len(members))
	copy(sorted, members)

	slices.SortFunc(sorted, func(a, b MemberScore) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})

	ranked := make([]RankedOutcome, len(sorted))
	for i, m := range sorted {
		ranked[i] = RankedOutcome{
			UserID: m.UserID,
			Points: m.Points,
			Rank:   i + 1,
			Result: ResultStayed,
		}
	}
	return ranked
}

// PartitionCounts computes how many of n members promote and demote under
// the tier's percentages. Both use ceil so a nonzero percentage never rounds
// to zero movement in a small room. When the two bands would overlap, the
// demote count gives way first. The top tier never promotes and the bottom
// tier never demotes regardless of configuration.
func PartitionCounts(n int, tier Tier, catalog *Catalog) (promote, demote int) {
	if n <= 0 {
		return 0, 0
	}

	promote = int(math.Ceil(float64(n) * float64(tier.PromotePercent) / 100))
	demote = int(math.Ceil(float64(n) * float64(tier.DemotePercent) / 100))

	if tier.Order == catalog.Highest().Order {
		promote = 0
	}
	if tier.Order == catalog.Lowest().Order {
		demote = 0
	}

	if promote > n {
		promote = n
	}
	if promote+demote > n {
		demote = n - promote
	}
	return promote, demote
}

// ComputeOutcomes ranks a room's members and stamps each with its
// promotion/demotion/stay result for the given tier.
func ComputeOutcomes(members []MemberScore, tier Tier, catalog *Catalog) []RankedOutcome {
	ranked := RankMembers(members)
	promote, demote := PartitionCounts(len(ranked), tier, catalog)

	for i := range ranked {
		switch {
		case ranked[i].Rank <= promote:
			ranked[i].Result = ResultPromoted
		case ranked[i].Rank > len(ranked)-demote:
			ranked[i].Result = ResultDemoted
		default:
			ranked[i].Result = ResultStayed
		}
	}
	return ranked
}
