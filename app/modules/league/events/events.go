package leagueevents

import "time"

// Topics the league module publishes on or subscribes to. Activity modules
// (steps, tasks, duels, missions) publish PointsEarned; the league engine
// consumes it and credits the user's open membership. EpochFinalized is
// published once per completed finalize run for downstream consumers such
// as the notification service.
const (
	ActivityPointsEarned = "activity.points.earned"
	MemberJoined         = "league.member.joined"
	EpochFinalized       = "league.epoch.finalized"
)

// PointsEarnedPayload credits points to a user's membership in the given
// epoch. Delta must be positive; the engine drops credits for users with no
// membership rather than failing the publisher.
type PointsEarnedPayload struct {
	UserID   string `json:"user_id"`
	EpochKey string `json:"epoch_key"`
	Delta    int64  `json:"delta"`
	Source   string `json:"source,omitempty"` // e.g. "steps", "duel", "mission"
}

// MemberJoinedPayload announces a successful room placement.
type MemberJoinedPayload struct {
	UserID   string    `json:"user_id"`
	EpochKey string    `json:"epoch_key"`
	RoomID   string    `json:"room_id"`
	TierName string    `json:"tier_name"`
	JoinedAt time.Time `json:"joined_at"`
}

// EpochFinalizedPayload carries the aggregate counters of one finalize run.
type EpochFinalizedPayload struct {
	EpochKey       string    `json:"epoch_key"`
	RoomsProcessed int       `json:"rooms_processed"`
	Promoted       int       `json:"promoted"`
	Demoted        int       `json:"demoted"`
	Stayed         int       `json:"stayed"`
	FinalizedAt    time.Time `json:"finalized_at"`
}
