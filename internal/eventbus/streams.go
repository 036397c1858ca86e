package eventbus

import (
	"context"

	leagueevents "github.com/stridelabs/stride-backend/app/modules/league/events"
)

// InitializeStreams creates the JetStream streams the backend consumes
// from, once at startup. Activity producers publish into "activity";
// league announcements land in "league".
func InitializeStreams(ctx context.Context, bus EventBus) error {
	if err := bus.CreateStream(ctx, "activity", leagueevents.ActivityPointsEarned); err != nil {
		return err
	}
	return bus.CreateStream(ctx, "league",
		leagueevents.MemberJoined,
		leagueevents.EpochFinalized,
	)
}
