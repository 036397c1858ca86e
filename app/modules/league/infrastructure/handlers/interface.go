package leaguehandlers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Handlers processes the league module's inbound events.
type Handlers interface {
	// HandlePointsEarned credits activity points to the user's open
	// membership for the epoch named in the payload.
	HandlePointsEarned(ctx context.Context, msg *message.Message) error
}
