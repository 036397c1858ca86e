package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating league tables...")

		if _, err := db.NewCreateTable().Model((*leaguedb.TierConfig)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*leaguedb.Room)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*leaguedb.RoomMember)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*leaguedb.WeeklyOutcome)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// One membership per (epoch, user) globally: the allocator's
		// idempotency and the duplicate-join rejection both rest on this.
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_room_members_epoch_user ON league_room_members (epoch_key, user_id)").Exec(ctx); err != nil {
			return err
		}
		// One outcome per (user, epoch): the ledger's insert-or-ignore key.
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_weekly_outcomes_user_epoch ON league_weekly_outcomes (user_id, epoch_key)").Exec(ctx); err != nil {
			return err
		}
		// Allocator scan: open rooms with spare capacity per (tier, epoch).
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rooms_tier_epoch_open ON league_rooms (tier_name, epoch_key) WHERE is_processed = false").Exec(ctx); err != nil {
			return err
		}
		// Finalize scan: unprocessed rooms of a closed epoch.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rooms_epoch_unprocessed ON league_rooms (epoch_key) WHERE is_processed = false").Exec(ctx); err != nil {
			return err
		}
		// Leaderboard read: a room's members in ranking order.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_room_members_room_points ON league_room_members (room_id, points DESC, joined_at ASC)").Exec(ctx); err != nil {
			return err
		}
		// History read, newest first.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_weekly_outcomes_user ON league_weekly_outcomes (user_id, epoch_key DESC)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("League tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping league tables...")

		if _, err := db.NewDropTable().Model((*leaguedb.WeeklyOutcome)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*leaguedb.RoomMember)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*leaguedb.Room)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*leaguedb.TierConfig)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("League tables dropped successfully!")
		return nil
	})
}
