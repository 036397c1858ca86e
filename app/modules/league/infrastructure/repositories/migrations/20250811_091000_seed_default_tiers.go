package leaguemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding default tier catalog...")
		return leaguedb.NewRepository(db).SeedTiers(ctx, db, leaguedomain.DefaultTiers())
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Removing default tier catalog...")
		_, err := db.NewDelete().Model((*leaguedb.TierConfig)(nil)).Where("1 = 1").Exec(ctx)
		return err
	})
}
