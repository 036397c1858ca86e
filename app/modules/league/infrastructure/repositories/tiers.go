package leaguedb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// ListTiers loads the persisted tier catalog in ladder order.
func (r *Impl) ListTiers(ctx context.Context, db bun.IDB) ([]TierConfig, error) {
	if db == nil {
		db = r.db
	}
	var tiers []TierConfig
	err := db.NewSelect().
		Model(&tiers).
		Order("tier_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListTiers: %w", err)
	}
	return tiers, nil
}

// SeedTiers inserts catalog rows that do not exist yet. Existing rows are
// left untouched; the catalog is edited via migrations, not at runtime.
func (r *Impl) SeedTiers(ctx context.Context, db bun.IDB, tiers []leaguedomain.Tier) error {
	if len(tiers) == 0 {
		return nil
	}
	if db == nil {
		db = r.db
	}
	rows := make([]TierConfig, len(tiers))
	for i, t := range tiers {
		rows[i] = TierConfig{
			Name:           string(t.Name),
			TierOrder:      t.Order,
			PromotePercent: t.PromotePercent,
			DemotePercent:  t.DemotePercent,
			MinRoomSize:    t.MinRoomSize,
			MaxRoomSize:    t.MaxRoomSize,
		}
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.SeedTiers: %w", err)
	}
	return nil
}

// LoadCatalog reads the persisted tiers into a validated domain catalog.
func (r *Impl) LoadCatalog(ctx context.Context, db bun.IDB) (*leaguedomain.Catalog, error) {
	rows, err := r.ListTiers(ctx, db)
	if err != nil {
		return nil, err
	}
	tiers := make([]leaguedomain.Tier, len(rows))
	for i, row := range rows {
		tiers[i] = row.ToDomain()
	}
	catalog, err := leaguedomain.NewCatalog(tiers)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.LoadCatalog: %w", err)
	}
	return catalog, nil
}
