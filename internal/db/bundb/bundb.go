package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

// DBService bundles the per-module repositories over one shared pool.
type DBService struct {
	League leaguedb.Repository
	User   userdb.Repository

	db *bun.DB
}

// GetDB returns the underlying connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// NewDBService opens the Postgres pool and wires the repositories.
func NewDBService(ctx context.Context, dsn string) (*DBService, error) {
	sqldb, err := pgConn(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel(
		(*leaguedb.Room)(nil),
		(*leaguedb.RoomMember)(nil),
		(*leaguedb.WeeklyOutcome)(nil),
		(*leaguedb.TierConfig)(nil),
		(*userdb.User)(nil),
	)

	return &DBService{
		League: leaguedb.NewRepository(db),
		User:   userdb.NewRepository(db),
		db:     db,
	}, nil
}

// Close releases the pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}
