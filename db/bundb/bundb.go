// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	gamificationdb "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/infrastructure/repositories"
	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	rankingdb "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/infrastructure/repositories"
	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService bundles the per-module repositories over one connection pool.
type DBService struct {
	SettlementDB   *settlementdb.SettlementDBImpl
	GamificationDB *gamificationdb.GamificationDBImpl
	LeagueDB       *leaguedb.LeagueDBImpl
	RankingDB      *rankingdb.RankingDBImpl

	db *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// NewBunDBService initializes a DBService from the Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel((*settlementdb.Game)(nil))
	db.RegisterModel((*settlementdb.Confirmation)(nil))
	db.RegisterModel((*settlementdb.LiveScore)(nil))
	db.RegisterModel((*gamificationdb.Player)(nil))
	db.RegisterModel((*gamificationdb.PlayerStats)(nil))
	db.RegisterModel((*gamificationdb.Streak)(nil))
	db.RegisterModel((*gamificationdb.XpLedgerEntry)(nil))
	db.RegisterModel((*gamificationdb.Badge)(nil))
	db.RegisterModel((*leaguedb.Season)(nil))
	db.RegisterModel((*leaguedb.SeasonParticipation)(nil))
	db.RegisterModel((*leaguedb.FinalStanding)(nil))
	db.RegisterModel((*rankingdb.RankingDelta)(nil))

	return &DBService{
		SettlementDB:   &settlementdb.SettlementDBImpl{DB: db},
		GamificationDB: &gamificationdb.GamificationDBImpl{DB: db},
		LeagueDB:       &leaguedb.LeagueDBImpl{DB: db},
		RankingDB:      &rankingdb.RankingDBImpl{DB: db},
		db:             db,
	}, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
