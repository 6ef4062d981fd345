package leaguemigrations

import (
	"context"
	"fmt"

	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating league tables...")

		for _, model := range []interface{}{
			(*leaguedb.Season)(nil),
			(*leaguedb.SeasonParticipation)(nil),
			(*leaguedb.FinalStanding)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create league table: %w", err)
			}
		}

		if _, err := db.NewCreateIndex().Model((*leaguedb.SeasonParticipation)(nil)).
			Index("idx_season_participation_user_updated").
			Column("user_id", "updated_at").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create participation user index: %w", err)
		}

		fmt.Println("League tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back league tables...")

		for _, model := range []interface{}{
			(*leaguedb.FinalStanding)(nil),
			(*leaguedb.SeasonParticipation)(nil),
			(*leaguedb.Season)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop league table: %w", err)
			}
		}

		fmt.Println("League tables dropped successfully!")
		return nil
	})
}
