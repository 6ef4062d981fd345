package settlementmigrations

import (
	"context"
	"fmt"

	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating settlement tables...")

		if _, err := db.NewCreateTable().Model((*settlementdb.Game)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create games table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*settlementdb.Confirmation)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create game_confirmations table: %w", err)
		}

		if _, err := db.NewCreateTable().Model((*settlementdb.LiveScore)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create live_scores table: %w", err)
		}

		if _, err := db.NewCreateIndex().Model((*settlementdb.Game)(nil)).
			Index("idx_games_season_status").
			Column("season_id", "status").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create games season/status index: %w", err)
		}

		fmt.Println("Settlement tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back settlement tables...")

		for _, model := range []interface{}{
			(*settlementdb.LiveScore)(nil),
			(*settlementdb.Confirmation)(nil),
			(*settlementdb.Game)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop settlement table: %w", err)
			}
		}

		fmt.Println("Settlement tables dropped successfully!")
		return nil
	})
}
