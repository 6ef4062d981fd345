package rankingmigrations

import (
	"context"
	"fmt"

	rankingdb "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ranking_deltas table...")

		if _, err := db.NewCreateTable().Model((*rankingdb.RankingDelta)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create ranking_deltas table: %w", err)
		}

		if _, err := db.NewCreateIndex().Model((*rankingdb.RankingDelta)(nil)).
			Index("idx_ranking_deltas_window_xp").
			Column("period", "period_key", "xp").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create ranking window index: %w", err)
		}

		fmt.Println("ranking_deltas table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back ranking_deltas table...")

		if _, err := db.NewDropTable().Model((*rankingdb.RankingDelta)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop ranking_deltas table: %w", err)
		}

		fmt.Println("ranking_deltas table dropped successfully!")
		return nil
	})
}
