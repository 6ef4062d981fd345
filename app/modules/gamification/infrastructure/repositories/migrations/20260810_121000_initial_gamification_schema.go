package gamificationmigrations

import (
	"context"
	"fmt"

	gamificationdb "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating gamification tables...")

		for _, model := range []interface{}{
			(*gamificationdb.Player)(nil),
			(*gamificationdb.PlayerStats)(nil),
			(*gamificationdb.Streak)(nil),
			(*gamificationdb.XpLedgerEntry)(nil),
			(*gamificationdb.Badge)(nil),
		} {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create gamification table: %w", err)
			}
		}

		if _, err := db.NewCreateIndex().Model((*gamificationdb.XpLedgerEntry)(nil)).
			Index("idx_xp_ledger_user").
			Column("user_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create xp_ledger user index: %w", err)
		}

		if _, err := db.NewCreateIndex().Model((*gamificationdb.Badge)(nil)).
			Index("idx_player_badges_user").
			Column("user_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create player_badges user index: %w", err)
		}

		fmt.Println("Gamification tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back gamification tables...")

		for _, model := range []interface{}{
			(*gamificationdb.Badge)(nil),
			(*gamificationdb.XpLedgerEntry)(nil),
			(*gamificationdb.Streak)(nil),
			(*gamificationdb.PlayerStats)(nil),
			(*gamificationdb.Player)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop gamification table: %w", err)
			}
		}

		fmt.Println("Gamification tables dropped successfully!")
		return nil
	})
}
