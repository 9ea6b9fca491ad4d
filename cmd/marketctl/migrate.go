package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/freelance_market/internal/repo"
	pkgdb "github.com/Skotchmaster/freelance_market/pkg/db"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table the service uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, db, err := setup(cmd)
			if err != nil {
				return err
			}
			defer pkgdb.Close(db)

			if err := repo.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logging.FromContext(ctx).Info("migrate_done")
			return nil
		},
	}
}
