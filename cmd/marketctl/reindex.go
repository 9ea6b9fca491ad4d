package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/search"
	"github.com/Skotchmaster/freelance_market/internal/service"
	pkgdb "github.com/Skotchmaster/freelance_market/pkg/db"
	"github.com/Skotchmaster/freelance_market/pkg/es"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

func reindexCmd() *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push every catalog item into the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, db, err := setup(cmd)
			if err != nil {
				return err
			}
			defer pkgdb.Close(db)

			if cfg.ESURL == "" {
				return errors.New("ES_URL is not set")
			}
			client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
			if err != nil {
				return err
			}
			idx := search.NewItemIndex(client, cfg.ItemsIndex)
			if err := idx.EnsureIndex(ctx); err != nil {
				return err
			}

			svc := &service.ItemService{Repo: repo.New(db), Index: idx}
			n, err := svc.Reindex(ctx, batch)
			if err != nil {
				return fmt.Errorf("reindex after %d items: %w", n, err)
			}
			logging.FromContext(ctx).Info("reindex_done", "items", n, "index", cfg.ItemsIndex)
			return nil
		},
	}

	cmd.Flags().IntVarP(&batch, "batch", "b", 500, "items per bulk request")
	return cmd
}
