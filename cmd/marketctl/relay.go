package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/freelance_market/internal/mykafka"
	"github.com/Skotchmaster/freelance_market/internal/outbox"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	pkgdb "github.com/Skotchmaster/freelance_market/pkg/db"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

func relayCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish pending order events to Kafka",
		Long: `Publish order events queued in the outbox table to Kafka.

Without --once the relay keeps polling until interrupted.

Examples:
  marketctl relay --once
  KAFKA_BROKERS=localhost:9092 marketctl relay`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, db, err := setup(cmd)
			if err != nil {
				return err
			}
			defer pkgdb.Close(db)

			if len(cfg.KafkaBrokers) == 0 {
				return errors.New("KAFKA_BROKERS is not set")
			}
			producer, err := mykafka.NewProducer(cfg.KafkaBrokers)
			if err != nil {
				return err
			}
			defer producer.Close()

			relay := outbox.NewRelay(repo.New(db), producer, cfg.OutboxBatch, cfg.OutboxInterval)

			if once {
				n, err := relay.Drain(ctx)
				if err != nil {
					return fmt.Errorf("relay: %w", err)
				}
				logging.FromContext(ctx).Info("relay_done", "published", n)
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			relay.Run(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "drain the outbox once and exit")
	return cmd
}
