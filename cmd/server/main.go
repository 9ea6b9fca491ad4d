package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/freelance_market/internal/config"
	"github.com/Skotchmaster/freelance_market/internal/httpserver"
	"github.com/Skotchmaster/freelance_market/internal/mykafka"
	"github.com/Skotchmaster/freelance_market/internal/notify"
	"github.com/Skotchmaster/freelance_market/internal/outbox"
	"github.com/Skotchmaster/freelance_market/internal/payment"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/search"
	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/pkg/authclient"
	pkgdb "github.com/Skotchmaster/freelance_market/pkg/db"
	"github.com/Skotchmaster/freelance_market/pkg/es"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
	middleware "github.com/Skotchmaster/freelance_market/pkg/middleware/auth"
	"github.com/Skotchmaster/freelance_market/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/freelance_market/pkg/middleware/logging"
)

func main() {
	config.LoadEnvFile()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	gw, err := payment.New(payment.Config{
		Provider:  cfg.PaymentProvider,
		KeyID:     cfg.PaymentKeyID,
		KeySecret: cfg.PaymentKeySecret,
		BaseURL:   cfg.PaymentAPIURL,
		Timeout:   cfg.PaymentTimeout,
	})
	if err != nil {
		log.Fatalf("payment gateway: %v", err)
	}
	if cfg.PaymentWebhookSecret == "" {
		logger.Warn("webhook_secret_missing", "effect", "all payment webhooks will be rejected")
	}

	r := repo.New(db)
	emitter := notify.NewEmitter(r, cfg.NotifyTimeout)

	items := &service.ItemService{Repo: r, DefaultCurrency: cfg.PaymentCurrency}
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			logger.Warn("search_index_disabled", "error", err)
		} else {
			idx := search.NewItemIndex(esClient, cfg.ItemsIndex)
			if err := idx.EnsureIndex(ctx); err != nil {
				logger.Warn("search_index_disabled", "error", err)
			} else {
				items.Index = idx
			}
		}
	}

	relayCtx, stopRelay := context.WithCancel(ctx)
	relayDone := make(chan struct{})
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		relay := outbox.NewRelay(r, producer, cfg.OutboxBatch, cfg.OutboxInterval)
		go func() {
			defer close(relayDone)
			relay.Run(relayCtx)
		}()
	} else {
		close(relayDone)
		logger.Info("outbox_relay_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var refresher middleware.Refresher
	if cfg.AuthHTTPURL != "" {
		refresher = authclient.NewClient(cfg.AuthHTTPURL)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.Secure())
	e.Use(csrf.Middleware(csrf.Config{
		Secure:    strings.HasPrefix(cfg.BaseURL, "https://"),
		SkipPaths: []string{"/webhooks/payment-provider"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		DB: db,
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:           r,
			Gateway:        gw,
			Notifier:       emitter,
			Topic:          cfg.OrderEventsTopic,
			PaymentTimeout: cfg.PaymentTimeout,
		}},
		WebhookHandler: &httpserver.WebhookHTTP{Svc: &service.WebhookService{
			Repo:     r,
			Gateway:  gw,
			Notifier: emitter,
			Secret:   cfg.PaymentWebhookSecret,
			Topic:    cfg.OrderEventsTopic,
		}},
		ItemHandler:         &httpserver.ItemHTTP{Svc: items},
		NotificationHandler: &httpserver.NotificationHTTP{Svc: &service.NotificationService{Repo: r}},
		AdminHandler:        &httpserver.AdminHTTP{Svc: &service.AdminService{Repo: r}},
		JWTSecret:           cfg.JWTAccessSecret,
		AuthClient:          refresher,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "provider", gw.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}

	stopRelay()
	<-relayDone
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_failed", "error", err)
		}
	}

	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db_close_failed", "error", err)
	}
	logger.Info("server_stopped")
}
