// cmd/assetnexus/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetnexus/internal/chaos"
	"assetnexus/internal/circulation"
	"assetnexus/internal/config"
	"assetnexus/internal/events"
	"assetnexus/internal/inventory"
	"assetnexus/internal/notifications"
	"assetnexus/internal/notifications/natsbus"
	"assetnexus/internal/notifications/webhook"
	"assetnexus/internal/server"
	"assetnexus/internal/settings"
	"assetnexus/internal/telemetry"
	"assetnexus/pkg/eventstore"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-token" {
		if err := hashToken(os.Stdin, os.Stdout); err != nil {
			slog.Error("failed to hash token", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.ServiceName, cfg.OTel)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	shutdownMetrics, err := telemetry.SetupMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer shutdownMetrics(context.Background())

	var (
		store   settings.Store
		journal circulation.Journal
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := settings.NewRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		es := eventstore.New(db)
		if err := es.EnsureSchema(ctx); err != nil {
			return err
		}
		store, journal = repo, es
	} else {
		logger.Warn("DATABASE_URL not set, channel settings and movements are kept in memory")
	}

	gate := settings.NewGate(cfg.EnabledChannels...)
	settingsSvc := settings.NewService(gate, store, logger)
	if err := settingsSvc.Restore(ctx); err != nil {
		return err
	}

	var channels []notifications.Channel
	if cfg.Webhook.URL != "" {
		sender, err := webhook.New(webhook.Config{
			Name:          settings.ChannelWebhook,
			URL:           cfg.Webhook.URL,
			Username:      cfg.Webhook.Username,
			Channel:       cfg.Webhook.Channel,
			IconEmoji:     cfg.Webhook.IconEmoji,
			SigningKey:    cfg.Webhook.SigningKey,
			RatePerSecond: cfg.Webhook.Rate,
			Burst:         cfg.Webhook.Burst,
			MaxTries:      cfg.Webhook.MaxTries,
			Timeout:       cfg.Webhook.Timeout,
			MaxRetryAfter: cfg.Webhook.MaxRetryAfter,
			MaxElapsed:    cfg.Webhook.MaxElapsed,
		}, logger)
		if err != nil {
			return err
		}
		channels = append(channels, sender)
	}
	if cfg.NATS.URL != "" {
		nc, err := natsbus.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		channels = append(channels, natsbus.NewSender(settings.ChannelNATS, cfg.NATS.SubjectPrefix, nc, logger))
	}

	if exp := (chaos.Experiment{
		BlastRadius: cfg.Chaos.BlastRadius,
		Latency:     cfg.Chaos.Latency,
		Fail:        cfg.Chaos.Fail,
	}); exp.Active() {
		logger.Warn("chaos experiment active on notification channels", "blast_radius", exp.BlastRadius)
		for i, ch := range channels {
			channels[i] = chaos.Wrap(ch, exp, logger)
		}
	}

	bus := events.NewBus(logger)
	notifications.NewRouter(gate, logger, channels...).Subscribe(bus)

	catalog := inventory.NewMemoryCatalog()
	handler := server.NewRouter(server.Deps{
		Logger:      logger,
		Catalog:     catalog,
		Circulation: circulation.NewService(catalog, journal, bus, logger),
		Settings:    settingsSvc,
		TokenHash:   cfg.Admin.TokenHash,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "addr", cfg.HTTPAddr, "channels", len(channels))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
