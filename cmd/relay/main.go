package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/messaging"
	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/outbox"
	"github.com/AchilleasB/parrainage/matching-service/internal/config"
)

func main() {
	cfg := config.LoadRelayConfig()
	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("outbox relay stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("outbox relay shutdown complete")
}

func run(cfg *config.RelayConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.NotificationQueueName)
	if err != nil {
		return err
	}
	defer broker.Close()
	logger.Info("connected to rabbitmq", "queue", cfg.NotificationQueueName)

	relay := outbox.NewRelay(db, cfg.DatabaseURL, broker, logger)

	healthServer := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthRouter(relay, broker),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting health server", "addr", cfg.HealthAddr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := relay.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func healthRouter(relay *outbox.Relay, broker *messaging.RabbitMQBroker) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, relay.IsHealthy())
	})
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, relay.IsHealthy())
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, relay.IsReady() && broker.IsReady())
	})
	return r
}

func writeStatus(w http.ResponseWriter, up bool) {
	status, code := "UP", http.StatusOK
	if !up {
		status, code = "DOWN", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"component": "outbox-relay",
	})
}
