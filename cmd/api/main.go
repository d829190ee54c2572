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

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/cache"
	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/handler"
	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/outbox"
	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/repository"
	"github.com/AchilleasB/parrainage/matching-service/internal/config"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/services"
	"github.com/AchilleasB/parrainage/matching-service/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("matching service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("database migrations applied")

	store := repository.NewSQLRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// revocation checks fail closed through the breaker until Redis is back
		logger.Warn("redis unreachable at startup", "addr", cfg.RedisAddress, "error", err)
	} else {
		logger.Info("connected to redis", "addr", cfg.RedisAddress)
	}
	tokenStore := cache.NewTokenStore(redisClient)

	m := metrics.New(prometheus.DefaultRegisterer)
	opts := []services.Option{
		services.WithLogger(logger),
		services.WithMetrics(m),
		services.WithNotifyTimeout(cfg.NotifyTimeout),
	}

	registrationService := services.NewRegistrationService(store, opts...)
	searchService := services.NewSearchService(store, store, store, opts...)
	sponsorshipService := services.NewSponsorshipService(store, store, outbox.NewNotifier(db), opts...)
	sessionService := services.NewSessionService(tokenStore, opts...)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:         middleware.NewAuthMiddleware(cfg.JWTPublicKey, sessionService, logger),
		Registration: handler.NewRegistrationHandler(registrationService, logger),
		Search:       handler.NewSearchHandler(searchService, logger),
		Sponsorships: handler.NewSponsorshipHandler(sponsorshipService, logger),
		Session:      handler.NewAuthHandler(sessionService, logger),
		Health: handler.NewHealthHandler(db, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}, logger),
		Metrics:        promhttp.Handler(),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
