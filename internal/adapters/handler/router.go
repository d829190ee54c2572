package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

const requestTimeout = 30 * time.Second

type RouterConfig struct {
	Auth           *middleware.AuthMiddleware
	Registration   *RegistrationHandler
	Search         *SearchHandler
	Sponsorships   *SponsorshipHandler
	Session        *AuthHandler
	Health         *HealthHandler
	Metrics        http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// Health endpoints (OpenShift compatible)
	r.Get("/health", cfg.Health.Health)
	r.Get("/health/live", cfg.Health.Live)
	r.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		r.Post("/users", cfg.Registration.Register)
		r.Get("/users/email-available", cfg.Registration.EmailAvailable)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Authenticate)

			r.Get("/users/me", cfg.Registration.Me)
			r.Patch("/users/me", cfg.Registration.UpdateMe)
			r.Delete("/users/me", cfg.Registration.DeleteMe)
			r.Put("/users/me/push-token", cfg.Registration.UpdatePushToken)
			r.Get("/users/search", cfg.Search.Search)
			r.Get("/users/{id}", cfg.Search.Profile)

			r.Post("/sponsorships", cfg.Sponsorships.Create)
			r.Get("/sponsorships/requests", cfg.Sponsorships.Requests)
			r.Get("/sponsorships/godsons", cfg.Sponsorships.Godsons)
			r.With(cfg.Auth.RequireRole(domain.RoleGodson)).
				Get("/sponsorships/godfather", cfg.Sponsorships.Godfather)
			r.Put("/sponsorships/{id}/accept", cfg.Sponsorships.Accept)
			r.Delete("/sponsorships/{id}", cfg.Sponsorships.Delete)

			r.Post("/logout", cfg.Session.Logout)
		})
	})

	return r
}
