package handler

import (
	"log/slog"
	"net/http"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

type AuthHandler struct {
	sessionService ports.SessionService
	logger         *slog.Logger
}

func NewAuthHandler(sessions ports.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessionService: sessions, logger: logger}
}

type LogoutResponse struct {
	Message string `json:"message"`
}

// Logout revokes the bearer token that authenticated the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return
	}
	if err := h.sessionService.Logout(r.Context(), token, expiresAt); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, LogoutResponse{Message: "Logout successful"})
}
