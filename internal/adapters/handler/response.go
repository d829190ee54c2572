package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/AchilleasB/parrainage/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/pagination"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to their status. Anything else is logged and
// reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindInvalid:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorResponse{Error: de.Message})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

// currentUser returns the authenticated caller's id. Routes using it are
// always mounted behind AuthMiddleware.Authenticate.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
		return "", false
	}
	return userID, true
}

// maxPage keeps pageSize*page inside an int.
const maxPage = math.MaxInt / pagination.MaxPageSize

// pageParams reads page (0..maxPage, default 0) and pageSize (1..20, default 20).
func pageParams(r *http.Request) (page, pageSize int, err error) {
	page, pageSize = 0, pagination.DefaultPageSize
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 || page > maxPage {
			return 0, 0, domain.Invalid("page must be a non-negative integer")
		}
	}
	if raw := q.Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > pagination.MaxPageSize {
			return 0, 0, domain.Invalid("pageSize must be between 1 and 20")
		}
	}
	return page, pageSize, nil
}
