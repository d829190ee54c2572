package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/pagination"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

type SearchHandler struct {
	searchService ports.SearchService
	logger        *slog.Logger
}

func NewSearchHandler(search ports.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searchService: search, logger: logger}
}

// Search returns a page of the nearest users of the other role.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	withContacted := false
	if raw := r.URL.Query().Get("withContacted"); raw != "" {
		withContacted, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, h.logger, domain.Invalid("withContacted must be a boolean"))
			return
		}
	}

	candidates, err := h.searchService.GetClosestUsers(r.Context(), userID, withContacted)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pagination.Paginate(page, pageSize, candidates))
}

func (h *SearchHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	profile, err := h.searchService.GetUserProfile(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
