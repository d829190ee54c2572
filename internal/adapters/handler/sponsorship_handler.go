package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/pagination"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

type SponsorshipHandler struct {
	sponsorshipService ports.SponsorshipService
	logger             *slog.Logger
}

func NewSponsorshipHandler(sponsorships ports.SponsorshipService, logger *slog.Logger) *SponsorshipHandler {
	return &SponsorshipHandler{sponsorshipService: sponsorships, logger: logger}
}

type CreateSponsorshipRequest struct {
	GodfatherID string `json:"godfather_id"`
	GodsonID    string `json:"godson_id"`
}

func (h *SponsorshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateSponsorshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	req.GodfatherID = strings.TrimSpace(req.GodfatherID)
	req.GodsonID = strings.TrimSpace(req.GodsonID)
	if req.GodfatherID == "" || req.GodsonID == "" {
		badRequest(w, "godfather_id and godson_id are required")
		return
	}

	sponsorship, err := h.sponsorshipService.CreateSponsorship(r.Context(), req.GodfatherID, req.GodsonID, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sponsorship)
}

// Requests lists pending requests; ?type=received (default) or sent.
func (h *SponsorshipHandler) Requests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	direction, err := domain.ParseDirection(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	requests, err := h.sponsorshipService.GetAwaitingRequests(r.Context(), userID, direction)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pagination.Paginate(page, pageSize, requests))
}

func (h *SponsorshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.sponsorshipService.AcceptSponsorship(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SponsorshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.sponsorshipService.DeleteSponsorship(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SponsorshipHandler) Godsons(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	children, err := h.sponsorshipService.GetGodfatherGodchildren(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pagination.Paginate(page, pageSize, children))
}

func (h *SponsorshipHandler) Godfather(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	godfather, err := h.sponsorshipService.GetGodsonGodfather(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, godfather)
}
