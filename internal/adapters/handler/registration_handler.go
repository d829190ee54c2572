package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

type RegistrationHandler struct {
	registrationService ports.RegistrationService
	logger              *slog.Logger
}

func NewRegistrationHandler(registration ports.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registration, logger: logger}
}

type RegistrationRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Phone        string  `json:"tel"`
	Email        string  `json:"email"`
	ActivityArea string  `json:"activity_area"`
	Role         string  `json:"role"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	ZipCode      string  `json:"zip_code"`
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
}

// UpdateUserRequest is a partial profile; absent fields are left unchanged.
type UpdateUserRequest struct {
	FirstName    *string  `json:"first_name"`
	LastName     *string  `json:"last_name"`
	Phone        *string  `json:"tel"`
	Email        *string  `json:"email"`
	ActivityArea *string  `json:"activity_area"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	ZipCode      *string  `json:"zip_code"`
	Longitude    *float64 `json:"longitude"`
	Latitude     *float64 `json:"latitude"`
}

type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}

	user, err := h.registrationService.RegisterUser(r.Context(), ports.RegisterUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		ActivityArea: req.ActivityArea,
		Role:         req.Role,
		Street:       req.Address,
		City:         req.City,
		ZipCode:      req.ZipCode,
		Longitude:    req.Longitude,
		Latitude:     req.Latitude,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type EmailAvailabilityResponse struct {
	Available bool `json:"available"`
}

func (h *RegistrationHandler) EmailAvailable(w http.ResponseWriter, r *http.Request) {
	available, err := h.registrationService.EmailAvailable(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, EmailAvailabilityResponse{Available: available})
}

func (h *RegistrationHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.registrationService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *RegistrationHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}
	if err := h.registrationService.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request payload")
		return
	}

	user, err := h.registrationService.UpdateUser(r.Context(), userID, ports.UpdateUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		ActivityArea: req.ActivityArea,
		Street:       req.Address,
		City:         req.City,
		ZipCode:      req.ZipCode,
		Longitude:    req.Longitude,
		Latitude:     req.Latitude,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *RegistrationHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.registrationService.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
