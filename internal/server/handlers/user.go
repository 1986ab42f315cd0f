package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"homescout/internal/server/middleware"
	"homescout/internal/server/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	auth *services.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Me handles GET /api/users/me, used by clients to re-validate a session.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.auth.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user")
		respondError(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, userFields(user))
}

// PushTokenRequest represents a device push token registration
type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// RegisterPushToken handles POST /api/users/push-token
func (h *UserHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PushToken == "" {
		respondError(w, "push_token is required", http.StatusBadRequest)
		return
	}

	if err := h.auth.SetPushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to store push token")
		respondError(w, "Failed to store push token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
