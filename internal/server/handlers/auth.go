package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"homescout/internal/server/middleware"
	"homescout/internal/server/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginRequest represents the request body for password login
type LoginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" && req.Phone == "" {
		respondError(w, "email or phone is required", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		respondError(w, "password is required", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("Login failed")
		respondError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, authResponse(token, user))
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondError(w, err.Error(), http.StatusConflict)
			return
		}
		log.Error().Err(err).Msg("Registration failed")
		respondError(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	respondJSON(w, http.StatusOK, authResponse(token, user))
}

// FirebaseRequest represents the identity claims of a federated login
type FirebaseRequest struct {
	UID         string `json:"uid"`
	FirebaseUID string `json:"firebaseUID"`
	Phone       string `json:"phone"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

// Firebase handles POST /api/auth/firebase. The response nests the user
// record under a "user" key, unlike the flat login/register responses.
func (h *AuthHandler) Firebase(w http.ResponseWriter, r *http.Request) {
	var req FirebaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	uid := req.UID
	if uid == "" {
		uid = req.FirebaseUID
	}
	if uid == "" {
		respondError(w, "uid is required", http.StatusBadRequest)
		return
	}

	assertion := ""
	if parts := strings.Split(r.Header.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
		assertion = parts[1]
	}

	user, token, err := h.auth.FederatedLogin(r.Context(), uid, req.Name, req.Email, req.Phone, assertion)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("Federated login failed")
		respondError(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", user.ID).Msg("Federated login")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userFields(user),
	})
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var patch services.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Profile update failed")
		respondError(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, userFields(user))
}
