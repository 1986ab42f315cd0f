package handlers

import (
	"errors"
	"net/http"

	"homescout/internal/models"
	"homescout/internal/server/middleware"
	"homescout/internal/server/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FavoriteHandler handles favorites HTTP requests
type FavoriteHandler struct {
	properties *services.PropertyService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(properties *services.PropertyService) *FavoriteHandler {
	return &FavoriteHandler{properties: properties}
}

// List handles GET /api/properties/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	props, err := h.properties.Favorites(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list favorites")
		respondError(w, "Failed to list favorites", http.StatusInternalServerError)
		return
	}
	if props == nil {
		props = []models.Property{}
	}
	respondJSON(w, http.StatusOK, props)
}

// Add handles POST /api/properties/{property_id}/favorite
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	propertyID := chi.URLParam(r, "property_id")

	if err := h.properties.AddFavorite(ctx, userID, propertyID); err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Str("property_id", propertyID).Msg("Failed to add favorite")
		respondError(w, "Failed to add favorite", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", userID).Str("property_id", propertyID).Msg("Favorite added")
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": true})
}

// Remove handles DELETE /api/properties/{property_id}/favorite
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	propertyID := chi.URLParam(r, "property_id")

	if err := h.properties.RemoveFavorite(ctx, userID, propertyID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("property_id", propertyID).Msg("Failed to remove favorite")
		respondError(w, "Failed to remove favorite", http.StatusInternalServerError)
		return
	}

	log.Info().Str("user_id", userID).Str("property_id", propertyID).Msg("Favorite removed")
	respondJSON(w, http.StatusOK, map[string]bool{"favorited": false})
}
