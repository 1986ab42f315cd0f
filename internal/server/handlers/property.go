package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"homescout/internal/models"
	"homescout/internal/server/repository"
	"homescout/internal/server/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PropertyHandler handles listing catalog HTTP requests
type PropertyHandler struct {
	properties *services.PropertyService
	media      *services.MediaService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(properties *services.PropertyService, media *services.MediaService) *PropertyHandler {
	return &PropertyHandler{properties: properties, media: media}
}

// Search handles GET /api/properties
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.SearchFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		City:     q.Get("city"),
	}
	filter.MinPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	filter.MaxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)
	filter.Bedrooms, _ = strconv.Atoi(q.Get("bedrooms"))

	props, err := h.properties.Search(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Property search failed")
		respondError(w, "Failed to search properties", http.StatusInternalServerError)
		return
	}
	if props == nil {
		props = []models.Property{}
	}
	respondJSON(w, http.StatusOK, props)
}

// GetByID handles GET /api/properties/{property_id}
func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "property_id")

	prop, err := h.properties.Get(r.Context(), propertyID)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			respondError(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("property_id", propertyID).Msg("Failed to load property")
		respondError(w, "Failed to load property", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, prop)
}

// GetByIDsRequest represents a batch property lookup
type GetByIDsRequest struct {
	PropertyIDs []string `json:"propertyIds"`
}

// GetByIDs handles POST /api/properties/getByIds
func (h *PropertyHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	var req GetByIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	props, err := h.properties.GetByIDs(r.Context(), req.PropertyIDs)
	if err != nil {
		log.Error().Err(err).Msg("Batch property lookup failed")
		respondError(w, "Failed to load properties", http.StatusInternalServerError)
		return
	}
	if props == nil {
		props = []models.Property{}
	}
	respondJSON(w, http.StatusOK, props)
}

// UploadImageRequest represents a request for a pre-signed image upload URL
type UploadImageRequest struct {
	ContentType string `json:"content_type"`
}

// UploadImage handles POST /api/properties/{property_id}/images/upload
func (h *PropertyHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "property_id")

	var req UploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	if _, err := h.properties.Get(r.Context(), propertyID); err != nil {
		respondError(w, "property not found", http.StatusNotFound)
		return
	}

	resp, err := h.media.PresignImageUpload(r.Context(), propertyID, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("property_id", propertyID).Msg("Failed to presign upload")
		respondError(w, "Failed to create upload URL", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
