package services

import (
	"context"
	"errors"
	"fmt"

	"homescout/internal/models"
	"homescout/internal/server/repository"
)

// ErrPropertyNotFound is returned when a listing does not exist.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyStore is the catalog surface the property service needs.
type PropertyStore interface {
	GetByID(ctx context.Context, id string) (*models.Property, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Property, error)
	Search(ctx context.Context, filter repository.SearchFilter) ([]models.Property, error)
}

// FavoriteStore is the favorites surface the property service needs.
type FavoriteStore interface {
	Add(ctx context.Context, userID, propertyID string) error
	Remove(ctx context.Context, userID, propertyID string) error
	ListProperties(ctx context.Context, userID string) ([]models.Property, error)
}

// PropertyService handles the listing catalog and per-user favorites.
type PropertyService struct {
	properties PropertyStore
	favorites  FavoriteStore
}

// NewPropertyService creates a new property service
func NewPropertyService(properties PropertyStore, favorites FavoriteStore) *PropertyService {
	return &PropertyService{properties: properties, favorites: favorites}
}

// Get fetches a single listing.
func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	prop, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPropertyNotFound
	}
	return prop, nil
}

// GetByIDs fetches a batch of listings. Unknown IDs are silently omitted.
func (s *PropertyService) GetByIDs(ctx context.Context, ids []string) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	if len(ids) > 100 {
		return nil, fmt.Errorf("too many property ids: %d", len(ids))
	}
	return s.properties.GetByIDs(ctx, ids)
}

// Search queries the catalog.
func (s *PropertyService) Search(ctx context.Context, filter repository.SearchFilter) ([]models.Property, error) {
	return s.properties.Search(ctx, filter)
}

// Favorites lists the property records a user has favorited.
func (s *PropertyService) Favorites(ctx context.Context, userID string) ([]models.Property, error) {
	return s.favorites.ListProperties(ctx, userID)
}

// AddFavorite favorites a listing, verifying it exists first.
func (s *PropertyService) AddFavorite(ctx context.Context, userID, propertyID string) error {
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return ErrPropertyNotFound
	}
	return s.favorites.Add(ctx, userID, propertyID)
}

// RemoveFavorite unfavorites a listing. Removing an absent favorite is a
// no-op.
func (s *PropertyService) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	return s.favorites.Remove(ctx, userID, propertyID)
}
