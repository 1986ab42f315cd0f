package repository

import (
	"context"
	"fmt"
	"time"

	"homescout/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository handles database operations for favorites
type FavoriteRepository struct {
	db *pgxpool.Pool
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add marks a property as favorited by a user; re-adding is a no-op
func (r *FavoriteRepository) Add(ctx context.Context, userID, propertyID string) error {
	query := `
		INSERT INTO favorites (user_id, property_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, property_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userID, propertyID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove deletes a favorite
func (r *FavoriteRepository) Remove(ctx context.Context, userID, propertyID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND property_id = $2`
	_, err := r.db.Exec(ctx, query, userID, propertyID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// Exists checks whether a user has favorited a property
func (r *FavoriteRepository) Exists(ctx context.Context, userID, propertyID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND property_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, propertyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// ListProperties returns the full property records a user has favorited, in
// the order they were favorited
func (r *FavoriteRepository) ListProperties(ctx context.Context, userID string) ([]models.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM properties p
		JOIN favorites f ON f.property_id = p.id
		WHERE f.user_id = $1
		ORDER BY f.created_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	return collectProperties(rows)
}
