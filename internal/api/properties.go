package api

import (
	"context"
	"net/url"
	"strconv"

	"homescout/internal/models"
)

// Favorites fetches the full list of the user's favorited properties.
func (c *Client) Favorites(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	if err := c.get(ctx, "/api/properties/favorites", &props); err != nil {
		return nil, err
	}
	return props, nil
}

// AddFavorite marks a property as favorited on the server.
func (c *Client) AddFavorite(ctx context.Context, propertyID string) error {
	return c.post(ctx, "/api/properties/"+url.PathEscape(propertyID)+"/favorite", nil, nil)
}

// RemoveFavorite removes a property from the server-side favorites.
func (c *Client) RemoveFavorite(ctx context.Context, propertyID string) error {
	return c.delete(ctx, "/api/properties/"+url.PathEscape(propertyID)+"/favorite")
}

// Property fetches a single property record by ID.
func (c *Client) Property(ctx context.Context, propertyID string) (*models.Property, error) {
	var prop models.Property
	if err := c.get(ctx, "/api/properties/"+url.PathEscape(propertyID), &prop); err != nil {
		return nil, err
	}
	return &prop, nil
}

// PropertiesByIDs fetches a batch of property records in one round trip.
func (c *Client) PropertiesByIDs(ctx context.Context, ids []string) ([]models.Property, error) {
	body := map[string][]string{"propertyIds": ids}
	var props []models.Property
	if err := c.post(ctx, "/api/properties/getByIds", body, &props); err != nil {
		return nil, err
	}
	return props, nil
}

// SearchFilter narrows a property search. Zero values are omitted from the
// query string.
type SearchFilter struct {
	Query    string
	Category string
	City     string
	MinPrice float64
	MaxPrice float64
	Bedrooms int
}

// SearchProperties queries the listing catalog.
func (c *Client) SearchProperties(ctx context.Context, filter SearchFilter) ([]models.Property, error) {
	q := url.Values{}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if filter.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(filter.MaxPrice, 'f', -1, 64))
	}
	if filter.Bedrooms > 0 {
		q.Set("bedrooms", strconv.Itoa(filter.Bedrooms))
	}

	path := "/api/properties"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var props []models.Property
	if err := c.get(ctx, path, &props); err != nil {
		return nil, err
	}
	return props, nil
}
