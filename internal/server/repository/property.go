package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"homescout/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PropertyRepository handles database operations for property listings
type PropertyRepository struct {
	db *pgxpool.Pool
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// SearchFilter narrows a catalog query; zero values are ignored.
type SearchFilter struct {
	Query    string
	Category string
	City     string
	MinPrice float64
	MaxPrice float64
	Bedrooms int
}

// propertyColumns is qualified with the p alias so it stays unambiguous in
// joined queries.
const propertyColumns = `p.id, p.title, p.description, p.price, p.category, p.images, p.address, p.city,
	p.longitude, p.latitude, p.bedrooms, p.bathrooms, p.furnished, p.area_sqft,
	p.pg_room_type, p.pg_shared_bathroom, p.pg_amenities, p.owner_id, p.created_at`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p                models.Property
		city             string
		lng, lat         *float64
		pgRoomType       *string
		pgSharedBathroom *bool
		pgAmenities      []string
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Images,
		&p.Location.Address, &city, &lng, &lat,
		&p.Bedrooms, &p.Bathrooms, &p.Furnished, &p.AreaSqFt,
		&pgRoomType, &pgSharedBathroom, &pgAmenities,
		&p.OwnerID, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("property not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if lng != nil && lat != nil {
		p.Location.Point = &models.GeoPoint{
			Type:        "Point",
			Coordinates: []float64{*lng, *lat},
		}
	}
	if p.Category == models.CategoryPayingGuest {
		pg := &models.PGDetails{Amenities: pgAmenities}
		if pgRoomType != nil {
			pg.RoomType = *pgRoomType
		}
		if pgSharedBathroom != nil {
			pg.SharedBathroom = *pgSharedBathroom
		}
		p.PG = pg
	}
	return &p, nil
}

func collectProperties(rows pgx.Rows) ([]models.Property, error) {
	defer rows.Close()
	var props []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		props = append(props, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}
	return props, nil
}

// GetByID retrieves a single property
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = $1`
	return scanProperty(r.db.QueryRow(ctx, query, id))
}

// GetByIDs retrieves a batch of properties
func (r *PropertyRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return collectProperties(rows)
}

// Search queries the catalog with the given filter
func (r *PropertyRepository) Search(ctx context.Context, filter SearchFilter) ([]models.Property, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Query != "" {
		ph := arg("%" + filter.Query + "%")
		conds = append(conds, "(p.title ILIKE "+ph+" OR p.address ILIKE "+ph+")")
	}
	if filter.Category != "" {
		conds = append(conds, "p.category = "+arg(filter.Category))
	}
	if filter.City != "" {
		conds = append(conds, "p.city ILIKE "+arg(filter.City))
	}
	if filter.MinPrice > 0 {
		conds = append(conds, "p.price >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		conds = append(conds, "p.price <= "+arg(filter.MaxPrice))
	}
	if filter.Bedrooms > 0 {
		conds = append(conds, "p.bedrooms >= "+arg(filter.Bedrooms))
	}

	query := `SELECT ` + propertyColumns + ` FROM properties p`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC LIMIT 100"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}
	return collectProperties(rows)
}
