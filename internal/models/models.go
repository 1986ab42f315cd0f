package models

import "time"

// User is the canonical, flat user record. Remote responses sometimes nest
// the user under a "user" key and sometimes carry the identifier as "id"
// instead of "_id"; both variants are normalized into this shape at the
// session boundary and never downstream.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	IsGuest   bool      `json:"isGuest,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Property categories.
const (
	CategorySale        = "sale"
	CategoryRent        = "rent"
	CategoryPayingGuest = "pg"
)

// GeoPoint is a GeoJSON point: coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Location is a property address plus an optional geocoded point.
type Location struct {
	Address string    `json:"address"`
	Point   *GeoPoint `json:"point,omitempty"`
}

// PGDetails carries descriptors specific to paying-guest listings.
type PGDetails struct {
	RoomType       string   `json:"roomType,omitempty"`
	SharedBathroom bool     `json:"sharedBathroom,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
}

// Property is a listing record. The client treats it as read-only: nothing
// beyond the presence of an identifier is validated before rendering or
// favoriting.
type Property struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Images      []string   `json:"images,omitempty"`
	Location    Location   `json:"location"`
	Bedrooms    int        `json:"bedrooms,omitempty"`
	Bathrooms   int        `json:"bathrooms,omitempty"`
	Furnished   string     `json:"furnished,omitempty"`
	AreaSqFt    float64    `json:"areaSqFt,omitempty"`
	PG          *PGDetails `json:"pg,omitempty"`
	OwnerID     string     `json:"ownerId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
}

// Message is a chat message between two users about a property.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	PropertyID string    `json:"property_id,omitempty"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}
