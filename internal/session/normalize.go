package session

import (
	"encoding/json"
	"fmt"
	"time"

	"homescout/internal/models"
)

// rawUser tolerates the identifier variants seen in server responses. The
// canonical shape is models.User with the ID always populated; everything
// past this file sees only that.
type rawUser struct {
	ID        string    `json:"_id"`
	AltID     string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// normalizeUser turns an auth or profile response body into the canonical
// flat user record. The user may appear at the top level of the body or
// nested one level under a "user" key.
func normalizeUser(body []byte) (*models.User, error) {
	var envelope struct {
		User json.RawMessage `json:"user"`
	}
	doc := body
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.User) > 0 && envelope.User[0] == '{' {
		doc = envelope.User
	}

	var raw rawUser
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse user record: %w", err)
	}

	id := raw.ID
	if id == "" {
		id = raw.AltID
	}
	if id == "" {
		return nil, fmt.Errorf("user record has no identifier")
	}

	return &models.User{
		ID:        id,
		Name:      raw.Name,
		Email:     raw.Email,
		Phone:     raw.Phone,
		AvatarURL: raw.AvatarURL,
		CreatedAt: raw.CreatedAt,
	}, nil
}
