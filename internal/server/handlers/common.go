package handlers

import (
	"encoding/json"
	"net/http"

	"homescout/internal/server/repository"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// userFields maps a user row onto the public field set of auth responses.
func userFields(u *repository.UserRow) map[string]interface{} {
	return map[string]interface{}{
		"_id":       u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"phone":     u.Phone,
		"avatarUrl": u.AvatarURL,
		"createdAt": u.CreatedAt,
	}
}

// authResponse builds the flat {token, ...userFields} body of login and
// registration responses.
func authResponse(token string, u *repository.UserRow) map[string]interface{} {
	fields := userFields(u)
	fields["token"] = token
	return fields
}
