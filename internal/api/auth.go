package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// LoginRequest carries password-login credentials. Exactly one of Email and
// Phone is populated, depending on how the identifier was classified.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// FederatedClaims are the identity claims posted for a phone/OTP or social
// login, alongside the provider's bearer assertion.
type FederatedClaims struct {
	UID   string `json:"uid"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// AuthResponse is a raw authentication response. The token is extracted
// here; the rest of the body is kept verbatim because the user record may be
// flat or nested under a "user" key, and normalization happens in one place
// in the session manager.
type AuthResponse struct {
	Token string
	Body  []byte
}

func (c *Client) authCall(ctx context.Context, path string, body interface{}, header http.Header) (*AuthResponse, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodPost, path, body, &raw, header); err != nil {
		return nil, err
	}
	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &tok); err != nil || tok.Token == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "unexpected response from server"}
	}
	return &AuthResponse{Token: tok.Token, Body: raw}, nil
}

// Login posts password credentials to /api/auth/login.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.authCall(ctx, "/api/auth/login", req, nil)
}

// Register posts a new account to /api/auth/register.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authCall(ctx, "/api/auth/register", req, nil)
}

// FederatedLogin posts identity claims plus the provider's ID token as a
// bearer assertion to /api/auth/firebase.
func (c *Client) FederatedLogin(ctx context.Context, claims FederatedClaims, idToken string) (*AuthResponse, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+idToken)
	return c.authCall(ctx, "/api/auth/firebase", claims, header)
}

// Me fetches the current user record, used for session re-validation. The
// raw body is returned for the session manager to normalize.
func (c *Client) Me(ctx context.Context) ([]byte, error) {
	var raw []byte
	if err := c.get(ctx, "/api/users/me", &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateProfile sends a partial user update and returns the server's copy of
// the updated record.
func (c *Client) UpdateProfile(ctx context.Context, patch map[string]interface{}) ([]byte, error) {
	var raw []byte
	if err := c.put(ctx, "/api/auth/profile", patch, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// RegisterPushToken reports the device push token to the backend so the
// server can notify this device. Callers treat failures as best-effort.
func (c *Client) RegisterPushToken(ctx context.Context, token string) error {
	body := map[string]string{"push_token": token}
	return c.post(ctx, "/api/users/push-token", body, nil)
}
