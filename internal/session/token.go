package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"homescout/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

// deviceSecret returns the signing key for locally synthesized tokens,
// generating and persisting one on first use.
func (m *Manager) deviceSecret() ([]byte, error) {
	secret, err := m.store.Get(store.KeyDeviceSecret)
	if err == nil {
		return []byte(secret), nil
	}
	if err != store.ErrNotFound {
		return nil, fmt.Errorf("failed to read device secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate device secret: %w", err)
	}
	secret = hex.EncodeToString(buf)
	if err := m.store.Set(store.KeyDeviceSecret, secret); err != nil {
		return nil, fmt.Errorf("failed to persist device secret: %w", err)
	}
	return []byte(secret), nil
}

// mintGuestToken creates the non-expiring credential for guest entry.
func (m *Manager) mintGuestToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"guest": true,
		"iat":   time.Now().Unix(),
	}
	return m.signLocal(claims)
}

// mintDegradedToken creates the time-based credential for a federated login
// that fell back to local identity claims.
func (m *Manager) mintDegradedToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"degraded": true,
		"iat":      now.Unix(),
		"exp":      now.AddDate(0, 0, 7).Unix(),
	}
	return m.signLocal(claims)
}

func (m *Manager) signLocal(claims jwt.MapClaims) (string, error) {
	secret, err := m.deviceSecret()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
