// Package push reports the device push token to the backend so the server
// can reach this device. Registration rides along session-establishing
// operations and is strictly best-effort.
package push

import (
	"context"
	"fmt"

	"homescout/internal/api"
	"homescout/internal/store"

	"github.com/google/uuid"
)

// Registrar posts the device push token after login.
type Registrar struct {
	api   *api.Client
	store store.Store
}

// NewRegistrar creates a push registrar backed by the local state store.
func NewRegistrar(client *api.Client, st store.Store) *Registrar {
	return &Registrar{api: client, store: st}
}

// RegisterDevice sends the device token to the backend, minting and
// persisting one on first use. Implements session.PushRegistrar.
func (r *Registrar) RegisterDevice(ctx context.Context) error {
	token, err := r.store.Get(store.KeyPushToken)
	if err == store.ErrNotFound {
		token = uuid.New().String()
		if err := r.store.Set(store.KeyPushToken, token); err != nil {
			return fmt.Errorf("failed to persist push token: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read push token: %w", err)
	}

	return r.api.RegisterPushToken(ctx, token)
}
