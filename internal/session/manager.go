// Package session owns the authenticated identity: it mediates every path
// that produces a bearer token and every path that consumes one. The token
// and user record are set and cleared together; persisted storage never
// holds half the pair after a completed operation.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"homescout/internal/api"
	"homescout/internal/models"
	"homescout/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// phoneRe classifies a login identifier as a phone number.
var phoneRe = regexp.MustCompile(`^[0-9]{10,15}$`)

// PushRegistrar reports the device push token to the backend. Registration
// is a best-effort side task of every session-establishing operation.
type PushRegistrar interface {
	RegisterDevice(ctx context.Context) error
}

// Manager maintains exactly one authenticated identity at a time.
type Manager struct {
	mu       sync.RWMutex
	api      *api.Client
	store    store.Store
	push     PushRegistrar
	validate *validator.Validate

	token string
	user  *models.User

	onChange []func()
}

// NewManager creates a session manager and installs itself as the API
// client's token source.
func NewManager(client *api.Client, st store.Store) *Manager {
	m := &Manager{
		api:      client,
		store:    st,
		validate: validator.New(),
	}
	client.SetTokenSource(m)
	return m
}

// SetPushRegistrar installs the best-effort push registration hook.
func (m *Manager) SetPushRegistrar(p PushRegistrar) {
	m.push = p
}

// OnChange registers a callback invoked after the session is established or
// cleared. The favorites synchronizer uses this to drop its local view on
// logout.
func (m *Manager) OnChange(fn func()) {
	m.onChange = append(m.onChange, fn)
}

// Token returns the current bearer token, or "" when no session exists.
// Implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// CurrentUser returns the current user record and whether a session exists.
func (m *Manager) CurrentUser() (*models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, false
	}
	u := *m.user
	return &u, true
}

// IsGuest reports whether the current session is a guest session. Guests
// cannot favorite properties or message owners.
func (m *Manager) IsGuest() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.IsGuest
}

type loginInput struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required,min=6"`
}

// Login authenticates with a password. The identifier is classified as a
// phone number when it is 10 to 15 digits, otherwise as an email.
func (m *Manager) Login(ctx context.Context, identifier, password string) error {
	if err := m.validate.Struct(loginInput{Identifier: identifier, Password: password}); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	req := api.LoginRequest{Password: password}
	if phoneRe.MatchString(identifier) {
		req.Phone = identifier
	} else {
		req.Email = identifier
	}

	resp, err := m.api.Login(ctx, req)
	if err != nil {
		return err
	}
	user, err := normalizeUser(resp.Body)
	if err != nil {
		return err
	}
	if err := m.establish(resp.Token, user, false); err != nil {
		return err
	}
	m.registerPush(ctx)
	return nil
}

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required,numeric,min=10,max=15"`
	Password string `validate:"required,min=6"`
}

// Register creates an account. Phone and email verification are delegated
// to external flows; this only establishes the session.
func (m *Manager) Register(ctx context.Context, name, email, phone, password string) error {
	in := registerInput{Name: name, Email: email, Phone: phone, Password: password}
	if err := m.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid registration details: %w", err)
	}

	resp, err := m.api.Register(ctx, api.RegisterRequest{
		Name: name, Email: email, Phone: phone, Password: password,
	})
	if err != nil {
		return err
	}
	user, err := normalizeUser(resp.Body)
	if err != nil {
		return err
	}
	if err := m.establish(resp.Token, user, false); err != nil {
		return err
	}
	m.registerPush(ctx)
	return nil
}

// FederatedLogin posts identity claims plus a provider assertion. On a
// network-class failure it falls back to a locally synthesized session so a
// transient backend outage does not fully block the user; an application
// rejection fails outright with no fallback.
func (m *Manager) FederatedLogin(ctx context.Context, claims api.FederatedClaims, idToken string) (Outcome, error) {
	if claims.UID == "" {
		return Rejected, fmt.Errorf("identity claims missing uid")
	}

	resp, err := m.api.FederatedLogin(ctx, claims, idToken)
	if err == nil {
		user, nerr := normalizeUser(resp.Body)
		if nerr != nil {
			return Rejected, nerr
		}
		if eerr := m.establish(resp.Token, user, false); eerr != nil {
			return Rejected, eerr
		}
		m.registerPush(ctx)
		return Authenticated, nil
	}

	if !api.IsNetworkError(err) {
		return Rejected, err
	}

	log.Warn().Err(err).Msg("Auth backend unreachable, synthesizing local session")

	token, terr := m.mintDegradedToken(claims.UID)
	if terr != nil {
		return Rejected, terr
	}
	user := &models.User{
		ID:    claims.UID,
		Name:  claims.Name,
		Email: claims.Email,
		Phone: claims.Phone,
	}
	if eerr := m.establish(token, user, false); eerr != nil {
		return Rejected, eerr
	}
	m.registerPush(ctx)
	return AuthenticatedDegraded, nil
}

// GuestEntry establishes a guest session without contacting the backend.
// It always succeeds unless local storage fails.
func (m *Manager) GuestEntry() error {
	userID := "guest-" + uuid.New().String()
	token, err := m.mintGuestToken(userID)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:      userID,
		Name:    "Guest",
		IsGuest: true,
	}
	return m.establish(token, user, true)
}

// Logout clears the in-memory and persisted session along with the first
// launch marker so onboarding reappears. Calling it with no active session
// is a no-op.
func (m *Manager) Logout() error {
	for _, key := range []string{
		store.KeyUserToken, store.KeyUserData, store.KeyIsGuest, store.KeyAlreadyLaunched,
	} {
		if err := m.store.Delete(key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	m.notify()
	return nil
}

// RestoreSession rehydrates the persisted session at process start. If the
// stored credentials fail remote validation the stored copy is kept
// optimistically rather than forcing a logout. Returns whether a usable
// session exists.
func (m *Manager) RestoreSession(ctx context.Context) (bool, error) {
	token, err := m.store.Get(store.KeyUserToken)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stored session: %w", err)
	}
	userData, err := m.store.Get(store.KeyUserData)
	if err == store.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read stored session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		return false, fmt.Errorf("failed to parse stored user: %w", err)
	}

	m.mu.Lock()
	m.token = token
	m.user = &user
	m.mu.Unlock()

	if user.IsGuest {
		return true, nil
	}

	// Re-validate against the server, refreshing the user record when the
	// call succeeds. Availability wins over consistency on failure.
	body, err := m.api.Me(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Session re-validation failed, keeping stored credentials")
		return true, nil
	}
	fresh, err := normalizeUser(body)
	if err != nil {
		log.Warn().Err(err).Msg("Unusable user record from re-validation, keeping stored copy")
		return true, nil
	}
	if err := m.persistUser(fresh); err != nil {
		return true, nil
	}
	m.mu.Lock()
	m.user = fresh
	m.mu.Unlock()
	return true, nil
}

// UpdateProfile sends a partial user update and replaces the local record
// with the server's response. Local state is untouched on failure.
func (m *Manager) UpdateProfile(ctx context.Context, patch map[string]interface{}) error {
	if _, ok := m.CurrentUser(); !ok {
		return fmt.Errorf("no active session")
	}

	body, err := m.api.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	user, err := normalizeUser(body)
	if err != nil {
		return err
	}
	if err := m.persistUser(user); err != nil {
		return err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return nil
}

// establish persists the token and user as a pair, then publishes them to
// memory. A failed user write rolls back the token write so storage never
// holds half a session.
func (m *Manager) establish(token string, user *models.User, guest bool) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := m.store.Set(store.KeyUserToken, token); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := m.store.Set(store.KeyUserData, string(userData)); err != nil {
		m.store.Delete(store.KeyUserToken)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if guest {
		m.store.Set(store.KeyIsGuest, "true")
	} else {
		m.store.Delete(store.KeyIsGuest)
	}
	m.store.Set(store.KeyAlreadyLaunched, "true")

	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *Manager) persistUser(user *models.User) error {
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(store.KeyUserData, string(userData)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// registerPush attempts device push registration. Failure is logged and
// swallowed; it must never fail the session operation that triggered it.
func (m *Manager) registerPush(ctx context.Context) {
	if m.push == nil {
		return
	}
	if err := m.push.RegisterDevice(ctx); err != nil {
		log.Warn().Err(err).Msg("Push registration failed")
	}
}

func (m *Manager) notify() {
	for _, fn := range m.onChange {
		fn()
	}
}
