package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"homescout/internal/api"
	"homescout/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *store.Memory) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st := store.NewMemory()
	client := api.NewClient(srv.URL, 0)
	return NewManager(client, st), st
}

func authOKHandler(captured *map[string]string) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		json.NewDecoder(req.Body).Decode(&body)
		if captured != nil {
			*captured = body
		}
		json.NewEncoder(w).Encode(map[string]string{
			"token": "server-token",
			"_id":   "u1",
			"name":  "Asha",
			"email": "asha@example.com",
			"phone": "9876543210",
		})
	})
	return r
}

func TestLoginClassifiesPhoneIdentifier(t *testing.T) {
	var captured map[string]string
	m, _ := newTestManager(t, authOKHandler(&captured))

	require.NoError(t, m.Login(context.Background(), "9876543210", "secret1"))

	assert.Equal(t, "9876543210", captured["phone"])
	assert.Empty(t, captured["email"])
}

func TestLoginClassifiesEmailIdentifier(t *testing.T) {
	var captured map[string]string
	m, _ := newTestManager(t, authOKHandler(&captured))

	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	assert.Equal(t, "asha@example.com", captured["email"])
	assert.Empty(t, captured["phone"])
}

func TestLoginTooShortForPhoneIsEmail(t *testing.T) {
	var captured map[string]string
	m, _ := newTestManager(t, authOKHandler(&captured))

	// 9 digits does not match the 10-15 digit phone pattern.
	require.NoError(t, m.Login(context.Background(), "123456789", "secret1"))

	assert.Equal(t, "123456789", captured["email"])
	assert.Empty(t, captured["phone"])
}

func TestLoginPersistsTokenAndUserTogether(t *testing.T) {
	m, st := newTestManager(t, authOKHandler(nil))

	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	token, err := st.Get(store.KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "server-token", token)

	userData, err := st.Get(store.KeyUserData)
	require.NoError(t, err)
	assert.Contains(t, userData, `"u1"`)

	user, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Asha", user.Name)
}

func TestLoginFailureLeavesStateIntact(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid email, phone or password"})
	})
	m, st := newTestManager(t, r)

	err := m.Login(context.Background(), "asha@example.com", "wrongpw")
	require.Error(t, err)

	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "invalid email, phone or password", apiErr.Message)

	_, ok = m.CurrentUser()
	assert.False(t, ok)
	_, serr := st.Get(store.KeyUserToken)
	assert.Equal(t, store.ErrNotFound, serr)
	_, serr = st.Get(store.KeyUserData)
	assert.Equal(t, store.ErrNotFound, serr)
}

func TestSessionSurvivesSimulatedRestart(t *testing.T) {
	m, st := newTestManager(t, authOKHandler(nil))
	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	// A fresh manager over the same store is a process restart. The
	// re-validation endpoint is absent, so restore must keep the stored
	// credentials optimistically.
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	m2 := NewManager(api.NewClient(srv.URL, 0), st)

	ok, err := m2.RestoreSession(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	user, found := m2.CurrentUser()
	require.True(t, found)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "server-token", m2.Token())
}

func TestRestoreRefreshesUserWhenValidationSucceeds(t *testing.T) {
	r := authOKHandler(nil).(chi.Router)
	r.Get("/api/users/me", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"_id":  "u1",
			"name": "Asha Renamed",
		})
	})
	m, _ := newTestManager(t, r)
	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	ok, err := m.RestoreSession(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	user, _ := m.CurrentUser()
	assert.Equal(t, "Asha Renamed", user.Name)
}

func TestLogoutThenRestoreYieldsNoSession(t *testing.T) {
	m, st := newTestManager(t, authOKHandler(nil))
	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	_, err := st.Get(store.KeyAlreadyLaunched)
	require.NoError(t, err)

	require.NoError(t, m.Logout())

	_, err = st.Get(store.KeyAlreadyLaunched)
	assert.Equal(t, store.ErrNotFound, err)

	ok, err := m.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, m.Token())
}

func TestLogoutWithoutSessionIsNoOp(t *testing.T) {
	m, _ := newTestManager(t, chi.NewRouter())
	require.NoError(t, m.Logout())
	require.NoError(t, m.Logout())
}

func TestGuestEntryNeverTouchesNetwork(t *testing.T) {
	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
		t.Errorf("unexpected request to %s", req.URL.Path)
	})
	m, st := newTestManager(t, r)

	require.NoError(t, m.GuestEntry())

	assert.True(t, m.IsGuest())
	assert.NotEmpty(t, m.Token())
	guest, err := st.Get(store.KeyIsGuest)
	require.NoError(t, err)
	assert.Equal(t, "true", guest)
}

func TestFederatedLoginDegradesOnNetworkFailure(t *testing.T) {
	// A closed server yields a connection failure, the network error class
	// that triggers the local fallback.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	st := store.NewMemory()
	m := NewManager(api.NewClient(srv.URL, 0), st)

	claims := api.FederatedClaims{UID: "fb-42", Name: "Ravi", Phone: "9123456789"}
	outcome, err := m.FederatedLogin(context.Background(), claims, "id-token")
	require.NoError(t, err)
	assert.Equal(t, AuthenticatedDegraded, outcome)

	user, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "fb-42", user.ID)
	assert.NotEmpty(t, m.Token())

	// The degraded session is persisted like any other.
	_, serr := st.Get(store.KeyUserToken)
	require.NoError(t, serr)
	_, serr = st.Get(store.KeyUserData)
	require.NoError(t, serr)
}

func TestFederatedLoginRejectionHasNoFallback(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/firebase", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid assertion"})
	})
	m, _ := newTestManager(t, r)

	outcome, err := m.FederatedLogin(context.Background(), api.FederatedClaims{UID: "fb-42"}, "bad")
	require.Error(t, err)
	assert.Equal(t, Rejected, outcome)

	_, ok := m.CurrentUser()
	assert.False(t, ok)
}

func TestFederatedLoginSuccessNormalizesNestedUser(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/firebase", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "server-token",
			"user": map[string]string{
				"_id":  "u9",
				"name": "Ravi",
			},
		})
	})
	m, _ := newTestManager(t, r)

	outcome, err := m.FederatedLogin(context.Background(), api.FederatedClaims{UID: "fb-9"}, "id-token")
	require.NoError(t, err)
	assert.Equal(t, Authenticated, outcome)

	user, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "Ravi", user.Name)
}

type recordingRegistrar struct {
	calls int
	fail  bool
}

func (r *recordingRegistrar) RegisterDevice(ctx context.Context) error {
	r.calls++
	if r.fail {
		return assert.AnError
	}
	return nil
}

func TestPushRegistrationIsBestEffort(t *testing.T) {
	m, _ := newTestManager(t, authOKHandler(nil))
	reg := &recordingRegistrar{fail: true}
	m.SetPushRegistrar(reg)

	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))
	assert.Equal(t, 1, reg.calls)
}

func TestUpdateProfileFailureLeavesLocalStateUntouched(t *testing.T) {
	r := authOKHandler(nil).(chi.Router)
	r.Put("/api/auth/profile", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "email in use"})
	})
	m, _ := newTestManager(t, r)
	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	err := m.UpdateProfile(context.Background(), map[string]interface{}{"email": "taken@example.com"})
	require.Error(t, err)

	user, _ := m.CurrentUser()
	assert.Equal(t, "asha@example.com", user.Email)
}

func TestUpdateProfileReplacesLocalRecordOnSuccess(t *testing.T) {
	r := authOKHandler(nil).(chi.Router)
	r.Put("/api/auth/profile", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"_id":   "u1",
			"name":  "Asha P",
			"email": "asha@example.com",
		})
	})
	m, st := newTestManager(t, r)
	require.NoError(t, m.Login(context.Background(), "asha@example.com", "secret1"))

	require.NoError(t, m.UpdateProfile(context.Background(), map[string]interface{}{"name": "Asha P"}))

	user, _ := m.CurrentUser()
	assert.Equal(t, "Asha P", user.Name)
	userData, err := st.Get(store.KeyUserData)
	require.NoError(t, err)
	assert.Contains(t, userData, "Asha P")
}

func TestValidationErrorsFailBeforeNetwork(t *testing.T) {
	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
		t.Errorf("unexpected request to %s", req.URL.Path)
	})
	m, _ := newTestManager(t, r)

	assert.Error(t, m.Login(context.Background(), "", "secret1"))
	assert.Error(t, m.Login(context.Background(), "asha@example.com", "short"))
	assert.Error(t, m.Register(context.Background(), "Asha", "not-an-email", "9876543210", "secret1"))
	assert.Error(t, m.Register(context.Background(), "Asha", "asha@example.com", "12", "secret1"))
}
