package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestBearerTokenAttached(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetTokenSource(staticToken("tok-1"))

	_, err := c.Favorites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", got)
}

func TestEmptyTokenSendsNoHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetTokenSource(staticToken(""))

	_, err := c.Favorites(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFederatedLoginSendsAssertionHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"token":"t","_id":"u1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetTokenSource(staticToken("session-token"))

	_, err := c.FederatedLogin(context.Background(), FederatedClaims{UID: "fb-1"}, "assertion-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer assertion-token", got, "the provider assertion must win over the session token")
}

func TestServerRejectionBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.AddFavorite(context.Background(), "p1")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "bad input", apiErr.Message)
	assert.False(t, IsNetworkError(err))
}

func TestRejectionWithoutBodyGetsGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.AddFavorite(context.Background(), "p1")

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "request rejected by server", apiErr.Message)
}

func TestConnectionFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.AddFavorite(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	_, ok := AsAPIError(err)
	assert.False(t, ok)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond)
	err := c.AddFavorite(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestMalformedSuccessBodyIsApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Favorites(context.Background())
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "unexpected response from server", apiErr.Message)
	assert.False(t, IsNetworkError(err))
}

func TestAuthCallRequiresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"u1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "secret1"})
	require.Error(t, err, "a success body with no token is unusable")
}
