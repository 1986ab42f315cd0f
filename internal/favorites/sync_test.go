package favorites

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"homescout/internal/api"
	"homescout/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a configurable favorites backend for one test.
type fakeBackend struct {
	favorites  []models.Property
	properties map[string]models.Property

	failAdd         bool
	failRemove      bool
	failPropertyGet bool

	requests int
}

func (b *fakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.requests++
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/api/properties/favorites", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(b.favorites)
	})
	r.Post("/api/properties/{id}/favorite", func(w http.ResponseWriter, req *http.Request) {
		if b.failAdd {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		id := chi.URLParam(req, "id")
		if p, ok := b.properties[id]; ok {
			b.favorites = append(b.favorites, p)
		}
		json.NewEncoder(w).Encode(map[string]bool{"favorited": true})
	})
	r.Delete("/api/properties/{id}/favorite", func(w http.ResponseWriter, req *http.Request) {
		if b.failRemove {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		id := chi.URLParam(req, "id")
		for i, p := range b.favorites {
			if p.ID == id {
				b.favorites = append(b.favorites[:i], b.favorites[i+1:]...)
				break
			}
		}
		json.NewEncoder(w).Encode(map[string]bool{"favorited": false})
	})
	r.Get("/api/properties/{id}", func(w http.ResponseWriter, req *http.Request) {
		if b.failPropertyGet {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			return
		}
		id := chi.URLParam(req, "id")
		p, ok := b.properties[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "property not found"})
			return
		}
		json.NewEncoder(w).Encode(p)
	})
	return r
}

func newTestSync(t *testing.T, b *fakeBackend) *Synchronizer {
	t.Helper()
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)
	return NewSynchronizer(api.NewClient(srv.URL, 0))
}

func prop(id string) models.Property {
	return models.Property{ID: id, Title: "Listing " + id, Category: models.CategoryRent}
}

func TestLoadAllReplacesBothCollections(t *testing.T) {
	b := &fakeBackend{favorites: []models.Property{prop("p1"), prop("p2")}}
	s := newTestSync(t, b)

	require.NoError(t, s.LoadAll(context.Background()))

	assert.True(t, s.IsFavorite("p1"))
	assert.True(t, s.IsFavorite("p2"))
	assert.False(t, s.IsFavorite("p3"))
	assert.Len(t, s.Properties(), 2)
}

func TestToggleRemovesExistingFavorite(t *testing.T) {
	b := &fakeBackend{favorites: []models.Property{prop("p1"), prop("p2")}}
	s := newTestSync(t, b)
	require.NoError(t, s.LoadAll(context.Background()))

	favorited, err := s.Toggle(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.False(t, favorited)

	assert.False(t, s.IsFavorite("p1"))
	assert.True(t, s.IsFavorite("p2"))
	props := s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "p2", props[0].ID)
}

func TestToggleAddsWithFetchedRecord(t *testing.T) {
	b := &fakeBackend{properties: map[string]models.Property{"p5": prop("p5")}}
	s := newTestSync(t, b)
	require.NoError(t, s.LoadAll(context.Background()))

	favorited, err := s.Toggle(context.Background(), "p5", nil)
	require.NoError(t, err)
	assert.True(t, favorited)

	assert.True(t, s.IsFavorite("p5"))
	props := s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "p5", props[0].ID)
}

func TestToggleAddUsesHintWithoutFetching(t *testing.T) {
	b := &fakeBackend{properties: map[string]models.Property{"p5": prop("p5")}, failPropertyGet: true}
	s := newTestSync(t, b)

	hint := prop("p5")
	favorited, err := s.Toggle(context.Background(), "p5", &hint)
	require.NoError(t, err)
	assert.True(t, favorited)
	assert.True(t, s.IsFavorite("p5"))
}

func TestToggleAddReconcilesWhenRecordUnavailable(t *testing.T) {
	// The property fetch fails after a successful add, so the synchronizer
	// must fall back to a full reload instead of keeping a dangling ID.
	b := &fakeBackend{properties: map[string]models.Property{"p7": prop("p7")}, failPropertyGet: true}
	s := newTestSync(t, b)

	favorited, err := s.Toggle(context.Background(), "p7", nil)
	require.NoError(t, err)
	assert.True(t, favorited)

	assert.True(t, s.IsFavorite("p7"))
	props := s.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "p7", props[0].ID)
}

func TestToggleAddFailureLeavesStateUnchanged(t *testing.T) {
	b := &fakeBackend{failAdd: true, properties: map[string]models.Property{"p1": prop("p1")}}
	s := newTestSync(t, b)

	favorited, err := s.Toggle(context.Background(), "p1", nil)
	require.Error(t, err)
	assert.False(t, favorited, "reported state must be the pre-call membership")
	assert.False(t, s.IsFavorite("p1"))
	assert.Empty(t, s.Properties())
}

func TestToggleRemoveFailureLeavesStateUnchanged(t *testing.T) {
	b := &fakeBackend{favorites: []models.Property{prop("p1")}, failRemove: true}
	s := newTestSync(t, b)
	require.NoError(t, s.LoadAll(context.Background()))

	favorited, err := s.Toggle(context.Background(), "p1", nil)
	require.Error(t, err)
	assert.True(t, favorited, "reported state must be the pre-call membership")
	assert.True(t, s.IsFavorite("p1"))
	assert.Len(t, s.Properties(), 1)
}

func TestIsFavoriteNeverPerformsIO(t *testing.T) {
	b := &fakeBackend{favorites: []models.Property{prop("p1")}}
	s := newTestSync(t, b)
	require.NoError(t, s.LoadAll(context.Background()))

	before := b.requests
	for i := 0; i < 10; i++ {
		s.IsFavorite("p1")
		s.IsFavorite("nope")
	}
	assert.Equal(t, before, b.requests, "IsFavorite must not hit the network")
}

func TestFreshGuestSessionHasNoFavorites(t *testing.T) {
	b := &fakeBackend{}
	s := newTestSync(t, b)

	assert.False(t, s.IsFavorite("p1"))
	assert.Zero(t, b.requests)
}

func TestClearDropsLocalView(t *testing.T) {
	b := &fakeBackend{favorites: []models.Property{prop("p1")}}
	s := newTestSync(t, b)
	require.NoError(t, s.LoadAll(context.Background()))

	s.Clear()

	assert.False(t, s.IsFavorite("p1"))
	assert.Empty(t, s.Properties())
}
