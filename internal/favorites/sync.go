// Package favorites keeps a local view of the user's favorited properties
// consistent with the remote store under an optimistic-update model.
// Observers only ever see terminal states: a toggle either commits both the
// ID and its property record or leaves the collections untouched.
package favorites

import (
	"context"
	"sync"

	"homescout/internal/api"
	"homescout/internal/models"

	"github.com/rs/zerolog/log"
)

// Synchronizer owns the favorites set. Overlapping toggles on the same
// property from independent triggers can race; last write wins, matching the
// single-user, single-device usage pattern.
type Synchronizer struct {
	mu    sync.RWMutex
	api   *api.Client
	ids   map[string]struct{}
	props []models.Property
}

// NewSynchronizer creates an empty synchronizer.
func NewSynchronizer(client *api.Client) *Synchronizer {
	return &Synchronizer{
		api: client,
		ids: make(map[string]struct{}),
	}
}

// LoadAll fetches the full favorites list and replaces both collections as a
// single state transition.
func (s *Synchronizer) LoadAll(ctx context.Context) error {
	props, err := s.api.Favorites(ctx)
	if err != nil {
		return err
	}

	ids := make(map[string]struct{}, len(props))
	for _, p := range props {
		ids[p.ID] = struct{}{}
	}

	s.mu.Lock()
	s.ids = ids
	s.props = props
	s.mu.Unlock()
	return nil
}

// Reload is LoadAll under its user-facing name, intended for explicit
// refresh triggers.
func (s *Synchronizer) Reload(ctx context.Context) error {
	return s.LoadAll(ctx)
}

// IsFavorite is a pure membership test. No side effects, no network access.
func (s *Synchronizer) IsFavorite(propertyID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[propertyID]
	return ok
}

// Properties returns a snapshot of the favorited property records in fetch
// order.
func (s *Synchronizer) Properties() []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Property, len(s.props))
	copy(out, s.props)
	return out
}

// Toggle flips the favorite state of a property against the remote store and
// reconciles the local view. The returned bool is the membership state after
// the call and is authoritative even when err is non-nil: on any remote
// failure no local mutation occurs and the pre-call state is reported.
//
// hint, when non-nil, is used as the property record on add instead of a
// remote fetch.
func (s *Synchronizer) Toggle(ctx context.Context, propertyID string, hint *models.Property) (bool, error) {
	if s.IsFavorite(propertyID) {
		if err := s.api.RemoveFavorite(ctx, propertyID); err != nil {
			log.Warn().Err(err).Str("property_id", propertyID).Msg("Failed to remove favorite")
			return true, err
		}
		s.remove(propertyID)
		return false, nil
	}

	if err := s.api.AddFavorite(ctx, propertyID); err != nil {
		log.Warn().Err(err).Str("property_id", propertyID).Msg("Failed to add favorite")
		return false, err
	}

	record := hint
	if record == nil || record.ID == "" {
		fetched, err := s.api.Property(ctx, propertyID)
		if err == nil && fetched.ID != "" {
			record = fetched
		} else {
			record = nil
		}
	}

	if record == nil {
		// No usable record for the new ID; reconcile the whole view rather
		// than leaving a dangling ID with no property.
		if err := s.LoadAll(ctx); err != nil {
			log.Warn().Err(err).Str("property_id", propertyID).Msg("Reconciliation after add failed")
			return false, err
		}
		return true, nil
	}

	s.add(*record)
	return true, nil
}

// Clear drops the local view. Invoked on session change; server state is not
// touched and must be reloaded explicitly for the next session.
func (s *Synchronizer) Clear() {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.props = nil
	s.mu.Unlock()
}

func (s *Synchronizer) add(p models.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[p.ID]; ok {
		return
	}
	s.ids[p.ID] = struct{}{}
	s.props = append(s.props, p)
}

func (s *Synchronizer) remove(propertyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, propertyID)
	for i, p := range s.props {
		if p.ID == propertyID {
			s.props = append(s.props[:i], s.props[i+1:]...)
			break
		}
	}
}
