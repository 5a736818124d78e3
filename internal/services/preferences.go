package services

import (
	"context"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"slices"
)

// PreferenceService stores user preferences and the last planned trip.
type PreferenceService struct {
	Store ports.StateStore
}

func NewPreferenceService(store ports.StateStore) *PreferenceService {
	return &PreferenceService{Store: store}
}

func prefsKey(userID string) string { return "prefs:" + userID }
func tripKey(userID string) string  { return "trip:" + userID }

// Get returns stored preferences; a user without any gets the zero value.
func (s *PreferenceService) Get(ctx context.Context, userID string) (domain.UserPreferences, error) {
	if userID == "" {
		return domain.UserPreferences{}, errEmptyUserID
	}
	var p domain.UserPreferences
	if _, err := s.Store.Get(ctx, prefsKey(userID), &p); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

func (s *PreferenceService) Put(ctx context.Context, userID string, p domain.UserPreferences) error {
	if userID == "" {
		return errEmptyUserID
	}
	if err := s.Store.Put(ctx, prefsKey(userID), p); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Merge overlays request-level must-see and avoid ids on stored preferences.
func Merge(stored, req domain.UserPreferences) domain.UserPreferences {
	out := stored
	out.MustSeeIDs = union(stored.MustSeeIDs, req.MustSeeIDs)
	out.AvoidIDs = union(stored.AvoidIDs, req.AvoidIDs)
	if len(req.CategoryWeights) > 0 {
		out.CategoryWeights = req.CategoryWeights
	}
	if len(req.CategoryDurations) > 0 {
		out.CategoryDurations = req.CategoryDurations
	}
	return out
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	for _, id := range b {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *PreferenceService) SaveTrip(ctx context.Context, tc domain.TripContext) error {
	if tc.UserID == "" {
		return errEmptyUserID
	}
	if err := s.Store.Put(ctx, tripKey(tc.UserID), tc); err != nil {
		return fmt.Errorf("save trip context: %w", err)
	}
	return nil
}

// LastTrip returns the most recently planned trip, or domain.ErrNotFound.
func (s *PreferenceService) LastTrip(ctx context.Context, userID string) (domain.TripContext, error) {
	if userID == "" {
		return domain.TripContext{}, errEmptyUserID
	}
	var tc domain.TripContext
	found, err := s.Store.Get(ctx, tripKey(userID), &tc)
	if err != nil {
		return domain.TripContext{}, fmt.Errorf("load trip context: %w", err)
	}
	if !found {
		return domain.TripContext{}, fmt.Errorf("trip %s: %w", userID, domain.ErrNotFound)
	}
	return tc, nil
}
