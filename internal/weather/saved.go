package weather

import (
	"encoding/json"
	"fmt"
	"log"
)

// DefaultStorageKey is the fixed key the saved list lives under.
const DefaultStorageKey = "us-weather-saved-locations-v1"

// SavedLocations persists the favorites list as one JSON array under a fixed key.
type SavedLocations struct {
	store Store
	key   string
}

// NewSavedLocations creates a SavedLocations over store. An empty key uses DefaultStorageKey.
func NewSavedLocations(store Store, key string) *SavedLocations {
	if key == "" {
		key = DefaultStorageKey
	}
	return &SavedLocations{store: store, key: key}
}

// Load returns the stored list. Missing or corrupt data yields an empty list.
func (s *SavedLocations) Load() []Location {
	raw, err := s.store.Get(s.key)
	if err != nil || len(raw) == 0 {
		return []Location{}
	}

	var locs []Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		log.Printf("INFO: ignoring unreadable saved locations under %q: %v", s.key, err)
		return []Location{}
	}
	if locs == nil {
		return []Location{}
	}
	return locs
}

// Persist writes the whole list. An empty list removes the key.
func (s *SavedLocations) Persist(locs []Location) error {
	if len(locs) == 0 {
		if err := s.store.Delete(s.key); err != nil {
			return fmt.Errorf("clear saved locations: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(locs)
	if err != nil {
		return err
	}
	if err := s.store.Put(s.key, raw); err != nil {
		return fmt.Errorf("persist saved locations: %w", err)
	}
	return nil
}

// AddSaved appends loc unless its display name is already present.
// The input slice is never modified.
func AddSaved(list []Location, loc Location) ([]Location, error) {
	if containsSaved(list, loc.DisplayName) {
		return list, fmt.Errorf("%w: %s", ErrDuplicateSave, loc.DisplayName)
	}
	out := make([]Location, 0, len(list)+1)
	out = append(out, list...)
	return append(out, loc), nil
}

// RemoveSaved filters out displayName. It reports whether anything was removed.
func RemoveSaved(list []Location, displayName string) ([]Location, bool) {
	out := make([]Location, 0, len(list))
	for _, l := range list {
		if l.DisplayName != displayName {
			out = append(out, l)
		}
	}
	return out, len(out) != len(list)
}

// FindSaved looks up a saved location by display name.
func FindSaved(list []Location, displayName string) (Location, bool) {
	for _, l := range list {
		if l.DisplayName == displayName {
			return l, true
		}
	}
	return Location{}, false
}

func containsSaved(list []Location, displayName string) bool {
	_, ok := FindSaved(list, displayName)
	return ok
}
