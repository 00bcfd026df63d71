package weather

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Tab is the panel the UI shows.
type Tab string

const (
	TabHourly  Tab = "hourly"
	TabDaily   Tab = "daily"
	TabSummary Tab = "summary"
	TabMap     Tab = "map"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabHourly, TabDaily, TabSummary, TabMap:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTab, s)
	}
}

// AppState is the complete UI state. All transitions are pure: they return a
// new value and never touch the receiver's slices.
type AppState struct {
	Current *Location  `json:"current"`
	Report  *Report    `json:"report,omitempty"`
	Saved   []Location `json:"saved"`
	Tab     Tab        `json:"tab"`
	Status  string     `json:"status"`
}

// NewAppState starts with the persisted saved list and the hourly tab.
func NewAppState(saved []Location) AppState {
	if saved == nil {
		saved = []Location{}
	}
	return AppState{Saved: saved, Tab: TabHourly}
}

// WithStatus replaces the status line.
func (st AppState) WithStatus(msg string) AppState {
	st.Status = msg
	return st
}

// WithReport makes r's location current.
func (st AppState) WithReport(r Report) AppState {
	loc := r.Location
	st.Current = &loc
	st.Report = &r
	st.Status = fmt.Sprintf("Showing forecast for %s.", loc.DisplayName)
	return st
}

// WithError records err as the status line; everything else is kept.
func (st AppState) WithError(err error) AppState {
	st.Status = StatusMessage(err)
	return st
}

// SaveCurrent appends the current location to the saved list.
func (st AppState) SaveCurrent() (AppState, error) {
	if st.Current == nil {
		return st.WithError(ErrNoCurrentLocation), ErrNoCurrentLocation
	}

	saved, err := AddSaved(st.Saved, *st.Current)
	if err != nil {
		return st.WithError(err), err
	}

	st.Saved = saved
	st.Status = fmt.Sprintf("Saved %s.", st.Current.DisplayName)
	return st, nil
}

// RemoveSaved drops displayName from the saved list.
func (st AppState) RemoveSaved(displayName string) AppState {
	st.Saved, _ = RemoveSaved(st.Saved, displayName)
	st.Status = fmt.Sprintf("Removed %s from saved locations.", displayName)
	return st
}

// SelectTab switches the visible panel.
func (st AppState) SelectTab(t Tab) AppState {
	st.Tab = t
	return st
}

// App owns one AppState and applies user actions to it.
type App struct {
	mu       sync.Mutex
	state    AppState
	seq      uint64
	service  *Service
	saved    *SavedLocations
	provider string
}

// NewApp loads the saved list and returns an App ready for actions.
func NewApp(service *Service, saved *SavedLocations, provider string) *App {
	return &App{
		state:    NewAppState(saved.Load()),
		service:  service,
		saved:    saved,
		provider: provider,
	}
}

// State returns a snapshot of the current state.
func (a *App) State() AppState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Saved returns the saved list.
func (a *App) Saved() []Location {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Saved
}

// Search looks up query and makes it current. An empty query is a no-op.
// If another search started while this one was in flight, its result is
// dropped with ErrStaleRequest.
func (a *App) Search(ctx context.Context, query string) (AppState, error) {
	if strings.TrimSpace(query) == "" {
		return a.State(), nil
	}

	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.state = a.state.WithStatus("Finding location...")
	a.mu.Unlock()

	report, err := a.service.Lookup(ctx, query, a.provider)

	a.mu.Lock()
	defer a.mu.Unlock()

	if seq != a.seq {
		return a.state, ErrStaleRequest
	}
	if err != nil {
		a.state = a.state.WithError(err)
		return a.state, err
	}
	a.state = a.state.WithReport(report)
	return a.state, nil
}

// SelectSaved searches for a saved location by its display name.
func (a *App) SelectSaved(ctx context.Context, displayName string) (AppState, error) {
	a.mu.Lock()
	loc, ok := FindSaved(a.state.Saved, displayName)
	if !ok {
		a.state = a.state.WithError(fmt.Errorf("%w: %s", ErrNotFound, displayName))
		st := a.state
		a.mu.Unlock()
		return st, ErrNotFound
	}
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	report, err := a.service.ReportFor(ctx, loc, a.provider)

	a.mu.Lock()
	defer a.mu.Unlock()

	if seq != a.seq {
		return a.state, ErrStaleRequest
	}
	if err != nil {
		a.state = a.state.WithError(err)
		return a.state, err
	}
	a.state = a.state.WithReport(report)
	return a.state, nil
}

// SaveCurrent saves the current location and persists the list.
func (a *App) SaveCurrent() (AppState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.state.SaveCurrent()
	if err != nil {
		a.state = next
		return a.state, err
	}
	if err := a.saved.Persist(next.Saved); err != nil {
		a.state = a.state.WithError(err)
		return a.state, err
	}
	a.state = next
	return a.state, nil
}

// RemoveSaved removes displayName and persists the list.
func (a *App) RemoveSaved(displayName string) (AppState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.state.RemoveSaved(displayName)
	if err := a.saved.Persist(next.Saved); err != nil {
		a.state = a.state.WithError(err)
		return a.state, err
	}
	a.state = next
	return a.state, nil
}

// SelectTab switches the visible panel.
func (a *App) SelectTab(t Tab) AppState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = a.state.SelectTab(t)
	return a.state
}
