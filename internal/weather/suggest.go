package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/i474232898/weather-lookup/internal/observability"
)

// Searcher is the lookup the Suggester debounces.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Location, error)
}

// Suggester debounces autocomplete lookups per session. Every request
// carries a sequence number that must grow within a session; only the newest
// request's result is ever returned, older ones get ErrStaleRequest.
type Suggester struct {
	searcher Searcher
	clock    clock.Clock
	delay    time.Duration
	limit    int

	mu     sync.Mutex
	latest map[string]sessionSeq
}

type sessionSeq struct {
	seq      uint64
	lastSeen time.Time
}

// NewSuggester creates a Suggester waiting delay before each lookup.
func NewSuggester(searcher Searcher, clk clock.Clock, delay time.Duration, limit int) *Suggester {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Suggester{
		searcher: searcher,
		clock:    clk,
		delay:    delay,
		limit:    limit,
		latest:   make(map[string]sessionSeq),
	}
}

// Suggest returns matches for query unless a newer request for the same
// session supersedes it before the result is ready.
func (s *Suggester) Suggest(ctx context.Context, session string, seq uint64, query string) ([]Location, error) {
	if !s.register(session, seq) {
		return nil, staleSuggestion(session, seq)
	}

	if s.delay > 0 {
		timer := s.clock.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C():
		}
	}

	if !s.isLatest(session, seq) {
		return nil, staleSuggestion(session, seq)
	}

	locs, err := s.searcher.Search(ctx, query, s.limit)
	if err != nil {
		return nil, err
	}

	if !s.isLatest(session, seq) {
		return nil, staleSuggestion(session, seq)
	}
	return locs, nil
}

func staleSuggestion(session string, seq uint64) error {
	observability.StaleSuggestions.Inc()
	return fmt.Errorf("%w: session %s seq %d", ErrStaleRequest, session, seq)
}

// Forget drops a session's sequence tracking.
func (s *Suggester) Forget(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.latest, session)
}

func (s *Suggester) register(session string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.latest[session]; ok && seq <= cur.seq {
		return false
	}
	s.latest[session] = sessionSeq{seq: seq, lastSeen: s.clock.Now()}
	return true
}

func (s *Suggester) isLatest(session string, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[session].seq == seq
}

// Prune forgets sessions idle for longer than maxIdle and returns how many were dropped.
func (s *Suggester) Prune(maxIdle time.Duration) int {
	cutoff := s.clock.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for session, cur := range s.latest {
		if cur.lastSeen.Before(cutoff) {
			delete(s.latest, session)
			dropped++
		}
	}
	return dropped
}
