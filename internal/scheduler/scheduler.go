package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Refresher re-fetches a location's forecast into the cache.
type Refresher interface {
	Refresh(ctx context.Context, loc weather.Location) error
}

// SavedSource lists the locations worth keeping warm.
type SavedSource interface {
	Saved() []weather.Location
}

// SessionPruner drops idle autocomplete sessions.
type SessionPruner interface {
	Prune(maxIdle time.Duration) int
}

// Scheduler periodically refreshes forecasts for saved locations and prunes
// idle suggestion sessions.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	refresher   Refresher
	saved       SavedSource
	pruner      SessionPruner
	interval    time.Duration
	sessionIdle time.Duration
}

// New creates a new Scheduler. pruner may be nil.
func New(saved SavedSource, refresher Refresher, pruner SessionPruner, interval, sessionIdle time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:   s,
		refresher:   refresher,
		saved:       saved,
		pruner:      pruner,
		interval:    interval,
		sessionIdle: sessionIdle,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh interval disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(func() {
		log.Println("scheduler: running saved-location refresh job")
		n := s.RefreshSaved(context.Background())
		log.Printf("scheduler: refreshed %d saved locations", n)
	})
	if err != nil {
		return err
	}

	if s.pruner != nil && s.sessionIdle > 0 {
		_, err = s.scheduler.Every(s.sessionIdle).Do(func() {
			if n := s.pruner.Prune(s.sessionIdle); n > 0 {
				log.Printf("scheduler: pruned %d idle suggestion sessions", n)
			}
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// RefreshSaved re-fetches every saved location concurrently and returns how
// many refreshed successfully.
func (s *Scheduler) RefreshSaved(ctx context.Context) int {
	locs := s.saved.Saved()
	if len(locs) == 0 {
		return 0
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, loc := range locs {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := s.refresher.Refresh(ctx, loc); err != nil {
				log.Printf("scheduler: refresh failed for %s: %v", loc.Key(), err)
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}(loc)
	}
	wg.Wait()
	return ok
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
