package watch

import (
	"context"
	"fmt"
	"log"
	"time"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/aggregate"
	"facility-buddy-backend/internal/store"
)

// Watcher periodically checks today's availability for every facility that
// has at least one push subscription and dispatches a notification job the
// first time a day shows open sessions.
//
// It deliberately bypasses the aggregator's result cache: cached entries
// never expire within a session, but the watcher's whole purpose is to see
// same-day changes.
type Watcher struct {
	cfg      *config.WatcherConfig
	store    store.Store
	client   aggregate.AvailabilityClient
	pool     *WorkerPool
	notified map[string]bool
}

// NewWatcher creates a watcher.
func NewWatcher(cfg *config.WatcherConfig, s store.Store, client aggregate.AvailabilityClient, pool *WorkerPool) *Watcher {
	return &Watcher{
		cfg:      cfg,
		store:    s,
		client:   client,
		pool:     pool,
		notified: make(map[string]bool),
	}
}

// Run starts the watch loop.
func (w *Watcher) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		log.Println("Availability watcher is disabled. Not starting.")
		return
	}
	log.Println("Starting availability watcher...")

	w.pool.Start(ctx)
	w.CheckOnce(ctx)

	timer := time.NewTimer(w.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Availability watcher shutting down.")
			return
		case <-timer.C:
			w.CheckOnce(ctx)
			timer.Reset(w.cfg.Interval)
		}
	}
}

// CheckOnce performs a single round over all watched facilities.
func (w *Watcher) CheckOnce(ctx context.Context) {
	ids, err := w.store.WatchedFacilityIDs(ctx)
	if err != nil {
		log.Printf("watch: could not list watched facilities: %v", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	names := w.facilityNames(ctx)

	today := time.Now()
	for _, id := range ids {
		key := fmt.Sprintf("%d_%s", id, today.Format("2006-01-02"))
		if w.notified[key] {
			continue
		}

		slots, err := w.client.FetchAvailability(ctx, id, today)
		if err != nil {
			log.Printf("watch: availability check for facility %d failed: %v", id, err)
			continue
		}
		if len(slots) == 0 {
			continue
		}

		w.pool.Dispatch(Job{FacilityID: id, Name: names[id], OpenSlots: len(slots)})
		w.notified[key] = true
	}
}

// facilityNames maps watched ids to display names, best-effort.
func (w *Watcher) facilityNames(ctx context.Context) map[int64]string {
	names := make(map[int64]string)
	facilities, _, err := w.store.LoadDirectory(ctx)
	if err != nil {
		log.Printf("watch: could not load directory for names: %v", err)
		return names
	}
	for _, f := range facilities {
		names[f.OrgID] = f.Name
	}
	return names
}
