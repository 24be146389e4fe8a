package aggregate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/patrickmn/go-cache"

	"facility-buddy-backend/internal/metrics"
	"facility-buddy-backend/internal/upstream"
)

// AvailabilityClient is the slice of the upstream client the aggregator uses.
type AvailabilityClient interface {
	FetchAvailability(ctx context.Context, facilityID int64, date time.Time) ([]upstream.AvailabilitySlot, error)
}

// Aggregator fetches per-facility availability and memoizes results by
// (facility, calendar day). Entries never expire within a process lifetime:
// past days are naturally immutable, and same-day staleness (seats taken by
// other users after we cached) is an accepted window rather than a TTL
// guess.
type Aggregator struct {
	client  AvailabilityClient
	results *cache.Cache
	metrics *metrics.Metrics
}

// New creates an aggregator.
func New(client AvailabilityClient, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		client:  client,
		results: cache.New(cache.NoExpiration, 0),
		metrics: m,
	}
}

// cacheKey keys results by calendar day only, so every lookup for the same
// facility and day within a session costs one upstream round trip.
func cacheKey(facilityID int64, date time.Time) string {
	return fmt.Sprintf("%d_%s", facilityID, date.Format("2006-01-02"))
}

// GetOrFetch returns the cached slots for (facility, day), fetching and
// caching them on a miss. Empty results are cached too; only a failed fetch
// leaves the key unset so a later call can retry.
func (a *Aggregator) GetOrFetch(ctx context.Context, facilityID int64, date time.Time) ([]upstream.AvailabilitySlot, error) {
	key := cacheKey(facilityID, date)
	if v, found := a.results.Get(key); found {
		a.metrics.ObserveCache("availability", "hit")
		return v.([]upstream.AvailabilitySlot), nil
	}
	a.metrics.ObserveCache("availability", "miss")

	slots, err := a.client.FetchAvailability(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}

	a.results.Set(key, slots, cache.NoExpiration)
	return slots, nil
}

// RenderSet resolves availability for every facility in the selection, in
// insertion order. One facility failing does not abort the others; it is
// simply absent from the result map.
func (a *Aggregator) RenderSet(ctx context.Context, sel *SelectionSet, date time.Time) map[int64][]upstream.AvailabilitySlot {
	result := make(map[int64][]upstream.AvailabilitySlot)
	for _, id := range sel.IDs() {
		slots, err := a.GetOrFetch(ctx, id, date)
		if err != nil {
			log.Printf("aggregate: availability for facility %d unavailable: %v", id, err)
			continue
		}
		result[id] = slots
	}
	return result
}
