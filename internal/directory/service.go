package directory

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/metrics"
	"facility-buddy-backend/internal/model"
	"facility-buddy-backend/internal/upstream"
)

// InfoClient is the slice of the upstream client the refresh cycle needs.
type InfoClient interface {
	CurrentFacility(ctx context.Context) (upstream.FacilityInfo, error)
	SetFacility(ctx context.Context, orgID int64) (upstream.FacilityInfo, error)
	SchedulableFacilityIDs(ctx context.Context) ([]int64, error)
	FacilityImage(ctx context.Context, orgID int64) string
}

// Geocoder resolves an address to coordinates; nil coordinates mean the
// address could not be resolved, which is not an error.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (lat, lng *float64, err error)
}

// Store is the slice of the persistence layer the directory owns.
type Store interface {
	LoadDirectory(ctx context.Context) ([]model.Facility, time.Time, error)
	ReplaceDirectory(ctx context.Context, facilities []model.Facility, refreshedAt time.Time) error
}

// Directory is the locally cached set of schedulable facilities.
type Directory struct {
	Facilities  []model.Facility `json:"facilities"`
	RefreshedAt time.Time        `json:"refreshedAt"`
}

// Service owns the persisted facility directory and its refresh cycle.
type Service struct {
	cfg     *config.DirectoryConfig
	store   Store
	info    InfoClient
	geo     Geocoder
	metrics *metrics.Metrics

	// Refresh cycles are serialized. A cycle walks facilities one at a time
	// on purpose: it bounds load on the upstream, and it keeps the
	// session-context save/restore free of races.
	mu sync.Mutex
}

// NewService creates the directory service.
func NewService(cfg *config.DirectoryConfig, store Store, info InfoClient, geo Geocoder, m *metrics.Metrics) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		info:    info,
		geo:     geo,
		metrics: m,
	}
}

// EnsureFresh returns the facility directory, refreshing it first when it is
// stale, incomplete, or force is set. A fresh and fully complete directory
// is returned without any network traffic.
//
// Refresh is all-or-nothing at the id-list level: if the authoritative list
// cannot be fetched the cycle aborts, the error surfaces, and the previous
// directory stays untouched. Below that it is best-effort per facility: a
// facility that fails to fetch or geocode is skipped for this cycle and will
// be picked up by a later one.
func (s *Service) EnsureFresh(ctx context.Context, force bool) (Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, refreshedAt, err := s.store.LoadDirectory(ctx)
	if err != nil {
		log.Printf("directory: could not load persisted directory, treating as empty: %v", err)
		cached, refreshedAt = nil, time.Time{}
	}

	if !force && len(cached) > 0 && time.Since(refreshedAt) < s.cfg.TTL && allComplete(cached) {
		return Directory{Facilities: cached, RefreshedAt: refreshedAt}, nil
	}

	ids, err := s.info.SchedulableFacilityIDs(ctx)
	if err != nil {
		return Directory{}, fmt.Errorf("failed to fetch schedulable facility list: %w", err)
	}

	cachedByID := make(map[int64]model.Facility, len(cached))
	for _, f := range cached {
		cachedByID[f.OrgID] = f
	}

	// Building a facility's entry switches the upstream session context to
	// that facility. Remember where the session pointed so the user's live
	// context can be put back afterwards. Best-effort: if the current
	// facility cannot be read, restoration is simply skipped.
	var restoreID int64
	if current, err := s.info.CurrentFacility(ctx); err != nil {
		log.Printf("directory: could not capture current facility, context will not be restored: %v", err)
	} else {
		restoreID = current.OrgID
	}

	start := time.Now()
	facilities := make([]model.Facility, 0, len(ids))
	for _, id := range ids {
		if f, ok := cachedByID[id]; ok && f.Complete() && !force {
			facilities = append(facilities, f)
			continue
		}

		f, err := s.buildFacility(ctx, id)
		if err != nil {
			log.Printf("directory: skipping facility %d this cycle: %v", id, err)
			continue
		}
		facilities = append(facilities, f)
	}

	if restoreID != 0 {
		// Response discarded; the call exists only for its side effect.
		if _, err := s.info.SetFacility(ctx, restoreID); err != nil {
			log.Printf("directory: failed to restore session context to facility %d: %v", restoreID, err)
		}
	}

	s.metrics.ObserveRefreshDuration(time.Since(start).Seconds())

	now := time.Now()
	if err := s.store.ReplaceDirectory(ctx, facilities, now); err != nil {
		return Directory{}, fmt.Errorf("failed to persist refreshed directory: %w", err)
	}

	log.Printf("directory: refresh complete, %d of %d facilities cached", len(facilities), len(ids))
	return Directory{Facilities: facilities, RefreshedAt: now}, nil
}

// buildFacility assembles a fresh entry: detail (which moves the session
// context), geocode, image. Unresolvable coordinates are kept as nil; the
// entry stays in the directory but is unrankable and will be re-attempted
// next cycle.
func (s *Service) buildFacility(ctx context.Context, id int64) (model.Facility, error) {
	attempts := 1 + s.cfg.PerFacilityRetries
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		info, err := s.info.SetFacility(ctx, id)
		if err != nil {
			lastErr = err
			continue
		}

		lat, lng, err := s.geo.Resolve(ctx, info.Address)
		if err != nil {
			lastErr = fmt.Errorf("geocoding %q: %w", info.Address, err)
			continue
		}

		return model.Facility{
			OrgID:     id,
			Name:      info.Name,
			Address:   info.Address,
			Latitude:  lat,
			Longitude: lng,
			ImageURL:  s.info.FacilityImage(ctx, id),
		}, nil
	}
	return model.Facility{}, lastErr
}

func allComplete(facilities []model.Facility) bool {
	for _, f := range facilities {
		if !f.Complete() {
			return false
		}
	}
	return true
}
