package watch

import (
	"context"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-buddy-backend/config"
	"facility-buddy-backend/internal/model"
	"facility-buddy-backend/internal/upstream"
)

// fakeAvailability scripts per-facility slots and counts fetches.
type fakeAvailability struct {
	slots map[int64][]upstream.AvailabilitySlot
	errs  map[int64]error
	calls map[int64]int
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{
		slots: make(map[int64][]upstream.AvailabilitySlot),
		errs:  make(map[int64]error),
		calls: make(map[int64]int),
	}
}

func (f *fakeAvailability) FetchAvailability(ctx context.Context, facilityID int64, date time.Time) ([]upstream.AvailabilitySlot, error) {
	f.calls[facilityID]++
	if err := f.errs[facilityID]; err != nil {
		return nil, err
	}
	return f.slots[facilityID], nil
}

func drainJobs(pool *WorkerPool) []Job {
	var jobs []Job
	for {
		select {
		case job := <-pool.Jobs():
			jobs = append(jobs, job)
		default:
			return jobs
		}
	}
}

func newTestWatcher(s *mockStore, client *fakeAvailability) (*Watcher, *WorkerPool) {
	pool := NewWorkerPool(8, s, &webpush.Options{})
	cfg := &config.WatcherConfig{Enabled: true, Interval: time.Minute}
	return NewWatcher(cfg, s, client, pool), pool
}

func TestCheckOnce_DispatchesForOpenSessions(t *testing.T) {
	s := newMockStore()
	s.watched = []int64{101, 102}
	s.facilities = []model.Facility{{OrgID: 101, Name: "Springfield Facility"}}

	seats := 5
	client := newFakeAvailability()
	client.slots[101] = []upstream.AvailabilitySlot{
		{Category: upstream.CategoryBaptism, Time: "08:00", Seats: &seats},
		{Category: upstream.CategoryEndowment, Time: "09:00", Seats: &seats},
	}

	w, pool := newTestWatcher(s, client)
	w.CheckOnce(context.Background())

	jobs := drainJobs(pool)
	require.Len(t, jobs, 1, "facility 102 has no open sessions")
	assert.Equal(t, int64(101), jobs[0].FacilityID)
	assert.Equal(t, "Springfield Facility", jobs[0].Name)
	assert.Equal(t, 2, jobs[0].OpenSlots)
}

func TestCheckOnce_NotifiesOncePerDay(t *testing.T) {
	s := newMockStore()
	s.watched = []int64{101}

	seats := 1
	client := newFakeAvailability()
	client.slots[101] = []upstream.AvailabilitySlot{
		{Category: upstream.CategoryBaptism, Time: "08:00", Seats: &seats},
	}

	w, pool := newTestWatcher(s, client)
	w.CheckOnce(context.Background())
	w.CheckOnce(context.Background())

	assert.Len(t, drainJobs(pool), 1, "a facility-day pair is only announced once")
	assert.Equal(t, 1, client.calls[101], "already-notified days are not refetched")
}

func TestCheckOnce_RetriesEmptyAndFailedDays(t *testing.T) {
	s := newMockStore()
	s.watched = []int64{101, 102}

	client := newFakeAvailability()
	client.errs[102] = upstream.ErrRequestFailed

	w, pool := newTestWatcher(s, client)
	w.CheckOnce(context.Background())
	assert.Empty(t, drainJobs(pool))

	// Openings appear later the same day; the next round picks them up.
	seats := 3
	delete(client.errs, 102)
	client.slots[101] = []upstream.AvailabilitySlot{
		{Category: upstream.CategorySealing, Time: "10:00", Seats: &seats},
	}
	client.slots[102] = []upstream.AvailabilitySlot{
		{Category: upstream.CategoryBaptism, Time: "11:00", Seats: &seats},
	}

	w.CheckOnce(context.Background())
	assert.Len(t, drainJobs(pool), 2)
}

func TestCheckOnce_NoWatchersNoFetch(t *testing.T) {
	s := newMockStore()
	client := newFakeAvailability()

	w, pool := newTestWatcher(s, client)
	w.CheckOnce(context.Background())

	assert.Empty(t, drainJobs(pool))
	assert.Empty(t, client.calls)
}
