package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// availabilityServer programs per-category session lists and records the
// request payloads it saw.
type availabilityServer struct {
	mu       sync.Mutex
	sessions map[string][]map[string]any // appointmentType -> sessionList
	statuses map[string]int              // appointmentType -> forced status
	payloads []sessionInfoRequest
}

func (s *availabilityServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionInfoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		s.mu.Lock()
		s.payloads = append(s.payloads, req)
		status := s.statuses[req.AppointmentType]
		sessions := s.sessions[req.AppointmentType]
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"sessionList": sessions})
	}
}

func TestFetchAvailability_FiltersAndNormalizes(t *testing.T) {
	srv := &availabilityServer{
		sessions: map[string][]map[string]any{
			"PROXY_BAPTISM": {
				{"sessionTime": "08:00", "appointmentType": "PROXY_BAPTISM", "details": map[string]any{"roomFull": false, "seatsAvailable": 5}},
				{"sessionTime": "09:00", "appointmentType": "PROXY_BAPTISM", "details": map[string]any{"roomFull": true, "seatsAvailable": 5}},
				{"sessionTime": "10:00", "appointmentType": "PROXY_BAPTISM", "details": map[string]any{"roomFull": false, "seatsAvailable": 0}},
			},
			"PROXY_INITIATORY": {
				{"sessionTime": "11:30", "appointmentType": "PROXY_INITIATORY", "details": map[string]any{"roomFull": false, "maleSeatsAvailable": 0, "femaleSeatsAvailable": 2}},
				{"sessionTime": "12:00", "appointmentType": "PROXY_INITIATORY", "details": map[string]any{"roomFull": false, "maleSeatsAvailable": 0, "femaleSeatsAvailable": 0}},
				{"sessionTime": "12:30", "appointmentType": "PROXY_INITIATORY", "details": map[string]any{"roomFull": false, "maleSeatsAvailable": "n/a", "femaleSeatsAvailable": 3}},
			},
			"PROXY_SEALING": {
				{"sessionTime": "14:00", "appointmentType": "PROXY_SEALING", "details": map[string]any{"roomFull": false, "seatsAvailable": 1}},
			},
		},
	}
	server := httptest.NewServer(srv.handler(t))
	defer server.Close()

	date := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	slots, err := newTestClient(server.URL).FetchAvailability(context.Background(), 101, date)
	require.NoError(t, err)

	// Room-full and zero-seat sessions are dropped; categories come back in
	// declaration order regardless of which request finished first.
	require.Len(t, slots, 4)

	assert.Equal(t, CategoryBaptism, slots[0].Category)
	assert.Equal(t, "08:00", slots[0].Time)
	require.NotNil(t, slots[0].Seats)
	assert.Equal(t, 5, *slots[0].Seats)
	assert.Nil(t, slots[0].MaleSeats)

	assert.Equal(t, CategoryInitiatory, slots[1].Category)
	assert.Equal(t, "11:30", slots[1].Time)
	require.NotNil(t, slots[1].MaleSeats)
	require.NotNil(t, slots[1].FemaleSeats)
	assert.Equal(t, 0, *slots[1].MaleSeats)
	assert.Equal(t, 2, *slots[1].FemaleSeats)
	assert.Nil(t, slots[1].Seats)

	// Non-numeric male seat count reads as zero but the slot survives on the
	// female count.
	assert.Equal(t, "12:30", slots[2].Time)
	assert.Equal(t, 0, *slots[2].MaleSeats)
	assert.Equal(t, 3, *slots[2].FemaleSeats)

	assert.Equal(t, CategorySealing, slots[3].Category)
	assert.Equal(t, "14:00", slots[3].Time)
}

func TestFetchAvailability_ZeroBasedMonthPayload(t *testing.T) {
	srv := &availabilityServer{}
	server := httptest.NewServer(srv.handler(t))
	defer server.Close()

	date := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	_, err := newTestClient(server.URL).FetchAvailability(context.Background(), 42, date)
	require.NoError(t, err)

	require.Len(t, srv.payloads, 4)
	seen := make(map[string]bool)
	for _, p := range srv.payloads {
		assert.Equal(t, 2026, p.SessionYear)
		assert.Equal(t, 0, p.SessionMonth, "January must be sent as month 0")
		assert.Equal(t, 15, p.SessionDay)
		assert.Equal(t, int64(42), p.FacilityOrgID)
		assert.False(t, p.IsGuestConfirmation)
		seen[p.AppointmentType] = true
	}
	assert.Len(t, seen, 4, "one request per category")
}

func TestFetchAvailability_SkipsFailedCategory(t *testing.T) {
	srv := &availabilityServer{
		sessions: map[string][]map[string]any{
			"PROXY_BAPTISM": {
				{"sessionTime": "08:00", "appointmentType": "PROXY_BAPTISM", "details": map[string]any{"roomFull": false, "seatsAvailable": 2}},
			},
		},
		statuses: map[string]int{"PROXY_ENDOWMENT": http.StatusInternalServerError},
	}
	server := httptest.NewServer(srv.handler(t))
	defer server.Close()

	slots, err := newTestClient(server.URL).FetchAvailability(context.Background(), 101, time.Now())
	require.NoError(t, err, "a failed category contributes no slots but does not fail the fetch")
	require.Len(t, slots, 1)
	assert.Equal(t, CategoryBaptism, slots[0].Category)
}

func TestFetchAvailability_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Connection refused from here on.

	_, err := newTestClient(server.URL).FetchAvailability(context.Background(), 101, time.Now())
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestFetchAvailability_NeverReturnsFullOrEmptySlots(t *testing.T) {
	srv := &availabilityServer{
		sessions: map[string][]map[string]any{
			"PROXY_INITIATORY": {
				{"sessionTime": "09:00", "appointmentType": "PROXY_INITIATORY", "details": map[string]any{"roomFull": true, "maleSeatsAvailable": 4, "femaleSeatsAvailable": 4}},
				{"sessionTime": "10:00", "appointmentType": "PROXY_INITIATORY", "details": map[string]any{"roomFull": false, "maleSeatsAvailable": 1, "femaleSeatsAvailable": 0}},
			},
		},
	}
	server := httptest.NewServer(srv.handler(t))
	defer server.Close()

	slots, err := newTestClient(server.URL).FetchAvailability(context.Background(), 7, time.Now())
	require.NoError(t, err)

	for _, slot := range slots {
		if slot.Category == CategoryInitiatory {
			assert.True(t, *slot.MaleSeats > 0 || *slot.FemaleSeats > 0)
		} else {
			assert.True(t, *slot.Seats > 0)
		}
	}
	require.Len(t, slots, 1)
	assert.Equal(t, "10:00", slots[0].Time)
}
