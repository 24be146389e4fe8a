package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"facility-buddy-backend/internal/aggregate"
	"facility-buddy-backend/internal/upstream"
)

// scriptedAvailability serves fixed slots for every facility.
type scriptedAvailability struct {
	slots map[int64][]upstream.AvailabilitySlot
}

func (s *scriptedAvailability) FetchAvailability(ctx context.Context, facilityID int64, date time.Time) ([]upstream.AvailabilitySlot, error) {
	return s.slots[facilityID], nil
}

func setupSelectionRouter(client aggregate.AvailabilityClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	handler := NewHandler(nil, nil, aggregate.New(client, nil), nil, nil, 3)
	r.GET("/api/selection", handler.GetSelection)
	r.PUT("/api/selection", handler.PutSelection)
	r.DELETE("/api/selection", handler.DeleteSelection)
	r.GET("/api/comparison", handler.GetComparison)
	return r
}

func TestSelection_RoundTrip(t *testing.T) {
	router := setupSelectionRouter(&scriptedAvailability{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/selection", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"selected":[]}`, w.Body.String())

	for _, body := range []string{`{"orgId":102}`, `{"orgId":101}`, `{"orgId":102}`} {
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("PUT", "/api/selection", strings.NewReader(body))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/selection", nil)
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"selected":[102,101]}`, w.Body.String(), "insertion order kept, duplicates collapsed")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/selection", strings.NewReader(`{"orgId":102}`))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/selection", nil)
	router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"selected":[101]}`, w.Body.String())
}

func TestPutSelection_InvalidBody(t *testing.T) {
	router := setupSelectionRouter(&scriptedAvailability{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/selection", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetComparison(t *testing.T) {
	seats := 4
	client := &scriptedAvailability{slots: map[int64][]upstream.AvailabilitySlot{
		101: {{Category: upstream.CategoryBaptism, Time: "08:00", Seats: &seats}},
	}}
	router := setupSelectionRouter(client)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/selection", strings.NewReader(`{"orgId":101}`))
	router.ServeHTTP(w, req)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/comparison?date=2026-03-05", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"date":"2026-03-05"`)
	assert.Contains(t, w.Body.String(), `"101"`)
	assert.Contains(t, w.Body.String(), `"appointmentCategory":"BAPTISM"`)
}

func TestGetComparison_InvalidDate(t *testing.T) {
	router := setupSelectionRouter(&scriptedAvailability{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/comparison?date=03-05-2026", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
