package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-buddy-backend/internal/model"
)

func ptr(v float64) *float64 { return &v }

func coords(id int64, lat, lng float64) model.Facility {
	return model.Facility{OrgID: id, Latitude: ptr(lat), Longitude: ptr(lng)}
}

func TestHaversine(t *testing.T) {
	// Salt Lake City <-> Provo, roughly 62 km.
	d := Haversine(40.7608, -111.8910, 40.2338, -111.6585)
	assert.InDelta(t, 62, d, 3)

	assert.Zero(t, Haversine(40.76, -111.89, 40.76, -111.89))

	// Symmetry holds for arbitrary pairs.
	pairs := [][4]float64{
		{0, 0, 10, 10},
		{-33.86, 151.2, 51.5, -0.12},
		{89.9, 179.9, -89.9, -179.9},
	}
	for _, p := range pairs {
		assert.InDelta(t, Haversine(p[0], p[1], p[2], p[3]), Haversine(p[2], p[3], p[0], p[1]), 1e-9)
	}
}

func TestNearby_Properties(t *testing.T) {
	facilities := []model.Facility{
		coords(1, 40.0, -111.0),
		coords(2, 40.1, -111.0),
		{OrgID: 3}, // no coordinates, never ranked
		coords(4, 41.0, -111.0),
		coords(5, 40.5, -111.0),
	}

	result := Nearby(facilities, 1, 3)
	require.Len(t, result, 3)

	// Closest first, self excluded, unrankable excluded.
	assert.Equal(t, int64(2), result[0].OrgID)
	assert.Equal(t, int64(5), result[1].OrgID)
	assert.Equal(t, int64(4), result[2].OrgID)
	for _, f := range result {
		assert.NotEqual(t, int64(1), f.OrgID)
		assert.NotEqual(t, int64(3), f.OrgID)
	}

	// Distances are non-decreasing.
	origin := facilities[0]
	prev := -1.0
	for _, f := range result {
		d := Haversine(*origin.Latitude, *origin.Longitude, *f.Latitude, *f.Longitude)
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}
}

func TestNearby_CountCap(t *testing.T) {
	facilities := []model.Facility{
		coords(1, 40.0, -111.0),
		coords(2, 40.1, -111.0),
	}
	assert.Len(t, Nearby(facilities, 1, 5), 1)
	assert.Empty(t, Nearby(facilities, 1, 0))
}

func TestNearby_TiesKeepDirectoryOrder(t *testing.T) {
	// 2 and 4 are equidistant from 1; 2 precedes 4 in the directory.
	facilities := []model.Facility{
		coords(1, 40.0, -111.0),
		coords(2, 40.2, -111.0),
		coords(4, 39.8, -111.0),
	}
	result := Nearby(facilities, 1, 2)
	require.Len(t, result, 2)
	assert.Equal(t, int64(2), result[0].OrgID)
	assert.Equal(t, int64(4), result[1].OrgID)
}

func TestNearby_UnrankableOrigin(t *testing.T) {
	facilities := []model.Facility{
		{OrgID: 1},
		coords(2, 40.1, -111.0),
	}
	assert.Empty(t, Nearby(facilities, 1, 3), "origin without coordinates is unrankable")
	assert.Empty(t, Nearby(facilities, 99, 3), "unknown origin yields nothing")
}
