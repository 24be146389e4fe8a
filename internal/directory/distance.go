package directory

import (
	"math"
	"sort"

	"facility-buddy-backend/internal/model"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance in kilometers between two
// coordinate pairs.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Nearby returns up to count facilities closest to the origin facility,
// nearest first. The origin itself is excluded, as is any facility without
// coordinates. Ties keep the directory's relative order. If the origin is
// missing from the directory or unrankable, the result is empty.
func Nearby(facilities []model.Facility, originID int64, count int) []model.Facility {
	var origin *model.Facility
	for i := range facilities {
		if facilities[i].OrgID == originID {
			origin = &facilities[i]
			break
		}
	}
	if origin == nil || origin.Latitude == nil || origin.Longitude == nil {
		return nil
	}

	type ranked struct {
		facility model.Facility
		dist     float64
	}
	candidates := make([]ranked, 0, len(facilities))
	for _, f := range facilities {
		if f.OrgID == originID || f.Latitude == nil || f.Longitude == nil {
			continue
		}
		candidates = append(candidates, ranked{
			facility: f,
			dist:     Haversine(*origin.Latitude, *origin.Longitude, *f.Latitude, *f.Longitude),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	if count < 0 {
		count = 0
	}
	if count > len(candidates) {
		count = len(candidates)
	}
	result := make([]model.Facility, 0, count)
	for _, c := range candidates[:count] {
		result = append(result, c.facility)
	}
	return result
}
