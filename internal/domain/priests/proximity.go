package priests

import (
	"sort"

	"priestbook/backend/internal/geo"
	"priestbook/backend/internal/models"
)

// Candidate is a priest annotated with the distance to a search center.
type Candidate struct {
	Priest     models.PriestProfile
	DistanceKm float64
}

// Nearby filters candidates to those within radiusKm of center, nearest
// first. Priests without a stored location are skipped, not errors. The
// sort is stable: equal distances keep their input order.
func Nearby(candidates []models.PriestProfile, center geo.LatLng, radiusKm float64) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, p := range candidates {
		if p.Location == nil {
			continue
		}
		d := geo.Distance(center, geo.LatLng{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
		})
		if d <= radiusKm {
			out = append(out, Candidate{Priest: p, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
