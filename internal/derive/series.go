// Package derive holds the pure functions that turn the two fetched lists
// into what the dashboard draws. Nothing here keeps state.
package derive

import (
	"sort"

	"BoltWatch.dashboard/internal/models"
)

// ActiveSeries is the only reading discriminant that gets charted.
const ActiveSeries = 1

// SampleSeries keeps the readings of ActiveSeries and orders them by
// timestamp. Equal timestamps keep their input order.
func SampleSeries(readings []models.Reading) []models.Reading {
	sampled := make([]models.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Num == ActiveSeries {
			sampled = append(sampled, r)
		}
	}
	sort.SliceStable(sampled, func(i, j int) bool {
		return sampled[i].Date < sampled[j].Date
	})
	return sampled
}
