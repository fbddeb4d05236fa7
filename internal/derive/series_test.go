package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"BoltWatch.dashboard/internal/models"
)

func TestSampleSeries(t *testing.T) {
	readings := []models.Reading{
		{Num: 2, Distance: 9, Date: 100},
		{Num: 1, Distance: 3, Date: 300},
		{Num: 1, Distance: 1, Date: 100},
		{Num: 3, Distance: 9, Date: 50},
		{Num: 1, Distance: 2, Date: 200},
	}

	got := SampleSeries(readings)

	assert.Equal(t, []models.Reading{
		{Num: 1, Distance: 1, Date: 100},
		{Num: 1, Distance: 2, Date: 200},
		{Num: 1, Distance: 3, Date: 300},
	}, got)
}

func TestSampleSeriesStableOnEqualTimestamps(t *testing.T) {
	readings := []models.Reading{
		{Num: 1, Distance: 1, Date: 500},
		{Num: 1, Distance: 2, Date: 100},
		{Num: 1, Distance: 3, Date: 500},
		{Num: 1, Distance: 4, Date: 500},
	}

	got := SampleSeries(readings)

	distances := make([]float64, len(got))
	for i, r := range got {
		distances[i] = r.Distance
	}
	assert.Equal(t, []float64{2, 1, 3, 4}, distances)
}

func TestSampleSeriesProperties(t *testing.T) {
	readings := make([]models.Reading, 0, 60)
	for i := 0; i < 60; i++ {
		readings = append(readings, models.Reading{
			Num:  i%3 + 1,
			Date: int64((i * 7919) % 37),
		})
	}

	got := SampleSeries(readings)

	assert.LessOrEqual(t, len(got), len(readings))
	assert.Len(t, got, 20)
	for i, r := range got {
		assert.Equal(t, ActiveSeries, r.Num)
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].Date, r.Date)
		}
	}
}

func TestSampleSeriesEmpty(t *testing.T) {
	assert.Empty(t, SampleSeries(nil))
	assert.NotNil(t, SampleSeries(nil))
}

func TestSampleSeriesDoesNotMutateInput(t *testing.T) {
	readings := []models.Reading{{Num: 1, Date: 2}, {Num: 1, Date: 1}}

	SampleSeries(readings)

	assert.Equal(t, int64(2), readings[0].Date)
}
