package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"BoltWatch.dashboard/internal/models"
)

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func markers(items ...any) []models.PageMarker {
	out := make([]models.PageMarker, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case int:
			out = append(out, models.NumberMarker(v))
		case []int:
			for _, n := range v {
				out = append(out, models.NumberMarker(n))
			}
		case string:
			out = append(out, models.EllipsisMarker())
		}
	}
	return out
}

func TestPagerWindow(t *testing.T) {
	numbers := seq(1, 30)

	tests := []struct {
		name     string
		selected int
		want     []models.PageMarker
	}{
		{"head from zero", 0, markers(seq(1, 7), "...", 30)},
		{"head default selection", 1, markers(seq(1, 8), "...", 30)},
		{"head upper edge", 7, markers(seq(1, 14), "...", 30)},
		{"middle lower edge", 8, markers(1, "...", seq(2, 15), "...", 30)},
		{"middle", 15, markers(1, "...", seq(9, 22), "...", 30)},
		{"middle upper edge", 22, markers(1, "...", seq(16, 29), "...", 30)},
		{"tail lower edge", 23, markers(1, "...", seq(24, 30))},
		{"tail", 29, markers(1, "...", seq(24, 30))},
		{"past the end", 500, markers(1, "...", seq(24, 30))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PagerWindow(tt.selected, numbers))
		})
	}
}

func TestPagerWindowEmpty(t *testing.T) {
	assert.Empty(t, PagerWindow(1, nil))
	assert.Empty(t, PagerWindow(20, []int{}))
}

func TestPagerWindowShortLists(t *testing.T) {
	assert.Equal(t, markers(1, 2, 3, "...", 3), PagerWindow(1, []int{1, 2, 3}))
	assert.Equal(t, markers(1, "...", 1, 2, 3), PagerWindow(9, []int{1, 2, 3}))
	assert.Equal(t, markers(1, "...", 1, 2, 3, 4, 5), PagerWindow(9, []int{1, 2, 3, 4, 5}))
	assert.Equal(t, markers("...", 5), PagerWindow(-20, []int{5}))
}

func TestPagerWindowUsesPositionsNotValues(t *testing.T) {
	numbers := seq(101, 130)

	got := PagerWindow(15, numbers)

	assert.Equal(t, markers(101, "...", seq(109, 122), "...", 130), got)
}
