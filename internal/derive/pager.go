package derive

import "BoltWatch.dashboard/internal/models"

const (
	// pagerLead is the selection below which the window is anchored at the
	// start of the list.
	pagerLead = 8
	// pagerSpan is the distance kept on each side of the selection, and the
	// size of the tail shown when the selection is near the end.
	pagerSpan = 7
)

// PagerWindow abbreviates numbers around selected. Note that selected is
// compared against positions, not values, and the window is taken by
// position as well.
//
//	selected < 8:               numbers[:selected+7] ... last
//	8 <= selected < len-7:      first ... numbers[selected-7:selected+7] ... last
//	otherwise:                  first ... numbers[len-7:]
//
// An empty list yields no markers.
func PagerWindow(selected int, numbers []int) []models.PageMarker {
	if len(numbers) == 0 {
		return []models.PageMarker{}
	}
	first := models.NumberMarker(numbers[0])
	last := models.NumberMarker(numbers[len(numbers)-1])

	var out []models.PageMarker
	switch {
	case selected < pagerLead:
		out = appendNumbers(out, clampSlice(numbers, 0, selected+pagerSpan))
		out = append(out, models.EllipsisMarker(), last)
	case selected < len(numbers)-pagerSpan:
		out = append(out, first, models.EllipsisMarker())
		out = appendNumbers(out, clampSlice(numbers, selected-pagerSpan, selected+pagerSpan))
		out = append(out, models.EllipsisMarker(), last)
	default:
		out = append(out, first, models.EllipsisMarker())
		out = appendNumbers(out, clampSlice(numbers, len(numbers)-pagerSpan, len(numbers)))
	}
	return out
}

func appendNumbers(out []models.PageMarker, nums []int) []models.PageMarker {
	for _, n := range nums {
		out = append(out, models.NumberMarker(n))
	}
	return out
}
