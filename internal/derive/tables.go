package derive

import "BoltWatch.dashboard/internal/models"

// TableCount is the number of side-by-side diff tables.
const TableCount = 4

// Bounds is a half-open [Start, End) range over the diff list. End < 0
// means "to the end of the list".
type Bounds struct {
	Start, End int
}

// TableBounds are the literal offsets of the four tables. Indexes 24, 49
// and 74 fall between tables and are never shown.
var TableBounds = [TableCount]Bounds{
	{Start: 0, End: 24},
	{Start: 25, End: 49},
	{Start: 50, End: 74},
	{Start: 75, End: -1},
}

// PartitionTables splits records into the four tables using TableBounds.
// Bounds past the end of the list are clamped, so short lists produce
// empty trailing tables.
func PartitionTables(records []models.DiffRecord) [TableCount][]models.DiffRecord {
	var tables [TableCount][]models.DiffRecord
	for i, b := range TableBounds {
		end := b.End
		if end < 0 {
			end = len(records)
		}
		tables[i] = clampSlice(records, b.Start, end)
	}
	return tables
}

// SequenceNumbers lists the Num of every record in fetch order.
func SequenceNumbers(records []models.DiffRecord) []int {
	nums := make([]int, len(records))
	for i, r := range records {
		nums[i] = r.Num
	}
	return nums
}

// clampSlice returns a copy of s[start:end] with both bounds clamped into
// [0, len(s)]. An inverted range yields an empty slice.
func clampSlice[T any](s []T, start, end int) []T {
	start = clamp(start, 0, len(s))
	end = clamp(end, 0, len(s))
	if end <= start {
		return []T{}
	}
	out := make([]T, end-start)
	copy(out, s[start:end])
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MarkSelected converts the partitioned tables into rows, flagging every
// row whose Num equals selected.
func MarkSelected(tables [TableCount][]models.DiffRecord, selected int) [][]models.TableRow {
	rows := make([][]models.TableRow, TableCount)
	for i, t := range tables {
		rows[i] = make([]models.TableRow, len(t))
		for j, rec := range t {
			rows[i][j] = models.TableRow{DiffRecord: rec, Selected: rec.Num == selected}
		}
	}
	return rows
}
