package models

import "time"

// FetchState describes where a single fetch stands.
type FetchState string

const (
	FetchIdle     FetchState = "idle"
	FetchFetching FetchState = "fetching"
	FetchLoaded   FetchState = "loaded"
	FetchFailed   FetchState = "failed"
)

// FetchStatus is the last known state of one of the two floor fetches.
// A failed status keeps the previously loaded list on display.
type FetchStatus struct {
	State     FetchState `json:"state"`
	Floor     int        `json:"floor"`
	Round     string     `json:"round,omitempty"`
	Error     string     `json:"error,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Stale reports whether the list on display may not match the floor.
func (s FetchStatus) Stale() bool {
	return s.State == FetchFailed
}

// TableRow is a DiffRecord decorated with the pager selection.
type TableRow struct {
	DiffRecord
	Selected bool `json:"selected"`
}

// DashboardView is everything the presentation layer needs for one render.
type DashboardView struct {
	Floor    int          `json:"floor"`
	Floors   []int        `json:"floors"`
	Selected int          `json:"selected"`
	Series   []Reading    `json:"series"`
	Tables   [][]TableRow `json:"tables"`
	Pager    []PageMarker `json:"pager"`
	Bolt     FetchStatus  `json:"bolt"`
	Diff     FetchStatus  `json:"diff"`
}
