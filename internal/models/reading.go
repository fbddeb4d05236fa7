package models

import "time"

// Reading is one bolt measurement as returned by GET /api/bolt.
// Num is the series discriminant, Date is epoch milliseconds.
type Reading struct {
	Num         int     `json:"num"`
	Distance    float64 `json:"distance"`
	Temperature float64 `json:"temperature"`
	Date        int64   `json:"date"`
}

// Time converts Date to a time.Time. A zero Date yields the zero time.
func (r Reading) Time() time.Time {
	if r.Date == 0 {
		return time.Time{}
	}
	return time.UnixMilli(r.Date)
}
