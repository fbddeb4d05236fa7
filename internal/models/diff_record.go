package models

// DiffRecord is one row of GET /api/diff. Diff is supplied by the source
// and is not recomputed from Las and Ref.
type DiffRecord struct {
	Num  int     `json:"num"`
	Ref  float64 `json:"ref"`
	Las  float64 `json:"las"`
	Diff float64 `json:"diff"`
}
