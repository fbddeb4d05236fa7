package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EllipsisToken is the placeholder shown between pager windows.
const EllipsisToken = "..."

// PageMarker is a single pager entry: either a sequence number or the
// ellipsis placeholder.
type PageMarker struct {
	Number   int
	Ellipsis bool
}

func NumberMarker(n int) PageMarker { return PageMarker{Number: n} }

func EllipsisMarker() PageMarker { return PageMarker{Ellipsis: true} }

func (m PageMarker) String() string {
	if m.Ellipsis {
		return EllipsisToken
	}
	return strconv.Itoa(m.Number)
}

// MarshalJSON encodes numbers as JSON numbers and the ellipsis as "...".
func (m PageMarker) MarshalJSON() ([]byte, error) {
	if m.Ellipsis {
		return json.Marshal(EllipsisToken)
	}
	return json.Marshal(m.Number)
}

func (m *PageMarker) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != EllipsisToken {
			return fmt.Errorf("page marker: unexpected string %q", s)
		}
		*m = EllipsisMarker()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = NumberMarker(n)
	return nil
}
