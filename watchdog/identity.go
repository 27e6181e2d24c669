package watchdog

import (
	"fmt"
	"strings"
	"time"
)

// AssetKey is the composite ledger identity of an asset. Matching is exact and
// case-sensitive: a renamed asset produces a new row, never a merge.
type AssetKey struct {
	Scheme string
	Name   string
	Type   string
}

func (a Asset) Key() AssetKey {
	return AssetKey{Scheme: a.Scheme, Name: a.Name, Type: a.Type}
}

// dateKeyLayout accepts one- and two-digit day and month, e.g. "7/6/2025".
const dateKeyLayout = "2/1/2006"

// FormatDateKey renders the ledger header form of a calendar date.
func FormatDateKey(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// ParseDateKey parses a header cell strictly. Blank or non-date cells must
// never match a date lookup, so anything that does not round-trip through the
// layout is rejected.
func ParseDateKey(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SameDateKey reports whether a header cell denotes the given date key.
func SameDateKey(cell string, dateKey string) bool {
	t, ok := ParseDateKey(cell)
	if !ok {
		return false
	}
	return FormatDateKey(t) == dateKey
}
