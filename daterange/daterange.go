// Package daterange converts symbolic range keys into concrete UTC
// date windows.
package daterange

import "time"

// Range keys accepted by Resolve.
const (
	Key7d  = "7d"
	Key30d = "30d"
	Key90d = "90d"
	Key1y  = "1y"
	KeyAll = "all"
)

// Range is a concrete date window. Both endpoints are ISO-8601 with a
// trailing Z and second precision.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// isoLayout renders the wall-clock time of the instant's own location,
// so "today" means the user's local calendar day rather than the UTC
// day. The Z suffix is appended verbatim.
const isoLayout = "2006-01-02T15:04:05"

// Resolve maps a range key to an inclusive window ending at now. The
// windows include the current day: "7d" spans today and the 6 days
// before it. "all" is treated the same as "1y" (known limitation of
// the contribution query), and unrecognized keys fall back to "30d".
func Resolve(key string, now time.Time) Range {
	from := now
	switch key {
	case Key7d:
		from = now.AddDate(0, 0, -6)
	case Key90d:
		from = now.AddDate(0, 0, -89)
	case Key1y, KeyAll:
		from = now.AddDate(-1, 0, 0)
	default:
		from = now.AddDate(0, 0, -29)
	}
	return Range{
		From: from.Format(isoLayout) + "Z",
		To:   now.Format(isoLayout) + "Z",
	}
}

// ResolveNow resolves the key against the current local time.
func ResolveNow(key string) Range {
	return Resolve(key, time.Now())
}
