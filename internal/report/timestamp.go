package report

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// naive layouts carry no zone; they are read as UTC. A fractional second
// after the seconds field is accepted by time.Parse without being in the layout.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp reads a cached ISO-8601 value and returns it in loc.
// Zoned values are converted; naive date-times are assumed to be UTC.
// A bare date is a calendar day in loc and comes back as local midnight
// with dateOnly set.
func ParseTimestamp(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), false, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.In(loc), false, nil
		}
	}
	if d, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return d, true, nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognised timestamp %q", s)
}

// civilDay truncates t to midnight of its calendar day in its own location
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b, ignoring DST shifts
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WeekRange returns Monday 00:00:00 and Sunday 23:59:59 of the week
// containing ref, in loc.
func WeekRange(ref time.Time, loc *time.Location) (start, end time.Time) {
	local := ref.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	y, m, d := local.Date()
	start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	end = time.Date(y, m, d-offset+6, 23, 59, 59, 0, loc)
	return start, end
}
