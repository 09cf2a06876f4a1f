package tracker

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date. The result is midnight UTC so
// day arithmetic never crosses a DST boundary.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (YYYY-MM-DD)", ErrInvalidInput, s)
	}
	return d, nil
}

func FormatDate(d time.Time) string { return d.Format(DateLayout) }

// CalendarDay maps an instant to its calendar date in loc, as midnight UTC.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// resolveDate returns raw when set (validated) or today's date.
func resolveDate(raw string, today time.Time) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return FormatDate(today), nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return FormatDate(d), nil
}
