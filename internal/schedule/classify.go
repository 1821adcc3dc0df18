package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Range is a relative date bucket a listing can be filtered by.
type Range string

const (
	RangeAll      Range = "all"
	RangeToday    Range = "today"
	RangeTomorrow Range = "tomorrow"
	RangeWeek     Range = "week"
	RangeWeekend  Range = "weekend"
)

var Ranges = []Range{RangeAll, RangeToday, RangeTomorrow, RangeWeek, RangeWeekend}

func (r Range) Valid() bool {
	for _, v := range Ranges {
		if r == v {
			return true
		}
	}
	return false
}

// "Tuesday, Jul 1", "Jul 1", "Saturday, April 26, 2025"
var reDisplayDate = regexp.MustCompile(`^(?:([A-Za-z]+),\s*)?([A-Za-z]+)\.?\s+(\d{1,2})(?:,\s*(\d{4}))?$`)

var monthPrefixes = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// ParseDisplayDate turns a display date back into a calendar day at midnight.
// Dates without a year land in the current year, or the next one if that
// would put them before today.
func (c *Calendar) ParseDisplayDate(display string) (time.Time, bool) {
	display = strings.TrimSpace(display)
	today := c.Today()
	switch display {
	case LabelToday:
		return today, true
	case LabelTomorrow:
		return today.AddDate(0, 0, 1), true
	}

	m := reDisplayDate.FindStringSubmatch(display)
	if m == nil || len(m[2]) < 3 {
		return time.Time{}, false
	}
	month, ok := monthPrefixes[strings.ToLower(m[2][:3])]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[3])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := today.Year()
	explicitYear := m[4] != ""
	if explicitYear {
		year, _ = strconv.Atoi(m[4])
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	if d.Day() != day {
		// Feb 30 and friends
		return time.Time{}, false
	}
	if !explicitYear && d.Before(today) {
		d = d.AddDate(1, 0, 0)
	}
	return d, true
}

// InRange reports whether a display date falls in r. Dates that cannot be
// parsed are included.
func (c *Calendar) InRange(display string, r Range) bool {
	if r == RangeAll || r == "" {
		return true
	}
	d, ok := c.ParseDisplayDate(display)
	if !ok {
		return true
	}
	today := c.Today()
	d = midnightIn(d, today.Location())

	switch r {
	case RangeToday:
		return d.Equal(today)
	case RangeTomorrow:
		return d.Equal(today.AddDate(0, 0, 1))
	case RangeWeek:
		endOfWeek := today.AddDate(0, 0, 7-int(today.Weekday()))
		return !d.Before(today) && !d.After(endOfWeek)
	case RangeWeekend:
		sat := weekendStart(today)
		return !d.Before(sat) && !d.After(sat.AddDate(0, 0, 1))
	default:
		return true
	}
}

// weekendStart is the Saturday of the current weekend, or the coming one on weekdays.
func weekendStart(today time.Time) time.Time {
	if today.Weekday() == time.Sunday {
		return today.AddDate(0, 0, -1)
	}
	return today.AddDate(0, 0, int(time.Saturday-today.Weekday()))
}
