package schedule

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "Monday, Jan 2"
	clockLayout    = "3:04 PM"
	meridiemLayout = "1/2/2006 3:04 PM"

	LabelToday    = "Today"
	LabelTomorrow = "Tomorrow"
)

var errMalformedTimestamp = errors.New("malformed_timestamp")

// Display is the human form of an open-house slot.
type Display struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Format renders start/end ("MM/DD/YYYY HH:MM" with optional AM/PM) in the calendar's location.
func (c *Calendar) Format(start, end string) Display {
	return c.FormatIn(start, end, c.location())
}

// FormatIn is Format for timestamps local to loc. Malformed input never fails:
// the raw date and time substrings are passed through instead.
func (c *Calendar) FormatIn(start, end string, loc *time.Location) Display {
	if loc == nil {
		loc = c.location()
	}
	startAt, err := ParseTimestamp(start, loc)
	if err != nil {
		return rawDisplay(start, end)
	}
	endAt, err := ParseTimestamp(end, loc)
	if err != nil {
		return rawDisplay(start, end)
	}

	today := midnightIn(c.now(), loc)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := today.AddDate(0, 0, 2)

	var date string
	switch {
	case !startAt.Before(today) && startAt.Before(tomorrow):
		date = LabelToday
	case !startAt.Before(tomorrow) && startAt.Before(dayAfter):
		date = LabelTomorrow
	default:
		date = startAt.Format(dateLayout)
	}
	return Display{
		Date: date,
		Time: startAt.Format(clockLayout) + " - " + endAt.Format(clockLayout),
	}
}

// ParseTimestamp reads "MM/DD/YYYY HH:MM[ AM|PM]". Without a meridiem the clock is 24-hour.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Fields(s)
	if len(parts) < 2 {
		return time.Time{}, errMalformedTimestamp
	}
	if len(parts) > 2 {
		mer := strings.ToUpper(parts[2])
		if mer == "AM" || mer == "PM" {
			return time.ParseInLocation(meridiemLayout, parts[0]+" "+parts[1]+" "+mer, loc)
		}
	}

	ymd := strings.Split(parts[0], "/")
	hm := strings.Split(parts[1], ":")
	if len(ymd) != 3 || len(hm) < 2 {
		return time.Time{}, errMalformedTimestamp
	}
	month, err1 := strconv.Atoi(ymd[0])
	day, err2 := strconv.Atoi(ymd[1])
	year, err3 := strconv.Atoi(ymd[2])
	hour, err4 := strconv.Atoi(hm[0])
	minute, err5 := strconv.Atoi(hm[1])
	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		return time.Time{}, errMalformedTimestamp
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, errMalformedTimestamp
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), nil
}

func rawDisplay(start, end string) Display {
	s := strings.Fields(start)
	e := strings.Fields(end)
	return Display{
		Date: field(s, 0),
		Time: field(s, 1) + " - " + field(e, 1),
	}
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
