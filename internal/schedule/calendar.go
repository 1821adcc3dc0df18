// Package schedule turns open-house timestamps into display buckets and back.
package schedule

import "time"

// Calendar answers "what day is it" for a fixed location. Now defaults to time.Now.
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{Now: time.Now, Location: loc}
}

func (c *Calendar) location() *time.Location {
	if c == nil || c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Calendar) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is midnight of the current day in the calendar's location.
func (c *Calendar) Today() time.Time {
	return midnightIn(c.now(), c.location())
}

func midnightIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
