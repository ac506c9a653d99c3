package core

import (
	"strings"
	"time"
)

// Date is a calendar date as provided by the data source, usually
// "2006-01-02" but sometimes a full timestamp.
type Date string

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// NewDate formats the calendar day of t.
func NewDate(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// Parse returns the calendar day midnight UTC. The day is taken as written:
// a timestamp carrying an offset is not shifted into another zone.
func (d Date) Parse() (time.Time, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, day := t.Date()
			return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Display renders the date as DD/MM/YYYY, or the raw text when it cannot be
// parsed.
func (d Date) Display() string {
	t, ok := d.Parse()
	if !ok {
		return string(d)
	}
	return t.Format("02/01/2006")
}
