// Package stats turns closed sessions into day-bucketed aggregates.
package stats

import (
	"fmt"
	"time"
)

// statZone is the fixed UTC+1 offset used for all day-bucket boundaries.
// Every device must bucket with the same offset or the same session lands
// on different stat dates depending on where it was recorded.
var statZone = time.FixedZone("UTC+1", 60*60)

// statDateLayout is the wire format for stat dates.
const statDateLayout = "2006-01-02"

// StatDate returns the day bucket a session starting at t belongs to.
// A session spanning midnight is attributed entirely to its start date.
func StatDate(t time.Time) string {
	return t.In(statZone).Format(statDateLayout)
}

// Today returns the current day bucket.
func Today(now time.Time) string {
	return StatDate(now)
}

// Yesterday returns the day bucket before today's.
func Yesterday(now time.Time) string {
	return StatDate(now.In(statZone).AddDate(0, 0, -1))
}

// DaysAgo returns the day bucket n days before today's.
func DaysAgo(now time.Time, n int) string {
	return StatDate(now.In(statZone).AddDate(0, 0, -n))
}

// DayLabel renders a stat date as a short weekday label for display.
// Malformed dates come back unchanged.
func DayLabel(date string) string {
	day, err := time.ParseInLocation(statDateLayout, date, statZone)
	if err != nil {
		return date
	}
	return day.Format("Mon 02")
}

// DayRange returns the UTC instants [from, to) covering the given stat date.
func DayRange(date string) (from, to time.Time, err error) {
	day, err := time.ParseInLocation(statDateLayout, date, statZone)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse stat date %q: %w", date, err)
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}
