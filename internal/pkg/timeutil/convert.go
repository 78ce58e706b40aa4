// Package timeutil holds the timezone-preserving time arithmetic shared
// by the recurrence, series and sync layers.
package timeutil

import (
	"fmt"
	"time"
)

// Convert reinterprets t's wall-clock reading as a time in fromZone and
// returns the same instant expressed in toZone. Offsets are taken at
// that specific instant, so the result is correct across daylight
// saving transitions.
func Convert(t time.Time, fromZone, toZone string) (time.Time, error) {
	from, err := time.LoadLocation(fromZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load zone %q: %w", fromZone, err)
	}
	to, err := time.LoadLocation(toZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load zone %q: %w", toZone, err)
	}

	instant := time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), from)
	return instant.In(to), nil
}

// InZone expresses t in the named zone without changing the instant.
func InZone(t time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load zone %q: %w", zone, err)
	}
	return t.In(loc), nil
}
