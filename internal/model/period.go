package model

import "time"

// TimePeriod is a start/end pair with an optional explicit timezone.
// An empty Zone means the period is interpreted in the owning building's
// local zone.
type TimePeriod struct {
	Start time.Time
	End   time.Time
	Zone  string
}

func (p TimePeriod) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// Contains reports whether other lies fully within p.
func (p TimePeriod) Contains(other TimePeriod) bool {
	return !other.Start.Before(p.Start) && !other.End.After(p.End)
}

// Valid reports whether the period's start does not come after its end.
func (p TimePeriod) Valid() bool {
	return !p.Start.After(p.End)
}

// OnDate keeps p's time-of-day and duration but moves it to the given date.
func (p TimePeriod) OnDate(date time.Time) TimePeriod {
	start := time.Date(
		date.Year(), date.Month(), date.Day(),
		p.Start.Hour(), p.Start.Minute(), p.Start.Second(), 0,
		p.Start.Location(),
	)
	return TimePeriod{
		Start: start,
		End:   start.Add(p.Duration()),
		Zone:  p.Zone,
	}
}
