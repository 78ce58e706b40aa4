package recurrence

import "time"

type Frequency int

const (
	FreqDaily Frequency = iota
	FreqWeekly
	FreqMonthly
	FreqYearly
)

// WeekLast selects the final matching weekday of a month, whether the
// month has four or five of them.
const WeekLast = 5

// MaxOccurrences bounds enumeration of patterns that carry neither an
// end date nor an occurrence count, so expansion always terminates.
const MaxOccurrences = 499

// Pattern is one recurrence rule. Interval is in pattern steps (days,
// weeks, months or years). Exactly one of EndDate and Count usually
// governs the stop point; when both are set, whichever bound is reached
// first wins.
type Pattern struct {
	Freq     Frequency
	Interval int
	EndDate  *time.Time
	Count    int

	// Weekly: the weekdays to visit. Empty means the start date's weekday.
	Weekdays []time.Weekday

	// Monthly/Yearly: either a fixed day of month, or the Week'th
	// occurrence of Weekday (Week 1..4, or WeekLast).
	MonthDay int
	Week     int
	Weekday  time.Weekday

	// Yearly only.
	Month time.Month
}

// Enumerate invokes action for every candidate date strictly after
// start, in ascending order, until action returns false or a stop bound
// is reached. The start date itself counts as occurrence one and is not
// re-emitted; with an occurrence count of n, at most n-1 candidates are
// visited. A candidate landing exactly on the end date is the last one
// visited; candidates past the end date are never visited.
func (p *Pattern) Enumerate(start time.Time, action func(time.Time) bool) {
	e := &emitter{
		action: action,
		end:    p.EndDate,
		budget: MaxOccurrences,
	}
	if p.Count > 0 && p.Count-1 < e.budget {
		e.budget = p.Count - 1
	}
	if e.budget <= 0 {
		return
	}

	interval := p.Interval
	if interval < 1 {
		interval = 1
	}

	switch p.Freq {
	case FreqDaily:
		p.enumerateDaily(start, interval, e)
	case FreqWeekly:
		p.enumerateWeekly(start, interval, e)
	case FreqMonthly:
		p.enumerateMonthly(start, interval, e)
	case FreqYearly:
		p.enumerateYearly(start, interval, e)
	}
}

// Dates collects the enumerated candidates into a slice.
func (p *Pattern) Dates(start time.Time) []time.Time {
	var dates []time.Time
	p.Enumerate(start, func(d time.Time) bool {
		dates = append(dates, d)
		return true
	})
	return dates
}

type emitter struct {
	action func(time.Time) bool
	end    *time.Time
	budget int
}

// visit applies the stop bounds around one candidate. It returns false
// once enumeration must end.
func (e *emitter) visit(d time.Time) bool {
	if e.end != nil && dateAfter(d, *e.end) {
		return false
	}
	if e.budget <= 0 {
		return false
	}
	e.budget--
	if !e.action(d) {
		return false
	}
	if e.end != nil && !dateBefore(d, *e.end) {
		// landed on the end date
		return false
	}
	return e.budget > 0
}

func (p *Pattern) enumerateDaily(start time.Time, interval int, e *emitter) {
	cursor := start
	for {
		cursor = cursor.AddDate(0, 0, interval)
		if !e.visit(cursor) {
			return
		}
	}
}

func (p *Pattern) enumerateWeekly(start time.Time, interval int, e *emitter) {
	days := p.Weekdays
	if len(days) == 0 {
		days = []time.Weekday{start.Weekday()}
	}
	selected := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		selected[d] = true
	}

	base := startOfWeek(start)
	for {
		for offset := 0; offset < 7; offset++ {
			day := base.AddDate(0, 0, offset)
			if !day.After(start) || !selected[day.Weekday()] {
				continue
			}
			if !e.visit(day) {
				return
			}
		}
		base = base.AddDate(0, 0, 7*interval)
	}
}

func (p *Pattern) enumerateMonthly(start time.Time, interval int, e *emitter) {
	year, month := start.Year(), start.Month()
	for {
		if day, ok := p.dayInMonth(year, month, start); ok && day.After(start) {
			if !e.visit(day) {
				return
			}
		}
		year, month = addMonths(year, month, interval)
	}
}

func (p *Pattern) enumerateYearly(start time.Time, interval int, e *emitter) {
	month := p.Month
	if month == 0 {
		month = start.Month()
	}
	for year := start.Year(); ; year += interval {
		if day, ok := p.dayInMonth(year, month, start); ok && day.After(start) {
			if !e.visit(day) {
				return
			}
		}
	}
}

// dayInMonth resolves the pattern's day selector within one month. It
// reports false when the month has no such day (e.g. day 31 in April).
// An unset selector falls back to the start date's day of month.
func (p *Pattern) dayInMonth(year int, month time.Month, start time.Time) (time.Time, bool) {
	if p.Week != 0 {
		day, ok := nthWeekday(year, month, p.Weekday, p.Week, start.Location())
		if !ok {
			return time.Time{}, false
		}
		return withClock(day, start), true
	}

	monthDay := p.MonthDay
	if monthDay == 0 {
		monthDay = start.Day()
	}

	day := time.Date(year, month, monthDay, 0, 0, 0, 0, start.Location())
	if day.Month() != month {
		return time.Time{}, false
	}
	return withClock(day, start), true
}

// withClock keeps d's date and takes the time-of-day from clock, so all
// variants emit candidates at the start date's wall-clock time.
func withClock(d, clock time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, clock.Location())
}

// nthWeekday finds the week'th weekday of a month; week == WeekLast
// means the final one, correctly handling months with four or five
// matching weekdays.
func nthWeekday(year int, month time.Month, weekday time.Weekday, week int, loc *time.Location) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7

	if week == WeekLast {
		day := first.AddDate(0, 0, offset+4*7)
		if day.Month() != month {
			day = day.AddDate(0, 0, -7)
		}
		return day, true
	}

	day := first.AddDate(0, 0, offset+(week-1)*7)
	if day.Month() != month {
		return time.Time{}, false
	}
	return day, true
}

func startOfWeek(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	m := int(month) - 1 + n
	return year + m/12, time.Month(m%12 + 1)
}

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func dateAfter(a, b time.Time) bool {
	return dateBefore(b, a)
}
