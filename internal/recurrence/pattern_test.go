package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateAt(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func datesEqual(t *testing.T, got []time.Time, want []time.Time) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %d dates, want %d\ngot: %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			t.Errorf("date %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDailyUntilEndDate(t *testing.T) {
	end := date(2011, time.November, 19)
	p := &Pattern{Freq: FreqDaily, Interval: 1, EndDate: &end}

	got := p.Dates(date(2011, time.November, 9))

	if len(got) != 10 {
		t.Fatalf("got %d repeats, want 10: %v", len(got), got)
	}
	if !got[0].Equal(date(2011, time.November, 10)) {
		t.Errorf("first repeat = %v, want 2011-11-10", got[0])
	}
	if !got[9].Equal(date(2011, time.November, 19)) {
		t.Errorf("last repeat = %v, want 2011-11-19", got[9])
	}
}

func TestDailyIntervalSkipsPastEndDate(t *testing.T) {
	end := date(2011, time.November, 19)
	p := &Pattern{Freq: FreqDaily, Interval: 3, EndDate: &end}

	got := p.Dates(date(2011, time.November, 9))

	datesEqual(t, got, []time.Time{
		date(2011, time.November, 12),
		date(2011, time.November, 15),
		date(2011, time.November, 18),
	})
}

func TestDailyCount(t *testing.T) {
	p := &Pattern{Freq: FreqDaily, Interval: 1, Count: 4}

	got := p.Dates(date(2011, time.November, 9))

	// The start date itself is occurrence one.
	datesEqual(t, got, []time.Time{
		date(2011, time.November, 10),
		date(2011, time.November, 11),
		date(2011, time.November, 12),
	})
}

func TestCountAndEndDateFirstBoundWins(t *testing.T) {
	end := date(2011, time.November, 11)
	p := &Pattern{Freq: FreqDaily, Interval: 1, Count: 10, EndDate: &end}

	got := p.Dates(date(2011, time.November, 9))

	if len(got) != 2 {
		t.Fatalf("got %d repeats, want 2 (end date wins): %v", len(got), got)
	}

	end = date(2011, time.December, 31)
	p = &Pattern{Freq: FreqDaily, Interval: 1, Count: 3, EndDate: &end}

	got = p.Dates(date(2011, time.November, 9))

	if len(got) != 2 {
		t.Fatalf("got %d repeats, want 2 (count wins): %v", len(got), got)
	}
}

func TestUnboundedPatternCapped(t *testing.T) {
	p := &Pattern{Freq: FreqDaily, Interval: 1}

	got := p.Dates(date(2011, time.November, 9))

	if len(got) != MaxOccurrences {
		t.Fatalf("got %d repeats, want cap %d", len(got), MaxOccurrences)
	}
}

func TestWeeklySelectedWeekdays(t *testing.T) {
	// 2011-11-09 is a Wednesday.
	p := &Pattern{
		Freq:     FreqWeekly,
		Interval: 1,
		Count:    6,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
	}

	got := p.Dates(date(2011, time.November, 9))

	datesEqual(t, got, []time.Time{
		date(2011, time.November, 14),
		date(2011, time.November, 16),
		date(2011, time.November, 21),
		date(2011, time.November, 23),
		date(2011, time.November, 28),
	})
}

func TestWeeklyIntervalSkipsWeeks(t *testing.T) {
	p := &Pattern{
		Freq:     FreqWeekly,
		Interval: 2,
		Count:    3,
		Weekdays: []time.Weekday{time.Wednesday},
	}

	got := p.Dates(date(2011, time.November, 9))

	datesEqual(t, got, []time.Time{
		date(2011, time.November, 23),
		date(2011, time.December, 7),
	})
}

func TestMonthlyFixedDay(t *testing.T) {
	p := &Pattern{Freq: FreqMonthly, Interval: 1, Count: 4, MonthDay: 15}

	got := p.Dates(date(2011, time.November, 15))

	datesEqual(t, got, []time.Time{
		date(2011, time.December, 15),
		date(2012, time.January, 15),
		date(2012, time.February, 15),
	})
}

func TestMonthlySkipsMonthsWithoutDay(t *testing.T) {
	p := &Pattern{Freq: FreqMonthly, Interval: 1, Count: 4, MonthDay: 31}

	got := p.Dates(date(2011, time.December, 31))

	// February, April and June have no 31st.
	datesEqual(t, got, []time.Time{
		date(2012, time.January, 31),
		date(2012, time.March, 31),
		date(2012, time.May, 31),
	})
}

func TestMonthlyNthWeekday(t *testing.T) {
	// Second Tuesday of each month.
	p := &Pattern{Freq: FreqMonthly, Interval: 1, Count: 3, Week: 2, Weekday: time.Tuesday}

	got := p.Dates(date(2011, time.November, 8))

	datesEqual(t, got, []time.Time{
		date(2011, time.December, 13),
		date(2012, time.January, 10),
	})
}

func TestMonthlyLastWeekday(t *testing.T) {
	p := &Pattern{Freq: FreqMonthly, Interval: 1, Count: 3, Week: WeekLast, Weekday: time.Friday}

	got := p.Dates(date(2011, time.November, 25))

	datesEqual(t, got, []time.Time{
		date(2011, time.December, 30),
		date(2012, time.January, 27),
	})
}

func TestYearlyFixedDate(t *testing.T) {
	p := &Pattern{Freq: FreqYearly, Interval: 1, Count: 3, Month: time.November, MonthDay: 9}

	got := p.Dates(date(2011, time.November, 9))

	datesEqual(t, got, []time.Time{
		date(2012, time.November, 9),
		date(2013, time.November, 9),
	})
}

func TestYearlyLeapDaySkipsCommonYears(t *testing.T) {
	p := &Pattern{Freq: FreqYearly, Interval: 1, Count: 3, Month: time.February, MonthDay: 29}

	got := p.Dates(date(2012, time.February, 29))

	datesEqual(t, got, []time.Time{
		date(2016, time.February, 29),
		date(2020, time.February, 29),
	})
}

func TestCandidatesKeepStartTimeOfDay(t *testing.T) {
	p := &Pattern{Freq: FreqMonthly, Interval: 1, Count: 2, MonthDay: 15}

	got := p.Dates(dateAt(2011, time.November, 15, 10, 30))

	datesEqual(t, got, []time.Time{dateAt(2011, time.December, 15, 10, 30)})
}

func TestEnumerateStopsWhenActionReturnsFalse(t *testing.T) {
	p := &Pattern{Freq: FreqDaily, Interval: 1}

	visited := 0
	p.Enumerate(date(2011, time.November, 9), func(time.Time) bool {
		visited++
		return visited < 3
	})

	if visited != 3 {
		t.Fatalf("visited %d candidates, want 3", visited)
	}
}
