package recurrence

import (
	"strings"
	"testing"
	"time"
)

func TestRRuleMonthlyNthWeekday(t *testing.T) {
	p := &Pattern{
		Freq:    FreqMonthly,
		Week:    2,
		Weekday: time.Tuesday,
		Count:   6,
	}

	rule, err := p.RRule(date(2011, time.November, 8))
	if err != nil {
		t.Fatalf("RRule: %v", err)
	}

	if !strings.Contains(rule, "FREQ=MONTHLY") {
		t.Errorf("rule %q misses FREQ=MONTHLY", rule)
	}
	if !strings.Contains(rule, "BYDAY=2TU") {
		t.Errorf("rule %q misses BYDAY=2TU", rule)
	}
	if !strings.Contains(rule, "COUNT=6") {
		t.Errorf("rule %q misses COUNT=6", rule)
	}
}

func TestRRuleMonthlyLastWeekday(t *testing.T) {
	p := &Pattern{
		Freq:    FreqMonthly,
		Week:    WeekLast,
		Weekday: time.Friday,
		Count:   3,
	}

	rule, err := p.RRule(date(2011, time.November, 25))
	if err != nil {
		t.Fatalf("RRule: %v", err)
	}

	if !strings.Contains(rule, "BYDAY=-1FR") {
		t.Errorf("rule %q misses BYDAY=-1FR", rule)
	}
}

func TestRRuleWeeklySelectedDays(t *testing.T) {
	p := &Pattern{
		Freq:     FreqWeekly,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		Count:    4,
	}

	rule, err := p.RRule(date(2011, time.November, 9))
	if err != nil {
		t.Fatalf("RRule: %v", err)
	}

	if !strings.Contains(rule, "FREQ=WEEKLY") {
		t.Errorf("rule %q misses FREQ=WEEKLY", rule)
	}
	if !strings.Contains(rule, "MO") || !strings.Contains(rule, "WE") {
		t.Errorf("rule %q misses selected weekdays", rule)
	}
}
