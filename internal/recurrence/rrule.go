package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// RRule renders the pattern as an RFC 5545 RRULE string for the
// external calendar push. Only used at first creation of a recurring
// series; pattern edits are never re-pushed.
func (p *Pattern) RRule(start time.Time) (string, error) {
	opt := rrule.ROption{
		Interval: p.Interval,
		Dtstart:  start.UTC(),
	}
	if opt.Interval < 1 {
		opt.Interval = 1
	}

	switch p.Freq {
	case FreqDaily:
		opt.Freq = rrule.DAILY
	case FreqWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range p.Weekdays {
			opt.Byweekday = append(opt.Byweekday, toRRuleWeekday(d))
		}
	case FreqMonthly:
		opt.Freq = rrule.MONTHLY
		p.applyDaySelector(&opt)
	case FreqYearly:
		opt.Freq = rrule.YEARLY
		p.applyDaySelector(&opt)
		if p.Month != 0 {
			opt.Bymonth = []int{int(p.Month)}
		}
	default:
		return "", fmt.Errorf("unknown frequency: %v", p.Freq)
	}

	switch {
	case p.EndDate != nil:
		opt.Until = p.EndDate.UTC()
	case p.Count > 0:
		opt.Count = p.Count
	default:
		opt.Count = MaxOccurrences + 1
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("creating rule: %w", err)
	}

	return rule.String(), nil
}

func (p *Pattern) applyDaySelector(opt *rrule.ROption) {
	if p.Week != 0 {
		week := p.Week
		if week == WeekLast {
			week = -1
		}
		wd := toRRuleWeekday(p.Weekday)
		opt.Byweekday = []rrule.Weekday{wd.Nth(week)}
		return
	}
	if p.MonthDay != 0 {
		opt.Bymonthday = []int{p.MonthDay}
	}
}

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

func toRRuleWeekday(d time.Weekday) rrule.Weekday {
	return rruleWeekdays[d]
}
