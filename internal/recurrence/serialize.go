package recurrence

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The rule text format is the compact legacy element
//
//	<recurring type="day|week|month|year" value1=".." value2=".." value3=".." value4=".." total=".."/>
//
// value1 carries the day selector (day of month, or week-of-month index
// when value2 names a weekday), value2 the weekday code(s), value3 the
// interval and value4 the month. total is the occurrence count, empty
// when an end date governs the series instead.
type recurringXML struct {
	XMLName xml.Name `xml:"recurring"`
	Type    string   `xml:"type,attr"`
	Value1  string   `xml:"value1,attr"`
	Value2  string   `xml:"value2,attr"`
	Value3  string   `xml:"value3,attr"`
	Value4  string   `xml:"value4,attr"`
	Total   string   `xml:"total,attr"`
}

const weekLastCode = "last"

func (p *Pattern) String() string {
	el := recurringXML{Value3: strconv.Itoa(p.Interval)}

	switch p.Freq {
	case FreqDaily:
		el.Type = "day"
	case FreqWeekly:
		el.Type = "week"
		el.Value2 = encodeWeekdays(p.Weekdays)
	case FreqMonthly:
		el.Type = "month"
		p.encodeDaySelector(&el)
	case FreqYearly:
		el.Type = "year"
		p.encodeDaySelector(&el)
		if p.Month != 0 {
			el.Value4 = strconv.Itoa(int(p.Month))
		}
	}

	if p.Count > 0 {
		el.Total = strconv.Itoa(p.Count)
	}

	out, _ := xml.Marshal(el)
	return string(out)
}

func (p *Pattern) encodeDaySelector(el *recurringXML) {
	if p.Week != 0 {
		if p.Week == WeekLast {
			el.Value1 = weekLastCode
		} else {
			el.Value1 = strconv.Itoa(p.Week)
		}
		el.Value2 = strconv.Itoa(int(p.Weekday))
		return
	}
	if p.MonthDay != 0 {
		el.Value1 = strconv.Itoa(p.MonthDay)
	}
}

// Parse reconstructs a pattern from its rule text. The result
// enumerates the same date sequence as the pattern that produced the
// text for any start date.
func Parse(s string) (*Pattern, error) {
	var el recurringXML
	if err := xml.Unmarshal([]byte(s), &el); err != nil {
		return nil, fmt.Errorf("parse rule %q: %w", s, err)
	}

	p := &Pattern{Interval: 1}

	if el.Value3 != "" {
		interval, err := strconv.Atoi(el.Value3)
		if err != nil || interval < 1 {
			return nil, fmt.Errorf("rule %q: bad interval %q", s, el.Value3)
		}
		p.Interval = interval
	}

	if el.Total != "" {
		total, err := strconv.Atoi(el.Total)
		if err != nil || total < 1 {
			return nil, fmt.Errorf("rule %q: bad total %q", s, el.Total)
		}
		p.Count = total
	}

	switch el.Type {
	case "day":
		p.Freq = FreqDaily
	case "week":
		p.Freq = FreqWeekly
		days, err := decodeWeekdays(el.Value2)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", s, err)
		}
		p.Weekdays = days
	case "month":
		p.Freq = FreqMonthly
		if err := p.parseDaySelector(el); err != nil {
			return nil, fmt.Errorf("rule %q: %w", s, err)
		}
	case "year":
		p.Freq = FreqYearly
		if err := p.parseDaySelector(el); err != nil {
			return nil, fmt.Errorf("rule %q: %w", s, err)
		}
		if el.Value4 != "" {
			month, err := strconv.Atoi(el.Value4)
			if err != nil || month < 1 || month > 12 {
				return nil, fmt.Errorf("rule %q: bad month %q", s, el.Value4)
			}
			p.Month = time.Month(month)
		}
	default:
		return nil, fmt.Errorf("rule %q: unknown type %q", s, el.Type)
	}

	return p, nil
}

func (p *Pattern) parseDaySelector(el recurringXML) error {
	if el.Value2 != "" {
		if el.Value1 == weekLastCode {
			p.Week = WeekLast
		} else {
			week, err := strconv.Atoi(el.Value1)
			if err != nil || week < 1 || week > 4 {
				return fmt.Errorf("bad week index %q", el.Value1)
			}
			p.Week = week
		}

		wd, err := strconv.Atoi(el.Value2)
		if err != nil || wd < 0 || wd > 6 {
			return fmt.Errorf("bad weekday %q", el.Value2)
		}
		p.Weekday = time.Weekday(wd)
		return nil
	}

	if el.Value1 != "" {
		day, err := strconv.Atoi(el.Value1)
		if err != nil || day < 1 || day > 31 {
			return fmt.Errorf("bad day of month %q", el.Value1)
		}
		p.MonthDay = day
	}
	return nil
}

// encodeWeekdays packs a weekday set as concatenated digits, Sunday=0.
func encodeWeekdays(days []time.Weekday) string {
	present := [7]bool{}
	for _, d := range days {
		present[d] = true
	}

	var b strings.Builder
	for d := 0; d < 7; d++ {
		if present[d] {
			b.WriteByte(byte('0' + d))
		}
	}
	return b.String()
}

func decodeWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, c := range s {
		if c < '0' || c > '6' {
			return nil, fmt.Errorf("bad weekday code %q", s)
		}
		days = append(days, time.Weekday(c-'0'))
	}
	return days, nil
}
