package sync

import (
	"regexp"
	"strings"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/pkg/timeutil"
)

// isEquivalent compares the reservation and its external event field by
// field, in absolute terms. The reservation's stored period is a
// wall-clock reading in zone; it is pinned to that zone before being
// held against the event's instants. With applyUpdates, every
// mismatched field is written back onto the reservation object (not
// persisted) and location is skipped: inbound sync never moves a
// meeting between rooms. Without applyUpdates, location participates
// in the verdict. The result is true only if every compared field
// matched.
func isEquivalent(res *model.Reservation, location, zone string, event *model.CalendarEvent, applyUpdates bool) bool {
	equal := true

	if zone == "" {
		zone = "UTC"
	}

	start, end := periodInstants(res.Period, zone)
	if !start.Equal(event.Start.UTC()) || !end.Equal(event.End.UTC()) {
		equal = false
		if applyUpdates {
			shiftPeriod(&res.Period, event.Start, event.End, zone)
		}
	}

	if res.Title != event.Subject {
		equal = false
		if applyUpdates {
			res.Title = event.Subject
		}
	}

	external := externalAttendees(res, event)
	if !attendeeSetsEqual(res.Attendees, external) {
		equal = false
		if applyUpdates {
			res.Attendees = external
		}
	}

	body := event.Body
	if event.BodyIsHTML {
		body = StripHTML(body)
	}
	if strings.TrimSpace(res.Comments) != strings.TrimSpace(body) {
		equal = false
		if applyUpdates {
			res.Comments = body
		}
	}

	if !applyUpdates && !strings.EqualFold(location, event.Location) {
		equal = false
	}

	return equal
}

// periodInstants expresses the wall-clock period as UTC instants.
func periodInstants(p model.TimePeriod, zone string) (time.Time, time.Time) {
	start, err := timeutil.Convert(p.Start, zone, "UTC")
	if err != nil {
		return p.Start.UTC(), p.End.UTC()
	}
	end, err := timeutil.Convert(p.End, zone, "UTC")
	if err != nil {
		return p.Start.UTC(), p.End.UTC()
	}
	return start, end
}

// shiftPeriod moves the stored period onto the event's instants,
// expressed back as a wall-clock reading in the period's zone.
func shiftPeriod(p *model.TimePeriod, start, end time.Time, zone string) {
	localStart, err := timeutil.Convert(start.UTC(), "UTC", zone)
	if err != nil {
		p.Start, p.End = start, end
		return
	}
	localEnd, err := timeutil.Convert(end.UTC(), "UTC", zone)
	if err != nil {
		p.Start, p.End = start, end
		return
	}
	p.Start, p.End = localStart, localEnd
}

// externalAttendees is the event's attendee set with the organizer's
// own address excluded, unless the reservation already lists the
// organizer explicitly.
func externalAttendees(res *model.Reservation, event *model.CalendarEvent) []string {
	organizerListed := false
	for _, a := range res.Attendees {
		if strings.EqualFold(a, event.Organizer) {
			organizerListed = true
			break
		}
	}

	var out []string
	for _, a := range event.Attendees {
		if !organizerListed && strings.EqualFold(a, event.Organizer) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// attendeeSetsEqual compares address sets case-insensitively, ignoring
// order and duplicates.
func attendeeSetsEqual(a, b []string) bool {
	normalize := func(addrs []string) map[string]struct{} {
		set := make(map[string]struct{}, len(addrs))
		for _, addr := range addrs {
			set[strings.ToLower(strings.TrimSpace(addr))] = struct{}{}
		}
		return set
	}

	as, bs := normalize(a), normalize(b)
	if len(as) != len(bs) {
		return false
	}
	for addr := range as {
		if _, ok := bs[addr]; !ok {
			return false
		}
	}
	return true
}

var (
	tagRX    = regexp.MustCompile(`<[^>]*>`)
	spacesRX = regexp.MustCompile(`\s+`)
)

// StripHTML reduces an HTML body to the plain text compared against the
// reservation's comments. Non-breaking-space entities become regular
// spaces before markup removal.
func StripHTML(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, " ", " ")
	s = tagRX.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = spacesRX.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
