package sync

import (
	"testing"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
)

func baseReservation() *model.Reservation {
	return &model.Reservation{
		ID:     1,
		Status: model.StatusConfirmed,
		ReservationCreate: model.ReservationCreate{
			Title:       "Planning",
			Comments:    "bring slides",
			RequestorID: "organizer@example.com",
			Attendees:   []string{"a@example.com", "b@example.com"},
			Period: model.TimePeriod{
				Start: time.Date(2011, time.November, 9, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2011, time.November, 9, 11, 0, 0, 0, time.UTC),
			},
		},
	}
}

func matchingEvent() *model.CalendarEvent {
	return &model.CalendarEvent{
		Subject:   "Planning",
		Body:      "bring slides",
		Start:     time.Date(2011, time.November, 9, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2011, time.November, 9, 11, 0, 0, 0, time.UTC),
		Location:  "Fishbowl",
		Organizer: "organizer@example.com",
		Attendees: []string{"b@example.com", "a@example.com"},
	}
}

func TestIsEquivalentReflexive(t *testing.T) {
	res := baseReservation()

	if !isEquivalent(res, "Fishbowl", "UTC", matchingEvent(), false) {
		t.Error("reservation not equivalent to its own rendering")
	}
	if res.Title != "Planning" {
		t.Error("comparison without applyUpdates mutated the reservation")
	}
}

func TestIsEquivalentIgnoresAttendeeOrderAndCase(t *testing.T) {
	res := baseReservation()
	event := matchingEvent()
	event.Attendees = []string{"B@Example.com", "  a@example.com "}

	if !isEquivalent(res, "Fishbowl", "UTC", event, false) {
		t.Error("attendee order/case should not matter")
	}
}

func TestIsEquivalentExcludesOrganizerFromEventAttendees(t *testing.T) {
	res := baseReservation()
	event := matchingEvent()
	// Calendars echo the organizer back as an attendee.
	event.Attendees = append(event.Attendees, "organizer@example.com")

	if !isEquivalent(res, "Fishbowl", "UTC", event, false) {
		t.Error("organizer echo should be excluded from the comparison")
	}
}

func TestIsEquivalentKeepsExplicitlyListedOrganizer(t *testing.T) {
	res := baseReservation()
	res.Attendees = append(res.Attendees, "organizer@example.com")
	event := matchingEvent()
	event.Attendees = append(event.Attendees, "organizer@example.com")

	if !isEquivalent(res, "Fishbowl", "UTC", event, false) {
		t.Error("explicitly listed organizer should survive on both sides")
	}
}

func TestIsEquivalentStripsHTMLBody(t *testing.T) {
	res := baseReservation()
	event := matchingEvent()
	event.Body = "<html><body><p>bring&nbsp;slides</p></body></html>"
	event.BodyIsHTML = true

	if !isEquivalent(res, "Fishbowl", "UTC", event, false) {
		t.Error("HTML body should be compared as stripped text")
	}
}

func TestIsEquivalentComparesPeriodInZone(t *testing.T) {
	res := baseReservation()
	// Stored reading is Moscow wall-clock; 10:00 MSK == 07:00 UTC.
	event := matchingEvent()
	event.Start = time.Date(2011, time.November, 9, 7, 0, 0, 0, time.UTC)
	event.End = time.Date(2011, time.November, 9, 8, 0, 0, 0, time.UTC)

	if !isEquivalent(res, "Fishbowl", "Europe/Moscow", event, false) {
		t.Error("period should be read in the building zone before comparing")
	}
	if isEquivalent(res, "Fishbowl", "UTC", event, false) {
		t.Error("same readings in UTC are different instants")
	}
}

func TestIsEquivalentLocationOnlyWithoutApply(t *testing.T) {
	res := baseReservation()
	event := matchingEvent()
	event.Location = "Broom closet"

	if isEquivalent(res, "Fishbowl", "UTC", event, false) {
		t.Error("location mismatch should fail the verdict")
	}
	if !isEquivalent(res, "Fishbowl", "UTC", event, true) {
		t.Error("applyUpdates must skip the location comparison")
	}
}

func TestIsEquivalentAppliesUpdates(t *testing.T) {
	res := baseReservation()
	event := matchingEvent()
	event.Subject = "Replanning"
	event.Start = time.Date(2011, time.November, 9, 12, 0, 0, 0, time.UTC)
	event.End = time.Date(2011, time.November, 9, 13, 0, 0, 0, time.UTC)
	event.Attendees = []string{"c@example.com"}

	if isEquivalent(res, "Fishbowl", "UTC", event, true) {
		t.Fatal("changed event reported as equivalent")
	}

	if res.Title != "Replanning" {
		t.Errorf("title = %q, want applied subject", res.Title)
	}
	if res.Period.Start.Hour() != 12 || res.Period.End.Hour() != 13 {
		t.Errorf("period %v-%v, want 12:00-13:00", res.Period.Start, res.Period.End)
	}
	if len(res.Attendees) != 1 || res.Attendees[0] != "c@example.com" {
		t.Errorf("attendees = %v, want applied set", res.Attendees)
	}
}

func TestIsEquivalentAppliesInstantsAsZoneReading(t *testing.T) {
	res := baseReservation()
	event := matchingEvent()
	// 08:00 UTC is 11:00 in Moscow.
	event.Start = time.Date(2011, time.November, 9, 8, 0, 0, 0, time.UTC)
	event.End = time.Date(2011, time.November, 9, 9, 0, 0, 0, time.UTC)

	isEquivalent(res, "Fishbowl", "Europe/Moscow", event, true)

	if res.Period.Start.Hour() != 11 {
		t.Errorf("applied start reads %02d:00, want 11:00 Moscow wall-clock", res.Period.Start.Hour())
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<p>one</p><p>two</p>", "one two"},
		{"a&nbsp;b", "a b"},
		{"a b", "a b"},
		{"&lt;tag&gt; &amp; more", "<tag> & more"},
		{"  spaced \n out  ", "spaced out"},
		{"<div class=\"x\">nested <b>bold</b></div>", "nested bold"},
	}

	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
