package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
	gcal "google.golang.org/api/calendar/v3"
)

// Event metadata lives in private extended properties: reservationIDKey
// links a single event to its reservation, occurrencePrefix-ed keys map
// a recurring master's occurrence original dates to member ids.
const (
	reservationIDKey = "reservation_id"
	occurrencePrefix = "occ_"
)

func toGoogleEvent(event *model.CalendarEvent) *gcal.Event {
	ev := &gcal.Event{
		Summary:     event.Subject,
		Description: event.Body,
		Location:    event.Location,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}

	for _, a := range event.Attendees {
		ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: a})
	}

	if event.RecurrenceRule != "" {
		ev.Recurrence = []string{event.RecurrenceRule}
	}

	private := map[string]string{}
	if event.ReservationID != 0 {
		private[reservationIDKey] = strconv.FormatInt(event.ReservationID, 10)
	}
	for date, id := range event.OccurrenceIDs {
		private[occurrencePrefix+date] = strconv.FormatInt(id, 10)
	}
	if len(private) != 0 {
		ev.ExtendedProperties = &gcal.EventExtendedProperties{Private: private}
	}

	return ev
}

func fromGoogleEvent(ev *gcal.Event) (*model.CalendarEvent, error) {
	start, err := parseEventTime(ev.Start)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.Id, err)
	}
	end, err := parseEventTime(ev.End)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.Id, err)
	}

	event := &model.CalendarEvent{
		UniqueID:   ev.Id,
		Kind:       eventKind(ev),
		Subject:    ev.Summary,
		Body:       ev.Description,
		BodyIsHTML: strings.Contains(ev.Description, "<"),
		Start:      start,
		End:        end,
		Location:   ev.Location,
	}

	if ev.Organizer != nil {
		event.Organizer = ev.Organizer.Email
	}
	for _, a := range ev.Attendees {
		if a.Resource {
			continue
		}
		event.Attendees = append(event.Attendees, a.Email)
	}
	if len(ev.Recurrence) != 0 {
		event.RecurrenceRule = ev.Recurrence[0]
	}

	event.MasterUniqueID = ev.RecurringEventId
	event.OriginalStart = start
	if ev.OriginalStartTime != nil {
		if original, err := parseEventTime(ev.OriginalStartTime); err == nil {
			event.OriginalStart = original
		}
	}

	if ev.ExtendedProperties != nil {
		for key, value := range ev.ExtendedProperties.Private {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			switch {
			case key == reservationIDKey:
				event.ReservationID = id
			case strings.HasPrefix(key, occurrencePrefix):
				if event.OccurrenceIDs == nil {
					event.OccurrenceIDs = map[string]int64{}
				}
				event.OccurrenceIDs[strings.TrimPrefix(key, occurrencePrefix)] = id
			}
		}
	}

	return event, nil
}

func eventKind(ev *gcal.Event) model.AppointmentKind {
	switch {
	case len(ev.Recurrence) != 0:
		return model.AppointmentRecurringMaster
	case ev.RecurringEventId != "" && modifiedInstance(ev):
		return model.AppointmentException
	case ev.RecurringEventId != "":
		return model.AppointmentOccurrence
	default:
		return model.AppointmentSingle
	}
}

// modifiedInstance reports whether an instance was moved off its
// original slot, which the sync engine treats as an exception.
func modifiedInstance(ev *gcal.Event) bool {
	if ev.OriginalStartTime == nil || ev.Start == nil {
		return false
	}
	original, err := parseEventTime(ev.OriginalStartTime)
	if err != nil {
		return false
	}
	start, err := parseEventTime(ev.Start)
	if err != nil {
		return false
	}
	return !original.Equal(start)
}

func parseEventTime(t *gcal.EventDateTime) (time.Time, error) {
	if t == nil {
		return time.Time{}, fmt.Errorf("missing event time")
	}
	if t.DateTime != "" {
		return time.Parse(time.RFC3339, t.DateTime)
	}
	return time.Parse("2006-01-02", t.Date)
}
