package model

import "time"

type AppointmentKind int

const (
	AppointmentSingle AppointmentKind = iota
	AppointmentRecurringMaster
	AppointmentOccurrence
	AppointmentException
)

// CalendarEvent is the core's view of one externally owned calendar
// event. OccurrenceIDs is only populated for recurring masters and maps
// an occurrence's original date (keyed via OccurrenceKey) to the member
// reservation it represents.
type CalendarEvent struct {
	UniqueID       string
	Kind           AppointmentKind
	Subject        string
	Body           string
	BodyIsHTML     bool
	Start          time.Time
	End            time.Time
	Location       string
	Organizer      string
	Attendees      []string
	RecurrenceRule string
	ReservationID  int64
	OccurrenceIDs  map[string]int64

	// Occurrence/Exception only: the recurring master's unique id and
	// the occurrence's original (pre-move) start.
	MasterUniqueID string
	OriginalStart  time.Time
}

// OccurrenceKey formats an occurrence's original date the way the
// occurrence-date map stores it.
func OccurrenceKey(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}
