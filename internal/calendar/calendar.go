// Package calendar defines the abstract surface of the external
// calendar system. The sync engine depends only on these interfaces,
// never on a vendor SDK type.
package calendar

import (
	"context"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
)

// Provider opens sessions against the external calendar on behalf of
// one organizer identity.
type Provider interface {
	OpenSession(ctx context.Context, principal string) (Session, error)
}

// Session is an open connection acting as one principal.
type Session interface {
	Principal() string

	// BindByUniqueID resolves an event by its opaque unique id,
	// returning model.ErrNoRecord when the event no longer exists.
	BindByUniqueID(ctx context.Context, uniqueID string) (*model.CalendarEvent, error)

	// BindOccurrence resolves one occurrence of a recurring event by the
	// master's unique id and the occurrence's original start instant.
	BindOccurrence(ctx context.Context, uniqueID string, occurrenceStart time.Time) (*model.CalendarEvent, error)

	// Create pushes a new event and returns its unique id.
	Create(ctx context.Context, event *model.CalendarEvent) (string, error)

	Update(ctx context.Context, event *model.CalendarEvent) error

	Cancel(ctx context.Context, event *model.CalendarEvent, message string) error

	// Decline rejects an inbound change through the same channel it
	// arrived on, leaving the stored reservation untouched.
	Decline(ctx context.Context, event *model.CalendarEvent, reason string) error

	AttendeeResponses(ctx context.Context, event *model.CalendarEvent) (map[string]string, error)
}
