// Package google adapts the Google Calendar API to the abstract
// calendar.Session surface. Sessions impersonate the organizer through
// a service account with domain-wide delegation.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resplan/resplan-backend/internal/calendar"
	"github.com/resplan/resplan-backend/internal/config"
	"github.com/resplan/resplan-backend/internal/model"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const calendarID = "primary"

type Provider struct {
	secret []byte
}

func NewProvider() (*Provider, error) {
	secret, err := os.ReadFile(config.ClientSecretPath())
	if err != nil {
		return nil, fmt.Errorf("can't open client secret: %w", err)
	}

	return &Provider{secret: secret}, nil
}

func (p *Provider) OpenSession(ctx context.Context, principal string) (calendar.Session, error) {
	conf, err := google.JWTConfigFromJSON(p.secret, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("can't parse secrets: %w", err)
	}
	conf.Subject = principal

	svc, err := gcal.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Calendar API: %w", err)
	}

	return &session{principal: principal, svc: svc}, nil
}

type session struct {
	principal string
	svc       *gcal.Service
}

func (s *session) Principal() string {
	return s.principal
}

func (s *session) BindByUniqueID(ctx context.Context, uniqueID string) (*model.CalendarEvent, error) {
	ev, err := s.svc.Events.Get(calendarID, uniqueID).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	if ev.Status == "cancelled" {
		return nil, model.ErrNoRecord
	}

	return fromGoogleEvent(ev)
}

func (s *session) BindOccurrence(ctx context.Context, uniqueID string, occurrenceStart time.Time) (*model.CalendarEvent, error) {
	call := s.svc.Events.Instances(calendarID, uniqueID).
		TimeMin(occurrenceStart.UTC().Add(-24 * time.Hour).Format(time.RFC3339)).
		TimeMax(occurrenceStart.UTC().Add(24 * time.Hour).Format(time.RFC3339)).
		Context(ctx)

	instances, err := call.Do()
	if err != nil {
		return nil, mapError(err)
	}

	for _, ev := range instances.Items {
		original := ev.OriginalStartTime
		if original == nil {
			continue
		}
		ts, err := parseEventTime(original)
		if err != nil {
			continue
		}
		if ts.Equal(occurrenceStart) && ev.Status != "cancelled" {
			return fromGoogleEvent(ev)
		}
	}

	return nil, model.ErrNoRecord
}

func (s *session) Create(ctx context.Context, event *model.CalendarEvent) (string, error) {
	ev := toGoogleEvent(event)
	// Hex uuids fall inside the base32hex alphabet the API requires
	// for client-supplied ids, and they make a retried insert idempotent.
	ev.Id = strings.ReplaceAll(uuid.NewString(), "-", "")

	created, err := s.svc.Events.Insert(calendarID, ev).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", mapError(err)
	}

	return created.Id, nil
}

func (s *session) Update(ctx context.Context, event *model.CalendarEvent) error {
	ev := toGoogleEvent(event)
	// Date/time pattern edits are never pushed on update.
	ev.Recurrence = nil

	if _, err := s.svc.Events.Patch(calendarID, event.UniqueID, ev).
		SendUpdates("all").
		Context(ctx).
		Do(); err != nil {
		return mapError(err)
	}

	return nil
}

func (s *session) Cancel(ctx context.Context, event *model.CalendarEvent, message string) error {
	if message != "" {
		patch := &gcal.Event{Description: message}
		if _, err := s.svc.Events.Patch(calendarID, event.UniqueID, patch).Context(ctx).Do(); err != nil {
			return mapError(err)
		}
	}

	if err := s.svc.Events.Delete(calendarID, event.UniqueID).
		SendUpdates("all").
		Context(ctx).
		Do(); err != nil {
		return mapError(err)
	}

	return nil
}

func (s *session) Decline(ctx context.Context, event *model.CalendarEvent, reason string) error {
	ev, err := s.svc.Events.Get(calendarID, event.UniqueID).Context(ctx).Do()
	if err != nil {
		return mapError(err)
	}

	for _, a := range ev.Attendees {
		if a.Self {
			a.ResponseStatus = "declined"
			a.Comment = reason
		}
	}

	patch := &gcal.Event{Attendees: ev.Attendees}
	if _, err := s.svc.Events.Patch(calendarID, event.UniqueID, patch).
		SendUpdates("all").
		Context(ctx).
		Do(); err != nil {
		return mapError(err)
	}

	return nil
}

func (s *session) AttendeeResponses(ctx context.Context, event *model.CalendarEvent) (map[string]string, error) {
	ev, err := s.svc.Events.Get(calendarID, event.UniqueID).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	res := make(map[string]string, len(ev.Attendees))
	for _, a := range ev.Attendees {
		res[a.Email] = a.ResponseStatus
	}

	return res, nil
}

func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
		return model.ErrNoRecord
	}
	return fmt.Errorf("calendar API: %w", err)
}
