package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/pkg/timeutil"
	"github.com/resplan/resplan-backend/internal/recurrence"
)

// PushReservation mirrors one non-recurring reservation outward:
// binding to the linked event when one exists, creating otherwise.
// Subject, body, times and attendees are always set.
func (s *Service) PushReservation(ctx context.Context, res *model.Reservation) error {
	session, err := s.sessions.ForPrincipal(ctx, res.RequestorID)
	if err != nil {
		return err
	}

	event, err := s.buildEvent(ctx, res)
	if err != nil {
		return err
	}

	if res.UniqueID != "" {
		event.UniqueID = res.UniqueID
		if err := session.Update(ctx, event); err != nil {
			return fmt.Errorf("session.Update: %w", err)
		}
		return nil
	}

	event.ReservationID = res.ID
	uniqueID, err := session.Create(ctx, event)
	if err != nil {
		return fmt.Errorf("session.Create: %w", err)
	}

	if err := s.reservations.SetUniqueID(ctx, s.db, res.ID, uniqueID); err != nil {
		return fmt.Errorf("reservations.SetUniqueID: %w", err)
	}
	res.UniqueID = uniqueID

	return nil
}

// PushSeries mirrors a whole series. The recurrence pattern goes out
// only at first creation: the external event's date/time pattern is
// never re-pushed on update. On creation the occurrence-date map of
// member reservation ids is stored as event metadata.
func (s *Service) PushSeries(ctx context.Context, series *model.ReservationSeries) error {
	parent := findParent(series)
	if parent == nil {
		return model.ErrNoRecord
	}

	session, err := s.sessions.ForPrincipal(ctx, parent.RequestorID)
	if err != nil {
		return err
	}

	event, err := s.buildEvent(ctx, parent)
	if err != nil {
		return err
	}

	if parent.UniqueID != "" {
		event.UniqueID = parent.UniqueID
		if err := session.Update(ctx, event); err != nil {
			return fmt.Errorf("session.Update: %w", err)
		}
		return nil
	}

	pattern, err := recurrence.Parse(series.RecurrenceRule)
	if err != nil {
		return err
	}
	rule, err := pattern.RRule(parent.Period.Start)
	if err != nil {
		return err
	}
	event.RecurrenceRule = "RRULE:" + rule

	// Keys are UTC occurrence dates, matching the instants the inbound
	// path derives from an occurrence's original start.
	event.OccurrenceIDs = make(map[string]int64, len(series.Members))
	for _, m := range series.Members {
		zone, err := s.zoneOf(ctx, m)
		if err != nil {
			return fmt.Errorf("resolve zone: %w", err)
		}
		start, _ := periodInstants(m.Period, zone)
		event.OccurrenceIDs[model.OccurrenceKey(start)] = m.ID
	}

	uniqueID, err := session.Create(ctx, event)
	if err != nil {
		return fmt.Errorf("session.Create: %w", err)
	}

	for _, m := range series.Members {
		if err := s.reservations.SetUniqueID(ctx, s.db, m.ID, uniqueID); err != nil {
			return fmt.Errorf("reservations.SetUniqueID: %w", err)
		}
		m.UniqueID = uniqueID
	}

	return nil
}

// AttendeeResponses fetches the current accept/decline state of the
// linked event's attendees.
func (s *Service) AttendeeResponses(ctx context.Context, res *model.Reservation) (map[string]string, error) {
	if res.UniqueID == "" {
		return nil, model.ErrNoRecord
	}

	session, err := s.sessions.ForPrincipal(ctx, res.RequestorID)
	if err != nil {
		return nil, err
	}

	event, err := session.BindByUniqueID(ctx, res.UniqueID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("session.BindByUniqueID: %w", err)
	}

	return session.AttendeeResponses(ctx, event)
}

// buildEvent renders the reservation as an outbound event. Stored
// periods are wall-clock readings; they are pinned to the reservation's
// explicit zone, or the room's building zone when no zone is set,
// before going out as instants.
func (s *Service) buildEvent(ctx context.Context, res *model.Reservation) (*model.CalendarEvent, error) {
	room, err := s.roomOf(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("resolve room: %w", err)
	}

	location := ""
	zone := res.Period.Zone
	if room != nil {
		location = room.Name
		if zone == "" {
			zone, err = s.zones.ZoneIDForBuilding(ctx, room.BuildingID)
			if err != nil {
				return nil, fmt.Errorf("zones.ZoneIDForBuilding: %w", err)
			}
		}
	}
	if zone == "" {
		zone = "UTC"
	}

	start, err := timeutil.Convert(res.Period.Start, zone, "UTC")
	if err != nil {
		return nil, err
	}
	end, err := timeutil.Convert(res.Period.End, zone, "UTC")
	if err != nil {
		return nil, err
	}

	return &model.CalendarEvent{
		Subject:   res.Title,
		Body:      res.Comments,
		Start:     start,
		End:       end,
		Location:  location,
		Organizer: res.RequestorID,
		Attendees: append([]string(nil), res.Attendees...),
	}, nil
}

func findParent(series *model.ReservationSeries) *model.Reservation {
	for _, m := range series.Members {
		if m.ID == series.ParentID {
			return m
		}
	}
	if len(series.Members) != 0 {
		return series.Members[0]
	}
	return nil
}
