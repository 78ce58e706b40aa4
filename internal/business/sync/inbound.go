package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/resplan/resplan-backend/internal/calendar"
	"github.com/resplan/resplan-backend/internal/model"
)

// ProcessInbound reconciles one externally originated change. Rejected
// changes are declined through the session and never mutate stored
// state; the returned error is a *model.SyncConflict in that case.
func (s *Service) ProcessInbound(ctx context.Context, session calendar.Session, event *model.CalendarEvent) error {
	switch event.Kind {
	case model.AppointmentSingle:
		return s.inboundSingle(ctx, session, event)
	case model.AppointmentOccurrence, model.AppointmentException:
		return s.inboundOccurrence(ctx, session, event)
	case model.AppointmentRecurringMaster:
		return s.inboundMaster(ctx, session, event)
	default:
		return fmt.Errorf("unknown appointment kind: %v", event.Kind)
	}
}

func (s *Service) inboundSingle(ctx context.Context, session calendar.Session, event *model.CalendarEvent) error {
	res, err := s.resolveReservation(ctx, event.ReservationID, event.UniqueID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return s.reject(ctx, session, event, "no reservation linked to this event")
		}
		return err
	}

	return s.reconcileOne(ctx, session, res, event)
}

// inboundOccurrence handles one occurrence or exception. Resolution
// goes through the event's own metadata first, falling back to the
// recurring master's occurrence-date map.
func (s *Service) inboundOccurrence(ctx context.Context, session calendar.Session, event *model.CalendarEvent) error {
	id := event.ReservationID
	if id == 0 && event.MasterUniqueID != "" {
		master, err := session.BindByUniqueID(ctx, event.MasterUniqueID)
		if err != nil && !errors.Is(err, model.ErrNoRecord) {
			return fmt.Errorf("session.BindByUniqueID: %w", err)
		}
		if master != nil {
			id = master.OccurrenceIDs[model.OccurrenceKey(event.OriginalStart)]
		}
	}

	res, err := s.resolveReservation(ctx, id, "")
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return s.reject(ctx, session, event, "no reservation linked to this occurrence")
		}
		return err
	}

	return s.reconcileOne(ctx, session, res, event)
}

// inboundMaster requires every stored series member to have a matching
// external occurrence. One missing occurrence rejects the entire update
// untouched: series-level date/time pattern edits are unsupported.
func (s *Service) inboundMaster(ctx context.Context, session calendar.Session, event *model.CalendarEvent) error {
	members, err := s.resolveMembers(ctx, event)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return s.reject(ctx, session, event, "no series linked to this event")
		}
		return err
	}

	matched := make([]*model.CalendarEvent, len(members))
	zones := make([]string, len(members))
	for i, member := range members {
		zone, err := s.zoneOf(ctx, member)
		if err != nil {
			return fmt.Errorf("resolve zone: %w", err)
		}
		zones[i] = zone

		start, _ := periodInstants(member.Period, zone)
		occ, err := session.BindOccurrence(ctx, event.UniqueID, start)
		if err != nil {
			if errors.Is(err, model.ErrNoRecord) {
				return s.reject(ctx, session, event, fmt.Sprintf(
					"occurrence on %s is missing from the calendar series",
					member.Period.Start.Format("2006-01-02"),
				))
			}
			return fmt.Errorf("session.BindOccurrence: %w", err)
		}
		matched[i] = occ
	}

	for i, member := range members {
		occ := matched[i]

		// Only non-temporal differences flow through a master update;
		// the occurrence dates themselves are defined by the pattern.
		occ.Start, occ.End = periodInstants(member.Period, zones[i])

		if err := s.reconcileOne(ctx, session, member, occ); err != nil {
			return err
		}
	}

	return nil
}

// reconcileOne implements the shared accept/reject logic: equivalent
// events are accepted as-is; otherwise the changes are applied onto the
// reservation and persisted, and a persistence failure rejects the
// change leaving the stored row untouched.
func (s *Service) reconcileOne(ctx context.Context, session calendar.Session, res *model.Reservation, event *model.CalendarEvent) error {
	location, err := s.locationOf(ctx, res)
	if err != nil {
		return fmt.Errorf("resolve location: %w", err)
	}
	zone, err := s.zoneOf(ctx, res)
	if err != nil {
		return fmt.Errorf("resolve zone: %w", err)
	}

	if isEquivalent(res, location, zone, event, false) {
		s.logger.Debugw("inbound event equivalent, accepted",
			"reservation_id", res.ID, "unique_id", event.UniqueID)
		return nil
	}

	isEquivalent(res, location, zone, event, true)

	if err := s.series.ApplySyncUpdate(ctx, res); err != nil {
		return s.reject(ctx, session, event, fmt.Sprintf("cannot apply update: %v", err))
	}

	s.notifier.Notify(ctx, res.ID)
	return nil
}

func (s *Service) resolveReservation(ctx context.Context, id int64, uniqueID string) (*model.Reservation, error) {
	if id != 0 {
		return s.reservations.GetReservationByID(ctx, s.db, id)
	}
	if uniqueID != "" {
		return s.reservations.GetReservationByUniqueID(ctx, s.db, uniqueID)
	}
	return nil, model.ErrNoRecord
}

// resolveMembers loads the active series members named by the master's
// occurrence-date map.
func (s *Service) resolveMembers(ctx context.Context, event *model.CalendarEvent) ([]*model.Reservation, error) {
	var anyID int64
	for _, id := range event.OccurrenceIDs {
		anyID = id
		break
	}
	if anyID == 0 {
		return nil, model.ErrNoRecord
	}

	member, err := s.reservations.GetReservationByID(ctx, s.db, anyID)
	if err != nil {
		return nil, err
	}

	parentID := member.ParentID
	if parentID == 0 {
		parentID = member.ID
	}

	members, err := s.reservations.GetReservationsByParentID(ctx, s.db, parentID)
	if err != nil {
		return nil, err
	}

	var active []*model.Reservation
	for _, m := range members {
		if m.Active() {
			active = append(active, m)
		}
	}
	if len(active) == 0 {
		return nil, model.ErrNoRecord
	}

	return active, nil
}

func (s *Service) reject(ctx context.Context, session calendar.Session, event *model.CalendarEvent, reason string) error {
	if err := session.Decline(ctx, event, reason); err != nil {
		s.logger.Errorw("failed to decline rejected event",
			"unique_id", event.UniqueID, "err", err)
	}

	return &model.SyncConflict{UniqueID: event.UniqueID, Reason: reason}
}
