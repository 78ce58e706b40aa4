package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/resplan/resplan-backend/internal/model"
)

// CancelReservation removes the external event backing one cancelled
// reservation. A reservation whose event no longer exists is treated
// as already disconnected, and its correspondence is cleared.
func (s *Service) CancelReservation(ctx context.Context, res *model.Reservation, message string) error {
	if res.UniqueID == "" {
		return nil
	}

	session, err := s.sessions.ForPrincipal(ctx, res.RequestorID)
	if err != nil {
		return err
	}

	var event *model.CalendarEvent
	if res.ParentID != 0 {
		zone, zerr := s.zoneOf(ctx, res)
		if zerr != nil {
			return fmt.Errorf("resolve zone: %w", zerr)
		}
		start, _ := periodInstants(res.Period, zone)
		event, err = session.BindOccurrence(ctx, res.UniqueID, start)
	} else {
		event, err = session.BindByUniqueID(ctx, res.UniqueID)
	}
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return s.decouple(ctx, res)
		}
		return fmt.Errorf("resolve event: %w", err)
	}

	if err := session.Cancel(ctx, event, message); err != nil {
		return fmt.Errorf("session.Cancel: %w", err)
	}

	if err := s.decouple(ctx, res); err != nil {
		return err
	}

	s.notifier.Notify(ctx, res.ID)
	return nil
}

// CancelSeries cancels every resolvable member's external occurrence.
// A per-member failure does not block the remaining members; each
// outcome is reported individually.
func (s *Service) CancelSeries(ctx context.Context, members []*model.Reservation, message string) error {
	var failed int
	for _, m := range members {
		if err := s.CancelReservation(ctx, m, message); err != nil {
			failed++
			s.logger.Errorw("series member cancellation sync failed",
				"reservation_id", m.ID, "err", err)
			s.notifier.Notify(ctx, m.ID)
		}
	}

	if failed != 0 {
		return fmt.Errorf("%d of %d member cancellations failed", failed, len(members))
	}
	return nil
}

// decouple clears the unique-id correspondence once the external event
// is gone or cancelled.
func (s *Service) decouple(ctx context.Context, res *model.Reservation) error {
	if err := s.reservations.SetUniqueID(ctx, s.db, res.ID, ""); err != nil {
		return fmt.Errorf("reservations.SetUniqueID: %w", err)
	}
	res.UniqueID = ""
	return nil
}
