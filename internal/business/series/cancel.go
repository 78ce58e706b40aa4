package series

import (
	"context"
	"fmt"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
)

// CancelOccurrence cancels one member reservation. Cancellation is a
// status transition: allocation costs drop to zero, rows stay.
func (s *Service) CancelOccurrence(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.reservations.GetReservationByID(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("reservations.GetReservationByID: %w", err)
	}

	if err := s.cancelOne(ctx, res); err != nil {
		return nil, err
	}

	if res.ParentID != 0 {
		if _, err := s.Relink(ctx, res.ParentID); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// CancelFrom cancels every active member starting on or after the given
// instant.
func (s *Service) CancelFrom(ctx context.Context, parentID int64, from time.Time) ([]*model.Reservation, error) {
	return s.cancelMembers(ctx, parentID, func(m *model.Reservation) bool {
		return !m.Period.Start.Before(from)
	})
}

// CancelSeries cancels every active member of the series.
func (s *Service) CancelSeries(ctx context.Context, parentID int64) ([]*model.Reservation, error) {
	return s.cancelMembers(ctx, parentID, func(*model.Reservation) bool { return true })
}

func (s *Service) cancelMembers(ctx context.Context, parentID int64, match func(*model.Reservation) bool) ([]*model.Reservation, error) {
	members, err := s.reservations.GetReservationsByParentID(ctx, s.db, parentID)
	if err != nil {
		return nil, fmt.Errorf("reservations.GetReservationsByParentID: %w", err)
	}
	if len(members) == 0 {
		return nil, model.ErrNoRecord
	}

	var cancelled []*model.Reservation
	for _, m := range members {
		if !m.Active() || !match(m) {
			continue
		}
		if err := s.cancelOne(ctx, m); err != nil {
			return nil, err
		}
		cancelled = append(cancelled, m)
	}

	if _, err := s.markRecurring(ctx, s.db, members, members[0].RecurrenceRule); err != nil {
		return nil, err
	}

	return cancelled, nil
}

func (s *Service) cancelOne(ctx context.Context, res *model.Reservation) error {
	if err := s.reservations.CancelReservation(ctx, s.db, res.ID); err != nil {
		return fmt.Errorf("reservations.CancelReservation: %w", err)
	}

	res.Status = model.StatusCancelled
	for _, a := range res.AllAllocations() {
		a.Status = model.StatusCancelled
		a.Cost = 0
	}

	return nil
}
