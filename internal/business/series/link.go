package series

import (
	"context"
	"fmt"

	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

// markRecurring picks the active member with the earliest start date as
// the series parent and stores that pointer plus the recurrence rule
// text on every member.
func (s *Service) markRecurring(ctx context.Context, q database.Queryable, members []*model.Reservation, rule string) (int64, error) {
	var parent *model.Reservation
	for _, m := range members {
		if !m.Active() {
			continue
		}
		if parent == nil || m.Period.Start.Before(parent.Period.Start) {
			parent = m
		}
	}
	if parent == nil {
		return 0, nil
	}

	for _, m := range members {
		if err := s.reservations.SetSeriesLink(ctx, q, m.ID, parent.ID, rule); err != nil {
			return 0, fmt.Errorf("reservations.SetSeriesLink: %w", err)
		}
		m.ParentID = parent.ID
		m.RecurrenceRule = rule
	}

	return parent.ID, nil
}

// Relink recomputes the parent pointer after members were cancelled, so
// the parent id always refers to the earliest active member.
func (s *Service) Relink(ctx context.Context, parentID int64) (int64, error) {
	members, err := s.reservations.GetReservationsByParentID(ctx, s.db, parentID)
	if err != nil {
		return 0, fmt.Errorf("reservations.GetReservationsByParentID: %w", err)
	}
	if len(members) == 0 {
		return 0, model.ErrNoRecord
	}

	return s.markRecurring(ctx, s.db, members, members[0].RecurrenceRule)
}
