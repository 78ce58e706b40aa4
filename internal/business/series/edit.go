package series

import (
	"context"
	"fmt"

	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

// EditResult reports the outcome of one series edit. Failed maps the
// member reservation id to the error that stopped it; successfully
// updated members stay committed regardless.
type EditResult struct {
	Updated []*model.Reservation
	Failed  map[int64]error
}

// EditSeries copies the editable fields of the template (title,
// attendees, comments and the resource set, never date or time) onto
// every active member of the series. Each member is re-validated and
// persisted independently: a failure aborts only that member.
func (s *Service) EditSeries(ctx context.Context, parentID int64, template *model.Reservation) (*EditResult, error) {
	if err := validateTemplate(template); err != nil {
		return nil, err
	}

	members, err := s.reservations.GetReservationsByParentID(ctx, s.db, parentID)
	if err != nil {
		return nil, fmt.Errorf("reservations.GetReservationsByParentID: %w", err)
	}
	if len(members) == 0 {
		return nil, model.ErrNoRecord
	}

	result := &EditResult{Failed: map[int64]error{}}

	for _, member := range members {
		if !member.Active() {
			continue
		}

		if err := s.editMember(ctx, member, template); err != nil {
			s.logger.Errorw("series member edit failed",
				"reservation_id", member.ID,
				"parent_id", parentID,
				"err", err,
			)
			result.Failed[member.ID] = err
			continue
		}

		result.Updated = append(result.Updated, member)
	}

	if _, err := s.markRecurring(ctx, s.db, members, members[0].RecurrenceRule); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) editMember(ctx context.Context, member, template *model.Reservation) error {
	// The member's own allocations must not count as conflicts against
	// itself on its date.
	if err := s.checkOccurrence(ctx, template, member.Period.Start, member.ID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	member.Title = template.Title
	member.Comments = template.Comments
	member.Attendees = append([]string(nil), template.Attendees...)

	if err := s.reservations.UpdateReservation(ctx, tx, member); err != nil {
		return fmt.Errorf("reservations.UpdateReservation: %w", err)
	}

	member.Rooms, err = s.reconcileAllocations(ctx, tx, member, member.Rooms, template.Rooms)
	if err != nil {
		return err
	}
	member.Resources, err = s.reconcileAllocations(ctx, tx, member, member.Resources, template.Resources)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// reconcileAllocations matches member allocations to the template's by
// resource id: matches are updated in place, template-only entries are
// added on the member's date, member-only entries are removed.
func (s *Service) reconcileAllocations(ctx context.Context, q database.Queryable, member *model.Reservation, current, wanted []*model.Allocation) ([]*model.Allocation, error) {
	byResource := make(map[int64]*model.Allocation, len(current))
	for _, a := range current {
		byResource[a.ResourceID] = a
	}

	var res []*model.Allocation
	for _, want := range wanted {
		existing, ok := byResource[want.ResourceID]
		if ok {
			delete(byResource, want.ResourceID)
			existing.Cost = want.Cost
			existing.Status = want.Status
			existing.Period = want.Period.OnDate(member.Period.Start)
			if err := s.reservations.UpdateAllocation(ctx, q, existing); err != nil {
				return nil, fmt.Errorf("reservations.UpdateAllocation: %w", err)
			}
			res = append(res, existing)
			continue
		}

		added := cloneAllocation(want, member.Period.Start)
		added.ReservationID = member.ID
		if _, err := s.reservations.CreateAllocation(ctx, q, added); err != nil {
			return nil, fmt.Errorf("reservations.CreateAllocation: %w", err)
		}
		res = append(res, added)
	}

	for _, leftover := range byResource {
		if err := s.reservations.DeleteAllocation(ctx, q, leftover.ID); err != nil {
			return nil, fmt.Errorf("reservations.DeleteAllocation: %w", err)
		}
	}

	return res, nil
}
