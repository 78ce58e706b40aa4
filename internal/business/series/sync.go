package series

import (
	"context"
	"fmt"

	"github.com/resplan/resplan-backend/internal/model"
)

// ApplySyncUpdate persists field changes accepted from the external
// calendar onto one reservation. Allocations follow the meeting window,
// and availability is re-validated excluding the reservation itself.
func (s *Service) ApplySyncUpdate(ctx context.Context, res *model.Reservation) error {
	for _, a := range res.AllAllocations() {
		a.Period.Start = res.Period.Start
		a.Period.End = res.Period.End
	}

	if err := s.checkOccurrence(ctx, res, res.Period.Start, res.ID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.reservations.UpdateReservation(ctx, tx, res); err != nil {
		return fmt.Errorf("reservations.UpdateReservation: %w", err)
	}
	for _, a := range res.AllAllocations() {
		if err := s.reservations.UpdateAllocation(ctx, tx, a); err != nil {
			return fmt.Errorf("reservations.UpdateAllocation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
