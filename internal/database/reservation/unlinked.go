package reservation

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

// GetUnlinked returns active reservations that have no external event
// bound yet, oldest first.
func (*Repository) GetUnlinked(ctx context.Context, q database.Queryable, limit uint64) ([]*model.Reservation, error) {
	qb := baseQuery.
		Where(sq.Eq{"unique_id": ""}).
		Where(sq.Eq{"status": []model.ReservationStatus{
			model.StatusAwaitingApproval,
			model.StatusConfirmed,
		}}).
		OrderBy("id").
		Limit(limit)

	var dtos []*reservationDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	ids := make([]int64, len(dtos))
	for i, d := range dtos {
		ids[i] = d.ID
	}

	allocations, err := getAllocations(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	res := make([]*model.Reservation, len(dtos))
	for i, d := range dtos {
		res[i] = mapToReservation(d, allocations[d.ID])
	}

	return res, nil
}
