package reservation

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

func (*Repository) GetReservationByID(ctx context.Context, q database.Queryable, id int64) (*model.Reservation, error) {
	return getOne(ctx, q, sq.Eq{"id": id})
}

func (*Repository) GetReservationByUniqueID(ctx context.Context, q database.Queryable, uniqueID string) (*model.Reservation, error) {
	return getOne(ctx, q, sq.Eq{"unique_id": uniqueID})
}

func (*Repository) GetReservationsByParentID(ctx context.Context, q database.Queryable, parentID int64) ([]*model.Reservation, error) {
	qb := baseQuery.
		Where(sq.Eq{"parent_id": parentID}).
		OrderBy("start_ts")

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

func getOne(ctx context.Context, q database.Queryable, where sq.Eq) (*model.Reservation, error) {
	qb := baseQuery.Where(where)

	dto := &reservationDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	allocations, err := getAllocations(ctx, q, []int64{dto.ID})
	if err != nil {
		return nil, err
	}

	return mapToReservation(dto, allocations[dto.ID]), nil
}

func getAllocations(ctx context.Context, q database.Queryable, reservationIDs []int64) (map[int64][]*allocationDTO, error) {
	if len(reservationIDs) == 0 {
		return nil, nil
	}

	qb := allocationsQuery.
		Where(sq.Eq{"a.reservation_id": reservationIDs}).
		OrderBy("a.id")

	var dtos []*allocationDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make(map[int64][]*allocationDTO)
	for _, d := range dtos {
		res[d.ReservationID] = append(res[d.ReservationID], d)
	}

	return res, nil
}
