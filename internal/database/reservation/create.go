package reservation

import (
	"context"
	"fmt"

	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

func (*Repository) CreateReservation(ctx context.Context, q database.Queryable, res *model.Reservation) (int64, error) {
	qb := database.PSQL.
		Insert(database.ReservationsTable).
		Columns(
			"status",
			"unique_id",
			"parent_id",
			"recurrence_rule",
			"title",
			"comments",
			"requestor",
			"attendees",
			"start_ts",
			"end_ts",
			"zone",
		).
		Values(
			res.Status,
			res.UniqueID,
			res.ParentID,
			res.RecurrenceRule,
			res.Title,
			res.Comments,
			res.RequestorID,
			res.Attendees,
			res.Period.Start,
			res.Period.End,
			res.Period.Zone,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}
	res.ID = id

	for _, a := range res.AllAllocations() {
		a.ReservationID = id
		if _, err := createAllocation(ctx, q, a); err != nil {
			return 0, err
		}
	}

	return id, nil
}

func (*Repository) CreateAllocation(ctx context.Context, q database.Queryable, alloc *model.Allocation) (int64, error) {
	return createAllocation(ctx, q, alloc)
}

func createAllocation(ctx context.Context, q database.Queryable, alloc *model.Allocation) (int64, error) {
	qb := database.PSQL.
		Insert(database.AllocationsTable).
		Columns(
			"reservation_id",
			"resource_id",
			"start_ts",
			"end_ts",
			"status",
			"cost",
		).
		Values(
			alloc.ReservationID,
			alloc.ResourceID,
			alloc.Period.Start,
			alloc.Period.End,
			alloc.Status,
			alloc.Cost,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}
	alloc.ID = id

	return id, nil
}
