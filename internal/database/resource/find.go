package resource

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// FindAvailable returns the ids of resources free for the whole period.
// A resource conflicts when it has an active allocation overlapping the
// period, unless that allocation belongs to the excluded reservation
// (the one being edited).
func (*Repository) FindAvailable(ctx context.Context, q database.Queryable, filter model.ResourceFilter) ([]int64, error) {
	qb := database.PSQL.
		Select("r.id").
		From(database.ResourcesTable + " r").
		Where(sq.Expr(
			`not exists (
				select 1 from `+database.AllocationsTable+` a
				where a.resource_id = r.id
				  and a.status in (?, ?)
				  and a.start_ts < ?
				  and a.end_ts > ?
				  and a.reservation_id <> ?
			)`,
			model.StatusAwaitingApproval,
			model.StatusConfirmed,
			filter.Period.End,
			filter.Period.Start,
			filter.ExcludeReservationID,
		)).
		OrderBy("r.id")

	if filter.BuildingID != 0 {
		qb = qb.Where(sq.Eq{"r.building_id": filter.BuildingID})
	}
	if filter.Capacity > 0 {
		qb = qb.Where(sq.GtOrEq{"r.capacity": filter.Capacity})
	}
	if filter.RoomsOnly {
		qb = qb.Where(sq.Eq{"r.is_room": true})
	}

	var ids []int64
	if err := q.Select(ctx, &ids, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return ids, nil
}

func (*Repository) GetResourceByID(ctx context.Context, q database.Queryable, id int64) (*model.Resource, error) {
	qb := database.PSQL.
		Select("id", "name", "building_id", "capacity", "is_room").
		From(database.ResourcesTable).
		Where(sq.Eq{"id": id})

	res := &model.Resource{}
	if err := q.Get(ctx, res, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return res, nil
}
