package reservation

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

func (*Repository) UpdateReservation(ctx context.Context, q database.Queryable, res *model.Reservation) error {
	qb := database.PSQL.
		Update(database.ReservationsTable).
		SetMap(map[string]interface{}{
			"status":          res.Status,
			"unique_id":       res.UniqueID,
			"parent_id":       res.ParentID,
			"recurrence_rule": res.RecurrenceRule,
			"title":           res.Title,
			"comments":        res.Comments,
			"requestor":       res.RequestorID,
			"attendees":       res.Attendees,
			"start_ts":        res.Period.Start,
			"end_ts":          res.Period.End,
			"zone":            res.Period.Zone,
		}).
		Where(sq.Eq{"id": res.ID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

// SetSeriesLink stores the parent pointer and the recurrence rule text
// on one series member.
func (*Repository) SetSeriesLink(ctx context.Context, q database.Queryable, id, parentID int64, rule string) error {
	qb := database.PSQL.
		Update(database.ReservationsTable).
		SetMap(map[string]interface{}{
			"parent_id":       parentID,
			"recurrence_rule": rule,
		}).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) SetUniqueID(ctx context.Context, q database.Queryable, id int64, uniqueID string) error {
	qb := database.PSQL.
		Update(database.ReservationsTable).
		Set("unique_id", uniqueID).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) UpdateAllocation(ctx context.Context, q database.Queryable, alloc *model.Allocation) error {
	qb := database.PSQL.
		Update(database.AllocationsTable).
		SetMap(map[string]interface{}{
			"resource_id": alloc.ResourceID,
			"start_ts":    alloc.Period.Start,
			"end_ts":      alloc.Period.End,
			"status":      alloc.Status,
			"cost":        alloc.Cost,
		}).
		Where(sq.Eq{"id": alloc.ID})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}

func (*Repository) DeleteAllocation(ctx context.Context, q database.Queryable, id int64) error {
	qb := database.PSQL.
		Delete(database.AllocationsTable).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
