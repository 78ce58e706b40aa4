package reservation

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

// CancelReservation transitions the reservation and all of its
// allocations to cancelled and resets allocation costs to zero. Rows
// are never deleted.
func (*Repository) CancelReservation(ctx context.Context, q database.Queryable, id int64) error {
	qb := database.PSQL.
		Update(database.ReservationsTable).
		Set("status", model.StatusCancelled).
		Where(sq.Eq{"id": id})

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	ab := database.PSQL.
		Update(database.AllocationsTable).
		SetMap(map[string]interface{}{
			"status": model.StatusCancelled,
			"cost":   0,
		}).
		Where(sq.Eq{"reservation_id": id})

	if _, err := q.Exec(ctx, ab); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
