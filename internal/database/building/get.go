package building

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

func (*Repository) GetZoneID(ctx context.Context, q database.Queryable, buildingID int64) (string, error) {
	qb := database.PSQL.
		Select("timezone").
		From(database.BuildingsTable).
		Where(sq.Eq{"id": buildingID})

	var zone string
	if err := q.Get(ctx, &zone, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrNoRecord
		}
		return "", fmt.Errorf("SQL request: %w", err)
	}

	return zone, nil
}
