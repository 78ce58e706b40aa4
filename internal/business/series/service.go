// Package series orchestrates creation, editing and cancellation of
// recurring reservation series.
package series

import (
	"context"

	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
	"go.uber.org/zap"
)

type Service struct {
	db           database.PGX
	logger       *zap.SugaredLogger
	reservations reservationsRepository
	resources    resourcesRepository
}

type reservationsRepository interface {
	CreateReservation(ctx context.Context, q database.Queryable, res *model.Reservation) (int64, error)
	GetReservationByID(ctx context.Context, q database.Queryable, id int64) (*model.Reservation, error)
	GetReservationsByParentID(ctx context.Context, q database.Queryable, parentID int64) ([]*model.Reservation, error)
	UpdateReservation(ctx context.Context, q database.Queryable, res *model.Reservation) error
	SetSeriesLink(ctx context.Context, q database.Queryable, id, parentID int64, rule string) error
	SetUniqueID(ctx context.Context, q database.Queryable, id int64, uniqueID string) error
	CreateAllocation(ctx context.Context, q database.Queryable, alloc *model.Allocation) (int64, error)
	UpdateAllocation(ctx context.Context, q database.Queryable, alloc *model.Allocation) error
	DeleteAllocation(ctx context.Context, q database.Queryable, id int64) error
	CancelReservation(ctx context.Context, q database.Queryable, id int64) error
}

type resourcesRepository interface {
	FindAvailable(ctx context.Context, q database.Queryable, filter model.ResourceFilter) ([]int64, error)
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	reservations reservationsRepository,
	resources resourcesRepository,
) *Service {
	return &Service{
		db:           db,
		logger:       logger,
		reservations: reservations,
		resources:    resources,
	}
}

func (s *Service) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return s.reservations.GetReservationByID(ctx, s.db, id)
}

func (s *Service) GetSeries(ctx context.Context, parentID int64) (*model.ReservationSeries, error) {
	members, err := s.reservations.GetReservationsByParentID(ctx, s.db, parentID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, model.ErrNoRecord
	}

	return &model.ReservationSeries{
		ParentID:       parentID,
		RecurrenceRule: members[0].RecurrenceRule,
		Members:        members,
	}, nil
}
