// Package sync keeps stored reservations and their externally owned
// calendar events reconciled, in both directions.
package sync

import (
	"context"

	"github.com/resplan/resplan-backend/internal/calendar"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
	"go.uber.org/zap"
)

type Service struct {
	db           database.PGX
	logger       *zap.SugaredLogger
	sessions     sessionCache
	reservations reservationsRepository
	resources    resourcesRepository
	zones        zoneResolver
	series       seriesService
	notifier     notifier
}

type sessionCache interface {
	ForPrincipal(ctx context.Context, principal string) (calendar.Session, error)
}

type reservationsRepository interface {
	GetReservationByID(ctx context.Context, q database.Queryable, id int64) (*model.Reservation, error)
	GetReservationByUniqueID(ctx context.Context, q database.Queryable, uniqueID string) (*model.Reservation, error)
	GetReservationsByParentID(ctx context.Context, q database.Queryable, parentID int64) ([]*model.Reservation, error)
	SetUniqueID(ctx context.Context, q database.Queryable, id int64, uniqueID string) error
}

type resourcesRepository interface {
	GetResourceByID(ctx context.Context, q database.Queryable, id int64) (*model.Resource, error)
}

type zoneResolver interface {
	ZoneIDForBuilding(ctx context.Context, buildingID int64) (string, error)
}

type seriesService interface {
	ApplySyncUpdate(ctx context.Context, res *model.Reservation) error
}

type notifier interface {
	Notify(ctx context.Context, reservationID int64)
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	sessions sessionCache,
	reservations reservationsRepository,
	resources resourcesRepository,
	zones zoneResolver,
	series seriesService,
	notifier notifier,
) *Service {
	return &Service{
		db:           db,
		logger:       logger,
		sessions:     sessions,
		reservations: reservations,
		resources:    resources,
		zones:        zones,
		series:       series,
		notifier:     notifier,
	}
}

// roomOf resolves the reservation's primary room. An unallocated
// reservation has none.
func (s *Service) roomOf(ctx context.Context, res *model.Reservation) (*model.Resource, error) {
	if len(res.Rooms) == 0 {
		return nil, nil
	}
	return s.resources.GetResourceByID(ctx, s.db, res.Rooms[0].ResourceID)
}

// locationOf resolves the reservation's room name for the location
// comparison.
func (s *Service) locationOf(ctx context.Context, res *model.Reservation) (string, error) {
	room, err := s.roomOf(ctx, res)
	if err != nil || room == nil {
		return "", err
	}
	return room.Name, nil
}

// zoneOf resolves the zone the reservation's wall-clock period is read
// in: the explicit zone when set, the room's building zone otherwise.
func (s *Service) zoneOf(ctx context.Context, res *model.Reservation) (string, error) {
	if res.Period.Zone != "" {
		return res.Period.Zone, nil
	}

	room, err := s.roomOf(ctx, res)
	if err != nil {
		return "", err
	}
	if room == nil {
		return "UTC", nil
	}
	return s.zones.ZoneIDForBuilding(ctx, room.BuildingID)
}
