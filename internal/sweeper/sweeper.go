// Package sweeper periodically re-pushes reservations whose outbound
// calendar push has not succeeded yet. Availability checks and the
// booking write are not transactionally coupled, so a push can be lost
// between them; the sweep makes the link best-effort eventually
// consistent instead of blocking creation.
package sweeper

import (
	"context"
	"fmt"

	"github.com/resplan/resplan-backend/internal/config"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
	"github.com/robfig/cron/v3"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

const batchSize = 50

type Sweeper struct {
	db           database.PGX
	logger       *zap.SugaredLogger
	reservations reservationsRepository
	series       seriesService
	sync         syncService
}

type reservationsRepository interface {
	GetUnlinked(ctx context.Context, q database.Queryable, limit uint64) ([]*model.Reservation, error)
}

type seriesService interface {
	GetSeries(ctx context.Context, parentID int64) (*model.ReservationSeries, error)
}

type syncService interface {
	PushReservation(ctx context.Context, res *model.Reservation) error
	PushSeries(ctx context.Context, series *model.ReservationSeries) error
}

func NewSweeper(
	db database.PGX,
	logger *zap.SugaredLogger,
	reservations reservationsRepository,
	series seriesService,
	sync syncService,
) *Sweeper {
	return &Sweeper{
		db:           db,
		logger:       logger,
		reservations: reservations,
		series:       series,
		sync:         sync,
	}
}

// Start schedules the sweep and runs until the closer fires.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(config.SweepSchedule(), func() {
		s.sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	c.Start()
	closer.Bind(func() {
		<-c.Stop().Done()
	})

	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	unlinked, err := s.reservations.GetUnlinked(ctx, s.db, batchSize)
	if err != nil {
		s.logger.Errorw("failed to load unlinked reservations", "err", err)
		return
	}

	pushedSeries := make(map[int64]struct{})
	for _, res := range unlinked {
		if res.ParentID != 0 {
			if _, ok := pushedSeries[res.ParentID]; ok {
				continue
			}
			pushedSeries[res.ParentID] = struct{}{}

			series, err := s.series.GetSeries(ctx, res.ParentID)
			if err != nil {
				s.logger.Errorw("failed to load series", "parent_id", res.ParentID, "err", err)
				continue
			}
			if err := s.sync.PushSeries(ctx, series); err != nil {
				s.logger.Errorw("series re-push failed", "parent_id", res.ParentID, "err", err)
			}
			continue
		}

		if err := s.sync.PushReservation(ctx, res); err != nil {
			s.logger.Errorw("reservation re-push failed", "reservation_id", res.ID, "err", err)
		}
	}
}
