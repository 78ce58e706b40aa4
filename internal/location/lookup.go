// Package location resolves a building to its IANA timezone identifier.
// Lookups hit Postgres once and are then served from Redis.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
	"go.uber.org/zap"
)

const zoneCacheTTL = 24 * time.Hour

type Lookup struct {
	db        database.PGX
	pool      *redis.Pool
	logger    *zap.SugaredLogger
	buildings buildingsRepository
}

type buildingsRepository interface {
	GetZoneID(ctx context.Context, q database.Queryable, buildingID int64) (string, error)
}

func NewLookup(db database.PGX, pool *redis.Pool, logger *zap.SugaredLogger, buildings buildingsRepository) *Lookup {
	return &Lookup{
		db:        db,
		pool:      pool,
		logger:    logger,
		buildings: buildings,
	}
}

func (l *Lookup) ZoneIDForBuilding(ctx context.Context, buildingID int64) (string, error) {
	key := fmt.Sprintf("building_zone:%d", buildingID)

	conn, err := l.pool.GetContext(ctx)
	if err == nil {
		zone, err := redis.String(conn.Do("GET", key))
		_ = conn.Close()
		if err == nil && zone != "" {
			return zone, nil
		}
		if err != nil && !errors.Is(err, redis.ErrNil) {
			l.logger.Errorw("zone cache read failed", "building_id", buildingID, "err", err)
		}
	}

	zone, err := l.buildings.GetZoneID(ctx, l.db, buildingID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return "", model.ErrNoRecord
		}
		return "", fmt.Errorf("buildings.GetZoneID: %w", err)
	}

	if conn, err := l.pool.GetContext(ctx); err == nil {
		if _, err := conn.Do("SETEX", key, int(zoneCacheTTL.Seconds()), zone); err != nil {
			l.logger.Errorw("zone cache write failed", "building_id", buildingID, "err", err)
		}
		_ = conn.Close()
	}

	return zone, nil
}
