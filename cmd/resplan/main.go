package main

import (
	"context"
	"log"
	"net/http"

	"github.com/resplan/resplan-backend/internal/api"
	series_service "github.com/resplan/resplan-backend/internal/business/series"
	sync_service "github.com/resplan/resplan-backend/internal/business/sync"
	"github.com/resplan/resplan-backend/internal/calendar"
	"github.com/resplan/resplan-backend/internal/calendar/google"
	"github.com/resplan/resplan-backend/internal/config"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/database/building"
	"github.com/resplan/resplan-backend/internal/database/reservation"
	"github.com/resplan/resplan-backend/internal/database/resource"
	"github.com/resplan/resplan-backend/internal/listener"
	"github.com/resplan/resplan-backend/internal/location"
	"github.com/resplan/resplan-backend/internal/notifications"
	"github.com/resplan/resplan-backend/internal/pkg/jwt"
	"github.com/resplan/resplan-backend/internal/redis"
	"github.com/resplan/resplan-backend/internal/sweeper"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initializae logger: %v", err)
	}

	if config.PostgresURL() == "" {
		log.Fatalf("POSTGRES_URL must be set")
	}
	if config.Secret() == "" {
		log.Fatalf("SECRET must be set")
	}

	jwts := jwt.NewManger()

	redisPool := redis.NewRedisPool(logger)

	db, err := database.NewPGX(ctx)
	if err != nil {
		log.Fatalf("unable to initializae db: %v", err)
	}
	reservationsRepository := reservation.NewRepository()
	resourcesRepository := resource.NewRepository()
	buildingsRepository := building.NewRepository()

	zones := location.NewLookup(db, redisPool, logger, buildingsRepository)

	provider, err := google.NewProvider()
	if err != nil {
		log.Fatalf("unable to initializae calendar provider: %v", err)
	}
	sessions := calendar.NewSessionCache(provider)

	seriesService := series_service.NewService(db, logger, reservationsRepository, resourcesRepository)

	notifier, err := notifications.NewNotifier(logger)
	if err != nil {
		log.Fatalf("unable to initializae notifier: %v", err)
	}

	syncService := sync_service.NewService(
		db,
		logger,
		sessions,
		reservationsRepository,
		resourcesRepository,
		zones,
		seriesService,
		notifier,
	)

	changeListener := listener.NewListener(logger, sessions, syncService)
	go changeListener.Run(ctx)

	consumer, err := listener.NewConsumer(logger)
	if err != nil {
		log.Fatalf("unable to initializae amqp consumer: %v", err)
	}
	if err := consumer.Start(ctx, changeListener); err != nil {
		log.Fatalf("unable to start amqp consumer: %v", err)
	}

	sweep := sweeper.NewSweeper(db, logger, reservationsRepository, seriesService, syncService)
	if err := sweep.Start(ctx); err != nil {
		log.Fatalf("unable to start sweeper: %v", err)
	}

	api, err := api.NewApi(
		logger,
		jwts,
		seriesService,
		syncService,
	)
	if err != nil {
		log.Fatalf("unable to initializae api: %v", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  api,
		ErrorLog: errLogger,
	}

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
