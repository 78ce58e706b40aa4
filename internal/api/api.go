package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/resplan/resplan-backend/internal/business/series"
	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/recurrence"
	"go.uber.org/zap"
)

type Api struct {
	handler http.Handler
	logger  *zap.SugaredLogger

	jwts jwtManager

	series seriesService
	sync   syncService
}

type jwtManager interface {
	GetPrincipalFromToken(token string) (string, error)
}

type seriesService interface {
	GetReservation(ctx context.Context, id int64) (*model.Reservation, error)
	GetSeries(ctx context.Context, parentID int64) (*model.ReservationSeries, error)
	CreateSeries(ctx context.Context, template *model.Reservation, pattern *recurrence.Pattern) (*model.ReservationSeries, error)
	EditSeries(ctx context.Context, parentID int64, template *model.Reservation) (*series.EditResult, error)
	CancelOccurrence(ctx context.Context, id int64) (*model.Reservation, error)
	CancelFrom(ctx context.Context, parentID int64, from time.Time) ([]*model.Reservation, error)
	CancelSeries(ctx context.Context, parentID int64) ([]*model.Reservation, error)
	FindAvailableAcrossSeries(ctx context.Context, filter model.ResourceFilter, pattern *recurrence.Pattern) ([]int64, error)
}

type syncService interface {
	PushReservation(ctx context.Context, res *model.Reservation) error
	PushSeries(ctx context.Context, series *model.ReservationSeries) error
	CancelReservation(ctx context.Context, res *model.Reservation, message string) error
	CancelSeries(ctx context.Context, members []*model.Reservation, message string) error
	AttendeeResponses(ctx context.Context, res *model.Reservation) (map[string]string, error)
}

func NewApi(
	logger *zap.SugaredLogger,
	jwts jwtManager,
	seriesService seriesService,
	syncService syncService,
) (*Api, error) {
	a := &Api{
		logger: logger,
		jwts:   jwts,
		series: seriesService,
		sync:   syncService,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(a.auth).Route("/", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", a.createReservationHandler)
			r.Get("/{reservationID}", a.getReservationHandler)
			r.Patch("/{reservationID}", a.updateReservationHandler)
			r.Post("/{reservationID}/cancel", a.cancelReservationHandler)
			r.Get("/{reservationID}/responses", a.attendeeResponsesHandler)
		})

		r.Get("/series/{parentID}", a.getSeriesHandler)
		r.Get("/resources/available", a.findAvailableHandler)
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
