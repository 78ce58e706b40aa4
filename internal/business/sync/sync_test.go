package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/resplan/resplan-backend/internal/calendar"
	"github.com/resplan/resplan-backend/internal/database"
	"github.com/resplan/resplan-backend/internal/model"
	"go.uber.org/zap"
)

// Shared in-memory fakes for the engine tests.

type fakeQueryable struct{}

func (fakeQueryable) Exec(context.Context, database.Sqlizer) (pgconn.CommandTag, error) {
	return nil, nil
}
func (fakeQueryable) Get(context.Context, interface{}, database.Sqlizer) error    { return nil }
func (fakeQueryable) Select(context.Context, interface{}, database.Sqlizer) error { return nil }
func (fakeQueryable) ExecRaw(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return nil, nil
}

type fakeTx struct{ fakeQueryable }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{ fakeQueryable }

func (fakeDB) GetPool(context.Context) *pgxpool.Pool { return nil }
func (fakeDB) BeginTx(context.Context, *pgx.TxOptions) (database.Tx, error) {
	return fakeTx{}, nil
}

type fakeReservations struct {
	byID        map[int64]*model.Reservation
	uniqueIDSet map[int64]string
}

func newFakeReservations(all ...*model.Reservation) *fakeReservations {
	f := &fakeReservations{
		byID:        map[int64]*model.Reservation{},
		uniqueIDSet: map[int64]string{},
	}
	for _, res := range all {
		f.byID[res.ID] = res
	}
	return f
}

func (f *fakeReservations) GetReservationByID(_ context.Context, _ database.Queryable, id int64) (*model.Reservation, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return res, nil
}

func (f *fakeReservations) GetReservationByUniqueID(_ context.Context, _ database.Queryable, uniqueID string) (*model.Reservation, error) {
	for _, res := range f.byID {
		if res.UniqueID == uniqueID {
			return res, nil
		}
	}
	return nil, model.ErrNoRecord
}

func (f *fakeReservations) GetReservationsByParentID(_ context.Context, _ database.Queryable, parentID int64) ([]*model.Reservation, error) {
	var members []*model.Reservation
	for id := int64(0); id <= int64(len(f.byID)*2); id++ {
		if res, ok := f.byID[id]; ok && res.ParentID == parentID {
			members = append(members, res)
		}
	}
	return members, nil
}

func (f *fakeReservations) SetUniqueID(_ context.Context, _ database.Queryable, id int64, uniqueID string) error {
	res, ok := f.byID[id]
	if !ok {
		return model.ErrNoRecord
	}
	res.UniqueID = uniqueID
	f.uniqueIDSet[id] = uniqueID
	return nil
}

type fakeResources struct {
	byID map[int64]*model.Resource
}

func (f *fakeResources) GetResourceByID(_ context.Context, _ database.Queryable, id int64) (*model.Resource, error) {
	res, ok := f.byID[id]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return res, nil
}

type fakeZones struct {
	zones map[int64]string
}

func (f *fakeZones) ZoneIDForBuilding(_ context.Context, buildingID int64) (string, error) {
	if zone, ok := f.zones[buildingID]; ok {
		return zone, nil
	}
	return "UTC", nil
}

type fakeSeries struct {
	applied []*model.Reservation
	err     error
}

func (f *fakeSeries) ApplySyncUpdate(_ context.Context, res *model.Reservation) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, res)
	return nil
}

type fakeNotifier struct {
	notified []int64
}

func (f *fakeNotifier) Notify(_ context.Context, reservationID int64) {
	f.notified = append(f.notified, reservationID)
}

type fakeSession struct {
	principal   string
	events      map[string]*model.CalendarEvent
	occurrences map[string]*model.CalendarEvent

	nextID    int
	updated   []*model.CalendarEvent
	cancelled []string
	declined  []string
	responses map[string]string
}

func newFakeSession(principal string) *fakeSession {
	return &fakeSession{
		principal:   principal,
		events:      map[string]*model.CalendarEvent{},
		occurrences: map[string]*model.CalendarEvent{},
	}
}

func occKey(uniqueID string, start time.Time) string {
	return uniqueID + "|" + model.OccurrenceKey(start)
}

func (s *fakeSession) Principal() string { return s.principal }

func (s *fakeSession) BindByUniqueID(_ context.Context, uniqueID string) (*model.CalendarEvent, error) {
	event, ok := s.events[uniqueID]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return event, nil
}

func (s *fakeSession) BindOccurrence(_ context.Context, uniqueID string, start time.Time) (*model.CalendarEvent, error) {
	occ, ok := s.occurrences[occKey(uniqueID, start)]
	if !ok {
		return nil, model.ErrNoRecord
	}
	return occ, nil
}

func (s *fakeSession) Create(_ context.Context, event *model.CalendarEvent) (string, error) {
	s.nextID++
	uid := fmt.Sprintf("uid-%d", s.nextID)
	event.UniqueID = uid
	s.events[uid] = event
	return uid, nil
}

func (s *fakeSession) Update(_ context.Context, event *model.CalendarEvent) error {
	s.updated = append(s.updated, event)
	return nil
}

func (s *fakeSession) Cancel(_ context.Context, event *model.CalendarEvent, _ string) error {
	s.cancelled = append(s.cancelled, event.UniqueID)
	return nil
}

func (s *fakeSession) Decline(_ context.Context, _ *model.CalendarEvent, reason string) error {
	s.declined = append(s.declined, reason)
	return nil
}

func (s *fakeSession) AttendeeResponses(context.Context, *model.CalendarEvent) (map[string]string, error) {
	return s.responses, nil
}

type fakeSessionCache struct {
	session *fakeSession
}

func (f *fakeSessionCache) ForPrincipal(_ context.Context, principal string) (calendar.Session, error) {
	return f.session, nil
}

type engineFixture struct {
	svc          *Service
	reservations *fakeReservations
	series       *fakeSeries
	notifier     *fakeNotifier
	session      *fakeSession
}

func newEngine(reservations *fakeReservations) *engineFixture {
	session := newFakeSession("organizer@example.com")
	series := &fakeSeries{}
	notifier := &fakeNotifier{}

	svc := NewService(
		fakeDB{},
		zap.NewNop().Sugar(),
		&fakeSessionCache{session: session},
		reservations,
		&fakeResources{byID: map[int64]*model.Resource{}},
		&fakeZones{},
		series,
		notifier,
	)

	return &engineFixture{
		svc:          svc,
		reservations: reservations,
		series:       series,
		notifier:     notifier,
		session:      session,
	}
}
