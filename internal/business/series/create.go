package series

import (
	"context"
	"fmt"
	"time"

	"github.com/resplan/resplan-backend/internal/availability"
	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/pkg/validator"
	"github.com/resplan/resplan-backend/internal/recurrence"
)

// CreateSeries persists the template reservation and one clone per
// further occurrence date. Every occurrence is re-verified for the
// template's rooms and resources; the first unavailable one aborts the
// whole creation, so either all occurrence rows exist or none do.
func (s *Service) CreateSeries(ctx context.Context, template *model.Reservation, pattern *recurrence.Pattern) (*model.ReservationSeries, error) {
	if err := validateTemplate(template); err != nil {
		return nil, err
	}

	if pattern == nil {
		return s.createSingle(ctx, template)
	}

	dates := pattern.Dates(template.Period.Start)

	for _, date := range dates {
		if err := s.checkOccurrence(ctx, template, date, 0); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rule := pattern.String()
	template.RecurrenceRule = rule

	if _, err := s.reservations.CreateReservation(ctx, tx, template); err != nil {
		return nil, fmt.Errorf("reservations.CreateReservation: %w", err)
	}

	members := []*model.Reservation{template}
	for _, date := range dates {
		member := cloneForDate(template, date)
		if _, err := s.reservations.CreateReservation(ctx, tx, member); err != nil {
			return nil, fmt.Errorf("reservations.CreateReservation: %w", err)
		}
		members = append(members, member)
	}

	parentID, err := s.markRecurring(ctx, tx, members, rule)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.ReservationSeries{
		ParentID:       parentID,
		RecurrenceRule: rule,
		Members:        members,
	}, nil
}

// createSingle persists a one-off reservation with no series linkage.
func (s *Service) createSingle(ctx context.Context, template *model.Reservation) (*model.ReservationSeries, error) {
	if err := s.checkOccurrence(ctx, template, template.Period.Start, 0); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.reservations.CreateReservation(ctx, tx, template); err != nil {
		return nil, fmt.Errorf("reservations.CreateReservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &model.ReservationSeries{Members: []*model.Reservation{template}}, nil
}

// FindAvailableAcrossSeries returns the resources free on every
// occurrence of the pattern, not just the first date.
func (s *Service) FindAvailableAcrossSeries(ctx context.Context, filter model.ResourceFilter, pattern *recurrence.Pattern) ([]int64, error) {
	first, err := s.resources.FindAvailable(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("resources.FindAvailable: %w", err)
	}

	if pattern == nil {
		return first, nil
	}

	dates := pattern.Dates(filter.Period.Start)

	return availability.Intersect(ctx, first, dates, func(ctx context.Context, date time.Time) ([]int64, error) {
		dateFilter := filter
		dateFilter.Period = filter.Period.OnDate(date)
		return s.resources.FindAvailable(ctx, s.db, dateFilter)
	})
}

// checkOccurrence verifies every allocation of the template can be
// placed on the given date. exclude is the reservation whose own
// allocations must not count as conflicts (the member being edited).
func (s *Service) checkOccurrence(ctx context.Context, template *model.Reservation, date time.Time, exclude int64) error {
	for _, alloc := range template.AllAllocations() {
		affected, err := s.resources.FindAvailable(ctx, s.db, model.ResourceFilter{
			Period:               alloc.Period.OnDate(date),
			ExcludeReservationID: exclude,
		})
		if err != nil {
			return fmt.Errorf("resources.FindAvailable: %w", err)
		}
		if !availability.Contains(affected, alloc.ResourceID) {
			return &model.AvailabilityConflict{ResourceID: alloc.ResourceID, Date: date}
		}
	}

	return nil
}

// cloneForDate copies the template onto a new occurrence date. Only the
// date changes; time-of-day and duration stay fixed from the template.
func cloneForDate(template *model.Reservation, date time.Time) *model.Reservation {
	member := &model.Reservation{
		Status:         template.Status,
		RecurrenceRule: template.RecurrenceRule,
		ReservationCreate: model.ReservationCreate{
			Title:       template.Title,
			Comments:    template.Comments,
			RequestorID: template.RequestorID,
			Attendees:   append([]string(nil), template.Attendees...),
			Period:      template.Period.OnDate(date),
		},
	}

	for _, a := range template.Rooms {
		member.Rooms = append(member.Rooms, cloneAllocation(a, date))
	}
	for _, a := range template.Resources {
		member.Resources = append(member.Resources, cloneAllocation(a, date))
	}

	return member
}

func cloneAllocation(a *model.Allocation, date time.Time) *model.Allocation {
	return &model.Allocation{
		ResourceID: a.ResourceID,
		Period:     a.Period.OnDate(date),
		Status:     a.Status,
		Cost:       a.Cost,
	}
}

func validateTemplate(template *model.Reservation) error {
	v := validator.New()

	v.Check(template.Period.Valid(), "period", "start must not come after end")
	v.Check(validator.Matches(template.RequestorID, validator.EmailRX), "requestor", "must be a valid email address")
	for _, a := range template.Attendees {
		v.Check(validator.Matches(a, validator.EmailRX), "attendees", "must be valid email addresses")
	}
	for _, alloc := range template.AllAllocations() {
		v.Check(template.Period.Contains(alloc.Period), "allocations", "allocation window must lie within the reservation window")
	}

	if !v.Valid() {
		for field, reason := range v.Errors {
			return &model.ValidationError{Field: field, Reason: reason}
		}
	}

	return nil
}
