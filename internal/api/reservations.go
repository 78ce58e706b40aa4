package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/pkg/validator"
	"github.com/resplan/resplan-backend/internal/recurrence"
)

func (a *Api) createReservationHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrievePrincipal)
		return
	}

	req := &struct {
		Title      string          `json:"title"`
		Comments   string          `json:"comments"`
		Attendees  []string        `json:"attendees"`
		From       dateTime        `json:"from"`
		To         dateTime        `json:"to"`
		Zone       string          `json:"zone"`
		Rooms      []allocationReq `json:"rooms"`
		Resources  []allocationReq `json:"resources"`
		Recurrence *recurrenceReq  `json:"recurrence"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(req.Title) != 0, "title", "title must be provided")
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	v.Check(len(req.Rooms)+len(req.Resources) != 0, "rooms", "at least one room or resource must be requested")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	period := model.TimePeriod{
		Start: time.Time(req.From),
		End:   time.Time(req.To),
		Zone:  req.Zone,
	}

	template := &model.Reservation{
		Status: model.StatusAwaitingApproval,
		ReservationCreate: model.ReservationCreate{
			Title:       req.Title,
			Comments:    req.Comments,
			RequestorID: principal,
			Attendees:   req.Attendees,
			Period:      period,
			Rooms:       mapAllocations(req.Rooms, period),
			Resources:   mapAllocations(req.Resources, period),
		},
	}

	pattern, err := patternFrom(req.Recurrence)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	series, err := a.series.CreateSeries(r.Context(), template, pattern)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("create series: %w", err))
		return
	}

	if err := a.sync.PushSeries(r.Context(), series); err != nil {
		a.logger.Errorw("push created series", "parent_id", series.ParentID, "error", err)
	}

	resp, err := mapToSeriesResp(series)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) getReservationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "reservationID")
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	res, err := a.series.GetReservation(r.Context(), id)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("get reservation: %w", err))
		return
	}

	resp, err := mapToReservationResp(res)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

// updateReservationHandler applies non-temporal edits. When the target
// belongs to a series the edit fans out over every active member;
// members with conflicts are reported but do not block the rest.
func (a *Api) updateReservationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "reservationID")
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		Title     string          `json:"title"`
		Comments  string          `json:"comments"`
		Attendees []string        `json:"attendees"`
		Rooms     []allocationReq `json:"rooms"`
		Resources []allocationReq `json:"resources"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	current, err := a.series.GetReservation(r.Context(), id)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("get reservation: %w", err))
		return
	}

	template := &model.Reservation{
		ReservationCreate: model.ReservationCreate{
			Title:     req.Title,
			Comments:  req.Comments,
			Attendees: req.Attendees,
			Period:    current.Period,
			Rooms:     mapAllocations(req.Rooms, current.Period),
			Resources: mapAllocations(req.Resources, current.Period),
		},
	}

	parentID := current.ParentID
	if parentID == 0 {
		parentID = current.ID
	}

	result, err := a.series.EditSeries(r.Context(), parentID, template)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("edit series: %w", err))
		return
	}

	for _, res := range result.Updated {
		if err := a.sync.PushReservation(r.Context(), res); err != nil {
			a.logger.Errorw("push updated reservation", "id", res.ID, "error", err)
		}
	}

	failed := make(map[string]string, len(result.Failed))
	for memberID, memberErr := range result.Failed {
		failed[strconv.FormatInt(memberID, 10)] = memberErr.Error()
	}

	updated, _ := mapSlice(result.Updated, mapToReservationResp)

	resp := &struct {
		Updated []*reservationResp `json:"updated"`
		Failed  map[string]string  `json:"failed,omitempty"`
	}{
		Updated: updated,
		Failed:  failed,
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) cancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "reservationID")
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		Scope   string `json:"scope"`
		Message string `json:"message"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	current, err := a.series.GetReservation(r.Context(), id)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("get reservation: %w", err))
		return
	}

	var cancelled []*model.Reservation

	switch req.Scope {
	case "", "occurrence":
		res, err := a.series.CancelOccurrence(r.Context(), id)
		if err != nil {
			a.domainErrorResponse(w, r, fmt.Errorf("cancel occurrence: %w", err))
			return
		}
		cancelled = []*model.Reservation{res}

	case "following":
		if current.ParentID == 0 {
			a.badRequestResponse(w, r, errors.New("reservation is not part of a series"))
			return
		}
		cancelled, err = a.series.CancelFrom(r.Context(), current.ParentID, current.Period.Start)
		if err != nil {
			a.domainErrorResponse(w, r, fmt.Errorf("cancel from: %w", err))
			return
		}

	case "series":
		if current.ParentID == 0 {
			a.badRequestResponse(w, r, errors.New("reservation is not part of a series"))
			return
		}
		cancelled, err = a.series.CancelSeries(r.Context(), current.ParentID)
		if err != nil {
			a.domainErrorResponse(w, r, fmt.Errorf("cancel series: %w", err))
			return
		}

	default:
		a.badRequestResponse(w, r, fmt.Errorf("unknown cancel scope %q", req.Scope))
		return
	}

	if err := a.sync.CancelSeries(r.Context(), cancelled, req.Message); err != nil {
		a.logger.Errorw("push cancellations", "id", id, "error", err)
	}

	resp, _ := mapSlice(cancelled, mapToReservationResp)
	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) attendeeResponsesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "reservationID")
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	res, err := a.series.GetReservation(r.Context(), id)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("get reservation: %w", err))
		return
	}

	responses, err := a.sync.AttendeeResponses(r.Context(), res)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("attendee responses: %w", err))
		return
	}

	if err := a.writeJSON(w, http.StatusOK, responses, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func mapAllocations(reqs []allocationReq, period model.TimePeriod) []*model.Allocation {
	allocations := make([]*model.Allocation, len(reqs))
	for i, req := range reqs {
		allocations[i] = &model.Allocation{
			ResourceID: req.ResourceID,
			Period:     period,
			Status:     model.StatusAwaitingApproval,
			Cost:       req.Cost,
		}
	}
	return allocations
}

func patternFrom(req *recurrenceReq) (*recurrence.Pattern, error) {
	if req == nil {
		return nil, nil
	}
	return req.toPattern()
}
