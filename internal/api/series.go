package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/recurrence"
)

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (a *Api) getSeriesHandler(w http.ResponseWriter, r *http.Request) {
	parentID, err := parseID(r, "parentID")
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	series, err := a.series.GetSeries(r.Context(), parentID)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("get series: %w", err))
		return
	}

	resp, err := mapToSeriesResp(series)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

// findAvailableHandler reports the resources free for the requested
// window. A recurrence rule in the body restricts the answer to
// resources free on every occurrence.
func (a *Api) findAvailableHandler(w http.ResponseWriter, r *http.Request) {
	filter, pattern, err := parseAvailabilityQuery(r)
	if err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	ids, err := a.series.FindAvailableAcrossSeries(r.Context(), *filter, pattern)
	if err != nil {
		a.domainErrorResponse(w, r, fmt.Errorf("find available: %w", err))
		return
	}

	resp := &struct {
		ResourceIDs []int64 `json:"resource_ids"`
	}{ResourceIDs: ids}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func parseAvailabilityQuery(r *http.Request) (*model.ResourceFilter, *recurrence.Pattern, error) {
	var err error

	filter := &model.ResourceFilter{}

	v := r.URL.Query().Get("from")
	if v == "" {
		return nil, nil, fmt.Errorf("from must be provided")
	}
	filter.Period.Start, err = time.Parse(dateTimeFormat, v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid time format: %w", err)
	}

	v = r.URL.Query().Get("to")
	if v == "" {
		return nil, nil, fmt.Errorf("to must be provided")
	}
	filter.Period.End, err = time.Parse(dateTimeFormat, v)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid time format: %w", err)
	}

	if v := r.URL.Query().Get("building_id"); v != "" {
		filter.BuildingID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid building id %v", v)
		}
	}

	if v := r.URL.Query().Get("capacity"); v != "" {
		filter.Capacity, err = strconv.Atoi(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid capacity %v", v)
		}
	}

	filter.RoomsOnly = r.URL.Query().Get("rooms_only") == "true"

	var pattern *recurrence.Pattern
	if v := r.URL.Query().Get("recurrence"); v != "" {
		pattern, err = recurrence.Parse(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid recurrence rule: %w", err)
		}
	}

	return filter, pattern, nil
}
