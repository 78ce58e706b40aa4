package api

import (
	"fmt"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
	"github.com/resplan/resplan-backend/internal/recurrence"
)

const dateTimeFormat = time.RFC3339

type dateTime time.Time

func (d *dateTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time %s", s)
	}

	t, err := time.Parse(dateTimeFormat, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("invalid time format: %w", err)
	}

	*d = dateTime(t)
	return nil
}

func (d dateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(dateTimeFormat) + `"`), nil
}

var frequencyNames = map[string]recurrence.Frequency{
	"daily":   recurrence.FreqDaily,
	"weekly":  recurrence.FreqWeekly,
	"monthly": recurrence.FreqMonthly,
	"yearly":  recurrence.FreqYearly,
}

type recurrenceReq struct {
	Freq     string    `json:"freq"`
	Interval int       `json:"interval"`
	EndDate  *dateTime `json:"end_date,omitempty"`
	Count    int       `json:"count,omitempty"`
	Weekdays []int     `json:"weekdays,omitempty"`
	MonthDay int       `json:"month_day,omitempty"`
	Week     int       `json:"week,omitempty"`
	Weekday  int       `json:"weekday,omitempty"`
	Month    int       `json:"month,omitempty"`
}

func (req *recurrenceReq) toPattern() (*recurrence.Pattern, error) {
	freq, ok := frequencyNames[req.Freq]
	if !ok {
		return nil, fmt.Errorf("unknown frequency %q", req.Freq)
	}

	p := &recurrence.Pattern{
		Freq:     freq,
		Interval: req.Interval,
		Count:    req.Count,
		MonthDay: req.MonthDay,
		Week:     req.Week,
		Weekday:  time.Weekday(req.Weekday),
		Month:    time.Month(req.Month),
	}

	if req.EndDate != nil {
		end := time.Time(*req.EndDate)
		p.EndDate = &end
	}

	for _, d := range req.Weekdays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid weekday %d", d)
		}
		p.Weekdays = append(p.Weekdays, time.Weekday(d))
	}

	return p, nil
}

type allocationReq struct {
	ResourceID int64   `json:"resource_id"`
	Cost       float64 `json:"cost,omitempty"`
}

var statusNames = map[model.ReservationStatus]string{
	model.StatusAwaitingApproval: "awaiting_approval",
	model.StatusConfirmed:        "confirmed",
	model.StatusCancelled:        "cancelled",
	model.StatusRejected:         "rejected",
}

type allocationResp struct {
	ID         int64    `json:"id"`
	ResourceID int64    `json:"resource_id"`
	Status     string   `json:"status"`
	Cost       float64  `json:"cost"`
	From       dateTime `json:"from"`
	To         dateTime `json:"to"`
}

type reservationResp struct {
	ID             int64             `json:"id"`
	Status         string            `json:"status"`
	Title          string            `json:"title"`
	Comments       string            `json:"comments,omitempty"`
	Requestor      string            `json:"requestor"`
	Attendees      []string          `json:"attendees,omitempty"`
	From           dateTime          `json:"from"`
	To             dateTime          `json:"to"`
	Zone           string            `json:"zone,omitempty"`
	ParentID       int64             `json:"parent_id,omitempty"`
	RecurrenceRule string            `json:"recurrence_rule,omitempty"`
	Rooms          []*allocationResp `json:"rooms,omitempty"`
	Resources      []*allocationResp `json:"resources,omitempty"`
}

type seriesResp struct {
	ParentID       int64              `json:"parent_id"`
	RecurrenceRule string             `json:"recurrence_rule,omitempty"`
	Members        []*reservationResp `json:"members"`
}

func mapToAllocationResp(a *model.Allocation) (*allocationResp, error) {
	return &allocationResp{
		ID:         a.ID,
		ResourceID: a.ResourceID,
		Status:     statusNames[a.Status],
		Cost:       a.Cost,
		From:       dateTime(a.Period.Start),
		To:         dateTime(a.Period.End),
	}, nil
}

func mapToReservationResp(res *model.Reservation) (*reservationResp, error) {
	rooms, _ := mapSlice(res.Rooms, mapToAllocationResp)
	resources, _ := mapSlice(res.Resources, mapToAllocationResp)

	return &reservationResp{
		ID:             res.ID,
		Status:         statusNames[res.Status],
		Title:          res.Title,
		Comments:       res.Comments,
		Requestor:      res.RequestorID,
		Attendees:      res.Attendees,
		From:           dateTime(res.Period.Start),
		To:             dateTime(res.Period.End),
		Zone:           res.Period.Zone,
		ParentID:       res.ParentID,
		RecurrenceRule: res.RecurrenceRule,
		Rooms:          rooms,
		Resources:      resources,
	}, nil
}

func mapToSeriesResp(series *model.ReservationSeries) (*seriesResp, error) {
	members, err := mapSlice(series.Members, mapToReservationResp)
	if err != nil {
		return nil, err
	}

	return &seriesResp{
		ParentID:       series.ParentID,
		RecurrenceRule: series.RecurrenceRule,
		Members:        members,
	}, nil
}
