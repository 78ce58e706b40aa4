package reservation

import (
	"time"

	"github.com/resplan/resplan-backend/internal/model"
)

type reservationDTO struct {
	ID             int64
	Status         int
	UniqueID       string
	ParentID       int64
	RecurrenceRule string
	Title          string
	Comments       string
	Requestor      string
	Attendees      []string
	StartTs        time.Time
	EndTs          time.Time
	Zone           string
}

type allocationDTO struct {
	ID            int64
	ReservationID int64
	ResourceID    int64
	StartTs       time.Time
	EndTs         time.Time
	Status        int
	Cost          float64
	IsRoom        bool
}

func mapToReservation(dto *reservationDTO, allocations []*allocationDTO) *model.Reservation {
	res := &model.Reservation{
		ID:             dto.ID,
		Status:         model.ReservationStatus(dto.Status),
		UniqueID:       dto.UniqueID,
		ParentID:       dto.ParentID,
		RecurrenceRule: dto.RecurrenceRule,
		ReservationCreate: model.ReservationCreate{
			Title:       dto.Title,
			Comments:    dto.Comments,
			RequestorID: dto.Requestor,
			Attendees:   dto.Attendees,
			Period: model.TimePeriod{
				Start: dto.StartTs,
				End:   dto.EndTs,
				Zone:  dto.Zone,
			},
		},
	}

	for _, a := range allocations {
		alloc := &model.Allocation{
			ID:            a.ID,
			ResourceID:    a.ResourceID,
			ReservationID: a.ReservationID,
			Period: model.TimePeriod{
				Start: a.StartTs,
				End:   a.EndTs,
			},
			Status: model.ReservationStatus(a.Status),
			Cost:   a.Cost,
		}
		if a.IsRoom {
			res.Rooms = append(res.Rooms, alloc)
		} else {
			res.Resources = append(res.Resources, alloc)
		}
	}

	return res
}
