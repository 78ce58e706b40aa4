package model

type ReservationCreate struct {
	Title       string
	Comments    string
	RequestorID string
	Attendees   []string
	Period      TimePeriod
	Rooms       []*Allocation
	Resources   []*Allocation
}

type Reservation struct {
	ID             int64
	Status         ReservationStatus
	UniqueID       string
	ParentID       int64
	RecurrenceRule string
	ReservationCreate
}

type ReservationStatus int

const (
	StatusAwaitingApproval ReservationStatus = iota
	StatusConfirmed
	StatusCancelled
	StatusRejected
)

// Active reports whether the reservation still occupies its slot.
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled && r.Status != StatusRejected
}

// AllAllocations returns room and resource allocations as one slice.
func (r *Reservation) AllAllocations() []*Allocation {
	res := make([]*Allocation, 0, len(r.Rooms)+len(r.Resources))
	res = append(res, r.Rooms...)
	res = append(res, r.Resources...)
	return res
}

type ReservationSeries struct {
	ParentID       int64
	RecurrenceRule string
	Members        []*Reservation
}
