package model

type Allocation struct {
	ID            int64
	ResourceID    int64
	ReservationID int64
	Period        TimePeriod
	Status        ReservationStatus
	Cost          float64
}

type Resource struct {
	ID         int64
	Name       string
	BuildingID int64
	Capacity   int
	IsRoom     bool
}

type ResourceFilter struct {
	BuildingID           int64
	Period               TimePeriod
	Capacity             int
	RoomsOnly            bool
	ExcludeReservationID int64
}
