package reservation

import "github.com/resplan/resplan-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select("id",
		"status",
		"unique_id",
		"parent_id",
		"recurrence_rule",
		"title",
		"comments",
		"requestor",
		"attendees",
		"start_ts",
		"end_ts",
		"zone",
	).
	From(database.ReservationsTable)

var allocationsQuery = database.PSQL.
	Select("a.id",
		"a.reservation_id",
		"a.resource_id",
		"a.start_ts",
		"a.end_ts",
		"a.status",
		"a.cost",
		"r.is_room",
	).
	From(database.AllocationsTable + " a").
	Join(database.ResourcesTable + " r on r.id = a.resource_id")
