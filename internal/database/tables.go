package database

import sq "github.com/Masterminds/squirrel"

// PSQL is the shared statement builder with Postgres placeholders.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	ReservationsTable = "reservations"
	AllocationsTable  = "allocations"
	ResourcesTable    = "resources"
	BuildingsTable    = "buildings"
)
