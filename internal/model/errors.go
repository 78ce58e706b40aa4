package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoRecord = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

// ValidationError reports malformed input before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AvailabilityConflict names the resource and date that could not be booked.
type AvailabilityConflict struct {
	ResourceID int64
	Date       time.Time
}

func (e *AvailabilityConflict) Error() string {
	return fmt.Sprintf("resource %d unavailable on %s", e.ResourceID, e.Date.Format("2006-01-02"))
}

// SyncConflict reports an inbound calendar change that cannot be
// reconciled with stored reservations. The stored state is left untouched.
type SyncConflict struct {
	UniqueID string
	Reason   string
}

func (e *SyncConflict) Error() string {
	return fmt.Sprintf("cannot sync event %s: %s", e.UniqueID, e.Reason)
}
