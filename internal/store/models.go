package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEntry is returned by Upsert for entries that break WorkEntry's invariants.
var ErrInvalidEntry = errors.New("invalid work entry")

// WorkEntry is one recorded work session. The limits and pay are copied from
// the settings in force when it was recorded, so later settings changes never
// rewrite history.
type WorkEntry struct {
	ID                  string
	Start               time.Time
	Finish              time.Time
	WorkSeconds         int64
	OvertimeSeconds     int64
	StandardWorkSeconds int64
	MaxOvertimeSeconds  int64
	GrossPayPerMonth    float64
	NetPay              *float64 // nil when net pay was not calculated
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewWorkEntryID returns a fresh entry identifier.
func NewWorkEntryID() string {
	return uuid.NewString()
}

// Validate checks the invariants the store relies on.
func (e WorkEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEntry)
	}
	if e.Finish.Before(e.Start) {
		return fmt.Errorf("%w: finish %s before start %s", ErrInvalidEntry, e.Finish.Format(time.RFC3339), e.Start.Format(time.RFC3339))
	}
	if e.WorkSeconds < 0 || e.OvertimeSeconds < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidEntry)
	}
	if e.StandardWorkSeconds <= 0 {
		return fmt.Errorf("%w: standard work time must be positive", ErrInvalidEntry)
	}
	return nil
}

// Duration is the total recorded time, work plus overtime.
func (e WorkEntry) Duration() time.Duration {
	return time.Duration(e.WorkSeconds+e.OvertimeSeconds) * time.Second
}

type Setting struct {
	Key   string
	Value string
}

// EntryFilter is used to filter work entries in range queries. A nil bound
// is open; Limit 0 means no limit.
type EntryFilter struct {
	From      *time.Time
	To        *time.Time
	Ascending bool
	Limit     int
}
