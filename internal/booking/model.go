package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

// ActiveStatuses are the statuses that hold a slot. A pending request is a
// soft reservation: it keeps competing requests out of the moderation queue.
var ActiveStatuses = []Status{StatusPending, StatusValidated}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusValidated || s == StatusRejected
}

// IsTerminal reports whether s is a final status.
func (s Status) IsTerminal() bool {
	return s == StatusValidated || s == StatusRejected
}

// Appointment is a meeting request submitted through the booking form.
// Identity, requester fields and the slot are immutable after creation;
// only Status and StatusChangedAt ever change.
type Appointment struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     *string
	Message   *string
	SlotDate  time.Time // day granularity, normalized to midnight UTC
	SlotTime  string    // "HH:MM", member of the slot template for SlotDate
	Status    Status
	CreatedAt time.Time
	// StatusChangedAt is set once, when the appointment leaves pending.
	StatusChangedAt *time.Time
}

// HoldsSlot reports whether the appointment still occupies its slot.
func (a *Appointment) HoldsSlot() bool {
	return a.Status == StatusPending || a.Status == StatusValidated
}

// DateOnly truncates t to day granularity in UTC.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Stats are the moderation dashboard counters.
type Stats struct {
	Total     int
	Pending   int
	Validated int
	Rejected  int
}
