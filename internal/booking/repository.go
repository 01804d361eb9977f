package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrSlotTaken means an active appointment already holds the slot.
	ErrSlotTaken = errors.New("slot already taken by an active appointment")
	// ErrStatusChanged means a compare-and-swap update lost to a concurrent
	// transition on the same appointment.
	ErrStatusChanged = errors.New("appointment status changed concurrently")
	// ErrStoreUnavailable wraps failures of the backing store itself.
	ErrStoreUnavailable = errors.New("appointment store unavailable")
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status *Status
	Date   *time.Time // day granularity
}

// Repository contains all store interactions needed by the service.
// Implementations own the canonical records; callers get copies.
type Repository interface {
	// CreateIfSlotFree persists appt only if no active appointment holds
	// (SlotDate, SlotTime). The check and the insert are a single atomic
	// step; on conflict it returns ErrSlotTaken and writes nothing.
	CreateIfSlotFree(ctx context.Context, appt Appointment) (*Appointment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListByDate returns appointments on date whose status is in statuses.
	ListByDate(ctx context.Context, date time.Time, statuses []Status) ([]Appointment, error)

	// List returns appointments matching f, newest first.
	List(ctx context.Context, f Filter) ([]Appointment, error)

	// UpdateStatus moves the appointment from status `from` to `to` and
	// stamps StatusChangedAt. It is a compare-and-swap: if the current
	// status is not `from` it returns ErrStatusChanged.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, changedAt time.Time) (*Appointment, error)

	Delete(ctx context.Context, id uuid.UUID) error

	CountByStatus(ctx context.Context) (Stats, error)
}
