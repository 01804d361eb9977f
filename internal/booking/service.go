package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/zionnix/jmd-remake/internal/redis"
)

var (
	// ErrMissingField is wrapped with the field name, e.g. "name is required".
	ErrMissingField = errors.New("missing required field")
	ErrPastDate     = errors.New("slot date is in the past")
	// ErrInvalidSlot means the requested time is not in the template for the date.
	ErrInvalidSlot = errors.New("slot time not offered on this date")
	// ErrSlotContended means another submission holds the slot lock; retry.
	ErrSlotContended = errors.New("slot is currently being booked, please retry")
	// ErrInvalidTransition means a terminal appointment was asked to change state.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown status")
)

// Notifier delivers a freshly admitted request to the site owner. Failures
// are logged, never propagated: the appointment is already committed.
type Notifier interface {
	AppointmentRequested(ctx context.Context, appt *Appointment) error
}

type nopNotifier struct{}

func (nopNotifier) AppointmentRequested(context.Context, *Appointment) error { return nil }

// SlotAvailability is one template slot with its booking state.
type SlotAvailability struct {
	Time string
	Free bool
}

// SubmitInput is a booking request as it arrives from the form.
type SubmitInput struct {
	Name     string
	Email    string
	Phone    string
	Message  string
	SlotDate time.Time
	SlotTime string
}

// Service is the booking engine: slot availability, admission control,
// the moderation state machine and dashboard queries.
type Service struct {
	repo     Repository
	locker   Locker
	schedule *Schedule
	clock    Clock
	notifier Notifier
}

// NewService wires the engine. locker, schedule, clock and notifier may be
// nil; they default to an in-process keyed mutex, the stock templates, the
// system clock and a no-op notifier.
func NewService(repo Repository, locker Locker, schedule *Schedule, clock Clock, notifier Notifier) *Service {
	if locker == nil {
		locker = NewKeyMutex()
	}
	if schedule == nil {
		schedule = DefaultSchedule()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		repo:     repo,
		locker:   locker,
		schedule: schedule,
		clock:    clock,
		notifier: notifier,
	}
}

// AvailableSlots returns every template slot for date, each marked free
// unless a pending or validated appointment occupies it.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time) ([]SlotAvailability, error) {
	template := s.schedule.TemplateFor(date)

	active, err := s.repo.ListByDate(ctx, date, ActiveStatuses)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}

	taken := make(map[string]bool, len(active))
	for _, a := range active {
		taken[a.SlotTime] = true
	}

	result := make([]SlotAvailability, len(template))
	for i, t := range template {
		result[i] = SlotAvailability{Time: t, Free: !taken[t]}
	}
	return result, nil
}

// Submit admits a booking request. Preconditions are checked in order and
// short-circuit; the free-slot check and the insert run as one atomic step
// under the per-slot lock, so concurrent submissions for the same slot
// cannot both win.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Appointment, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	appt := Appointment{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		SlotDate:  DateOnly(in.SlotDate),
		SlotTime:  in.SlotTime,
		Status:    StatusPending,
		CreatedAt: now,
	}
	if p := strings.TrimSpace(in.Phone); p != "" {
		appt.Phone = &p
	}
	if m := strings.TrimSpace(in.Message); m != "" {
		appt.Message = &m
	}

	var created *Appointment
	err := s.locker.WithSlotLock(ctx, SlotKey(appt.SlotDate, appt.SlotTime), func(lockCtx context.Context) error {
		c, err := s.repo.CreateIfSlotFree(lockCtx, appt)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotContended
		}
		return nil, err
	}

	if nerr := s.notifier.AppointmentRequested(ctx, created); nerr != nil {
		log.Printf("owner notification failed for appointment=%s: %v", created.ID, nerr)
	}

	return created, nil
}

func (s *Service) validate(in SubmitInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: email", ErrMissingField)
	}
	if in.SlotDate.IsZero() {
		return fmt.Errorf("%w: slot_date", ErrMissingField)
	}
	if in.SlotTime == "" {
		return fmt.Errorf("%w: slot_time", ErrMissingField)
	}

	today := DateOnly(s.clock.Now())
	if DateOnly(in.SlotDate).Before(today) {
		return ErrPastDate
	}

	if !s.schedule.Contains(in.SlotDate, in.SlotTime) {
		return fmt.Errorf("%w: %s", ErrInvalidSlot, in.SlotTime)
	}
	return nil
}

// Validate moves a pending appointment to validated.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusValidated)
}

// Reject moves a pending appointment to rejected, freeing its slot.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusRejected)
}

// transition applies pending -> target. Re-applying the transition an
// appointment already took is a no-op success (tolerates double-clicks);
// StatusChangedAt keeps the timestamp of the first transition. Moving
// between the two terminal states is ErrInvalidTransition.
func (s *Service) transition(ctx context.Context, id uuid.UUID, target Status) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appt.Status == target {
		return appt, nil
	}
	if appt.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, target)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, StatusPending, target, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrStatusChanged) {
			// Lost a race with a concurrent moderation action; re-read to
			// decide whether it landed on the same status.
			return s.resolveRace(ctx, id, target)
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) resolveRace(ctx context.Context, id uuid.UUID, target Status) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == target {
		return appt, nil
	}
	return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, target)
}

// Delete removes an appointment outright, from any state. The slot is
// released immediately.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListByStatus returns appointments for the dashboard, newest first.
// A nil status means all.
func (s *Service) ListByStatus(ctx context.Context, status *Status) ([]Appointment, error) {
	if status != nil && !ValidStatus(*status) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, *status)
	}
	return s.repo.List(ctx, Filter{Status: status})
}

// Stats returns the dashboard counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.CountByStatus(ctx)
}
