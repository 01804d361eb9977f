package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory Repository. It backs unit
// tests and single-process deployments that do not want Postgres. The
// single mutex makes CreateIfSlotFree atomic within the process.
type MemoryRepository struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]Appointment
	order []uuid.UUID // insertion order, used to break CreatedAt ties
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID: make(map[uuid.UUID]Appointment),
	}
}

func (r *MemoryRepository) CreateIfSlotFree(ctx context.Context, appt Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.HoldsSlot() &&
			existing.SlotDate.Equal(appt.SlotDate) &&
			existing.SlotTime == appt.SlotTime {
			return nil, ErrSlotTaken
		}
	}

	r.byID[appt.ID] = appt
	r.order = append(r.order, appt.ID)
	out := appt
	return &out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := a
	return &out, nil
}

func (r *MemoryRepository) ListByDate(ctx context.Context, date time.Time, statuses []Status) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	date = DateOnly(date)
	var result []Appointment
	for _, id := range r.order {
		a, ok := r.byID[id]
		if !ok || !a.SlotDate.Equal(date) {
			continue
		}
		for _, s := range statuses {
			if a.Status == s {
				result = append(result, a)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SlotTime < result[j].SlotTime
	})
	return result, nil
}

func (r *MemoryRepository) List(ctx context.Context, f Filter) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []Appointment
	for i := len(r.order) - 1; i >= 0; i-- {
		a, ok := r.byID[r.order[i]]
		if !ok {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.Date != nil && !a.SlotDate.Equal(DateOnly(*f.Date)) {
			continue
		}
		result = append(result, a)
	}
	// Newest first; insertion order already approximates this, CreatedAt wins.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, changedAt time.Time) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if a.Status != from {
		return nil, ErrStatusChanged
	}

	a.Status = to
	t := changedAt
	a.StatusChangedAt = &t
	r.byID[id] = a

	out := a
	return &out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) CountByStatus(ctx context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st Stats
	for _, a := range r.byID {
		switch a.Status {
		case StatusPending:
			st.Pending++
		case StatusValidated:
			st.Validated++
		case StatusRejected:
			st.Rejected++
		}
	}
	st.Total = st.Pending + st.Validated + st.Rejected
	return st, nil
}
