package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (slot_date, slot_time) for active statuses.
const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, name, email, phone, message, slot_date, slot_time, status, created_at, status_changed_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var phone, message *string
	var statusChangedAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&phone,
		&message,
		&a.SlotDate,
		&a.SlotTime,
		&a.Status,
		&a.CreatedAt,
		&statusChangedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, storeErr(err)
	}

	a.Phone = phone
	a.Message = message
	a.StatusChangedAt = statusChangedAt
	a.SlotDate = DateOnly(a.SlotDate)
	return &a, nil
}

func (r *PgRepository) CreateIfSlotFree(ctx context.Context, appt Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, name, email, phone, message, slot_date, slot_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+appointmentColumns+`
	`, appt.ID, appt.Name, appt.Email, appt.Phone, appt.Message,
		appt.SlotDate, appt.SlotTime, appt.Status, appt.CreatedAt)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByDate(ctx context.Context, date time.Time, statuses []Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE slot_date = $1
		  AND status = ANY($2)
		ORDER BY slot_time
	`, DateOnly(date), statusStrings(statuses))
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) List(ctx context.Context, f Filter) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::date IS NULL OR slot_date = $2)
		ORDER BY created_at DESC
	`

	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	var date *time.Time
	if f.Date != nil {
		d := DateOnly(*f.Date)
		date = &d
	}

	rows, err := r.pool.Query(ctx, query, status, date)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, changedAt time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    status_changed_at = $3
		WHERE id = $1
		  AND status = $4
		RETURNING `+appointmentColumns+`
	`, id, to, changedAt, from)

	updated, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Row missing or status moved under us; let the caller decide.
			return nil, r.classifyUpdateMiss(ctx, id)
		}
		return nil, err
	}
	return updated, nil
}

// classifyUpdateMiss distinguishes a vanished row from a lost CAS race.
func (r *PgRepository) classifyUpdateMiss(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusChanged
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) CountByStatus(ctx context.Context) (Stats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		GROUP BY status
	`)
	if err != nil {
		return Stats{}, storeErr(err)
	}
	defer rows.Close()

	var st Stats
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, storeErr(err)
		}
		switch status {
		case StatusPending:
			st.Pending = count
		case StatusValidated:
			st.Validated = count
		case StatusRejected:
			st.Rejected = count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, storeErr(err)
	}

	st.Total = st.Pending + st.Validated + st.Rejected
	return st, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return result, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
