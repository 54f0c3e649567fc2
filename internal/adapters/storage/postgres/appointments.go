package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vet-clinic-api/internal/domain/appointments"
)

type AppointmentRepository struct {
	db *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = `id, pet_id, vet_id, service_id, scheduled_at, duration_minutes,
	status, reason, notes, late_cancellation, created_at, updated_at, created_by`

func (r *AppointmentRepository) Create(ctx context.Context, a appointments.Appointment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.PetID, a.VetID, a.ServiceID, a.ScheduledAt, a.DurationMinutes,
		string(a.Status), a.Reason, a.Notes, a.LateCancellation,
		a.CreatedAt, a.UpdatedAt, nullString(a.CreatedBy),
	)
	return err
}

func (r *AppointmentRepository) Update(ctx context.Context, a appointments.Appointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE appointments
		SET scheduled_at = $2, status = $3, notes = $4,
		    late_cancellation = $5, updated_at = $6
		WHERE id = $1`,
		a.ID, a.ScheduledAt, string(a.Status), a.Notes, a.LateCancellation, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res, appointments.ErrNotFound)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (appointments.Appointment, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, false, nil
	}
	if err != nil {
		return appointments.Appointment{}, false, err
	}
	return a, true, nil
}

func (r *AppointmentRepository) List(ctx context.Context, f appointments.ListFilter) ([]appointments.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []any

	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.PetID != "" {
		add("pet_id = $%d", f.PetID)
	}
	if f.VetID != "" {
		add("vet_id = $%d", f.VetID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if !f.From.IsZero() {
		add("scheduled_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("scheduled_at < $%d", f.To)
	}
	query += ` ORDER BY scheduled_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListBlockingByVet(ctx context.Context, vetID string, from, to time.Time) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE vet_id = $1
		  AND status IN ('scheduled', 'confirmed', 'in_progress')
		  AND scheduled_at < $3
		  AND scheduled_at + make_interval(mins => duration_minutes) > $2`,
		vetID, from, to,
	)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func collectAppointments(rows *sql.Rows) ([]appointments.Appointment, error) {
	defer rows.Close()
	var out []appointments.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var status string
	var createdBy sql.NullString
	err := row.Scan(&a.ID, &a.PetID, &a.VetID, &a.ServiceID, &a.ScheduledAt,
		&a.DurationMinutes, &status, &a.Reason, &a.Notes, &a.LateCancellation,
		&a.CreatedAt, &a.UpdatedAt, &createdBy)
	if err != nil {
		return appointments.Appointment{}, err
	}
	a.Status = appointments.Status(status)
	a.CreatedBy = createdBy.String
	return a, nil
}
