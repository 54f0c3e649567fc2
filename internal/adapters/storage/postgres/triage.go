package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/triage"
)

type TriageRepository struct {
	db *sql.DB
}

func NewTriageRepository(db *sql.DB) *TriageRepository {
	return &TriageRepository{db: db}
}

const triageColumns = `id, appointment_id, pet_id, general_state, heart_rate, resp_rate,
	temperature_c, pain, bleeding, shock, priority, observations,
	attended, attended_at, created_by, created_at`

func (r *TriageRepository) Create(ctx context.Context, t triage.Triage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO triages (`+triageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.AppointmentID, t.PetID, string(t.Vitals.GeneralState),
		t.Vitals.HeartRate, t.Vitals.RespRate, t.Vitals.TemperatureC,
		string(t.Vitals.Pain), t.Vitals.Bleeding, t.Vitals.Shock,
		string(t.Priority), t.Observations, t.Attended, nullTime(t.AttendedAt),
		t.CreatedBy, t.CreatedAt,
	)
	if isUniqueViolation(err) {
		return triage.ErrAlreadyTriaged
	}
	return err
}

func (r *TriageRepository) Update(ctx context.Context, t triage.Triage) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE triages
		SET attended = $2, attended_at = $3
		WHERE id = $1`,
		t.ID, t.Attended, nullTime(t.AttendedAt),
	)
	if err != nil {
		return err
	}
	return requireRow(res, triage.ErrNotFound)
}

func (r *TriageRepository) GetByID(ctx context.Context, id string) (triage.Triage, bool, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *TriageRepository) GetByAppointment(ctx context.Context, appointmentID string) (triage.Triage, bool, error) {
	return r.getBy(ctx, `WHERE appointment_id = $1`, appointmentID)
}

func (r *TriageRepository) getBy(ctx context.Context, where string, arg any) (triage.Triage, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+triageColumns+` FROM triages `+where, arg)
	t, err := scanTriage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return triage.Triage{}, false, nil
	}
	if err != nil {
		return triage.Triage{}, false, err
	}
	return t, true, nil
}

func (r *TriageRepository) ListPending(ctx context.Context) ([]triage.Triage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+triageColumns+` FROM triages WHERE NOT attended ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []triage.Triage
	for rows.Next() {
		t, err := scanTriage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTriage(row rowScanner) (triage.Triage, error) {
	var t triage.Triage
	var state, pain, priority string
	var attendedAt sql.NullTime
	err := row.Scan(&t.ID, &t.AppointmentID, &t.PetID, &state,
		&t.Vitals.HeartRate, &t.Vitals.RespRate, &t.Vitals.TemperatureC,
		&pain, &t.Vitals.Bleeding, &t.Vitals.Shock,
		&priority, &t.Observations, &t.Attended, &attendedAt,
		&t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return triage.Triage{}, err
	}
	t.Vitals.GeneralState = triage.GeneralState(state)
	t.Vitals.Pain = triage.PainLevel(pain)
	t.Priority = triage.Priority(priority)
	t.AttendedAt = timePtr(attendedAt)
	return t, nil
}
