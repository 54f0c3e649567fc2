package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"vet-clinic-api/internal/domain/histories"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historyColumns = `id, pet_id, number, active, created_at, updated_at`

func (r *HistoryRepository) Create(ctx context.Context, h histories.MedicalHistory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_histories (`+historyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		h.ID, h.PetID, h.Number, h.Active, h.CreatedAt, h.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == "medical_histories_number_uq" {
			return histories.ErrNumberConflict
		}
		return histories.ErrAlreadyExists
	}
	return err
}

func (r *HistoryRepository) Update(ctx context.Context, h histories.MedicalHistory) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medical_histories
		SET active = $2, updated_at = $3
		WHERE id = $1`,
		h.ID, h.Active, h.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res, histories.ErrNotFound)
}

func (r *HistoryRepository) GetByID(ctx context.Context, id string) (histories.MedicalHistory, bool, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *HistoryRepository) GetByPet(ctx context.Context, petID string) (histories.MedicalHistory, bool, error) {
	return r.getBy(ctx, `WHERE pet_id = $1`, petID)
}

func (r *HistoryRepository) getBy(ctx context.Context, where string, arg any) (histories.MedicalHistory, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+historyColumns+` FROM medical_histories `+where, arg)
	var h histories.MedicalHistory
	err := row.Scan(&h.ID, &h.PetID, &h.Number, &h.Active, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return histories.MedicalHistory{}, false, nil
	}
	if err != nil {
		return histories.MedicalHistory{}, false, err
	}
	return h, true, nil
}

func (r *HistoryRepository) List(ctx context.Context, onlyActive bool) ([]histories.MedicalHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM medical_histories`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []histories.MedicalHistory
	for rows.Next() {
		var h histories.MedicalHistory
		if err := rows.Scan(&h.ID, &h.PetID, &h.Number, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) MaxSequence(ctx context.Context, year int) (int, error) {
	// El número es HC-AAAA-XXXX; se extrae el consecutivo del año.
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(split_part(number, '-', 3)::int)
		FROM medical_histories
		WHERE number LIKE 'HC-' || $1::text || '-%'`, year).Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

const consultationColumns = `id, history_id, appointment_id, vet_id, date,
	reason, anamnesis, diagnosis, treatment, weight_kg, notes, created_at`

func (r *HistoryRepository) AddConsultation(ctx context.Context, c histories.Consultation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO consultations (`+consultationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.HistoryID, nullString(c.AppointmentID), c.VetID, c.Date,
		c.Reason, c.Anamnesis, c.Diagnosis, c.Treatment, c.WeightKg, c.Notes, c.CreatedAt,
	)
	return err
}

func (r *HistoryRepository) ListConsultations(ctx context.Context, historyID string) ([]histories.Consultation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+consultationColumns+`
		FROM consultations
		WHERE history_id = $1
		ORDER BY date`, historyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []histories.Consultation
	for rows.Next() {
		var c histories.Consultation
		var apptID sql.NullString
		err := rows.Scan(&c.ID, &c.HistoryID, &apptID, &c.VetID, &c.Date,
			&c.Reason, &c.Anamnesis, &c.Diagnosis, &c.Treatment, &c.WeightKg, &c.Notes, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		c.AppointmentID = apptID.String
		out = append(out, c)
	}
	return out, rows.Err()
}
