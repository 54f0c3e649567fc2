package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/clinicservices"
)

type ClinicServiceRepository struct {
	db *sql.DB
}

func NewClinicServiceRepository(db *sql.DB) *ClinicServiceRepository {
	return &ClinicServiceRepository{db: db}
}

const serviceColumns = `id, name, description, duration_minutes, cost, active, created_at, updated_at, created_by`

func (r *ClinicServiceRepository) Create(ctx context.Context, s clinicservices.ClinicService) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.Cost,
		s.Active, s.CreatedAt, s.UpdatedAt, nullString(s.CreatedBy),
	)
	if isUniqueViolation(err) {
		return clinicservices.ErrNameTaken
	}
	return err
}

func (r *ClinicServiceRepository) Update(ctx context.Context, s clinicservices.ClinicService) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE services
		SET name = $2, description = $3, duration_minutes = $4, cost = $5,
		    active = $6, updated_at = $7
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.DurationMinutes, s.Cost, s.Active, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return clinicservices.ErrNameTaken
		}
		return err
	}
	return requireRow(res, clinicservices.ErrNotFound)
}

func (r *ClinicServiceRepository) GetByID(ctx context.Context, id string) (clinicservices.ClinicService, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	s, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return clinicservices.ClinicService{}, clinicservices.ErrNotFound
	}
	return s, err
}

func (r *ClinicServiceRepository) List(ctx context.Context, onlyActive bool) ([]clinicservices.ClinicService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []clinicservices.ClinicService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanService(row rowScanner) (clinicservices.ClinicService, error) {
	var s clinicservices.ClinicService
	var createdBy sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMinutes, &s.Cost,
		&s.Active, &s.CreatedAt, &s.UpdatedAt, &createdBy)
	if err != nil {
		return clinicservices.ClinicService{}, err
	}
	s.CreatedBy = createdBy.String
	return s, nil
}
