package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"vet-clinic-api/internal/domain/owners"
)

type OwnerRepository struct {
	db *sql.DB
}

func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

const ownerColumns = `id, name, email, document, phone, active, created_at, updated_at`

func (r *OwnerRepository) Create(ctx context.Context, o owners.Owner) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO owners (`+ownerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Name, o.Email, o.Document, o.Phone, o.Active, o.CreatedAt, o.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == "owners_document_uq" {
			return owners.ErrDocumentTaken
		}
		return owners.ErrEmailTaken
	}
	return err
}

func (r *OwnerRepository) Update(ctx context.Context, o owners.Owner) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE owners
		SET name = $2, phone = $3, active = $4, updated_at = $5
		WHERE id = $1`,
		o.ID, o.Name, o.Phone, o.Active, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res, owners.ErrNotFound)
}

func (r *OwnerRepository) GetByID(ctx context.Context, id string) (owners.Owner, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *OwnerRepository) GetByEmail(ctx context.Context, email string) (owners.Owner, error) {
	return r.getBy(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *OwnerRepository) getBy(ctx context.Context, where string, arg any) (owners.Owner, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ownerColumns+` FROM owners `+where, arg)
	o, err := scanOwner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, err
}

func (r *OwnerRepository) List(ctx context.Context, onlyActive bool) ([]owners.Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []owners.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OwnerRepository) Search(ctx context.Context, q string) ([]owners.Owner, error) {
	pattern := "%" + q + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+ownerColumns+`
		FROM owners
		WHERE name ILIKE $1 OR email ILIKE $1 OR document ILIKE $1
		ORDER BY created_at`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []owners.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOwner(row rowScanner) (owners.Owner, error) {
	var o owners.Owner
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.Document, &o.Phone,
		&o.Active, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
