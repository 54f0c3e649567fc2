package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/ports/auth"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, phone, password_hash, role, active, created_at, updated_at, created_by`

func (r *UserRepository) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role),
		u.Active, u.CreatedAt, u.UpdatedAt, nullString(u.CreatedBy),
	)
	if isUniqueViolation(err) {
		return users.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, phone = $3, password_hash = $4, role = $5,
		    active = $6, updated_at = $7
		WHERE id = $1`,
		u.ID, u.Name, u.Phone, u.PasswordHash, string(u.Role), u.Active, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res, users.ErrNotFound)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getBy(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, users.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	var role string
	var createdBy sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&role, &u.Active, &u.CreatedAt, &u.UpdatedAt, &createdBy)
	if err != nil {
		return users.User{}, err
	}
	u.Role = auth.Role(role)
	u.CreatedBy = createdBy.String
	return u, nil
}
