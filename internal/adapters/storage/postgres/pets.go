package postgres

import (
	"context"
	"database/sql"
	"errors"

	"vet-clinic-api/internal/domain/pets"
)

type PetRepository struct {
	db *sql.DB
}

func NewPetRepository(db *sql.DB) *PetRepository {
	return &PetRepository{db: db}
}

const petColumns = `id, owner_id, name, species, breed, birth_date, microchip, active, created_at, updated_at`

func (r *PetRepository) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.OwnerID, p.Name, p.Species, p.Breed, nullTime(p.BirthDate),
		nullString(p.Microchip), p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return pets.ErrMicrochipTaken
	}
	return err
}

func (r *PetRepository) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET name = $2, breed = $3, microchip = $4, active = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.Name, p.Breed, nullString(p.Microchip), p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return pets.ErrMicrochipTaken
		}
		return err
	}
	return requireRow(res, pets.ErrNotFound)
}

func (r *PetRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, pets.ErrNotFound)
}

func (r *PetRepository) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+` FROM pets WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectPets(rows)
}

func (r *PetRepository) List(ctx context.Context, onlyActive bool) ([]pets.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectPets(rows)
}

func (r *PetRepository) ExistsDuplicate(ctx context.Context, ownerID, name, species string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pets
			WHERE owner_id = $1 AND lower(name) = lower($2)
			  AND lower(species) = lower($3) AND active
		)`, ownerID, name, species).Scan(&exists)
	return exists, err
}

func collectPets(rows *sql.Rows) ([]pets.Pet, error) {
	defer rows.Close()
	var out []pets.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var birth sql.NullTime
	var microchip sql.NullString
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.Breed,
		&birth, &microchip, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return pets.Pet{}, err
	}
	p.BirthDate = timePtr(birth)
	p.Microchip = microchip.String
	return p, nil
}
