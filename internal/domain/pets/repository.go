package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error

	// Delete elimina la fila. Solo se usa para deshacer un alta cuya
	// historia clínica no pudo crearse; las bajas normales desactivan.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	List(ctx context.Context, onlyActive bool) ([]Pet, error)

	// ExistsDuplicate reporta si el propietario ya tiene una mascota
	// activa con el mismo nombre y especie.
	ExistsDuplicate(ctx context.Context, ownerID, name, species string) (bool, error)
}
