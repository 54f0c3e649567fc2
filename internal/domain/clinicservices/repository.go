package clinicservices

import "context"

type Repository interface {
	Create(ctx context.Context, s ClinicService) error
	Update(ctx context.Context, s ClinicService) error
	GetByID(ctx context.Context, id string) (ClinicService, error)
	List(ctx context.Context, onlyActive bool) ([]ClinicService, error)
}
