package histories

import "context"

// Repository define la persistencia de historias y consultas.
type Repository interface {
	Create(ctx context.Context, h MedicalHistory) error
	Update(ctx context.Context, h MedicalHistory) error
	GetByID(ctx context.Context, id string) (MedicalHistory, bool, error)
	GetByPet(ctx context.Context, petID string) (MedicalHistory, bool, error)
	List(ctx context.Context, onlyActive bool) ([]MedicalHistory, error)

	// MaxSequence devuelve el mayor consecutivo asignado en el año.
	// Cero cuando aún no hay historias de ese año.
	MaxSequence(ctx context.Context, year int) (int, error)

	AddConsultation(ctx context.Context, c Consultation) error
	ListConsultations(ctx context.Context, historyID string) ([]Consultation, error)
}
