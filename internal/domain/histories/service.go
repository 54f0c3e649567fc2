package histories

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("medical history not found")
	ErrAlreadyExists  = errors.New("pet already has a medical history")
	ErrInactive       = errors.New("medical history is inactive")
	ErrNumberConflict = errors.New("history number already taken")
)

// Reintentos al asignar número de historia cuando dos altas
// concurrentes calculan la misma secuencia.
const sequenceAttempts = 3

// Service implementa la gestión de historias clínicas.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateForPet abre la historia clínica de la mascota con el siguiente
// número del año en curso. Cada mascota tiene una sola historia.
func (s *Service) CreateForPet(ctx context.Context, petID string) error {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return fmt.Errorf("%w: pet id is required", ErrInvalidInput)
	}
	if _, ok, err := s.repo.GetByPet(ctx, petID); err != nil {
		return err
	} else if ok {
		return ErrAlreadyExists
	}

	var err error
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		now := s.now()
		year := now.Year()
		var seq int
		seq, err = s.repo.MaxSequence(ctx, year)
		if err != nil {
			return err
		}
		err = s.repo.Create(ctx, MedicalHistory{
			ID:        uuid.NewString(),
			PetID:     petID,
			Number:    FormatNumber(year, seq+1),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		})
		// Otra alta tomó el mismo número: recalcular la secuencia.
		if errors.Is(err, ErrNumberConflict) {
			continue
		}
		return err
	}
	return err
}

func (s *Service) GetByID(ctx context.Context, id string) (MedicalHistory, error) {
	h, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return MedicalHistory{}, err
	}
	if !ok {
		return MedicalHistory{}, ErrNotFound
	}
	return h, nil
}

func (s *Service) GetByPet(ctx context.Context, petID string) (MedicalHistory, error) {
	h, ok, err := s.repo.GetByPet(ctx, petID)
	if err != nil {
		return MedicalHistory{}, err
	}
	if !ok {
		return MedicalHistory{}, ErrNotFound
	}
	return h, nil
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]MedicalHistory, error) {
	return s.repo.List(ctx, onlyActive)
}

// Deactivate desactiva la historia. Nunca se elimina.
func (s *Service) Deactivate(ctx context.Context, id string) (MedicalHistory, error) {
	h, err := s.GetByID(ctx, id)
	if err != nil {
		return MedicalHistory{}, err
	}
	if !h.Active {
		return h, nil
	}
	h.Active = false
	h.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, h); err != nil {
		return MedicalHistory{}, err
	}
	return h, nil
}

// ConsultationInput son los datos de una atención.
type ConsultationInput struct {
	AppointmentID string
	VetID         string
	Reason        string
	Anamnesis     string
	Diagnosis     string
	Treatment     string
	WeightKg      float64
	Notes         string
}

// AddConsultation registra una atención en la historia. Las consultas
// son inmutables: no hay edición ni borrado posterior.
func (s *Service) AddConsultation(ctx context.Context, historyID string, in ConsultationInput) (Consultation, error) {
	h, err := s.GetByID(ctx, historyID)
	if err != nil {
		return Consultation{}, err
	}
	if !h.Active {
		return Consultation{}, ErrInactive
	}

	in.VetID = strings.TrimSpace(in.VetID)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Diagnosis = strings.TrimSpace(in.Diagnosis)
	if in.VetID == "" || in.Reason == "" || in.Diagnosis == "" {
		return Consultation{}, fmt.Errorf("%w: vet, reason and diagnosis are required", ErrInvalidInput)
	}
	if in.WeightKg < 0 {
		return Consultation{}, fmt.Errorf("%w: weight cannot be negative", ErrInvalidInput)
	}

	now := s.now()
	c := Consultation{
		ID:            uuid.NewString(),
		HistoryID:     h.ID,
		AppointmentID: strings.TrimSpace(in.AppointmentID),
		VetID:         in.VetID,
		Date:          now,
		Reason:        in.Reason,
		Anamnesis:     strings.TrimSpace(in.Anamnesis),
		Diagnosis:     in.Diagnosis,
		Treatment:     strings.TrimSpace(in.Treatment),
		WeightKg:      in.WeightKg,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
	}
	if err := s.repo.AddConsultation(ctx, c); err != nil {
		return Consultation{}, err
	}
	return c, nil
}

func (s *Service) ListConsultations(ctx context.Context, historyID string) ([]Consultation, error) {
	if _, err := s.GetByID(ctx, historyID); err != nil {
		return nil, err
	}
	return s.repo.ListConsultations(ctx, historyID)
}

// ExportCSV escribe la historia y sus consultas en formato CSV.
func (s *Service) ExportCSV(ctx context.Context, historyID string, w io.Writer) error {
	h, err := s.GetByID(ctx, historyID)
	if err != nil {
		return err
	}
	consultations, err := s.repo.ListConsultations(ctx, h.ID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"history_number", "date", "vet_id", "reason", "anamnesis", "diagnosis", "treatment", "weight_kg", "notes"}); err != nil {
		return err
	}
	for _, c := range consultations {
		row := []string{
			h.Number,
			c.Date.Format(time.RFC3339),
			c.VetID,
			c.Reason,
			c.Anamnesis,
			c.Diagnosis,
			c.Treatment,
			strconv.FormatFloat(c.WeightKg, 'f', 2, 64),
			c.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
