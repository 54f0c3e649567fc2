package histories

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) {
	r.Route("/histories", func(hr chi.Router) {
		hr.Get("/", listHistoriesHandler(svc, petsSvc, ownersSvc))
		hr.Get("/{historyID}", getHistoryHandler(svc, petsSvc, ownersSvc))
		hr.Post("/{historyID}/deactivate", deactivateHistoryHandler(svc))
		hr.Get("/{historyID}/consultations", listConsultationsHandler(svc, petsSvc, ownersSvc))
		hr.Post("/{historyID}/consultations", addConsultationHandler(svc))
		hr.Get("/{historyID}/export", exportHistoryHandler(svc, petsSvc, ownersSvc))
	})
}

type historyResponse struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	Number    string    `json:"number"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type consultationResponse struct {
	ID            string    `json:"id"`
	HistoryID     string    `json:"history_id"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	VetID         string    `json:"vet_id"`
	Date          time.Time `json:"date"`
	Reason        string    `json:"reason"`
	Anamnesis     string    `json:"anamnesis,omitempty"`
	Diagnosis     string    `json:"diagnosis"`
	Treatment     string    `json:"treatment,omitempty"`
	WeightKg      float64   `json:"weight_kg"`
	Notes         string    `json:"notes,omitempty"`
}

func listHistoriesHandler(svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		// ?pet_id= devuelve la historia de esa mascota.
		if petID := strings.TrimSpace(r.URL.Query().Get("pet_id")); petID != "" {
			h, err := svc.GetByPet(r.Context(), petID)
			if err != nil {
				writeHistoryError(w, err)
				return
			}
			if !canReadHistory(r, petsSvc, ownersSvc, claims, h.PetID) {
				httpx.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			httpx.WriteJSON(w, http.StatusOK, toHistoryResponse(h))
			return
		}

		if !claims.IsStaff() {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		items, err := svc.List(r.Context(), r.URL.Query().Get("active") == "true")
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]historyResponse, 0, len(items))
		for _, h := range items {
			out = append(out, toHistoryResponse(h))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getHistoryHandler(svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		h, err := svc.GetByID(r.Context(), chi.URLParam(r, "historyID"))
		if err != nil {
			writeHistoryError(w, err)
			return
		}
		if !canReadHistory(r, petsSvc, ownersSvc, claims, h.PetID) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toHistoryResponse(h))
	}
}

func deactivateHistoryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != auth.RoleSuperadmin {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		h, err := svc.Deactivate(r.Context(), chi.URLParam(r, "historyID"))
		if err != nil {
			writeHistoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toHistoryResponse(h))
	}
}

func listConsultationsHandler(svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		h, err := svc.GetByID(r.Context(), chi.URLParam(r, "historyID"))
		if err != nil {
			writeHistoryError(w, err)
			return
		}
		if !canReadHistory(r, petsSvc, ownersSvc, claims, h.PetID) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		items, err := svc.ListConsultations(r.Context(), h.ID)
		if err != nil {
			writeHistoryError(w, err)
			return
		}
		out := make([]consultationResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toConsultationResponse(c))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

type addConsultationRequest struct {
	AppointmentID string  `json:"appointment_id"`
	Reason        string  `json:"reason"`
	Anamnesis     string  `json:"anamnesis"`
	Diagnosis     string  `json:"diagnosis"`
	Treatment     string  `json:"treatment"`
	WeightKg      float64 `json:"weight_kg"`
	Notes         string  `json:"notes"`
}

func addConsultationHandler(svc *Service) http.HandlerFunc {
	// Solo el veterinario registra atenciones; queda como autor.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.Role != auth.RoleVet && claims.Role != auth.RoleSuperadmin {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		var req addConsultationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		c, err := svc.AddConsultation(r.Context(), chi.URLParam(r, "historyID"), ConsultationInput{
			AppointmentID: req.AppointmentID,
			VetID:         claims.UserID,
			Reason:        req.Reason,
			Anamnesis:     req.Anamnesis,
			Diagnosis:     req.Diagnosis,
			Treatment:     req.Treatment,
			WeightKg:      req.WeightKg,
			Notes:         req.Notes,
		})
		if err != nil {
			writeHistoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toConsultationResponse(c))
	}
}

func exportHistoryHandler(svc *Service, petsSvc *pets.Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		h, err := svc.GetByID(r.Context(), chi.URLParam(r, "historyID"))
		if err != nil {
			writeHistoryError(w, err)
			return
		}
		if !canReadHistory(r, petsSvc, ownersSvc, claims, h.PetID) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.Number+".csv"))
		if err := svc.ExportCSV(r.Context(), h.ID, w); err != nil {
			// Headers ya enviados; solo queda registrar el corte.
			logger.FromRequest(r).Error().Err(err).Msg("csv export aborted")
		}
	}
}

// canReadHistory permite staff siempre; un usuario owner solo si la
// mascota es suya.
func canReadHistory(r *http.Request, petsSvc *pets.Service, ownersSvc *owners.Service, claims auth.Claims, petID string) bool {
	if claims.IsStaff() {
		return true
	}
	o, err := ownersSvc.GetByEmail(r.Context(), claims.Email)
	if err != nil {
		return false
	}
	ownerID, err := petsSvc.OwnerOf(r.Context(), petID)
	if err != nil {
		return false
	}
	return ownerID == o.ID
}

func writeHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrInactive):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "medical history not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toHistoryResponse(h MedicalHistory) historyResponse {
	return historyResponse{
		ID:        h.ID,
		PetID:     h.PetID,
		Number:    h.Number,
		Active:    h.Active,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func toConsultationResponse(c Consultation) consultationResponse {
	return consultationResponse{
		ID:            c.ID,
		HistoryID:     c.HistoryID,
		AppointmentID: c.AppointmentID,
		VetID:         c.VetID,
		Date:          c.Date,
		Reason:        c.Reason,
		Anamnesis:     c.Anamnesis,
		Diagnosis:     c.Diagnosis,
		Treatment:     c.Treatment,
		WeightKg:      c.WeightKg,
		Notes:         c.Notes,
	}
}
