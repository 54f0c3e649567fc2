package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
	"vet-clinic-api/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, ownersSvc *owners.Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc, ownersSvc))
		ar.Get("/", listAppointmentsHandler(svc, ownersSvc))
		ar.Get("/{appointmentID}", getAppointmentHandler(svc, ownersSvc))
		ar.Post("/{appointmentID}/confirm", confirmAppointmentHandler(svc))
		ar.Post("/{appointmentID}/start", startAppointmentHandler(svc))
		ar.Post("/{appointmentID}/complete", completeAppointmentHandler(svc))
		ar.Post("/{appointmentID}/cancel", cancelAppointmentHandler(svc, ownersSvc))
		ar.Post("/{appointmentID}/reschedule", rescheduleAppointmentHandler(svc, ownersSvc))
	})
}

type createAppointmentRequest struct {
	PetID       string `json:"pet_id"`
	VetID       string `json:"vet_id"`
	ServiceID   string `json:"service_id"`
	ScheduledAt string `json:"scheduled_at"` // RFC 3339
	Reason      string `json:"reason"`
}

type appointmentResponse struct {
	ID               string    `json:"id"`
	PetID            string    `json:"pet_id"`
	VetID            string    `json:"vet_id"`
	ServiceID        string    `json:"service_id"`
	ScheduledAt      time.Time `json:"scheduled_at"`
	DurationMinutes  int       `json:"duration_minutes"`
	Status           Status    `json:"status"`
	Reason           string    `json:"reason,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	LateCancellation bool      `json:"late_cancellation"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func createAppointmentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "scheduled_at must be RFC 3339")
			return
		}

		// Un usuario owner solo agenda para sus propias mascotas.
		if !claims.IsStaff() {
			if claims.Role != auth.RoleOwner || !ownsPet(r, svc, ownersSvc, claims, req.PetID) {
				httpx.Error(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		appt, err := svc.Create(r.Context(), CreateInput{
			PetID:       req.PetID,
			VetID:       req.VetID,
			ServiceID:   req.ServiceID,
			ScheduledAt: scheduledAt,
			Reason:      req.Reason,
		}, claims.UserID)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if claims.Role == auth.RoleOwner {
			o, err := ownersSvc.GetByEmail(r.Context(), claims.Email)
			if err != nil {
				httpx.WriteJSON(w, http.StatusOK, []appointmentResponse{})
				return
			}
			items, err := svc.ListByOwner(r.Context(), o.ID)
			if err != nil {
				httpx.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			writeAppointmentList(w, items)
			return
		}

		if !claims.IsStaff() {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		f, err := parseListFilter(r)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		items, err := svc.List(r.Context(), f)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeAppointmentList(w, items)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()
	f := ListFilter{
		PetID: strings.TrimSpace(q.Get("pet_id")),
		VetID: strings.TrimSpace(q.Get("vet_id")),
	}
	if st := strings.TrimSpace(q.Get("status")); st != "" {
		if !ValidStatus(st) {
			return ListFilter{}, errors.New("unknown status filter")
		}
		f.Status = Status(st)
	}
	if from := strings.TrimSpace(q.Get("from")); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC 3339")
		}
		f.From = t
	}
	if to := strings.TrimSpace(q.Get("to")); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC 3339")
		}
		f.To = t
	}
	return f, nil
}

func getAppointmentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		appt, err := svc.GetByID(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		if !claims.IsStaff() && !ownsPet(r, svc, ownersSvc, claims, appt.PetID) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func confirmAppointmentHandler(svc *Service) http.HandlerFunc {
	return staffTransitionHandler(func(r *http.Request, id string) (Appointment, error) {
		return svc.Confirm(r.Context(), id)
	})
}

func startAppointmentHandler(svc *Service) http.HandlerFunc {
	return staffTransitionHandler(func(r *http.Request, id string) (Appointment, error) {
		return svc.Start(r.Context(), id)
	})
}

type completeAppointmentRequest struct {
	Notes string `json:"notes"`
}

func completeAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsStaff() {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		var req completeAppointmentRequest
		if r.Body != nil {
			// Body opcional.
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		appt, err := svc.Complete(r.Context(), chi.URLParam(r, "appointmentID"), req.Notes)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		id := chi.URLParam(r, "appointmentID")
		if !claims.IsStaff() {
			appt, err := svc.GetByID(r.Context(), id)
			if err != nil {
				writeAppointmentError(w, err)
				return
			}
			if !ownsPet(r, svc, ownersSvc, claims, appt.PetID) {
				httpx.Error(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		appt, err := svc.Cancel(r.Context(), id)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

type rescheduleAppointmentRequest struct {
	ScheduledAt string `json:"scheduled_at"` // RFC 3339
}

func rescheduleAppointmentHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req rescheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		newTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "scheduled_at must be RFC 3339")
			return
		}

		id := chi.URLParam(r, "appointmentID")
		if !claims.IsStaff() {
			appt, err := svc.GetByID(r.Context(), id)
			if err != nil {
				writeAppointmentError(w, err)
				return
			}
			if !ownsPet(r, svc, ownersSvc, claims, appt.PetID) {
				httpx.Error(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		appt, err := svc.Reschedule(r.Context(), id, newTime)
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func staffTransitionHandler(apply func(r *http.Request, id string) (Appointment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.IsStaff() {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		appt, err := apply(r, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeAppointmentError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// ownsPet reporta si el usuario owner autenticado es dueño de la mascota.
func ownsPet(r *http.Request, svc *Service, ownersSvc *owners.Service, claims auth.Claims, petID string) bool {
	o, err := ownersSvc.GetByEmail(r.Context(), claims.Email)
	if err != nil {
		return false
	}
	pet, err := svc.pets.GetByID(r.Context(), strings.TrimSpace(petID))
	if err != nil {
		return false
	}
	return pet.OwnerID == o.ID
}

func writeAppointmentList(w http.ResponseWriter, items []Appointment) {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func writeAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrPetNotFound),
		errors.Is(err, ErrVetNotFound),
		errors.Is(err, ErrServiceGone):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTooSoon),
		errors.Is(err, ErrRescheduleLate),
		errors.Is(err, ErrVetBusy),
		errors.Is(err, ErrBadTransition):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "appointment not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:               a.ID,
		PetID:            a.PetID,
		VetID:            a.VetID,
		ServiceID:        a.ServiceID,
		ScheduledAt:      a.ScheduledAt,
		DurationMinutes:  a.DurationMinutes,
		Status:           a.Status,
		Reason:           a.Reason,
		Notes:            a.Notes,
		LateCancellation: a.LateCancellation,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
