package triage

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Triaje es tarea del personal; los propietarios no participan.
	r.Route("/triage", func(tr chi.Router) {
		tr.Post("/", createTriageHandler(svc))
		tr.Get("/queue", queueHandler(svc))
		tr.Get("/{triageID}", getTriageHandler(svc))
		tr.Post("/{triageID}/attend", attendTriageHandler(svc))
		tr.Get("/appointment/{appointmentID}", getByAppointmentHandler(svc))
	})
}

type createTriageRequest struct {
	AppointmentID string  `json:"appointment_id"`
	GeneralState  string  `json:"general_state"`
	HeartRate     int     `json:"heart_rate"`
	RespRate      int     `json:"resp_rate"`
	TemperatureC  float64 `json:"temperature_c"`
	Pain          string  `json:"pain"`
	Bleeding      bool    `json:"bleeding"`
	Shock         bool    `json:"shock"`
	Observations  string  `json:"observations"`
}

type triageResponse struct {
	ID            string     `json:"id"`
	AppointmentID string     `json:"appointment_id"`
	PetID         string     `json:"pet_id"`
	GeneralState  string     `json:"general_state"`
	HeartRate     int        `json:"heart_rate"`
	RespRate      int        `json:"resp_rate"`
	TemperatureC  float64    `json:"temperature_c"`
	Pain          string     `json:"pain"`
	Bleeding      bool       `json:"bleeding"`
	Shock         bool       `json:"shock"`
	Priority      Priority   `json:"priority"`
	Observations  string     `json:"observations,omitempty"`
	Attended      bool       `json:"attended"`
	AttendedAt    *time.Time `json:"attended_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func createTriageHandler(svc *Service) http.HandlerFunc {
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

		var req createTriageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		t, err := svc.Create(r.Context(), CreateInput{
			AppointmentID: req.AppointmentID,
			Vitals: Vitals{
				GeneralState: GeneralState(req.GeneralState),
				HeartRate:    req.HeartRate,
				RespRate:     req.RespRate,
				TemperatureC: req.TemperatureC,
				Pain:         PainLevel(req.Pain),
				Bleeding:     req.Bleeding,
				Shock:        req.Shock,
			},
			Observations: req.Observations,
		}, claims.UserID)
		if err != nil {
			writeTriageError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toTriageResponse(t))
	}
}

func queueHandler(svc *Service) http.HandlerFunc {
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

		items, err := svc.Queue(r.Context())
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]triageResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTriageResponse(t))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getTriageHandler(svc *Service) http.HandlerFunc {
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

		t, err := svc.GetByID(r.Context(), chi.URLParam(r, "triageID"))
		if err != nil {
			writeTriageError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toTriageResponse(t))
	}
}

func getByAppointmentHandler(svc *Service) http.HandlerFunc {
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

		t, err := svc.GetByAppointment(r.Context(), chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeTriageError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toTriageResponse(t))
	}
}

func attendTriageHandler(svc *Service) http.HandlerFunc {
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

		t, err := svc.MarkAttended(r.Context(), chi.URLParam(r, "triageID"))
		if err != nil {
			writeTriageError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toTriageResponse(t))
	}
}

func writeTriageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrApptNotFound),
		errors.Is(err, ErrNeedsObservation):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyTriaged), errors.Is(err, ErrApptNotTriagable):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "triage not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toTriageResponse(t Triage) triageResponse {
	return triageResponse{
		ID:            t.ID,
		AppointmentID: t.AppointmentID,
		PetID:         t.PetID,
		GeneralState:  string(t.Vitals.GeneralState),
		HeartRate:     t.Vitals.HeartRate,
		RespRate:      t.Vitals.RespRate,
		TemperatureC:  t.Vitals.TemperatureC,
		Pain:          string(t.Vitals.Pain),
		Bleeding:      t.Vitals.Bleeding,
		Shock:         t.Vitals.Shock,
		Priority:      t.Priority,
		Observations:  t.Observations,
		Attended:      t.Attended,
		AttendedAt:    t.AttendedAt,
		CreatedAt:     t.CreatedAt,
	}
}
