package clinicservices

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
	"vet-clinic-api/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/services", func(sr chi.Router) {
		sr.Post("/", createServiceHandler(svc))
		sr.Get("/", listServicesHandler(svc))
		sr.Get("/{serviceID}", getServiceHandler(svc))
		sr.Patch("/{serviceID}", updateServiceHandler(svc))
		sr.Post("/{serviceID}/deactivate", deactivateServiceHandler(svc))
	})
}

type createServiceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Cost            float64 `json:"cost"`
}

type serviceResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Cost            float64   `json:"cost"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func createServiceHandler(svc *Service) http.HandlerFunc {
	// Solo superadmin administra el catálogo.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.HasRole(auth.RoleSuperadmin) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		var req createServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		cs, err := svc.Create(r.Context(), CreateInput(req), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toServiceResponse(cs))
	}
}

func listServicesHandler(svc *Service) http.HandlerFunc {
	// Catálogo visible para cualquier usuario autenticado.
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.List(r.Context(), r.URL.Query().Get("active") == "true")
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]serviceResponse, 0, len(items))
		for _, cs := range items {
			out = append(out, toServiceResponse(cs))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getServiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		cs, err := svc.GetByID(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "service not found")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(cs))
	}
}

type updateServiceRequest struct {
	Description     *string  `json:"description"`
	DurationMinutes *int     `json:"duration_minutes"`
	Cost            *float64 `json:"cost"`
	Active          *bool    `json:"active"`
}

func updateServiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.HasRole(auth.RoleSuperadmin) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		var req updateServiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		cs, err := svc.Update(r.Context(), chi.URLParam(r, "serviceID"), UpdateInput(req))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(cs))
	}
}

func deactivateServiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !claims.HasRole(auth.RoleSuperadmin) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		cs, err := svc.Deactivate(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toServiceResponse(cs))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNameTaken):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "service not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toServiceResponse(cs ClinicService) serviceResponse {
	return serviceResponse{
		ID:              cs.ID,
		Name:            cs.Name,
		Description:     cs.Description,
		DurationMinutes: cs.DurationMinutes,
		Cost:            cs.Cost,
		Active:          cs.Active,
		CreatedAt:       cs.CreatedAt,
		UpdatedAt:       cs.UpdatedAt,
	}
}
