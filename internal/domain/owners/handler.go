package owners

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
	r.Route("/owners", func(or chi.Router) {
		or.Post("/", createOwnerHandler(svc))
		or.Get("/", listOwnersHandler(svc))
		or.Get("/{ownerID}", getOwnerHandler(svc))
		or.Patch("/{ownerID}", updateOwnerHandler(svc))
		or.Post("/{ownerID}/deactivate", deactivateOwnerHandler(svc))
	})
}

type createOwnerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Document  string    `json:"document"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func createOwnerHandler(svc *Service) http.HandlerFunc {
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

		var req createOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		o, err := svc.Create(r.Context(), CreateInput(req))
		if err != nil {
			writeOwnerError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

func listOwnersHandler(svc *Service) http.HandlerFunc {
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

		var items []Owner
		var err error
		if q := r.URL.Query().Get("q"); q != "" {
			items, err = svc.Search(r.Context(), q)
		} else {
			items, err = svc.List(r.Context(), r.URL.Query().Get("active") == "true")
		}
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getOwnerHandler(svc *Service) http.HandlerFunc {
	// Staff, o un usuario owner mirando su propio registro (match por correo).
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		o, err := svc.GetByID(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "owner not found")
			return
		}

		if !claims.IsStaff() && o.Email != claims.Email {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

type updateOwnerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func updateOwnerHandler(svc *Service) http.HandlerFunc {
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

		var req updateOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		o, err := svc.Update(r.Context(), chi.URLParam(r, "ownerID"), UpdateInput(req))
		if err != nil {
			writeOwnerError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func deactivateOwnerHandler(svc *Service) http.HandlerFunc {
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

		o, err := svc.Deactivate(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeOwnerError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

func writeOwnerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrDocumentTaken):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "owner not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		Name:      o.Name,
		Email:     o.Email,
		Document:  o.Document,
		Phone:     o.Phone,
		Active:    o.Active,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
