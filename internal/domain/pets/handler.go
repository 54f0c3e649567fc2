package pets

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
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, ownersSvc))
		pr.Get("/", listPetsHandler(svc, ownersSvc))
		pr.Get("/{petID}", getPetHandler(svc, ownersSvc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Post("/{petID}/deactivate", deactivatePetHandler(svc))
	})
}

type createPetRequest struct {
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	Species   string `json:"species"`
	Breed     string `json:"breed"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
	Microchip string `json:"microchip"`
}

type petResponse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Microchip string     `json:"microchip,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func createPetHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
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

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		// Mascota vinculada a propietario existente y activo.
		o, err := ownersSvc.GetByID(r.Context(), strings.TrimSpace(req.OwnerID))
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "owner not found")
			return
		}
		if !o.Active {
			httpx.Error(w, http.StatusBadRequest, owners.ErrInactive.Error())
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
				return
			}
			bd = &t
		}

		p, err := svc.Create(r.Context(), CreateInput{
			OwnerID:   o.ID,
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			BirthDate: bd,
			Microchip: req.Microchip,
		})
		if err != nil {
			writePetError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	// Staff lista todas (o filtra por owner_id); un usuario owner solo
	// ve las suyas, resolviendo su registro por correo.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if claims.Role == auth.RoleOwner {
			o, err := ownersSvc.GetByEmail(r.Context(), claims.Email)
			if err != nil {
				httpx.WriteJSON(w, http.StatusOK, []petResponse{})
				return
			}
			writePetList(w, svc, r, o.ID)
			return
		}

		if !claims.IsStaff() {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		if ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id")); ownerID != "" {
			writePetList(w, svc, r, ownerID)
			return
		}

		items, err := svc.List(r.Context(), r.URL.Query().Get("active") == "true")
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func writePetList(w http.ResponseWriter, svc *Service, r *http.Request, ownerID string) {
	items, err := svc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPetResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func getPetHandler(svc *Service, ownersSvc *owners.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "pet not found")
			return
		}

		if !claims.IsStaff() {
			o, err := ownersSvc.GetByEmail(r.Context(), claims.Email)
			if err != nil || o.ID != p.OwnerID {
				httpx.Error(w, http.StatusForbidden, "forbidden")
				return
			}
		}

		httpx.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

type updatePetRequest struct {
	Name      *string `json:"name"`
	Breed     *string `json:"breed"`
	Microchip *string `json:"microchip"`
}

func updatePetHandler(svc *Service) http.HandlerFunc {
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

		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), UpdateInput(req))
		if err != nil {
			writePetError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func deactivatePetHandler(svc *Service) http.HandlerFunc {
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

		p, err := svc.Deactivate(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writePetError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func writePetError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicatePet), errors.Is(err, ErrMicrochipTaken):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "pet not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		BirthDate: p.BirthDate,
		Microchip: p.Microchip,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
