package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/dashboard", summaryHandler(svc))
}

func summaryHandler(svc *Service) http.HandlerFunc {
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

		summary, err := svc.Summary(r.Context())
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, summary)
	}
}
