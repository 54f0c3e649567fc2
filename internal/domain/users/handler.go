package users

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
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/", createUserHandler(svc))
		ur.Get("/", listUsersHandler(svc))
		ur.Get("/{userID}", getUserHandler(svc))
		ur.Patch("/{userID}", updateUserHandler(svc))
		ur.Post("/{userID}/deactivate", deactivateUserHandler(svc))
		ur.Post("/{userID}/password", changePasswordHandler(svc))
	})
}

// RegisterAuthRoutes monta /auth: registro público, login y perfil propio.
func RegisterAuthRoutes(r chi.Router, svc *Service, issuer auth.TokenIssuer) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc))
		ar.Post("/login", loginHandler(svc, issuer))
		ar.Get("/me", meHandler(svc))
	})
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

func createUserHandler(svc *Service) http.HandlerFunc {
	// Solo superadmin crea cuentas arbitrarias (incluido staff).
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

		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Create(r.Context(), CreateInput(req), claims.UserID)
		if err != nil {
			writeUserError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func registerHandler(svc *Service) http.HandlerFunc {
	// Registro público: siempre rol owner. El staff lo crea superadmin
	// vía POST /users.
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		if req.Role != "" && auth.Role(req.Role) != auth.RoleOwner {
			httpx.Error(w, http.StatusForbidden, "self-registration is owner-only")
			return
		}
		req.Role = string(auth.RoleOwner)

		u, err := svc.Create(r.Context(), CreateInput(req), "")
		if err != nil {
			writeUserError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func loginHandler(svc *Service, issuer auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := issuer.Issue(auth.Claims{
			UserID: u.ID,
			Email:  u.Email,
			Role:   u.Role,
		})
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			User:        toUserResponse(u),
		})
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "user not found")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func listUsersHandler(svc *Service) http.HandlerFunc {
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

		items, err := svc.List(r.Context())
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	// Staff, o el propio usuario.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID := chi.URLParam(r, "userID")
		if !claims.IsStaff() && claims.UserID != userID {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		u, err := svc.GetByID(r.Context(), userID)
		if err != nil {
			httpx.Error(w, http.StatusNotFound, "user not found")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID := chi.URLParam(r, "userID")
		self := claims.UserID == userID
		if !claims.HasRole(auth.RoleSuperadmin) && !self {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		// Cambiar de rol es exclusivo de superadmin.
		if req.Role != nil && !claims.HasRole(auth.RoleSuperadmin) {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		u, err := svc.Update(r.Context(), userID, UpdateInput(req))
		if err != nil {
			writeUserError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func deactivateUserHandler(svc *Service) http.HandlerFunc {
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

		u, err := svc.Deactivate(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeUserError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func changePasswordHandler(svc *Service) http.HandlerFunc {
	// Solo el propio usuario cambia su contraseña.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if claims.UserID != chi.URLParam(r, "userID") {
			httpx.Error(w, http.StatusForbidden, "forbidden")
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		if err := svc.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
			writeUserError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrWeakPassword):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailTaken):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
