package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/httpx"
	"vet-clinic-api/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Inventario es de uso interno del personal.
	r.Route("/inventory", func(ir chi.Router) {
		ir.Post("/", createItemHandler(svc))
		ir.Get("/", listItemsHandler(svc))
		ir.Get("/low-stock", lowStockHandler(svc))
		ir.Get("/expiring", expiringHandler(svc))
		ir.Get("/{itemID}", getItemHandler(svc))
		ir.Patch("/{itemID}", updateItemHandler(svc))
		ir.Post("/{itemID}/deactivate", deactivateItemHandler(svc))
		ir.Post("/{itemID}/movements", registerMovementHandler(svc))
		ir.Get("/{itemID}/movements", listMovementsHandler(svc))
	})
}

type createItemRequest struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Unit          string  `json:"unit"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"min_stock"`
	MaxStock      int     `json:"max_stock"`
	PurchasePrice float64 `json:"purchase_price"`
	SalePrice     float64 `json:"sale_price"`
	Batch         string  `json:"batch"`
	ExpiresAt     string  `json:"expires_at"` // YYYY-MM-DD opcional
}

type itemResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          ItemType   `json:"type"`
	Description   string     `json:"description,omitempty"`
	Unit          string     `json:"unit,omitempty"`
	Stock         int        `json:"stock"`
	MinStock      int        `json:"min_stock"`
	MaxStock      int        `json:"max_stock"`
	PurchasePrice float64    `json:"purchase_price"`
	SalePrice     float64    `json:"sale_price"`
	Batch         string     `json:"batch,omitempty"`
	LowStock      bool       `json:"low_stock"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type movementResponse struct {
	ID             string       `json:"id"`
	ItemID         string       `json:"item_id"`
	Type           MovementType `json:"type"`
	Quantity       int          `json:"quantity"`
	Reason         string       `json:"reason,omitempty"`
	ResultingStock int          `json:"resulting_stock"`
	CreatedAt      time.Time    `json:"created_at"`
	CreatedBy      string       `json:"created_by"`
}

// requireStaff corta la petición si el usuario no es del personal.
func requireStaff(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	if !claims.IsStaff() {
		httpx.Error(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return claims.UserID, true
}

// requireWriter limita las escrituras de inventario a veterinarios y
// superadmin; los asistentes solo consultan.
func requireWriter(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	if claims.Role != auth.RoleVet && claims.Role != auth.RoleSuperadmin {
		httpx.Error(w, http.StatusForbidden, "forbidden")
		return "", false
	}
	return claims.UserID, true
}

func createItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireWriter(w, r)
		if !ok {
			return
		}

		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var expires *time.Time
		if strings.TrimSpace(req.ExpiresAt) != "" {
			t, err := time.Parse("2006-01-02", req.ExpiresAt)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "expires_at must be YYYY-MM-DD")
				return
			}
			expires = &t
		}

		item, err := svc.Create(r.Context(), CreateInput{
			Name:          req.Name,
			Type:          req.Type,
			Description:   req.Description,
			Unit:          req.Unit,
			Stock:         req.Stock,
			MinStock:      req.MinStock,
			MaxStock:      req.MaxStock,
			PurchasePrice: req.PurchasePrice,
			SalePrice:     req.SalePrice,
			Batch:         req.Batch,
			ExpiresAt:     expires,
		}, userID)
		if err != nil {
			writeInventoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toItemResponse(item))
	}
}

func listItemsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireStaff(w, r); !ok {
			return
		}

		f := ListFilter{OnlyActive: r.URL.Query().Get("active") == "true"}
		if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
			if !ValidItemType(t) {
				httpx.Error(w, http.StatusBadRequest, "unknown item type")
				return
			}
			f.Type = ItemType(t)
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeItemList(w, items)
	}
}

func lowStockHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		items, err := svc.LowStockReport(r.Context())
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeItemList(w, items)
	}
}

func expiringHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireStaff(w, r); !ok {
			return
		}

		days := 0
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				httpx.Error(w, http.StatusBadRequest, "days must be a positive number")
				return
			}
			days = n
		}

		items, err := svc.ExpiringReport(r.Context(), days)
		if err != nil {
			httpx.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeItemList(w, items)
	}
}

func getItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		item, err := svc.GetByID(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			writeInventoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toItemResponse(item))
	}
}

type updateItemRequest struct {
	Description   *string  `json:"description"`
	Unit          *string  `json:"unit"`
	MinStock      *int     `json:"min_stock"`
	MaxStock      *int     `json:"max_stock"`
	PurchasePrice *float64 `json:"purchase_price"`
	SalePrice     *float64 `json:"sale_price"`
	Batch         *string  `json:"batch"`
	ExpiresAt     *string  `json:"expires_at"`
}

func updateItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireWriter(w, r); !ok {
			return
		}

		var req updateItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := UpdateInput{
			Description:   req.Description,
			Unit:          req.Unit,
			MinStock:      req.MinStock,
			MaxStock:      req.MaxStock,
			PurchasePrice: req.PurchasePrice,
			SalePrice:     req.SalePrice,
			Batch:         req.Batch,
		}
		if req.ExpiresAt != nil {
			t, err := time.Parse("2006-01-02", *req.ExpiresAt)
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "expires_at must be YYYY-MM-DD")
				return
			}
			in.ExpiresAt = &t
		}

		item, err := svc.Update(r.Context(), chi.URLParam(r, "itemID"), in)
		if err != nil {
			writeInventoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toItemResponse(item))
	}
}

func deactivateItemHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireWriter(w, r); !ok {
			return
		}
		item, err := svc.Deactivate(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			writeInventoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toItemResponse(item))
	}
}

type movementRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

func registerMovementHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireWriter(w, r)
		if !ok {
			return
		}

		var req movementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		m, err := svc.RegisterMovement(r.Context(), chi.URLParam(r, "itemID"), MovementInput{
			Type:     req.Type,
			Quantity: req.Quantity,
			Reason:   req.Reason,
		}, userID)
		if err != nil {
			writeInventoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toMovementResponse(m))
	}
}

func listMovementsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		items, err := svc.ListMovements(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			writeInventoryError(w, err)
			return
		}
		out := make([]movementResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMovementResponse(m))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func writeItemList(w http.ResponseWriter, items []Item) {
	out := make([]itemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toItemResponse(i))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func writeInventoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNameTaken),
		errors.Is(err, ErrInactive),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrStockConflict):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "inventory item not found")
	default:
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func toItemResponse(i Item) itemResponse {
	return itemResponse{
		ID:            i.ID,
		Name:          i.Name,
		Type:          i.Type,
		Description:   i.Description,
		Unit:          i.Unit,
		Stock:         i.Stock,
		MinStock:      i.MinStock,
		MaxStock:      i.MaxStock,
		PurchasePrice: i.PurchasePrice,
		SalePrice:     i.SalePrice,
		Batch:         i.Batch,
		LowStock:      i.LowStock(),
		ExpiresAt:     i.ExpiresAt,
		Active:        i.Active,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toMovementResponse(m Movement) movementResponse {
	return movementResponse{
		ID:             m.ID,
		ItemID:         m.ItemID,
		Type:           m.Type,
		Quantity:       m.Quantity,
		Reason:         m.Reason,
		ResultingStock: m.ResultingStock,
		CreatedAt:      m.CreatedAt,
		CreatedBy:      m.CreatedBy,
	}
}
