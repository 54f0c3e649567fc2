package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid inventory input")
	ErrNotFound          = errors.New("inventory item not found")
	ErrNameTaken         = errors.New("inventory item name already exists")
	ErrInactive          = errors.New("inventory item is inactive")
	ErrInsufficientStock = errors.New("not enough stock for the movement")
	ErrStockConflict     = errors.New("stock changed while applying the movement")
)

// Reintentos ante movimientos concurrentes sobre el mismo producto.
const movementAttempts = 3

// Notifier recibe avisos de stock bajo. Puede ser nil.
type Notifier interface {
	LowStock(ctx context.Context, item Item)
}

// Service implementa la gestión del inventario.
type Service struct {
	repo   Repository
	notify Notifier
	now    func() time.Time
}

func NewService(repo Repository, notify Notifier) *Service {
	return &Service{repo: repo, notify: notify, now: time.Now}
}

// CreateInput son los datos de un producto nuevo.
type CreateInput struct {
	Name          string
	Type          string
	Description   string
	Unit          string
	Stock         int
	MinStock      int
	MaxStock      int
	PurchasePrice float64
	SalePrice     float64
	Batch         string
	ExpiresAt     *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput, createdBy string) (Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !ValidItemType(in.Type) {
		return Item{}, fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, in.Type)
	}
	if in.Stock < 0 || in.MinStock < 0 || in.MaxStock < 0 {
		return Item{}, fmt.Errorf("%w: stock levels cannot be negative", ErrInvalidInput)
	}
	if in.MaxStock > 0 && in.MaxStock < in.MinStock {
		return Item{}, fmt.Errorf("%w: max_stock cannot be below min_stock", ErrInvalidInput)
	}
	if in.PurchasePrice < 0 || in.SalePrice < 0 {
		return Item{}, fmt.Errorf("%w: prices cannot be negative", ErrInvalidInput)
	}

	if _, ok, err := s.repo.GetByName(ctx, name); err != nil {
		return Item{}, err
	} else if ok {
		return Item{}, ErrNameTaken
	}

	now := s.now()
	item := Item{
		ID:            uuid.NewString(),
		Name:          name,
		Type:          ItemType(in.Type),
		Description:   strings.TrimSpace(in.Description),
		Unit:          strings.TrimSpace(in.Unit),
		Stock:         in.Stock,
		MinStock:      in.MinStock,
		MaxStock:      in.MaxStock,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Batch:         strings.TrimSpace(in.Batch),
		ExpiresAt:     in.ExpiresAt,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     createdBy,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Item, error) {
	item, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if !ok {
		return Item{}, ErrNotFound
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Item, error) {
	return s.repo.List(ctx, f)
}

// UpdateInput actualiza campos descriptivos. El stock solo cambia por
// movimientos.
type UpdateInput struct {
	Description   *string
	Unit          *string
	MinStock      *int
	MaxStock      *int
	PurchasePrice *float64
	SalePrice     *float64
	Batch         *string
	ExpiresAt     *time.Time
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}

	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Unit != nil {
		item.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return Item{}, fmt.Errorf("%w: min_stock cannot be negative", ErrInvalidInput)
		}
		item.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		if *in.MaxStock < 0 {
			return Item{}, fmt.Errorf("%w: max_stock cannot be negative", ErrInvalidInput)
		}
		item.MaxStock = *in.MaxStock
	}
	if item.MaxStock > 0 && item.MaxStock < item.MinStock {
		return Item{}, fmt.Errorf("%w: max_stock cannot be below min_stock", ErrInvalidInput)
	}
	if in.PurchasePrice != nil {
		if *in.PurchasePrice < 0 {
			return Item{}, fmt.Errorf("%w: purchase_price cannot be negative", ErrInvalidInput)
		}
		item.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		if *in.SalePrice < 0 {
			return Item{}, fmt.Errorf("%w: sale_price cannot be negative", ErrInvalidInput)
		}
		item.SalePrice = *in.SalePrice
	}
	if in.Batch != nil {
		item.Batch = strings.TrimSpace(*in.Batch)
	}
	if in.ExpiresAt != nil {
		item.ExpiresAt = in.ExpiresAt
	}

	item.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if !item.Active {
		return item, nil
	}
	item.Active = false
	item.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// MovementInput son los datos de un movimiento de stock.
type MovementInput struct {
	Type     string
	Quantity int
	Reason   string
}

// RegisterMovement aplica el movimiento sobre el stock del producto.
// Entradas suman, salidas restan sin dejar el stock negativo y los
// ajustes fijan el stock al valor dado. Stock y movimiento se
// persisten juntos; ante un movimiento concurrente se relee y
// reintenta. Si el resultado queda en o bajo el mínimo se dispara el
// aviso de stock bajo.
func (s *Service) RegisterMovement(ctx context.Context, itemID string, in MovementInput, createdBy string) (Movement, error) {
	if !ValidMovementType(in.Type) {
		return Movement{}, fmt.Errorf("%w: unknown movement type %q", ErrInvalidInput, in.Type)
	}
	if MovementType(in.Type) == MovementAdjustment {
		if in.Quantity < 0 {
			return Movement{}, fmt.Errorf("%w: adjusted stock cannot be negative", ErrInvalidInput)
		}
	} else if in.Quantity <= 0 {
		return Movement{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	var err error
	for attempt := 0; attempt < movementAttempts; attempt++ {
		var item Item
		item, err = s.GetByID(ctx, itemID)
		if err != nil {
			return Movement{}, err
		}
		if !item.Active {
			return Movement{}, ErrInactive
		}

		expected := item.Stock
		switch MovementType(in.Type) {
		case MovementIn:
			item.Stock += in.Quantity
		case MovementOut:
			if in.Quantity > item.Stock {
				return Movement{}, ErrInsufficientStock
			}
			item.Stock -= in.Quantity
		case MovementAdjustment:
			item.Stock = in.Quantity
		}

		now := s.now()
		m := Movement{
			ID:             uuid.NewString(),
			ItemID:         item.ID,
			Type:           MovementType(in.Type),
			Quantity:       in.Quantity,
			Reason:         strings.TrimSpace(in.Reason),
			ResultingStock: item.Stock,
			CreatedAt:      now,
			CreatedBy:      createdBy,
		}
		item.UpdatedAt = now

		err = s.repo.ApplyMovement(ctx, item, expected, m)
		if errors.Is(err, ErrStockConflict) {
			continue
		}
		if err != nil {
			return Movement{}, err
		}

		if item.LowStock() && s.notify != nil {
			s.notify.LowStock(ctx, item)
		}
		return m, nil
	}
	return Movement{}, err
}

func (s *Service) ListMovements(ctx context.Context, itemID string) ([]Movement, error) {
	if _, err := s.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, itemID)
}

// LowStockReport devuelve los productos activos en o bajo su mínimo.
func (s *Service) LowStockReport(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx, ListFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	out := []Item{}
	for _, i := range items {
		if i.LowStock() {
			out = append(out, i)
		}
	}
	return out, nil
}

// ExpiringReport devuelve los productos que vencen dentro de los
// próximos días.
func (s *Service) ExpiringReport(ctx context.Context, days int) ([]Item, error) {
	if days <= 0 {
		days = 30
	}
	until := s.now().AddDate(0, 0, days)
	return s.repo.ListExpiring(ctx, until)
}
