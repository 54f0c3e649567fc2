package inventory

import (
	"context"
	"time"
)

// ListFilter acota el listado de productos.
type ListFilter struct {
	Type       ItemType
	OnlyActive bool
}

// Repository define la persistencia del inventario.
type Repository interface {
	Create(ctx context.Context, i Item) error
	Update(ctx context.Context, i Item) error
	GetByID(ctx context.Context, id string) (Item, bool, error)
	GetByName(ctx context.Context, name string) (Item, bool, error)
	List(ctx context.Context, f ListFilter) ([]Item, error)

	// ApplyMovement persiste el nuevo stock del producto y el
	// movimiento como una sola operación. expectedStock es el stock
	// leído antes de calcular; si otro movimiento lo cambió entre
	// medias devuelve ErrStockConflict y no escribe nada.
	ApplyMovement(ctx context.Context, i Item, expectedStock int, m Movement) error
	ListMovements(ctx context.Context, itemID string) ([]Movement, error)

	// ListExpiring devuelve productos activos con vencimiento hasta la
	// fecha dada.
	ListExpiring(ctx context.Context, until time.Time) ([]Item, error)
}
