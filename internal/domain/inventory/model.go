package inventory

import "time"

// ItemType clasifica los productos del inventario.
type ItemType string

const (
	TypeVaccine        ItemType = "vaccine"
	TypeAntibiotic     ItemType = "antibiotic"
	TypeSupplement     ItemType = "supplement"
	TypeClinicalSupply ItemType = "clinical_supply"
)

func ValidItemType(s string) bool {
	switch ItemType(s) {
	case TypeVaccine, TypeAntibiotic, TypeSupplement, TypeClinicalSupply:
		return true
	}
	return false
}

// MovementType es la clase de movimiento de stock.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

func ValidMovementType(s string) bool {
	switch MovementType(s) {
	case MovementIn, MovementOut, MovementAdjustment:
		return true
	}
	return false
}

// Item es un producto del inventario de la clínica.
type Item struct {
	ID          string
	Name        string
	Type        ItemType
	Description string
	Unit        string // dosis, ml, unidad...

	Stock    int
	MinStock int
	MaxStock int // 0 = sin tope

	PurchasePrice float64
	SalePrice     float64

	Batch     string
	ExpiresAt *time.Time
	Active    bool

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
}

// LowStock reporta si el producto está en o bajo su mínimo.
func (i Item) LowStock() bool {
	return i.Stock <= i.MinStock
}

// StockPercent es el nivel de stock relativo al máximo, 0-100.
// Sin máximo definido devuelve 100.
func (i Item) StockPercent() float64 {
	if i.MaxStock == 0 {
		return 100
	}
	return float64(i.Stock) / float64(i.MaxStock) * 100
}

// Movement es un movimiento de stock registrado. Los movimientos no se
// editan ni se borran.
type Movement struct {
	ID     string
	ItemID string

	Type     MovementType
	Quantity int
	Reason   string

	// Stock resultante tras aplicar el movimiento.
	ResultingStock int

	CreatedAt time.Time
	CreatedBy string
}
