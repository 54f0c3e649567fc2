package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vet-clinic-api/internal/domain/inventory"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const itemColumns = `id, name, type, description, unit, stock, min_stock, max_stock,
	purchase_price, sale_price, batch, expires_at, active, created_at, updated_at, created_by`

func (r *InventoryRepository) Create(ctx context.Context, i inventory.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		i.ID, i.Name, string(i.Type), i.Description, i.Unit, i.Stock, i.MinStock, i.MaxStock,
		i.PurchasePrice, i.SalePrice, i.Batch, nullTime(i.ExpiresAt), i.Active,
		i.CreatedAt, i.UpdatedAt, nullString(i.CreatedBy),
	)
	if isUniqueViolation(err) {
		return inventory.ErrNameTaken
	}
	return err
}

func (r *InventoryRepository) Update(ctx context.Context, i inventory.Item) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET description = $2, unit = $3, stock = $4, min_stock = $5, max_stock = $6,
		    purchase_price = $7, sale_price = $8, batch = $9,
		    expires_at = $10, active = $11, updated_at = $12
		WHERE id = $1`,
		i.ID, i.Description, i.Unit, i.Stock, i.MinStock, i.MaxStock,
		i.PurchasePrice, i.SalePrice, i.Batch,
		nullTime(i.ExpiresAt), i.Active, i.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res, inventory.ErrNotFound)
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (inventory.Item, bool, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *InventoryRepository) GetByName(ctx context.Context, name string) (inventory.Item, bool, error) {
	return r.getBy(ctx, `WHERE lower(name) = lower($1)`, name)
}

func (r *InventoryRepository) getBy(ctx context.Context, where string, arg any) (inventory.Item, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items `+where, arg)
	i, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.Item{}, false, nil
	}
	if err != nil {
		return inventory.Item{}, false, err
	}
	return i, true, nil
}

func (r *InventoryRepository) List(ctx context.Context, f inventory.ListFilter) ([]inventory.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE 1=1`
	var args []any
	if f.OnlyActive {
		query += ` AND active`
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		query += ` AND type = $1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *InventoryRepository) ListExpiring(ctx context.Context, until time.Time) ([]inventory.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE active AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at`, until)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

const movementColumns = `id, item_id, type, quantity, reason, resulting_stock, created_at, created_by`

// ApplyMovement actualiza el stock y registra el movimiento en una
// transacción. El UPDATE exige el stock con el que se calculó el
// movimiento; si otro proceso lo movió entre la lectura y la
// escritura no afecta filas y se devuelve ErrStockConflict.
func (r *InventoryRepository) ApplyMovement(ctx context.Context, i inventory.Item, expectedStock int, m inventory.Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET stock = $2, updated_at = $3
		WHERE id = $1 AND stock = $4`,
		i.ID, i.Stock, i.UpdatedAt, expectedStock,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrStockConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.ItemID, string(m.Type), m.Quantity, m.Reason,
		m.ResultingStock, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *InventoryRepository) ListMovements(ctx context.Context, itemID string) ([]inventory.Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+movementColumns+`
		FROM inventory_movements
		WHERE item_id = $1
		ORDER BY created_at`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Movement
	for rows.Next() {
		var m inventory.Movement
		var mtype string
		err := rows.Scan(&m.ID, &m.ItemID, &mtype, &m.Quantity, &m.Reason,
			&m.ResultingStock, &m.CreatedAt, &m.CreatedBy)
		if err != nil {
			return nil, err
		}
		m.Type = inventory.MovementType(mtype)
		out = append(out, m)
	}
	return out, rows.Err()
}

func collectItems(rows *sql.Rows) ([]inventory.Item, error) {
	defer rows.Close()
	var out []inventory.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func scanItem(row rowScanner) (inventory.Item, error) {
	var i inventory.Item
	var itype string
	var expires sql.NullTime
	var createdBy sql.NullString
	err := row.Scan(&i.ID, &i.Name, &itype, &i.Description, &i.Unit,
		&i.Stock, &i.MinStock, &i.MaxStock,
		&i.PurchasePrice, &i.SalePrice, &i.Batch, &expires, &i.Active,
		&i.CreatedAt, &i.UpdatedAt, &createdBy)
	if err != nil {
		return inventory.Item{}, err
	}
	i.Type = inventory.ItemType(itype)
	i.ExpiresAt = timePtr(expires)
	i.CreatedBy = createdBy.String
	return i, nil
}
