// Package ledger keeps the append-only log of stock movements. Current stock
// is always the sum of a product's movement deltas, never a stored counter.
package ledger

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/niteshkumardubey/bill-craft/domain"
)

type Ledger struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Record appends a movement and returns its id. The change must be non-zero;
// positive adds stock, negative removes it.
func (l *Ledger) Record(ctx context.Context, productID, change int64, reason string) (int64, error) {
	return Record(ctx, l.db, productID, change, reason)
}

// Stock returns the current stock for a product, 0 if it has no movements.
func (l *Ledger) Stock(ctx context.Context, productID int64) (int64, error) {
	return Stock(ctx, l.db, productID)
}

// LowStockItem is one row of the low stock report.
type LowStockItem struct {
	ProductID    int64  `db:"product_id" json:"product_id"`
	SKU          string `db:"sku" json:"sku"`
	Name         string `db:"name" json:"name"`
	Stock        int64  `db:"stock" json:"stock"`
	ReorderLevel int64  `db:"reorder_level" json:"reorder_level"`
}

// LowStock lists products whose current stock is at or below their reorder level.
func (l *Ledger) LowStock(ctx context.Context) ([]LowStockItem, error) {
	items := []LowStockItem{}
	err := l.db.SelectContext(ctx, &items, `
		SELECT p.id AS product_id, p.sku, p.name,
		       COALESCE(SUM(m.change), 0) AS stock, p.reorder_level
		FROM products p
		LEFT JOIN inventory_movements m ON m.product_id = p.id
		GROUP BY p.id
		HAVING COALESCE(SUM(m.change), 0) <= p.reorder_level`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Movements returns a product's full movement history, oldest first.
func (l *Ledger) Movements(ctx context.Context, productID int64) ([]domain.StockMovement, error) {
	moves := []domain.StockMovement{}
	err := l.db.SelectContext(ctx, &moves,
		`SELECT id, product_id, change, reason, created_at
		 FROM inventory_movements WHERE product_id = ? ORDER BY id`, productID)
	if err != nil {
		return nil, err
	}
	return moves, nil
}

// Record and Stock also run against a transaction, so the invoice engine can
// validate and decrement inside one atomic unit.

func Record(ctx context.Context, ext sqlx.ExtContext, productID, change int64, reason string) (int64, error) {
	if change == 0 {
		return 0, domain.ErrInvalidMovement
	}
	res, err := ext.ExecContext(ctx,
		`INSERT INTO inventory_movements (product_id, change, reason, created_at) VALUES (?, ?, ?, ?)`,
		productID, change, reason, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func Stock(ctx context.Context, ext sqlx.ExtContext, productID int64) (int64, error) {
	var stock int64
	err := sqlx.GetContext(ctx, ext, &stock,
		`SELECT COALESCE(SUM(change), 0) FROM inventory_movements WHERE product_id = ?`, productID)
	if err != nil {
		return 0, err
	}
	return stock, nil
}
