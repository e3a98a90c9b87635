// Package catalog owns product records. Stock is derived from the movement
// ledger and only joined in for listings, never stored on the product row.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/niteshkumardubey/bill-craft/domain"
	"github.com/niteshkumardubey/bill-craft/internal/money"
)

type Catalog struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Catalog {
	return &Catalog{db: db}
}

type AddProductParams struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Cost         string `json:"cost,omitempty"`
	ReorderLevel int64  `json:"reorder_level"`
}

func (c *Catalog) Add(ctx context.Context, p AddProductParams) (int64, error) {
	if strings.TrimSpace(p.SKU) == "" || strings.TrimSpace(p.Name) == "" {
		return 0, fmt.Errorf("%w: sku and name are required", domain.ErrInvalidInput)
	}
	if p.ReorderLevel < 0 {
		return 0, fmt.Errorf("%w: reorder_level must be non-negative", domain.ErrInvalidInput)
	}
	price, err := money.Parse(p.Price)
	if err != nil {
		return 0, fmt.Errorf("price: %w", err)
	}
	var cost *money.Money
	if strings.TrimSpace(p.Cost) != "" {
		parsed, err := money.Parse(p.Cost)
		if err != nil {
			return 0, fmt.Errorf("cost: %w", err)
		}
		cost = &parsed
	}
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO products (sku, name, price, cost, reorder_level) VALUES (?, ?, ?, ?, ?)`,
		p.SKU, p.Name, price, cost, p.ReorderLevel)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProductParams enumerates the optional fields an update may set.
// Only non-nil fields are applied.
type UpdateProductParams struct {
	SKU          *string `json:"sku,omitempty"`
	Name         *string `json:"name,omitempty"`
	Price        *string `json:"price,omitempty"`
	Cost         *string `json:"cost,omitempty"`
	ReorderLevel *int64  `json:"reorder_level,omitempty"`
}

func (c *Catalog) Update(ctx context.Context, id int64, p UpdateProductParams) error {
	var (
		sets []string
		args []any
	)
	if p.SKU != nil {
		sets = append(sets, "sku = ?")
		args = append(args, *p.SKU)
	}
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Price != nil {
		price, err := money.Parse(*p.Price)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		sets = append(sets, "price = ?")
		args = append(args, price)
	}
	if p.Cost != nil {
		cost, err := money.Parse(*p.Cost)
		if err != nil {
			return fmt.Errorf("cost: %w", err)
		}
		sets = append(sets, "cost = ?")
		args = append(args, cost)
	}
	if p.ReorderLevel != nil {
		if *p.ReorderLevel < 0 {
			return fmt.Errorf("%w: reorder_level must be non-negative", domain.ErrInvalidInput)
		}
		sets = append(sets, "reorder_level = ?")
		args = append(args, *p.ReorderLevel)
	}
	if len(sets) == 0 {
		return domain.ErrNoFields
	}
	args = append(args, id)
	res, err := c.db.ExecContext(ctx, "UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (c *Catalog) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := c.db.GetContext(ctx, &p,
		`SELECT id, sku, name, price, cost, reorder_level FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Find matches products by SKU or name substring.
func (c *Catalog) Find(ctx context.Context, term string) ([]domain.Product, error) {
	like := "%" + term + "%"
	products := []domain.Product{}
	err := c.db.SelectContext(ctx, &products,
		`SELECT id, sku, name, price, cost, reorder_level FROM products
		 WHERE sku LIKE ? OR name LIKE ? ORDER BY name`, like, like)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ProductStock is a product row with its derived stock for listings.
type ProductStock struct {
	domain.Product
	Stock int64 `db:"stock" json:"stock"`
}

func (c *Catalog) List(ctx context.Context) ([]ProductStock, error) {
	products := []ProductStock{}
	err := c.db.SelectContext(ctx, &products,
		`SELECT p.id, p.sku, p.name, p.price, p.cost, p.reorder_level,
		        COALESCE((SELECT SUM(m.change) FROM inventory_movements m WHERE m.product_id = p.id), 0) AS stock
		 FROM products p ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	return products, nil
}
