package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			price TEXT NOT NULL,
			cost TEXT,
			reorder_level INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT,
			address TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS inventory_movements (
			id INTEGER PRIMARY KEY,
			product_id INTEGER NOT NULL REFERENCES products(id),
			change INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_movements_product ON inventory_movements(product_id);`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id INTEGER PRIMARY KEY,
			invoice_no TEXT NOT NULL UNIQUE,
			customer_id INTEGER REFERENCES customers(id),
			date TEXT NOT NULL,
			subtotal TEXT NOT NULL,
			tax TEXT NOT NULL DEFAULT '0.00',
			total TEXT NOT NULL,
			notes TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices(date);`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
			id INTEGER PRIMARY KEY,
			invoice_id INTEGER NOT NULL REFERENCES invoices(id),
			product_id INTEGER REFERENCES products(id),
			description TEXT NOT NULL DEFAULT '',
			qty INTEGER NOT NULL,
			unit_price TEXT NOT NULL,
			line_total TEXT NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
