package domain

import "github.com/niteshkumardubey/bill-craft/internal/money"

// Invoice and its items are immutable once created.
type Invoice struct {
	ID         int64       `db:"id" json:"id"`
	InvoiceNo  string      `db:"invoice_no" json:"invoice_no"`
	CustomerID *int64      `db:"customer_id" json:"customer_id,omitempty"`
	Date       string      `db:"date" json:"date"`
	Subtotal   money.Money `db:"subtotal" json:"subtotal"`
	Tax        money.Money `db:"tax" json:"tax"`
	Total      money.Money `db:"total" json:"total"`
	Notes      *string     `db:"notes" json:"notes,omitempty"`
}

type InvoiceItem struct {
	ID          int64       `db:"id" json:"id"`
	InvoiceID   int64       `db:"invoice_id" json:"invoice_id"`
	ProductID   *int64      `db:"product_id" json:"product_id,omitempty"`
	Description string      `db:"description" json:"description"`
	Qty         int64       `db:"qty" json:"qty"`
	UnitPrice   money.Money `db:"unit_price" json:"unit_price"`
	LineTotal   money.Money `db:"line_total" json:"line_total"`
}
