package domain

import "github.com/niteshkumardubey/bill-craft/internal/money"

type Product struct {
	ID           int64        `db:"id" json:"id"`
	SKU          string       `db:"sku" json:"sku"`
	Name         string       `db:"name" json:"name"`
	Price        money.Money  `db:"price" json:"price"`
	Cost         *money.Money `db:"cost" json:"cost,omitempty"`
	ReorderLevel int64        `db:"reorder_level" json:"reorder_level"`
}
