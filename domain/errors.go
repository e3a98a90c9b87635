package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidQuantity        = errors.New("quantity must be a positive integer")
	ErrInvalidTaxRate         = errors.New("tax rate must be a non-negative number")
	ErrInvalidMovement        = errors.New("stock change must be a non-zero integer")
	ErrNotFound               = errors.New("not found")
	ErrDuplicateInvoiceNumber = errors.New("duplicate invoice number")
	ErrInvalidDateRange       = errors.New("start_date and end_date must be supplied together in YYYY-MM-DD format")
	ErrNoFields               = errors.New("no fields to update")
)

// InsufficientStockError rejects an invoice line that asks for more units
// than the ledger currently holds.
type InsufficientStockError struct {
	ProductID int64
	Have      int64
	Need      int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: have %d, need %d", e.ProductID, e.Have, e.Need)
}
