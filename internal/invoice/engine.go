// Package invoice creates invoices and links them to stock-decrementing
// movements as one atomic unit.
package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/niteshkumardubey/bill-craft/domain"
	"github.com/niteshkumardubey/bill-craft/internal/ledger"
	"github.com/niteshkumardubey/bill-craft/internal/money"
)

// maxAttempts bounds the retries when invoice number allocation races
// another writer into the UNIQUE constraint.
const maxAttempts = 3

type Engine struct {
	db  *sqlx.DB
	log *logrus.Logger
	now func() time.Time
}

func NewEngine(db *sqlx.DB, log *logrus.Logger) *Engine {
	return &Engine{db: db, log: log, now: time.Now}
}

// ItemInput is one requested line: either a free-text line (no product_id) or
// a product line whose stock will be validated and decremented.
type ItemInput struct {
	ProductID   *int64 `json:"product_id,omitempty"`
	Description string `json:"description"`
	Qty         int64  `json:"qty"`
	UnitPrice   string `json:"unit_price"`
}

type CreateParams struct {
	Items      []ItemInput `json:"items"`
	CustomerID *int64      `json:"customer_id,omitempty"`
	TaxRate    string      `json:"tax_rate,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
}

type line struct {
	productID   *int64
	description string
	qty         int64
	unitPrice   money.Money
	lineTotal   money.Money
}

// Create validates the requested items, computes totals, and persists the
// invoice, its items, and one negative stock movement per product line as a
// single transaction. It returns the new invoice's id.
func (e *Engine) Create(ctx context.Context, p CreateParams) (int64, error) {
	// Normalize: each line total is rounded here, exactly once.
	lines := make([]line, 0, len(p.Items))
	var subtotal money.Money
	for i, it := range p.Items {
		if it.Qty <= 0 {
			return 0, fmt.Errorf("item %d: %w", i+1, domain.ErrInvalidQuantity)
		}
		unit, err := money.Parse(it.UnitPrice)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i+1, err)
		}
		total := unit.MulInt(it.Qty)
		subtotal = subtotal.Add(total)
		lines = append(lines, line{
			productID:   it.ProductID,
			description: it.Description,
			qty:         it.Qty,
			unitPrice:   unit,
			lineTotal:   total,
		})
	}

	rateInput := strings.TrimSpace(p.TaxRate)
	if rateInput == "" {
		rateInput = "0"
	}
	rate, err := money.Parse(rateInput)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTaxRate, p.TaxRate)
	}
	if rate.IsNegative() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTaxRate, p.TaxRate)
	}
	tax := subtotal.Percent(rate)
	total := subtotal.Add(tax)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		id, err := e.createOnce(ctx, lines, p.CustomerID, p.Notes, subtotal, tax, total)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrDuplicateInvoiceNumber) {
			return 0, err
		}
		lastErr = err
		e.log.WithFields(logrus.Fields{"attempt": attempt}).Warn("invoice number collision, reallocating")
	}
	return 0, lastErr
}

func (e *Engine) createOnce(ctx context.Context, lines []line, customerID *int64, notes *string, subtotal, tax, total money.Money) (int64, error) {
	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Validate stock for every product line before any write, so a failure
	// on a later item never leaves earlier movements behind.
	for _, ln := range lines {
		if ln.productID == nil {
			continue
		}
		have, err := ledger.Stock(ctx, tx, *ln.productID)
		if err != nil {
			return 0, err
		}
		if ln.qty > have {
			return 0, &domain.InsufficientStockError{ProductID: *ln.productID, Have: have, Need: ln.qty}
		}
	}

	now := e.now().UTC()
	invoiceNo, err := e.allocateNumber(ctx, tx, now)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO invoices (invoice_no, customer_id, date, subtotal, tax, total, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invoiceNo, customerID, now.Format(time.RFC3339), subtotal, tax, total, notes)
	if err != nil {
		if isUniqueViolation(err, "invoices.invoice_no") {
			return 0, fmt.Errorf("invoice number %s: %w", invoiceNo, domain.ErrDuplicateInvoiceNumber)
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, ln := range lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO invoice_items (invoice_id, product_id, description, qty, unit_price, line_total) VALUES (?, ?, ?, ?, ?, ?)`,
			id, ln.productID, ln.description, ln.qty, ln.unitPrice, ln.lineTotal); err != nil {
			return 0, err
		}
		if ln.productID != nil {
			if _, err := ledger.Record(ctx, tx, *ln.productID, -ln.qty, "sale invoice "+invoiceNo); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// allocateNumber produces INV-<YYYYMMDD>-<n>, n being 1 plus the count of
// invoices already dated on the same UTC calendar day. The UNIQUE constraint
// on invoice_no is the backstop when two writers count the same day at once.
func (e *Engine) allocateNumber(ctx context.Context, tx *sqlx.Tx, now time.Time) (string, error) {
	var count int64
	err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM invoices WHERE DATE(date) = ?`, now.Format("2006-01-02"))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%d", now.Format("20060102"), count+1), nil
}

func isUniqueViolation(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+constraint)
}

// Get returns an invoice and its items in creation order.
func (e *Engine) Get(ctx context.Context, id int64) (domain.Invoice, []domain.InvoiceItem, error) {
	var inv domain.Invoice
	err := e.db.GetContext(ctx, &inv,
		`SELECT id, invoice_no, customer_id, date, subtotal, tax, total, notes FROM invoices WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, nil, fmt.Errorf("invoice %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Invoice{}, nil, err
	}
	items := []domain.InvoiceItem{}
	err = e.db.SelectContext(ctx, &items,
		`SELECT id, invoice_id, product_id, description, qty, unit_price, line_total
		 FROM invoice_items WHERE invoice_id = ? ORDER BY id`, id)
	if err != nil {
		return domain.Invoice{}, nil, err
	}
	return inv, items, nil
}

// dateRange validates an optional inclusive start/end pair. Both bounds must
// be supplied together as YYYY-MM-DD.
func dateRange(start, end string) (clause string, args []any, err error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return "", nil, nil
	}
	if start == "" || end == "" {
		return "", nil, domain.ErrInvalidDateRange
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return "", nil, fmt.Errorf("%w: %q", domain.ErrInvalidDateRange, d)
		}
	}
	return " WHERE DATE(date) BETWEEN ? AND ?", []any{start, end}, nil
}

// List returns invoices, optionally limited to an inclusive date range.
func (e *Engine) List(ctx context.Context, start, end string) ([]domain.Invoice, error) {
	clause, args, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}
	invoices := []domain.Invoice{}
	query := `SELECT id, invoice_no, customer_id, date, subtotal, tax, total, notes FROM invoices` + clause + ` ORDER BY id`
	if err := e.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, err
	}
	return invoices, nil
}

type SalesSummary struct {
	Count      int64       `json:"count"`
	TotalSales money.Money `json:"total_sales"`
}

// Summary counts invoices in the range and sums their totals. Totals are
// summed in Money, not by the database, so no float aggregation can drift.
func (e *Engine) Summary(ctx context.Context, start, end string) (SalesSummary, error) {
	clause, args, err := dateRange(start, end)
	if err != nil {
		return SalesSummary{}, err
	}
	totals := []money.Money{}
	query := `SELECT total FROM invoices` + clause
	if err := e.db.SelectContext(ctx, &totals, query, args...); err != nil {
		return SalesSummary{}, err
	}
	summary := SalesSummary{Count: int64(len(totals))}
	for _, t := range totals {
		summary.TotalSales = summary.TotalSales.Add(t)
	}
	return summary, nil
}
