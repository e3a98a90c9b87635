// Package report renders read-only query results to external formats. It
// never mutates invoice or stock state.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/niteshkumardubey/bill-craft/domain"
	"github.com/niteshkumardubey/bill-craft/internal/invoice"
)

// WriteInvoiceCSV renders one invoice with its items, matching the classic
// printable layout: header block, item grid, totals block.
func WriteInvoiceCSV(w io.Writer, inv domain.Invoice, items []domain.InvoiceItem) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"Invoice No", inv.InvoiceNo},
		{"Date", inv.Date},
		{"Customer ID", formatCustomer(inv.CustomerID)},
		{},
		{"Description", "Qty", "Unit Price", "Line Total"},
	}
	for _, it := range items {
		records = append(records, []string{
			it.Description,
			strconv.FormatInt(it.Qty, 10),
			it.UnitPrice.String(),
			it.LineTotal.String(),
		})
	}
	records = append(records,
		[]string{},
		[]string{"Subtotal", inv.Subtotal.String()},
		[]string{"Tax", inv.Tax.String()},
		[]string{"Total", inv.Total.String()},
	)
	for _, rec := range records {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCustomer(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

const sheet = "Sheet1"

// WriteSalesXLSX renders a sales report workbook: one row per invoice and a
// summary block beneath.
func WriteSalesXLSX(w io.Writer, invoices []domain.Invoice, summary invoice.SalesSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := []string{"Invoice No", "Date", "Customer ID", "Subtotal", "Tax", "Total"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, inv := range invoices {
		row := i + 2
		values := []any{inv.InvoiceNo, inv.Date, formatCustomer(inv.CustomerID),
			inv.Subtotal.String(), inv.Tax.String(), inv.Total.String()}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	base := len(invoices) + 3
	f.SetCellValue(sheet, "A"+fmt.Sprint(base), "Invoice Count")
	f.SetCellValue(sheet, "B"+fmt.Sprint(base), summary.Count)
	f.SetCellValue(sheet, "A"+fmt.Sprint(base+1), "Total Sales")
	f.SetCellValue(sheet, "B"+fmt.Sprint(base+1), summary.TotalSales.String())

	return f.Write(w)
}
