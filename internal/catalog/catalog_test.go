package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/niteshkumardubey/bill-craft/domain"
	"github.com/niteshkumardubey/bill-craft/internal/database"
	"github.com/niteshkumardubey/bill-craft/internal/ledger"
	"github.com/niteshkumardubey/bill-craft/internal/migrations"
	"github.com/niteshkumardubey/bill-craft/internal/money"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAddAndGet(t *testing.T) {
	db := newTestDB(t)
	c := New(db)
	ctx := context.Background()

	id, err := c.Add(ctx, AddProductParams{SKU: "SKU-001", Name: "Widget", Price: "9.995", Cost: "6.00", ReorderLevel: 5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	p, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.SKU != "SKU-001" || p.Name != "Widget" {
		t.Fatalf("product = %+v", p)
	}
	// price rounded half-up on the way in
	if p.Price.String() != "10.00" {
		t.Fatalf("price = %s, want 10.00", p.Price)
	}
	if p.Cost == nil || p.Cost.String() != "6.00" {
		t.Fatalf("cost = %v", p.Cost)
	}
	if p.ReorderLevel != 5 {
		t.Fatalf("reorder_level = %d", p.ReorderLevel)
	}
}

func TestAddValidation(t *testing.T) {
	db := newTestDB(t)
	c := New(db)
	ctx := context.Background()

	if _, err := c.Add(ctx, AddProductParams{SKU: "", Name: "X", Price: "1.00"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing sku err = %v", err)
	}
	if _, err := c.Add(ctx, AddProductParams{SKU: "S", Name: "X", Price: "not-money"}); !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("bad price err = %v", err)
	}
	if _, err := c.Add(ctx, AddProductParams{SKU: "S", Name: "X", Price: "1.00", ReorderLevel: -1}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative reorder err = %v", err)
	}
}

func TestDuplicateSKU(t *testing.T) {
	db := newTestDB(t)
	c := New(db)
	ctx := context.Background()

	if _, err := c.Add(ctx, AddProductParams{SKU: "DUP", Name: "A", Price: "1.00"}); err != nil {
		t.Fatal(err)
	}
	_, err := c.Add(ctx, AddProductParams{SKU: "DUP", Name: "B", Price: "2.00"})
	if err == nil || !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		t.Fatalf("duplicate sku err = %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	db := newTestDB(t)
	c := New(db)
	ctx := context.Background()

	id, err := c.Add(ctx, AddProductParams{SKU: "SKU-1", Name: "Widget", Price: "10.00", ReorderLevel: 2})
	if err != nil {
		t.Fatal(err)
	}

	price := "12.50"
	if err := c.Update(ctx, id, UpdateProductParams{Price: &price}); err != nil {
		t.Fatalf("update: %v", err)
	}

	p, err := c.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Price.String() != "12.50" {
		t.Fatalf("price = %s", p.Price)
	}
	// untouched fields keep their values
	if p.Name != "Widget" || p.SKU != "SKU-1" || p.ReorderLevel != 2 {
		t.Fatalf("unexpected field change: %+v", p)
	}

	if err := c.Update(ctx, id, UpdateProductParams{}); !errors.Is(err, domain.ErrNoFields) {
		t.Fatalf("empty update err = %v", err)
	}
	name := "x"
	if err := c.Update(ctx, 9999, UpdateProductParams{Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing product update err = %v", err)
	}
}

func TestFind(t *testing.T) {
	db := newTestDB(t)
	c := New(db)
	ctx := context.Background()

	if _, err := c.Add(ctx, AddProductParams{SKU: "WID-1", Name: "Widget Small", Price: "1.00"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Add(ctx, AddProductParams{SKU: "GAD-1", Name: "Gadget", Price: "2.00"}); err != nil {
		t.Fatal(err)
	}

	found, err := c.Find(ctx, "Widg")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Name != "Widget Small" {
		t.Fatalf("find by name = %+v", found)
	}
	found, err = c.Find(ctx, "GAD")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].SKU != "GAD-1" {
		t.Fatalf("find by sku = %+v", found)
	}
}

func TestListWithDerivedStock(t *testing.T) {
	db := newTestDB(t)
	c := New(db)
	l := ledger.New(db)
	ctx := context.Background()

	id, err := c.Add(ctx, AddProductParams{SKU: "SKU-1", Name: "Widget", Price: "1.00"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Record(ctx, id, 7, "initial"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Record(ctx, id, -2, "damage"); err != nil {
		t.Fatal(err)
	}

	rows, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("list rows = %d", len(rows))
	}
	if rows[0].Stock != 5 {
		t.Fatalf("derived stock = %d, want 5", rows[0].Stock)
	}
}
