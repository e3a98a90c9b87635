// Package directory owns customer records. The invoice engine references
// customers by id only and never validates them here.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/niteshkumardubey/bill-craft/domain"
)

type Directory struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Directory {
	return &Directory{db: db}
}

type AddCustomerParams struct {
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (d *Directory) Add(ctx context.Context, p AddCustomerParams) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, phone, address) VALUES (?, ?, ?, ?)`,
		p.Name, p.Email, p.Phone, p.Address)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateCustomerParams enumerates the optional fields an update may set.
type UpdateCustomerParams struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

func (d *Directory) Update(ctx context.Context, id int64, p UpdateCustomerParams) error {
	var (
		sets []string
		args []any
	)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *p.Email)
	}
	if p.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *p.Phone)
	}
	if p.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, *p.Address)
	}
	if len(sets) == 0 {
		return domain.ErrNoFields
	}
	args = append(args, id)
	res, err := d.db.ExecContext(ctx, "UPDATE customers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (d *Directory) Get(ctx context.Context, id int64) (domain.Customer, error) {
	var c domain.Customer
	err := d.db.GetContext(ctx, &c,
		`SELECT id, name, email, phone, address FROM customers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

func (d *Directory) List(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	err := d.db.SelectContext(ctx, &customers,
		`SELECT id, name, email, phone, address FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return customers, nil
}
