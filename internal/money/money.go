// Package money provides fixed-point decimal amounts with exactly two
// fractional digits. Every operation rounds its result immediately;
// unrounded intermediates never escape this package.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an input cannot be parsed as a finite
// decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

const places = 2

// Money is a decimal amount scaled to two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Parse converts a decimal string such as "10.00" or "9.995" into Money,
// rounding half-up to two places.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{round(d)}, nil
}

// MustParse is Parse for inputs known to be valid; it panics otherwise.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// round quantizes to two places. decimal.Round rounds half away from zero,
// which is round-half-up for the non-negative amounts this system stores.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(places)
}

func (m Money) Add(o Money) Money {
	return Money{round(m.d.Add(o.d))}
}

// MulInt multiplies by an integer quantity.
func (m Money) MulInt(qty int64) Money {
	return Money{round(m.d.Mul(decimal.NewFromInt(qty)))}
}

// Percent returns rate percent of m, e.g. m.Percent(MustParse("5")) is 5% of m.
func (m Money) Percent(rate Money) Money {
	return Money{round(m.d.Mul(rate.d).Div(decimal.NewFromInt(100)))}
}

func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsZero() bool     { return m.d.IsZero() }

// Cmp compares exact scaled values: -1 if m < o, 0 if equal, 1 if m > o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// String renders with exactly two fractional digits and no currency symbol.
func (m Money) String() string { return m.d.StringFixed(places) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value stores the canonical two-digit rendering.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Money{}
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case int64:
		*m = Money{decimal.NewFromInt(v)}
		return nil
	case float64:
		*m = Money{round(decimal.NewFromFloat(v))}
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into Money", ErrInvalidAmount, src)
	}
}
