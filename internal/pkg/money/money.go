package money

import (
	"errors"
	"fmt"
	"math"
)

// DefaultCurrency is the fixed operating currency of the checkout flow.
// No conversion between currencies happens anywhere in the system.
const DefaultCurrency = "PLN"

var ErrCurrencyMismatch = errors.New("cannot operate on different currencies")

// Money is an amount in minor currency units (cents). All arithmetic is
// integer-only; decimal input is converted once at the boundary.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func FromCents(cents int64, currency string) Money {
	return Money{Amount: cents, Currency: currency}
}

// FromFloat converts a decimal amount to minor units, rounding half-up.
func FromFloat(amount float64, currency string) Money {
	return Money{Amount: int64(math.Floor(amount*100 + 0.5)), Currency: currency}
}

func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

func (m Money) Multiply(factor int64) Money {
	return Money{Amount: m.Amount * factor, Currency: m.Currency}
}

func (m Money) IsZero() bool     { return m.Amount == 0 }
func (m Money) IsPositive() bool { return m.Amount > 0 }
func (m Money) IsNegative() bool { return m.Amount < 0 }

func (m Money) Equals(other Money) bool {
	return m.Amount == other.Amount && m.Currency == other.Currency
}

func (m Money) ToFloat() float64 {
	return float64(m.Amount) / 100
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}
