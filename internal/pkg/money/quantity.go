package money

import (
	"errors"
	"fmt"
)

var ErrInvalidQuantity = errors.New("quantity cannot be negative")

// Quantity is a non-negative item count.
type Quantity struct {
	value int
}

func NewQuantity(value int) (Quantity, error) {
	if value < 0 {
		return Quantity{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, value)
	}
	return Quantity{value: value}, nil
}

// MustQuantity panics on a negative value. Use only with literals.
func MustQuantity(value int) Quantity {
	q, err := NewQuantity(value)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Value() int   { return q.value }
func (q Quantity) IsZero() bool { return q.value == 0 }

func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value + other.value}
}

func (q Quantity) Equals(other Quantity) bool {
	return q.value == other.value
}
