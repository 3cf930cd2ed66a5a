package kernel

import (
	"fmt"
	"math"

	"fooddispatch/internal/pkg/errs"
)

// Money is a non-negative amount in minor currency units (cents, kopecks).
// Prices, fees and totals are all Money; the service deals in one currency.
type Money struct {
	amount int64
}

// NewMoney rejects negative amounts.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount, 0, int64(math.MaxInt64))
	}
	return Money{amount: amount}, nil
}

// MustMoney panics on a negative amount. Intended for constants and tests.
func MustMoney(amount int64) Money {
	m, err := NewMoney(amount)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() int64 {
	return m.amount
}

// Add returns m + other, failing on overflow.
func (m Money) Add(other Money) (Money, error) {
	if other.amount > math.MaxInt64-m.amount {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d + %d overflows", m.amount, other.amount))
	}
	return Money{amount: m.amount + other.amount}, nil
}

// Multiply returns m * n for a positive quantity n, failing on overflow.
func (m Money) Multiply(n int) (Money, error) {
	if n < 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("multiplier", n, 0, math.MaxInt32)
	}
	if n != 0 && m.amount > math.MaxInt64/int64(n) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d * %d overflows", m.amount, n))
	}
	return Money{amount: m.amount * int64(n)}, nil
}

func (m Money) IsEqual(other Money) bool {
	return m.amount == other.amount
}

func (m Money) String() string {
	return fmt.Sprintf("%d", m.amount)
}
