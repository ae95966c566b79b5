package kernel

import (
	"fmt"

	"maintenance/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits of the smallest currency unit.
const MoneyScale = 2

// RoundMoney is the single rounding rule applied wherever an amount is computed:
// half away from zero to the smallest currency unit.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Money is a non-negative amount already rounded by RoundMoney.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney returns a zero amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney rounds the amount and rejects negative values.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), "0", "unbounded")
	}
	return Money{amount: RoundMoney(amount)}, nil
}

// MoneyFromString parses a decimal literal such as "499.995".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(d)
}

// MustMoney is NewMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns the rounded sum.
func (m Money) Add(other Money) Money {
	return Money{amount: RoundMoney(m.amount.Add(other.amount))}
}

// Sub returns an error instead of a negative amount.
func (m Money) Sub(other Money) (Money, error) {
	return NewMoney(m.amount.Sub(other.amount))
}

// Times multiplies a unit price by a quantity.
func (m Money) Times(quantity int) Money {
	return Money{amount: RoundMoney(m.amount.Mul(decimal.NewFromInt(int64(quantity))))}
}

func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// SplitInstallments divides total into n shares. Every share but the last is
// truncated to the smallest unit; the last absorbs the remainder so the shares
// always sum to the rounded total.
func SplitInstallments(total Money, n int) ([]Money, error) {
	if n <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("installments", n, 1, "unbounded")
	}

	share := total.amount.Div(decimal.NewFromInt(int64(n))).Truncate(MoneyScale)
	shares := make([]Money, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		shares[i] = Money{amount: share}
		allocated = allocated.Add(share)
	}

	last := total.amount.Sub(allocated)
	if last.IsNegative() {
		return nil, fmt.Errorf("installment split of %s into %d produced a negative remainder", total, n)
	}
	shares[n-1] = Money{amount: last}

	return shares, nil
}
