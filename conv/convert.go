package conv

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimals kept for amounts
const MoneyPrecision = 2

var hundred = decimal.NewFromInt(100)

// ParseMoney converts a user given amount into a decimal rounded to cents.
// Negative amounts and more than MoneyPrecision decimals are rejected.
func ParseMoney(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, errors.New("amount is empty")
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, errors.New("amount is negative")
	}
	if value.Exponent() < -MoneyPrecision && !value.Equal(value.Round(MoneyPrecision)) {
		return decimal.Zero, errors.New("amount has too many decimals")
	}
	return value.Round(MoneyPrecision), nil
}

// FmtMoney renders an amount with a fixed number of decimals
func FmtMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPrecision)
}

// ToFloat converts an amount for ratio computations
func ToFloat(amount decimal.Decimal) float64 {
	f, _ := amount.Float64()
	return f
}

// ToCents converts an amount into integer cents
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents into an amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyPrecision)
}

// Sum adds up the given amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total
}
