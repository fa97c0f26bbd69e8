package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for every amount
const MoneyScale = 2

// RoundMoney rounds an amount to MoneyScale places
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ParseAmount parses a user-entered non-negative amount such as a drawer balance
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, NewDomainError("INVALID_AMOUNT", "Amount is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, NewDomainError("INVALID_AMOUNT", "Amount must be a number")
	}
	if d.IsNegative() {
		return decimal.Zero, NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	return RoundMoney(d), nil
}
