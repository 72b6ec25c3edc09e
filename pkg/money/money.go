// Package money formats extracted amounts as currency values.
// Values are held in integer minor units via go-money and converted through
// shopspring/decimal so that no float arithmetic touches an amount.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// INR is the ISO-4217 code for the Indian Rupee.
const INR = "INR"

// DefaultCurrency is used when a currency code is unknown.
const DefaultCurrency = INR

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// NewFromDecimal creates Money from a decimal value, rounding half away from zero
// to the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(DefaultCurrency)
		currencyCode = DefaultCurrency
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()

	return &Money{m: money.New(minor, currencyCode)}
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// Display returns a formatted string for display (e.g., "₹1,299.00")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}
