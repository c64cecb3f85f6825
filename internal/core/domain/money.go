// Package domain defines the entities and invariants of the payment core.
package domain

import (
	"fmt"
	"math"
)

// Currency is the closed set of currencies the core accepts.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
)

// MaxAmountMinorUnits caps a single operation at 999,999.99 in the
// operation's currency.
const MaxAmountMinorUnits int64 = 99_999_999

// ParseCurrency validates a currency code. An empty code defaults to USD.
func ParseCurrency(code string) (Currency, error) {
	switch Currency(code) {
	case "":
		return CurrencyUSD, nil
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD:
		return Currency(code), nil
	}
	return "", NewInvalidCurrencyError(code)
}

// ValidateAmount checks that an amount in minor units is positive and within
// bounds. All money past this boundary is integer minor units; floats never
// enter a validated path.
func ValidateAmount(minorUnits int64) error {
	if minorUnits <= 0 || minorUnits > MaxAmountMinorUnits {
		return NewInvalidAmountError(minorUnits)
	}
	return nil
}

// ToMinorUnits converts a major-unit value to minor units, rounding half
// away from zero. Rounding happens at a tenth of a minor unit first so that
// float64 representation drift (0.285*100 == 28.4999…) cannot pull an exact
// half-cent below the rounding boundary.
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(math.Round(major*1000) / 10))
}

// ToMajorUnits converts minor units back to a major-unit value.
func ToMajorUnits(minorUnits int64) float64 {
	return float64(minorUnits) / 100
}

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
	CurrencyCAD: "CA$",
}

// FormatForDisplay renders an amount for presentation only.
func FormatForDisplay(minorUnits int64, currency Currency) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency) + " "
	}
	return fmt.Sprintf("%s%.2f", symbol, ToMajorUnits(minorUnits))
}
