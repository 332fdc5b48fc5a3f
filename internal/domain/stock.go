package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CompanyName is the stock name as spoken by the user.
type CompanyName string

// Normalize returns the lookup form of the name.
func (c CompanyName) Normalize() string {
	return strings.ToLower(strings.TrimSpace(string(c)))
}

func (c CompanyName) IsBlank() bool {
	return strings.TrimSpace(string(c)) == ""
}

// TickerSymbol identifies a security on the data provider.
type TickerSymbol string

// PricePoint is the most recent closing price of a ticker.
type PricePoint struct {
	Date  string
	Price decimal.Decimal
}

// Rounded returns the price rounded to two decimal places for presentation.
func (p PricePoint) Rounded() decimal.Decimal {
	return p.Price.Round(2)
}
