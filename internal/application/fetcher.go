package application

import (
	"context"

	"stocks-skill/internal/domain"
)

// PriceFetcher returns the latest price of a ticker. Errors should be
// *domain.FetchError; anything else is treated as a transport failure.
type PriceFetcher interface {
	Fetch(ctx context.Context, ticker domain.TickerSymbol) (domain.PricePoint, error)
}
