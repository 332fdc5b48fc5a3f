package application

import "stocks-skill/internal/domain"

type TickerDirectory interface {
	Resolve(name domain.CompanyName) (domain.TickerSymbol, bool)
}
