package tickers

import (
	"fmt"
	"sort"
	"strings"

	"stocks-skill/internal/domain"
)

// DefaultEntries maps spoken company names to Frankfurt (SSE) tickers.
var DefaultEntries = map[string]string{
	"hypoport":      "HYQ",
	"hypoport ag":   "HYQ",
	"daimler":       "DAI",
	"daimler ag":    "DAI",
	"volkswagen":    "VOW3",
	"volkswagen ag": "VOW3",
}

// Directory resolves company names to ticker symbols. It is immutable after
// construction and safe for concurrent use.
type Directory struct {
	index map[string]domain.TickerSymbol
}

// NewDirectory builds a directory from one or more name→ticker tables. Later
// tables override earlier ones for the same normalized name.
func NewDirectory(tables ...map[string]string) (*Directory, error) {
	d := &Directory{index: make(map[string]domain.TickerSymbol)}

	for _, table := range tables {
		for name, ticker := range table {
			key := domain.CompanyName(name).Normalize()
			if key == "" {
				return nil, fmt.Errorf("empty company name for ticker %q", ticker)
			}
			symbol := strings.ToUpper(strings.TrimSpace(ticker))
			if symbol == "" {
				return nil, fmt.Errorf("empty ticker for company %q", name)
			}
			d.index[key] = domain.TickerSymbol(symbol)
		}
	}

	return d, nil
}

// Resolve looks up an exact, case-insensitive match.
func (d *Directory) Resolve(name domain.CompanyName) (domain.TickerSymbol, bool) {
	ticker, ok := d.index[name.Normalize()]
	return ticker, ok
}

func (d *Directory) Len() int {
	return len(d.index)
}

// Summary lists the known names, one per line, sorted.
func (d *Directory) Summary() string {
	names := make([]string, 0, len(d.index))
	for name := range d.index {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "%s\t%s\n", name, d.index[name])
	}
	return sb.String()
}
