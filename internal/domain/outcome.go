package domain

type OutcomeKind string

const (
	OutcomeNone        OutcomeKind = ""
	OutcomeSuccess     OutcomeKind = "success"
	OutcomeFetchFailed OutcomeKind = "fetch_failed"
	OutcomeNotFound    OutcomeKind = "not_found"
)

// Outcome is the result of a stock query. Company is empty for a NotFound
// whose slot was missing or unparseable.
type Outcome struct {
	Kind    OutcomeKind
	Company CompanyName
	Ticker  TickerSymbol
	Price   PricePoint
	Err     *FetchError
}

func Success(company CompanyName, ticker TickerSymbol, price PricePoint) Outcome {
	return Outcome{Kind: OutcomeSuccess, Company: company, Ticker: ticker, Price: price}
}

func FetchFailed(company CompanyName, ticker TickerSymbol, err *FetchError) Outcome {
	return Outcome{Kind: OutcomeFetchFailed, Company: company, Ticker: ticker, Err: err}
}

func NotFound(company CompanyName) Outcome {
	return Outcome{Kind: OutcomeNotFound, Company: company}
}
