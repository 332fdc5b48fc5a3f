package quandl

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"stocks-skill/internal/domain"
)

// datasetResponse is the subset of the v3 dataset payload the skill reads:
// {"dataset": {"data": [["2023-01-01", 42.567], ...]}}
type datasetResponse struct {
	Dataset *struct {
		Data [][]json.RawMessage `json:"data"`
	} `json:"dataset"`
}

func parseLatest(body []byte) (domain.PricePoint, error) {
	var resp datasetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.PricePoint{}, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Dataset == nil {
		return domain.PricePoint{}, errors.New("missing dataset")
	}
	if len(resp.Dataset.Data) == 0 {
		return domain.PricePoint{}, errors.New("dataset has no rows")
	}

	row := resp.Dataset.Data[0]
	if len(row) < 2 {
		return domain.PricePoint{}, fmt.Errorf("row has %d columns, want 2", len(row))
	}

	var date string
	if err := json.Unmarshal(row[0], &date); err != nil || date == "" {
		return domain.PricePoint{}, fmt.Errorf("invalid date %s", row[0])
	}

	// Only bare JSON numbers are accepted; strings and null fail here.
	price, err := decimal.NewFromString(string(row[1]))
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("invalid price %s: %w", row[1], err)
	}

	return domain.PricePoint{Date: date, Price: price}, nil
}
