package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// AssetType selects which vendor endpoint and response shape applies to an asset
type AssetType string

const (
	AssetTypeStock  AssetType = "STOCK"
	AssetTypeCrypto AssetType = "CRYPTO"
)

// Currency is the denomination of an asset's cost basis and price history
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCAD Currency = "CAD"
)

// Asset represents a tracked instrument in the domain layer
// Shares of zero marks a watch-only entry: the asset is listed but excluded
// from book-value and market-value aggregation
type Asset struct {
	Symbol   string          `json:"symbol"`
	Type     AssetType       `json:"type"`
	Currency Currency        `json:"currency,omitempty"`
	Shares   decimal.Decimal `json:"shares"`

	AverageCost *decimal.Decimal `json:"averageCost,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`

	// CalculatedAverageCost is derived, display-only data carried for the
	// presentation layer; the aggregator never reads it
	CalculatedAverageCost *decimal.Decimal `json:"calculatedAverageCost,omitempty"`

	History *PriceSeries `json:"history,omitempty"`
}

// Validate ensures the asset adheres to domain rules
// Returns an error if validation fails
func (a *Asset) Validate() error {
	if a.Symbol == "" {
		return errors.New("asset symbol cannot be empty")
	}

	if IsSyntheticSymbol(a.Symbol) {
		return errors.New("asset symbol is reserved for system records")
	}

	if a.Type != AssetTypeStock && a.Type != AssetTypeCrypto {
		return errors.New("asset type must be STOCK or CRYPTO")
	}

	if a.Currency != "" && a.Currency != CurrencyUSD && a.Currency != CurrencyCAD {
		return errors.New("asset currency must be USD or CAD")
	}

	if a.Shares.IsNegative() {
		return errors.New("asset shares cannot be negative")
	}

	if a.AverageCost != nil && a.AverageCost.IsNegative() {
		return errors.New("asset average cost cannot be negative")
	}

	return nil
}

// CurrencyOrDefault returns the asset's currency, falling back to USD for
// legacy records created before the currency field existed
func (a *Asset) CurrencyOrDefault() Currency {
	if a.Currency == "" {
		return CurrencyUSD
	}
	return a.Currency
}

// Eligible reports whether the asset participates in net-worth aggregation:
// it must be held (positive shares), have a cost basis, and have at least one
// cached price point
func (a *Asset) Eligible() bool {
	if !a.Shares.IsPositive() {
		return false
	}
	if a.AverageCost == nil {
		return false
	}
	return a.History != nil && len(a.History.DataPoints) > 0
}

// NeedsRefresh reports whether the asset's price history should be re-fetched.
// Freshness is keyed to "did we fetch today", not to the date of the latest
// data point (the vendor may lag real time)
func (a *Asset) NeedsRefresh(today string) bool {
	return a.History == nil || !a.History.FreshAsOf(today)
}
