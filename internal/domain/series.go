package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO date format used for price points and freshness stamps
const DateLayout = "2006-01-02"

// Reserved symbols for system-owned records. They never appear in asset
// listings and are written exclusively by the aggregator
const (
	SymbolCADUSD   = "CADUSD"
	SymbolNetWorth = "NETWORTH"
)

// IsSyntheticSymbol reports whether a symbol is reserved for system records
func IsSyntheticSymbol(symbol string) bool {
	return symbol == SymbolCADUSD || symbol == SymbolNetWorth
}

// PricePoint is a single daily closing price
type PricePoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// PriceSeries is a cached daily price history
// DataPoints is ordered ascending by date and may be empty (vendor failure or
// no data available) but never nil once fetched
type PriceSeries struct {
	DataPoints  []PricePoint `json:"dataPoints"`
	LastUpdated string       `json:"lastUpdated"`
}

// FreshAsOf reports whether the series was fetched on the given date.
// LastUpdated stamps the local fetch, not the newest data point
func (s *PriceSeries) FreshAsOf(today string) bool {
	return s.LastUpdated == today
}

// Empty reports whether the series carries no usable data. An empty series is
// the in-band signal for a failed or rate-limited vendor request
func (s *PriceSeries) Empty() bool {
	return len(s.DataPoints) == 0
}

// Last returns the most recent data point, or false when the series is empty
func (s *PriceSeries) Last() (PricePoint, bool) {
	if len(s.DataPoints) == 0 {
		return PricePoint{}, false
	}
	return s.DataPoints[len(s.DataPoints)-1], true
}

// SyntheticRecord is a system-owned store entry that does not represent a
// user-held asset: the CADUSD conversion series and the NETWORTH summary.
// It is a distinct variant in the store, so listings exclude it structurally
// rather than by symbol convention
type SyntheticRecord struct {
	Symbol  string      `json:"symbol"`
	History PriceSeries `json:"history"`

	// BookValue and MarketValue are set on the NETWORTH record only
	BookValue   *decimal.Decimal `json:"bookValue,omitempty"`
	MarketValue *decimal.Decimal `json:"marketValue,omitempty"`
}

// NetWorthSummary is the aggregate valuation published to subscribers
type NetWorthSummary struct {
	BookValue   decimal.Decimal
	MarketValue decimal.Decimal
}

// Today formats a wall-clock instant as an ISO date for freshness stamps
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
