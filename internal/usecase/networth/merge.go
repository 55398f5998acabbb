package networth

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

// EligibleAssets filters the assets that participate in aggregation: positive
// shares, a set average cost, and at least one cached price point. Everything
// else (watch-only entries, assets that never fetched) contributes nothing and
// does not constrain the date intersection
func EligibleAssets(assets []*domain.Asset) []*domain.Asset {
	eligible := make([]*domain.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset.Eligible() {
			eligible = append(eligible, asset)
		}
	}
	return eligible
}

// toUSD converts an amount in the given currency to USD. fx is the CADUSD
// rate (USD per 1 CAD), so CAD amounts divide by it; the same single scalar
// applies to every historical date
func toUSD(amount decimal.Decimal, currency domain.Currency, fx decimal.Decimal) decimal.Decimal {
	if currency == domain.CurrencyCAD {
		return amount.Div(fx)
	}
	return amount
}

// BookValue sums shares * averageCost over the eligible assets, converted
// to USD
func BookValue(eligible []*domain.Asset, fx decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range eligible {
		cost := asset.Shares.Mul(*asset.AverageCost)
		total = total.Add(toUSD(cost, asset.CurrencyOrDefault(), fx))
	}
	return total
}

// IntersectMarketValues merges the eligible assets' histories into a single
// market-value series restricted to dates every eligible asset has a price
// for. Dates covered by only some assets are dropped entirely, so the output
// never represents a partial basket. Points are ordered ascending by date
func IntersectMarketValues(eligible []*domain.Asset, fx decimal.Decimal) []domain.PricePoint {
	coverage := make(map[string]int)
	totals := make(map[string]decimal.Decimal)

	for _, asset := range eligible {
		for _, point := range asset.History.DataPoints {
			coverage[point.Date]++
			value := toUSD(asset.Shares.Mul(point.Value), asset.CurrencyOrDefault(), fx)
			totals[point.Date] = totals[point.Date].Add(value)
		}
	}

	merged := make([]domain.PricePoint, 0, len(coverage))
	for date, count := range coverage {
		if count == len(eligible) {
			merged = append(merged, domain.PricePoint{Date: date, Value: totals[date]})
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })

	return merged
}
