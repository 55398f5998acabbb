package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func sampleAsset() *domain.Asset {
	return &domain.Asset{
		Symbol:      "VTI",
		Type:        domain.AssetTypeStock,
		Currency:    domain.CurrencyUSD,
		Shares:      decimal.NewFromInt(10),
		AverageCost: ptr(decimal.RequireFromString("212.35")),
		History: &domain.PriceSeries{
			DataPoints: []domain.PricePoint{
				{Date: "2026-08-31", Value: decimal.RequireFromString("249.00")},
				{Date: "2026-09-01", Value: decimal.RequireFromString("251.50")},
			},
			LastUpdated: "2026-09-01",
		},
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	repo := NewAssetRepository()

	_, err := repo.GetAsset(context.Background(), "VTI")

	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestCreateAsset_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()

	require.NoError(t, repo.CreateAsset(ctx, sampleAsset()))

	err := repo.CreateAsset(ctx, sampleAsset())
	assert.ErrorIs(t, err, domain.ErrAssetAlreadyExists)
}

func TestUpdateAsset_Missing(t *testing.T) {
	repo := NewAssetRepository()

	err := repo.UpdateAsset(context.Background(), sampleAsset())

	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestAssetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()

	original := sampleAsset()
	require.NoError(t, repo.CreateAsset(ctx, original))

	loaded, err := repo.GetAsset(ctx, "VTI")
	require.NoError(t, err)

	// Serialization round-trip fidelity, including nested history points
	wantJSON, err := json.Marshal(original)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}

func TestListAssets_ExcludesSyntheticRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()

	require.NoError(t, repo.CreateAsset(ctx, sampleAsset()))
	require.NoError(t, repo.PutSeries(ctx, &domain.SyntheticRecord{
		Symbol:  domain.SymbolCADUSD,
		History: domain.PriceSeries{DataPoints: []domain.PricePoint{}, LastUpdated: "2026-09-01"},
	}))
	require.NoError(t, repo.PutSeries(ctx, &domain.SyntheticRecord{
		Symbol:  domain.SymbolNetWorth,
		History: domain.PriceSeries{DataPoints: []domain.PricePoint{}, LastUpdated: "2026-09-01"},
	}))

	assets, err := repo.ListAssets(ctx)
	require.NoError(t, err)

	require.Len(t, assets, 1)
	assert.Equal(t, "VTI", assets[0].Symbol)
}

func TestDelete_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()

	assert.NoError(t, repo.DeleteAsset(ctx, "VTI"))
	assert.NoError(t, repo.DeleteSeries(ctx, domain.SymbolNetWorth))

	require.NoError(t, repo.CreateAsset(ctx, sampleAsset()))
	require.NoError(t, repo.DeleteAsset(ctx, "VTI"))

	_, err := repo.GetAsset(ctx, "VTI")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestSeriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAssetRepository()

	record := &domain.SyntheticRecord{
		Symbol:      domain.SymbolNetWorth,
		BookValue:   ptr(decimal.NewFromInt(1000)),
		MarketValue: ptr(decimal.RequireFromString("1250.75")),
		History: domain.PriceSeries{
			DataPoints: []domain.PricePoint{
				{Date: "2026-09-01", Value: decimal.RequireFromString("1250.75")},
			},
			LastUpdated: "2026-09-01",
		},
	}
	require.NoError(t, repo.PutSeries(ctx, record))

	loaded, err := repo.GetSeries(ctx, domain.SymbolNetWorth)
	require.NoError(t, err)

	assert.Equal(t, record.Symbol, loaded.Symbol)
	assert.True(t, loaded.BookValue.Equal(*record.BookValue))
	assert.True(t, loaded.MarketValue.Equal(*record.MarketValue))
	assert.Equal(t, record.History.DataPoints, loaded.History.DataPoints)

	// Overwrite semantics
	record.MarketValue = ptr(decimal.NewFromInt(1300))
	require.NoError(t, repo.PutSeries(ctx, record))

	loaded, err = repo.GetSeries(ctx, domain.SymbolNetWorth)
	require.NoError(t, err)
	assert.True(t, loaded.MarketValue.Equal(decimal.NewFromInt(1300)))
}
