package domain

import "context"

// AssetRepository defines the interface for asset persistence operations.
// Real assets and synthetic series are distinct variants sharing one
// namespaced keyspace; listings cover real assets only
type AssetRepository interface {
	// GetAsset retrieves an asset by its symbol
	// Returns ErrAssetNotFound if no record exists
	GetAsset(ctx context.Context, symbol string) (*Asset, error)

	// CreateAsset persists a new asset
	// Returns ErrAssetAlreadyExists if the symbol already has a record
	CreateAsset(ctx context.Context, asset *Asset) error

	// UpdateAsset overwrites an existing asset
	// Returns ErrAssetNotFound if no record exists
	UpdateAsset(ctx context.Context, asset *Asset) error

	// DeleteAsset removes an asset record. Deleting a missing symbol is a no-op
	DeleteAsset(ctx context.Context, symbol string) error

	// ListAssets retrieves all real asset records; synthetic records are
	// excluded structurally
	ListAssets(ctx context.Context) ([]*Asset, error)

	// GetSeries retrieves a synthetic record by its reserved symbol
	// Returns ErrAssetNotFound if no record exists
	GetSeries(ctx context.Context, symbol string) (*SyntheticRecord, error)

	// PutSeries creates or overwrites a synthetic record
	PutSeries(ctx context.Context, record *SyntheticRecord) error

	// DeleteSeries removes a synthetic record. Deleting a missing symbol is a
	// no-op
	DeleteSeries(ctx context.Context, symbol string) error
}

// PriceFetcher defines the interface for retrieving daily price history from
// the market-data vendor
type PriceFetcher interface {
	// FetchDailyHistory returns the full daily close history for a symbol,
	// ordered ascending by date. Vendor failures of any kind (transport error,
	// error payload, rate limit) yield an empty series stamped with today's
	// date rather than an error; consumers detect failure by checking for
	// zero data points
	FetchDailyHistory(ctx context.Context, symbol string, assetType AssetType) PriceSeries
}
