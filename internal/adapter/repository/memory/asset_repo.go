package memory

import (
	"context"
	"sync"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

// AssetRepository implements domain.AssetRepository with in-process maps.
// It is the default backend for single-user local runs and the store double
// used across the test suites
type AssetRepository struct {
	mu     sync.RWMutex
	assets map[string]domain.Asset
	series map[string]domain.SyntheticRecord
}

// NewAssetRepository creates a new in-memory asset repository
func NewAssetRepository() *AssetRepository {
	return &AssetRepository{
		assets: make(map[string]domain.Asset),
		series: make(map[string]domain.SyntheticRecord),
	}
}

// GetAsset retrieves an asset by its symbol
func (r *AssetRepository) GetAsset(ctx context.Context, symbol string) (*domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[symbol]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return &asset, nil
}

// CreateAsset persists a new asset
func (r *AssetRepository) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[asset.Symbol]; ok {
		return domain.ErrAssetAlreadyExists
	}
	r.assets[asset.Symbol] = *asset
	return nil
}

// UpdateAsset overwrites an existing asset
func (r *AssetRepository) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[asset.Symbol]; !ok {
		return domain.ErrAssetNotFound
	}
	r.assets[asset.Symbol] = *asset
	return nil
}

// DeleteAsset removes an asset record. Deleting a missing symbol is a no-op
func (r *AssetRepository) DeleteAsset(ctx context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.assets, symbol)
	return nil
}

// ListAssets retrieves all real asset records
func (r *AssetRepository) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]*domain.Asset, 0, len(r.assets))
	for symbol := range r.assets {
		asset := r.assets[symbol]
		assets = append(assets, &asset)
	}
	return assets, nil
}

// GetSeries retrieves a synthetic record by its reserved symbol
func (r *AssetRepository) GetSeries(ctx context.Context, symbol string) (*domain.SyntheticRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.series[symbol]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return &record, nil
}

// PutSeries creates or overwrites a synthetic record
func (r *AssetRepository) PutSeries(ctx context.Context, record *domain.SyntheticRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.series[record.Symbol] = *record
	return nil
}

// DeleteSeries removes a synthetic record. Deleting a missing symbol is a no-op
func (r *AssetRepository) DeleteSeries(ctx context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.series, symbol)
	return nil
}
