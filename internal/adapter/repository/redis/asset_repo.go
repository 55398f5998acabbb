package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

const (
	kindAsset  = "asset"
	kindSeries = "series"
)

// storedRecord is the tagged envelope persisted at each key, so real assets
// and synthetic series stay distinguishable without symbol conventions
type storedRecord struct {
	Kind   string                  `json:"kind"`
	Asset  *domain.Asset           `json:"asset,omitempty"`
	Series *domain.SyntheticRecord `json:"series,omitempty"`
}

// AssetRepository implements domain.AssetRepository on Redis, one JSON value
// per symbol under a namespaced key
type AssetRepository struct {
	client *redis.Client
	prefix string
}

// NewAssetRepository connects to Redis and returns the repository
func NewAssetRepository(addr, password string, db int, prefix string) (*AssetRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &AssetRepository{client: client, prefix: prefix}, nil
}

// Close releases the underlying connection pool
func (r *AssetRepository) Close() error {
	return r.client.Close()
}

func (r *AssetRepository) key(symbol string) string {
	return r.prefix + "/" + symbol
}

func (r *AssetRepository) load(ctx context.Context, symbol string) (*storedRecord, error) {
	data, err := r.client.Get(ctx, r.key(symbol)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get record from redis: %w", err)
	}

	var record storedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &record, nil
}

func (r *AssetRepository) store(ctx context.Context, symbol string, record *storedRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := r.client.Set(ctx, r.key(symbol), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set record in redis: %w", err)
	}
	return nil
}

// GetAsset retrieves an asset by its symbol
func (r *AssetRepository) GetAsset(ctx context.Context, symbol string) (*domain.Asset, error) {
	record, err := r.load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if record.Kind != kindAsset || record.Asset == nil {
		return nil, domain.ErrAssetNotFound
	}
	return record.Asset, nil
}

// CreateAsset persists a new asset
func (r *AssetRepository) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	data, err := json.Marshal(&storedRecord{Kind: kindAsset, Asset: asset})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	created, err := r.client.SetNX(ctx, r.key(asset.Symbol), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create record in redis: %w", err)
	}
	if !created {
		return domain.ErrAssetAlreadyExists
	}
	return nil
}

// UpdateAsset overwrites an existing asset
func (r *AssetRepository) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	data, err := json.Marshal(&storedRecord{Kind: kindAsset, Asset: asset})
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	updated, err := r.client.SetXX(ctx, r.key(asset.Symbol), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update record in redis: %w", err)
	}
	if !updated {
		return domain.ErrAssetNotFound
	}
	return nil
}

// DeleteAsset removes an asset record. Deleting a missing symbol is a no-op
func (r *AssetRepository) DeleteAsset(ctx context.Context, symbol string) error {
	if err := r.client.Del(ctx, r.key(symbol)).Err(); err != nil {
		return fmt.Errorf("failed to delete record from redis: %w", err)
	}
	return nil
}

// ListAssets scans the namespaced keyspace and returns real asset records only
func (r *AssetRepository) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	var assets []*domain.Asset

	iter := r.client.Scan(ctx, 0, r.prefix+"/*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue // deleted between scan and get
			}
			return nil, fmt.Errorf("failed to get record from redis: %w", err)
		}

		var record storedRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		if record.Kind == kindAsset && record.Asset != nil {
			assets = append(assets, record.Asset)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan redis keyspace: %w", err)
	}

	return assets, nil
}

// GetSeries retrieves a synthetic record by its reserved symbol
func (r *AssetRepository) GetSeries(ctx context.Context, symbol string) (*domain.SyntheticRecord, error) {
	record, err := r.load(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if record.Kind != kindSeries || record.Series == nil {
		return nil, domain.ErrAssetNotFound
	}
	return record.Series, nil
}

// PutSeries creates or overwrites a synthetic record
func (r *AssetRepository) PutSeries(ctx context.Context, record *domain.SyntheticRecord) error {
	return r.store(ctx, record.Symbol, &storedRecord{Kind: kindSeries, Series: record})
}

// DeleteSeries removes a synthetic record. Deleting a missing symbol is a no-op
func (r *AssetRepository) DeleteSeries(ctx context.Context, symbol string) error {
	return r.DeleteAsset(ctx, symbol)
}
