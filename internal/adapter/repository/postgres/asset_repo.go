package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

const (
	kindAsset  = "asset"
	kindSeries = "series"
)

// assetRepository implements domain.AssetRepository on PostgreSQL, one row per
// symbol with the record serialized as JSONB and tagged with its kind
type assetRepository struct {
	db *DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *DB) domain.AssetRepository {
	return &assetRepository{db: db}
}

// GetAsset retrieves an asset by its symbol
func (r *assetRepository) GetAsset(ctx context.Context, symbol string) (*domain.Asset, error) {
	query := `
		SELECT data
		FROM records
		WHERE symbol = $1 AND kind = $2
	`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, symbol, kindAsset).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	var asset domain.Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset: %w", err)
	}
	return &asset, nil
}

// CreateAsset persists a new asset
func (r *assetRepository) CreateAsset(ctx context.Context, asset *domain.Asset) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset: %w", err)
	}

	query := `
		INSERT INTO records (symbol, kind, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, asset.Symbol, kindAsset, data)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read create result: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssetAlreadyExists
	}
	return nil
}

// UpdateAsset overwrites an existing asset
func (r *assetRepository) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	data, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset: %w", err)
	}

	query := `
		UPDATE records
		SET data = $3
		WHERE symbol = $1 AND kind = $2
	`

	result, err := r.db.ExecContext(ctx, query, asset.Symbol, kindAsset, data)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

// DeleteAsset removes an asset record. Deleting a missing symbol is a no-op
func (r *assetRepository) DeleteAsset(ctx context.Context, symbol string) error {
	query := `DELETE FROM records WHERE symbol = $1`

	if _, err := r.db.ExecContext(ctx, query, symbol); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// ListAssets retrieves all real asset records; synthetic rows are excluded by
// their kind tag, not by symbol convention
func (r *assetRepository) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	query := `
		SELECT data
		FROM records
		WHERE kind = $1
		ORDER BY symbol
	`

	rows, err := r.db.QueryContext(ctx, query, kindAsset)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}

		var asset domain.Asset
		if err := json.Unmarshal(data, &asset); err != nil {
			return nil, fmt.Errorf("failed to unmarshal asset: %w", err)
		}
		assets = append(assets, &asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate asset rows: %w", err)
	}

	return assets, nil
}

// GetSeries retrieves a synthetic record by its reserved symbol
func (r *assetRepository) GetSeries(ctx context.Context, symbol string) (*domain.SyntheticRecord, error) {
	query := `
		SELECT data
		FROM records
		WHERE symbol = $1 AND kind = $2
	`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, symbol, kindSeries).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get series: %w", err)
	}

	var record domain.SyntheticRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series: %w", err)
	}
	return &record, nil
}

// PutSeries creates or overwrites a synthetic record
func (r *assetRepository) PutSeries(ctx context.Context, record *domain.SyntheticRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}

	query := `
		INSERT INTO records (symbol, kind, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET kind = $2, data = $3
	`

	if _, err := r.db.ExecContext(ctx, query, record.Symbol, kindSeries, data); err != nil {
		return fmt.Errorf("failed to put series: %w", err)
	}
	return nil
}

// DeleteSeries removes a synthetic record. Deleting a missing symbol is a no-op
func (r *assetRepository) DeleteSeries(ctx context.Context, symbol string) error {
	return r.DeleteAsset(ctx, symbol)
}
