package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lmarques/stockfolio-backend/internal/domain"
	"github.com/lmarques/stockfolio-backend/internal/pubsub"
)

// Recomputer triggers a net-worth aggregation cycle after lifecycle changes
type Recomputer interface {
	Recompute(ctx context.Context) error
}

// CreateInput represents the input for tracking a new asset
type CreateInput struct {
	Symbol      string
	Type        domain.AssetType
	Currency    domain.Currency
	Shares      decimal.Decimal
	AverageCost *decimal.Decimal
	Budget      *decimal.Decimal
}

// UpdateInput represents the input for editing an asset; nil fields are left
// unchanged
type UpdateInput struct {
	Shares      *decimal.Decimal
	AverageCost *decimal.Decimal
	Currency    *domain.Currency
	Budget      *decimal.Decimal
}

// Service handles asset lifecycle operations: create, update, delete, and
// freshness-gated refresh. Every operation that can move the portfolio's
// valuation triggers a net-worth recomputation; a degraded recomputation
// never fails the lifecycle operation itself
type Service struct {
	Repo     domain.AssetRepository
	Fetcher  domain.PriceFetcher
	NetWorth Recomputer
	Streams  *pubsub.Streams
	Log      *logrus.Logger
	Now      func() time.Time
}

// NewService creates a new asset lifecycle service
func NewService(repo domain.AssetRepository, fetcher domain.PriceFetcher, netWorth Recomputer, streams *pubsub.Streams, log *logrus.Logger) *Service {
	return &Service{
		Repo:     repo,
		Fetcher:  fetcher,
		NetWorth: netWorth,
		Streams:  streams,
		Log:      log,
		Now:      time.Now,
	}
}

// Create starts tracking a new asset
// Logic:
//  1. Validate and check symbol uniqueness
//  2. Fetch the initial price history; a zero-point result is a creation
//     failure and nothing is persisted
//  3. Persist, recompute net worth, and notify subscribers
//
// Returns the created asset
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Asset, error) {
	asset := &domain.Asset{
		Symbol:      input.Symbol,
		Type:        input.Type,
		Currency:    input.Currency,
		Shares:      input.Shares,
		AverageCost: input.AverageCost,
		Budget:      input.Budget,
	}
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	// 1. Check uniqueness before spending a vendor request
	_, err := s.Repo.GetAsset(ctx, asset.Symbol)
	if err == nil {
		return nil, domain.ErrAssetAlreadyExists
	}
	if !errors.Is(err, domain.ErrAssetNotFound) {
		return nil, fmt.Errorf("failed to check existing asset: %w", err)
	}

	// 2. Initial price history; empty means the symbol cannot be tracked
	series := s.Fetcher.FetchDailyHistory(ctx, asset.Symbol, asset.Type)
	if series.Empty() {
		return nil, domain.ErrPriceDataUnavailable
	}
	asset.History = &series

	// 3. Persist and notify
	if err := s.Repo.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	s.recompute(ctx)
	s.Streams.LastUpdatedAsset.Publish(*asset)
	s.Streams.AssetsChanged.Publish(struct{}{})

	s.Log.WithFields(logrus.Fields{"symbol": asset.Symbol, "type": asset.Type}).Info("asset created")

	return asset, nil
}

// Update edits an asset's cost basis, shares, currency, or budget, preserving
// the cached price history. Net worth is recomputed only when a field that
// feeds the valuation changed
func (s *Service) Update(ctx context.Context, symbol string, input UpdateInput) (*domain.Asset, error) {
	asset, err := s.Repo.GetAsset(ctx, symbol)
	if err != nil {
		return nil, err
	}

	valuationChanged := false
	if input.Shares != nil && !input.Shares.Equal(asset.Shares) {
		asset.Shares = *input.Shares
		valuationChanged = true
	}
	if input.AverageCost != nil {
		if asset.AverageCost == nil || !input.AverageCost.Equal(*asset.AverageCost) {
			valuationChanged = true
		}
		asset.AverageCost = input.AverageCost
	}
	if input.Currency != nil && *input.Currency != asset.Currency {
		asset.Currency = *input.Currency
		valuationChanged = true
	}
	if input.Budget != nil {
		asset.Budget = input.Budget
	}

	if err := asset.Validate(); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}

	if valuationChanged {
		s.recompute(ctx)
	}
	s.Streams.LastUpdatedAsset.Publish(*asset)

	return asset, nil
}

// Delete stops tracking an asset and recomputes net worth. Deleting an
// unknown symbol is a no-op
func (s *Service) Delete(ctx context.Context, symbol string) error {
	if err := s.Repo.DeleteAsset(ctx, symbol); err != nil {
		return err
	}

	s.recompute(ctx)
	s.Streams.AssetsChanged.Publish(struct{}{})

	s.Log.WithField("symbol", symbol).Info("asset removed")

	return nil
}

// Refresh re-fetches an asset's price history if it was not fetched today.
// A zero-point result on an asset with cached history keeps the last-known
// data and reports ErrPriceDataUnavailable; a zero-point result with no prior
// history removes the record entirely (the symbol evidently cannot be
// tracked). A second call within the same calendar day performs no fetch
func (s *Service) Refresh(ctx context.Context, symbol string) (*domain.Asset, error) {
	asset, err := s.Repo.GetAsset(ctx, symbol)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.Now())
	if !asset.NeedsRefresh(today) {
		return asset, nil
	}

	refreshed, err := s.refreshHistory(ctx, asset)
	if err != nil {
		return refreshed, err
	}

	s.recompute(ctx)
	s.Streams.LastUpdatedAsset.Publish(*refreshed)

	return refreshed, nil
}

// View marks an asset as the one currently displayed, refreshing it first.
// An empty symbol clears the current-asset stream (tears down the view)
func (s *Service) View(ctx context.Context, symbol string) (*domain.Asset, error) {
	if symbol == "" {
		s.Streams.CurrentAsset.Publish(domain.Asset{})
		return nil, nil
	}

	asset, err := s.Refresh(ctx, symbol)
	if asset != nil {
		s.Streams.CurrentAsset.Publish(*asset)
	}
	return asset, err
}

// ListAssets retrieves all tracked assets, backfilling the default USD
// currency onto legacy records missing the field and persisting the backfill
// as a one-time migration-on-read
func (s *Service) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	assets, err := s.Repo.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	for _, asset := range assets {
		if asset.Currency != "" {
			continue
		}
		asset.Currency = domain.CurrencyUSD
		if err := s.Repo.UpdateAsset(ctx, asset); err != nil {
			return nil, fmt.Errorf("failed to backfill currency for %s: %w", asset.Symbol, err)
		}
	}

	return assets, nil
}

// RefreshAll refreshes every stale asset, then runs a single net-worth
// recomputation. Individual refresh failures are logged and skipped so one
// bad symbol cannot block the rest of the portfolio
func (s *Service) RefreshAll(ctx context.Context) error {
	assets, err := s.ListAssets(ctx)
	if err != nil {
		return err
	}

	today := domain.Today(s.Now())
	for _, asset := range assets {
		if !asset.NeedsRefresh(today) {
			continue
		}
		if _, err := s.refreshHistory(ctx, asset); err != nil {
			s.Log.WithField("symbol", asset.Symbol).WithError(err).Warn("asset refresh failed")
		}
	}

	s.recompute(ctx)
	return nil
}

// refreshHistory fetches and persists a new price history for the asset.
// Empty fetch results follow the keep-or-remove policy described on Refresh
func (s *Service) refreshHistory(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	series := s.Fetcher.FetchDailyHistory(ctx, asset.Symbol, asset.Type)

	if series.Empty() {
		if asset.History != nil && !asset.History.Empty() {
			// Tolerable: keep last-known history
			return asset, domain.ErrPriceDataUnavailable
		}
		// Fatal: the record has no usable data at all
		if err := s.Repo.DeleteAsset(ctx, asset.Symbol); err != nil {
			return nil, err
		}
		return nil, domain.ErrPriceDataUnavailable
	}

	asset.History = &series
	if err := s.Repo.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// recompute triggers aggregation without letting a degraded cycle fail the
// calling lifecycle operation
func (s *Service) recompute(ctx context.Context) {
	if err := s.NetWorth.Recompute(ctx); err != nil {
		s.Log.WithError(err).Error("net worth recomputation failed")
	}
}
