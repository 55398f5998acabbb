package networth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lmarques/stockfolio-backend/internal/domain"
	"github.com/lmarques/stockfolio-backend/internal/pubsub"
)

// Service computes the aggregate valuation of the whole portfolio across
// heterogeneous currencies and per-asset date coverage.
//
// Currency conversion deliberately uses only the most recent CADUSD rate for
// all historical dates, even though the raw FX series has daily granularity.
// This is the observed behavior of the system, preserved as an approximation
type Service struct {
	Repo    domain.AssetRepository
	Fetcher domain.PriceFetcher
	Streams *pubsub.Streams
	Log     *logrus.Logger
	Now     func() time.Time

	// Serializes aggregation cycles; the store offers no atomicity, so
	// overlapping recomputations must not interleave reads and writes
	mu sync.Mutex
}

// NewService creates a new net-worth aggregation service
func NewService(repo domain.AssetRepository, fetcher domain.PriceFetcher, streams *pubsub.Streams, log *logrus.Logger) *Service {
	return &Service{
		Repo:    repo,
		Fetcher: fetcher,
		Streams: streams,
		Log:     log,
		Now:     time.Now,
	}
}

// Recompute runs one aggregation cycle:
//  1. Ensure the CADUSD series is fresh, fetching and persisting it if not
//  2. Take the latest FX point as the single conversion scalar
//  3. Load all real assets; an empty portfolio resets net worth to zero
//  4. Filter to eligible assets, sum book value, and merge market values on
//     the strict date intersection
//  5. Persist the NETWORTH record and publish the summary
//
// Degraded states (FX unavailable or unusable, empty intersection) skip the cycle
// silently: nothing is persisted or published and the previous value stays
// valid. Only store failures are returned as errors
func (s *Service) Recompute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.Today(s.Now())

	// 1. Ensure the FX conversion series is fresh
	fxSeries, err := s.ensureFxSeries(ctx, today)
	if err != nil {
		return err
	}

	// 2. Latest available conversion rate; an empty FX series is the defined
	// degraded state, not an error
	fxPoint, ok := fxSeries.Last()
	if !ok {
		s.Log.Warn("aggregation skipped: no CADUSD conversion data available")
		return nil
	}
	fx := fxPoint.Value

	// A zero rate would divide by zero converting CAD amounts; treat it like
	// missing FX data and keep the previous value
	if !fx.IsPositive() {
		s.Log.WithField("rate", fx).Warn("aggregation skipped: non-positive CADUSD conversion rate")
		return nil
	}

	// 3. Load all real assets
	assets, err := s.Repo.ListAssets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	// 4. Empty portfolio: zero out and remove the stale summary record
	if len(assets) == 0 {
		if err := s.Repo.DeleteSeries(ctx, domain.SymbolNetWorth); err != nil {
			return fmt.Errorf("failed to remove net worth record: %w", err)
		}
		s.Streams.NetWorth.Publish(domain.NetWorthSummary{})
		return nil
	}

	// 5. Eligibility filter, book value, and strict date-intersection merge
	eligible := EligibleAssets(assets)
	bookValue := BookValue(eligible, fx)
	merged := IntersectMarketValues(eligible, fx)

	// 6. No common date across all eligible assets (or none eligible): skip
	// the cycle rather than publish a partial basket
	if len(merged) == 0 {
		s.Log.WithField("eligible", len(eligible)).
			Warn("aggregation skipped: no date covered by every eligible asset")
		return nil
	}

	// 7. Current market value is the sum at the latest common date, not each
	// asset's own latest date, guarding against coverage skew
	marketValue := merged[len(merged)-1].Value

	// 8. Persist the synthetic summary record
	record := &domain.SyntheticRecord{
		Symbol:      domain.SymbolNetWorth,
		BookValue:   &bookValue,
		MarketValue: &marketValue,
		History: domain.PriceSeries{
			DataPoints:  merged,
			LastUpdated: today,
		},
	}
	if err := s.Repo.PutSeries(ctx, record); err != nil {
		return fmt.Errorf("failed to persist net worth record: %w", err)
	}

	// 9. Publish to subscribers
	s.Streams.NetWorth.Publish(domain.NetWorthSummary{
		BookValue:   bookValue,
		MarketValue: marketValue,
	})

	s.Log.WithFields(logrus.Fields{
		"assets":   len(assets),
		"eligible": len(eligible),
		"dates":    len(merged),
	}).Info("net worth recomputed")

	return nil
}

// ensureFxSeries returns the CADUSD conversion series, fetching and persisting
// a new one when the stored series is absent or was not fetched today. The
// fetched series is persisted even when empty, so a failed fetch is not
// retried until the next calendar day
func (s *Service) ensureFxSeries(ctx context.Context, today string) (*domain.PriceSeries, error) {
	stored, err := s.Repo.GetSeries(ctx, domain.SymbolCADUSD)
	if err != nil && !errors.Is(err, domain.ErrAssetNotFound) {
		return nil, fmt.Errorf("failed to load CADUSD series: %w", err)
	}

	if stored != nil && stored.History.FreshAsOf(today) {
		return &stored.History, nil
	}

	series := s.Fetcher.FetchDailyHistory(ctx, domain.SymbolCADUSD, domain.AssetTypeStock)

	record := &domain.SyntheticRecord{Symbol: domain.SymbolCADUSD, History: series}
	if err := s.Repo.PutSeries(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist CADUSD series: %w", err)
	}

	return &series, nil
}
