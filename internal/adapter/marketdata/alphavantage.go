package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

const (
	stockFunction  = "TIME_SERIES_DAILY"
	cryptoFunction = "DIGITAL_CURRENCY_DAILY"

	stockSeriesKey  = "Time Series (Daily)"
	cryptoSeriesKey = "Time Series (Digital Currency Daily)"

	stockCloseField  = "4. close"
	cryptoCloseField = "4a. close (USD)"
)

// AlphaVantageClient implements domain.PriceFetcher using the Alpha Vantage
// daily time-series API
type AlphaVantageClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Log     *logrus.Logger
	Now     func() time.Time
}

// NewAlphaVantageClient creates a new Alpha Vantage client
func NewAlphaVantageClient(baseURL, apiKey string, log *logrus.Logger) *AlphaVantageClient {
	return &AlphaVantageClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
		Log:     log,
		Now:     time.Now,
	}
}

// FetchDailyHistory retrieves the full daily close history for a symbol.
// Any vendor failure (transport error, non-2xx status, error payload, rate
// limit) yields an empty series stamped with today's date; failures are
// swallowed here and surfaced by consumers via zero-point checks
func (c *AlphaVantageClient) FetchDailyHistory(ctx context.Context, symbol string, assetType domain.AssetType) domain.PriceSeries {
	series := domain.PriceSeries{
		DataPoints:  []domain.PricePoint{},
		LastUpdated: domain.Today(c.Now()),
	}

	body, err := c.request(ctx, symbol, assetType)
	if err != nil {
		c.Log.WithFields(logrus.Fields{"symbol": symbol, "type": assetType}).
			WithError(err).Warn("price fetch failed, returning empty series")
		return series
	}

	points, err := parseDailySeries(body, assetType)
	if err != nil {
		c.Log.WithFields(logrus.Fields{"symbol": symbol, "type": assetType}).
			WithError(err).Warn("price response unusable, returning empty series")
		return series
	}

	series.DataPoints = points
	return series
}

func (c *AlphaVantageClient) request(ctx context.Context, symbol string, assetType domain.AssetType) ([]byte, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")
	params.Set("apikey", c.APIKey)

	if assetType == domain.AssetTypeCrypto {
		params.Set("function", cryptoFunction)
		params.Set("market", "USD")
	} else {
		params.Set("function", stockFunction)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage: status %d", resp.StatusCode)
	}

	return body, nil
}

// parseDailySeries extracts the close-price field from the vendor's nested
// time-series container. The container key and close field are type dependent.
// A payload without the expected container (error message, rate-limit note,
// invalid key) is reported as an error so the caller can signal it in-band
func parseDailySeries(body []byte, assetType domain.AssetType) ([]domain.PricePoint, error) {
	seriesKey := stockSeriesKey
	closeField := stockCloseField
	if assetType == domain.AssetTypeCrypto {
		seriesKey = cryptoSeriesKey
		closeField = cryptoCloseField
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("alpha vantage decode: %w", err)
	}

	raw, ok := payload[seriesKey]
	if !ok {
		return nil, fmt.Errorf("alpha vantage: missing %q container", seriesKey)
	}

	var timeSeries map[string]map[string]string
	if err := json.Unmarshal(raw, &timeSeries); err != nil {
		return nil, fmt.Errorf("alpha vantage decode time series: %w", err)
	}

	points := make([]domain.PricePoint, 0, len(timeSeries))
	for date, fields := range timeSeries {
		value, err := decimal.NewFromString(fields[closeField])
		if err != nil {
			// Skip malformed entries instead of discarding the whole series
			continue
		}
		points = append(points, domain.PricePoint{Date: date, Value: value})
	}

	// The vendor lists newest first; the contract is oldest to newest
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return points, nil
}
