package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmarques/stockfolio-backend/internal/domain"
)

const stockPayload = `{
	"Meta Data": {"2. Symbol": "VTI"},
	"Time Series (Daily)": {
		"2026-09-01": {"1. open": "250.00", "4. close": "251.50"},
		"2026-08-31": {"1. open": "248.00", "4. close": "249.00"},
		"2026-08-28": {"1. open": "247.00", "4. close": "247.25"}
	}
}`

const cryptoPayload = `{
	"Meta Data": {"2. Digital Currency Code": "BTC"},
	"Time Series (Digital Currency Daily)": {
		"2026-09-01": {"4a. close (USD)": "64000.10", "4b. close (CAD)": "86000.00"},
		"2026-08-31": {"4a. close (USD)": "63250.00", "4b. close (CAD)": "85000.00"}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*AlphaVantageClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	client := NewAlphaVantageClient(server.URL, "test-key", log)
	client.Now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	return client, server
}

func TestFetchDailyHistory_StockParsesAndOrders(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(stockPayload))
	})

	series := client.FetchDailyHistory(context.Background(), "VTI", domain.AssetTypeStock)

	require.Len(t, series.DataPoints, 3)
	assert.Equal(t, "2026-09-01", series.LastUpdated)

	// Vendor order is newest first; output must be ascending by date
	for i := 0; i < len(series.DataPoints)-1; i++ {
		assert.Less(t, series.DataPoints[i].Date, series.DataPoints[i+1].Date)
	}
	assert.True(t, series.DataPoints[0].Value.Equal(decimal.RequireFromString("247.25")))
	assert.True(t, series.DataPoints[2].Value.Equal(decimal.RequireFromString("251.50")))

	// Request shape
	assert.Equal(t, "TIME_SERIES_DAILY", gotQuery["function"][0])
	assert.Equal(t, "VTI", gotQuery["symbol"][0])
	assert.Equal(t, "full", gotQuery["outputsize"][0])
	assert.Equal(t, "test-key", gotQuery["apikey"][0])
	assert.NotContains(t, gotQuery, "market")
}

func TestFetchDailyHistory_CryptoUsesUSDQuote(t *testing.T) {
	var gotQuery map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(cryptoPayload))
	})

	series := client.FetchDailyHistory(context.Background(), "BTC", domain.AssetTypeCrypto)

	require.Len(t, series.DataPoints, 2)
	assert.True(t, series.DataPoints[1].Value.Equal(decimal.RequireFromString("64000.10")))

	assert.Equal(t, "DIGITAL_CURRENCY_DAILY", gotQuery["function"][0])
	assert.Equal(t, "USD", gotQuery["market"][0])
}

func TestFetchDailyHistory_MissingContainerReturnsEmptySeries(t *testing.T) {
	// Rate-limit style payload: valid JSON without the time-series container
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage!"}`))
	})

	series := client.FetchDailyHistory(context.Background(), "VTI", domain.AssetTypeStock)

	assert.NotNil(t, series.DataPoints)
	assert.Empty(t, series.DataPoints)
	assert.Equal(t, "2026-09-01", series.LastUpdated)
}

func TestFetchDailyHistory_ServerErrorReturnsEmptySeries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	series := client.FetchDailyHistory(context.Background(), "VTI", domain.AssetTypeStock)

	assert.Empty(t, series.DataPoints)
	assert.Equal(t, "2026-09-01", series.LastUpdated)
}

func TestFetchDailyHistory_TransportFailureReturnsEmptySeries(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	series := client.FetchDailyHistory(context.Background(), "VTI", domain.AssetTypeStock)

	assert.Empty(t, series.DataPoints)
	assert.Equal(t, "2026-09-01", series.LastUpdated)
}

func TestFetchDailyHistory_SkipsMalformedEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Time Series (Daily)": {
				"2026-09-01": {"4. close": "251.50"},
				"2026-08-31": {"4. close": "not-a-number"}
			}
		}`))
	})

	series := client.FetchDailyHistory(context.Background(), "VTI", domain.AssetTypeStock)

	require.Len(t, series.DataPoints, 1)
	assert.Equal(t, "2026-09-01", series.DataPoints[0].Date)
}
