package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/pkg/config"
	"golang-stock-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) MarketAPIRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMarketAPIRepository(config.API{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, logger.NewNop())
}

func TestCleanTicker(t *testing.T) {
	assert.Equal(t, "AAPL", CleanTicker(`"aapl"`))
	assert.Equal(t, "RELIANCE.NS", CleanTicker(" 'reliance.ns' "))
	assert.Equal(t, "TCS.NS", CleanTicker("TCS.NS"))
	assert.Equal(t, "", CleanTicker(`""`))
}

func TestGetDashboard_QueryAndDecode(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard", r.URL.Path)
		assert.Equal(t, "AAPL,TCS.NS", r.URL.Query().Get("tickers"))
		assert.Equal(t, "3", r.URL.Query().Get("news_limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"stocks":[{"ticker":"AAPL","price":190.1,"change_1d":1.2,"rsi":55,"trend":"Uptrend","volume":1000}],
			"news":[{"title":"Markets rally","sentiment":"positive","confidence":0.8}],
			"signals":[{"ticker":"AAPL","signal":"BUY","signals":["RSI"],"reasoning":["momentum"]}],
			"timestamp":"2024-05-10T10:00:00"
		}`))
	})

	out, err := repo.GetDashboard(context.Background(), []string{`"aapl"`, "tcs.ns", " "}, 3)
	require.NoError(t, err)
	require.Len(t, out.Stocks, 1)
	assert.Equal(t, 190.1, out.Stocks[0].Price)
	sig, ok := out.SignalFor("AAPL")
	require.True(t, ok)
	assert.Equal(t, "BUY", sig.Action())
}

func TestSymbolRoutes_CleanTickerInPath(t *testing.T) {
	var paths []string
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := repo.GetStock(ctx, `"infy.ns"`)
	require.NoError(t, err)
	_, err = repo.GetSignal(ctx, "infy.ns")
	require.NoError(t, err)
	_, err = repo.GetAlphaVantageOverview(ctx, "'ibm'")
	require.NoError(t, err)
	_, err = repo.GetAngelOneQuote(ctx, "sbin")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/stocks/INFY.NS",
		"/signals/INFY.NS",
		"/alpha-vantage/overview/IBM",
		"/angel-one/quote/SBIN",
	}, paths)
}

func TestQueryDefaults(t *testing.T) {
	queries := map[string]map[string]string{}
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		queries[r.URL.Path] = q
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	_, err := repo.GetAlphaVantageIntraday(ctx, "IBM", dto.IntradayParams{})
	require.NoError(t, err)
	_, err = repo.GetAlphaVantageIndicators(ctx, "IBM", dto.IndicatorParams{Function: "RSI", TimePeriod: 14})
	require.NoError(t, err)
	_, err = repo.GetAlphaVantageNews(ctx, "IBM", 0)
	require.NoError(t, err)
	_, err = repo.ConvertCurrency(ctx, dto.ConvertParams{Amount: 250.5})
	require.NoError(t, err)
	_, err = repo.FormatCurrency(ctx, dto.FormatParams{Amount: 1000, Currency: "usd", Decimals: 0})
	require.NoError(t, err)
	_, err = repo.GetAngelOneHistorical(ctx, "SBIN", dto.HistoricalParams{Period: "3mo"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"interval": "5min", "outputsize": "compact"}, queries["/alpha-vantage/intraday/IBM"])
	assert.Equal(t, map[string]string{"function": "RSI", "interval": "daily", "time_period": "14", "series_type": "close"}, queries["/alpha-vantage/indicators/IBM"])
	assert.Equal(t, map[string]string{"limit": "50"}, queries["/alpha-vantage/news/IBM"])
	assert.Equal(t, map[string]string{"amount": "250.5", "from_currency": "USD", "to_currency": "INR"}, queries["/currency/convert"])
	assert.Equal(t, map[string]string{"amount": "1000", "currency": "USD", "decimals": "0"}, queries["/currency/format"])
	assert.Equal(t, map[string]string{"interval": "1d", "period": "3mo"}, queries["/angel-one/historical/SBIN"])
}

func TestNon2xx_StructuredDetail(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"symbol not found"}`))
	})

	_, err := repo.GetAlphaVantageQuote(context.Background(), "NOPE")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "symbol not found", ErrorMessage(err))
}

func TestNon2xx_ValidationDetail(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["query","amount"],"msg":"field required","type":"value_error.missing"}]}`))
	})

	_, err := repo.ConvertCurrency(context.Background(), dto.ConvertParams{})
	assert.Equal(t, "amount: field required", ErrorMessage(err))
}

func TestNon2xx_NoDetail(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, err := repo.GetHealth(context.Background())
	assert.Equal(t, "request failed with status code 502", ErrorMessage(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	repo := NewMarketAPIRepository(config.API{BaseURL: base, Timeout: time.Second}, logger.NewNop())
	_, err := repo.GetCurrencyRate(context.Background())
	require.Error(t, err)
	assert.NotEqual(t, FallbackErrorMessage, ErrorMessage(err))
	assert.NotEmpty(t, ErrorMessage(err))
}

func TestErrorMessage_Fallback(t *testing.T) {
	assert.Equal(t, FallbackErrorMessage, ErrorMessage(nil))
	assert.Equal(t, FallbackErrorMessage, ErrorMessage(errors.New("  ")))
	assert.Equal(t, "boom", ErrorMessage(errors.New("boom")))
}

func TestRequestLimiter_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	repo := NewMarketAPIRepository(config.API{BaseURL: srv.URL, Timeout: time.Second, MaxRequestPerMinute: 1}, logger.NewNop())
	_, err := repo.GetHealth(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = repo.GetHealth(ctx)
	assert.Error(t, err)
}
