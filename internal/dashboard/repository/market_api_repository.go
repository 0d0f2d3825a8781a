package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/config"
	"golang-stock-dashboard/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MarketAPIRepository is a typed client for the market-data backend. Every
// method issues one GET and decodes the body; failures are returned as is.
type MarketAPIRepository interface {
	GetDashboard(ctx context.Context, tickers []string, newsLimit int) (*entity.DashboardResponse, error)
	GetStock(ctx context.Context, symbol string) (*entity.StockData, error)
	GetNews(ctx context.Context, limit int) ([]entity.NewsItem, error)
	GetSignal(ctx context.Context, symbol string) (*entity.Signal, error)
	GetHealth(ctx context.Context) (*entity.HealthStatus, error)

	GetAlphaVantageQuote(ctx context.Context, symbol string) (*dto.AlphaVantageQuote, error)
	GetAlphaVantageDaily(ctx context.Context, symbol string, params dto.DailyParams) (*dto.AlphaVantageDaily, error)
	GetAlphaVantageIntraday(ctx context.Context, symbol string, params dto.IntradayParams) (*dto.AlphaVantageIntraday, error)
	GetAlphaVantageIndicators(ctx context.Context, symbol string, params dto.IndicatorParams) (*dto.AlphaVantageIndicators, error)
	GetAlphaVantageOverview(ctx context.Context, symbol string) (*dto.AlphaVantageOverview, error)
	GetAlphaVantageEarnings(ctx context.Context, symbol string) (*dto.AlphaVantageEarnings, error)
	GetAlphaVantageNews(ctx context.Context, symbol string, limit int) (*dto.AlphaVantageNews, error)

	GetCurrencyRate(ctx context.Context) (*dto.CurrencyRate, error)
	ConvertCurrency(ctx context.Context, params dto.ConvertParams) (*dto.CurrencyConversion, error)
	FormatCurrency(ctx context.Context, params dto.FormatParams) (*dto.CurrencyFormat, error)

	GetAngelOneStatus(ctx context.Context) (*dto.AngelOneStatus, error)
	GetAngelOneQuote(ctx context.Context, symbol string) (*dto.AngelOneQuote, error)
	GetAngelOneHistorical(ctx context.Context, symbol string, params dto.HistoricalParams) (*dto.AngelOneHistorical, error)
	GetAngelOneIndices(ctx context.Context) (*dto.AngelOneIndices, error)
	GetAngelOneMarketStatus(ctx context.Context) (*dto.AngelOneMarketStatus, error)
}

type marketAPIRepository struct {
	cfg            config.API
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewMarketAPIRepository creates a new MarketAPIRepository. Requests are
// paced only when MaxRequestPerMinute is positive.
func NewMarketAPIRepository(cfg config.API, log *logger.Logger) MarketAPIRepository {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	var requestLimiter *rate.Limiter
	if cfg.MaxRequestPerMinute > 0 {
		secondsPerRequest := time.Minute / time.Duration(cfg.MaxRequestPerMinute)
		requestLimiter = rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	}

	return &marketAPIRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		requestLimiter: requestLimiter,
	}
}

// CleanTicker strips surrounding whitespace and quote characters and
// upper-cases the symbol.
func CleanTicker(symbol string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(symbol), "\"'` "))
}

func (r *marketAPIRepository) GetDashboard(ctx context.Context, tickers []string, newsLimit int) (*entity.DashboardResponse, error) {
	cleaned := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = CleanTicker(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	q := url.Values{}
	q.Set("tickers", strings.Join(cleaned, ","))
	if newsLimit > 0 {
		q.Set("news_limit", strconv.Itoa(newsLimit))
	}

	var out entity.DashboardResponse
	if err := r.get(ctx, "/dashboard", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetStock(ctx context.Context, symbol string) (*entity.StockData, error) {
	var out entity.StockData
	if err := r.get(ctx, symbolPath("/stocks", symbol), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetNews(ctx context.Context, limit int) ([]entity.NewsItem, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []entity.NewsItem
	if err := r.get(ctx, "/news", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *marketAPIRepository) GetSignal(ctx context.Context, symbol string) (*entity.Signal, error) {
	var out entity.Signal
	if err := r.get(ctx, symbolPath("/signals", symbol), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetHealth(ctx context.Context) (*entity.HealthStatus, error) {
	var out entity.HealthStatus
	if err := r.get(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageQuote(ctx context.Context, symbol string) (*dto.AlphaVantageQuote, error) {
	var out dto.AlphaVantageQuote
	if err := r.get(ctx, symbolPath("/alpha-vantage/quote", symbol), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageDaily(ctx context.Context, symbol string, params dto.DailyParams) (*dto.AlphaVantageDaily, error) {
	params = params.WithDefaults()
	q := url.Values{}
	q.Set("outputsize", params.OutputSize)

	var out dto.AlphaVantageDaily
	if err := r.get(ctx, symbolPath("/alpha-vantage/daily", symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageIntraday(ctx context.Context, symbol string, params dto.IntradayParams) (*dto.AlphaVantageIntraday, error) {
	params = params.WithDefaults()
	q := url.Values{}
	q.Set("interval", params.Interval)
	q.Set("outputsize", params.OutputSize)

	var out dto.AlphaVantageIntraday
	if err := r.get(ctx, symbolPath("/alpha-vantage/intraday", symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageIndicators(ctx context.Context, symbol string, params dto.IndicatorParams) (*dto.AlphaVantageIndicators, error) {
	params = params.WithDefaults()
	q := url.Values{}
	q.Set("function", params.Function)
	q.Set("interval", params.Interval)
	q.Set("time_period", strconv.Itoa(params.TimePeriod))
	q.Set("series_type", params.SeriesType)

	var out dto.AlphaVantageIndicators
	if err := r.get(ctx, symbolPath("/alpha-vantage/indicators", symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageOverview(ctx context.Context, symbol string) (*dto.AlphaVantageOverview, error) {
	var out dto.AlphaVantageOverview
	if err := r.get(ctx, symbolPath("/alpha-vantage/overview", symbol), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageEarnings(ctx context.Context, symbol string) (*dto.AlphaVantageEarnings, error) {
	var out dto.AlphaVantageEarnings
	if err := r.get(ctx, symbolPath("/alpha-vantage/earnings", symbol), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAlphaVantageNews(ctx context.Context, symbol string, limit int) (*dto.AlphaVantageNews, error) {
	if limit <= 0 {
		limit = dto.DefaultAlphaNewsLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var out dto.AlphaVantageNews
	if err := r.get(ctx, symbolPath("/alpha-vantage/news", symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetCurrencyRate(ctx context.Context) (*dto.CurrencyRate, error) {
	var out dto.CurrencyRate
	if err := r.get(ctx, "/currency/rate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) ConvertCurrency(ctx context.Context, params dto.ConvertParams) (*dto.CurrencyConversion, error) {
	params = params.WithDefaults()
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(params.Amount, 'f', -1, 64))
	q.Set("from_currency", params.From)
	q.Set("to_currency", params.To)

	var out dto.CurrencyConversion
	if err := r.get(ctx, "/currency/convert", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) FormatCurrency(ctx context.Context, params dto.FormatParams) (*dto.CurrencyFormat, error) {
	params = params.WithDefaults()
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(params.Amount, 'f', -1, 64))
	q.Set("currency", params.Currency)
	q.Set("decimals", strconv.Itoa(params.Decimals))

	var out dto.CurrencyFormat
	if err := r.get(ctx, "/currency/format", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAngelOneStatus(ctx context.Context) (*dto.AngelOneStatus, error) {
	var out dto.AngelOneStatus
	if err := r.get(ctx, "/angel-one/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAngelOneQuote(ctx context.Context, symbol string) (*dto.AngelOneQuote, error) {
	var out dto.AngelOneQuote
	if err := r.get(ctx, symbolPath("/angel-one/quote", symbol), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAngelOneHistorical(ctx context.Context, symbol string, params dto.HistoricalParams) (*dto.AngelOneHistorical, error) {
	params = params.WithDefaults()
	q := url.Values{}
	q.Set("interval", params.Interval)
	q.Set("period", params.Period)

	var out dto.AngelOneHistorical
	if err := r.get(ctx, symbolPath("/angel-one/historical", symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAngelOneIndices(ctx context.Context) (*dto.AngelOneIndices, error) {
	var out dto.AngelOneIndices
	if err := r.get(ctx, "/angel-one/indices", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *marketAPIRepository) GetAngelOneMarketStatus(ctx context.Context) (*dto.AngelOneMarketStatus, error) {
	var out dto.AngelOneMarketStatus
	if err := r.get(ctx, "/angel-one/market-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func symbolPath(prefix, symbol string) string {
	return prefix + "/" + url.PathEscape(CleanTicker(symbol))
}

func (r *marketAPIRepository) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := r.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, err := r.sendRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		r.log.ErrorContext(ctx, "Failed to decode response body from market API",
			zap.String("url", endpoint), zap.Error(err))
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (r *marketAPIRepository) sendRequest(ctx context.Context, method string, endpoint string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", endpoint),
	}

	if r.requestLimiter != nil {
		if err := r.requestLimiter.Wait(ctx); err != nil {
			fields = append(fields, zap.Int("max_request_per_minute", r.cfg.MaxRequestPerMinute), zap.Error(err))
			r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		if ctx.Err() != nil {
			r.log.DebugContext(ctx, "Market API request cancelled", fields...)
		} else {
			r.log.ErrorContext(ctx, "Failed to send request to market API", fields...)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from market API", fields...)
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(body),
			Body:       body,
		}
		fields = append(fields, zap.Int("status_code", resp.StatusCode), zap.String("detail", apiErr.Detail))
		r.log.WarnContext(ctx, "Received non-OK response from market API", fields...)
		return nil, apiErr
	}

	return body, nil
}
