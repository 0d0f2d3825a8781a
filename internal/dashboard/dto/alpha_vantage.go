package dto

import (
	"encoding/json"
	"sort"
)

// Alpha Vantage query defaults applied when a parameter is left empty.
const (
	DefaultOutputSize        = "compact"
	DefaultIntradayInterval  = "5min"
	DefaultIndicatorFunction = "SMA"
	DefaultIndicatorInterval = "daily"
	DefaultIndicatorPeriod   = 20
	DefaultSeriesType        = "close"
	DefaultAlphaNewsLimit    = 50
)

// DailyParams selects a daily time series.
type DailyParams struct {
	OutputSize string
}

func (p DailyParams) WithDefaults() DailyParams {
	if p.OutputSize == "" {
		p.OutputSize = DefaultOutputSize
	}
	return p
}

// IntradayParams selects an intraday time series.
type IntradayParams struct {
	Interval   string
	OutputSize string
}

func (p IntradayParams) WithDefaults() IntradayParams {
	if p.Interval == "" {
		p.Interval = DefaultIntradayInterval
	}
	if p.OutputSize == "" {
		p.OutputSize = DefaultOutputSize
	}
	return p
}

// IndicatorParams selects a technical indicator series.
type IndicatorParams struct {
	Function   string
	Interval   string
	TimePeriod int
	SeriesType string
}

func (p IndicatorParams) WithDefaults() IndicatorParams {
	if p.Function == "" {
		p.Function = DefaultIndicatorFunction
	}
	if p.Interval == "" {
		p.Interval = DefaultIndicatorInterval
	}
	if p.TimePeriod <= 0 {
		p.TimePeriod = DefaultIndicatorPeriod
	}
	if p.SeriesType == "" {
		p.SeriesType = DefaultSeriesType
	}
	return p
}

// AlphaVantageQuote is a real-time quote. The backend forwards either the
// Alpha Vantage "Global Quote" object with numbered keys ("05. price") or
// its own fallback with plain keys; both decode into the same fields.
type AlphaVantageQuote struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Open             float64 `json:"open"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	Volume           float64 `json:"volume"`
	PreviousClose    float64 `json:"previous_close"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"change_percent"`
	MarketCap        float64 `json:"market_cap"`
	Currency         string  `json:"currency"`
	LatestTradingDay string  `json:"latest_trading_day"`
	LastUpdated      string  `json:"last_updated"`
	Source           string  `json:"source"`
}

func (q *AlphaVantageQuote) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*q = AlphaVantageQuote{
		Symbol:           f.string("symbol", "01. symbol"),
		Open:             f.float("open", "02. open"),
		High:             f.float("high", "03. high"),
		Low:              f.float("low", "04. low"),
		Price:            f.float("price", "05. price"),
		Volume:           f.float("volume", "06. volume"),
		LatestTradingDay: f.string("latest_trading_day", "07. latest trading day"),
		PreviousClose:    f.float("previous_close", "08. previous close"),
		Change:           f.float("change", "09. change"),
		ChangePercent:    f.float("change_percent", "10. change percent"),
		MarketCap:        f.float("market_cap"),
		Currency:         f.string("currency"),
		LastUpdated:      f.string("last_updated"),
		Source:           f.string("source"),
	}
	return nil
}

func (q AlphaVantageQuote) Provenance() Provenance {
	return Provenance{Source: q.Source, LastUpdated: q.LastUpdated}
}

// Bar is one OHLCV row. Pandas frames serialize with "Date" or "Datetime"
// columns, Angel One candles with lower-case keys; both are accepted.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (b *Bar) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*b = Bar{
		Date:   f.string("date", "datetime", "timestamp", "index"),
		Open:   f.float("open", "1. open"),
		High:   f.float("high", "2. high"),
		Low:    f.float("low", "3. low"),
		Close:  f.float("close", "4. close"),
		Volume: f.float("volume", "5. volume"),
	}
	return nil
}

// AlphaVantageDaily is a daily OHLCV series.
type AlphaVantageDaily struct {
	Symbol      string `json:"symbol"`
	Data        []Bar  `json:"data"`
	LastUpdated string `json:"last_updated"`
	Source      string `json:"source"`
}

func (d AlphaVantageDaily) Provenance() Provenance {
	return Provenance{Source: d.Source, LastUpdated: d.LastUpdated}
}

// AlphaVantageIntraday is an intraday OHLCV series.
type AlphaVantageIntraday struct {
	Symbol      string `json:"symbol"`
	Interval    string `json:"interval"`
	Data        []Bar  `json:"data"`
	LastUpdated string `json:"last_updated"`
	Source      string `json:"source"`
}

func (d AlphaVantageIntraday) Provenance() Provenance {
	return Provenance{Source: d.Source, LastUpdated: d.LastUpdated}
}

// IndicatorRow is one dated row of indicator values. The set of value
// columns depends on the requested function (SMA_20, RSI, MACD, ...).
type IndicatorRow struct {
	Date   string
	Values map[string]float64
}

func (r *IndicatorRow) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Date = ""
	r.Values = make(map[string]float64, len(raw))
	for k, v := range raw {
		switch k {
		case "Date", "date", "Datetime", "datetime", "index":
			var s FlexString
			_ = s.UnmarshalJSON(v)
			r.Date = s.String()
		default:
			var n FlexFloat
			_ = n.UnmarshalJSON(v)
			r.Values[k] = n.Float()
		}
	}
	return nil
}

func (r IndicatorRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	out["Date"] = r.Date
	return json.Marshal(out)
}

// AlphaVantageIndicators is a technical indicator series.
type AlphaVantageIndicators struct {
	Symbol      string         `json:"symbol"`
	Function    string         `json:"function"`
	Interval    string         `json:"interval"`
	TimePeriod  int            `json:"time_period"`
	SeriesType  string         `json:"series_type"`
	Data        []IndicatorRow `json:"data"`
	LastUpdated string         `json:"last_updated"`
	Source      string         `json:"source"`
}

func (d AlphaVantageIndicators) Provenance() Provenance {
	return Provenance{Source: d.Source, LastUpdated: d.LastUpdated}
}

// Columns returns the value columns present in any row, sorted.
func (d AlphaVantageIndicators) Columns() []string {
	seen := make(map[string]struct{})
	for _, row := range d.Data {
		for k := range row.Values {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// AlphaVantageOverview is company fundamentals. Keys follow Alpha Vantage's
// OVERVIEW function.
type AlphaVantageOverview struct {
	Symbol               string    `json:"symbol"`
	Name                 string    `json:"Name"`
	Description          string    `json:"Description"`
	Exchange             string    `json:"Exchange"`
	Currency             string    `json:"Currency"`
	Country              string    `json:"Country"`
	Sector               string    `json:"Sector"`
	Industry             string    `json:"Industry"`
	MarketCapitalization FlexFloat `json:"MarketCapitalization"`
	PERatio              FlexFloat `json:"PERatio"`
	PEGRatio             FlexFloat `json:"PEGRatio"`
	BookValue            FlexFloat `json:"BookValue"`
	DividendYield        FlexFloat `json:"DividendYield"`
	EPS                  FlexFloat `json:"EPS"`
	ProfitMargin         FlexFloat `json:"ProfitMargin"`
	Beta                 FlexFloat `json:"Beta"`
	AnalystTargetPrice   FlexFloat `json:"AnalystTargetPrice"`
	Week52High           FlexFloat `json:"52WeekHigh"`
	Week52Low            FlexFloat `json:"52WeekLow"`
	MovingAverage50      FlexFloat `json:"50DayMovingAverage"`
	MovingAverage200     FlexFloat `json:"200DayMovingAverage"`
	LastUpdated          string    `json:"last_updated"`
	Source               string    `json:"source"`
}

func (o AlphaVantageOverview) Provenance() Provenance {
	return Provenance{Source: o.Source, LastUpdated: o.LastUpdated}
}

// EarningsEvent is one row of the earnings calendar.
type EarningsEvent struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	ReportDate       string    `json:"reportDate"`
	FiscalDateEnding string    `json:"fiscalDateEnding"`
	Estimate         FlexFloat `json:"estimate"`
	Currency         string    `json:"currency"`
}

// AlphaVantageEarnings is the upcoming earnings calendar for a symbol.
type AlphaVantageEarnings struct {
	Symbol      string          `json:"symbol"`
	Earnings    []EarningsEvent `json:"earnings"`
	LastUpdated string          `json:"last_updated"`
	Source      string          `json:"source"`
}

func (e AlphaVantageEarnings) Provenance() Provenance {
	return Provenance{Source: e.Source, LastUpdated: e.LastUpdated}
}

// AlphaVantageArticle is a news article with Alpha Vantage sentiment.
type AlphaVantageArticle struct {
	Title                 string    `json:"title"`
	URL                   string    `json:"url"`
	TimePublished         string    `json:"time_published"`
	Authors               []string  `json:"authors"`
	Summary               string    `json:"summary"`
	Source                string    `json:"source"`
	OverallSentimentScore FlexFloat `json:"overall_sentiment_score"`
	OverallSentimentLabel string    `json:"overall_sentiment_label"`
}

// AlphaVantageNews is a news feed for a symbol.
type AlphaVantageNews struct {
	Symbol      string                `json:"symbol"`
	News        []AlphaVantageArticle `json:"news"`
	LastUpdated string                `json:"last_updated"`
	Source      string                `json:"source"`
}

func (n AlphaVantageNews) Provenance() Provenance {
	return Provenance{Source: n.Source, LastUpdated: n.LastUpdated}
}
