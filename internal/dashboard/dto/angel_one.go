package dto

import "sort"

const (
	DefaultHistoricalInterval = "1d"
	DefaultHistoricalPeriod   = "1mo"
)

// HistoricalParams selects an Angel One candle range.
type HistoricalParams struct {
	Interval string
	Period   string
}

func (p HistoricalParams) WithDefaults() HistoricalParams {
	if p.Interval == "" {
		p.Interval = DefaultHistoricalInterval
	}
	if p.Period == "" {
		p.Period = DefaultHistoricalPeriod
	}
	return p
}

// AngelOneStatus reports whether the Angel One integration is usable.
type AngelOneStatus struct {
	Enabled          bool   `json:"enabled"`
	APIConfigured    bool   `json:"api_configured"`
	ClientConfigured bool   `json:"client_configured"`
	LastUpdated      string `json:"last_updated"`
	Source           string `json:"source"`
}

func (s AngelOneStatus) Provenance() Provenance {
	return Provenance{Source: s.Source, LastUpdated: s.LastUpdated}
}

// AngelOneQuote is a live NSE/BSE quote.
type AngelOneQuote struct {
	Symbol        string    `json:"symbol"`
	Price         FlexFloat `json:"price"`
	Open          FlexFloat `json:"open"`
	High          FlexFloat `json:"high"`
	Low           FlexFloat `json:"low"`
	Close         FlexFloat `json:"close"`
	Volume        FlexFloat `json:"volume"`
	Change        FlexFloat `json:"change"`
	ChangePercent FlexFloat `json:"change_percent"`
	MarketCap     FlexFloat `json:"market_cap"`
	Currency      string    `json:"currency"`
	Exchange      string    `json:"exchange"`
	LastUpdated   string    `json:"last_updated"`
	Source        string    `json:"source"`
}

func (q AngelOneQuote) Provenance() Provenance {
	return Provenance{Source: q.Source, LastUpdated: q.LastUpdated}
}

// AngelOneHistorical is a candle series.
type AngelOneHistorical struct {
	Symbol      string `json:"symbol"`
	Interval    string `json:"interval"`
	Period      string `json:"period"`
	Data        []Bar  `json:"data"`
	Count       int    `json:"count"`
	LastUpdated string `json:"last_updated"`
	Source      string `json:"source"`
}

func (h AngelOneHistorical) Provenance() Provenance {
	return Provenance{Source: h.Source, LastUpdated: h.LastUpdated}
}

// IndexQuote is the level of one market index.
type IndexQuote struct {
	Price         FlexFloat `json:"price"`
	Change        FlexFloat `json:"change"`
	ChangePercent FlexFloat `json:"change_percent"`
	LastUpdated   string    `json:"last_updated"`
}

// AngelOneIndices maps index names (NIFTY 50, SENSEX, ...) to their levels.
type AngelOneIndices struct {
	Indices     map[string]IndexQuote `json:"indices"`
	LastUpdated string                `json:"last_updated"`
	Source      string                `json:"source"`
}

func (i AngelOneIndices) Provenance() Provenance {
	return Provenance{Source: i.Source, LastUpdated: i.LastUpdated}
}

// Names returns the index names in a stable order.
func (i AngelOneIndices) Names() []string {
	names := make([]string, 0, len(i.Indices))
	for name := range i.Indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExchangeStatus is the trading state of one exchange.
type ExchangeStatus struct {
	IsOpen      bool   `json:"is_open"`
	Exchange    string `json:"exchange"`
	LastUpdated string `json:"last_updated"`
}

// AngelOneMarketStatus reports NSE and BSE trading state.
type AngelOneMarketStatus struct {
	NSE         ExchangeStatus `json:"nse"`
	BSE         ExchangeStatus `json:"bse"`
	LastUpdated string         `json:"last_updated"`
	Source      string         `json:"source"`
}

func (m AngelOneMarketStatus) Provenance() Provenance {
	return Provenance{Source: m.Source, LastUpdated: m.LastUpdated}
}
