package dto

import "strings"

const (
	DefaultFromCurrency     = "USD"
	DefaultToCurrency       = "INR"
	DefaultFormatCurrency   = "INR"
	DefaultCurrencyDecimals = 2
)

// ConvertParams describes a conversion request.
type ConvertParams struct {
	Amount float64
	From   string
	To     string
}

func (p ConvertParams) WithDefaults() ConvertParams {
	p.From = strings.ToUpper(strings.TrimSpace(p.From))
	p.To = strings.ToUpper(strings.TrimSpace(p.To))
	if p.From == "" {
		p.From = DefaultFromCurrency
	}
	if p.To == "" {
		p.To = DefaultToCurrency
	}
	return p
}

// FormatParams describes a server-side formatting request. A negative
// Decimals selects DefaultCurrencyDecimals.
type FormatParams struct {
	Amount   float64
	Currency string
	Decimals int
}

// NewFormatParams returns params for amount with the default currency and precision.
func NewFormatParams(amount float64) FormatParams {
	return FormatParams{Amount: amount, Currency: DefaultFormatCurrency, Decimals: DefaultCurrencyDecimals}
}

func (p FormatParams) WithDefaults() FormatParams {
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = DefaultFormatCurrency
	}
	if p.Decimals < 0 {
		p.Decimals = DefaultCurrencyDecimals
	}
	return p
}

// CurrencyRate is the cached USD to INR rate held by the backend.
type CurrencyRate struct {
	USDToINRRate         FlexFloat `json:"usd_to_inr_rate"`
	LastUpdated          string    `json:"last_updated"`
	CacheDurationSeconds int       `json:"cache_duration_seconds"`
	APIKeyConfigured     bool      `json:"api_key_configured"`
	Source               string    `json:"source"`
}

func (r CurrencyRate) Provenance() Provenance {
	return Provenance{Source: r.Source, LastUpdated: r.LastUpdated}
}

// CurrencyConversion is the result of converting an amount between currencies.
type CurrencyConversion struct {
	OriginalAmount    FlexFloat `json:"original_amount"`
	OriginalCurrency  string    `json:"original_currency"`
	ConvertedAmount   FlexFloat `json:"converted_amount"`
	ConvertedCurrency string    `json:"converted_currency"`
	FormattedAmount   string    `json:"formatted_amount"`
	ExchangeRate      FlexFloat `json:"exchange_rate"`
	LastUpdated       string    `json:"last_updated"`
	Source            string    `json:"source"`
}

func (c CurrencyConversion) Provenance() Provenance {
	return Provenance{Source: c.Source, LastUpdated: c.LastUpdated}
}

// CurrencyFormat is an amount formatted by the backend.
type CurrencyFormat struct {
	Amount      FlexFloat `json:"amount"`
	Currency    string    `json:"currency"`
	Formatted   string    `json:"formatted"`
	Decimals    int       `json:"decimals"`
	LastUpdated string    `json:"last_updated"`
	Source      string    `json:"source"`
}

func (c CurrencyFormat) Provenance() Provenance {
	return Provenance{Source: c.Source, LastUpdated: c.LastUpdated}
}
