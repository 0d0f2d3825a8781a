package common

const (
	// Row and item caps applied by every panel renderer.
	MaxTableRows = 10
	MaxNewsItems = 5

	DefaultNewsLimit     = 5
	DefaultCurrencyInput = 100.0

	NotificationKeyPrefix = "dashboard:signal-notified:"
)

// DefaultTickers is the portfolio shown when none is configured.
var DefaultTickers = []string{"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS"}
