package entity

// DashboardResponse is the aggregate payload behind the main dashboard view.
type DashboardResponse struct {
	Stocks    []StockData `json:"stocks"`
	News      []NewsItem  `json:"news"`
	Signals   []Signal    `json:"signals"`
	Timestamp string      `json:"timestamp"`
}

// SignalFor returns the signal generated for ticker, if any.
func (d *DashboardResponse) SignalFor(ticker string) (Signal, bool) {
	if d == nil {
		return Signal{}, false
	}
	for _, s := range d.Signals {
		if s.Ticker == ticker {
			return s, true
		}
	}
	return Signal{}, false
}

// HealthStatus is the backend liveness report.
type HealthStatus struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Version   string   `json:"version"`
	Features  []string `json:"features"`
}
