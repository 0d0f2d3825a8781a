package entity

// StockData is one portfolio position's latest technical snapshot.
type StockData struct {
	Ticker         string  `json:"ticker"`
	Price          float64 `json:"price"`
	Change1D       float64 `json:"change_1d"`
	Change5D       float64 `json:"change_5d"`
	RSI            float64 `json:"rsi"`
	RSIStatus      string  `json:"rsi_status"`
	MACD           float64 `json:"macd"`
	MACDSignal     float64 `json:"macd_signal"`
	EMA20          float64 `json:"ema_20"`
	BollingerUpper float64 `json:"bb_upper"`
	BollingerLower float64 `json:"bb_lower"`
	ATR            float64 `json:"atr"`
	Trend          string  `json:"trend"`
	Volume         float64 `json:"volume"`
	Timestamp      string  `json:"timestamp"`
}
