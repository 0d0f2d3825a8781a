package service

import (
	"fmt"
	"strings"

	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/utils"
)

var stockColumns = []string{"Ticker", "Price", "1D", "5D", "RSI", "MACD", "Trend", "Volume", "Signal"}

// StockGridView renders the portfolio table. Every configured ticker the
// backend returned is shown.
func (s *DashboardService) StockGridView() panel.View {
	st := s.dashboard.Snapshot()
	v := panel.View{Title: "Portfolio", Loading: st.Loading}
	if st.Err != nil {
		v.Error = s.ErrorMessage()
		return v
	}
	if !st.HasData || st.Data == nil {
		return v
	}

	d := st.Data
	rows := make([][]string, 0, len(d.Stocks))
	for _, stock := range d.Stocks {
		signal := "-"
		if sig, ok := d.SignalFor(stock.Ticker); ok {
			signal = sig.Action()
		}
		rows = append(rows, []string{
			stock.Ticker,
			utils.FormatPrice(stock.Price),
			utils.FormatPercentage(stock.Change1D),
			utils.FormatPercentage(stock.Change5D),
			rsiLabel(stock),
			utils.FormatNumber(stock.MACD, 2),
			stock.Trend,
			utils.FormatVolume(stock.Volume),
			signal,
		})
	}
	v.Table = &panel.Table{Columns: stockColumns, Rows: rows, Total: len(rows)}
	if d.Timestamp != "" {
		v.LastUpdated = utils.FormatDate(d.Timestamp)
	}
	return v
}

// SelectedStockView renders the technicals of the selected stock.
func (s *DashboardService) SelectedStockView() panel.View {
	symbol := s.Selected()
	st := s.dashboard.Snapshot()
	if symbol == "" || !st.HasData || st.Data == nil {
		return panel.View{}
	}
	for _, stock := range st.Data.Stocks {
		if stock.Ticker != symbol {
			continue
		}
		v := panel.View{
			Title: stock.Ticker,
			Cards: []panel.Card{
				{Label: "Price", Value: utils.FormatPrice(stock.Price)},
				{Label: "1D", Value: utils.FormatPercentage(stock.Change1D), Tone: panel.ToneOf(stock.Change1D)},
				{Label: "5D", Value: utils.FormatPercentage(stock.Change5D), Tone: panel.ToneOf(stock.Change5D)},
				{Label: "RSI", Value: rsiLabel(stock)},
				{Label: "MACD / Signal", Value: utils.FormatNumber(stock.MACD, 2) + " / " + utils.FormatNumber(stock.MACDSignal, 2), Tone: panel.ToneOf(stock.MACD - stock.MACDSignal)},
				{Label: "EMA 20", Value: utils.FormatPrice(stock.EMA20)},
				{Label: "Bollinger", Value: utils.FormatPrice(stock.BollingerLower) + " - " + utils.FormatPrice(stock.BollingerUpper)},
				{Label: "ATR", Value: utils.FormatNumber(stock.ATR, 2)},
				{Label: "Volume", Value: utils.FormatVolume(stock.Volume)},
			},
		}
		if stock.Timestamp != "" {
			v.LastUpdated = utils.FormatDate(stock.Timestamp)
		}
		if sig, ok := st.Data.SignalFor(stock.Ticker); ok {
			v.Notes = append(v.Notes, sig.Reasoning...)
		}
		return v
	}
	return panel.View{Title: symbol, Notes: []string{"No data for " + symbol + "."}}
}

// SignalsView renders one card per AI signal with its reasoning as notes.
func (s *DashboardService) SignalsView() panel.View {
	st := s.dashboard.Snapshot()
	v := panel.View{Title: "Signals", Loading: st.Loading}
	if st.Err != nil || !st.HasData || st.Data == nil {
		return v
	}
	for _, sig := range st.Data.Signals {
		v.Cards = append(v.Cards, panel.Card{
			Label: sig.Ticker,
			Value: sig.Action(),
			Tone:  signalTone(sig),
		})
		if len(sig.Signals) > 0 {
			v.Notes = append(v.Notes, fmt.Sprintf("%s: %s", sig.Ticker, strings.Join(sig.Signals, ", ")))
		}
	}
	if len(v.Cards) == 0 {
		v.Notes = []string{"No signals generated."}
	}
	return v
}

// NewsView renders the capped news list with relative ages.
func (s *DashboardService) NewsView() panel.View {
	st := s.dashboard.Snapshot()
	v := panel.View{Title: "Market News", Loading: st.Loading}
	if st.Err != nil || !st.HasData || st.Data == nil {
		return v
	}
	now := s.now()
	entries := make([]panel.NewsEntry, 0, len(st.Data.News))
	for _, item := range st.Data.News {
		sentiment := item.Sentiment
		if sentiment != "" && item.Confidence > 0 {
			sentiment = fmt.Sprintf("%s (%s)", sentiment, utils.FormatNumber(item.Confidence*100, 0)+"%")
		}
		entries = append(entries, panel.NewsEntry{
			Title:     item.Title,
			URL:       item.URL,
			Source:    item.Source,
			Published: utils.FormatRelativeDate(item.PublishedAt, now),
			Summary:   utils.Truncate(item.Content, 200),
			Sentiment: sentiment,
			Tone:      panel.SentimentTone(item.Sentiment),
		})
	}
	v.News = panel.CapNews(entries)
	if len(entries) == 0 {
		v.Notes = []string{"No news available."}
	}
	return v
}

func rsiLabel(stock entity.StockData) string {
	rsi := utils.FormatNumber(stock.RSI, 1)
	if stock.RSIStatus == "" {
		return rsi
	}
	return rsi + " " + stock.RSIStatus
}

func signalTone(sig entity.Signal) panel.Tone {
	switch sig.Action() {
	case "BUY":
		return panel.TonePositive
	case "SELL":
		return panel.ToneNegative
	default:
		return panel.ToneNeutral
	}
}
