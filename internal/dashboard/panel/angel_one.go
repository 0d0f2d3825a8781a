package panel

import (
	"context"
	"fmt"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/pkg/utils"
)

const AngelOneID = "angel-one"

// AngelOne describes the brokerage-data provider.
func AngelOne(repo repository.MarketAPIRepository) Provider {
	return Provider{
		ID:   AngelOneID,
		Name: "Angel One",
		Tabs: []Tab{
			NewTab("status", "Status", InputNone,
				func(ctx context.Context, _ Request) (*dto.AngelOneStatus, error) {
					return repo.GetAngelOneStatus(ctx)
				}, renderAngelStatus),
			NewTab("quote", "Quote", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AngelOneQuote, error) {
					return repo.GetAngelOneQuote(ctx, req.Symbol)
				}, renderAngelQuote),
			NewTab("historical", "Historical", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AngelOneHistorical, error) {
					return repo.GetAngelOneHistorical(ctx, req.Symbol, dto.HistoricalParams{})
				}, renderAngelHistorical),
			NewTab("indices", "Indices", InputNone,
				func(ctx context.Context, _ Request) (*dto.AngelOneIndices, error) {
					return repo.GetAngelOneIndices(ctx)
				}, renderAngelIndices),
			NewTab("market", "Market Status", InputNone,
				func(ctx context.Context, _ Request) (*dto.AngelOneMarketStatus, error) {
					return repo.GetAngelOneMarketStatus(ctx)
				}, renderAngelMarketStatus),
		},
	}
}

func renderAngelStatus(s *dto.AngelOneStatus) View {
	enabled, enabledTone := yesNo(s.Enabled)
	api, apiTone := yesNo(s.APIConfigured)
	client, clientTone := yesNo(s.ClientConfigured)
	return View{
		Title: "Angel One Status",
		Cards: []Card{
			{Label: "Enabled", Value: enabled, Tone: enabledTone},
			{Label: "API Configured", Value: api, Tone: apiTone},
			{Label: "Client Configured", Value: client, Tone: clientTone},
		},
	}
}

func renderAngelQuote(q *dto.AngelOneQuote) View {
	cards := []Card{
		{Label: "Price", Value: utils.FormatPrice(q.Price.Float())},
		{Label: "Change", Value: utils.FormatSignedNumber(q.Change.Float(), 2), Tone: ToneOf(q.Change.Float())},
		{Label: "Change %", Value: utils.FormatPercentage(q.ChangePercent.Float()), Tone: ToneOf(q.ChangePercent.Float())},
		{Label: "Open", Value: utils.FormatPrice(q.Open.Float())},
		{Label: "High", Value: utils.FormatPrice(q.High.Float())},
		{Label: "Low", Value: utils.FormatPrice(q.Low.Float())},
		{Label: "Close", Value: utils.FormatPrice(q.Close.Float())},
		{Label: "Volume", Value: utils.FormatVolume(q.Volume.Float())},
	}
	if q.MarketCap > 0 {
		cards = append(cards, Card{Label: "Market Cap", Value: utils.FormatCurrency(q.MarketCap.Float())})
	}
	if q.Exchange != "" {
		cards = append(cards, Card{Label: "Exchange", Value: q.Exchange})
	}
	return View{Title: q.Symbol + " Quote", Cards: cards}
}

func renderAngelHistorical(h *dto.AngelOneHistorical) View {
	count := h.Count
	if count == 0 {
		count = len(h.Data)
	}
	return View{
		Title: h.Symbol + " Historical",
		Cards: []Card{
			{Label: "Interval", Value: h.Interval},
			{Label: "Period", Value: h.Period},
			{Label: "Candles", Value: fmt.Sprintf("%d", count)},
		},
		Table: NewTable(barColumns, barRows(h.Data)),
	}
}

func renderAngelIndices(i *dto.AngelOneIndices) View {
	names := i.Names()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		q := i.Indices[name]
		rows = append(rows, []string{
			name,
			utils.FormatNumber(q.Price.Float(), 2),
			utils.FormatSignedNumber(q.Change.Float(), 2),
			utils.FormatPercentage(q.ChangePercent.Float()),
		})
	}
	return View{
		Title: "Market Indices",
		Table: NewTable([]string{"Index", "Level", "Change", "Change %"}, rows),
	}
}

func renderAngelMarketStatus(m *dto.AngelOneMarketStatus) View {
	return View{
		Title: "Market Status",
		Cards: []Card{exchangeCard("NSE", m.NSE), exchangeCard("BSE", m.BSE)},
	}
}

func exchangeCard(label string, s dto.ExchangeStatus) Card {
	if s.IsOpen {
		return Card{Label: label, Value: "Open", Tone: TonePositive}
	}
	return Card{Label: label, Value: "Closed", Tone: ToneNegative}
}
