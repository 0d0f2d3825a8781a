package panel

import (
	"context"
	"fmt"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/pkg/utils"
)

const AlphaVantageID = "alpha-vantage"

// AlphaVantage describes the quote/analytics provider.
func AlphaVantage(repo repository.MarketAPIRepository) Provider {
	return Provider{
		ID:   AlphaVantageID,
		Name: "Alpha Vantage",
		Tabs: []Tab{
			NewTab("quote", "Quote", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageQuote, error) {
					return repo.GetAlphaVantageQuote(ctx, req.Symbol)
				}, renderAlphaQuote),
			NewTab("daily", "Daily", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageDaily, error) {
					return repo.GetAlphaVantageDaily(ctx, req.Symbol, dto.DailyParams{})
				}, renderAlphaDaily),
			NewTab("intraday", "Intraday", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageIntraday, error) {
					return repo.GetAlphaVantageIntraday(ctx, req.Symbol, dto.IntradayParams{})
				}, renderAlphaIntraday),
			NewTab("indicators", "Indicators", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageIndicators, error) {
					return repo.GetAlphaVantageIndicators(ctx, req.Symbol, dto.IndicatorParams{})
				}, renderAlphaIndicators),
			NewTab("overview", "Overview", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageOverview, error) {
					return repo.GetAlphaVantageOverview(ctx, req.Symbol)
				}, renderAlphaOverview),
			NewTab("earnings", "Earnings", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageEarnings, error) {
					return repo.GetAlphaVantageEarnings(ctx, req.Symbol)
				}, renderAlphaEarnings),
			NewTab("news", "News", InputSymbol,
				func(ctx context.Context, req Request) (*dto.AlphaVantageNews, error) {
					return repo.GetAlphaVantageNews(ctx, req.Symbol, dto.DefaultAlphaNewsLimit)
				}, renderAlphaNews),
		},
	}
}

func renderAlphaQuote(q *dto.AlphaVantageQuote) View {
	cards := []Card{
		{Label: "Price", Value: utils.FormatPrice(q.Price)},
		{Label: "Change", Value: utils.FormatSignedNumber(q.Change, 2), Tone: ToneOf(q.Change)},
		{Label: "Change %", Value: utils.FormatPercentage(q.ChangePercent), Tone: ToneOf(q.ChangePercent)},
		{Label: "Open", Value: utils.FormatPrice(q.Open)},
		{Label: "High", Value: utils.FormatPrice(q.High)},
		{Label: "Low", Value: utils.FormatPrice(q.Low)},
		{Label: "Previous Close", Value: utils.FormatPrice(q.PreviousClose)},
		{Label: "Volume", Value: utils.FormatVolume(q.Volume)},
	}
	if q.MarketCap > 0 {
		cards = append(cards, Card{Label: "Market Cap", Value: utils.FormatCurrency(q.MarketCap)})
	}
	if q.LatestTradingDay != "" {
		cards = append(cards, Card{Label: "Trading Day", Value: utils.FormatDate(q.LatestTradingDay)})
	}
	return View{Title: q.Symbol + " Quote", Cards: cards}
}

func barRows(bars []dto.Bar) [][]string {
	rows := make([][]string, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, []string{
			utils.FormatDate(b.Date),
			utils.FormatPrice(b.Open),
			utils.FormatPrice(b.High),
			utils.FormatPrice(b.Low),
			utils.FormatPrice(b.Close),
			utils.FormatVolume(b.Volume),
		})
	}
	return rows
}

var barColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

func seriesCards(bars []dto.Bar) []Card {
	cards := []Card{{Label: "Bars", Value: fmt.Sprintf("%d", len(bars))}}
	if len(bars) > 0 {
		cards = append([]Card{{Label: "Latest Close", Value: utils.FormatPrice(bars[0].Close)}}, cards...)
	}
	return cards
}

func renderAlphaDaily(d *dto.AlphaVantageDaily) View {
	return View{
		Title: d.Symbol + " Daily",
		Cards: seriesCards(d.Data),
		Table: NewTable(barColumns, barRows(d.Data)),
	}
}

func renderAlphaIntraday(d *dto.AlphaVantageIntraday) View {
	cards := seriesCards(d.Data)
	if d.Interval != "" {
		cards = append(cards, Card{Label: "Interval", Value: d.Interval})
	}
	return View{
		Title: d.Symbol + " Intraday",
		Cards: cards,
		Table: NewTable(barColumns, barRows(d.Data)),
	}
}

func renderAlphaIndicators(d *dto.AlphaVantageIndicators) View {
	cols := d.Columns()
	rows := make([][]string, 0, len(d.Data))
	for _, r := range d.Data {
		row := []string{utils.FormatDate(r.Date)}
		for _, c := range cols {
			v, ok := r.Values[c]
			if !ok {
				row = append(row, utils.NotAvailable)
				continue
			}
			row = append(row, utils.FormatNumber(v, 2))
		}
		rows = append(rows, row)
	}
	return View{
		Title: d.Symbol + " Indicators",
		Cards: []Card{
			{Label: "Function", Value: d.Function},
			{Label: "Interval", Value: d.Interval},
			{Label: "Period", Value: fmt.Sprintf("%d", d.TimePeriod)},
			{Label: "Series", Value: d.SeriesType},
		},
		Table: NewTable(append([]string{"Date"}, cols...), rows),
	}
}

func renderAlphaOverview(o *dto.AlphaVantageOverview) View {
	currency := o.Currency
	if currency == "" {
		currency = dto.DefaultFormatCurrency
	}
	name := o.Name
	if name == "" {
		name = o.Symbol
	}
	v := View{
		Title: name,
		Cards: []Card{
			{Label: "Sector", Value: orNA(o.Sector)},
			{Label: "Industry", Value: orNA(o.Industry)},
			{Label: "Exchange", Value: orNA(o.Exchange)},
			{Label: "Market Cap", Value: utils.FormatCurrencyCode(o.MarketCapitalization.Float(), currency, 2)},
			{Label: "P/E", Value: utils.FormatNumber(o.PERatio.Float(), 2)},
			{Label: "EPS", Value: utils.FormatNumber(o.EPS.Float(), 2)},
			{Label: "Dividend Yield", Value: utils.FormatNumber(o.DividendYield.Float()*100, 2) + "%"},
			{Label: "Beta", Value: utils.FormatNumber(o.Beta.Float(), 2)},
			{Label: "52W High", Value: utils.FormatNumber(o.Week52High.Float(), 2)},
			{Label: "52W Low", Value: utils.FormatNumber(o.Week52Low.Float(), 2)},
		},
	}
	if o.Description != "" {
		v.Notes = []string{utils.Truncate(o.Description, 280)}
	}
	return v
}

func renderAlphaEarnings(e *dto.AlphaVantageEarnings) View {
	rows := make([][]string, 0, len(e.Earnings))
	for _, ev := range e.Earnings {
		rows = append(rows, []string{
			utils.FormatDate(ev.ReportDate),
			utils.FormatDate(ev.FiscalDateEnding),
			utils.FormatNumber(ev.Estimate.Float(), 2),
			orNA(ev.Currency),
		})
	}
	v := View{
		Title: e.Symbol + " Earnings",
		Table: NewTable([]string{"Report Date", "Fiscal Period End", "Estimate", "Currency"}, rows),
	}
	if len(rows) == 0 {
		v.Notes = []string{"No upcoming earnings reported."}
	}
	return v
}

func renderAlphaNews(n *dto.AlphaVantageNews) View {
	entries := make([]NewsEntry, 0, len(n.News))
	for _, a := range n.News {
		entries = append(entries, NewsEntry{
			Title:     a.Title,
			URL:       a.URL,
			Source:    a.Source,
			Published: utils.FormatDate(a.TimePublished),
			Summary:   utils.Truncate(a.Summary, 200),
			Sentiment: a.OverallSentimentLabel,
			Tone:      SentimentTone(a.OverallSentimentLabel),
		})
	}
	v := View{Title: n.Symbol + " News", News: CapNews(entries)}
	if len(entries) == 0 {
		v.Notes = []string{"No news available."}
	}
	return v
}

func orNA(s string) string {
	if s == "" {
		return utils.NotAvailable
	}
	return s
}
