package panel

import (
	"context"
	"fmt"
	"time"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/pkg/utils"
)

const CurrencyID = "currency"

// Currency describes the USD/INR conversion provider.
func Currency(repo repository.MarketAPIRepository) Provider {
	return Provider{
		ID:   CurrencyID,
		Name: "Currency",
		Tabs: []Tab{
			NewTab("rate", "Exchange Rate", InputNone,
				func(ctx context.Context, _ Request) (*dto.CurrencyRate, error) {
					return repo.GetCurrencyRate(ctx)
				}, renderCurrencyRate),
			NewTab("convert", "Convert", InputAmount,
				func(ctx context.Context, req Request) (*dto.CurrencyConversion, error) {
					return repo.ConvertCurrency(ctx, dto.ConvertParams{Amount: req.Amount})
				}, renderCurrencyConversion),
			NewTab("format", "Format", InputAmount,
				func(ctx context.Context, req Request) (*dto.CurrencyFormat, error) {
					return repo.FormatCurrency(ctx, dto.NewFormatParams(req.Amount))
				}, renderCurrencyFormat),
		},
	}
}

func renderCurrencyRate(r *dto.CurrencyRate) View {
	configured, tone := yesNo(r.APIKeyConfigured)
	return View{
		Title: "USD to INR",
		Cards: []Card{
			{Label: "Rate", Value: "₹" + utils.FormatNumber(r.USDToINRRate.Float(), 4)},
			{Label: "Cache Duration", Value: (time.Duration(r.CacheDurationSeconds) * time.Second).String()},
			{Label: "API Key Configured", Value: configured, Tone: tone},
		},
	}
}

func renderCurrencyConversion(c *dto.CurrencyConversion) View {
	converted := c.FormattedAmount
	if converted == "" {
		converted = utils.FormatCurrencyCode(c.ConvertedAmount.Float(), c.ConvertedCurrency, 2)
	}
	return View{
		Title: fmt.Sprintf("%s to %s", c.OriginalCurrency, c.ConvertedCurrency),
		Cards: []Card{
			{Label: "Amount", Value: utils.FormatCurrencyCode(c.OriginalAmount.Float(), c.OriginalCurrency, 2)},
			{Label: "Converted", Value: converted},
			{Label: "Exchange Rate", Value: utils.FormatNumber(c.ExchangeRate.Float(), 4)},
		},
	}
}

func renderCurrencyFormat(f *dto.CurrencyFormat) View {
	return View{
		Title: "Formatted " + f.Currency,
		Cards: []Card{
			{Label: "Amount", Value: utils.FormatNumber(f.Amount.Float(), f.Decimals)},
			{Label: "Formatted", Value: f.Formatted},
			{Label: "Currency", Value: f.Currency},
			{Label: "Decimals", Value: fmt.Sprintf("%d", f.Decimals)},
		},
	}
}
