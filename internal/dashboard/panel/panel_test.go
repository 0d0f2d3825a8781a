package panel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/pkg/config"
	"golang-stock-dashboard/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository overrides the calls a test needs; anything else panics.
type fakeRepository struct {
	repository.MarketAPIRepository

	quote    func(ctx context.Context, symbol string) (*dto.AlphaVantageQuote, error)
	daily    func(ctx context.Context, symbol string) (*dto.AlphaVantageDaily, error)
	news     func(ctx context.Context, symbol string) (*dto.AlphaVantageNews, error)
	convert  func(ctx context.Context, params dto.ConvertParams) (*dto.CurrencyConversion, error)
	indices  func(ctx context.Context) (*dto.AngelOneIndices, error)
	calls    []string
	lastConv dto.ConvertParams
}

func (f *fakeRepository) GetAlphaVantageQuote(ctx context.Context, symbol string) (*dto.AlphaVantageQuote, error) {
	f.calls = append(f.calls, "quote:"+symbol)
	return f.quote(ctx, symbol)
}

func (f *fakeRepository) GetAlphaVantageDaily(ctx context.Context, symbol string, _ dto.DailyParams) (*dto.AlphaVantageDaily, error) {
	f.calls = append(f.calls, "daily:"+symbol)
	return f.daily(ctx, symbol)
}

func (f *fakeRepository) GetAlphaVantageNews(ctx context.Context, symbol string, _ int) (*dto.AlphaVantageNews, error) {
	return f.news(ctx, symbol)
}

func (f *fakeRepository) ConvertCurrency(ctx context.Context, params dto.ConvertParams) (*dto.CurrencyConversion, error) {
	f.lastConv = params
	return f.convert(ctx, params)
}

func (f *fakeRepository) GetAngelOneIndices(ctx context.Context) (*dto.AngelOneIndices, error) {
	return f.indices(ctx)
}

func bars(n int) []dto.Bar {
	out := make([]dto.Bar, n)
	for i := range out {
		out[i] = dto.Bar{Date: fmt.Sprintf("2024-05-%02d", n-i), Close: float64(100 + i)}
	}
	return out
}

func TestResource_StaleApplyIsDiscarded(t *testing.T) {
	var r Resource[string]

	ctx1, t1 := r.Begin(context.Background())
	_, t2 := r.Begin(context.Background())

	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.True(t, r.Apply(t2, "fresh", nil))
	assert.False(t, r.Apply(t1, "stale", nil))

	st := r.Snapshot()
	assert.Equal(t, "fresh", st.Data)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestResource_BeginClearsErrorKeepsData(t *testing.T) {
	var r Resource[int]
	r.Load(context.Background(), func(context.Context) (int, error) { return 7, nil })
	r.Load(context.Background(), func(context.Context) (int, error) { return 0, errors.New("boom") })

	st := r.Snapshot()
	assert.EqualError(t, st.Err, "boom")
	assert.Equal(t, 7, st.Data)

	r.Begin(context.Background())
	st = r.Snapshot()
	assert.True(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestResource_TicketFromAnotherResourceIsRejected(t *testing.T) {
	var closed, reopened Resource[string]

	_, old := closed.Begin(context.Background())
	closed.Cancel()
	_, current := reopened.Begin(context.Background())

	assert.False(t, reopened.Apply(old, "from closed resource", context.Canceled))
	st := reopened.Snapshot()
	assert.True(t, st.Loading)
	assert.NoError(t, st.Err)

	assert.True(t, reopened.Apply(current, "fresh", nil))
	assert.Equal(t, "fresh", reopened.Snapshot().Data)
}

func TestPanel_ConcurrentSetTabNewestTicketMatchesActiveTab(t *testing.T) {
	repo := &fakeRepository{
		quote: func(_ context.Context, symbol string) (*dto.AlphaVantageQuote, error) {
			return &dto.AlphaVantageQuote{Symbol: symbol, Price: 1}, nil
		},
		daily: func(_ context.Context, symbol string) (*dto.AlphaVantageDaily, error) {
			return &dto.AlphaVantageDaily{Symbol: symbol, Data: bars(2)}, nil
		},
	}
	p := New(AlphaVantage(repo), Request{Symbol: "IBM"})

	const n = 50
	fetches := make([]Fetch, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		tab := "quote"
		if i%2 == 1 {
			tab = "daily"
		}
		wg.Add(1)
		go func(i int, tab string) {
			defer wg.Done()
			f, err := p.SetTab(context.Background(), tab)
			assert.NoError(t, err)
			fetches[i] = f
		}(i, tab)
	}
	wg.Wait()

	applied := 0
	for _, f := range fetches {
		if p.Apply(f.Run()) {
			applied++
		}
	}

	assert.Equal(t, 1, applied)
	snap := p.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, snap.ActiveTab, snap.Data.TabID)
	assert.False(t, p.View().Empty())
}

func TestPanel_TabSwitchDropsStaleResponse(t *testing.T) {
	quoteStarted := make(chan struct{})
	repo := &fakeRepository{
		quote: func(ctx context.Context, symbol string) (*dto.AlphaVantageQuote, error) {
			close(quoteStarted)
			<-ctx.Done()
			return &dto.AlphaVantageQuote{Symbol: symbol, Price: 1}, nil
		},
		daily: func(ctx context.Context, symbol string) (*dto.AlphaVantageDaily, error) {
			return &dto.AlphaVantageDaily{Symbol: symbol, Data: bars(3), Source: "Alpha Vantage"}, nil
		},
	}
	p := New(AlphaVantage(repo), Request{Symbol: "ibm"})

	quoteFetch := p.Fetch(context.Background())
	done := make(chan Result)
	go func() { done <- quoteFetch.Run() }()
	<-quoteStarted

	dailyFetch, err := p.SetTab(context.Background(), "daily")
	require.NoError(t, err)

	stale := <-done
	assert.True(t, p.Apply(dailyFetch.Run()))
	assert.False(t, p.Apply(stale))

	snap := p.Snapshot()
	assert.Equal(t, "daily", snap.ActiveTab)
	assert.Equal(t, "daily", snap.Data.TabID)

	v := p.View()
	assert.Equal(t, "IBM Daily", v.Title)
	assert.Equal(t, "Alpha Vantage", v.Source)
	require.NotNil(t, v.Table)
	assert.Len(t, v.Table.Rows, 3)
}

func TestPanel_StaleResponseArrivingLastIsIgnored(t *testing.T) {
	repo := &fakeRepository{
		quote: func(_ context.Context, symbol string) (*dto.AlphaVantageQuote, error) {
			return &dto.AlphaVantageQuote{Symbol: symbol}, nil
		},
		daily: func(_ context.Context, symbol string) (*dto.AlphaVantageDaily, error) {
			return &dto.AlphaVantageDaily{Symbol: symbol}, nil
		},
	}
	p := New(AlphaVantage(repo), Request{Symbol: "IBM"})

	first := p.Fetch(context.Background())
	second, err := p.SetTab(context.Background(), "daily")
	require.NoError(t, err)

	assert.True(t, p.Apply(second.Run()))
	assert.False(t, p.Apply(first.Run()))
	assert.Equal(t, "daily", p.Snapshot().Data.TabID)
}

func TestPanel_ErrorDetailBecomesPanelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"symbol not found"}`))
	}))
	defer srv.Close()

	repo := repository.NewMarketAPIRepository(config.API{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger.NewNop())
	p := New(AlphaVantage(repo), Request{Symbol: "NOPE"})

	snap := p.Load(context.Background())
	assert.False(t, snap.Loading)
	assert.Equal(t, "symbol not found", snap.Error())
	assert.Equal(t, "symbol not found", p.View().Error)
}

func TestPanel_UnknownTab(t *testing.T) {
	p := New(Currency(&fakeRepository{}), Request{})
	_, err := p.SetTab(context.Background(), "history")
	assert.ErrorIs(t, err, ErrUnknownTab)
	assert.Equal(t, "rate", p.Snapshot().ActiveTab)
}

func TestPanel_SetSymbolCleansAndRefetches(t *testing.T) {
	repo := &fakeRepository{
		quote: func(_ context.Context, symbol string) (*dto.AlphaVantageQuote, error) {
			return &dto.AlphaVantageQuote{Symbol: symbol}, nil
		},
	}
	p := New(AlphaVantage(repo), Request{Symbol: "IBM"})
	p.Load(context.Background())
	p.Apply(p.SetSymbol(context.Background(), `"tcs.ns"`).Run())

	assert.Equal(t, []string{"quote:IBM", "quote:TCS.NS"}, repo.calls)
	assert.Equal(t, "TCS.NS Quote", p.View().Title)
}

func TestPanel_SetAmountFeedsConversion(t *testing.T) {
	repo := &fakeRepository{
		convert: func(_ context.Context, params dto.ConvertParams) (*dto.CurrencyConversion, error) {
			return &dto.CurrencyConversion{
				OriginalAmount:    dto.FlexFloat(params.Amount),
				OriginalCurrency:  "USD",
				ConvertedAmount:   dto.FlexFloat(params.Amount * 83),
				ConvertedCurrency: "INR",
				FormattedAmount:   "₹20.75K",
				ExchangeRate:      83,
				LastUpdated:       "2024-05-10T10:00:00",
			}, nil
		},
	}
	p := New(Currency(repo), Request{Amount: 100})
	f, err := p.SetTab(context.Background(), "convert")
	require.NoError(t, err)
	p.Apply(f.Run())
	p.Apply(p.SetAmount(context.Background(), 250).Run())

	assert.Equal(t, 250.0, repo.lastConv.Amount)
	v := p.View()
	assert.Equal(t, "USD to INR", v.Title)
	assert.Equal(t, "$250.00", v.Cards[0].Value)
	assert.Equal(t, "₹20.75K", v.Cards[1].Value)
	assert.Equal(t, "May 10, 2024, 10:00 AM", v.LastUpdated)
	assert.Empty(t, v.Source)
}

func TestRender_CapsRowsAndNews(t *testing.T) {
	daily := renderAlphaDaily(&dto.AlphaVantageDaily{Symbol: "IBM", Data: bars(25)})
	require.NotNil(t, daily.Table)
	assert.Len(t, daily.Table.Rows, 10)
	assert.Equal(t, 25, daily.Table.Total)
	assert.True(t, daily.Table.Truncated())

	articles := make([]dto.AlphaVantageArticle, 8)
	for i := range articles {
		articles[i] = dto.AlphaVantageArticle{Title: fmt.Sprintf("story %d", i), OverallSentimentLabel: "Bullish"}
	}
	news := renderAlphaNews(&dto.AlphaVantageNews{Symbol: "IBM", News: articles})
	assert.Len(t, news.News, 5)
	assert.Equal(t, TonePositive, news.News[0].Tone)
}

func TestRender_Indices(t *testing.T) {
	repo := &fakeRepository{
		indices: func(context.Context) (*dto.AngelOneIndices, error) {
			return &dto.AngelOneIndices{
				Indices: map[string]dto.IndexQuote{
					"SENSEX":   {Price: 73000, Change: -120.5, ChangePercent: -0.16},
					"NIFTY 50": {Price: 22100.25, Change: 35, ChangePercent: 0.16},
				},
				Source: "Angel One",
			}, nil
		},
	}
	p := New(AngelOne(repo), Request{})
	f, err := p.SetTab(context.Background(), "indices")
	require.NoError(t, err)
	p.Apply(f.Run())

	v := p.View()
	require.NotNil(t, v.Table)
	assert.Equal(t, []string{"NIFTY 50", "22,100.25", "+35.00", "+0.16%"}, v.Table.Rows[0])
	assert.Equal(t, []string{"SENSEX", "73,000.00", "-120.50", "-0.16%"}, v.Table.Rows[1])
	assert.Equal(t, "Angel One", v.Source)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(&fakeRepository{})
	require.Len(t, reg.Providers(), 3)

	av, ok := reg.Provider(AlphaVantageID)
	require.True(t, ok)
	assert.Equal(t, []string{"quote", "daily", "intraday", "indicators", "overview", "earnings", "news"}, av.TabIDs())

	ao, ok := reg.Provider(AngelOneID)
	require.True(t, ok)
	assert.Equal(t, []string{"status", "quote", "historical", "indices", "market"}, ao.TabIDs())

	cur, ok := reg.Provider(CurrencyID)
	require.True(t, ok)
	assert.Equal(t, []string{"rate", "convert", "format"}, cur.TabIDs())

	_, ok = reg.Provider("bloomberg")
	assert.False(t, ok)
}
