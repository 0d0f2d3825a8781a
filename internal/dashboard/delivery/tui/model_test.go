package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dashboardconfig "golang-stock-dashboard/internal/dashboard/config"
	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/config"
	"golang-stock-dashboard/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardBody = `{
	"stocks":[
		{"ticker":"TCS.NS","price":3890.5,"change_1d":1.2,"rsi":61,"trend":"Uptrend","volume":1250000},
		{"ticker":"INFY.NS","price":1450,"change_1d":-2,"rsi":28,"trend":"Downtrend","volume":800}
	],
	"news":[{"title":"Markets rally on earnings","source":"Mint","sentiment":"positive","confidence":0.8}],
	"signals":[{"ticker":"TCS.NS","signal":"BUY","signals":["MACD crossover"],"reasoning":["momentum"]}],
	"timestamp":"2024-05-10T12:00:00"
}`

func newBackend(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var amounts []string
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(dashboardBody))
	})
	mux.HandleFunc("/alpha-vantage/quote/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"symbol not found"}`))
	})
	mux.HandleFunc("/alpha-vantage/daily/", func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/alpha-vantage/daily/")
		_, _ = w.Write([]byte(`{"symbol":"` + symbol + `","data":[{"Date":"2024-05-10","Close":3890.5}],"source":"Alpha Vantage"}`))
	})
	mux.HandleFunc("/angel-one/status", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"enabled":true,"api_configured":true,"client_configured":false}`))
	})
	mux.HandleFunc("/currency/rate", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"usd_to_inr_rate":83.25,"cache_duration_seconds":3600}`))
	})
	mux.HandleFunc("/currency/convert", func(w http.ResponseWriter, r *http.Request) {
		amounts = append(amounts, r.URL.Query().Get("amount"))
		_, _ = w.Write([]byte(`{"original_amount":250,"original_currency":"USD","converted_amount":20812.5,"converted_currency":"INR","formatted_amount":"₹20.81K","exchange_rate":83.25}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &amounts
}

func newTestModel(t *testing.T) (Model, *[]string) {
	t.Helper()
	srv, amounts := newBackend(t)
	repo := repository.NewMarketAPIRepository(config.API{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger.NewNop())
	cfg := dashboardconfig.Dashboard{Tickers: []string{"TCS.NS", "INFY.NS"}, NewsLimit: 5, DefaultAmount: 100}
	svc := service.NewDashboardService(repo, panel.NewRegistry(repo), cfg, logger.NewNop())

	m := NewModel(context.Background(), svc, logger.NewNop())
	m = step(t, m, tea.WindowSizeMsg{Width: 200, Height: 80})
	m = step(t, m, m.Init()())
	return m, amounts
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadsDashboard(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()

	assert.Contains(t, out, "TCS.NS")
	assert.Contains(t, out, "₹3,891")
	assert.Contains(t, out, "Markets rally on earnings")
	assert.Contains(t, out, "BUY")
}

func TestModel_SelectForwardsSymbolToOverlay(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "INFY.NS", m.svc.Selected())

	m, cmd := press(t, m, runes("o"))
	require.NotNil(t, cmd)
	m = step(t, m, cmd())

	p, ok := m.svc.Overlay(panel.AngelOneID)
	require.True(t, ok)
	assert.Equal(t, "INFY.NS", p.Snapshot().Request.Symbol)
	assert.Contains(t, m.View(), "Client Configured")
}

func TestModel_TabSwitchIgnoresStaleResponse(t *testing.T) {
	m, _ := newTestModel(t)

	m, quoteCmd := press(t, m, runes("a"))
	require.NotNil(t, quoteCmd)
	m, dailyCmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, dailyCmd)

	m = step(t, m, dailyCmd())
	m = step(t, m, quoteCmd())

	p, ok := m.svc.Overlay(panel.AlphaVantageID)
	require.True(t, ok)
	snap := p.Snapshot()
	assert.Equal(t, "daily", snap.ActiveTab)
	assert.Equal(t, "daily", snap.Data.TabID)
	assert.NoError(t, snap.Err)
	assert.Contains(t, m.View(), "TCS.NS Daily")
}

func TestModel_PanelErrorShowsDetail(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := press(t, m, runes("a"))
	m = step(t, m, cmd())

	assert.Contains(t, m.View(), "Error: symbol not found")
}

func TestModel_AmountEditRefetches(t *testing.T) {
	m, amounts := newTestModel(t)

	m, cmd := press(t, m, runes("c"))
	m = step(t, m, cmd())
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(t, m, cmd())

	m, _ = press(t, m, runes("m"))
	for i := 0; i < 3; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m, _ = press(t, m, runes("250"))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = step(t, m, cmd())

	assert.Equal(t, []string{"100", "250"}, *amounts)
	assert.Contains(t, m.View(), "₹20.81K")
}

func TestModel_ToggleClosesOverlay(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, runes("c"))
	require.Len(t, m.svc.OpenOverlays(), 1)
	m, cmd := press(t, m, runes("c"))
	assert.Nil(t, cmd)
	assert.Empty(t, m.svc.OpenOverlays())
	assert.Equal(t, "", m.focus)
}

func TestModel_ReopenedOverlayIgnoresClosedOverlayResult(t *testing.T) {
	m, _ := newTestModel(t)

	m, closedCmd := press(t, m, runes("c"))
	require.NotNil(t, closedCmd)
	m, _ = press(t, m, runes("c"))
	m, reopenedCmd := press(t, m, runes("c"))
	require.NotNil(t, reopenedCmd)

	m = step(t, m, closedCmd())

	p, ok := m.svc.Overlay(panel.CurrencyID)
	require.True(t, ok)
	snap := p.Snapshot()
	assert.True(t, snap.Loading)
	assert.NoError(t, snap.Err)

	m = step(t, m, reopenedCmd())

	snap = p.Snapshot()
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
	assert.Equal(t, "rate", snap.Data.TabID)
	assert.NotContains(t, m.View(), "context canceled")
}

func TestStepTab_Wraps(t *testing.T) {
	p := panel.Currency(nil)
	assert.Equal(t, "format", stepTab(p, "rate", -1))
	assert.Equal(t, "rate", stepTab(p, "format", 1))
}

func TestRenderText(t *testing.T) {
	v := panel.View{Title: "TCS.NS Quote", Cards: []panel.Card{{Label: "Price", Value: "₹3,891"}}, Source: "Alpha Vantage"}

	out := RenderText("Alpha Vantage / Quote", v)

	assert.Contains(t, out, "Alpha Vantage / Quote")
	assert.Contains(t, out, "TCS.NS Quote")
	assert.Contains(t, out, "₹3,891")
	assert.Contains(t, out, "source: Alpha Vantage")

	out = RenderText("Quote", panel.View{Title: "Quote", Error: "symbol not found"})
	assert.Contains(t, out, "Error: symbol not found")
}
