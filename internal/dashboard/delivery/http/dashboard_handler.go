package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-stock-dashboard/internal/dashboard/config"
	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the server-rendered web dashboard.
type DashboardHandler struct {
	repo     repository.MarketAPIRepository
	registry *panel.Registry
	cfg      config.Dashboard
	logger   *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(repo repository.MarketAPIRepository, registry *panel.Registry, cfg config.Dashboard, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{repo: repo, registry: registry, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the dashboard routes to the Echo group.
func (h *DashboardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Dashboard)
	g.GET("/panels/:provider", h.Panel)
	g.GET("/healthz", h.Healthz)
	g.GET("/backend/health", h.BackendHealth)
}

type providerButton struct {
	ID   string
	Name string
	Open bool
	Href string
}

type tabLink struct {
	Label  string
	Href   string
	Active bool
}

type overlayPage struct {
	ID          string
	Name        string
	Symbol      string
	Amount      string
	ActiveTab   string
	Tabs        []tabLink
	View        panel.View
	NeedsSymbol bool
	NeedsAmount bool
}

type dashboardPage struct {
	Selected  string
	Tickers   []string
	Grid      panel.View
	Stock     panel.View
	Signals   panel.View
	News      panel.View
	Buttons   []providerButton
	Overlays  []overlayPage
	RetryHref string
	Rendered  string
}

// Dashboard renders the portfolio with the overlays listed in ?open=.
// ?symbol= selects a stock and becomes the overlays' default symbol.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	svc := service.NewDashboardService(h.repo, h.registry, h.cfg, h.logger)
	defer svc.Close()

	st := svc.Load(ctx)
	if symbol := c.QueryParam("symbol"); symbol != "" {
		svc.Select(symbol)
	}

	open := splitList(c.QueryParam("open"))
	for _, id := range open {
		f, opened, err := svc.ToggleOverlay(ctx, id)
		if err != nil {
			h.logger.WarnContext(ctx, "Ignoring unknown overlay", logger.StringField("provider", id))
			continue
		}
		if !opened {
			continue
		}
		if p, ok := svc.Overlay(id); ok {
			p.Apply(f.Run())
		}
	}

	page := dashboardPage{
		Selected:  svc.Selected(),
		Tickers:   svc.Tickers(),
		Grid:      svc.StockGridView(),
		Stock:     svc.SelectedStockView(),
		Signals:   svc.SignalsView(),
		News:      svc.NewsView(),
		RetryHref: c.Request().URL.RequestURI(),
		Rendered:  time.Now().Format("Jan 2, 2006, 3:04 PM"),
	}

	openSet := make(map[string]bool, len(open))
	for _, p := range svc.OpenOverlays() {
		openSet[p.Provider().ID] = true
	}
	for _, provider := range h.registry.Providers() {
		page.Buttons = append(page.Buttons, providerButton{
			ID:   provider.ID,
			Name: provider.Name,
			Open: openSet[provider.ID],
			Href: dashboardHref(page.Selected, toggled(openSet, provider.ID, h.registry)),
		})
	}
	for _, p := range svc.OpenOverlays() {
		page.Overlays = append(page.Overlays, overlayFor(p))
	}

	status := http.StatusOK
	if st.Err != nil {
		status = http.StatusBadGateway
	}
	return c.Render(status, "dashboard.html", page)
}

// Panel renders one provider tab. Query: tab, symbol, amount.
func (h *DashboardHandler) Panel(c echo.Context) error {
	ctx := c.Request().Context()
	provider, ok := h.registry.Provider(c.Param("provider"))
	if !ok {
		return c.Render(http.StatusNotFound, "error.html", echo.Map{"Message": "Unknown provider " + c.Param("provider")})
	}

	req := panel.Request{Symbol: c.QueryParam("symbol"), Amount: h.cfg.DefaultAmount}
	if req.Symbol == "" {
		req.Symbol = h.defaultSymbol()
	}
	if raw := c.QueryParam("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount < 0 {
			return c.Render(http.StatusBadRequest, "error.html", echo.Map{"Message": "Invalid amount " + raw})
		}
		req.Amount = amount
	}

	p := panel.New(provider, req)
	defer p.Close()

	tab := c.QueryParam("tab")
	if tab == "" {
		tab = provider.Tabs[0].ID()
	}
	f, err := p.SetTab(ctx, tab)
	if err != nil {
		return c.Render(http.StatusNotFound, "error.html", echo.Map{"Message": "Unknown tab " + tab})
	}
	p.Apply(f.Run())

	return c.Render(http.StatusOK, "panel.html", overlayFor(p))
}

// Healthz reports local liveness.
func (h *DashboardHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// BackendHealth proxies the backend's /health.
func (h *DashboardHandler) BackendHealth(c echo.Context) error {
	health, err := h.repo.GetHealth(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": repository.ErrorMessage(err)})
	}
	return c.JSON(http.StatusOK, health)
}

func (h *DashboardHandler) defaultSymbol() string {
	if h.cfg.DefaultSymbol != "" {
		return h.cfg.DefaultSymbol
	}
	if len(h.cfg.Tickers) > 0 {
		return h.cfg.Tickers[0]
	}
	return ""
}

func overlayFor(p *panel.Panel) overlayPage {
	snap := p.Snapshot()
	provider := p.Provider()
	amount := strconv.FormatFloat(snap.Request.Amount, 'f', -1, 64)

	active, _ := provider.Tab(snap.ActiveTab)
	page := overlayPage{
		ID:        provider.ID,
		Name:      provider.Name,
		Symbol:    snap.Request.Symbol,
		Amount:    amount,
		ActiveTab: snap.ActiveTab,
		View:      p.View(),
	}
	if active != nil {
		page.NeedsSymbol = active.Input() == panel.InputSymbol
		page.NeedsAmount = active.Input() == panel.InputAmount
	}
	for _, t := range provider.Tabs {
		q := url.Values{}
		q.Set("tab", t.ID())
		if snap.Request.Symbol != "" {
			q.Set("symbol", snap.Request.Symbol)
		}
		q.Set("amount", amount)
		page.Tabs = append(page.Tabs, tabLink{
			Label:  t.Label(),
			Href:   "/panels/" + provider.ID + "?" + q.Encode(),
			Active: t.ID() == snap.ActiveTab,
		})
	}
	return page
}

func dashboardHref(symbol string, open []string) string {
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	if len(open) > 0 {
		q.Set("open", strings.Join(open, ","))
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

// toggled returns the open overlay ids, in registry order, after toggling id.
func toggled(open map[string]bool, id string, registry *panel.Registry) []string {
	var out []string
	for _, p := range registry.Providers() {
		isOpen := open[p.ID]
		if p.ID == id {
			isOpen = !isOpen
		}
		if isOpen {
			out = append(out, p.ID)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
