package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-stock-dashboard/internal/dashboard/config"
	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/logger"
)

// DashboardFetch is a started aggregate fetch; see DashboardService.Begin.
type DashboardFetch struct {
	ctx     context.Context
	ticket  panel.Ticket
	tickers []string
	limit   int
	repo    repository.MarketAPIRepository
}

// DashboardResult is the outcome of DashboardFetch.Run.
type DashboardResult struct {
	ticket    panel.Ticket
	Dashboard *entity.DashboardResponse
	Err       error
}

func (f DashboardFetch) Run() DashboardResult {
	d, err := f.repo.GetDashboard(f.ctx, f.tickers, f.limit)
	return DashboardResult{ticket: f.ticket, Dashboard: d, Err: err}
}

// DashboardService holds the state of one dashboard screen: the aggregate
// payload, the selected stock and the open provider overlays.
type DashboardService struct {
	repo     repository.MarketAPIRepository
	registry *panel.Registry
	cfg      config.Dashboard
	log      *logger.Logger
	now      func() time.Time

	dashboard panel.Resource[*entity.DashboardResponse]

	mu       sync.Mutex
	selected string
	overlays map[string]*panel.Panel
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo repository.MarketAPIRepository, registry *panel.Registry, cfg config.Dashboard, log *logger.Logger) *DashboardService {
	if len(cfg.Tickers) == 0 {
		cfg.Tickers = common.DefaultTickers
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = common.DefaultNewsLimit
	}
	if cfg.DefaultAmount <= 0 {
		cfg.DefaultAmount = common.DefaultCurrencyInput
	}
	return &DashboardService{
		repo:     repo,
		registry: registry,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		overlays: make(map[string]*panel.Panel),
	}
}

func (s *DashboardService) Tickers() []string { return s.cfg.Tickers }

func (s *DashboardService) Registry() *panel.Registry { return s.registry }

// Begin starts a dashboard fetch. Run it on any goroutine and hand the
// result to Apply.
func (s *DashboardService) Begin(ctx context.Context) DashboardFetch {
	fetchCtx, ticket := s.dashboard.Begin(ctx)
	return DashboardFetch{ctx: fetchCtx, ticket: ticket, tickers: s.cfg.Tickers, limit: s.cfg.NewsLimit, repo: s.repo}
}

// Apply records r unless a newer dashboard fetch has started.
func (s *DashboardService) Apply(r DashboardResult) bool {
	if r.Err != nil {
		s.log.Warn("Failed to load dashboard", logger.ErrorField(r.Err))
	}
	return s.dashboard.Apply(r.ticket, r.Dashboard, r.Err)
}

// Load fetches the dashboard synchronously. It is also the retry action.
func (s *DashboardService) Load(ctx context.Context) panel.State[*entity.DashboardResponse] {
	s.Apply(s.Begin(ctx).Run())
	return s.dashboard.Snapshot()
}

func (s *DashboardService) State() panel.State[*entity.DashboardResponse] {
	return s.dashboard.Snapshot()
}

// ErrorMessage is the display message of the last failed load, or "".
func (s *DashboardService) ErrorMessage() string {
	st := s.dashboard.Snapshot()
	if st.Err == nil {
		return ""
	}
	return repository.ErrorMessage(st.Err)
}

// Select records the symbol that overlays opened afterwards default to.
func (s *DashboardService) Select(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = repository.CleanTicker(symbol)
}

func (s *DashboardService) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// OverlaySymbol is the symbol a newly opened overlay starts with.
func (s *DashboardService) OverlaySymbol() string {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()
	switch {
	case selected != "":
		return selected
	case s.cfg.DefaultSymbol != "":
		return repository.CleanTicker(s.cfg.DefaultSymbol)
	default:
		return repository.CleanTicker(s.cfg.Tickers[0])
	}
}

// ToggleOverlay opens the provider's panel, or closes it when already open.
// Opening returns the panel's initial fetch.
func (s *DashboardService) ToggleOverlay(ctx context.Context, providerID string) (panel.Fetch, bool, error) {
	provider, ok := s.registry.Provider(providerID)
	if !ok {
		return panel.Fetch{}, false, fmt.Errorf("unknown provider %q", providerID)
	}

	symbol := s.OverlaySymbol()

	s.mu.Lock()
	if p, open := s.overlays[providerID]; open {
		delete(s.overlays, providerID)
		s.mu.Unlock()
		p.Close()
		return panel.Fetch{}, false, nil
	}
	p := panel.New(provider, panel.Request{Symbol: symbol, Amount: s.cfg.DefaultAmount})
	s.overlays[providerID] = p
	s.mu.Unlock()

	return p.Fetch(ctx), true, nil
}

// Overlay returns the open panel for providerID.
func (s *DashboardService) Overlay(providerID string) (*panel.Panel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.overlays[providerID]
	return p, ok
}

// OpenOverlays lists open panels in registry order.
func (s *DashboardService) OpenOverlays() []*panel.Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*panel.Panel, 0, len(s.overlays))
	for _, provider := range s.registry.Providers() {
		if p, ok := s.overlays[provider.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Close aborts every in-flight fetch.
func (s *DashboardService) Close() {
	s.dashboard.Cancel()
	for _, p := range s.OpenOverlays() {
		p.Close()
	}
}
