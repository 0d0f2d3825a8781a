package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang-stock-dashboard/internal/dashboard/repository"
)

// ErrUnknownTab is returned when a tab id is not offered by the provider.
var ErrUnknownTab = errors.New("unknown tab")

// Loaded is a payload tagged with the tab that produced it.
type Loaded struct {
	TabID   string
	Payload Payload
}

// Fetch is a started fetch. Run performs the request and may be called on
// any goroutine; the Result goes back through Panel.Apply.
type Fetch struct {
	ctx    context.Context
	ticket Ticket
	tab    Tab
	req    Request
}

// Result is the outcome of Fetch.Run.
type Result struct {
	ticket  Ticket
	TabID   string
	Payload Payload
	Err     error
}

func (f Fetch) Run() Result {
	p, err := f.tab.Fetch(f.ctx, f.req)
	return Result{ticket: f.ticket, TabID: f.tab.ID(), Payload: p, Err: err}
}

// Snapshot is a consistent copy of a panel's state.
type Snapshot struct {
	ProviderID   string
	ProviderName string
	ActiveTab    string
	Request      Request
	Loading      bool
	Err          error
	Data         Loaded
	HasData      bool
}

// Error returns the display message for the last failure, or "".
func (s Snapshot) Error() string {
	if s.Err == nil {
		return ""
	}
	return repository.ErrorMessage(s.Err)
}

// Panel is the tabbed async viewer for one provider. Changing the tab, the
// symbol or the amount starts a new fetch; only the newest fetch's result is
// applied.
type Panel struct {
	provider Provider

	mu     sync.Mutex
	active Tab
	req    Request

	res Resource[Loaded]
}

// New creates a panel on the provider's first tab.
func New(provider Provider, req Request) *Panel {
	p := &Panel{provider: provider, req: normalizeRequest(req)}
	if len(provider.Tabs) > 0 {
		p.active = provider.Tabs[0]
	}
	return p
}

func (p *Panel) Provider() Provider { return p.provider }

// SetTab switches to the tab with the given id and starts its fetch.
func (p *Panel) SetTab(ctx context.Context, id string) (Fetch, error) {
	t, ok := p.provider.Tab(id)
	if !ok {
		return Fetch{}, fmt.Errorf("%w %q for provider %s", ErrUnknownTab, id, p.provider.ID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = t
	return p.beginLocked(ctx), nil
}

// SetSymbol changes the symbol and refetches the active tab.
func (p *Panel) SetSymbol(ctx context.Context, symbol string) Fetch {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.Symbol = repository.CleanTicker(symbol)
	return p.beginLocked(ctx)
}

// SetAmount changes the amount and refetches the active tab.
func (p *Panel) SetAmount(ctx context.Context, amount float64) Fetch {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req.Amount = amount
	return p.beginLocked(ctx)
}

// Fetch starts a fetch of the active tab with the current inputs.
func (p *Panel) Fetch(ctx context.Context) Fetch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.beginLocked(ctx)
}

// beginLocked starts a fetch of the active tab. The caller holds p.mu, so the
// newest ticket always belongs to the tab and inputs currently set.
func (p *Panel) beginLocked(ctx context.Context) Fetch {
	fetchCtx, ticket := p.res.Begin(ctx)
	return Fetch{ctx: fetchCtx, ticket: ticket, tab: p.active, req: p.req}
}

// Apply records r unless a newer fetch has started since r's fetch began.
func (p *Panel) Apply(r Result) bool {
	return p.res.Apply(r.ticket, Loaded{TabID: r.TabID, Payload: r.Payload}, r.Err)
}

// Load fetches the active tab synchronously.
func (p *Panel) Load(ctx context.Context) Snapshot {
	p.Apply(p.Fetch(ctx).Run())
	return p.Snapshot()
}

// Close aborts any in-flight fetch.
func (p *Panel) Close() {
	p.res.Cancel()
}

func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	active, req := p.active, p.req
	p.mu.Unlock()

	st := p.res.Snapshot()
	s := Snapshot{
		ProviderID:   p.provider.ID,
		ProviderName: p.provider.Name,
		Request:      req,
		Loading:      st.Loading,
		Err:          st.Err,
		Data:         st.Data,
		HasData:      st.HasData,
	}
	if active != nil {
		s.ActiveTab = active.ID()
	}
	return s
}

// View renders the active tab. Data left over from another tab is not shown.
func (p *Panel) View() View {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()
	if active == nil {
		return View{Title: p.provider.Name, Error: "no tabs configured"}
	}

	s := p.Snapshot()
	switch {
	case s.Loading:
		return View{Title: active.Label(), Loading: true}
	case s.Err != nil:
		return View{Title: active.Label(), Error: s.Error()}
	case s.HasData && s.Data.TabID == active.ID():
		return active.Render(s.Data.Payload)
	default:
		return View{Title: active.Label()}
	}
}

func normalizeRequest(req Request) Request {
	req.Symbol = repository.CleanTicker(req.Symbol)
	return req
}
