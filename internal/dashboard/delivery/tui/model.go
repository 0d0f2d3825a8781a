package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/utils"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type dashboardLoadedMsg struct {
	result service.DashboardResult
}

type panelLoadedMsg struct {
	providerID string
	result     panel.Result
}

type editMode int

const (
	editNone editMode = iota
	editSymbol
	editAmount
)

// overlayKeys maps the toggle key of each provider overlay.
var overlayKeys = map[string]string{
	"a": panel.AlphaVantageID,
	"c": panel.CurrencyID,
	"o": panel.AngelOneID,
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	ctx context.Context
	svc *service.DashboardService
	log *logger.Logger

	viewport      viewport.Model
	input         textinput.Model
	editing       editMode
	ready         bool
	width, height int

	cursor int
	// focus is the provider id of the focused overlay, "" for the dashboard.
	focus  string
	status string
}

// NewModel creates the terminal dashboard model.
func NewModel(ctx context.Context, svc *service.DashboardService, log *logger.Logger) Model {
	ti := textinput.New()
	ti.CharLimit = 32
	return Model{ctx: ctx, svc: svc, log: log, input: ti}
}

func loadDashboardCmd(f service.DashboardFetch) tea.Cmd {
	return func() tea.Msg {
		return dashboardLoadedMsg{result: f.Run()}
	}
}

func fetchPanelCmd(providerID string, f panel.Fetch) tea.Cmd {
	return func() tea.Msg {
		return panelLoadedMsg{providerID: providerID, result: f.Run()}
	}
}

func (m Model) Init() tea.Cmd {
	return loadDashboardCmd(m.svc.Begin(m.ctx))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		vpHeight := msg.Height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case dashboardLoadedMsg:
		if !m.svc.Apply(msg.result) {
			m.log.Debug("Dropped stale dashboard response")
		}
		m.clampCursor()
		m.refresh()
		return m, nil

	case panelLoadedMsg:
		if p, ok := m.svc.Overlay(msg.providerID); ok {
			if !p.Apply(msg.result) {
				m.log.Debug("Dropped stale panel response",
					logger.StringField("provider", msg.providerID),
					logger.StringField("tab", msg.result.TabID))
			}
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.editing != editNone {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.svc.Close()
		return m, tea.Quit

	case "r":
		m.status = ""
		f := m.svc.Begin(m.ctx)
		m.refresh()
		return m, loadDashboardCmd(f)

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.refresh()
		return m, nil

	case "down", "j":
		m.cursor++
		m.clampCursor()
		m.refresh()
		return m, nil

	case "enter":
		if ticker, ok := m.cursorTicker(); ok {
			m.svc.Select(ticker)
			m.status = "selected " + ticker
		}
		m.refresh()
		return m, nil

	case "a", "c", "o":
		id := overlayKeys[key]
		f, opened, err := m.svc.ToggleOverlay(m.ctx, id)
		if err != nil {
			m.status = err.Error()
			m.refresh()
			return m, nil
		}
		if !opened {
			if m.focus == id {
				m.focus = ""
			}
			m.refresh()
			return m, nil
		}
		m.focus = id
		m.refresh()
		return m, fetchPanelCmd(id, f)

	case "tab":
		m.focus = m.nextFocus()
		m.refresh()
		return m, nil

	case "left", "right", "h", "l":
		p, ok := m.focusedPanel()
		if !ok {
			return m, nil
		}
		delta := 1
		if key == "left" || key == "h" {
			delta = -1
		}
		f, err := p.SetTab(m.ctx, stepTab(p.Provider(), p.Snapshot().ActiveTab, delta))
		if err != nil {
			m.status = err.Error()
			m.refresh()
			return m, nil
		}
		m.refresh()
		return m, fetchPanelCmd(p.Provider().ID, f)

	case "s", "m":
		p, ok := m.focusedPanel()
		if !ok {
			return m, nil
		}
		snap := p.Snapshot()
		if key == "s" {
			m.editing = editSymbol
			m.input.Placeholder = "symbol"
			m.input.SetValue(snap.Request.Symbol)
		} else {
			m.editing = editAmount
			m.input.Placeholder = "amount"
			m.input.SetValue(strconv.FormatFloat(snap.Request.Amount, 'f', -1, 64))
		}
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = editNone
		m.input.Blur()
		return m, nil

	case "enter":
		mode := m.editing
		value := strings.TrimSpace(m.input.Value())
		m.editing = editNone
		m.input.Blur()

		p, ok := m.focusedPanel()
		if !ok {
			return m, nil
		}
		var f panel.Fetch
		switch mode {
		case editSymbol:
			if value == "" {
				return m, nil
			}
			f = p.SetSymbol(m.ctx, value)
		case editAmount:
			amount, err := strconv.ParseFloat(value, 64)
			if err != nil || amount < 0 {
				m.status = fmt.Sprintf("invalid amount %q", value)
				m.refresh()
				return m, nil
			}
			f = p.SetAmount(m.ctx, amount)
		}
		m.status = ""
		m.refresh()
		return m, fetchPanelCmd(p.Provider().ID, f)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) focusedPanel() (*panel.Panel, bool) {
	if m.focus == "" {
		return nil, false
	}
	return m.svc.Overlay(m.focus)
}

func (m *Model) nextFocus() string {
	open := m.svc.OpenOverlays()
	ids := make([]string, 0, len(open)+1)
	ids = append(ids, "")
	for _, p := range open {
		ids = append(ids, p.Provider().ID)
	}
	for i, id := range ids {
		if id == m.focus {
			return ids[(i+1)%len(ids)]
		}
	}
	return ""
}

func stepTab(p panel.Provider, active string, delta int) string {
	ids := p.TabIDs()
	for i, id := range ids {
		if id == active {
			return ids[(i+delta+len(ids))%len(ids)]
		}
	}
	return ids[0]
}

func (m *Model) cursorTicker() (string, bool) {
	st := m.svc.State()
	if !st.HasData || st.Data == nil || m.cursor >= len(st.Data.Stocks) {
		return "", false
	}
	return st.Data.Stocks[m.cursor].Ticker, true
}

func (m *Model) clampCursor() {
	st := m.svc.State()
	n := 0
	if st.HasData && st.Data != nil {
		n = len(st.Data.Stocks)
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m Model) renderContent() string {
	var b strings.Builder

	title := titleStyle
	if m.focus == "" {
		title = focusTitle
	}
	b.WriteString(title.Render(" Portfolio ") + "\n")
	b.WriteString(renderView(m.svc.StockGridView(), m.cursor))
	if grid := m.svc.StockGridView(); grid.Error != "" {
		b.WriteString(dimStyle.Render("press r to retry") + "\n")
	}

	if sel := m.svc.SelectedStockView(); !sel.Empty() {
		b.WriteString("\n" + selectedMark.Render("▶ "+sel.Title) + "\n")
		b.WriteString(renderView(sel, -1))
	}

	b.WriteString("\n" + titleStyle.Render(" Signals ") + "\n")
	b.WriteString(renderView(m.svc.SignalsView(), -1))

	b.WriteString("\n" + titleStyle.Render(" Market News ") + "\n")
	b.WriteString(renderView(m.svc.NewsView(), -1))

	for _, p := range m.svc.OpenOverlays() {
		snap := p.Snapshot()
		title := titleStyle
		if p.Provider().ID == m.focus {
			title = focusTitle
		}
		header := " " + snap.ProviderName + " "
		if snap.Request.Symbol != "" {
			header += "· " + snap.Request.Symbol + " "
		}
		b.WriteString("\n" + title.Render(header) + "  " + renderTabs(p.Provider(), snap.ActiveTab) + "\n")
		v := p.View()
		if v.Title != "" && !v.Loading && v.Error == "" {
			b.WriteString(labelStyle.Render(v.Title) + "\n")
		}
		b.WriteString(renderView(v, -1))
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing…"
	}

	st := m.svc.State()
	stateText := "ready"
	switch {
	case st.Loading:
		stateText = "loading"
	case st.Err != nil:
		stateText = "error"
	}
	headerText := fmt.Sprintf(" Stock Dashboard   tickers: %d   %s", len(m.svc.Tickers()), stateText)
	if sel := m.svc.Selected(); sel != "" {
		headerText += "   selected: " + sel
	}
	if m.status != "" {
		headerText += "   " + utils.Truncate(m.status, 60)
	}
	headerBar := headerStyle.Render(padOrTrunc(headerText, m.width))

	var footerText string
	if m.editing != editNone {
		footerText = " " + m.input.View() + "   enter apply  esc cancel"
	} else {
		footerText = fmt.Sprintf(" q quit  r reload  up/dn move  enter select  a/c/o panels  tab focus  left/right tabs  s symbol  m amount   %.0f%%", m.viewport.ScrollPercent()*100)
	}
	footerBar := footerStyle.Render(padOrTrunc(footerText, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

// Run starts the terminal dashboard and blocks until it exits.
func Run(ctx context.Context, svc *service.DashboardService, log *logger.Logger) error {
	p := tea.NewProgram(
		NewModel(ctx, svc, log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal dashboard: %w", err)
	}
	return nil
}
