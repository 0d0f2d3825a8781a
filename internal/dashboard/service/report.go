package service

import (
	"context"

	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const reportConcurrency = 4

// ReportSection is one provider tab rendered for the report.
type ReportSection struct {
	ProviderID   string
	ProviderName string
	TabID        string
	TabLabel     string
	View         panel.View
}

// Report fetches every tab of every provider for symbol concurrently. A tab
// failure is reported in its section's View.Error; only cancellation of ctx
// fails the whole report.
func (s *DashboardService) Report(ctx context.Context, symbol string) ([]ReportSection, error) {
	req := panel.Request{Symbol: repository.CleanTicker(symbol), Amount: s.cfg.DefaultAmount}
	if req.Symbol == "" {
		req.Symbol = s.OverlaySymbol()
	}

	var sections []ReportSection
	for _, provider := range s.registry.Providers() {
		for _, tab := range provider.Tabs {
			sections = append(sections, ReportSection{
				ProviderID:   provider.ID,
				ProviderName: provider.Name,
				TabID:        tab.ID(),
				TabLabel:     tab.Label(),
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	i := 0
	for _, provider := range s.registry.Providers() {
		for _, tab := range provider.Tabs {
			idx, tab := i, tab
			i++
			g.Go(func() error {
				payload, err := tab.Fetch(gctx, req)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					s.log.WarnContext(gctx, "Report tab failed",
						logger.StringField("provider", sections[idx].ProviderID),
						logger.StringField("tab", sections[idx].TabID),
						logger.ErrorField(err))
					sections[idx].View = panel.View{Title: tab.Label(), Error: repository.ErrorMessage(err)}
					return nil
				}
				sections[idx].View = tab.Render(payload)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}
