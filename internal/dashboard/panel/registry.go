package panel

import (
	"golang-stock-dashboard/internal/dashboard/repository"
)

// Registry is the ordered set of providers offered as overlay panels.
type Registry struct {
	providers []Provider
}

// NewRegistry registers the Alpha Vantage, Currency and Angel One providers.
func NewRegistry(repo repository.MarketAPIRepository) *Registry {
	return &Registry{providers: []Provider{
		AlphaVantage(repo),
		Currency(repo),
		AngelOne(repo),
	}}
}

func (r *Registry) Providers() []Provider {
	return r.providers
}

// Provider returns the provider with the given id.
func (r *Registry) Provider(id string) (Provider, bool) {
	for _, p := range r.providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}
