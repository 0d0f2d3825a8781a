package panel

// Provider is a configuration value describing one market-data source as an
// ordered set of tabs. The first tab is the default.
type Provider struct {
	ID   string
	Name string
	Tabs []Tab
}

// Tab returns the tab with the given id.
func (p Provider) Tab(id string) (Tab, bool) {
	for _, t := range p.Tabs {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// TabIDs lists the tab ids in display order.
func (p Provider) TabIDs() []string {
	ids := make([]string, 0, len(p.Tabs))
	for _, t := range p.Tabs {
		ids = append(ids, t.ID())
	}
	return ids
}
