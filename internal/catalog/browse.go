package catalog

import "strings"

// DefaultSuggestLimit caps stop suggestions when the caller asks for none.
const DefaultSuggestLimit = 5

// Filter returns the buses whose number, name or any stop contains query.
// A blank query returns every bus.
func (c *Catalog) Filter(query string) []Bus {
	if strings.TrimSpace(query) == "" {
		return c.Buses
	}

	var out []Bus
	for _, bus := range c.Buses {
		if ContainsFold(bus.Number, query) || ContainsFold(bus.Name, query) || bus.Serves(query) {
			out = append(out, bus)
		}
	}
	return out
}

// Suggest returns up to limit major stops containing text.
func (c *Catalog) Suggest(text string, limit int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	var out []string
	for _, stop := range c.MajorStops {
		if !ContainsFold(stop, text) {
			continue
		}
		out = append(out, stop)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Lookup finds a bus by its number.
func (c *Catalog) Lookup(number string) (Bus, bool) {
	for _, bus := range c.Buses {
		if bus.Number == number {
			return bus, true
		}
	}
	return Bus{}, false
}
