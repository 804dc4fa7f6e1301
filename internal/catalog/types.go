package catalog

import (
	"encoding/json"
	"strings"
)

// Catalog is the static set of bus routes known to the finder.
type Catalog struct {
	Buses      []Bus    `json:"buses" validate:"unique=Number,dive"`
	MajorStops []string `json:"majorStops"`
}

// Bus is a single bus line. Stops are listed in the order the bus travels them.
type Bus struct {
	Number    string   `json:"number" validate:"required"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Stops     []string `json:"stops" validate:"dive,required"`
	Landmarks []string `json:"landmarks"`
}

// UnmarshalJSON accepts the older "route" key as an alias for "stops".
func (b *Bus) UnmarshalJSON(data []byte) error {
	type plain Bus
	var raw struct {
		plain
		Route []string `json:"route"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Bus(raw.plain)
	if len(b.Stops) == 0 {
		b.Stops = raw.Route
	}
	return nil
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Serves returns true if any stop name contains query.
func (b Bus) Serves(query string) bool {
	return b.MatchIndex(query) != -1
}

// MatchIndex returns the index of the first stop whose name contains query,
// or -1 if there is none.
func (b Bus) MatchIndex(query string) int {
	q := strings.ToLower(query)
	for i, stop := range b.Stops {
		if strings.Contains(strings.ToLower(stop), q) {
			return i
		}
	}
	return -1
}

// StopIndex returns the index of the first stop named exactly name, or -1.
func (b Bus) StopIndex(name string) int {
	for i, stop := range b.Stops {
		if stop == name {
			return i
		}
	}
	return -1
}
