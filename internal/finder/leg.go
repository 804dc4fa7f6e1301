package finder

import "github.com/danpilch/busfinder/internal/catalog"

// Leg describes how a direct bus is ridden between source and destination.
type Leg struct {
	SourceIndex   int
	DestIndex     int
	BoardingPoint string
	// Valid is false when either end is missing or both match the same stop.
	Valid     bool
	StopsAway int
	// Reversed is set when the ride runs against the listed stop order.
	Reversed bool
	// Stops is the route in riding order.
	Stops []string
}

// DirectLeg works out the boarding stop, distance and riding order of bus for
// a trip from source to destination.
func DirectLeg(bus catalog.Bus, source, destination string) Leg {
	leg := Leg{
		SourceIndex:   bus.MatchIndex(source),
		DestIndex:     bus.MatchIndex(destination),
		BoardingPoint: source,
		Stops:         bus.Stops,
	}

	if leg.SourceIndex != -1 {
		leg.BoardingPoint = bus.Stops[leg.SourceIndex]
	}

	leg.Valid = leg.SourceIndex != -1 && leg.DestIndex != -1 && leg.SourceIndex != leg.DestIndex
	if leg.Valid {
		leg.StopsAway = leg.DestIndex - leg.SourceIndex
		if leg.StopsAway < 0 {
			leg.StopsAway = -leg.StopsAway
		}
	}

	if leg.SourceIndex > leg.DestIndex {
		leg.Reversed = true
		leg.Stops = make([]string, len(bus.Stops))
		for i, stop := range bus.Stops {
			leg.Stops[len(bus.Stops)-1-i] = stop
		}
	}

	return leg
}
