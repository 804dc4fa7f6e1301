package finder

import (
	"sort"

	"github.com/danpilch/busfinder/internal/catalog"
)

// MaxIndirectMatches is the most transfer routes FindIndirect returns.
const MaxIndirectMatches = 3

// IndirectMatch is a two-bus journey: FirstBus from the source to
// TransferPoint, then SecondBus from TransferPoint to the destination.
type IndirectMatch struct {
	FirstBus      catalog.Bus `json:"first_bus"`
	SecondBus     catalog.Bus `json:"second_bus"`
	TransferPoint string      `json:"transfer_point"`
	// TotalStops is an approximate stop count used for ranking only.
	TotalStops int `json:"total_stops"`
}

type transferKey struct {
	first, second, stop string
}

// FindIndirect looks for single-transfer journeys between source and
// destination. A transfer stop must come after the boarding stop on the first
// bus and before the alighting stop on the second. The first
// MaxIndirectMatches distinct journeys found are kept and returned ordered by
// TotalStops.
func FindIndirect(source, destination string, buses []catalog.Bus) []IndirectMatch {
	var sourceBuses, destBuses []catalog.Bus
	for _, bus := range buses {
		if bus.Serves(source) {
			sourceBuses = append(sourceBuses, bus)
		}
		if bus.Serves(destination) {
			destBuses = append(destBuses, bus)
		}
	}

	var out []IndirectMatch
	seen := make(map[transferKey]bool)

	for _, first := range sourceBuses {
		for _, second := range destBuses {
			if first.Number == second.Number {
				continue
			}

			sourceIdx := first.MatchIndex(source)
			destIdx := second.MatchIndex(destination)
			if sourceIdx == -1 || destIdx == -1 {
				continue
			}

			for _, transfer := range commonStops(first, second) {
				transferInFirst := first.StopIndex(transfer)
				transferInSecond := second.StopIndex(transfer)
				if transferInFirst <= sourceIdx || transferInSecond >= destIdx {
					continue
				}

				key := transferKey{first.Number, second.Number, transfer}
				if seen[key] || len(out) >= MaxIndirectMatches {
					continue
				}
				seen[key] = true

				out = append(out, IndirectMatch{
					FirstBus:      first,
					SecondBus:     second,
					TransferPoint: transfer,
					TotalStops:    (transferInFirst - sourceIdx) + (destIdx - transferInSecond),
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalStops < out[j].TotalStops
	})
	return out
}

// commonStops lists the stops of a that also appear in b, in a's order.
func commonStops(a, b catalog.Bus) []string {
	var out []string
	for _, stop := range a.Stops {
		if b.StopIndex(stop) != -1 {
			out = append(out, stop)
		}
	}
	return out
}
