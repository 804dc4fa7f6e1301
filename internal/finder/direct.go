// Package finder matches a source and destination stop against a bus catalog.
//
// Stop names are matched as case-insensitive substrings, so "station" finds
// "Howrah Station". Direct routes are searched first; two-bus routes with a
// single transfer are only considered when no direct route exists.
//
// Every function here is pure: the catalog is passed in and never modified,
// which makes concurrent calls safe without locking.
package finder

import "github.com/danpilch/busfinder/internal/catalog"

// FindDirect returns, in catalog order, every bus that has a stop matching
// source and a stop matching destination. Travel direction is not checked.
func FindDirect(source, destination string, buses []catalog.Bus) []catalog.Bus {
	var out []catalog.Bus
	for _, bus := range buses {
		if bus.Serves(source) && bus.Serves(destination) {
			out = append(out, bus)
		}
	}
	return out
}
