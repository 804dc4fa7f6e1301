// Package render formats search results for terminals and notifications.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danpilch/busfinder/internal/catalog"
	"github.com/danpilch/busfinder/internal/finder"
)

var lineLabels = map[string]string{
	"yellow": "Yellow Line",
	"orange": "Orange Line",
	"purple": "Purple Line",
	"blue":   "Blue Line",
	"green":  "Green Line",
	"pink":   "Pink Line",
}

// LineLabel maps a bus type to its display name. Unknown types are shown as
// yellow buses.
func LineLabel(busType string) string {
	if label, ok := lineLabels[strings.ToLower(busType)]; ok {
		return label
	}
	return lineLabels["yellow"]
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Text writes a human-readable trip plan.
func Text(w io.Writer, q finder.Query, res finder.Result) error {
	var b strings.Builder

	switch res.Kind() {
	case finder.KindDirect:
		fmt.Fprintf(&b, "Found %s\n", plural(len(res.Direct), "direct route"))
		for _, bus := range res.Direct {
			b.WriteString("\n")
			writeDirect(&b, bus, q)
		}
	case finder.KindIndirect:
		b.WriteString("No direct routes found\n")
		fmt.Fprintf(&b, "Showing %s with transfers\n", plural(len(res.Indirect), "indirect route"))
		for _, m := range res.Indirect {
			b.WriteString("\n")
			writeIndirect(&b, m, q)
		}
	default:
		b.WriteString("No routes found\n")
		b.WriteString("Try searching with different locations or check spelling.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, bus catalog.Bus) {
	fmt.Fprintf(b, "%s [%s] %s\n", bus.Number, LineLabel(bus.Type), bus.Name)
}

func writeDirect(b *strings.Builder, bus catalog.Bus, q finder.Query) {
	leg := finder.DirectLeg(bus, q.Source, q.Destination)

	writeHeader(b, bus)
	fmt.Fprintf(b, "  Board at: %s\n", leg.BoardingPoint)
	if leg.Valid {
		fmt.Fprintf(b, "  %d stops away\n", leg.StopsAway)
	}
	fmt.Fprintf(b, "  Route: %s\n", strings.Join(leg.Stops, " -> "))
	if len(bus.Landmarks) > 0 {
		fmt.Fprintf(b, "  Near landmarks: %s\n", strings.Join(bus.Landmarks, " • "))
	}
}

func writeIndirect(b *strings.Builder, m finder.IndirectMatch, q finder.Query) {
	fmt.Fprintf(b, "Transfer at: %s\n", m.TransferPoint)
	b.WriteString("  ")
	writeHeader(b, m.FirstBus)
	fmt.Fprintf(b, "    Board at: %s -> Get off at: %s\n", q.Source, m.TransferPoint)
	b.WriteString("  ")
	writeHeader(b, m.SecondBus)
	fmt.Fprintf(b, "    Board at: %s -> Get off at: %s\n", m.TransferPoint, q.Destination)
	fmt.Fprintf(b, "  Approximately %d total stops, 1 transfer required\n", m.TotalStops)
}

// Response is the JSON shape of a search result.
type Response struct {
	Query    finder.Query           `json:"query"`
	Kind     finder.Kind            `json:"kind"`
	Direct   []catalog.Bus          `json:"direct"`
	Indirect []finder.IndirectMatch `json:"indirect"`
}

// NewResponse builds a Response with empty lists instead of nulls.
func NewResponse(q finder.Query, res finder.Result) Response {
	out := Response{
		Query:    q,
		Kind:     res.Kind(),
		Direct:   res.Direct,
		Indirect: res.Indirect,
	}
	if out.Direct == nil {
		out.Direct = []catalog.Bus{}
	}
	if out.Indirect == nil {
		out.Indirect = []finder.IndirectMatch{}
	}
	return out
}

// JSON writes the result as indented JSON.
func JSON(w io.Writer, q finder.Query, res finder.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewResponse(q, res))
}
