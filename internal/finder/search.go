package finder

import "github.com/danpilch/busfinder/internal/catalog"

// Kind tells which list of a Result is populated.
type Kind string

const (
	KindDirect   Kind = "direct"
	KindIndirect Kind = "indirect"
	KindNone     Kind = "none"
)

// Query is a source and destination pair of free-text stop names.
type Query struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// Result holds either direct buses or transfer journeys, never both.
type Result struct {
	Direct   []catalog.Bus   `json:"direct"`
	Indirect []IndirectMatch `json:"indirect"`
}

// Kind reports which kind of route the result carries.
func (r Result) Kind() Kind {
	switch {
	case len(r.Direct) > 0:
		return KindDirect
	case len(r.Indirect) > 0:
		return KindIndirect
	default:
		return KindNone
	}
}

// Search runs FindDirect and falls back to FindIndirect only when no direct
// bus exists. Callers must reject blank source or destination beforehand.
func Search(q Query, buses []catalog.Bus) Result {
	direct := FindDirect(q.Source, q.Destination, buses)
	if len(direct) > 0 {
		return Result{Direct: direct}
	}
	return Result{Indirect: FindIndirect(q.Source, q.Destination, buses)}
}
