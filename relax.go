package astar

import (
	"fmt"

	"github.com/pdrpinto/gridastar/grid"
)

// Outcome describes what the engine did with one neighbour of the expanded node.
type Outcome int

const (
	// Inserted: the coordinate was new and joined the open set.
	Inserted Outcome = iota
	// Updated: the coordinate was open and the new route was strictly cheaper.
	Updated
	// Kept: the coordinate was open and its existing route was at least as cheap.
	Kept
	// SkippedClosed: the coordinate was already finalized.
	SkippedClosed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Kept:
		return "kept"
	case SkippedClosed:
		return "skipped-closed"
	}
	return "unknown"
}

// MarshalText lets snapshots carry outcomes as readable strings.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(text []byte) error {
	for _, candidate := range []Outcome{Inserted, Updated, Kept, SkippedClosed} {
		if candidate.String() == string(text) {
			*o = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Relaxation records the decision taken for a neighbour during one expansion.
type Relaxation struct {
	From      grid.Coord `json:"from"`
	To        grid.Coord `json:"to"`
	TotalCost int        `json:"totalCost"`
	Outcome   Outcome    `json:"outcome"`
}
