// Package render marks a found path on its grid and displays the result as coloured
// text, on a tcell screen, or as a PNG image.
package render

import (
	"errors"

	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
)

// ErrNoPath is returned when a result without a terminal node is traced.
var ErrNoPath = errors.New("no path found")

// TracePath marks every node of the result's parent chain on g, except the
// destination (the terminal node) and the start (the node without a parent).
func TracePath(g *grid.Grid, res astar.Result) error {
	if !res.Found {
		return ErrNoPath
	}
	res.Trace(func(n astar.Node) {
		if n.Parent == astar.NoParent || n.Coords == g.Destination {
			return
		}
		g.Mark(n.Coords)
	})
	return nil
}
