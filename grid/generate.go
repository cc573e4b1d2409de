package grid

import (
	"fmt"
	"math/rand"
)

// GenerateOptions shapes a random map. Walls are laid by Clusters random walks
// of Steps moves each; every visited cell becomes a wall with probability Density.
type GenerateOptions struct {
	Rows, Cols int
	Clusters   int
	Steps      int
	Density    float64
}

// DefaultGenerateOptions matches a medium sized terminal.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{Rows: 24, Cols: 40, Clusters: 8, Steps: 200, Density: 0.25}
}

// Generate builds a rectangular map with clustered walls and distinct random
// start and destination cells. The result may have no path.
func Generate(rng *rand.Rand, opts GenerateOptions) (*Grid, error) {
	if opts.Rows < 1 || opts.Cols < 1 || opts.Rows*opts.Cols < 2 {
		return nil, fmt.Errorf("generate %dx%d: need at least two cells", opts.Rows, opts.Cols)
	}
	if opts.Density < 0 || opts.Density > 1 {
		return nil, fmt.Errorf("generate: density %v outside [0,1]", opts.Density)
	}

	var start, dest Coord
	for {
		start = Coord{Row: rng.Intn(opts.Rows), Col: rng.Intn(opts.Cols)}
		dest = Coord{Row: rng.Intn(opts.Rows), Col: rng.Intn(opts.Cols)}
		if start != dest {
			break
		}
	}

	cells := make([][]rune, opts.Rows)
	for r := range cells {
		cells[r] = make([]rune, opts.Cols)
		for c := range cells[r] {
			cells[r][c] = Open
		}
	}

	moves := [4]Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for i := 0; i < opts.Clusters; i++ {
		p := Coord{Row: rng.Intn(opts.Rows), Col: rng.Intn(opts.Cols)}
		for s := 0; s < opts.Steps; s++ {
			if rng.Float64() < opts.Density && p != start && p != dest {
				cells[p.Row][p.Col] = Wall
			}
			d := moves[rng.Intn(len(moves))]
			next := Coord{Row: p.Row + d.Row, Col: p.Col + d.Col}
			if next.Row >= 0 && next.Row < opts.Rows && next.Col >= 0 && next.Col < opts.Cols {
				p = next
			}
		}
	}

	cells[start.Row][start.Col] = Start
	cells[dest.Row][dest.Col] = Destination
	return New(cells, start, dest)
}
