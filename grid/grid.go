// Package grid loads character maps and answers passability queries for the search.
package grid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Cell markers
const (
	Start       = 'S'
	Destination = 'E'
	Open        = ' '
	Wall        = '#'
	PathMark    = '.'
)

var (
	ErrEmptyMap             = errors.New("map has no rows")
	ErrMissingStart         = errors.New("map has no start marker 'S'")
	ErrMissingDestination   = errors.New("map has no destination marker 'E'")
	ErrDuplicateStart       = errors.New("map has more than one start marker 'S'")
	ErrDuplicateDestination = errors.New("map has more than one destination marker 'E'")
	ErrOutOfBounds          = errors.New("coordinate outside the map")
)

// Coord is a 0-based (row, col) position; rows are assigned in read order.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Grid owns the cell markers and the start/destination coordinates.
// Rows may have different lengths; anything outside a row is treated as impassable.
type Grid struct {
	cells       [][]rune
	Start       Coord
	Destination Coord
}

// New builds a grid from raw cells with explicit endpoints.
// Start and destination may coincide.
func New(cells [][]rune, start, destination Coord) (*Grid, error) {
	if len(cells) == 0 {
		return nil, ErrEmptyMap
	}
	g := &Grid{cells: cells, Start: start, Destination: destination}
	if !g.InBounds(start) {
		return nil, fmt.Errorf("start %v: %w", start, ErrOutOfBounds)
	}
	if !g.InBounds(destination) {
		return nil, fmt.Errorf("destination %v: %w", destination, ErrOutOfBounds)
	}
	return g, nil
}

// Parse converts map lines into a validated grid.
func Parse(lines []string) (*Grid, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyMap
	}

	cells := make([][]rune, 0, len(lines))
	var start, destination Coord
	var haveStart, haveDestination bool
	for row, line := range lines {
		chars := []rune(strings.TrimSuffix(line, "\r"))
		for col, ch := range chars {
			switch ch {
			case Start:
				if haveStart {
					return nil, fmt.Errorf("row %d col %d: %w", row, col, ErrDuplicateStart)
				}
				start, haveStart = Coord{row, col}, true
			case Destination:
				if haveDestination {
					return nil, fmt.Errorf("row %d col %d: %w", row, col, ErrDuplicateDestination)
				}
				destination, haveDestination = Coord{row, col}, true
			}
		}
		cells = append(cells, chars)
	}

	if !haveStart {
		return nil, ErrMissingStart
	}
	if !haveDestination {
		return nil, ErrMissingDestination
	}
	return &Grid{cells: cells, Start: start, Destination: destination}, nil
}

// Load reads a map line by line.
func Load(r io.Reader) (*Grid, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	return Parse(lines)
}

// LoadFile opens and loads the map at path.
func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return len(g.cells) }

// Width returns the length of a row, 0 if the row does not exist.
func (g *Grid) Width(row int) int {
	if row < 0 || row >= len(g.cells) {
		return 0
	}
	return len(g.cells[row])
}

// MaxWidth is the length of the longest row.
func (g *Grid) MaxWidth() int {
	width := 0
	for _, row := range g.cells {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < len(g.cells) && c.Col >= 0 && c.Col < len(g.cells[c.Row])
}

// At returns the marker at c; ok is false outside the map.
func (g *Grid) At(c Coord) (marker rune, ok bool) {
	if !g.InBounds(c) {
		return 0, false
	}
	return g.cells[c.Row][c.Col], true
}

// Passable reports whether a search may step onto c.
// Out-of-bounds coordinates are impassable, never an error.
func (g *Grid) Passable(c Coord) bool {
	marker, ok := g.At(c)
	return ok && (marker == Open || marker == Destination)
}

// Mark flags c as lying on the path.
func (g *Grid) Mark(c Coord) {
	if g.InBounds(c) {
		g.cells[c.Row][c.Col] = PathMark
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	cells := make([][]rune, len(g.cells))
	for i, row := range g.cells {
		cells[i] = append([]rune(nil), row...)
	}
	return &Grid{cells: cells, Start: g.Start, Destination: g.Destination}
}

// Each visits every cell in row-major order.
func (g *Grid) Each(visit func(c Coord, marker rune)) {
	for row, cells := range g.cells {
		for col, marker := range cells {
			visit(Coord{row, col}, marker)
		}
	}
}

// Lines returns the rows as strings.
func (g *Grid) Lines() []string {
	lines := make([]string, len(g.cells))
	for i, row := range g.cells {
		lines[i] = string(row)
	}
	return lines
}

func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}
