package astar

import (
	"context"
	"errors"

	"github.com/pdrpinto/gridastar/grid"
	"github.com/pdrpinto/gridastar/internal"
)

var (
	// ErrNilGrid is returned when no grid is given to search.
	ErrNilGrid = errors.New("astar: nil grid")
	// ErrExpansionLimit is returned when the expansion cap is reached before the search settles.
	ErrExpansionLimit = errors.New("astar: expansion limit reached")
)

// Result contains the outcome of a search.
// Found is false when the open set was exhausted; that is a result, not an error.
type Result struct {
	Path          []grid.Coord
	TotalCost     int
	ExpandedNodes int
	Found         bool

	// Terminal indexes Nodes; NoParent when nothing was found.
	Terminal NodeID
	Nodes    []Node
}

// Trace walks the parent chain from the terminal node back to the start node.
// It does nothing when no path was found.
func (r Result) Trace(visit func(Node)) {
	if !r.Found {
		return
	}
	for id := r.Terminal; id != NoParent; id = r.Nodes[id].Parent {
		visit(r.Nodes[id])
	}
}

// Options defines parameters for the search.
type Options struct {
	// MaxExpansions caps the number of nodes expanded; zero means unbounded.
	MaxExpansions int
	// Observer is called for every neighbour decision.
	Observer func(Relaxation)
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions bounds the work a search may do.
func WithMaxExpansions(maxExpansions int) Option {
	return func(options *Options) { options.MaxExpansions = maxExpansions }
}

// WithObserver installs a hook receiving every relaxation decision.
func WithObserver(observer func(Relaxation)) Option {
	return func(options *Options) { options.Observer = observer }
}

func applyOptions(options []Option) Options {
	var searchOptions Options
	for _, option := range options {
		option(&searchOptions)
	}
	return searchOptions
}

// Search runs A* over graph from its start to its destination with 8-directional movement.
// The grid is only read.
func Search(
	contextObject context.Context,
	graph *grid.Grid,
	options ...Option,
) (Result, error) {
	if graph == nil {
		return Result{Terminal: NoParent}, ErrNilGrid
	}

	// --- Apply options ---
	searchOptions := applyOptions(options)

	// --- Initialize state ---
	searchEngine := newEngine(graph, searchOptions.Observer)

	// --- Expansion loop ---
	for !searchEngine.done() {
		if err := contextObject.Err(); err != nil {
			return searchEngine.result(), err
		}
		if searchEngine.overLimit(searchOptions.MaxExpansions) {
			return searchEngine.result(), ErrExpansionLimit
		}
		searchEngine.step()
	}

	return searchEngine.result(), nil
}

func chainCoords(nodes *arena, terminal NodeID) []grid.Coord {
	ids := internal.ReconstructPath(terminal, nodes.parentOf)
	coords := make([]grid.Coord, len(ids))
	for i, id := range ids {
		coords[i] = nodes.get(id).Coords
	}
	return coords
}
