package astar

import (
	"context"

	"github.com/pdrpinto/gridastar/grid"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current     grid.Coord
	Expanded    bool
	Open        map[grid.Coord]bool
	Closed      map[grid.Coord]bool
	Relaxations []Relaxation
	Done        bool
	Found       bool
	Path        []grid.Coord
	TotalCost   int
	StepIndex   int
}

// Stepper drives the same expansion loop as Search one node at a time
type Stepper struct {
	ctx           context.Context
	engine        *engine
	maxExpansions int
	stepCount     int
}

// NewStepper prepares a search over graph; nothing is expanded until Step is called
func NewStepper(
	parent context.Context,
	graph *grid.Grid,
	options ...Option,
) (*Stepper, error) {
	if graph == nil {
		return nil, ErrNilGrid
	}
	opts := applyOptions(options)
	return &Stepper{
		ctx:           parent,
		engine:        newEngine(graph, opts.Observer),
		maxExpansions: opts.MaxExpansions,
	}, nil
}

// Step advances the search by one node expansion and returns a snapshot.
// Once the search is done further calls return the final snapshot again.
func (s *Stepper) Step() (StepSnapshot, error) {
	if s.engine.done() {
		return s.snapshot(NoParent, nil), nil
	}
	if err := s.ctx.Err(); err != nil {
		return s.snapshot(NoParent, nil), err
	}
	if s.engine.overLimit(s.maxExpansions) {
		return s.snapshot(NoParent, nil), ErrExpansionLimit
	}

	current, relaxations := s.engine.step()
	if current != NoParent {
		s.stepCount++
	}
	return s.snapshot(current, relaxations), nil
}

// Done reports whether the search has reached a terminal state
func (s *Stepper) Done() bool { return s.engine.done() }

// Result returns the outcome so far; Found stays false until the destination is expanded
func (s *Stepper) Result() Result { return s.engine.result() }

func (s *Stepper) snapshot(current NodeID, relaxations []Relaxation) StepSnapshot {
	snap := StepSnapshot{
		Open:        s.openSetToBoolMap(),
		Closed:      s.closedSetToBoolMap(),
		Relaxations: relaxations,
		Done:        s.engine.done(),
		Found:       s.engine.state == found,
		StepIndex:   s.stepCount,
	}
	if current != NoParent {
		snap.Current = s.engine.nodes.get(current).Coords
		snap.Expanded = true
	}
	if snap.Found {
		snap.Path = s.engine.path()
		snap.TotalCost = s.engine.nodes.get(s.engine.terminal).MovementCost
	}
	return snap
}

func (s *Stepper) openSetToBoolMap() map[grid.Coord]bool {
	m := make(map[grid.Coord]bool, len(s.engine.openSetMap))
	for k := range s.engine.openSetMap {
		m[k] = true
	}
	return m
}

func (s *Stepper) closedSetToBoolMap() map[grid.Coord]bool {
	m := make(map[grid.Coord]bool, s.engine.closedSet.Size())
	s.engine.closedSet.Each(func(k grid.Coord) {
		m[k] = true
	})
	return m
}
