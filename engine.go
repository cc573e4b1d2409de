package astar

import (
	"container/heap"

	"github.com/pdrpinto/gridastar/grid"
	"github.com/zyedidia/generic/mapset"
)

type engineState int

const (
	running engineState = iota
	found
	exhausted
)

// engine owns the open and closed collections for one search over an unchanging grid.
type engine struct {
	graph *grid.Grid
	nodes arena

	openSet    PriorityQueue
	openSetMap map[grid.Coord]*PriorityQueueItem
	closedSet  mapset.Set[grid.Coord]

	observer func(Relaxation)
	sequence int
	expanded int
	terminal NodeID
	state    engineState
}

func newEngine(graph *grid.Grid, observer func(Relaxation)) *engine {
	e := &engine{
		graph:      graph,
		openSet:    make(PriorityQueue, 0),
		openSetMap: make(map[grid.Coord]*PriorityQueueItem),
		closedSet:  mapset.New[grid.Coord](),
		observer:   observer,
		terminal:   NoParent,
	}
	heap.Init(&e.openSet)
	e.open(e.nodes.insert(e.nodes.construct(graph, graph.Start, NoParent)))
	return e
}

func (e *engine) open(id NodeID) {
	node := e.nodes.get(id)
	item := &PriorityQueueItem{
		ID:            id,
		TotalCost:     node.TotalCost,
		HeuristicCost: node.HeuristicCost,
		Sequence:      e.sequence,
	}
	e.sequence++
	heap.Push(&e.openSet, item)
	e.openSetMap[node.Coords] = item
}

func (e *engine) done() bool { return e.state != running }

// overLimit reports whether another expansion would exceed maxExpansions.
// Detecting exhaustion costs no expansion, so an empty open set is never over the limit.
func (e *engine) overLimit(maxExpansions int) bool {
	return maxExpansions > 0 && e.expanded >= maxExpansions && e.openSet.Len() > 0
}

// step performs one iteration of the expansion loop. It returns the expanded node
// (NoParent when the open set was already empty) and the decisions taken for its neighbours.
func (e *engine) step() (NodeID, []Relaxation) {
	if e.done() {
		return NoParent, nil
	}
	if e.openSet.Len() == 0 {
		e.state = exhausted
		return NoParent, nil
	}

	currentItem := heap.Pop(&e.openSet).(*PriorityQueueItem)
	currentID := currentItem.ID
	current := e.nodes.get(currentID)
	delete(e.openSetMap, current.Coords)
	e.closedSet.Put(current.Coords)
	e.expanded++

	if current.Coords == e.graph.Destination {
		e.state = found
		e.terminal = currentID
		return currentID, nil
	}

	neighbors := e.nodes.neighbors(e.graph, currentID)
	relaxations := make([]Relaxation, 0, len(neighbors))
	for _, neighbor := range neighbors {
		relaxation := Relaxation{From: current.Coords, To: neighbor.Coords, TotalCost: neighbor.TotalCost}

		switch item, inOpen := e.openSetMap[neighbor.Coords]; {
		case e.closedSet.Has(neighbor.Coords):
			relaxation.Outcome = SkippedClosed
		case inOpen:
			candidate := current.MovementCost + StepCost(current.Coords, neighbor.Coords) + neighbor.HeuristicCost
			if candidate < e.nodes.get(item.ID).TotalCost {
				e.nodes.update(item.ID, currentID)
				item.TotalCost = e.nodes.get(item.ID).TotalCost
				heap.Fix(&e.openSet, item.IndexInQueue)
				relaxation.Outcome = Updated
			} else {
				relaxation.Outcome = Kept
				relaxation.TotalCost = item.TotalCost
			}
		default:
			e.open(e.nodes.insert(neighbor))
			relaxation.Outcome = Inserted
		}

		if e.observer != nil {
			e.observer(relaxation)
		}
		relaxations = append(relaxations, relaxation)
	}
	return currentID, relaxations
}

func (e *engine) path() []grid.Coord {
	if e.state != found {
		return nil
	}
	return chainCoords(&e.nodes, e.terminal)
}

func (e *engine) result() Result {
	res := Result{
		ExpandedNodes: e.expanded,
		Found:         e.state == found,
		Terminal:      e.terminal,
		Nodes:         append([]Node(nil), e.nodes.nodes...),
	}
	if res.Found {
		res.Path = e.path()
		res.TotalCost = e.nodes.get(e.terminal).MovementCost
	}
	return res
}
