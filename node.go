package astar

import "github.com/pdrpinto/gridastar/grid"

// Step costs: 10 orthogonal, 14 diagonal, i.e. 1 : √2 scaled by 10 in integers.
const (
	OrthogonalCost = 10
	DiagonalCost   = 14
)

// NodeID indexes a node in the search arena.
type NodeID int

// NoParent marks the root of a parent chain.
const NoParent NodeID = -1

// adjacent lists the neighbour offsets in expansion order:
// down, right, up, left, then the four diagonals.
var adjacent = [8]grid.Coord{
	{Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: -1, Col: 0}, {Row: 0, Col: -1},
	{Row: -1, Col: -1}, {Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1},
}

// Node is a search-tree vertex. Parent refers to another arena entry.
type Node struct {
	Coords        grid.Coord
	Parent        NodeID
	MovementCost  int // g
	HeuristicCost int // h, fixed at construction
	TotalCost     int // f = g + h
}

// Manhattan returns |Δrow| + |Δcol|.
func Manhattan(from grid.Coord, to grid.Coord) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// StepCost is the cost of moving between two adjacent coordinates.
// Identical coordinates cost nothing. Farther pairs cost the cheapest unobstructed
// 8-directional route between them: diagonal steps while both axes differ, then straight ones.
func StepCost(from grid.Coord, to grid.Coord) int {
	dr, dc := abs(from.Row-to.Row), abs(from.Col-to.Col)
	diagonal, straight := min(dr, dc), max(dr, dc)-min(dr, dc)
	return diagonal*DiagonalCost + straight*OrthogonalCost
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// arena owns every node created during one search. Nodes are never removed.
type arena struct {
	nodes []Node
}

// construct builds a node for coords reached from parent without storing it.
func (a *arena) construct(graph *grid.Grid, coords grid.Coord, parent NodeID) Node {
	node := Node{
		Coords:        coords,
		Parent:        parent,
		HeuristicCost: Manhattan(coords, graph.Destination),
	}
	if parent != NoParent {
		from := a.nodes[parent]
		node.MovementCost = from.MovementCost + StepCost(from.Coords, coords)
	}
	node.TotalCost = node.MovementCost + node.HeuristicCost
	return node
}

func (a *arena) insert(node Node) NodeID {
	a.nodes = append(a.nodes, node)
	return NodeID(len(a.nodes) - 1)
}

func (a *arena) get(id NodeID) Node { return a.nodes[id] }

// update reparents id onto newParent in place; the heuristic is untouched.
func (a *arena) update(id NodeID, newParent NodeID) {
	node := &a.nodes[id]
	from := a.nodes[newParent]
	node.Parent = newParent
	node.MovementCost = from.MovementCost + StepCost(from.Coords, node.Coords)
	node.TotalCost = node.MovementCost + node.HeuristicCost
}

// neighbors returns freshly constructed nodes for every passable adjacent cell of id.
func (a *arena) neighbors(graph *grid.Grid, id NodeID) []Node {
	origin := a.nodes[id].Coords
	result := make([]Node, 0, len(adjacent))
	for _, delta := range adjacent {
		coords := grid.Coord{Row: origin.Row + delta.Row, Col: origin.Col + delta.Col}
		if graph.Passable(coords) {
			result = append(result, a.construct(graph, coords, id))
		}
	}
	return result
}

func (a *arena) parentOf(id NodeID) (NodeID, bool) {
	parent := a.nodes[id].Parent
	return parent, parent != NoParent
}
