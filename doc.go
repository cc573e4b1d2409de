// Package astar finds shortest paths on character grids with the A* algorithm.
//
// It exposes two main entry points:
//
//   - Search: run the algorithm to completion and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive UIs or debugging tools.
//
// Movement is 8-directional with integer step costs (10 orthogonal, 14 diagonal) and the
// Manhattan distance to the destination as heuristic. Nodes live in an arena addressed by
// NodeID, and a cheaper route to an open node rewrites its arena entry in place.
package astar
