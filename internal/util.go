package internal

// ReconstructPath follows parentOf from terminal until a node reports no parent,
// returning the chain ordered root first.
func ReconstructPath[NodeType comparable](
	terminal NodeType,
	parentOf func(NodeType) (NodeType, bool),
) []NodeType {
	path := []NodeType{terminal}
	current := terminal
	for {
		previousNode, exists := parentOf(current)
		if !exists {
			break
		}
		path = append(path, previousNode)
		current = previousNode
	}
	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
