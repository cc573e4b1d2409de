package astar

// PriorityQueueItem is the open-set entry for one arena node.
type PriorityQueueItem struct {
	ID            NodeID
	TotalCost     int
	HeuristicCost int
	Sequence      int
	IndexInQueue  int
}

// PriorityQueue orders items by total cost, then heuristic cost, then insertion order.
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	a, b := queue[i], queue[j]
	if a.TotalCost != b.TotalCost {
		return a.TotalCost < b.TotalCost
	}
	if a.HeuristicCost != b.HeuristicCost {
		return a.HeuristicCost < b.HeuristicCost
	}
	return a.Sequence < b.Sequence
}
func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
