package graph

import "container/heap"

// Path is the result of a shortest-path query.
type Path struct {
	Nodes         []int
	TotalDistance float64
	Found         bool
}

// pqItem is one entry in the Dijkstra frontier.
type pqItem struct {
	dist float64
	node int
}

// nodeHeap is a min-heap of pqItem ordered by tentative distance.
type nodeHeap []pqItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(pqItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra from `from` to `to`, returning Not-found for
// invalid indices or unreachable destinations, and a one-node zero-distance
// Path when from == to.
func (g *Graph) ShortestPath(from, to int) Path {
	return g.shortestPath(from, to, nil)
}

// ShortestPathAvoiding is ShortestPath with a set of nodes pre-excluded from
// the search (the destination is never excluded even if present in avoid).
func (g *Graph) ShortestPathAvoiding(from, to int, avoid map[int]bool) Path {
	return g.shortestPath(from, to, avoid)
}

func (g *Graph) shortestPath(from, to int, avoid map[int]bool) Path {
	if !g.validNode(from) || !g.validNode(to) {
		return Path{Found: false, TotalDistance: Inf}
	}
	if avoid[from] {
		return Path{Found: false, TotalDistance: Inf}
	}
	if from == to {
		return Path{Nodes: []int{from}, TotalDistance: 0, Found: true}
	}

	n := g.NodeCount()
	dist := make([]float64, n)
	pred := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = Inf
		pred[i] = -1
	}
	for node := range avoid {
		if node >= 0 && node < n {
			visited[node] = true
		}
	}

	dist[from] = 0
	visited[from] = false
	pq := &nodeHeap{{dist: 0, node: from}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		u := cur.node
		if u == to {
			break
		}
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, e := range g.adj[u] {
			v := e.To
			if avoid[v] && v != to {
				continue
			}
			if nd := dist[u] + e.Distance; nd < dist[v] {
				dist[v] = nd
				pred[v] = u
				heap.Push(pq, pqItem{dist: nd, node: v})
			}
		}
	}

	return reconstruct(from, to, pred, dist)
}

func reconstruct(from, to int, pred []int, dist []float64) Path {
	if dist[to] == Inf {
		return Path{Found: false, TotalDistance: Inf}
	}
	var reversed []int
	cur := to
	for cur != -1 {
		reversed = append(reversed, cur)
		if cur == from {
			break
		}
		cur = pred[cur]
	}
	if cur != from {
		return Path{Found: false, TotalDistance: Inf}
	}
	nodes := make([]int, len(reversed))
	for i, v := range reversed {
		nodes[len(reversed)-1-i] = v
	}
	return Path{Nodes: nodes, TotalDistance: dist[to], Found: true}
}

// Heuristic estimates remaining cost from node to goal; the zero heuristic
// makes AStar behaviorally identical to Dijkstra, which is the only
// heuristic wired in today (no node coordinates are tracked).
type Heuristic func(node, goal int) float64

// ZeroHeuristic is the default A* heuristic, equivalent to Dijkstra.
func ZeroHeuristic(int, int) float64 { return 0 }

// AStar runs A* with the supplied monotone heuristic. With ZeroHeuristic it
// behaves exactly like ShortestPath.
func (g *Graph) AStar(from, to int, h Heuristic) Path {
	if !g.validNode(from) || !g.validNode(to) {
		return Path{Found: false, TotalDistance: Inf}
	}
	if from == to {
		return Path{Nodes: []int{from}, TotalDistance: 0, Found: true}
	}
	if h == nil {
		h = ZeroHeuristic
	}

	n := g.NodeCount()
	gScore := make([]float64, n)
	pred := make([]int, n)
	visited := make([]bool, n)
	for i := range gScore {
		gScore[i] = Inf
		pred[i] = -1
	}
	gScore[from] = 0
	pq := &nodeHeap{{dist: h(from, to), node: from}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		u := cur.node
		if u == to {
			break
		}
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, e := range g.adj[u] {
			v := e.To
			if tentative := gScore[u] + e.Distance; tentative < gScore[v] {
				gScore[v] = tentative
				pred[v] = u
				heap.Push(pq, pqItem{dist: tentative + h(v, to), node: v})
			}
		}
	}

	return reconstruct(from, to, pred, gScore)
}
