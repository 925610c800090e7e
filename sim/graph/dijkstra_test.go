package graph

import "testing"

func TestShortestPath_TrivialSameNode(t *testing.T) {
	g := New()
	a := g.AddNode()
	p := g.ShortestPath(a, a)
	if !p.Found || p.TotalDistance != 0 || len(p.Nodes) != 1 || p.Nodes[0] != a {
		t.Fatalf("expected one-node zero-distance path, got %+v", p)
	}
}

func TestShortestPath_Disconnected(t *testing.T) {
	g := New()
	a := g.AddNode()
	b := g.AddNode()
	p := g.ShortestPath(a, b)
	if p.Found || p.TotalDistance != Inf {
		t.Fatalf("expected NotFound for disconnected nodes, got %+v", p)
	}
}

func TestShortestPath_InvalidIndices(t *testing.T) {
	g := New()
	g.AddNode()
	p := g.ShortestPath(0, 99)
	if p.Found {
		t.Fatalf("expected NotFound for invalid destination index")
	}
}

// TestShortestPath_SymmetricOnUndirectedSubgraph mirrors spec.md §8's
// round-trip property: distance(a,b) == distance(b,a) when every edge used
// is undirected.
func TestShortestPath_SymmetricOnUndirectedSubgraph(t *testing.T) {
	g := New()
	a := g.AddNode()
	b := g.AddNode()
	c := g.AddNode()
	g.AddEdge(a, b, 2.0, false)
	g.AddEdge(b, c, 3.0, false)

	ab := g.ShortestPath(a, c)
	ba := g.ShortestPath(c, a)
	if !ab.Found || !ba.Found || ab.TotalDistance != ba.TotalDistance {
		t.Fatalf("expected symmetric distances, got %v and %v", ab.TotalDistance, ba.TotalDistance)
	}
}

// TestShortestPath_ReroutesAroundInboundOnlyEdge mirrors spec.md §8
// scenario 6: a directed edge shelf_A->charging_station must not be usable
// from charging_station, forcing a reroute via the undirected path.
func TestShortestPath_ReroutesAroundInboundOnlyEdge(t *testing.T) {
	g := New()
	shelfA := g.AddNode()
	shelfB := g.AddNode()
	charging := g.AddNode()

	g.AddEdge(shelfA, charging, 3.0, true) // directed, inbound-only to charging
	g.AddEdge(shelfA, shelfB, 4.0, false)
	g.AddEdge(shelfB, charging, 2.0, false)

	p := g.ShortestPath(charging, shelfA)
	if !p.Found {
		t.Fatalf("expected a reroute path to be found")
	}
	if p.Nodes[0] != charging || p.Nodes[len(p.Nodes)-1] != shelfA {
		t.Fatalf("expected path endpoints to match query, got %v", p.Nodes)
	}
	if g.HasEdge(charging, shelfA) {
		t.Fatalf("test setup invalid: direct edge should not exist")
	}
	wantDistance := 2.0 + 4.0 // charging->shelfB->shelfA
	if p.TotalDistance != wantDistance {
		t.Fatalf("expected distance %v via reroute, got %v", wantDistance, p.TotalDistance)
	}
}

func TestShortestPathAvoiding_ExcludesAvoidedNodes(t *testing.T) {
	g := New()
	a := g.AddNode()
	b := g.AddNode()
	c := g.AddNode()
	g.AddEdge(a, b, 1.0, false)
	g.AddEdge(b, c, 1.0, false)
	g.AddEdge(a, c, 10.0, false)

	direct := g.ShortestPath(a, c)
	if direct.TotalDistance != 2.0 {
		t.Fatalf("expected direct path via b to be shortest, got %v", direct.TotalDistance)
	}

	avoided := g.ShortestPathAvoiding(a, c, map[int]bool{b: true})
	if !avoided.Found || avoided.TotalDistance != 10.0 {
		t.Fatalf("expected forced route via direct edge (10.0), got %+v", avoided)
	}
}

func TestShortestPathAvoiding_DestinationInAvoidSetIsStillReached(t *testing.T) {
	g := New()
	a := g.AddNode()
	b := g.AddNode()
	g.AddEdge(a, b, 1.0, false)

	p := g.ShortestPathAvoiding(a, b, map[int]bool{b: true})
	if !p.Found || p.TotalDistance != 1.0 {
		t.Fatalf("expected destination in the avoid set to be reached at distance 1.0, got %+v", p)
	}
}

func TestAStar_ZeroHeuristicMatchesDijkstra(t *testing.T) {
	g := New()
	a := g.AddNode()
	b := g.AddNode()
	c := g.AddNode()
	g.AddEdge(a, b, 1.0, false)
	g.AddEdge(b, c, 1.0, false)
	g.AddEdge(a, c, 5.0, false)

	dij := g.ShortestPath(a, c)
	star := g.AStar(a, c, ZeroHeuristic)
	if dij.TotalDistance != star.TotalDistance {
		t.Fatalf("expected A* with zero heuristic to match Dijkstra distance, got %v vs %v", star.TotalDistance, dij.TotalDistance)
	}
}
