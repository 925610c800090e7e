package world

import (
	"fmt"

	"github.com/warehouse-sim/warehouse-sim/sim/graph"
)

// World owns the node and product vectors: the graph topology, the shelf
// inventory, the loading dock, the charging station, and the front desk.
// Its exported methods read and write shelf slots, but other packages also
// mutate node payloads (shelf slots included), robot occupancy counters and
// product popularity directly through the pointers it hands out.
type World struct {
	Graph    *graph.Graph
	Nodes    []*Node
	Products []*Product

	LoadingDockIdx     int
	ChargingStationIdx int
	FrontDeskIdx       int
}

// edgeSpec is one row of the canonical layout's edge table.
type edgeSpec struct {
	from, to int
	distance float64
	directed bool
}

// shelfSpec describes one canonical shelf and its initial slot contents.
type shelfSpec struct {
	id    string
	name  string
	slots []Slot
}

// NewCanonicalWorld builds the canonical 13-node warehouse layout: one
// loading dock, ten shelves (A-J) with the product/capacity/occupied
// triples from the original simulator's initSimulation(), one 3-port
// charging station, and one front desk — wired together with the
// original's directed/undirected edge table.
func NewCanonicalWorld() *World {
	w := &World{
		Graph:    graph.New(),
		Products: newCatalog(),
	}

	w.LoadingDockIdx = w.addNode("loading_dock", NodeLoadingDock, 2, &LoadingDock{CurrentLorry: MediumLorry})

	shelves := []shelfSpec{
		{"shelf_A", "Shelf A", []Slot{{1, 35, 50}, {2, 28, 40}, {3, 15, 30}, {4, 30, 45}, {5, 45, 60}}},
		{"shelf_B", "Shelf B", []Slot{{13, 12, 25}, {14, 8, 20}, {15, 35, 50}, {16, 7, 15}, {17, 18, 30}}},
		{"shelf_C", "Shelf C", []Slot{{9, 25, 40}, {10, 30, 45}, {11, 20, 35}, {12, 28, 40}}},
		{"shelf_D", "Shelf D", []Slot{{6, 75, 100}, {7, 60, 80}, {8, 45, 70}}},
		{"shelf_E", "Shelf E", []Slot{{18, 45, 60}, {19, 30, 50}, {20, 25, 40}}},
		{"shelf_F", "Shelf F", []Slot{{21, 20, 35}, {22, 30, 45}, {23, 8, 15}}},
		{"shelf_G", "Shelf G", []Slot{{24, 25, 40}, {25, 35, 50}}},
		{"shelf_H", "Shelf H", []Slot{{26, 18, 30}, {27, 25, 40}, {28, 15, 25}}},
		{"shelf_I", "Shelf I", []Slot{{29, 40, 55}, {30, 20, 35}}},
		{"shelf_J", "Shelf J", []Slot{{1, 40, 50}, {15, 35, 50}, {6, 80, 100}, {18, 45, 60}}},
	}
	shelfIdx := make(map[string]int, len(shelves))
	for _, s := range shelves {
		shelfIdx[s.id] = w.addNode(s.id, NodeShelf, 1, &ShelfData{Name: s.name, Slots: append([]Slot(nil), s.slots...)})
	}

	w.ChargingStationIdx = w.addNode("charging_station", NodeChargingStation, 3, &ChargingStation{Ports: 3})
	w.FrontDeskIdx = w.addNode("front_desk", NodeFrontDesk, 2, &FrontDesk{})

	edges := []edgeSpec{
		{w.LoadingDockIdx, shelfIdx["shelf_A"], 5.0, false},
		{shelfIdx["shelf_A"], w.ChargingStationIdx, 3.0, true},
		{shelfIdx["shelf_A"], shelfIdx["shelf_B"], 4.0, false},
		{shelfIdx["shelf_A"], w.FrontDeskIdx, 6.0, false},
		{w.ChargingStationIdx, shelfIdx["shelf_B"], 4.0, true},
		{shelfIdx["shelf_B"], shelfIdx["shelf_C"], 3.0, false},
		{shelfIdx["shelf_B"], shelfIdx["shelf_D"], 4.0, false},
		{shelfIdx["shelf_B"], shelfIdx["shelf_E"], 5.0, false},
		{shelfIdx["shelf_C"], shelfIdx["shelf_G"], 4.0, true},
		{shelfIdx["shelf_C"], shelfIdx["shelf_F"], 5.0, true},
		{shelfIdx["shelf_D"], shelfIdx["shelf_C"], 3.0, true},
		{shelfIdx["shelf_D"], shelfIdx["shelf_H"], 4.0, true},
		{shelfIdx["shelf_E"], shelfIdx["shelf_D"], 7.0, true},
		{shelfIdx["shelf_F"], shelfIdx["shelf_J"], 6.0, false},
		{shelfIdx["shelf_F"], shelfIdx["shelf_G"], 3.0, true},
		{shelfIdx["shelf_G"], shelfIdx["shelf_D"], 3.0, true},
		{shelfIdx["shelf_H"], shelfIdx["shelf_I"], 4.0, false},
		{shelfIdx["shelf_H"], shelfIdx["shelf_J"], 5.0, true},
		{shelfIdx["shelf_I"], w.FrontDeskIdx, 8.0, false},
		{shelfIdx["shelf_F"], w.ChargingStationIdx, 10.0, true},
	}
	for _, e := range edges {
		w.Graph.AddEdge(e.from, e.to, e.distance, e.directed)
	}

	return w
}

// addNode registers a node in both the graph and the node vector, keeping
// their indices in lockstep.
func (w *World) addNode(id string, t NodeType, maxRobots int, data Payload) int {
	idx := w.Graph.AddNode()
	w.Nodes = append(w.Nodes, &Node{Index: idx, ID: id, Type: t, MaxRobots: maxRobots, Data: data})
	return idx
}

// Node returns the node at idx, or nil if idx is out of range.
func (w *World) Node(idx int) *Node {
	if idx < 0 || idx >= len(w.Nodes) {
		return nil
	}
	return w.Nodes[idx]
}

// Product returns the catalog entry with the given id, or nil.
func (w *World) Product(id int) *Product {
	for _, p := range w.Products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ResetInventory restores the canonical layout: shelf contents, dock and
// charging-station occupancy, front-desk pending orders, robot occupancy
// counters, and product popularity are all reset to their startup values.
// Idempotent: applying it twice yields identical state.
func (w *World) ResetInventory() {
	fresh := NewCanonicalWorld()
	for i, n := range w.Nodes {
		n.CurrentRobots = 0
		n.Zone = ZoneOther
		switch data := n.Data.(type) {
		case *ShelfData:
			freshData := fresh.Nodes[i].Data.(*ShelfData)
			data.Slots = append([]Slot(nil), freshData.Slots...)
		case *LoadingDock:
			*data = LoadingDock{CurrentLorry: MediumLorry}
		case *ChargingStation:
			data.OccupiedCount = 0
		case *FrontDesk:
			data.PendingOrders = 0
		}
	}
	for i, p := range w.Products {
		p.Popularity = 0
		_ = i
	}
}

// GetShelfSlots returns a copy of the slots for the shelf at nodeIdx, or an
// error if nodeIdx does not name a shelf.
func (w *World) GetShelfSlots(nodeIdx int) ([]Slot, error) {
	n := w.Node(nodeIdx)
	if n == nil {
		return nil, fmt.Errorf("world: invalid node index %d", nodeIdx)
	}
	shelf, ok := n.Shelf()
	if !ok {
		return nil, fmt.Errorf("world: node %d is not a shelf", nodeIdx)
	}
	return append([]Slot(nil), shelf.Slots...), nil
}

// SetShelfSlot overwrites one slot of the shelf at nodeIdx, enforcing the
// 0 <= occupied <= capacity invariant by clamping.
func (w *World) SetShelfSlot(nodeIdx, slotIdx int, slot Slot) error {
	n := w.Node(nodeIdx)
	if n == nil {
		return fmt.Errorf("world: invalid node index %d", nodeIdx)
	}
	shelf, ok := n.Shelf()
	if !ok {
		return fmt.Errorf("world: node %d is not a shelf", nodeIdx)
	}
	if slot.Occupied < 0 {
		slot.Occupied = 0
	}
	if slot.Occupied > slot.Capacity {
		slot.Occupied = slot.Capacity
	}
	if !shelf.SetSlot(slotIdx, slot) {
		return fmt.Errorf("world: invalid slot index %d on node %d", slotIdx, nodeIdx)
	}
	return nil
}

// SwapProducts exchanges the product assignment (id, capacity, occupied) of
// two slots, optionally across different shelves. Used by restock/rebalance
// flows when a policy wants to reassign a slot to a different SKU.
func (w *World) SwapProducts(nodeA, slotA, nodeB, slotB int) error {
	sa, err := w.slot(nodeA, slotA)
	if err != nil {
		return err
	}
	sb, err := w.slot(nodeB, slotB)
	if err != nil {
		return err
	}
	if err := w.SetShelfSlot(nodeA, slotA, sb); err != nil {
		return err
	}
	return w.SetShelfSlot(nodeB, slotB, sa)
}

func (w *World) slot(nodeIdx, slotIdx int) (Slot, error) {
	n := w.Node(nodeIdx)
	if n == nil {
		return Slot{}, fmt.Errorf("world: invalid node index %d", nodeIdx)
	}
	shelf, ok := n.Shelf()
	if !ok {
		return Slot{}, fmt.Errorf("world: node %d is not a shelf", nodeIdx)
	}
	s, ok := shelf.SlotAt(slotIdx)
	if !ok {
		return Slot{}, fmt.Errorf("world: invalid slot index %d on node %d", slotIdx, nodeIdx)
	}
	return s, nil
}

// FindProductOnShelf returns the first shelf (by ascending node index) that
// holds productID with Occupied > 0, and the slot index within it.
func (w *World) FindProductOnShelf(productID int) (nodeIdx, slotIdx int, found bool) {
	for _, n := range w.Nodes {
		shelf, ok := n.Shelf()
		if !ok {
			continue
		}
		for j, s := range shelf.Slots {
			if s.ProductID == productID && s.Occupied > 0 {
				return n.Index, j, true
			}
		}
	}
	return -1, -1, false
}

// FindBestShelfForProduct picks the placement target for productID: it
// prefers a shelf matching the product's popularity-recommended zone that
// already stocks the product with spare capacity, falling back to the
// first shelf slot with any spare capacity, whatever product it holds.
// Ties are resolved by ascending node index.
func (w *World) FindBestShelfForProduct(productID int) (nodeIdx, slotIdx int, found bool) {
	p := w.Product(productID)
	recommended := ZoneCold
	if p != nil {
		recommended = RecommendedZone(p.Popularity)
	}

	for _, n := range w.Nodes {
		shelf, ok := n.Shelf()
		if !ok || n.Zone != recommended {
			continue
		}
		for j, s := range shelf.Slots {
			if s.ProductID == productID && s.Occupied < s.Capacity {
				return n.Index, j, true
			}
		}
	}

	for _, n := range w.Nodes {
		shelf, ok := n.Shelf()
		if !ok {
			continue
		}
		for j, s := range shelf.Slots {
			if s.Occupied < s.Capacity {
				return n.Index, j, true
			}
		}
	}

	return -1, -1, false
}
