package world

import "testing"

func TestNewCanonicalWorld_HasThirteenNodes(t *testing.T) {
	w := NewCanonicalWorld()
	if len(w.Nodes) != 13 {
		t.Fatalf("expected 13 nodes in the canonical layout, got %d", len(w.Nodes))
	}
	if len(w.Products) != 30 {
		t.Fatalf("expected 30 products in the canonical catalog, got %d", len(w.Products))
	}
}

func TestResetInventory_IsIdempotent(t *testing.T) {
	w := NewCanonicalWorld()

	// Mutate shelf_A slot 0 and popularity, then reset twice.
	shelfA := -1
	for _, n := range w.Nodes {
		if n.ID == "shelf_A" {
			shelfA = n.Index
		}
	}
	_ = w.SetShelfSlot(shelfA, 0, Slot{ProductID: 1, Occupied: 0, Capacity: 50})
	w.Products[0].Popularity = 7

	w.ResetInventory()
	snapshot1 := snapshotSlots(w, shelfA)

	w.ResetInventory()
	snapshot2 := snapshotSlots(w, shelfA)

	if len(snapshot1) != len(snapshot2) {
		t.Fatalf("slot count changed across resets")
	}
	for i := range snapshot1 {
		if snapshot1[i] != snapshot2[i] {
			t.Fatalf("slot %d differs across resets: %+v vs %+v", i, snapshot1[i], snapshot2[i])
		}
	}
	if w.Products[0].Popularity != 0 {
		t.Fatalf("expected popularity reset to 0, got %d", w.Products[0].Popularity)
	}
}

func snapshotSlots(w *World, nodeIdx int) []Slot {
	slots, err := w.GetShelfSlots(nodeIdx)
	if err != nil {
		panic(err)
	}
	return slots
}

func TestFindProductOnShelf_ReturnsFirstByAscendingIndex(t *testing.T) {
	w := NewCanonicalWorld()
	// Product 1 (T-shirts) is stocked on shelf_A and shelf_J; shelf_A has lower index.
	nodeIdx, slotIdx, found := w.FindProductOnShelf(1)
	if !found {
		t.Fatalf("expected product 1 to be found")
	}
	if w.Node(nodeIdx).ID != "shelf_A" || slotIdx != 0 {
		t.Fatalf("expected shelf_A slot 0, got node %s slot %d", w.Node(nodeIdx).ID, slotIdx)
	}
}

func TestFindProductOnShelf_NotFoundWhenAllZero(t *testing.T) {
	w := NewCanonicalWorld()
	nodeIdx, slotIdx, found := w.FindProductOnShelf(999)
	if found || nodeIdx != -1 || slotIdx != -1 {
		t.Fatalf("expected not-found for an unstocked product")
	}
}

func TestSetShelfSlot_ClampsOccupiedToCapacity(t *testing.T) {
	w := NewCanonicalWorld()
	shelfA := w.Nodes[1].Index
	if err := w.SetShelfSlot(shelfA, 0, Slot{ProductID: 1, Occupied: 999, Capacity: 50}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slots, _ := w.GetShelfSlots(shelfA)
	if slots[0].Occupied != 50 {
		t.Fatalf("expected occupied clamped to capacity 50, got %d", slots[0].Occupied)
	}
}

func TestFindBestShelfForProduct_FallsBackWhenNoZoneMatch(t *testing.T) {
	w := NewCanonicalWorld()
	// At popularity 0 every shelf defaults to ZoneOther so no shelf matches
	// the Cold recommendation; the fallback (first slot with spare capacity,
	// of any product) must still find shelf_A slot 0.
	nodeIdx, slotIdx, found := w.FindBestShelfForProduct(1)
	if !found {
		t.Fatalf("expected a fallback shelf to be found")
	}
	if w.Node(nodeIdx).ID != "shelf_A" || slotIdx != 0 {
		t.Fatalf("expected fallback to shelf_A slot 0, got %s slot %d", w.Node(nodeIdx).ID, slotIdx)
	}
}
