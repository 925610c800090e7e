package event

import "container/heap"

// Heap is a binary min-heap over Event keyed by trigger time, with
// deterministic tie-breaking: trigger time -> type priority -> event id.
type Heap struct {
	events []Event
}

// NewHeap returns an empty, heap-initialized event queue.
func NewHeap() *Heap {
	h := &Heap{events: make([]Event, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface.
func (h *Heap) Len() int { return len(h.events) }

// Less implements heap.Interface with the deterministic ordering required
// by §5's ordering guarantees.
func (h *Heap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]

	if ei.Trigger() != ej.Trigger() {
		return ei.Trigger() < ej.Trigger()
	}
	pi, pj := TypePriority[ei.Type()], TypePriority[ej.Type()]
	if pi != pj {
		return pi < pj
	}
	return ei.EventID() < ej.EventID()
}

// Swap implements heap.Interface.
func (h *Heap) Swap(i, j int) { h.events[i], h.events[j] = h.events[j], h.events[i] }

// Push implements heap.Interface.
func (h *Heap) Push(x interface{}) { h.events = append(h.events, x.(Event)) }

// Pop implements heap.Interface.
func (h *Heap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[:n-1]
	return item
}

// Schedule adds an event to the queue.
func (h *Heap) Schedule(e Event) { heap.Push(h, e) }

// PopNext removes and returns the earliest event, or nil if the queue is
// empty.
func (h *Heap) PopNext() Event {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(Event)
}

// Peek returns the earliest event without removing it, or nil.
func (h *Heap) Peek() Event {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
