package event

import (
	"github.com/sirupsen/logrus"

	"github.com/warehouse-sim/warehouse-sim/rng"
	"github.com/warehouse-sim/warehouse-sim/sim/popularity"
	"github.com/warehouse-sim/warehouse-sim/sim/task"
	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

const (
	restockSweepInterval  = 1800.0
	incomingDeliveryMean  = 2 * 3600.0
	customerOrderMean     = 5 * 60.0
	dockRetryBackoff      = 300.0
	dockWaitBackoff       = 120.0
	urgentDockBusyBackoff = 30.0
	urgentWaitBackoff     = 60.0
	urgentDeadlineOffset  = 180.0
)

// Scheduler owns the event heap and the stochastic state needed to keep it
// fed: the partitioned RNG, the task id allocator, and the per-product
// postpone counters. It is the sole writer of simulated time.
type Scheduler struct {
	World      *world.World
	Popularity *popularity.Manager
	Negotiator task.Negotiator

	rng       *rng.PartitionedRNG
	ids       *task.IDAllocator
	postpones *task.PostponeTracker
	heap      *Heap

	currentSimTime float64
}

// NewScheduler wires a scheduler to its world, popularity manager, and
// negotiator. Call Init before the first Process.
func NewScheduler(w *world.World, pop *popularity.Manager, negotiator task.Negotiator) *Scheduler {
	return &Scheduler{
		World:      w,
		Popularity: pop,
		Negotiator: negotiator,
		ids:        task.NewIDAllocator(),
		postpones:  task.NewPostponeTracker(),
	}
}

// CurrentSimTime returns the scheduler's simulated-time clock.
func (s *Scheduler) CurrentSimTime() float64 { return s.currentSimTime }

// Init seeds the RNG, clears the heap, resets simulated time to 0, and
// pre-schedules one IncomingDelivery, one CustomerOrder, and one
// RestockNeeded at time 0.
func (s *Scheduler) Init(seed int64) {
	s.rng = rng.New(seed)
	s.heap = NewHeap()
	s.currentSimTime = 0

	d := s.generateIncomingDelivery(0)
	s.heap.Schedule(NewIncomingDeliveryEvent(0, d.ProductID, d.LorrySize))
	o := s.generateCustomerOrder(0)
	s.heap.Schedule(NewCustomerOrderEvent(0, o.ProductID, o.Quantity))
	s.heap.Schedule(NewRestockNeededEvent(0))
}

// Schedule adds an externally constructed event (e.g. LowBattery, an
// UrgentRestock retry) to the heap.
func (s *Scheduler) Schedule(e Event) {
	s.heap.Schedule(e)
}

// Process advances simulated time by dt, runs popularity decay, then drains
// every event with trigger_time <= current_sim_time in heap order.
func (s *Scheduler) Process(dt float64) {
	s.currentSimTime += dt
	if s.Popularity != nil {
		s.Popularity.ApplyDecay(s.currentSimTime)
	}

	for {
		next := s.heap.Peek()
		if next == nil || next.Trigger() > s.currentSimTime {
			return
		}
		s.heap.PopNext()
		s.dispatch(next)
	}
}

func (s *Scheduler) dispatch(e Event) {
	switch ev := e.(type) {
	case *IncomingDeliveryEvent:
		s.handleIncomingDelivery(ev)
	case *CustomerOrderEvent:
		s.handleCustomerOrder(ev)
	case *RestockNeededEvent:
		s.handleRestockNeeded(ev)
	case *UrgentRestockEvent:
		s.handleUrgentRestock(ev)
	default:
		logrus.WithField("type", e.Type()).Warn("event: no handler for dispatched event")
	}
}

func (s *Scheduler) generateIncomingDelivery(now float64) *IncomingDeliveryEvent {
	r := s.rng.ForSubsystem(rng.SubsystemRestock)
	trigger := now + exponentialInterval(r, incomingDeliveryMean)
	lorry := uniformLorrySize(r)
	productID := weightedProductPick(r, s.World.Products, deliveryWeight)
	return NewIncomingDeliveryEvent(trigger, productID, lorry)
}

func (s *Scheduler) generateCustomerOrder(now float64) *CustomerOrderEvent {
	r := s.rng.ForSubsystem(rng.SubsystemWorkload)
	trigger := now + exponentialInterval(r, customerOrderMean)
	productID := weightedProductPick(r, s.World.Products, orderWeight)
	quantity := uniformQuantity(r)
	return NewCustomerOrderEvent(trigger, productID, quantity)
}

func (s *Scheduler) handleIncomingDelivery(e *IncomingDeliveryEvent) {
	defer s.heap.Schedule(s.generateIncomingDelivery(s.currentSimTime))

	dock, _ := s.World.Node(s.World.LoadingDockIdx).LoadingDock()
	if dock.Occupied {
		s.heap.Schedule(NewIncomingDeliveryEvent(s.currentSimTime+dockRetryBackoff, e.ProductID, e.LorrySize))
		return
	}

	dock.Occupied = true
	dock.DeliveryCount++
	dock.CurrentLorry = world.LorrySize(e.LorrySize)

	t := task.Task{
		ID:         s.ids.Next(task.IncomingDelivery),
		Type:       task.IncomingDelivery,
		ProductID:  e.ProductID,
		Quantity:   e.LorrySize,
		SourceNode: s.World.LoadingDockIdx,
		TargetNode: -1,
		Priority:   task.PriorityNormal,
	}

	action, err := s.Negotiator.Negotiate(t)
	if err != nil || action.IsWait() {
		dock.Occupied = false
		s.heap.Schedule(NewIncomingDeliveryEvent(s.currentSimTime+dockWaitBackoff, e.ProductID, e.LorrySize))
		return
	}

	shelfNode := action.TargetNode
	if slots, err := s.World.GetShelfSlots(shelfNode); err == nil {
		for j, slot := range slots {
			if slot.ProductID != e.ProductID {
				continue
			}
			slot.Occupied += e.LorrySize
			if slot.Occupied > slot.Capacity {
				slot.Occupied = slot.Capacity
			}
			_ = s.World.SetShelfSlot(shelfNode, j, slot)
			break
		}
	}
	dock.Occupied = false
}

func (s *Scheduler) handleCustomerOrder(e *CustomerOrderEvent) {
	defer s.heap.Schedule(s.generateCustomerOrder(s.currentSimTime))

	if desk, ok := s.World.Node(s.World.FrontDeskIdx).FrontDesk(); ok {
		desk.PendingOrders++
	}

	shelfNode, slotIdx, found := s.findShelfWithStock(e.ProductID, e.Quantity)
	if !found {
		attempts := s.postpones.Increment(e.ProductID)
		if task.ShouldCancel(attempts) {
			s.postpones.Reset(e.ProductID)
			if desk, ok := s.World.Node(s.World.FrontDeskIdx).FrontDesk(); ok && desk.PendingOrders > 0 {
				desk.PendingOrders--
			}
			logrus.WithField("product_id", e.ProductID).Info("event: customer order cancelled after repeated postpones")
			return
		}
		if task.ShouldEscalate(attempts) {
			s.heap.Schedule(NewUrgentRestockEvent(s.currentSimTime+1, e.ProductID, 30))
		}
		retry := NewCustomerOrderEvent(s.currentSimTime+task.Backoff(attempts), e.ProductID, e.Quantity)
		s.heap.Schedule(retry)
		return
	}

	slots, _ := s.World.GetShelfSlots(shelfNode)
	slot := slots[slotIdx]
	slot.Occupied -= e.Quantity
	_ = s.World.SetShelfSlot(shelfNode, slotIdx, slot)
	s.postpones.Reset(e.ProductID)

	t := task.Task{
		ID:         s.ids.Next(task.CustomerOrder),
		Type:       task.CustomerOrder,
		ProductID:  e.ProductID,
		Quantity:   e.Quantity,
		SourceNode: shelfNode,
		TargetNode: s.World.FrontDeskIdx,
		Priority:   task.PriorityNormal,
	}

	action, err := s.Negotiator.Negotiate(t)
	if err != nil || action.IsWait() {
		rollback := slots[slotIdx]
		_ = s.World.SetShelfSlot(shelfNode, slotIdx, rollback)
		attempts := s.postpones.Increment(e.ProductID)
		s.heap.Schedule(NewCustomerOrderEvent(s.currentSimTime+task.Backoff(attempts), e.ProductID, e.Quantity))
		return
	}

	if s.Popularity != nil {
		s.Popularity.UpdatePopularityAndZone(e.ProductID)
	}
}

// findShelfWithStock returns the first shelf (ascending node index) with a
// slot for productID holding at least quantity units.
func (s *Scheduler) findShelfWithStock(productID, quantity int) (nodeIdx, slotIdx int, found bool) {
	for _, n := range s.World.Nodes {
		shelf, ok := n.Shelf()
		if !ok {
			continue
		}
		for j, slot := range shelf.Slots {
			if slot.ProductID == productID && slot.Occupied >= quantity {
				return n.Index, j, true
			}
		}
	}
	return -1, -1, false
}

func (s *Scheduler) handleRestockNeeded(e *RestockNeededEvent) {
	defer s.heap.Schedule(NewRestockNeededEvent(s.currentSimTime + restockSweepInterval))

	for _, n := range s.World.Nodes {
		shelf, ok := n.Shelf()
		if !ok {
			continue
		}
		for _, slot := range shelf.Slots {
			if slot.ProductID <= 0 || slot.Capacity == 0 {
				continue
			}
			fillRate := slot.FillRate()
			p := s.World.Product(slot.ProductID)
			threshold := 0.3
			if p != nil {
				switch {
				case p.Popularity >= 5:
					threshold = 0.5
				case p.Popularity >= 3:
					threshold = 0.4
				}
			}
			if fillRate >= threshold {
				continue
			}

			quantity := slot.Capacity - slot.Occupied
			priority := task.PriorityLow
			if fillRate < 0.1 {
				quantity = slot.Capacity
				priority = task.PriorityHigh
			}

			t := task.Task{
				ID:         s.ids.Next(task.RestockRequest),
				Type:       task.RestockRequest,
				ProductID:  slot.ProductID,
				Quantity:   quantity,
				SourceNode: s.World.LoadingDockIdx,
				TargetNode: n.Index,
				Priority:   priority,
			}
			_, _ = s.Negotiator.Negotiate(t)
		}
	}
}

func (s *Scheduler) handleUrgentRestock(e *UrgentRestockEvent) {
	dock, _ := s.World.Node(s.World.LoadingDockIdx).LoadingDock()
	if dock.Occupied {
		s.heap.Schedule(NewUrgentRestockEvent(s.currentSimTime+urgentDockBusyBackoff, e.ProductID, e.Quantity))
		return
	}

	shelfNode, slotIdx, found := s.World.FindProductOnShelf(e.ProductID)
	if !found {
		// No shelf slot holds stock of this product (FindProductOnShelf skips
		// empty slots); fall back to FindBestShelfForProduct, whose last pass
		// returns the first slot with spare capacity, whatever its product.
		shelfNode, slotIdx, found = s.World.FindBestShelfForProduct(e.ProductID)
		if !found {
			return
		}
	}

	dock.Occupied = true

	t := task.Task{
		ID:         s.ids.Next(task.RestockRequest),
		Type:       task.RestockRequest,
		ProductID:  e.ProductID,
		Quantity:   e.Quantity,
		SourceNode: s.World.LoadingDockIdx,
		TargetNode: shelfNode,
		Priority:   task.PriorityUrgent,
		Deadline:   s.currentSimTime + urgentDeadlineOffset,
	}

	action, err := s.Negotiator.Negotiate(t)
	if err != nil || action.IsWait() {
		dock.Occupied = false
		s.heap.Schedule(NewUrgentRestockEvent(s.currentSimTime+urgentWaitBackoff, e.ProductID, e.Quantity))
		return
	}

	slots, _ := s.World.GetShelfSlots(shelfNode)
	slot := slots[slotIdx]
	slot.Occupied += e.Quantity
	if slot.Occupied > slot.Capacity {
		slot.Occupied = slot.Capacity
	}
	_ = s.World.SetShelfSlot(shelfNode, slotIdx, slot)
	dock.Occupied = false
}
