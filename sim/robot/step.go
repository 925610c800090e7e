package robot

import (
	"github.com/warehouse-sim/warehouse-sim/sim/graph"
	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

// ActionCode selects the discrete action step_simulation performs.
type ActionCode int

const (
	ActionMove ActionCode = iota
	ActionPickup
	ActionDropoff
	ActionCharge
	ActionTransfer
)

// Result is the 0/1 flag and real-valued outcome map of one step_simulation
// call. Domain failures are reported here, never as a Go error (§4.3/§7).
type Result struct {
	OrderCompleted       bool
	OrderFailed          bool
	Blocked              bool
	RobotIdle            bool
	ChargingOptimal      bool
	HandoverSuccess      bool
	OptimalZonePlacement bool

	BatteryUsed    float64
	DistanceSaved  float64
	CompletionTime float64
}

// directEdgeDistance is the battery/transfer-cost distance used by the
// direct-edge movement model. Mirrors the original calculateDistance's
// fallback: a missing direct edge costs a large default distance (100)
// rather than failing outright, since MOVE/TRANSFER always operate between
// nodes the policy believes are adjacent.
func directEdgeDistance(w *world.World, from, to int) float64 {
	if from == to {
		return 0
	}
	d := w.Graph.EdgeDistance(from, to)
	if d == graph.Inf {
		return 100.0
	}
	return d
}

// StepSimulation executes one discrete action for robotIdx against the
// direct-edge movement model (§4.3, §9 Design Notes — the companion to the
// gradual per-tick model in movement.go). It never returns an error;
// failures are reported via Result flags.
func StepSimulation(w *world.World, fleet *Fleet, robotIdx int, action ActionCode, targetNode, productID int) Result {
	var res Result

	r := fleet.Get(robotIdx)
	if r == nil {
		res.OrderFailed = true
		return res
	}

	switch action {
	case ActionMove:
		stepMove(w, r, targetNode, &res)
	case ActionPickup:
		stepPickup(w, r, targetNode, productID, &res)
	case ActionDropoff:
		stepDropoff(w, r, targetNode, &res)
	case ActionCharge:
		stepCharge(w, r, &res)
	case ActionTransfer:
		stepTransfer(w, fleet, robotIdx, targetNode, &res)
	default:
		res.OrderFailed = true
	}

	if r.Status == Idle && !r.HasOrder {
		res.RobotIdle = true
	}
	return res
}

func stepMove(w *world.World, r *Robot, targetNode int, res *Result) {
	target := w.Node(targetNode)
	if target == nil {
		res.OrderFailed = true
		return
	}
	if target.CurrentRobots >= target.MaxRobots {
		res.Blocked = true
		return
	}

	distance := directEdgeDistance(w, r.CurrentNode, targetNode)
	batteryUsed := distance * 0.5
	if r.Battery < batteryUsed {
		res.OrderFailed = true
		return
	}

	source := w.Node(r.CurrentNode)
	if source != nil {
		source.CurrentRobots--
		if source.CurrentRobots < 0 {
			source.CurrentRobots = 0
		}
	}
	r.CurrentNode = targetNode
	target.CurrentRobots++
	r.Battery -= batteryUsed
	r.Status = Idle

	res.BatteryUsed = batteryUsed
}

func stepPickup(w *world.World, r *Robot, targetNode, productID int, res *Result) {
	if r.CurrentNode != targetNode {
		res.OrderFailed = true
		return
	}
	if r.Carrying {
		res.OrderFailed = true
		return
	}

	shelfNode, slotIdx, found := w.FindProductOnShelf(productID)
	if !found || shelfNode != targetNode {
		res.OrderFailed = true
		return
	}

	slots, _ := w.GetShelfSlots(shelfNode)
	slot := slots[slotIdx]
	slot.Occupied--
	_ = w.SetShelfSlot(shelfNode, slotIdx, slot)

	r.Carrying = true
	r.HasOrder = true
	r.CurrentOrder = Order{ProductID: productID, SlotIndex: slotIdx}
	r.Status = Carrying
}

func stepDropoff(w *world.World, r *Robot, targetNode int, res *Result) {
	if !r.Carrying || r.CurrentNode != targetNode {
		res.OrderFailed = true
		return
	}

	target := w.Node(targetNode)
	switch target.Type {
	case world.NodeFrontDesk:
		desk, _ := target.FrontDesk()
		if desk.PendingOrders > 0 {
			desk.PendingOrders--
		}
		res.OrderCompleted = true
	case world.NodeShelf:
		bestNode, _, found := w.FindBestShelfForProduct(r.CurrentOrder.ProductID)
		if found && bestNode == targetNode {
			res.OptimalZonePlacement = true
		}
		shelf, _ := target.Shelf()
		for i, s := range shelf.Slots {
			if s.ProductID == r.CurrentOrder.ProductID {
				s.Occupied++
				if s.Occupied > s.Capacity {
					s.Occupied = s.Capacity
				}
				shelf.Slots[i] = s
				break
			}
		}
		res.OrderCompleted = true
	default:
		res.OrderFailed = true
		return
	}

	r.Carrying = false
	r.HasOrder = false
	r.CurrentOrder = Order{}
	r.Status = Idle
}

func stepCharge(w *world.World, r *Robot, res *Result) {
	station := w.Node(r.CurrentNode)
	if station == nil || station.Type != world.NodeChargingStation {
		res.OrderFailed = true
		return
	}
	cs, _ := station.ChargingStation()
	if cs.OccupiedCount >= cs.Ports {
		res.Blocked = true
		return
	}

	preChargeBattery := r.Battery
	chargeAmount := 100 - r.Battery
	if chargeAmount > 10 {
		chargeAmount = 10
	}
	r.Battery += chargeAmount
	r.Status = Charging

	if preChargeBattery < 30 {
		res.ChargingOptimal = true
	}
}

func stepTransfer(w *world.World, fleet *Fleet, robotIdx, targetNode int, res *Result) {
	r := fleet.Get(robotIdx)

	bestIdx := -1
	minDist := 1000.0
	for i, other := range fleet.Robots {
		if i == robotIdx || other.HasOrder || other.Battery < 20 {
			continue
		}
		d := directEdgeDistance(w, r.CurrentNode, other.CurrentNode)
		if d < minDist {
			minDist = d
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		res.OrderFailed = true
		return
	}

	other := fleet.Robots[bestIdx]
	other.CurrentOrder = r.CurrentOrder
	other.HasOrder = true
	r.CurrentOrder = Order{}
	r.HasOrder = false

	originalDistance := directEdgeDistance(w, r.CurrentNode, targetNode)
	newDistance := directEdgeDistance(w, other.CurrentNode, targetNode)
	saved := originalDistance - newDistance
	if saved < 0 {
		saved = 0
	}
	res.DistanceSaved = saved
	res.HandoverSuccess = true
}
