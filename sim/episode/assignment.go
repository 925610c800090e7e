package episode

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/warehouse-sim/warehouse-sim/sim/protocol"
	"github.com/warehouse-sim/warehouse-sim/sim/robot"
	"github.com/warehouse-sim/warehouse-sim/sim/task"
)

// assignmentPhase marks which leg of a multi-leg task a pendingAssignment is
// currently executing.
type assignmentPhase int

const (
	phaseToSource assignmentPhase = iota
	phaseToTarget
	phaseCharging
)

// chargeRatePerSecond is the gradual-model charge rate while a robot holds a
// charging-station port. step.go's stepCharge caps a single discrete action
// at 10 units; this spreads a comparable rate continuously across ticks.
const chargeRatePerSecond = 2.0

// pendingAssignment tracks one robot executing a negotiated, non-WAIT Action
// across however many ticks its movement leg(s) take. The scheduler already
// owns the reservation/rollback inventory math at negotiation time (§4.6);
// this only drives the physical robot and the ACK/ROBOT_STATUS side of the
// wire protocol once a task has been accepted.
type pendingAssignment struct {
	taskID     string
	actionType task.ActionType
	productID  int
	quantity   int
	sourceNode int
	targetNode int
	phase      assignmentPhase

	batteryAtStart float64
	totalDistance  float64
	secondaryRobot int
}

// assign dispatches a to the robot it names, starting whichever movement leg
// comes first. A returned error means the assignment never got underway
// (unknown/busy robot, no path, unavailable handover partner) — the caller
// treats this the same as WAIT so the scheduler rolls its reservation back.
func (d *Driver) assign(t task.Task, a task.Action) error {
	r := d.Fleet.Get(a.RobotIndex)
	if r == nil {
		return fmt.Errorf("action references unknown robot_index %d", a.RobotIndex)
	}
	if r.Status != robot.Idle {
		return fmt.Errorf("robot %d is not idle (status %s)", a.RobotIndex, r.Status)
	}

	switch a.ActionType {
	case task.Charge:
		return d.beginCharge(t, a, r)
	case task.Handover:
		return d.beginHandover(t, a, r)
	default: // PickupAndDeliver, Restock
		return d.beginDelivery(t, a, r)
	}
}

// startLeg moves r toward target if it isn't already there, leaving it
// Moving on success. Returns an error only when no path exists at all.
func (d *Driver) startLeg(r *robot.Robot, target int) error {
	if r.CurrentNode == target {
		return nil
	}
	if !robot.StartMovement(d.World, r, target) {
		return fmt.Errorf("no path from node %d to %d", r.CurrentNode, target)
	}
	return nil
}

func (d *Driver) beginDelivery(t task.Task, a task.Action, r *robot.Robot) error {
	if err := d.startLeg(r, a.SourceNode); err != nil {
		return err
	}
	pa := &pendingAssignment{
		taskID:         t.ID,
		actionType:     a.ActionType,
		productID:      t.ProductID,
		quantity:       t.Quantity,
		sourceNode:     a.SourceNode,
		targetNode:     a.TargetNode,
		phase:          phaseToSource,
		batteryAtStart: r.Battery,
		totalDistance:  d.World.Graph.ShortestPath(a.SourceNode, a.TargetNode).TotalDistance,
	}
	d.pending[a.RobotIndex] = pa
	d.checkArrival(a.RobotIndex)
	return nil
}

func (d *Driver) beginCharge(t task.Task, a task.Action, r *robot.Robot) error {
	if err := d.startLeg(r, a.TargetNode); err != nil {
		return err
	}
	pa := &pendingAssignment{
		taskID:         t.ID,
		actionType:     task.Charge,
		targetNode:     a.TargetNode,
		phase:          phaseToTarget,
		batteryAtStart: r.Battery,
	}
	d.pending[a.RobotIndex] = pa
	d.checkArrival(a.RobotIndex)
	return nil
}

func (d *Driver) beginHandover(t task.Task, a task.Action, r *robot.Robot) error {
	if a.SecondaryRobot == nil {
		return fmt.Errorf("HANDOVER action missing secondary_robot")
	}
	other := d.Fleet.Get(*a.SecondaryRobot)
	if other == nil || other.Status != robot.Idle || other.HasOrder {
		return fmt.Errorf("HANDOVER secondary robot %d is not available", *a.SecondaryRobot)
	}

	node := a.SourceNode
	if a.HandoverNode != nil {
		node = *a.HandoverNode
	}
	if err := d.startLeg(r, node); err != nil {
		return err
	}
	pa := &pendingAssignment{
		taskID:         t.ID,
		actionType:     task.Handover,
		productID:      t.ProductID,
		targetNode:     node,
		phase:          phaseToTarget,
		secondaryRobot: *a.SecondaryRobot,
	}
	d.pending[a.RobotIndex] = pa
	d.checkArrival(a.RobotIndex)
	return nil
}

// advancePendingAssignments is called once per tick, after robot.Tick, to
// detect leg arrivals and drive the charging phase forward.
func (d *Driver) advancePendingAssignments() {
	for robotIdx := range d.pending {
		d.checkArrival(robotIdx)
	}
}

// checkArrival inspects one pending assignment's robot and advances it if it
// has reached the node its current phase is waiting on. Safe to call right
// after starting a leg too, covering the case where the robot was already at
// the destination and robot.Tick will never fire an arrival for it.
func (d *Driver) checkArrival(robotIdx int) {
	pa, ok := d.pending[robotIdx]
	if !ok {
		return
	}
	r := d.Fleet.Get(robotIdx)
	if r == nil {
		delete(d.pending, robotIdx)
		return
	}
	if pa.phase == phaseCharging {
		d.advanceCharging(robotIdx, r, pa)
		return
	}
	if r.Status != robot.Idle {
		return
	}

	switch pa.phase {
	case phaseToSource:
		if r.CurrentNode == pa.sourceNode {
			d.arriveAtSource(robotIdx, r, pa)
		} else {
			d.failAssignment(robotIdx, r, pa, "lost path to source")
		}
	case phaseToTarget:
		switch pa.actionType {
		case task.Charge:
			if r.CurrentNode == pa.targetNode {
				d.arriveAtChargingStation(robotIdx, r, pa)
			} else {
				d.failAssignment(robotIdx, r, pa, "lost path to charging station")
			}
		case task.Handover:
			if r.CurrentNode == pa.targetNode {
				d.arriveAtHandover(robotIdx, r, pa)
			} else {
				d.failAssignment(robotIdx, r, pa, "lost path to handover node")
			}
		default:
			if r.CurrentNode == pa.targetNode {
				d.completeDelivery(robotIdx, r, pa)
			} else {
				d.failAssignment(robotIdx, r, pa, "lost path to target")
			}
		}
	}
}

func (d *Driver) arriveAtSource(robotIdx int, r *robot.Robot, pa *pendingAssignment) {
	r.Carrying = true
	r.HasOrder = true
	r.CurrentOrder = robot.Order{ProductID: pa.productID, Quantity: pa.quantity}
	d.Logger.RecordTaskEvent(d.elapsed, r.ID, TaskEventPickup, pa.productID, pa.sourceNode, pa.sourceNode, 0)

	pa.phase = phaseToTarget
	if r.CurrentNode == pa.targetNode {
		d.completeDelivery(robotIdx, r, pa)
		return
	}
	if !robot.StartMovement(d.World, r, pa.targetNode) {
		d.failAssignment(robotIdx, r, pa, "no path from source to target")
	}
}

func (d *Driver) completeDelivery(robotIdx int, r *robot.Robot, pa *pendingAssignment) {
	batteryUsed := pa.batteryAtStart - r.Battery
	if batteryUsed < 0 {
		batteryUsed = 0
	}
	d.Logger.RecordTaskEvent(d.elapsed, r.ID, TaskEventDropoff, pa.productID, pa.sourceNode, pa.targetNode, pa.totalDistance)
	d.Logger.RecordStepResult(robot.Result{OrderCompleted: true, BatteryUsed: batteryUsed, DistanceSaved: pa.totalDistance})

	r.Carrying = false
	r.HasOrder = false
	r.CurrentOrder = robot.Order{}
	r.Status = robot.Idle

	delete(d.pending, robotIdx)
	d.sendTaskComplete(robotIdx, pa.taskID)
}

func (d *Driver) arriveAtChargingStation(robotIdx int, r *robot.Robot, pa *pendingAssignment) {
	node := d.World.Node(pa.targetNode)
	cs, ok := node.ChargingStation()
	if !ok || cs.OccupiedCount >= cs.Ports {
		d.failAssignment(robotIdx, r, pa, "charging station full")
		return
	}
	cs.OccupiedCount++
	r.Status = robot.Charging
	pa.phase = phaseCharging
}

func (d *Driver) advanceCharging(robotIdx int, r *robot.Robot, pa *pendingAssignment) {
	r.Battery += chargeRatePerSecond * d.cfg.Tick
	if r.Battery > 100 {
		r.Battery = 100
	}
	if r.Battery < 100 {
		return
	}

	if node := d.World.Node(pa.targetNode); node != nil {
		if cs, ok := node.ChargingStation(); ok {
			cs.OccupiedCount--
			if cs.OccupiedCount < 0 {
				cs.OccupiedCount = 0
			}
		}
	}
	r.Status = robot.Idle
	d.Logger.RecordStepResult(robot.Result{OrderCompleted: true, ChargingOptimal: pa.batteryAtStart < 30})
	delete(d.pending, robotIdx)
	d.sendTaskComplete(robotIdx, pa.taskID)
}

func (d *Driver) arriveAtHandover(robotIdx int, r *robot.Robot, pa *pendingAssignment) {
	other := d.Fleet.Get(pa.secondaryRobot)
	if other == nil || other.Status != robot.Idle {
		d.failAssignment(robotIdx, r, pa, "secondary robot no longer available")
		return
	}

	other.CurrentOrder = r.CurrentOrder
	other.HasOrder = r.HasOrder
	other.Carrying = r.Carrying
	r.CurrentOrder = robot.Order{}
	r.HasOrder = false
	r.Carrying = false
	r.Status = robot.Idle

	d.Logger.RecordTaskEvent(d.elapsed, r.ID, TaskEventHandover, pa.productID, r.CurrentNode, r.CurrentNode, 0)
	d.Logger.RecordStepResult(robot.Result{HandoverSuccess: true})

	delete(d.pending, robotIdx)
	d.sendTaskComplete(robotIdx, pa.taskID)
	d.sendStatus(pa.secondaryRobot, protocol.StatusHandoverReady, pa.taskID, "received handover order")
}

func (d *Driver) failAssignment(robotIdx int, r *robot.Robot, pa *pendingAssignment, reason string) {
	r.Status = robot.Idle
	r.TargetNode = -1
	r.Carrying = false
	r.HasOrder = false
	r.CurrentOrder = robot.Order{}

	d.Logger.RecordTaskEvent(d.elapsed, r.ID, TaskEventFailed, pa.productID, r.CurrentNode, pa.targetNode, 0)
	d.Logger.RecordStepResult(robot.Result{OrderFailed: true})

	delete(d.pending, robotIdx)
	d.sendStatus(robotIdx, protocol.StatusStuck, pa.taskID, reason)
}

func (d *Driver) sendStatus(robotIdx int, statusType, taskID, message string) {
	msg := protocol.RobotStatusMessage{
		Type:       protocol.TypeRobotStatus,
		RobotIndex: robotIdx,
		StatusType: statusType,
		TaskID:     taskID,
		Message:    message,
		State:      d.snapshotState(),
	}
	if err := d.enc.Encode(msg); err != nil {
		logrus.WithError(err).WithField("status_type", statusType).Warn("episode: failed to send ROBOT_STATUS")
	}
}

func (d *Driver) sendTaskComplete(robotIdx int, taskID string) {
	d.sendStatus(robotIdx, protocol.StatusTaskComplete, taskID, "")
}

func (d *Driver) sendAck(t task.Task, a task.Action) {
	msg := protocol.AckMessage{
		Type:                    protocol.TypeAck,
		TaskID:                  t.ID,
		RobotIndex:              a.RobotIndex,
		Status:                  "assigned",
		EstimatedCompletionTime: d.estimateCompletion(a),
	}
	if err := d.enc.Encode(msg); err != nil {
		logrus.WithError(err).Warn("episode: failed to send ACK")
	}
}

func (d *Driver) sendTaskError(t task.Task, a task.Action, cause error) {
	msg := protocol.ErrorMessage{
		Type:       protocol.TypeError,
		TaskID:     t.ID,
		ErrorCode:  "ASSIGNMENT_FAILED",
		Message:    cause.Error(),
		RobotIndex: a.RobotIndex,
	}
	if err := d.enc.Encode(msg); err != nil {
		logrus.WithError(err).Warn("episode: failed to send ERROR")
	}
}

func (d *Driver) sendProtocolError(taskID, message string) {
	msg := protocol.ErrorMessage{
		Type:      protocol.TypeError,
		TaskID:    taskID,
		ErrorCode: "PROTOCOL_ERROR",
		Message:   message,
	}
	if err := d.enc.Encode(msg); err != nil {
		logrus.WithError(err).Warn("episode: failed to send ERROR")
	}
}

// estimateCompletion is a best-effort completion-time estimate for ACK: the
// shortest-path distance of both legs divided by the robot's speed. It is
// informational only — the driver tracks actual completion via the pending
// assignment, not this estimate.
func (d *Driver) estimateCompletion(a task.Action) float64 {
	r := d.Fleet.Get(a.RobotIndex)
	if r == nil || r.Speed <= 0 {
		return 0
	}
	toSource := d.World.Graph.ShortestPath(r.CurrentNode, a.SourceNode).TotalDistance
	toTarget := d.World.Graph.ShortestPath(a.SourceNode, a.TargetNode).TotalDistance
	return (toSource + toTarget) / r.Speed
}
