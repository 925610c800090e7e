package episode

import (
	"strings"
	"testing"

	"github.com/warehouse-sim/warehouse-sim/sim/protocol"
	"github.com/warehouse-sim/warehouse-sim/sim/robot"
	"github.com/warehouse-sim/warehouse-sim/sim/task"
)

func TestNegotiate_ChargeAtCurrentNodeEntersChargingPhase(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":0,"action_type":"CHARGE","target_node":11}}` + "\n"
	d, _ := newTestDriver(t, resp)
	d.Fleet.Robots[0].Battery = 50

	if _, err := d.Negotiate(task.Task{ID: "charge_1", Type: task.RestockRequest, SourceNode: 11, TargetNode: 11}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pa, ok := d.pending[0]
	if !ok {
		t.Fatalf("expected a pending charge assignment")
	}
	if pa.phase != phaseCharging {
		t.Fatalf("expected the robot to already be charging at its own node, got phase %v", pa.phase)
	}
	if d.Fleet.Robots[0].Status != robot.Charging {
		t.Fatalf("expected robot status Charging, got %s", d.Fleet.Robots[0].Status)
	}
}

func TestAdvanceCharging_CompletesAtFullBatteryAndFreesPort(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":0,"action_type":"CHARGE","target_node":11}}` + "\n"
	d, out := newTestDriver(t, resp)
	d.Fleet.Robots[0].Battery = 99

	if _, err := d.Negotiate(task.Task{ID: "charge_1", Type: task.RestockRequest, SourceNode: 11, TargetNode: 11}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d.advancePendingAssignments()

	if _, ok := d.pending[0]; ok {
		t.Fatalf("expected charging to complete and clear the pending assignment")
	}
	if d.Fleet.Robots[0].Status != robot.Idle {
		t.Fatalf("expected robot to return Idle after charging, got %s", d.Fleet.Robots[0].Status)
	}
	if d.Fleet.Robots[0].Battery != 100 {
		t.Fatalf("expected battery to cap at 100, got %v", d.Fleet.Robots[0].Battery)
	}
	if !strings.Contains(out.String(), protocol.StatusTaskComplete) {
		t.Fatalf("expected a TASK_COMPLETE status, got %s", out.String())
	}
}

func TestNegotiate_HandoverTransfersOrderToSecondaryRobot(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":0,"action_type":"HANDOVER","source_node":11,"secondary_robot":1}}` + "\n"
	d, out := newTestDriver(t, resp)
	d.Fleet.Robots[0].Carrying = true
	d.Fleet.Robots[0].HasOrder = true
	d.Fleet.Robots[0].CurrentOrder = robot.Order{ProductID: 9, Quantity: 2}

	_, err := d.Negotiate(task.Task{ID: "order_9", Type: task.CustomerOrder, ProductID: 9, SourceNode: 11, TargetNode: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Fleet.Robots[1].CurrentOrder.ProductID != 9 {
		t.Fatalf("expected the secondary robot to receive the order, got %+v", d.Fleet.Robots[1].CurrentOrder)
	}
	if d.Fleet.Robots[0].HasOrder {
		t.Fatalf("expected the primary robot to no longer hold the order")
	}
	if !strings.Contains(out.String(), protocol.StatusHandoverReady) {
		t.Fatalf("expected a HANDOVER_READY status for the secondary robot, got %s", out.String())
	}
	if !strings.Contains(out.String(), protocol.StatusTaskComplete) {
		t.Fatalf("expected a TASK_COMPLETE status for the primary robot, got %s", out.String())
	}
}

func TestCheckArrival_LostPathFailsAssignmentAndSendsStuck(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":0,"action_type":"PICKUP_AND_DELIVER","product_id":7,"source_node":2,"target_node":5}}` + "\n"
	d, out := newTestDriver(t, resp)

	if _, err := d.Negotiate(task.Task{ID: "order_1", Type: task.CustomerOrder, ProductID: 7, SourceNode: 2, TargetNode: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := d.Fleet.Robots[0]
	r.Status = robot.Idle
	r.CurrentNode = 9999 // force a mismatch against the expected source node

	d.checkArrival(0)

	if _, ok := d.pending[0]; ok {
		t.Fatalf("expected the stalled assignment to be cleared")
	}
	if !strings.Contains(out.String(), protocol.StatusStuck) {
		t.Fatalf("expected a STUCK status, got %s", out.String())
	}
}
