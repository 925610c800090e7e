package episode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/warehouse-sim/warehouse-sim/sim/protocol"
	"github.com/warehouse-sim/warehouse-sim/sim/robot"
	"github.com/warehouse-sim/warehouse-sim/sim/task"
)

func newTestDriver(t *testing.T, in string) (*Driver, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := DefaultConfig()
	cfg.FleetSize = 3
	d := NewDriver(cfg, protocol.NewEncoder(&out), protocol.NewDecoder(strings.NewReader(in)))
	return d, &out
}

func TestHandshakeInit_SendsInitAndAwaitsReady(t *testing.T) {
	d, out := newTestDriver(t, `{"type":"READY"}`+"\n")

	if err := d.handshakeInit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), `"type":"INIT"`) {
		t.Fatalf("expected INIT message to be sent, got %s", out.String())
	}
	if !strings.Contains(out.String(), `"robots"`) {
		t.Fatalf("expected INIT to carry robot snapshots, got %s", out.String())
	}
}

func TestHandshakeInit_RejectsWrongResponseType(t *testing.T) {
	d, _ := newTestDriver(t, `{"type":"ACTION","action":{"action_type":"WAIT"}}`+"\n")

	if err := d.handshakeInit(); err == nil {
		t.Fatalf("expected an error when the policy replies with something other than READY")
	}
}

func TestNegotiate_SendsNewTaskAndDecodesAction(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":1,"action_type":"PICKUP_AND_DELIVER","product_id":7,"source_node":2,"target_node":5}}` + "\n"
	d, out := newTestDriver(t, resp)

	in := task.Task{ID: "order_1", Type: task.CustomerOrder, ProductID: 7, SourceNode: 2, TargetNode: 5, Priority: task.PriorityNormal}
	action, err := d.Negotiate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.ActionType != task.PickupAndDeliver || action.RobotIndex != 1 || action.ProductID != 7 {
		t.Fatalf("unexpected action: %+v", action)
	}
	if !strings.Contains(out.String(), `"task_id":"order_1"`) {
		t.Fatalf("expected NEW_TASK to carry the task id, got %s", out.String())
	}
}

func TestNegotiate_ReturnsWaitOnProtocolError(t *testing.T) {
	d, _ := newTestDriver(t, "not json\n")

	action, err := d.Negotiate(task.Task{ID: "order_1", Type: task.CustomerOrder})
	if err == nil {
		t.Fatalf("expected a protocol error")
	}
	if action.ActionType != task.Wait {
		t.Fatalf("expected a WAIT action on protocol failure, got %+v", action)
	}
}

func TestNegotiate_ReturnsWaitOnWrongResponseType(t *testing.T) {
	d, _ := newTestDriver(t, `{"type":"READY"}`+"\n")

	action, err := d.Negotiate(task.Task{ID: "order_1", Type: task.CustomerOrder})
	if err == nil {
		t.Fatalf("expected an error for an unexpected response type")
	}
	if action.ActionType != task.Wait {
		t.Fatalf("expected a WAIT action, got %+v", action)
	}
}

func TestNegotiate_AssignsRobotAndSendsAck(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":1,"action_type":"PICKUP_AND_DELIVER","product_id":7,"source_node":2,"target_node":5}}` + "\n"
	d, out := newTestDriver(t, resp)

	in := task.Task{ID: "order_1", Type: task.CustomerOrder, ProductID: 7, SourceNode: 2, TargetNode: 5, Priority: task.PriorityNormal}
	action, err := d.Negotiate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action.ActionType != task.PickupAndDeliver {
		t.Fatalf("expected the action to be returned unchanged, got %+v", action)
	}
	if !strings.Contains(out.String(), `"type":"ACK"`) {
		t.Fatalf("expected an ACK to be sent, got %s", out.String())
	}
	if d.Fleet.Robots[1].Status != robot.Moving {
		t.Fatalf("expected robot 1 to start moving toward the source node, got status %s", d.Fleet.Robots[1].Status)
	}
	if _, ok := d.pending[1]; !ok {
		t.Fatalf("expected a pending assignment to be tracked for robot 1")
	}
}

func TestNegotiate_BusyRobotSendsErrorAndWaits(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":0,"action_type":"PICKUP_AND_DELIVER","product_id":7,"source_node":2,"target_node":5}}` + "\n"
	d, out := newTestDriver(t, resp)
	d.Fleet.Robots[0].Status = robot.Moving

	action, err := d.Negotiate(task.Task{ID: "order_1", Type: task.CustomerOrder, ProductID: 7, SourceNode: 2, TargetNode: 5})
	if err == nil {
		t.Fatalf("expected an error when the policy assigns a busy robot")
	}
	if action.ActionType != task.Wait {
		t.Fatalf("expected a WAIT action on assignment failure, got %+v", action)
	}
	if !strings.Contains(out.String(), `"type":"ERROR"`) {
		t.Fatalf("expected an ERROR message to be sent, got %s", out.String())
	}
}

func TestNegotiate_CompletesImmediateDeliveryAndSendsTaskComplete(t *testing.T) {
	resp := `{"type":"ACTION","action":{"robot_index":0,"action_type":"PICKUP_AND_DELIVER","product_id":7,"source_node":11,"target_node":11}}` + "\n"
	d, out := newTestDriver(t, resp)

	in := task.Task{ID: "order_1", Type: task.CustomerOrder, ProductID: 7, Quantity: 3, SourceNode: 11, TargetNode: 11}
	if _, err := d.Negotiate(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := d.pending[0]; ok {
		t.Fatalf("expected a same-node delivery to complete immediately without leaving a pending assignment")
	}
	if !strings.Contains(out.String(), protocol.StatusTaskComplete) {
		t.Fatalf("expected a TASK_COMPLETE status, got %s", out.String())
	}
	if d.Logger.Metrics().OrdersCompleted != 1 {
		t.Fatalf("expected one completed order, got %+v", d.Logger.Metrics())
	}
}

func TestHandshakeReset_SendsEpisodeEndAndAwaitsReset(t *testing.T) {
	d, out := newTestDriver(t, `{"type":"RESET","episode_number":4}`+"\n")

	d.Fleet.Robots[0].Battery = 42
	d.Logger.RecordStepResult(robot.Result{OrderCompleted: true})

	next, err := d.handshakeReset()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 4 {
		t.Fatalf("expected next episode number 4, got %d", next)
	}
	if !strings.Contains(out.String(), `"type":"EPISODE_END"`) {
		t.Fatalf("expected EPISODE_END to be sent, got %s", out.String())
	}
	if d.Fleet.Robots[0].Battery != 100 {
		t.Fatalf("expected fleet reset to restore full battery, got %v", d.Fleet.Robots[0].Battery)
	}
	if d.Logger.Metrics().OrdersCompleted != 0 {
		t.Fatalf("expected a fresh logger after reset, got %+v", d.Logger.Metrics())
	}
	if d.episodeNumber != 4 {
		t.Fatalf("expected driver's episode number to advance to 4, got %d", d.episodeNumber)
	}
}

func TestHandshakeReset_CleanExitOnClosedChannel(t *testing.T) {
	d, _ := newTestDriver(t, "")

	next, err := d.handshakeReset()
	if err != nil {
		t.Fatalf("expected a clean exit, got error: %v", err)
	}
	if next != -1 {
		t.Fatalf("expected -1 on closed channel, got %d", next)
	}
}

func TestTick_RecordsHeatmapAndAdvancesElapsed(t *testing.T) {
	d, _ := newTestDriver(t, "")
	d.Scheduler.Init(0)

	d.tick()

	if d.elapsed != d.cfg.Tick {
		t.Fatalf("expected elapsed to advance by one tick, got %v", d.elapsed)
	}
	if len(d.Logger.Heatmap) == 0 {
		t.Fatalf("expected tick to record heatmap visits for the fleet")
	}
}

func TestTick_EmitsLowBatteryWhenIdleAndDepleted(t *testing.T) {
	d, out := newTestDriver(t, "")
	d.Scheduler.Init(0)
	d.Fleet.Robots[0].Battery = 5
	d.Fleet.Robots[0].Status = robot.Idle

	d.tick()

	if !strings.Contains(out.String(), protocol.StatusLowBattery) {
		t.Fatalf("expected a LOW_BATTERY status message, got %s", out.String())
	}
}
