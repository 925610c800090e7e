package episode

import (
	"testing"

	"github.com/warehouse-sim/warehouse-sim/sim/robot"
)

func TestRecordRobotSnapshot_CapturesCarryingProduct(t *testing.T) {
	l := NewLogger()
	r := &robot.Robot{ID: "robot_0", Carrying: true, CurrentOrder: robot.Order{ProductID: 9}}

	l.RecordRobotSnapshot(12, 0, r)

	if len(l.RobotSnapshots) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(l.RobotSnapshots))
	}
	if got := l.RobotSnapshots[0].CarryingProductID; got != 9 {
		t.Fatalf("expected carrying product id 9, got %d", got)
	}
}

func TestRecordTaskEvent_Appends(t *testing.T) {
	l := NewLogger()
	l.RecordTaskEvent(1, "robot_0", TaskEventPickup, 3, 2, 5, 10.5)

	if len(l.TaskEvents) != 1 {
		t.Fatalf("expected one task event, got %d", len(l.TaskEvents))
	}
	if l.TaskEvents[0].EventType != TaskEventPickup {
		t.Fatalf("unexpected event type: %v", l.TaskEvents[0].EventType)
	}
}

func TestRecordHeatmapVisit_AccumulatesAcrossRobots(t *testing.T) {
	l := NewLogger()
	l.RecordHeatmapVisit(4, 0, 1.0)
	l.RecordHeatmapVisit(4, 1, 1.0)

	e := l.Heatmap[4]
	if e.VisitCount != 2 {
		t.Fatalf("expected visit count 2, got %d", e.VisitCount)
	}
	if e.TotalTimeSpent != 2.0 {
		t.Fatalf("expected total time 2.0, got %v", e.TotalTimeSpent)
	}
	if len(e.RobotVisits) != 2 {
		t.Fatalf("expected 2 robot visits recorded, got %d", len(e.RobotVisits))
	}
}

func TestRecordStepResult_FoldsIntoMetrics(t *testing.T) {
	l := NewLogger()
	l.RecordStepResult(robot.Result{OrderCompleted: true, BatteryUsed: 1.5, DistanceSaved: 10, OptimalZonePlacement: true})
	l.RecordStepResult(robot.Result{OrderCompleted: true, BatteryUsed: 2, DistanceSaved: 5})
	l.RecordStepResult(robot.Result{OrderFailed: true})

	m := l.Metrics()
	if m.OrdersCompleted != 2 {
		t.Fatalf("expected 2 completed orders, got %d", m.OrdersCompleted)
	}
	if m.OrdersFailed != 1 {
		t.Fatalf("expected 1 failed order, got %d", m.OrdersFailed)
	}
	if m.TotalBatteryUsed != 3.5 {
		t.Fatalf("expected total battery used 3.5, got %v", m.TotalBatteryUsed)
	}
	if m.OptimalZonePlacements != 1 || m.SuboptimalPlacements != 1 {
		t.Fatalf("expected 1 optimal and 1 suboptimal placement, got %+v", m)
	}
}

func TestHeatmapList_OrdersByAscendingNodeIndex(t *testing.T) {
	l := NewLogger()
	l.RecordHeatmapVisit(9, 0, 1.0)
	l.RecordHeatmapVisit(2, 0, 1.0)
	l.RecordHeatmapVisit(5, 0, 1.0)

	list := l.HeatmapList()
	if len(list) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].NodeIndex >= list[i].NodeIndex {
			t.Fatalf("expected ascending node index order, got %+v", list)
		}
	}
}
