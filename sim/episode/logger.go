package episode

import (
	"sort"

	"github.com/warehouse-sim/warehouse-sim/sim/robot"
)

// RobotSnapshot is one per-tick observation of a robot's pose and state.
type RobotSnapshot struct {
	Timestamp         float64 `json:"timestamp"`
	RobotID           string  `json:"robot_id"`
	PosX              float64 `json:"pos_x"`
	PosY              float64 `json:"pos_y"`
	CurrentNode       int     `json:"current_node"`
	Status            string  `json:"status"`
	Battery           float64 `json:"battery"`
	Carrying          bool    `json:"carrying"`
	CarryingProductID int     `json:"carrying_product_id,omitempty"`
}

// TaskEventType classifies a logged task-lifecycle event.
type TaskEventType string

const (
	TaskEventMove     TaskEventType = "MOVE"
	TaskEventPickup   TaskEventType = "PICKUP"
	TaskEventDropoff  TaskEventType = "DROPOFF"
	TaskEventHandover TaskEventType = "HANDOVER"
	TaskEventFailed   TaskEventType = "FAILED"
)

// TaskEvent is one logged step in a task's lifecycle.
type TaskEvent struct {
	Timestamp float64       `json:"timestamp"`
	Robot     string        `json:"robot"`
	EventType TaskEventType `json:"event_type"`
	ProductID int           `json:"product_id"`
	FromNode  int           `json:"from_node"`
	ToNode    int           `json:"to_node"`
	Distance  float64       `json:"distance"`
}

// HeatmapEntry tracks how much attention a node received over an episode.
type HeatmapEntry struct {
	NodeIndex      int     `json:"node_index"`
	VisitCount     int     `json:"visit_count"`
	TotalTimeSpent float64 `json:"total_time_spent"`
	RobotVisits    []int   `json:"robot_visits"`
}

// Metrics is the aggregate counters reported in EPISODE_END.
type Metrics struct {
	OrdersCompleted       int     `json:"orders_completed"`
	OrdersFailed          int     `json:"orders_failed"`
	TotalBatteryUsed      float64 `json:"total_battery_used"`
	TotalDistanceTraveled float64 `json:"total_distance_traveled"`
	OptimalZonePlacements int     `json:"optimal_zone_placements"`
	SuboptimalPlacements  int     `json:"suboptimal_placements"`
}

// Logger accumulates the telemetry an episode produces: per-tick robot
// snapshots, per-task events, a per-node heatmap, and running metrics.
type Logger struct {
	RobotSnapshots []RobotSnapshot
	TaskEvents     []TaskEvent
	Heatmap        map[int]*HeatmapEntry
	metrics        Metrics
}

// NewLogger returns an empty Logger, ready for one episode.
func NewLogger() *Logger {
	return &Logger{Heatmap: make(map[int]*HeatmapEntry)}
}

// RecordRobotSnapshot appends a snapshot of r at timestamp.
func (l *Logger) RecordRobotSnapshot(timestamp float64, robotIdx int, r *robot.Robot) {
	s := RobotSnapshot{
		Timestamp:   timestamp,
		RobotID:     r.ID,
		PosX:        r.PosX,
		PosY:        r.PosY,
		CurrentNode: r.CurrentNode,
		Status:      r.Status.String(),
		Battery:     r.Battery,
		Carrying:    r.Carrying,
	}
	if r.Carrying {
		s.CarryingProductID = r.CurrentOrder.ProductID
	}
	l.RobotSnapshots = append(l.RobotSnapshots, s)
}

// RecordTaskEvent appends one task-lifecycle event.
func (l *Logger) RecordTaskEvent(timestamp float64, robotID string, eventType TaskEventType, productID, fromNode, toNode int, distance float64) {
	l.TaskEvents = append(l.TaskEvents, TaskEvent{
		Timestamp: timestamp,
		Robot:     robotID,
		EventType: eventType,
		ProductID: productID,
		FromNode:  fromNode,
		ToNode:    toNode,
		Distance:  distance,
	})
}

// RecordHeatmapVisit attributes dt seconds of dwell time to nodeIdx for
// robotIdx and increments the node's visit count on every call.
func (l *Logger) RecordHeatmapVisit(nodeIdx, robotIdx int, dt float64) {
	e, ok := l.Heatmap[nodeIdx]
	if !ok {
		e = &HeatmapEntry{NodeIndex: nodeIdx}
		l.Heatmap[nodeIdx] = e
	}
	e.VisitCount++
	e.TotalTimeSpent += dt
	e.RobotVisits = append(e.RobotVisits, robotIdx)
}

// RecordStepResult folds one step_simulation Result into the running
// metrics, per §4.8 ("Metrics updated on every step_simulation result
// map").
func (l *Logger) RecordStepResult(res robot.Result) {
	if res.OrderCompleted {
		l.metrics.OrdersCompleted++
	}
	if res.OrderFailed {
		l.metrics.OrdersFailed++
	}
	l.metrics.TotalBatteryUsed += res.BatteryUsed
	l.metrics.TotalDistanceTraveled += res.DistanceSaved
	if res.OptimalZonePlacement {
		l.metrics.OptimalZonePlacements++
	} else if res.OrderCompleted {
		l.metrics.SuboptimalPlacements++
	}
}

// Metrics returns the accumulated counters, as a copy.
func (l *Logger) Metrics() Metrics {
	return l.metrics
}

// HeatmapList returns the heatmap as a slice for serialization, in
// ascending node-index order.
func (l *Logger) HeatmapList() []HeatmapEntry {
	indices := make([]int, 0, len(l.Heatmap))
	for idx := range l.Heatmap {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	out := make([]HeatmapEntry, len(indices))
	for i, idx := range indices {
		out[i] = *l.Heatmap[idx]
	}
	return out
}
