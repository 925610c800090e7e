// Package robot implements the mobile robot fleet: per-robot lifecycle
// state machine, battery accounting, and movement along graph edges
// (C3 in the design).
package robot

import (
	"strconv"

	"github.com/warehouse-sim/warehouse-sim/sim/graph"
)

// Status is the robot's lifecycle state.
type Status int

const (
	Idle Status = iota
	Moving
	Carrying
	Picking
	Dropping
	Charging
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Moving:
		return "Moving"
	case Carrying:
		return "Carrying"
	case Picking:
		return "Picking"
	case Dropping:
		return "Dropping"
	case Charging:
		return "Charging"
	default:
		return "Unknown"
	}
}

// Order is the transient pick/drop task a robot is carrying.
type Order struct {
	ProductID int
	SlotIndex int
	Quantity  int
}

// IsZero reports whether the order is the empty/no-order value.
func (o Order) IsZero() bool {
	return o == Order{}
}

// Robot is one mobile unit in the fleet.
type Robot struct {
	ID           string
	CurrentNode  int
	TargetNode   int
	Progress     float64
	PosX, PosY   float64
	Status       Status
	Carrying     bool
	HasOrder     bool
	Battery      float64
	Speed        float64
	CurrentOrder Order
	CurrentPath  graph.Path
}

// Fleet is the complete set of robots, indexed by robot_index.
type Fleet struct {
	Robots []*Robot
}

// InitRobots places n robots at chargingStationNode with full battery and
// default speed, replacing any existing fleet. Matches the original
// initRobots()'s "3 robots at the charging station, battery 100, speed 1".
func InitRobots(n int, chargingStationNode int) *Fleet {
	f := &Fleet{Robots: make([]*Robot, 0, n)}
	for i := 0; i < n; i++ {
		f.Robots = append(f.Robots, &Robot{
			ID:          robotID(i),
			CurrentNode: chargingStationNode,
			TargetNode:  -1,
			Status:      Idle,
			Battery:     100,
			Speed:       1.0,
		})
	}
	return f
}

func robotID(i int) string {
	return "robot_" + strconv.Itoa(i)
}

// Get returns the robot at idx, or nil if idx is out of range.
func (f *Fleet) Get(idx int) *Robot {
	if idx < 0 || idx >= len(f.Robots) {
		return nil
	}
	return f.Robots[idx]
}

// Reset returns every robot to Idle at chargingStationNode with full
// battery, matching episode-reset semantics ("Any -> Idle (episode reset)").
func (f *Fleet) Reset(chargingStationNode int) {
	for _, r := range f.Robots {
		r.CurrentNode = chargingStationNode
		r.TargetNode = -1
		r.Progress = 0
		r.Status = Idle
		r.Carrying = false
		r.HasOrder = false
		r.Battery = 100
		r.CurrentOrder = Order{}
		r.CurrentPath = graph.Path{}
	}
}
