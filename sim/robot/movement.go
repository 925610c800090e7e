package robot

import (
	"github.com/warehouse-sim/warehouse-sim/sim/graph"
	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

// StartMovement computes a path from the robot's current node to target via
// the world graph and transitions Idle -> Moving. Returns false (no state
// change) if the robot is not Idle or no path exists.
func StartMovement(w *world.World, r *Robot, target int) bool {
	if r.Status != Idle {
		return false
	}
	path := w.Graph.ShortestPath(r.CurrentNode, target)
	if !path.Found || len(path.Nodes) < 2 {
		return false
	}
	r.CurrentPath = path
	r.TargetNode = path.Nodes[1]
	r.Progress = 0
	r.Status = Moving
	return true
}

// Tick advances a Moving robot's progress along its current edge by
// speed*dt/edge_distance, decrementing battery proportionally. On arrival
// (progress >= 1.0) it snaps CurrentNode to the target, resets progress,
// and either advances to the next hop on CurrentPath or returns to Idle
// if the path is exhausted. This is the gradual movement model used by the
// episode driver's per-tick loop (see the direct-edge model in step.go's
// MOVE action — the two coexist by design, see SPEC_FULL.md §4).
func Tick(w *world.World, r *Robot, dt float64) {
	if r.Status != Moving {
		return
	}

	edgeDist := w.Graph.EdgeDistance(r.CurrentNode, r.TargetNode)
	if edgeDist == graph.Inf || edgeDist <= 0 {
		// Defensive: no edge to the current target, can't progress further.
		r.Status = Idle
		r.TargetNode = -1
		return
	}

	progressIncrement := r.Speed * dt / edgeDist
	r.Progress += progressIncrement
	r.useBattery(0.1 * progressIncrement)

	if r.Progress >= 1.0 {
		r.CurrentNode = r.TargetNode
		r.Progress = 0

		next := nextHop(r.CurrentPath, r.CurrentNode)
		if next == -1 {
			r.Status = Idle
			r.TargetNode = -1
		} else {
			r.TargetNode = next
		}
	}

	if r.Battery <= 0 && r.Status == Moving {
		r.Battery = 0
		r.Status = Idle
	}
}

// nextHop returns the node following at in path.Nodes, or -1 if at is the
// last node or not present.
func nextHop(path graph.Path, at int) int {
	for i, n := range path.Nodes {
		if n == at {
			if i+1 < len(path.Nodes) {
				return path.Nodes[i+1]
			}
			return -1
		}
	}
	return -1
}

func (r *Robot) useBattery(amount float64) {
	r.Battery -= amount
	if r.Battery < 0 {
		r.Battery = 0
	}
	if r.Battery > 100 {
		r.Battery = 100
	}
}
