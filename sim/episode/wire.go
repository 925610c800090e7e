package episode

import (
	"encoding/json"

	"github.com/warehouse-sim/warehouse-sim/sim/graph"
	"github.com/warehouse-sim/warehouse-sim/sim/protocol"
	"github.com/warehouse-sim/warehouse-sim/sim/robot"
	"github.com/warehouse-sim/warehouse-sim/sim/task"
	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

func unmarshalInto(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}

func taskToWire(t task.Task) protocol.TaskWire {
	return protocol.TaskWire{
		TaskID:     t.ID,
		TaskType:   string(t.Type),
		ProductID:  t.ProductID,
		Quantity:   t.Quantity,
		SourceNode: t.SourceNode,
		TargetNode: t.TargetNode,
		Priority:   string(t.Priority),
		Deadline:   t.Deadline,
	}
}

func wireToAction(a protocol.ActionWire) task.Action {
	return task.Action{
		RobotIndex:     a.RobotIndex,
		ActionType:     task.ActionType(a.ActionType),
		ProductID:      a.ProductID,
		SourceNode:     a.SourceNode,
		TargetNode:     a.TargetNode,
		Strategy:       a.Strategy,
		SecondaryRobot: a.SecondaryRobot,
		HandoverNode:   a.HandoverNode,
		Reason:         a.Reason,
	}
}

func nodesToWire(nodes []*world.Node) []protocol.NodeWire {
	out := make([]protocol.NodeWire, len(nodes))
	for i, n := range nodes {
		out[i] = protocol.NodeWire{
			Index:         n.Index,
			ID:            n.ID,
			Type:          n.Type.String(),
			Zone:          n.Zone.String(),
			MaxRobots:     n.MaxRobots,
			CurrentRobots: n.CurrentRobots,
		}
	}
	return out
}

func edgesToWire(g *graph.Graph) []protocol.EdgeWire {
	var out []protocol.EdgeWire
	for from := 0; from < g.NodeCount(); from++ {
		for _, e := range g.Neighbors(from) {
			out = append(out, protocol.EdgeWire{From: from, To: e.To, Distance: e.Distance, Directed: e.Directed})
		}
	}
	return out
}

func productsToWire(products []*world.Product) []protocol.ProductWire {
	out := make([]protocol.ProductWire, len(products))
	for i, p := range products {
		out[i] = protocol.ProductWire{ID: p.ID, Name: p.Name, Popularity: p.Popularity}
	}
	return out
}

func robotsToWire(robots []*robot.Robot) []protocol.RobotWire {
	out := make([]protocol.RobotWire, len(robots))
	for i, r := range robots {
		out[i] = robotToWire(r)
	}
	return out
}

func robotToWire(r *robot.Robot) protocol.RobotWire {
	w := protocol.RobotWire{
		ID:          r.ID,
		CurrentNode: r.CurrentNode,
		TargetNode:  r.TargetNode,
		Progress:    r.Progress,
		PosX:        r.PosX,
		PosY:        r.PosY,
		Status:      r.Status.String(),
		Carrying:    r.Carrying,
		HasOrder:    r.HasOrder,
		Battery:     r.Battery,
	}
	if r.Carrying {
		w.CarryingProductID = r.CurrentOrder.ProductID
	}
	return w
}

func episodeMetricsToWire(m Metrics) protocol.EpisodeMetricsWire {
	total := m.OrdersCompleted + m.OrdersFailed
	avgCompletion := 0.0
	if m.OrdersCompleted > 0 {
		avgCompletion = m.TotalDistanceTraveled / float64(m.OrdersCompleted)
	}
	utilization := 0.0
	if total > 0 {
		utilization = float64(m.OrdersCompleted) / float64(total)
	}
	return protocol.EpisodeMetricsWire{
		OrdersCompleted:   m.OrdersCompleted,
		OrdersFailed:      m.OrdersFailed,
		TotalDistance:     m.TotalDistanceTraveled,
		AvgCompletionTime: avgCompletion,
		RobotUtilization:  utilization,
	}
}

func (d *Driver) snapshotState() protocol.StateWire {
	dock, _ := d.World.Node(d.World.LoadingDockIdx).LoadingDock()
	desk, _ := d.World.Node(d.World.FrontDeskIdx).FrontDesk()
	cs, _ := d.World.Node(d.World.ChargingStationIdx).ChargingStation()

	shelves := make([]protocol.ShelfWire, 0)
	for _, n := range d.World.Nodes {
		shelf, ok := n.Shelf()
		if !ok {
			continue
		}
		slots := make([]protocol.SlotWire, len(shelf.Slots))
		for i, s := range shelf.Slots {
			slots[i] = protocol.SlotWire{ProductID: s.ProductID, Occupied: s.Occupied, Capacity: s.Capacity, FillRate: s.FillRate()}
		}
		shelves = append(shelves, protocol.ShelfWire{NodeIndex: n.Index, Zone: n.Zone.String(), Slots: slots})
	}

	return protocol.StateWire{
		Robots:          robotsToWire(d.Fleet.Robots),
		Inventory:       shelves,
		LoadingDock:     protocol.LoadingDockWire{Occupied: dock.Occupied, DeliveryCount: dock.DeliveryCount},
		FrontDesk:       protocol.FrontDeskWire{PendingOrders: desk.PendingOrders},
		ChargingStation: protocol.ChargingStationWire{OccupiedCount: cs.OccupiedCount, Ports: cs.Ports},
		SimTime:         d.Scheduler.CurrentSimTime(),
	}
}
