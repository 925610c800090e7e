// Package world owns the warehouse graph's node and product state: shelf
// inventory, loading dock, charging station, front desk, and the popularity
// zone classification attached to each node (C2 in the design).
package world

// NodeType identifies which tagged payload variant a Node carries.
type NodeType int

const (
	NodeShelf NodeType = iota
	NodeLoadingDock
	NodeFrontDesk
	NodeChargingStation
	NodeJunction
)

func (t NodeType) String() string {
	switch t {
	case NodeShelf:
		return "Shelf"
	case NodeLoadingDock:
		return "LoadingBay"
	case NodeFrontDesk:
		return "FrontDesk"
	case NodeChargingStation:
		return "ChargingStation"
	case NodeJunction:
		return "Junction"
	default:
		return "Unknown"
	}
}

// Zone is the popularity-driven placement class recommended for a node.
type Zone int

const (
	ZoneOther Zone = iota
	ZoneCold
	ZoneWarm
	ZoneHot
)

func (z Zone) String() string {
	switch z {
	case ZoneHot:
		return "Hot"
	case ZoneWarm:
		return "Warm"
	case ZoneCold:
		return "Cold"
	default:
		return "Other"
	}
}

// Payload is the tagged variant carried by a Node. Concrete implementations
// are Shelf, LoadingDock, ChargingStation, FrontDesk, and Junction below;
// type-switching on Payload replaces the original's flat is_shelf()-style
// boolean predicates.
type Payload interface {
	nodeType() NodeType
}

// LoadingDock models the single dock where delivery lorries arrive.
type LoadingDock struct {
	Occupied      bool
	DeliveryCount int
	CurrentLorry  LorrySize
}

func (LoadingDock) nodeType() NodeType { return NodeLoadingDock }

// LorrySize is the capacity class of an arriving delivery lorry.
type LorrySize int

const (
	SmallLorry  LorrySize = 10
	MediumLorry LorrySize = 20
	BigLorry    LorrySize = 30
)

// ChargingStation models a multi-port robot charging bay.
type ChargingStation struct {
	OccupiedCount int
	Ports         int
}

func (ChargingStation) nodeType() NodeType { return NodeChargingStation }

// FrontDesk models the customer pickup counter.
type FrontDesk struct {
	PendingOrders int
}

func (FrontDesk) nodeType() NodeType { return NodeFrontDesk }

// Junction is a pass-through node carrying no domain payload.
type Junction struct{}

func (Junction) nodeType() NodeType { return NodeJunction }

// Node is one vertex of the warehouse graph.
type Node struct {
	Index         int
	ID            string
	Type          NodeType
	Zone          Zone
	MaxRobots     int
	CurrentRobots int
	Data          Payload
}

// Shelf returns the node's Shelf payload and true, or the zero value and
// false if this node is not a shelf.
func (n *Node) Shelf() (*ShelfData, bool) {
	s, ok := n.Data.(*ShelfData)
	return s, ok
}

// LoadingDock returns the node's LoadingDock payload and true, or false if
// this node is not the loading dock.
func (n *Node) LoadingDock() (*LoadingDock, bool) {
	d, ok := n.Data.(*LoadingDock)
	return d, ok
}

// ChargingStation returns the node's ChargingStation payload and true, or
// false if this node is not a charging station.
func (n *Node) ChargingStation() (*ChargingStation, bool) {
	c, ok := n.Data.(*ChargingStation)
	return c, ok
}

// FrontDesk returns the node's FrontDesk payload and true, or false if this
// node is not the front desk.
func (n *Node) FrontDesk() (*FrontDesk, bool) {
	f, ok := n.Data.(*FrontDesk)
	return f, ok
}
