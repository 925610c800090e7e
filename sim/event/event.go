// Package event implements the time-ordered event scheduler: the typed
// SimEvent vocabulary, a deterministic min-heap, stochastic generators, and
// the dispatch logic that turns a drained event into world mutations and
// negotiated Tasks (C5 in the design).
package event

import "sync/atomic"

// Type identifies the kind of a scheduled SimEvent.
type Type string

const (
	TypeIncomingDelivery  Type = "IncomingDelivery"
	TypeCustomerOrder     Type = "CustomerOrder"
	TypeRestockNeeded     Type = "RestockNeeded"
	TypeUrgentRestock     Type = "UrgentRestock"
	TypeRobotTaskComplete Type = "RobotTaskComplete"
	TypeLowBattery        Type = "LowBattery"
)

// TypePriority breaks ties among events sharing the same trigger time.
// Lower value is processed first. Deliveries and restocks touch the
// loading dock and are drained ahead of customer-facing events so the dock
// is free as soon as possible; robot signals (task complete, low battery)
// drain last.
var TypePriority = map[Type]int{
	TypeIncomingDelivery:  0,
	TypeRestockNeeded:     1,
	TypeUrgentRestock:     2,
	TypeCustomerOrder:     3,
	TypeRobotTaskComplete: 4,
	TypeLowBattery:        5,
}

var globalEventID uint64

// BaseEvent carries the fields common to every SimEvent.
type BaseEvent struct {
	trigger   float64
	eventID   uint64
	eventType Type
	NodeIndex int
	ProductID int
	Quantity  int
}

func newBase(trigger float64, t Type) BaseEvent {
	return BaseEvent{
		trigger:   trigger,
		eventID:   atomic.AddUint64(&globalEventID, 1),
		eventType: t,
	}
}

// Trigger returns the simulated time at which the event fires.
func (e *BaseEvent) Trigger() float64 { return e.trigger }

// EventID returns the monotonic, globally unique id used as the final
// tie-break key.
func (e *BaseEvent) EventID() uint64 { return e.eventID }

// Type returns the event's kind.
func (e *BaseEvent) Type() Type { return e.eventType }

// Event is anything that can sit in the scheduler's heap and be dispatched.
type Event interface {
	Trigger() float64
	EventID() uint64
	Type() Type
}

// IncomingDeliveryEvent is a lorry arrival at the loading dock.
type IncomingDeliveryEvent struct {
	BaseEvent
	LorrySize int
}

// NewIncomingDeliveryEvent constructs a delivery event.
func NewIncomingDeliveryEvent(trigger float64, productID, lorrySize int) *IncomingDeliveryEvent {
	e := &IncomingDeliveryEvent{BaseEvent: newBase(trigger, TypeIncomingDelivery), LorrySize: lorrySize}
	e.ProductID = productID
	return e
}

// CustomerOrderEvent is a customer pull of productID off a shelf.
type CustomerOrderEvent struct {
	BaseEvent
}

// NewCustomerOrderEvent constructs a customer order event.
func NewCustomerOrderEvent(trigger float64, productID, quantity int) *CustomerOrderEvent {
	e := &CustomerOrderEvent{BaseEvent: newBase(trigger, TypeCustomerOrder)}
	e.ProductID = productID
	e.Quantity = quantity
	return e
}

// RestockNeededEvent is the periodic low-fill sweep.
type RestockNeededEvent struct {
	BaseEvent
}

// NewRestockNeededEvent constructs a restock-sweep event.
func NewRestockNeededEvent(trigger float64) *RestockNeededEvent {
	return &RestockNeededEvent{BaseEvent: newBase(trigger, TypeRestockNeeded)}
}

// UrgentRestockEvent is an escalated, high-priority restock for one product.
type UrgentRestockEvent struct {
	BaseEvent
}

// NewUrgentRestockEvent constructs an urgent restock event.
func NewUrgentRestockEvent(trigger float64, productID, quantity int) *UrgentRestockEvent {
	e := &UrgentRestockEvent{BaseEvent: newBase(trigger, TypeUrgentRestock)}
	e.ProductID = productID
	e.Quantity = quantity
	return e
}

// RobotTaskCompleteEvent signals a robot finished its current task.
type RobotTaskCompleteEvent struct {
	BaseEvent
	RobotIndex int
}

// NewRobotTaskCompleteEvent constructs a task-complete event.
func NewRobotTaskCompleteEvent(trigger float64, robotIndex int) *RobotTaskCompleteEvent {
	return &RobotTaskCompleteEvent{BaseEvent: newBase(trigger, TypeRobotTaskComplete), RobotIndex: robotIndex}
}

// LowBatteryEvent signals an idle robot has dropped below the low-battery
// threshold.
type LowBatteryEvent struct {
	BaseEvent
	RobotIndex int
}

// NewLowBatteryEvent constructs a low-battery event.
func NewLowBatteryEvent(trigger float64, robotIndex int) *LowBatteryEvent {
	return &LowBatteryEvent{BaseEvent: newBase(trigger, TypeLowBattery), RobotIndex: robotIndex}
}
