// Package episode implements the fixed-duration episode loop: the INIT/
// READY handshake, the per-tick process_events/robot-update cycle, low
// battery status emission, and the EPISODE_END/RESET cycle between
// episodes (C8 in the design).
package episode

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/warehouse-sim/warehouse-sim/sim/event"
	"github.com/warehouse-sim/warehouse-sim/sim/popularity"
	"github.com/warehouse-sim/warehouse-sim/sim/protocol"
	"github.com/warehouse-sim/warehouse-sim/sim/robot"
	"github.com/warehouse-sim/warehouse-sim/sim/task"
	"github.com/warehouse-sim/warehouse-sim/sim/world"
)

// Config holds the episode-loop knobs described in §6 "Configuration".
type Config struct {
	Duration         float64 // seconds, default 3600
	Tick             float64 // seconds, default 1
	SnapshotInterval float64 // seconds, default equal to Tick
	SeedBase         int64
	DecayInterval    float64
	LowBatteryFloor  float64 // default 20
	FleetSize        int
}

// DefaultConfig returns the documented defaults from §6.
func DefaultConfig() Config {
	return Config{
		Duration:         3600,
		Tick:             1,
		SnapshotInterval: 1,
		SeedBase:         0,
		DecayInterval:    popularity.DefaultDecayInterval,
		LowBatteryFloor:  20,
		FleetSize:        3,
	}
}

// Driver owns one running episode's world, fleet, scheduler, and the wire
// connection to the external policy. It implements task.Negotiator so the
// event scheduler can round-trip tasks through it without depending on the
// protocol package directly.
type Driver struct {
	cfg Config

	World      *world.World
	Fleet      *robot.Fleet
	Popularity *popularity.Manager
	Scheduler  *event.Scheduler
	Logger     *Logger

	enc *protocol.Encoder
	dec *protocol.Decoder

	episodeNumber int
	elapsed       float64
	lastSnapshot  float64

	pending map[int]*pendingAssignment
}

// NewDriver wires a fresh Driver around the given world/fleet and an
// already-connected encoder/decoder pair (stdout/stdin in production,
// in-memory pipes in tests).
func NewDriver(cfg Config, enc *protocol.Encoder, dec *protocol.Decoder) *Driver {
	w := world.NewCanonicalWorld()
	d := &Driver{
		cfg:        cfg,
		World:      w,
		Fleet:      robot.InitRobots(cfg.FleetSize, w.ChargingStationIdx),
		Popularity: popularity.NewManager(w, cfg.DecayInterval),
		Logger:     NewLogger(),
		enc:        enc,
		dec:        dec,
		pending:    make(map[int]*pendingAssignment),
	}
	d.Scheduler = event.NewScheduler(w, d.Popularity, d)
	return d
}

// Negotiate implements task.Negotiator: it sends NEW_TASK with the current
// world/robot snapshot and blocks for exactly one ACTION line, per §5's
// single suspension point.
func (d *Driver) Negotiate(t task.Task) (task.Action, error) {
	msg := protocol.NewTaskMessage{
		Type:  protocol.TypeNewTask,
		Task:  taskToWire(t),
		State: d.snapshotState(),
	}
	if err := d.enc.Encode(msg); err != nil {
		return task.Action{}, fmt.Errorf("episode: send NEW_TASK: %w", err)
	}

	env, raw, err := d.dec.DecodeEnvelope()
	if err != nil {
		return waitAction(), fmt.Errorf("episode: protocol error awaiting ACTION: %w", err)
	}
	if env.Type != protocol.TypeAction {
		d.sendProtocolError(t.ID, fmt.Sprintf("expected ACTION, got %q", env.Type))
		return waitAction(), fmt.Errorf("episode: expected ACTION, got %q", env.Type)
	}
	if err := protocol.ValidateInbound(protocol.TypeAction, raw); err != nil {
		d.sendProtocolError(t.ID, err.Error())
		return waitAction(), err
	}

	var am protocol.ActionMessage
	if err := unmarshalInto(raw, &am); err != nil {
		d.sendProtocolError(t.ID, err.Error())
		return waitAction(), fmt.Errorf("episode: decode ACTION: %w", err)
	}

	action := wireToAction(am.Action)
	if action.IsWait() {
		return action, nil
	}

	if err := d.assign(t, action); err != nil {
		d.sendTaskError(t, action, err)
		return waitAction(), err
	}
	d.sendAck(t, action)
	return action, nil
}

func waitAction() task.Action {
	return task.Action{ActionType: task.Wait}
}

// RunEpisode drives one full episode: handshake, ticks, EPISODE_END, and
// the RESET handshake that starts the next one. It returns the episode
// number the policy requested next, or -1 if the policy closed the
// channel (clean exit per §6's exit code 0).
func (d *Driver) RunEpisode() (int, error) {
	if err := d.handshakeInit(); err != nil {
		return -1, err
	}

	d.Scheduler.Init(d.cfg.SeedBase + int64(d.episodeNumber))
	d.elapsed = 0
	d.lastSnapshot = 0

	for d.elapsed < d.cfg.Duration {
		d.tick()
	}

	return d.handshakeReset()
}

func (d *Driver) tick() {
	d.Scheduler.Process(d.cfg.Tick)
	d.elapsed += d.cfg.Tick

	for i, r := range d.Fleet.Robots {
		robot.Tick(d.World, r, d.cfg.Tick)
		if r.Status == robot.Idle && r.Battery < d.cfg.LowBatteryFloor {
			d.sendLowBattery(i)
		}
		d.Logger.RecordHeatmapVisit(r.CurrentNode, i, d.cfg.Tick)
	}

	d.advancePendingAssignments()

	if d.elapsed-d.lastSnapshot >= d.cfg.SnapshotInterval {
		d.lastSnapshot = d.elapsed
		d.captureSnapshot()
	}
}

func (d *Driver) sendLowBattery(robotIdx int) {
	r := d.Fleet.Get(robotIdx)
	msg := protocol.RobotStatusMessage{
		Type:       protocol.TypeRobotStatus,
		RobotIndex: robotIdx,
		StatusType: protocol.StatusLowBattery,
		Message:    "battery below threshold while idle",
		State:      d.snapshotState(),
	}
	if err := d.enc.Encode(msg); err != nil {
		logrus.WithError(err).Warn("episode: failed to send LOW_BATTERY status")
	}
	_ = r
}

func (d *Driver) captureSnapshot() {
	for i, r := range d.Fleet.Robots {
		d.Logger.RecordRobotSnapshot(d.elapsed, i, r)
	}
}

func (d *Driver) handshakeInit() error {
	msg := protocol.InitMessage{
		Type:      protocol.TypeInit,
		Nodes:     nodesToWire(d.World.Nodes),
		Edges:     edgesToWire(d.World.Graph),
		Products:  productsToWire(d.World.Products),
		Robots:    robotsToWire(d.Fleet.Robots),
		Timestamp: d.elapsed,
	}
	if err := d.enc.Encode(msg); err != nil {
		return fmt.Errorf("episode: send INIT: %w", err)
	}

	env, raw, err := d.dec.DecodeEnvelope()
	if err != nil {
		return fmt.Errorf("episode: handshake failure awaiting READY: %w", err)
	}
	if env.Type != protocol.TypeReady {
		return fmt.Errorf("episode: malformed INIT response, expected READY got %q", env.Type)
	}
	return protocol.ValidateInbound(protocol.TypeReady, raw)
}

func (d *Driver) handshakeReset() (int, error) {
	msg := protocol.EpisodeEndMessage{
		Type:       protocol.TypeEpisodeEnd,
		Metrics:    episodeMetricsToWire(d.Logger.Metrics()),
		FinalState: d.snapshotState(),
	}
	if err := d.enc.Encode(msg); err != nil {
		return -1, fmt.Errorf("episode: send EPISODE_END: %w", err)
	}

	env, raw, err := d.dec.DecodeEnvelope()
	if err != nil {
		// Policy closed the channel: clean exit (§6 exit code 0).
		return -1, nil
	}
	if env.Type != protocol.TypeReset {
		return -1, fmt.Errorf("episode: expected RESET, got %q", env.Type)
	}
	if err := protocol.ValidateInbound(protocol.TypeReset, raw); err != nil {
		return -1, err
	}

	var rm protocol.ResetMessage
	if err := unmarshalInto(raw, &rm); err != nil {
		return -1, fmt.Errorf("episode: decode RESET: %w", err)
	}

	d.World.ResetInventory()
	d.Fleet.Reset(d.World.ChargingStationIdx)
	d.Popularity.Reset()
	d.Logger = NewLogger()
	d.pending = make(map[int]*pendingAssignment)
	d.episodeNumber = rm.EpisodeNumber

	return d.episodeNumber, nil
}
