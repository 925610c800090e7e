// Package sim ties the warehouse simulator's subpackages together into the
// ambient config an operator loads and a `cmd/` binary runs.
//
// Read in this order:
//   - sim/world    — nodes, products, shelf inventory
//   - sim/graph    — routing over the world's adjacency graph
//   - sim/robot    — robot fleet, movement, step_simulation actions
//   - sim/popularity — popularity scoring and zone reclassification
//   - sim/task     — the negotiated Task/Action vocabulary
//   - sim/event    — the discrete-event scheduler driving task generation
//   - sim/protocol — the newline-JSON wire format to the external policy
//   - sim/episode  — the per-episode driver wiring all of the above together
//   - sim/config.go (this package) — YAML-loadable knobs for cmd/run
package sim
