// Package sim implements the per-session live update simulation.
//
// A Simulation owns:
//   - Store: a fixed population of entities addressed by integer id
//   - Engine: one bounded random-walk step per entity per tick
//   - Batcher: one Batch of rounded updates per tick
//
// A Simulation is not safe for concurrent use. It is owned by exactly one
// stream session, which is its only mutator.
package sim
