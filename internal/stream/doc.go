// Package stream implements the live update stream.
//
// Each connected consumer gets one Session:
//   - owns its own sim.Simulation and random source (no shared state)
//   - runs one tick, one batch and one emission per period
//   - checks for cancellation only at period boundaries
//   - ends when the consumer disconnects, the sink fails, the server shuts
//     down, or a tick faults; none of these are reported as errors
//
// The Manager tracks open sessions and cancels them on shutdown.
package stream
