// Package sim provides the core discrete-event engine for the bus queueing model.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - customer.go: Customer lifecycle (waiting → in service → served) and its snapshot record
//   - queue.go: the FIFO WaitQueue customers join when every seat is taken
//   - pool.go: the ServerPool ("bus"), a fixed set of single-occupancy seats
//   - event.go: tagged events and the selection rule between arrival and departure
//   - engine.go: the clock-advance loop that routes events to the queue and pool
//
// # Determinism
//
// The engine holds no randomness. A run is a pure function of its two driving
// sequences (interarrival gaps and service durations), so independent runs can
// execute concurrently without locks as long as each owns its own Engine.
// Random-variate generation lives in sim/variate, summary statistics in
// sim/stats and Monte-Carlo repetition in sim/experiment.
//
// # Time
//
// Simulated time is a float64. Never (+Inf) marks "no event scheduled" and
// "not yet" for customer timestamps.
package sim
