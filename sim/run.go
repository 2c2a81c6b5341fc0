package sim

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Limits bounds a run. A zero field is unbounded.
type Limits struct {
	MaxServed int     // stop once this many customers have alighted
	MaxTime   float64 // stop once the clock reaches this value
}

// StopReason says why Run returned.
type StopReason string

const (
	StopServedLimit StopReason = "served_limit"
	StopTimeLimit   StopReason = "time_limit"
	StopExhausted   StopReason = "exhausted" // no arrival or departure left to process
)

// Result is the output of one run, consumed by statistics collectors.
type Result struct {
	Stop      StopReason
	Limits    Limits
	Clock     float64
	Counters  Counters
	Customers []CustomerRecord // alighted, then in service, then queued
	Lost      []CustomerRecord // balked customers
	Steps     []StepSnapshot
}

// Exhausted reports whether the driving data ran out before a requested
// bound was reached. A fully unbounded run that drains is not exhausted.
func (r *Result) Exhausted() bool {
	return r.Stop == StopExhausted && (r.Limits.MaxServed > 0 || r.Limits.MaxTime > 0)
}

// Run advances the engine until a limit is reached or no event is left.
// Running out of driving data is reported through Result.Stop, not as an error.
func (e *Engine) Run(limits Limits) (*Result, error) {
	logrus.Infof("Starting simulation with %d servers, max served=%d, max time=%v",
		e.pool.Capacity(), limits.MaxServed, limits.MaxTime)

	var stop StopReason
	for {
		if limits.MaxServed > 0 && e.counters.Served >= limits.MaxServed {
			stop = StopServedLimit
			break
		}
		if limits.MaxTime > 0 && e.clock >= limits.MaxTime {
			stop = StopTimeLimit
			break
		}
		if _, err := e.Advance(); err != nil {
			if errors.Is(err, ErrNoMoreEvents) {
				stop = StopExhausted
				break
			}
			return nil, err
		}
	}

	res := &Result{
		Stop:      stop,
		Limits:    limits,
		Clock:     e.clock,
		Counters:  e.counters,
		Customers: e.Customers(),
		Lost:      e.lost,
		Steps:     e.steps,
	}
	if res.Exhausted() {
		logrus.Warnf("[t=%v] ran out of driving data after %d arrivals and %d served", e.clock, e.counters.Arrivals, e.counters.Served)
	}
	logrus.Infof("[t=%v] Simulation ended (%s) after %d steps", e.clock, stop, len(e.steps))
	return res, nil
}
