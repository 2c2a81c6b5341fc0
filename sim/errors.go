package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMoreEvents is returned by Advance when both the next arrival and the
	// next departure are Never.
	ErrNoMoreEvents = errors.New("no more events")

	// ErrInvalidTransition is returned when a customer is boarded or alighted
	// out of lifecycle order.
	ErrInvalidTransition = errors.New("invalid customer transition")

	// ErrPoolFull is returned when boarding into a pool with no free seat.
	ErrPoolFull = errors.New("server pool full")

	// ErrInvalidDeparture is returned when a seat would be given a completion
	// time that is not finite or lies before the boarding time.
	ErrInvalidDeparture = errors.New("invalid departure time")

	// ErrSentinelCollision is returned when a release is requested at Never.
	ErrSentinelCollision = errors.New("release requested at the never sentinel")

	// ErrConservation is returned when the arrival/boarded/served counters no
	// longer agree with the queue and seat contents.
	ErrConservation = errors.New("customer conservation violated")

	// ErrClockReversed is returned when the selected event lies in the past.
	ErrClockReversed = errors.New("clock moved backwards")

	// ErrInvalidConfig is returned by NewEngine for unusable configuration.
	ErrInvalidConfig = errors.New("invalid engine config")
)

// InvariantError reports a bookkeeping defect detected during Advance.
// It carries the engine state at the time of failure. The run cannot
// continue after one.
type InvariantError struct {
	Clock       float64
	Step        int
	Occupancy   []bool // per-seat occupancy at the time of failure
	QueueLength int
	Err         error
}

func (e *InvariantError) Error() string {
	busy := 0
	for _, o := range e.Occupancy {
		if o {
			busy++
		}
	}
	return fmt.Sprintf("invariant violated at clock=%v step=%d (seats %d/%d busy %v, queue=%d): %v",
		e.Clock, e.Step, busy, len(e.Occupancy), e.Occupancy, e.QueueLength, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// ErrInvalidDuration is returned when a driving sequence yields a negative,
// NaN or infinite duration.
var ErrInvalidDuration = errors.New("invalid driving duration")
