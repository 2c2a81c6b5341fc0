// sim/engine.go
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Config describes one simulation run.
type Config struct {
	Servers       int           // number of interchangeable seats (must be > 0)
	Interarrivals Sequence      // gap before each arrival; index 0 is the delay before the first
	Services      Sequence      // service durations, consumed in boarding order
	Balking       BalkingPolicy // optional; nil never balks
}

// Counters are the engine's running totals.
type Counters struct {
	Arrivals int // customers that entered the system
	Boarded  int // customers that took a seat (served or still in service)
	Served   int // customers that alighted
	Balked   int // customers that left the queue without service
	InSystem int // customers currently queued or seated
}

// StepSnapshot is the system state recorded once per Advance.
type StepSnapshot struct {
	Step        int
	Clock       float64
	Event       EventKind
	Arrivals    int // cumulative arrivals
	QueueLength int
	Served      int // cumulative served
	IdleServers int
}

// Engine is the core object that holds simulation time, system state and the
// event selection loop. It owns its Arena, WaitQueue and ServerPool; nothing
// else mutates them.
type Engine struct {
	clock         float64
	nextArrival   float64
	nextDeparture float64

	arena *Arena
	queue *WaitQueue
	pool  *ServerPool

	gaps     Sequence
	services *peekSequence
	balking  BalkingPolicy

	counters Counters
	steps    []StepSnapshot
	lost     []CustomerRecord

	// err latches the first invariant violation; the run cannot continue.
	err error
}

// NewEngine creates an engine at clock 0 with every seat empty and the
// first arrival scheduled from the first interarrival gap.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Servers <= 0 {
		return nil, fmt.Errorf("servers must be positive, got %d: %w", cfg.Servers, ErrInvalidConfig)
	}
	if cfg.Interarrivals == nil || cfg.Services == nil {
		return nil, fmt.Errorf("interarrival and service sequences are required: %w", ErrInvalidConfig)
	}
	arena := &Arena{}
	e := &Engine{
		clock:         0,
		nextDeparture: Never,
		arena:         arena,
		queue:         &WaitQueue{},
		pool:          NewServerPool(cfg.Servers, arena),
		gaps:          cfg.Interarrivals,
		services:      &peekSequence{src: cfg.Services},
		balking:       cfg.Balking,
	}
	next, err := e.scheduleArrival()
	if err != nil {
		return nil, fmt.Errorf("first interarrival gap: %w", err)
	}
	e.nextArrival = next
	return e, nil
}

// Now returns the current simulation clock.
func (e *Engine) Now() float64 { return e.clock }

// NextArrival returns the time of the pending arrival, or Never.
func (e *Engine) NextArrival() float64 { return e.nextArrival }

// NextDeparture returns the earliest scheduled departure, or Never.
func (e *Engine) NextDeparture() float64 { return e.nextDeparture }

// Counters returns the running totals.
func (e *Engine) Counters() Counters { return e.counters }

// QueueLength returns the number of waiting customers.
func (e *Engine) QueueLength() int { return e.queue.Len() }

// FreeSeats returns the number of idle servers.
func (e *Engine) FreeSeats() int { return e.pool.FreeSeats() }

// Steps returns the per-step snapshots recorded so far.
func (e *Engine) Steps() []StepSnapshot { return e.steps }

// History returns the records of customers that have alighted.
func (e *Engine) History() []CustomerRecord { return e.pool.History() }

// Lost returns the records of customers that balked.
func (e *Engine) Lost() []CustomerRecord { return e.lost }

// Customers returns every customer still accounted for by the run: alighted
// customers first, then those in service, then those still queued. The last
// two groups carry Never in the timestamps they have not reached yet.
func (e *Engine) Customers() []CustomerRecord {
	history := e.pool.History()
	out := make([]CustomerRecord, 0, len(history)+e.pool.Capacity()+e.queue.Len())
	out = append(out, history...)
	for _, id := range e.pool.Seated() {
		out = append(out, e.arena.Get(id).Snapshot())
	}
	for _, id := range e.queue.Items() {
		out = append(out, e.arena.Get(id).Snapshot())
	}
	return out
}

// Advance moves the clock to the next event and processes it.
// Returns ErrNoMoreEvents, leaving the state untouched, when neither an
// arrival nor a departure is pending. Any other error is an *InvariantError
// and is returned again by every later call.
func (e *Engine) Advance() (StepSnapshot, error) {
	if e.err != nil {
		return StepSnapshot{}, e.err
	}

	ev := SelectEvent(e.nextArrival, e.nextDeparture)
	if ev.Kind == EventNone {
		return StepSnapshot{}, ErrNoMoreEvents
	}
	if ev.Time < e.clock {
		return StepSnapshot{}, e.fail(fmt.Errorf("%s at %v before clock %v: %w", ev.Kind, ev.Time, e.clock, ErrClockReversed))
	}

	// advance the clock
	e.clock = ev.Time

	var err error
	switch ev.Kind {
	case EventArrival:
		err = e.arrive()
	case EventDeparture:
		err = e.depart()
	}
	if err == nil {
		err = e.checkInvariants()
	}
	if err != nil {
		return StepSnapshot{}, e.fail(err)
	}

	snap := StepSnapshot{
		Step:        len(e.steps) + 1,
		Clock:       e.clock,
		Event:       ev.Kind,
		Arrivals:    e.counters.Arrivals,
		QueueLength: e.queue.Len(),
		Served:      e.counters.Served,
		IdleServers: e.pool.FreeSeats(),
	}
	e.steps = append(e.steps, snap)
	return snap, nil
}

// arrive creates a customer at the current clock and seats or queues it.
func (e *Engine) arrive() error {
	id := e.arena.Add(e.clock, e.counters.InSystem)
	e.counters.Arrivals++
	e.counters.InSystem++
	logrus.Debugf("[t=%v] arrival: customer %d (%d in system)", e.clock, id, e.counters.InSystem-1)

	boarded := false
	if e.pool.FreeSeats() > 0 {
		var err error
		if boarded, err = e.boardNext(id); err != nil {
			return err
		}
		e.nextDeparture = e.pool.NextDepartureTime()
	}
	if !boarded {
		waiting := e.queue.Len()
		e.queue.Enqueue(id)
		if e.balking != nil && e.balking.Balks(e.arena.Get(id), waiting) {
			e.queue.Remove(id)
			e.counters.Balked++
			e.counters.InSystem--
			e.lost = append(e.lost, e.arena.Get(id).Snapshot())
			logrus.Debugf("[t=%v] customer %d balks at queue length %d", e.clock, id, waiting)
		}
	}

	next, err := e.scheduleArrival()
	if err != nil {
		return err
	}
	e.nextArrival = next
	return nil
}

// depart releases every customer due at the current clock and refills the
// freed seats from the head of the queue.
func (e *Engine) depart() error {
	released, err := e.pool.ReleaseDue(e.clock)
	if err != nil {
		return err
	}
	if released == 0 {
		return fmt.Errorf("departure at %v released no customer: %w", e.clock, ErrInvalidTransition)
	}
	e.counters.Served += released
	e.counters.InSystem -= released
	logrus.Debugf("[t=%v] departure: %d customer(s) alight", e.clock, released)

	// customers move straight from the queue to the freed seats
	for e.pool.FreeSeats() > 0 {
		head, ok := e.queue.Peek()
		if !ok {
			break
		}
		boarded, err := e.boardNext(head)
		if err != nil {
			return err
		}
		if !boarded {
			break
		}
		e.queue.Dequeue()
	}

	e.nextDeparture = e.pool.NextDepartureTime()
	return nil
}

// boardNext seats customer id with the next service duration. It returns
// false without consuming anything when the service sequence is exhausted.
func (e *Engine) boardNext(id CustomerID) (bool, error) {
	d, ok := e.services.peek()
	if !ok {
		logrus.Debugf("[t=%v] service durations exhausted, customer %d keeps waiting", e.clock, id)
		return false, nil
	}
	if !validDuration(d) {
		return false, fmt.Errorf("service duration %v for customer %d: %w", d, id, ErrInvalidDuration)
	}
	if err := e.pool.Board(id, e.clock, e.clock+d); err != nil {
		return false, err
	}
	e.services.next()
	e.counters.Boarded++
	return true, nil
}

// scheduleArrival draws the next interarrival gap and returns the absolute
// arrival time, or Never once the gaps are exhausted.
func (e *Engine) scheduleArrival() (float64, error) {
	gap, ok := e.gaps.Next()
	if !ok {
		logrus.Debugf("[t=%v] interarrival gaps exhausted", e.clock)
		return Never, nil
	}
	if !validDuration(gap) {
		return Never, fmt.Errorf("interarrival gap %v: %w", gap, ErrInvalidDuration)
	}
	return e.clock + gap, nil
}

// checkInvariants verifies that every arrived customer is accounted for
// exactly once and that seat accounting agrees with seat contents.
func (e *Engine) checkInvariants() error {
	occupied := e.pool.Occupied()
	queued := e.queue.Len()
	c := e.counters
	switch {
	case occupied+e.pool.FreeSeats() != e.pool.Capacity():
		return fmt.Errorf("occupied %d + free %d != capacity %d: %w", occupied, e.pool.FreeSeats(), e.pool.Capacity(), ErrConservation)
	case c.Boarded != c.Served+occupied:
		return fmt.Errorf("boarded %d != served %d + in service %d: %w", c.Boarded, c.Served, occupied, ErrConservation)
	case c.Arrivals != c.Served+occupied+queued+c.Balked:
		return fmt.Errorf("arrivals %d != served %d + in service %d + queued %d + balked %d: %w",
			c.Arrivals, c.Served, occupied, queued, c.Balked, ErrConservation)
	case c.InSystem != occupied+queued:
		return fmt.Errorf("in system %d != in service %d + queued %d: %w", c.InSystem, occupied, queued, ErrConservation)
	case c.Served != e.pool.Served():
		return fmt.Errorf("served counter %d != pool served %d: %w", c.Served, e.pool.Served(), ErrConservation)
	}
	return nil
}

// fail wraps err with the current state, latches it and returns it.
func (e *Engine) fail(err error) error {
	var ie *InvariantError
	if !errors.As(err, &ie) {
		ie = &InvariantError{
			Clock:       e.clock,
			Step:        len(e.steps) + 1,
			Occupancy:   e.pool.Occupancy(),
			QueueLength: e.queue.Len(),
			Err:         err,
		}
	}
	e.err = ie
	logrus.Errorf("simulation aborted: %v", ie)
	return ie
}

func validDuration(d float64) bool {
	return d >= 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}
