package sim

// EventKind tags the next thing that happens in the simulation.
type EventKind int

const (
	// EventNone means neither an arrival nor a departure is scheduled.
	EventNone EventKind = iota
	// EventArrival is a new customer entering the system.
	EventArrival
	// EventDeparture is one or more seated customers finishing service.
	EventDeparture
)

func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventDeparture:
		return "departure"
	default:
		return "none"
	}
}

// Event is a tagged event produced by SelectEvent.
type Event struct {
	Kind EventKind
	Time float64 // Never for EventNone
}

// SelectEvent picks the next event from the pending arrival and departure times.
// A departure wins a tie with an arrival: customers finishing at t free their
// seats before a customer arriving at t looks for one.
func SelectEvent(nextArrival, nextDeparture float64) Event {
	switch {
	case IsNever(nextArrival) && IsNever(nextDeparture):
		return Event{Kind: EventNone, Time: Never}
	case nextArrival < nextDeparture:
		return Event{Kind: EventArrival, Time: nextArrival}
	default:
		return Event{Kind: EventDeparture, Time: nextDeparture}
	}
}
