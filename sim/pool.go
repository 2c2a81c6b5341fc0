// Implements the ServerPool ("the bus"), a fixed number of interchangeable single-occupancy seats.

package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// seat is one server slot. An empty seat always carries the Never departure.
type seat struct {
	occupied  bool
	customer  CustomerID
	departure float64
}

// ServerPool holds a fixed number of seats. Each seat is either empty or
// holds exactly one customer together with its scheduled departure time.
// Customers that alight are archived into the pool's history.
type ServerPool struct {
	seats   []seat
	free    int
	served  int
	arena   *Arena
	history []CustomerRecord
}

// NewServerPool creates a pool with capacity empty seats backed by arena.
func NewServerPool(capacity int, arena *Arena) *ServerPool {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewServerPool: capacity must be positive, got %d", capacity))
	}
	if arena == nil {
		panic("NewServerPool: arena must not be nil")
	}
	seats := make([]seat, capacity)
	for i := range seats {
		seats[i].departure = Never
	}
	return &ServerPool{seats: seats, free: capacity, arena: arena}
}

// Capacity returns the number of seats.
func (p *ServerPool) Capacity() int {
	return len(p.seats)
}

// FreeSeats returns the number of empty seats.
func (p *ServerPool) FreeSeats() int {
	return p.free
}

// Occupied returns the number of seats holding a customer, counted from
// the seats themselves rather than the free counter.
func (p *ServerPool) Occupied() int {
	n := 0
	for _, s := range p.seats {
		if s.occupied {
			n++
		}
	}
	return n
}

// Served returns the number of customers that alighted from this pool.
func (p *ServerPool) Served() int {
	return p.served
}

// History returns the records of every customer that alighted, in release order.
func (p *ServerPool) History() []CustomerRecord {
	return p.history
}

// Seated returns the customers currently in service, in seat order.
func (p *ServerPool) Seated() []CustomerID {
	ids := make([]CustomerID, 0, len(p.seats)-p.free)
	for _, s := range p.seats {
		if s.occupied {
			ids = append(ids, s.customer)
		}
	}
	return ids
}

// Occupancy returns a per-seat occupied flag, used for diagnostics.
func (p *ServerPool) Occupancy() []bool {
	occ := make([]bool, len(p.seats))
	for i, s := range p.seats {
		occ[i] = s.occupied
	}
	return occ
}

// NextDepartureTime returns the earliest scheduled departure across all
// seats, or Never when every seat is empty.
func (p *ServerPool) NextDepartureTime() float64 {
	next := Never
	for _, s := range p.seats {
		if s.departure < next {
			next = s.departure
		}
	}
	return next
}

// Board seats customer id at time now with the given service completion time.
// With no free seat the call changes nothing and returns ErrPoolFull.
// Seats are interchangeable; the lowest-index empty seat is used.
func (p *ServerPool) Board(id CustomerID, now, completion float64) error {
	if p.free == 0 {
		return fmt.Errorf("board customer %d at %v: %w", id, now, ErrPoolFull)
	}
	if IsNever(completion) || math.IsNaN(completion) || completion < now {
		return fmt.Errorf("board customer %d at %v with completion %v: %w", id, now, completion, ErrInvalidDeparture)
	}
	idx := -1
	for i, s := range p.seats {
		if !s.occupied {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("free counter %d but no empty seat: %w", p.free, ErrPoolFull)
	}
	if err := p.arena.Get(id).Board(now); err != nil {
		return err
	}
	p.seats[idx] = seat{occupied: true, customer: id, departure: completion}
	p.free--
	logrus.Debugf("[t=%v] customer %d boards seat %d, departs at %v", now, id, idx, completion)
	return nil
}

// ReleaseDue alights every seated customer whose departure time equals now
// and returns how many were released. Customers sharing a departure time all
// leave in the same call.
func (p *ServerPool) ReleaseDue(now float64) (int, error) {
	if IsNever(now) {
		return 0, ErrSentinelCollision
	}
	released := 0
	for i := range p.seats {
		if released >= len(p.seats) {
			break
		}
		s := &p.seats[i]
		if s.departure != now {
			continue
		}
		if !s.occupied {
			return released, fmt.Errorf("seat %d is empty but scheduled at %v: %w", i, now, ErrInvalidTransition)
		}
		c := p.arena.Get(s.customer)
		if err := c.Alight(now); err != nil {
			return released, err
		}
		p.history = append(p.history, c.Snapshot())
		logrus.Debugf("[t=%v] customer %d alights seat %d", now, s.customer, i)
		*s = seat{departure: Never}
		p.free++
		p.served++
		released++
	}
	return released, nil
}
