// Defines the Customer struct that models one individual's passage through the system.
// Tracks arrival, boarding and departure timestamps and the lifecycle status.

package sim

import (
	"fmt"
	"math"
)

// Never is the sentinel time for "no event scheduled" and "not happened yet".
// It compares greater than every finite simulated time.
var Never = math.Inf(1)

// IsNever reports whether t is the Never sentinel.
func IsNever(t float64) bool {
	return math.IsInf(t, 1)
}

// CustomerID is a stable index into the run's customer Arena.
type CustomerID int

// CustomerStatus represents the lifecycle state of a customer.
type CustomerStatus string

const (
	StatusWaiting   CustomerStatus = "waiting"
	StatusInService CustomerStatus = "in_service"
	StatusServed    CustomerStatus = "served"
)

// Customer models a single customer's lifecycle in the simulation.
// Status moves Waiting → InService → Served and never backwards.
type Customer struct {
	ID                CustomerID
	ArrivalTime       float64        // set at creation, immutable
	BoardedTime       float64        // Never until the customer takes a seat
	DepartureTime     float64        // Never until the customer alights
	InSystemAtArrival int            // customers already in the system when this one arrived
	Status            CustomerStatus // waiting, in_service, served
}

// NewCustomer creates a waiting customer that arrived at the given time.
func NewCustomer(id CustomerID, arrival float64, inSystem int) Customer {
	return Customer{
		ID:                id,
		ArrivalTime:       arrival,
		BoardedTime:       Never,
		DepartureTime:     Never,
		InSystemAtArrival: inSystem,
		Status:            StatusWaiting,
	}
}

// Board records that the customer took a seat at time t.
func (c *Customer) Board(t float64) error {
	if c.Status != StatusWaiting {
		return fmt.Errorf("board customer %d in state %s: %w", c.ID, c.Status, ErrInvalidTransition)
	}
	if t < c.ArrivalTime {
		return fmt.Errorf("board customer %d at %v before arrival %v: %w", c.ID, t, c.ArrivalTime, ErrInvalidTransition)
	}
	c.BoardedTime = t
	c.Status = StatusInService
	return nil
}

// Alight records that the customer finished service and left at time t.
func (c *Customer) Alight(t float64) error {
	if c.Status != StatusInService {
		return fmt.Errorf("alight customer %d in state %s: %w", c.ID, c.Status, ErrInvalidTransition)
	}
	if t < c.BoardedTime {
		return fmt.Errorf("alight customer %d at %v before boarding %v: %w", c.ID, t, c.BoardedTime, ErrInvalidTransition)
	}
	c.DepartureTime = t
	c.Status = StatusServed
	return nil
}

// CustomerRecord is the read-only view of a customer handed to statistics
// collectors. Durations whose end point has not happened yet are Never.
type CustomerRecord struct {
	ID                CustomerID
	ArrivalTime       float64
	BoardedTime       float64
	DepartureTime     float64
	WaitingTime       float64 // BoardedTime - ArrivalTime
	ServiceDuration   float64 // DepartureTime - BoardedTime
	TimeInSystem      float64 // WaitingTime + ServiceDuration
	InSystemAtArrival int
	Status            CustomerStatus
}

// Snapshot returns the customer's current record.
// TimeInSystem is the sum of the two intervals so that the identity
// WaitingTime + ServiceDuration == TimeInSystem holds bit for bit.
func (c Customer) Snapshot() CustomerRecord {
	waiting, service := Never, Never
	if !IsNever(c.BoardedTime) {
		waiting = c.BoardedTime - c.ArrivalTime
		if !IsNever(c.DepartureTime) {
			service = c.DepartureTime - c.BoardedTime
		}
	}
	return CustomerRecord{
		ID:                c.ID,
		ArrivalTime:       c.ArrivalTime,
		BoardedTime:       c.BoardedTime,
		DepartureTime:     c.DepartureTime,
		WaitingTime:       waiting,
		ServiceDuration:   service,
		TimeInSystem:      waiting + service,
		InSystemAtArrival: c.InSystemAtArrival,
		Status:            c.Status,
	}
}

// Complete reports whether every timestamp in the record is finite.
func (r CustomerRecord) Complete() bool {
	return !IsNever(r.BoardedTime) && !IsNever(r.DepartureTime)
}

// This method returns a human-readable string representation of a Customer.
func (c Customer) String() string {
	return fmt.Sprintf("Customer: (ID: %d, Status: %s, ArrivalTime: %v, BoardedTime: %v)", c.ID, c.Status, c.ArrivalTime, c.BoardedTime)
}
