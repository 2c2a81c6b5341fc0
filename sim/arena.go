package sim

import "fmt"

// Arena owns every Customer of one run. The WaitQueue and ServerPool hold
// CustomerIDs into it, so a Board or Alight through one component is visible
// through the others.
type Arena struct {
	customers []Customer
}

// Add creates a waiting customer and returns its ID.
func (a *Arena) Add(arrival float64, inSystem int) CustomerID {
	id := CustomerID(len(a.customers))
	a.customers = append(a.customers, NewCustomer(id, arrival, inSystem))
	return id
}

// Get returns the customer behind id. An unknown id is a bookkeeping defect.
func (a *Arena) Get(id CustomerID) *Customer {
	if id < 0 || int(id) >= len(a.customers) {
		panic(fmt.Sprintf("Arena.Get: unknown customer %d (arena holds %d)", id, len(a.customers)))
	}
	return &a.customers[id]
}

// Len returns the number of customers created so far.
func (a *Arena) Len() int {
	return len(a.customers)
}
