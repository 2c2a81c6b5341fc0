// Implements the WaitQueue, which holds customers that arrived while every seat was taken.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue is an unbounded FIFO of customers waiting for a free seat.
// Removal order is always arrival order; Remove exists for balking and
// reneging and keeps the relative order of the remaining customers.
type WaitQueue struct {
	queue     []CustomerID // FIFO queue of customers
	customers int          // cached count, always len(queue)
}

// Enqueue adds a customer to the back of the wait queue.
func (wq *WaitQueue) Enqueue(id CustomerID) {
	wq.queue = append(wq.queue, id)
	wq.customers++
}

// Dequeue removes and returns the customer at the front of the queue.
// Returns false if the queue is empty.
func (wq *WaitQueue) Dequeue() (CustomerID, bool) {
	if wq.customers == 0 {
		return 0, false
	}
	head := wq.queue[0]
	wq.queue = wq.queue[1:]
	wq.customers--
	return head, true
}

// Peek returns the customer at the front of the queue without removing it.
func (wq *WaitQueue) Peek() (CustomerID, bool) {
	if wq.customers == 0 {
		return 0, false
	}
	return wq.queue[0], true
}

// Remove takes an arbitrary customer out of the queue.
// Returns false if the customer is not waiting.
func (wq *WaitQueue) Remove(id CustomerID) bool {
	for i, queued := range wq.queue {
		if queued == id {
			wq.queue = append(wq.queue[:i], wq.queue[i+1:]...)
			wq.customers--
			return true
		}
	}
	return false
}

// Len returns the number of customers in the queue.
func (wq *WaitQueue) Len() int {
	return wq.customers
}

// Items returns the queue contents in FIFO order.
// The returned slice is the queue's internal storage; callers MUST NOT modify it.
func (wq *WaitQueue) Items() []CustomerID {
	return wq.queue
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, id := range wq.queue {
		sb.WriteString(fmt.Sprint(int(id)))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
