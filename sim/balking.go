package sim

// BalkingPolicy decides whether a customer who just joined the queue leaves
// it straight away. queueLength is the number of customers that were already
// waiting when this one arrived. A nil policy never balks.
type BalkingPolicy interface {
	Balks(c *Customer, queueLength int) bool
}

// BalkingFunc adapts a function into a BalkingPolicy.
type BalkingFunc func(c *Customer, queueLength int) bool

// Balks calls f.
func (f BalkingFunc) Balks(c *Customer, queueLength int) bool {
	return f(c, queueLength)
}
