package variate

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim"
)

// ExponentialBalking makes an arriving customer leave with probability equal
// to the exponential density at the queue length it found, shifted by Loc.
// Customers who find nobody waiting never balk.
type ExponentialBalking struct {
	Loc   float64 // queue length at which balking starts
	Scale float64 // decay scale of the density (1 if zero)
	RNG   *rand.Rand
}

// Probability returns the balking probability at the given queue length.
func (b *ExponentialBalking) Probability(queueLength int) float64 {
	if queueLength == 0 {
		return 0
	}
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	return distuv.Exponential{Rate: 1 / scale}.Prob(float64(queueLength) - b.Loc)
}

// Balks implements sim.BalkingPolicy.
func (b *ExponentialBalking) Balks(_ *sim.Customer, queueLength int) bool {
	p := b.Probability(queueLength)
	if p <= 0 {
		return false
	}
	return b.RNG.Float64() < p
}
