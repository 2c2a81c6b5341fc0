package variate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim"
)

// Technique selects how uniforms are turned into driving samples.
type Technique string

const (
	// Standard is plain Monte Carlo: Q(U).
	Standard Technique = "standard"
	// Antithetic averages each draw with its mirror: (Q(U) + Q(1-U)) / 2.
	Antithetic Technique = "antithetic"
	// Stratified spreads draws evenly over equal-probability strata.
	Stratified Technique = "stratified"
	// ControlVariate samples like Standard; the estimator is corrected
	// afterwards against the known mean of the interarrival gaps.
	ControlVariate Technique = "control_variate"
)

// Techniques lists every supported technique in a stable order.
var Techniques = []Technique{Standard, Antithetic, Stratified, ControlVariate}

// ParseTechnique maps a name to a Technique.
func ParseTechnique(name string) (Technique, error) {
	for _, t := range Techniques {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown variance reduction technique %q", name)
}

// lowest and highest keep inverse transforms away from the infinite tails.
var (
	lowest  = math.SmallestNonzeroFloat64
	highest = math.Nextafter(1, 0)
)

func quantile(dist Distribution, u float64) float64 {
	return dist.Quantile(math.Min(math.Max(u, lowest), highest))
}

// draw produces one sample using the per-draw techniques.
func draw(dist Distribution, tech Technique, rng *rand.Rand) float64 {
	u := rng.Float64()
	if tech == Antithetic {
		return (quantile(dist, u) + quantile(dist, 1-u)) / 2
	}
	return quantile(dist, u)
}

// Sample returns n samples from dist. strata is only read by Stratified and
// must then be positive.
func Sample(dist Distribution, tech Technique, n, strata int, rng *rand.Rand) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("sample size must be non-negative, got %d", n)
	}
	out := make([]float64, n)
	switch tech {
	case Standard, ControlVariate, Antithetic:
		for i := range out {
			out[i] = draw(dist, tech, rng)
		}
	case Stratified:
		if strata <= 0 {
			return nil, fmt.Errorf("stratified sampling needs a positive strata count, got %d", strata)
		}
		for i := range out {
			k := i % strata
			out[i] = quantile(dist, (float64(k)+rng.Float64())/float64(strata))
		}
		// strata are visited in order above; shuffle so the driving
		// sequence carries no artificial trend
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	default:
		return nil, fmt.Errorf("unknown variance reduction technique %q", tech)
	}
	return out, nil
}

// NewStream returns an unbounded sequence of samples from dist.
// Stratified sampling needs a fixed sample size and is rejected.
func NewStream(dist Distribution, tech Technique, rng *rand.Rand) (sim.Sequence, error) {
	switch tech {
	case Standard, ControlVariate, Antithetic:
		return sim.SequenceFunc(func() (float64, bool) {
			return draw(dist, tech, rng), true
		}), nil
	case Stratified:
		return nil, fmt.Errorf("stratified sampling requires a finite sample size")
	default:
		return nil, fmt.Errorf("unknown variance reduction technique %q", tech)
	}
}
