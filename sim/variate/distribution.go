package variate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is a non-negative duration distribution sampled by inverse transform.
type Distribution interface {
	// Quantile returns the inverse CDF at u in (0, 1).
	Quantile(u float64) float64
	// Mean returns the expected value, used as the known mean of control variates.
	Mean() float64
}

// DistSpec parameterizes a Distribution in YAML.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Exponential gaps with the given rate (mean 1/rate).
type Exponential struct {
	dist distuv.Exponential
}

// NewExponential returns an exponential distribution with the given rate.
func NewExponential(rate float64) *Exponential {
	return &Exponential{dist: distuv.Exponential{Rate: rate}}
}

func (e *Exponential) Quantile(u float64) float64 { return e.dist.Quantile(u) }
func (e *Exponential) Mean() float64              { return e.dist.Mean() }

// Normal durations clamped at zero.
// Mean reports the mean of the clamped variable, max(0, X).
type Normal struct {
	dist distuv.Normal
}

// NewNormal returns a normal distribution clamped to non-negative values.
func NewNormal(mean, stdDev float64) *Normal {
	return &Normal{dist: distuv.Normal{Mu: mean, Sigma: stdDev}}
}

func (n *Normal) Quantile(u float64) float64 { return math.Max(0, n.dist.Quantile(u)) }

// Mean returns E[max(0, X)] = mu*Phi(mu/sigma) + sigma*phi(mu/sigma).
func (n *Normal) Mean() float64 {
	z := n.dist.Mu / n.dist.Sigma
	return n.dist.Mu*distuv.UnitNormal.CDF(z) + n.dist.Sigma*distuv.UnitNormal.Prob(z)
}

// Binomial models the number of stops a passenger rides: Binomial(n, p) + offset.
type Binomial struct {
	dist   distuv.Binomial
	offset float64
}

// NewBinomial returns Binomial(n, p) shifted by offset.
func NewBinomial(n int, p, offset float64) *Binomial {
	return &Binomial{dist: distuv.Binomial{N: float64(n), P: p}, offset: offset}
}

// Quantile returns the smallest k with CDF(k) >= u, plus the offset.
func (b *Binomial) Quantile(u float64) float64 {
	n := int(b.dist.N)
	for k := 0; k < n; k++ {
		if b.dist.CDF(float64(k)) >= u {
			return float64(k) + b.offset
		}
	}
	return float64(n) + b.offset
}

func (b *Binomial) Mean() float64 { return b.dist.Mean() + b.offset }

// Constant always yields the same duration.
type Constant struct {
	value float64
}

// NewConstant returns a degenerate distribution at value.
func NewConstant(value float64) *Constant {
	return &Constant{value: value}
}

func (c *Constant) Quantile(float64) float64 { return c.value }
func (c *Constant) Mean() float64            { return c.value }

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// paramOr returns params[key] or def when it is absent.
func paramOr(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

// NewDistribution creates a Distribution from a DistSpec.
func NewDistribution(spec DistSpec) (Distribution, error) {
	switch spec.Type {
	case "exponential":
		if err := requireParam(spec.Params, "rate"); err != nil {
			return nil, err
		}
		rate := spec.Params["rate"]
		if rate <= 0 {
			return nil, fmt.Errorf("exponential rate must be positive, got %v", rate)
		}
		return NewExponential(rate), nil

	case "normal":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		if spec.Params["std_dev"] <= 0 {
			return nil, fmt.Errorf("normal std_dev must be positive, got %v", spec.Params["std_dev"])
		}
		return NewNormal(spec.Params["mean"], spec.Params["std_dev"]), nil

	case "binomial":
		if err := requireParam(spec.Params, "n"); err != nil {
			return nil, err
		}
		n := spec.Params["n"]
		p := paramOr(spec.Params, "p", 0.5)
		offset := paramOr(spec.Params, "offset", 1)
		if n < 0 || n != math.Trunc(n) {
			return nil, fmt.Errorf("binomial n must be a non-negative integer, got %v", n)
		}
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("binomial p must be in [0, 1], got %v", p)
		}
		if offset < 0 {
			return nil, fmt.Errorf("binomial offset must be non-negative, got %v", offset)
		}
		return NewBinomial(int(n), p, offset), nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		if spec.Params["value"] < 0 {
			return nil, fmt.Errorf("constant value must be non-negative, got %v", spec.Params["value"])
		}
		return NewConstant(spec.Params["value"]), nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
