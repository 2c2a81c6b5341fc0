package variate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestNewDistribution_Valid(t *testing.T) {
	tests := []struct {
		name     string
		spec     DistSpec
		wantMean float64
	}{
		{"exponential", DistSpec{Type: "exponential", Params: map[string]float64{"rate": 2}}, 0.5},
		// clamping at zero lifts the mean slightly above mu
		{"normal", DistSpec{Type: "normal", Params: map[string]float64{"mean": 3, "std_dev": 1}}, 3.0003821543170477},
		{"binomial defaults", DistSpec{Type: "binomial", Params: map[string]float64{"n": 10}}, 6},
		{"binomial no offset", DistSpec{Type: "binomial", Params: map[string]float64{"n": 4, "p": 0.25, "offset": 0}}, 1},
		{"constant", DistSpec{Type: "constant", Params: map[string]float64{"value": 1.5}}, 1.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDistribution(tc.spec)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantMean, d.Mean(), 1e-9)
		})
	}
}

func TestNewDistribution_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec DistSpec
	}{
		{"unknown type", DistSpec{Type: "pareto"}},
		{"exponential missing rate", DistSpec{Type: "exponential"}},
		{"exponential zero rate", DistSpec{Type: "exponential", Params: map[string]float64{"rate": 0}}},
		{"normal missing std_dev", DistSpec{Type: "normal", Params: map[string]float64{"mean": 1}}},
		{"normal negative std_dev", DistSpec{Type: "normal", Params: map[string]float64{"mean": 1, "std_dev": -1}}},
		{"binomial missing n", DistSpec{Type: "binomial"}},
		{"binomial p out of range", DistSpec{Type: "binomial", Params: map[string]float64{"n": 3, "p": 1.5}}},
		{"constant negative", DistSpec{Type: "constant", Params: map[string]float64{"value": -1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDistribution(tc.spec)
			assert.Error(t, err)
		})
	}
}

func TestNormal_Quantile_ClampsAtZero(t *testing.T) {
	// GIVEN a normal centred at zero
	n := NewNormal(0, 1)

	// WHEN the lower tail is requested
	// THEN the duration is clamped to zero instead of going negative
	assert.Equal(t, 0.0, n.Quantile(0.01))
	assert.InDelta(t, 1.2816, n.Quantile(0.9), 1e-3)
}

func TestNormal_Mean_IsMeanOfClampedVariable(t *testing.T) {
	// GIVEN a normal with much of its mass below zero
	n := NewNormal(0.2, 1)

	// WHEN sampled through the clamped quantile
	xs, err := Sample(n, Standard, 200000, 0, rand.New(rand.NewSource(17)))
	require.NoError(t, err)

	// THEN Mean agrees with the empirical mean, not with mu
	assert.InDelta(t, stat.Mean(xs, nil), n.Mean(), 0.01)
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), NewNormal(0, 1).Mean(), 1e-12)
	assert.InDelta(t, 10.0, NewNormal(10, 1).Mean(), 1e-12)
}

func TestBinomial_Quantile_IsSmallestKWithCDFAtLeastU(t *testing.T) {
	// Binomial(10, 0.5): CDF(4) = 0.377, CDF(5) = 0.623
	b := NewBinomial(10, 0.5, 1)

	assert.Equal(t, 6.0, b.Quantile(0.5))
	assert.Equal(t, 5.0, b.Quantile(0.3))
	assert.Equal(t, 1.0, b.Quantile(1e-9))
	assert.Equal(t, 11.0, b.Quantile(math.Nextafter(1, 0)))
}

func TestExponential_Quantile_InvertsCDF(t *testing.T) {
	e := NewExponential(1)
	for _, u := range []float64{0.1, 0.5, 0.9} {
		x := e.Quantile(u)
		assert.InDelta(t, u, 1-math.Exp(-x), 1e-12)
	}
}
