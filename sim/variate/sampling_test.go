package variate

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestParseTechnique(t *testing.T) {
	for _, tech := range Techniques {
		got, err := ParseTechnique(string(tech))
		require.NoError(t, err)
		assert.Equal(t, tech, got)
	}
	_, err := ParseTechnique("quasi_monte_carlo")
	assert.Error(t, err)
}

func TestSample_SameSeed_SameValues(t *testing.T) {
	d := NewExponential(1)
	for _, tech := range Techniques {
		t.Run(string(tech), func(t *testing.T) {
			a, err := Sample(d, tech, 50, 5, rand.New(rand.NewSource(7)))
			require.NoError(t, err)
			b, err := Sample(d, tech, 50, 5, rand.New(rand.NewSource(7)))
			require.NoError(t, err)
			assert.Equal(t, a, b)
			assert.Len(t, a, 50)
		})
	}
}

func TestSample_Standard_MatchesDistributionMean(t *testing.T) {
	d := NewExponential(2)
	xs, err := Sample(d, Standard, 20000, 0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, stat.Mean(xs, nil), 0.02)
	for _, x := range xs {
		assert.False(t, math.IsInf(x, 0) || math.IsNaN(x) || x < 0, "bad sample %v", x)
	}
}

func TestSample_Antithetic_ReducesVariance(t *testing.T) {
	// GIVEN the same number of standard and antithetic exponential draws
	d := NewExponential(1)
	std, err := Sample(d, Standard, 5000, 0, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	anti, err := Sample(d, Antithetic, 5000, 0, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// THEN the antithetic pairs keep the mean but shrink the spread
	assert.InDelta(t, 1.0, stat.Mean(anti, nil), 0.03)
	assert.Less(t, stat.Variance(anti, nil), stat.Variance(std, nil)/2)
}

func TestSample_Stratified_FillsEveryStratumEqually(t *testing.T) {
	// GIVEN 40 draws over 4 strata of an exponential(1)
	d := NewExponential(1)
	xs, err := Sample(d, Stratified, 40, 4, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	// THEN each quarter of probability mass holds exactly 10 draws
	counts := make([]int, 4)
	for _, x := range xs {
		u := 1 - math.Exp(-x)
		counts[int(u*4)]++
	}
	assert.Equal(t, []int{10, 10, 10, 10}, counts)
}

func TestSample_Stratified_RejectsNonPositiveStrata(t *testing.T) {
	_, err := Sample(NewExponential(1), Stratified, 10, 0, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestSample_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Sample(NewExponential(1), Standard, -1, 0, rng)
	assert.Error(t, err)
	_, err = Sample(NewExponential(1), Technique("bogus"), 1, 0, rng)
	assert.Error(t, err)
}

func TestNewStream_IsUnbounded(t *testing.T) {
	seq, err := NewStream(NewConstant(2), Antithetic, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		v, ok := seq.Next()
		require.True(t, ok)
		require.Equal(t, 2.0, v)
	}
}

func TestNewStream_RejectsStratified(t *testing.T) {
	_, err := NewStream(NewConstant(1), Stratified, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestExponentialBalking_Probability(t *testing.T) {
	b := &ExponentialBalking{Loc: 0, Scale: 1}

	assert.Equal(t, 0.0, b.Probability(0), "empty queue never balks")
	assert.InDelta(t, math.Exp(-1), b.Probability(1), 1e-12)
	assert.InDelta(t, math.Exp(-3), b.Probability(3), 1e-12)

	shifted := &ExponentialBalking{Loc: 2, Scale: 1}
	assert.Equal(t, 0.0, shifted.Probability(1), "below loc the density is zero")
	assert.InDelta(t, 1.0, shifted.Probability(2), 1e-12)
}

func TestExponentialBalking_Balks(t *testing.T) {
	// density 1 at queue length == loc means a certain balk
	b := &ExponentialBalking{Loc: 1, Scale: 1, RNG: rand.New(rand.NewSource(1))}
	assert.True(t, b.Balks(nil, 1))
	assert.False(t, b.Balks(nil, 0))
}
