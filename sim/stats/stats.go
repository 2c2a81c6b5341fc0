// Package stats turns simulation results into summary statistics and
// combines per-run summaries into estimates across independent runs.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim"
)

// Summary holds the per-run performance measures.
// Time averages only cover customers that have alighted.
type Summary struct {
	Customers                int     // every customer that stayed, finished or not
	Completed                int     // customers with finite waiting and service times
	Balked                   int     // customers that left the queue on arrival
	MeanWaitingTime          float64 // W_q
	MeanServiceTime          float64 // S
	MeanTimeInSystem         float64 // W
	MeanCustomersUponArrival float64 // customers found in the system by an arrival
	MeanQueueLength          float64 // L_q averaged over events
	P90WaitingTime           float64
	Clock                    float64
}

// Summarize computes a Summary from one run. Records with any time still
// Never are excluded from the time averages.
func Summarize(res *sim.Result) Summary {
	s := Summary{
		Customers: len(res.Customers),
		Balked:    len(res.Lost),
		Clock:     res.Clock,
	}

	var waits, services, system, found []float64
	for _, r := range res.Customers {
		if !r.Complete() {
			continue
		}
		waits = append(waits, r.WaitingTime)
		services = append(services, r.ServiceDuration)
		system = append(system, r.TimeInSystem)
		found = append(found, float64(r.InSystemAtArrival))
	}
	s.Completed = len(waits)
	if s.Completed > 0 {
		s.MeanWaitingTime = stat.Mean(waits, nil)
		s.MeanServiceTime = stat.Mean(services, nil)
		s.MeanTimeInSystem = stat.Mean(system, nil)
		s.MeanCustomersUponArrival = stat.Mean(found, nil)

		sorted := append([]float64(nil), waits...)
		sort.Float64s(sorted)
		s.P90WaitingTime = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}

	if len(res.Steps) > 0 {
		lengths := make([]float64, len(res.Steps))
		for i, st := range res.Steps {
			lengths[i] = float64(st.QueueLength)
		}
		s.MeanQueueLength = stat.Mean(lengths, nil)
	}
	return s
}

// Print writes a human readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Customers            : %d\n", s.Customers)
	fmt.Fprintf(w, "Completed            : %d\n", s.Completed)
	fmt.Fprintf(w, "Balked               : %d\n", s.Balked)
	fmt.Fprintf(w, "Final Clock          : %.4f\n", s.Clock)
	if s.Completed > 0 {
		fmt.Fprintf(w, "Mean Waiting Time    : %.4f\n", s.MeanWaitingTime)
		fmt.Fprintf(w, "P90 Waiting Time     : %.4f\n", s.P90WaitingTime)
		fmt.Fprintf(w, "Mean Service Time    : %.4f\n", s.MeanServiceTime)
		fmt.Fprintf(w, "Mean Time In System  : %.4f\n", s.MeanTimeInSystem)
		fmt.Fprintf(w, "Mean Found On Arrival: %.4f\n", s.MeanCustomersUponArrival)
	}
	fmt.Fprintf(w, "Mean Queue Length    : %.4f\n", s.MeanQueueLength)
}

// Estimate is a Monte Carlo estimate over independent runs.
type Estimate struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // population standard deviation of the run values
	N      int     `json:"n"`
}

func (e Estimate) String() string {
	return fmt.Sprintf("%.4f ± %.4f (n=%d)", e.Mean, e.StdDev, e.N)
}

// Aggregate estimates the mean of values. NaN and infinite values are skipped.
func Aggregate(values []float64) Estimate {
	finite := finiteOnly(values)
	if len(finite) == 0 {
		return Estimate{}
	}
	mean, variance := stat.PopMeanVariance(finite, nil)
	return Estimate{Mean: mean, StdDev: math.Sqrt(variance), N: len(finite)}
}

// ControlVariate estimates the mean of y using x as a control with known
// mean mu: Ȳ - c(X̄ - mu) with c = Cov(Y, X) / Var(X). The reported StdDev
// is that of the adjusted series y_i - c(x_i - mu). It falls back to
// Aggregate(y) when x is constant, lengths differ, or fewer than two runs
// are available.
func ControlVariate(y, x []float64, mu float64) Estimate {
	if len(y) != len(x) || len(y) < 2 {
		return Aggregate(y)
	}
	varX := stat.Variance(x, nil)
	if varX == 0 || math.IsNaN(varX) {
		return Aggregate(y)
	}
	c := stat.Covariance(y, x, nil) / varX

	adjusted := make([]float64, len(y))
	for i := range y {
		adjusted[i] = y[i] - c*(x[i]-mu)
	}
	return Aggregate(adjusted)
}

func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
