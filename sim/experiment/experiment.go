// Package experiment repeats independent simulation runs under a variance
// reduction technique and combines them into Monte Carlo estimates.
package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/stats"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/variate"
)

// Trial is the outcome of a single simulation run.
type Trial struct {
	Seed             int64
	Result           *sim.Result
	MeanInterarrival float64 // mean of the gaps the run consumed, the control variate
}

// Simulate draws the driving sequences for one run from seed and runs it.
func Simulate(cfg Config, seed int64) (*Trial, error) {
	gapDist, err := variate.NewDistribution(cfg.Interarrival)
	if err != nil {
		return nil, fmt.Errorf("interarrival: %w", err)
	}
	serviceDist, err := variate.NewDistribution(cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	rng := variate.NewPartitionedRNG(variate.NewSimulationKey(seed))
	gaps, err := drivingSequence(cfg, gapDist, rng.ForSubsystem(variate.SubsystemInterarrival))
	if err != nil {
		return nil, fmt.Errorf("interarrival: %w", err)
	}
	services, err := drivingSequence(cfg, serviceDist, rng.ForSubsystem(variate.SubsystemService))
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	recorder := &gapRecorder{src: gaps}

	simCfg := sim.Config{
		Servers:       cfg.Servers,
		Interarrivals: recorder,
		Services:      services,
	}
	if cfg.Balking != nil {
		simCfg.Balking = &variate.ExponentialBalking{
			Loc:   cfg.Balking.Loc,
			Scale: cfg.Balking.Scale,
			RNG:   rng.ForSubsystem(variate.SubsystemBalking),
		}
	}
	engine, err := sim.NewEngine(simCfg)
	if err != nil {
		return nil, err
	}
	res, err := engine.Run(sim.Limits{MaxServed: cfg.ServingLimit, MaxTime: cfg.TimeLimit})
	if err != nil {
		return nil, err
	}

	return &Trial{Seed: seed, Result: res, MeanInterarrival: recorder.mean()}, nil
}

// drivingSequence draws cfg.Samples values up front, or streams them when
// the run is only bounded by time.
func drivingSequence(cfg Config, dist variate.Distribution, rng *rand.Rand) (sim.Sequence, error) {
	n := cfg.sampleSize()
	if n == 0 {
		return variate.NewStream(dist, cfg.Technique, rng)
	}
	values, err := variate.Sample(dist, cfg.Technique, n, cfg.Strata, rng)
	if err != nil {
		return nil, err
	}
	return sim.SliceSequence(values...), nil
}

// gapRecorder passes interarrival gaps through and keeps their running mean.
type gapRecorder struct {
	src sim.Sequence
	sum float64
	n   int
}

func (g *gapRecorder) Next() (float64, bool) {
	v, ok := g.src.Next()
	if ok {
		g.sum += v
		g.n++
	}
	return v, ok
}

func (g *gapRecorder) mean() float64 {
	if g.n == 0 {
		return 0
	}
	return g.sum / float64(g.n)
}

// RunSummary is the per-run row of a Report.
type RunSummary struct {
	Index            int
	Seed             int64
	Stop             sim.StopReason
	MeanInterarrival float64
	stats.Summary
}

// Report combines the runs of one experiment.
// Estimates only cover runs in which at least one customer alighted.
type Report struct {
	ID                   string
	Config               Config
	Runs                 []RunSummary
	WaitingTime          stats.Estimate
	ServiceTime          stats.Estimate
	TimeInSystem         stats.Estimate
	QueueLength          stats.Estimate
	CustomersUponArrival stats.Estimate
	Elapsed              time.Duration
}

// Print writes the estimates in a human readable form.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Experiment %s ===\n", r.ID)
	fmt.Fprintf(w, "Technique            : %s\n", r.Config.Technique)
	fmt.Fprintf(w, "Iterations           : %d\n", len(r.Runs))
	fmt.Fprintf(w, "Waiting Time         : %s\n", r.WaitingTime)
	fmt.Fprintf(w, "Service Time         : %s\n", r.ServiceTime)
	fmt.Fprintf(w, "Time In System       : %s\n", r.TimeInSystem)
	fmt.Fprintf(w, "Queue Length         : %s\n", r.QueueLength)
	fmt.Fprintf(w, "Found On Arrival     : %s\n", r.CustomersUponArrival)
	fmt.Fprintf(w, "Elapsed              : %s\n", r.Elapsed)
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	progress io.Writer
}

// WithProgress draws a progress bar of completed runs on w.
func WithProgress(w io.Writer) Option {
	return func(o *runOptions) { o.progress = w }
}

// Run executes cfg.Iterations independent runs, at most cfg.Workers at a
// time. Run i is seeded from the experiment seed and i alone, and its
// summary is stored at index i, so the report does not depend on the
// number of workers or on scheduling. The first failing run aborts the
// experiment, as does cancelling ctx.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gapDist, err := variate.NewDistribution(cfg.Interarrival)
	if err != nil {
		return nil, fmt.Errorf("interarrival: %w", err)
	}
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	master := variate.NewPartitionedRNG(variate.NewSimulationKey(cfg.Seed))
	seeds := make([]int64, cfg.Iterations)
	for i := range seeds {
		seeds[i] = master.Seed(variate.SubsystemRun(i))
	}

	var bar *progressbar.ProgressBar
	if o.progress != nil {
		bar = progressbar.NewOptions(cfg.Iterations,
			progressbar.OptionSetWriter(o.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("%s runs", cfg.Technique)),
			progressbar.OptionShowCount(),
		)
	}

	logrus.Infof("Starting experiment: %d iterations, technique=%s, workers=%d", cfg.Iterations, cfg.Technique, cfg.workers())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runs := make([]RunSummary, cfg.Iterations)
	errs := make([]error, cfg.Iterations)
	sem := make(chan struct{}, cfg.workers())
	var wg sync.WaitGroup

launch:
	for i := range seeds {
		if runCtx.Err() != nil {
			break
		}
		select {
		case <-runCtx.Done():
			break launch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			trial, err := Simulate(cfg, seeds[i])
			if err != nil {
				errs[i] = fmt.Errorf("run %d: %w", i, err)
				cancel()
				return
			}
			runs[i] = RunSummary{
				Index:            i,
				Seed:             seeds[i],
				Stop:             trial.Result.Stop,
				MeanInterarrival: trial.MeanInterarrival,
				Summary:          stats.Summarize(trial.Result),
			}
			logrus.Debugf("run %d (seed %d) finished: %s, %d served", i, seeds[i], trial.Result.Stop, trial.Result.Counters.Served)
			if bar != nil {
				_ = bar.Add(1)
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	report := &Report{
		ID:      xid.New().String(),
		Config:  cfg,
		Runs:    runs,
		Elapsed: time.Since(start),
	}
	report.estimate(gapDist.Mean())
	logrus.Infof("Experiment %s finished in %s", report.ID, report.Elapsed)
	return report, nil
}

// estimate fills the report estimates from the run summaries. mu is the
// known mean of the interarrival distribution, used by the control variate.
func (r *Report) estimate(mu float64) {
	controlled := r.Config.Technique == variate.ControlVariate

	var waits, services, system, queues, found, control []float64
	for _, run := range r.Runs {
		if run.Completed == 0 {
			continue
		}
		waits = append(waits, run.MeanWaitingTime)
		services = append(services, run.MeanServiceTime)
		system = append(system, run.MeanTimeInSystem)
		queues = append(queues, run.MeanQueueLength)
		found = append(found, run.MeanCustomersUponArrival)
		control = append(control, run.MeanInterarrival)
	}

	combine := func(values []float64) stats.Estimate {
		if controlled {
			return stats.ControlVariate(values, control, mu)
		}
		return stats.Aggregate(values)
	}
	r.WaitingTime = combine(waits)
	r.ServiceTime = combine(services)
	r.TimeInSystem = combine(system)
	r.QueueLength = combine(queues)
	r.CustomersUponArrival = combine(found)
}

// Sweep runs base once for every (iterations, technique) pair, iterating
// techniques fastest, and returns the reports in that order.
func Sweep(ctx context.Context, base Config, iterations []int, techniques []variate.Technique, opts ...Option) ([]*Report, error) {
	reports := make([]*Report, 0, len(iterations)*len(techniques))
	for _, n := range iterations {
		for _, tech := range techniques {
			cfg := base
			cfg.Iterations = n
			cfg.Technique = tech
			report, err := Run(ctx, cfg, opts...)
			if err != nil {
				return nil, fmt.Errorf("sweep %s x %d: %w", tech, n, err)
			}
			reports = append(reports, report)
		}
	}
	return reports, nil
}
