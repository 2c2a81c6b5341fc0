package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim/experiment"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/report"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/variate"
)

var (
	progress        bool     // Draw a progress bar on stderr
	runsCSV         string   // CSV output of per-run summaries
	sweepCSV        string   // CSV output of the sweep grid
	sweepIterations []int    // Iteration counts of the sweep grid
	sweepTechniques []string // Techniques of the sweep grid
)

func registerExperimentFlags(fs *pflag.FlagSet) {
	def := experiment.DefaultConfig()
	fs.IntVar(&workers, "workers", def.Workers, "Runs executed in parallel")
	fs.BoolVar(&progress, "progress", false, "Show a progress bar on stderr")
}

func techniqueNames() []string {
	names := make([]string, len(variate.Techniques))
	for i, t := range variate.Techniques {
		names[i] = string(t)
	}
	return names
}

func runOptions() []experiment.Option {
	if progress {
		return []experiment.Option{experiment.WithProgress(os.Stderr)}
	}
	return nil
}

// experimentCmd repeats independent runs and prints the Monte Carlo estimates
var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Estimate queue performance over independent runs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("iterations") {
			cfg.Iterations = iterations
		}
		r, err := experiment.Run(cmd.Context(), cfg, runOptions()...)
		if err != nil {
			logrus.Fatalf("Experiment failed: %v", err)
		}
		r.Print(cmd.OutOrStdout())
		if runsCSV != "" {
			if err := writeFile(runsCSV, func(w io.Writer) error { return report.WriteRunsCSV(w, r) }); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
	},
}

// sweepCmd runs the iterations x technique grid
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare variance reduction techniques across iteration counts",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		techniques, err := parseTechniques(sweepTechniques)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		reports, err := experiment.Sweep(cmd.Context(), cfg, sweepIterations, techniques, runOptions()...)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		for _, r := range reports {
			r.Print(cmd.OutOrStdout())
		}
		if sweepCSV != "" {
			if err := writeFile(sweepCSV, func(w io.Writer) error { return report.WriteSweepCSV(w, reports) }); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
	},
}

func parseTechniques(names []string) ([]variate.Technique, error) {
	out := make([]variate.Technique, 0, len(names))
	for _, name := range names {
		t, err := variate.ParseTechnique(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
