package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim/experiment"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/report"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/stats"
)

var (
	customersParquet string // Parquet output of customer records
	stepsCSV         string // CSV output of step snapshots
	stepsParquet     string // Parquet output of step snapshots
)

// runCmd executes a single simulation run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one bus queue simulation and print its summary",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := runSingle(cmd.OutOrStdout(), cfg); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// runSingle simulates one run seeded with cfg.Seed and writes the requested outputs.
func runSingle(out io.Writer, cfg experiment.Config) error {
	trial, err := experiment.Simulate(cfg, cfg.Seed)
	if err != nil {
		return err
	}
	stats.Summarize(trial.Result).Print(out)

	if customersParquet != "" {
		if err := report.WriteCustomersParquet(customersParquet, trial.Result.Customers); err != nil {
			return err
		}
		logrus.Infof("Wrote %d customers to %s", len(trial.Result.Customers), customersParquet)
	}
	if stepsParquet != "" {
		if err := report.WriteStepsParquet(stepsParquet, trial.Result.Steps); err != nil {
			return err
		}
	}
	if stepsCSV != "" {
		if err := writeFile(stepsCSV, func(w io.Writer) error {
			return report.WriteStepsCSV(w, trial.Result.Steps)
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path and hands it to write.
func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()
	if err := write(file); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logrus.Debugf("Successfully wrote to '%s'", path)
	return nil
}
