package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim/experiment"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/variate"
)

var (
	// CLI flags shared by every subcommand
	logLevel   string // Log verbosity level
	configPath string // YAML experiment definition

	// CLI flags overriding the experiment definition
	seed         int64   // Master seed of the experiment
	servers      int     // Seats on the bus
	arrivalRate  float64 // Exponential interarrival rate
	busStops     int     // Binomial n of the ride length
	servingLimit int     // Stop once this many customers have alighted
	timeLimit    float64 // Stop once the clock reaches this value
	samples      int     // Gaps and durations drawn per run
	technique    string  // Variance reduction technique
	strata       int     // Strata count for stratified sampling
	iterations   int     // Independent runs per experiment
	workers      int     // Runs executed in parallel
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "busqueue",
	Short: "Discrete-event simulator for a multi-seat bus queue",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerModelFlags adds the flags that override experiment.Config fields.
// Every subcommand binds the same package-level variables, and a FlagSet
// keeps its Changed marks after parsing, so one process serves one
// invocation unless the flags are reset in between.
func registerModelFlags(fs *pflag.FlagSet) {
	def := experiment.DefaultConfig()
	fs.StringVar(&configPath, "config", "", "YAML experiment definition (flags override its values)")
	fs.Int64Var(&seed, "seed", def.Seed, "Master seed")
	fs.IntVar(&servers, "servers", def.Servers, "Number of seats on the bus")
	fs.Float64Var(&arrivalRate, "rate", def.Interarrival.Params["rate"], "Exponential arrival rate")
	fs.IntVar(&busStops, "stops", int(def.Service.Params["n"]), "Bus stops; rides are Binomial(stops, 0.5)+1")
	fs.IntVar(&servingLimit, "serving-limit", def.ServingLimit, "Stop after this many customers alight (0 = unbounded)")
	fs.Float64Var(&timeLimit, "time-limit", def.TimeLimit, "Stop once the clock reaches this value (0 = unbounded)")
	fs.IntVar(&samples, "samples", def.Samples, "Gaps and durations drawn per run (0 = serving limit)")
	fs.StringVar(&technique, "technique", string(def.Technique), "Variance reduction technique (standard, antithetic, stratified, control_variate)")
	fs.IntVar(&strata, "strata", def.Strata, "Number of strata for stratified sampling")
}

// resolveConfig loads --config, if any, and applies the model flags the user
// set. Callers validate once their own overrides are in.
func resolveConfig(fs *pflag.FlagSet) (experiment.Config, error) {
	cfg := experiment.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = experiment.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("seed") {
		cfg.Seed = seed
	}
	if fs.Changed("servers") {
		cfg.Servers = servers
	}
	if fs.Changed("rate") {
		cfg.Interarrival = variate.DistSpec{Type: "exponential", Params: map[string]float64{"rate": arrivalRate}}
	}
	if fs.Changed("stops") {
		cfg.Service = variate.DistSpec{Type: "binomial", Params: map[string]float64{"n": float64(busStops)}}
	}
	if fs.Changed("serving-limit") {
		cfg.ServingLimit = servingLimit
	}
	if fs.Changed("time-limit") {
		cfg.TimeLimit = timeLimit
	}
	if fs.Changed("samples") {
		cfg.Samples = samples
	}
	if fs.Changed("technique") {
		tech, err := variate.ParseTechnique(technique)
		if err != nil {
			return cfg, err
		}
		cfg.Technique = tech
	}
	if fs.Changed("strata") {
		cfg.Strata = strata
	}
	if f := fs.Lookup("workers"); f != nil && f.Changed {
		cfg.Workers = workers
	}
	return cfg, nil
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerModelFlags(runCmd.Flags())
	runCmd.Flags().StringVar(&customersParquet, "customers-parquet", "", "Write customer records to this Parquet file")
	runCmd.Flags().StringVar(&stepsCSV, "steps-csv", "", "Write per-event system state to this CSV file")
	runCmd.Flags().StringVar(&stepsParquet, "steps-parquet", "", "Write per-event system state to this Parquet file")

	registerModelFlags(experimentCmd.Flags())
	registerExperimentFlags(experimentCmd.Flags())
	experimentCmd.Flags().IntVar(&iterations, "iterations", experiment.DefaultConfig().Iterations, "Independent runs per experiment")
	experimentCmd.Flags().StringVar(&runsCSV, "out", "", "Write one row per run to this CSV file")

	registerModelFlags(sweepCmd.Flags())
	registerExperimentFlags(sweepCmd.Flags())
	sweepCmd.Flags().IntSliceVar(&sweepIterations, "iterations", []int{10, 100, 1000}, "Comma-separated iteration counts")
	sweepCmd.Flags().StringSliceVar(&sweepTechniques, "techniques", techniqueNames(), "Comma-separated techniques")
	sweepCmd.Flags().StringVar(&sweepCSV, "out", "", "Write one row per experiment to this CSV file")

	rootCmd.AddCommand(runCmd, experimentCmd, sweepCmd)
}
