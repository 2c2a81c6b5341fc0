package experiment

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim/variate"
)

// Config describes a Monte Carlo experiment over independent simulation runs.
// All fields must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Seed         int64             `yaml:"seed"`
	Iterations   int               `yaml:"iterations"`
	Workers      int               `yaml:"workers"`
	Technique    variate.Technique `yaml:"technique"`
	Strata       int               `yaml:"strata"`
	Servers      int               `yaml:"servers"`
	Samples      int               `yaml:"samples"`       // gaps and durations drawn per run; defaults to serving_limit
	ServingLimit int               `yaml:"serving_limit"` // 0 = unbounded
	TimeLimit    float64           `yaml:"time_limit"`    // 0 = unbounded
	Interarrival variate.DistSpec  `yaml:"interarrival"`
	Service      variate.DistSpec  `yaml:"service"`
	Balking      *BalkingSpec      `yaml:"balking,omitempty"`
}

// BalkingSpec enables exponential-density balking.
type BalkingSpec struct {
	Loc   float64 `yaml:"loc"`
	Scale float64 `yaml:"scale"`
}

// DefaultConfig returns the bus-stop model: 38 seats, Poisson arrivals at
// rate 3 and rides of Binomial(25, 0.5)+1 stops.
func DefaultConfig() Config {
	return Config{
		Seed:         42,
		Iterations:   10,
		Workers:      runtime.NumCPU(),
		Technique:    variate.Standard,
		Strata:       10,
		Servers:      38,
		ServingLimit: 1000,
		Interarrival: variate.DistSpec{Type: "exponential", Params: map[string]float64{"rate": 3}},
		Service:      variate.DistSpec{Type: "binomial", Params: map[string]float64{"n": 25}},
	}
}

// LoadConfig reads a YAML experiment file on top of DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading experiment config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing experiment config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can drive an experiment.
func (c *Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.Servers <= 0 {
		return fmt.Errorf("servers must be positive, got %d", c.Servers)
	}
	if _, err := variate.ParseTechnique(string(c.Technique)); err != nil {
		return err
	}
	if c.Technique == variate.Stratified && c.Strata <= 0 {
		return fmt.Errorf("strata must be positive for stratified sampling, got %d", c.Strata)
	}
	if c.ServingLimit < 0 {
		return fmt.Errorf("serving_limit must be non-negative, got %d", c.ServingLimit)
	}
	if c.TimeLimit < 0 || math.IsNaN(c.TimeLimit) {
		return fmt.Errorf("time_limit must be non-negative, got %f", c.TimeLimit)
	}
	if c.Samples < 0 {
		return fmt.Errorf("samples must be non-negative, got %d", c.Samples)
	}
	if c.sampleSize() == 0 {
		if c.TimeLimit == 0 {
			return fmt.Errorf("one of samples, serving_limit or time_limit must bound a run")
		}
		if c.Technique == variate.Stratified {
			return fmt.Errorf("stratified sampling needs samples or serving_limit")
		}
	}
	if _, err := variate.NewDistribution(c.Interarrival); err != nil {
		return fmt.Errorf("interarrival: %w", err)
	}
	if _, err := variate.NewDistribution(c.Service); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if c.Balking != nil && c.Balking.Scale < 0 {
		return fmt.Errorf("balking scale must be non-negative, got %f", c.Balking.Scale)
	}
	return nil
}

// sampleSize is the number of gaps and durations drawn for each run.
// Zero means both are streamed until the time limit stops the run.
func (c *Config) sampleSize() int {
	if c.Samples > 0 {
		return c.Samples
	}
	return c.ServingLimit
}

func (c *Config) workers() int {
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}
