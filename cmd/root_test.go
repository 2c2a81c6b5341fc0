package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samaypanwar/MH4702-QueueingSystem/sim/experiment"
	"github.com/samaypanwar/MH4702-QueueingSystem/sim/variate"
)

func parseModelFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerModelFlags(fs)
	registerExperimentFlags(fs)
	require.NoError(t, fs.Parse(args))
	t.Cleanup(func() { configPath = "" })
	return fs
}

func TestResolveConfig_DefaultsWithoutFlags(t *testing.T) {
	cfg, err := resolveConfig(parseModelFlags(t))
	require.NoError(t, err)

	def := experiment.DefaultConfig()
	assert.Equal(t, def.Servers, cfg.Servers)
	assert.Equal(t, def.Service, cfg.Service)
	assert.NoError(t, cfg.Validate())
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	// GIVEN a YAML file with seed 5 and 10 servers
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 5\nservers: 10\ntechnique: stratified\n"), 0644))

	// WHEN --servers and --rate are also given
	fs := parseModelFlags(t, "--config", path, "--servers", "3", "--rate", "1.5", "--workers", "2")
	cfg, err := resolveConfig(fs)
	require.NoError(t, err)

	// THEN flags win, and the file fills the rest
	assert.Equal(t, 3, cfg.Servers)
	assert.Equal(t, int64(5), cfg.Seed)
	assert.Equal(t, variate.Stratified, cfg.Technique)
	assert.Equal(t, 1.5, cfg.Interarrival.Params["rate"])
	assert.Equal(t, 2, cfg.Workers)
}

func TestResolveConfig_StopsFlagBuildsBinomial(t *testing.T) {
	cfg, err := resolveConfig(parseModelFlags(t, "--stops", "12"))
	require.NoError(t, err)
	assert.Equal(t, variate.DistSpec{Type: "binomial", Params: map[string]float64{"n": 12}}, cfg.Service)
}

func TestResolveConfig_Errors(t *testing.T) {
	_, err := resolveConfig(parseModelFlags(t, "--technique", "bogus"))
	assert.Error(t, err)

	_, err = resolveConfig(parseModelFlags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestRunSingle_PrintsSummaryAndWritesOutputs(t *testing.T) {
	// GIVEN output paths for every artifact
	dir := t.TempDir()
	customersParquet = filepath.Join(dir, "customers.parquet")
	stepsParquet = filepath.Join(dir, "steps.parquet")
	stepsCSV = filepath.Join(dir, "steps.csv")
	t.Cleanup(func() { customersParquet, stepsParquet, stepsCSV = "", "", "" })

	cfg := experiment.DefaultConfig()
	cfg.Servers = 3
	cfg.ServingLimit = 30

	// WHEN a single run is executed
	var out bytes.Buffer
	require.NoError(t, runSingle(&out, cfg))

	// THEN the summary is printed and every file exists
	assert.Contains(t, out.String(), "=== Simulation Summary ===")
	assert.Contains(t, out.String(), "Completed            : 30")
	for _, path := range []string{customersParquet, stepsParquet, stepsCSV} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestParseTechniques(t *testing.T) {
	got, err := parseTechniques(techniqueNames())
	require.NoError(t, err)
	assert.Equal(t, variate.Techniques, got)

	_, err = parseTechniques([]string{"standard", "nope"})
	assert.Error(t, err)
}

// resetFlags restores every flag of fs to its default and clears Changed.
func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestRootCmd_Run(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--servers", "2", "--serving-limit", "10", "--seed", "9"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags(runCmd.Flags())
		resetFlags(rootCmd.PersistentFlags())
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Completed            : 10")
}

func TestRootCmd_Run_TwiceAfterReset(t *testing.T) {
	// GIVEN a first invocation that sets --servers
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--servers", "2", "--serving-limit", "10"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetFlags(runCmd.Flags())
	})
	require.NoError(t, rootCmd.Execute())
	require.True(t, runCmd.Flags().Changed("servers"))

	// WHEN the flags are reset and the command runs again without --servers
	resetFlags(runCmd.Flags())
	out.Reset()
	rootCmd.SetArgs([]string{"run", "--serving-limit", "5"})
	require.NoError(t, rootCmd.Execute())

	// THEN the earlier override does not leak into the second run
	assert.False(t, runCmd.Flags().Changed("servers"))
	assert.Equal(t, experiment.DefaultConfig().Servers, servers)
	assert.Contains(t, out.String(), "Completed            : 5")
}
