package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every changed flag to its default so executions do
// not leak state into each other.
func resetFlags(t *testing.T) {
	t.Helper()
	sets := []*pflag.FlagSet{
		rootCmd.PersistentFlags(),
		analyzeCmd.Flags(),
		validateCmd.Flags(),
	}
	for _, fs := range sets {
		fs.Visit(func(f *pflag.Flag) {
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		})
	}
}

// runCLI executes the root command with args and returns the combined
// out/err stream.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer resetFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecute(t *testing.T) {
	// Execute() calls os.Exit(1) on error, so the error path cannot run
	// inside a test. This is primarily a compile-time check.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsVariables(t *testing.T) {
	// cfgFile defaults to "goshape.yaml" via init()
	assert.Equal(t, "goshape.yaml", cfgFile, "cfgFile should default to goshape.yaml")
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)

	assert.False(t, analyzeArray)
	assert.False(t, analyzeNoArray)
	assert.Equal(t, 1, analyzeWorkers)
	assert.Equal(t, "json", analyzeFormat)
	assert.False(t, analyzePretty)
	assert.Equal(t, "", analyzeDSN)
	assert.Equal(t, "", analyzeQuery)
	assert.Equal(t, "", analyzeTable)
}

func TestEngineFlagDefaultsMirrorConfig(t *testing.T) {
	// Engine flag defaults come from DefaultConfig, so help output shows
	// the effective values.
	assert.Equal(t, int64(0), engSeed)
	assert.Equal(t, 5, engReservoir)
	assert.Equal(t, 5, engExamples)
	assert.Equal(t, 24, engMaxString)
	assert.Equal(t, 3, engMaxDepth)
	assert.Equal(t, 0, engStatsMax)
	assert.Equal(t, 64, engCardSmall)
	assert.Equal(t, 16, engEnumMax)
	assert.Equal(t, 0.95, engFormat)
	assert.Equal(t, "first=1,mid=1,last=1", engPattern)
	assert.Equal(t, 0.98, engBinary)
}
