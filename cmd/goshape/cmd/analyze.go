package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goshape/internal/config"
	"github.com/dbsmedya/goshape/internal/emit"
	"github.com/dbsmedya/goshape/internal/engine"
	"github.com/dbsmedya/goshape/internal/logger"
	"github.com/dbsmedya/goshape/internal/render"
	"github.com/dbsmedya/goshape/internal/source"
	"github.com/dbsmedya/goshape/internal/value"
)

var (
	analyzeArray   bool
	analyzeNoArray bool
	analyzeWorkers int
	analyzeFormat  string
	analyzePretty  bool
	analyzeDSN     string
	analyzeQuery   string
	analyzeTable   string
	outProfile     string
	outPreview     string
	outSchema      string
)

// Engine knob mirrors; only flags the user changed are copied onto the
// config, because zero is a valid setting for several of them.
var (
	engSeed      int64
	engReservoir int
	engExamples  int
	engMaxString int
	engMaxDepth  int
	engStatsMax  int
	engCardSmall int
	engEnumMax   int
	engFormat    float64
	engPattern   string
	engBinary    float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Profile a record stream and emit its shape artifacts",
	Long: `Analyze reads records from a file, stdin or a MySQL query and writes
three artifacts to stdout as one JSON document: a per-field statistical
profile, an inferred JSON schema and a uniform preview sample.

The pass is single-scan with bounded memory. Distinct counts downgrade to
a HyperLogLog sketch past a threshold, preview records are sampled with a
seeded reservoir and nested values are truncated by depth, string length
and an array sample pattern.

Example:
  goshape analyze events.ndjson
  cat events.ndjson | goshape analyze --format text
  goshape analyze --dsn 'user:pass@tcp(db:3306)/app?parseTime=true' --query 'SELECT * FROM events'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	dc := config.DefaultConfig()

	analyzeCmd.Flags().BoolVar(&analyzeArray, "array", false,
		"Require the input to be one JSON array of records")
	analyzeCmd.Flags().BoolVar(&analyzeNoArray, "no-array", false,
		"Never explode a top-level array into records")
	analyzeCmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 1,
		"Worker count for the sharded pass")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json",
		"Output format (json, text)")
	analyzeCmd.Flags().BoolVar(&analyzePretty, "pretty", false,
		"Indent the JSON output")
	analyzeCmd.Flags().StringVar(&analyzeDSN, "dsn", "",
		"MySQL DSN; reads records from --query instead of a file")
	analyzeCmd.Flags().StringVar(&analyzeQuery, "query", "",
		"SQL query providing the records (needs --dsn or a configured source)")
	analyzeCmd.Flags().StringVar(&analyzeTable, "table", "",
		"Table to scan instead of writing a query")
	analyzeCmd.Flags().StringVar(&outProfile, "out-profile", "",
		"Write the profile artifact to this file")
	analyzeCmd.Flags().StringVar(&outPreview, "out-preview", "",
		"Write the preview artifact to this file")
	analyzeCmd.Flags().StringVar(&outSchema, "out-schema", "",
		"Write the schema artifact to this file")

	analyzeCmd.Flags().Int64Var(&engSeed, "seed", dc.Engine.Seed,
		"Sampling seed")
	analyzeCmd.Flags().IntVar(&engReservoir, "reservoir-size", dc.Engine.ReservoirSize,
		"Preview sample size")
	analyzeCmd.Flags().IntVar(&engExamples, "example-count", dc.Engine.ExampleCount,
		"Example values kept per field")
	analyzeCmd.Flags().IntVar(&engMaxString, "max-string-chars", dc.Engine.MaxStringChars,
		"Character cap for example and preview strings")
	analyzeCmd.Flags().IntVar(&engMaxDepth, "max-depth", dc.Engine.MaxDepth,
		"Depth cap for preview records (0 = unlimited)")
	analyzeCmd.Flags().IntVar(&engStatsMax, "stats-max-depth", dc.Engine.StatsMaxDepth,
		"Depth cap for the stats walk (0 = unlimited)")
	analyzeCmd.Flags().IntVar(&engCardSmall, "cardinality-small-threshold", dc.Engine.CardinalitySmallThreshold,
		"Distinct values counted exactly before sketching")
	analyzeCmd.Flags().IntVar(&engEnumMax, "enum-max-cardinality", dc.Engine.EnumMaxCardinality,
		"Most distinct strings kept as a schema enum")
	analyzeCmd.Flags().Float64Var(&engFormat, "format-confidence-threshold", dc.Engine.FormatConfidenceThreshold,
		"Share of example strings a format must match")
	analyzeCmd.Flags().StringVar(&engPattern, "array-sample-pattern", dc.Engine.ArraySamplePattern,
		"Preview array sampling (first=N,mid=N,last=N)")
	analyzeCmd.Flags().Float64Var(&engBinary, "binary-threshold", dc.Engine.BinaryThreshold,
		"Printable share below which strings count as binary")

	analyzeCmd.MarkFlagsMutuallyExclusive("array", "no-array")
	analyzeCmd.MarkFlagsMutuallyExclusive("query", "table")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := loadAnalyzeConfig(cmd)
	if err != nil {
		return err
	}

	// Apply CLI overrides
	cfg.ApplyOverrides(logLevel, logFormat)
	applyEngineFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if analyzeFormat != "json" && analyzeFormat != "text" {
		return fmt.Errorf("unknown output format %q (want json or text)", analyzeFormat)
	}

	opts, err := engineOptions(&cfg.Engine)
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			log.Warn("Received shutdown signal - stopping analysis...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Open the record source
	src, closeSource, name, err := openSource(ctx, cmd, cfg, args, log)
	if err != nil {
		return err
	}
	defer closeSource()

	log.Infow("Starting shape analysis",
		"source", name,
		"workers", analyzeWorkers,
	)

	// The sequential pass has no context of its own; stop it between
	// records once the context dies.
	next := func() (value.Value, error) {
		if err := ctx.Err(); err != nil {
			return value.Value{}, err
		}
		return src.Next()
	}

	arts, err := engine.ParallelRun(ctx, next, analyzeWorkers, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Analysis cancelled by user")
			return nil
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if r, ok := src.(*source.Reader); ok && r.Skipped() > 0 {
		log.Warnw("Input contained undecodable lines",
			"source", name,
			"skipped", r.Skipped(),
		)
	}

	log.Infow("Analysis complete",
		"source", name,
		"records", arts.Profile.RecordCount,
		"fields", len(arts.Profile.Fields),
	)

	// Write single-artifact files before the combined document
	if err := writeArtifactFiles(arts); err != nil {
		return err
	}

	if analyzeFormat == "text" {
		return render.NewText(cmd.OutOrStdout(), true).Render(arts)
	}

	data, err := encodeDoc(arts)
	if err != nil {
		return fmt.Errorf("failed to encode artifacts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// loadAnalyzeConfig reads the config file. The default path may be absent
// so the tool runs without setup; an explicitly passed --config must exist.
func loadAnalyzeConfig(cmd *cobra.Command) (*config.Config, error) {
	path := GetConfigFile()
	if _, err := os.Stat(path); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func applyEngineFlags(cmd *cobra.Command, cfg *config.Config) {
	overrides := []struct {
		name  string
		apply func()
	}{
		{"seed", func() { cfg.Engine.Seed = engSeed }},
		{"reservoir-size", func() { cfg.Engine.ReservoirSize = engReservoir }},
		{"example-count", func() { cfg.Engine.ExampleCount = engExamples }},
		{"max-string-chars", func() { cfg.Engine.MaxStringChars = engMaxString }},
		{"max-depth", func() { cfg.Engine.MaxDepth = engMaxDepth }},
		{"stats-max-depth", func() { cfg.Engine.StatsMaxDepth = engStatsMax }},
		{"cardinality-small-threshold", func() { cfg.Engine.CardinalitySmallThreshold = engCardSmall }},
		{"enum-max-cardinality", func() { cfg.Engine.EnumMaxCardinality = engEnumMax }},
		{"format-confidence-threshold", func() { cfg.Engine.FormatConfidenceThreshold = engFormat }},
		{"array-sample-pattern", func() { cfg.Engine.ArraySamplePattern = engPattern }},
		{"binary-threshold", func() { cfg.Engine.BinaryThreshold = engBinary }},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.name) {
			o.apply()
		}
	}
}

// engineOptions converts the validated engine config into engine options.
func engineOptions(ec *config.EngineConfig) (engine.Options, error) {
	pattern, err := ec.SamplePattern()
	if err != nil {
		return engine.Options{}, fmt.Errorf("invalid array sample pattern: %w", err)
	}
	return engine.Options{
		Seed:                 ec.Seed,
		ReservoirSize:        ec.ReservoirSize,
		ExampleCount:         ec.ExampleCount,
		MaxStringChars:       ec.MaxStringChars,
		MaxDepth:             ec.MaxDepth,
		StatsMaxDepth:        ec.StatsMaxDepth,
		CardinalityThreshold: ec.CardinalitySmallThreshold,
		EnumMaxCardinality:   ec.EnumMaxCardinality,
		FormatThreshold:      ec.FormatConfidenceThreshold,
		ArrayPattern:         pattern,
		BinaryThreshold:      ec.BinaryThreshold,
	}, nil
}

type recordSource interface {
	Next() (value.Value, error)
}

// openSource picks the record source. A DSN flag or a configured source
// host selects MySQL; otherwise records come from the file argument or
// stdin.
func openSource(ctx context.Context, cmd *cobra.Command, cfg *config.Config, args []string, log *logger.Logger) (recordSource, func() error, string, error) {
	if analyzeDSN != "" || cfg.Source.Configured() {
		dsn := analyzeDSN
		if dsn == "" {
			dsn = source.BuildDSN(&cfg.Source)
		}
		query, table := analyzeQuery, analyzeTable
		if query == "" && table == "" {
			query, table = cfg.Source.Query, cfg.Source.Table
		}
		q, err := source.BuildQuery(query, table)
		if err != nil {
			return nil, nil, "", err
		}
		db, err := source.OpenMySQL(ctx, dsn, q)
		if err != nil {
			return nil, nil, "", fmt.Errorf("failed to open source database: %w", err)
		}
		return db, db.Close, "mysql", nil
	}
	if analyzeQuery != "" || analyzeTable != "" {
		return nil, nil, "", fmt.Errorf("--query and --table need --dsn or a configured source host")
	}

	in, name, closeFn, err := openInput(cmd, args)
	if err != nil {
		return nil, nil, "", err
	}
	r, err := source.NewReader(in, name, arrayMode(), log)
	if err != nil {
		closeFn()
		return nil, nil, "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return r, closeFn, name, nil
}

func openInput(cmd *cobra.Command, args []string) (io.Reader, string, func() error, error) {
	if len(args) == 0 || args[0] == "-" {
		return cmd.InOrStdin(), "stdin", func() error { return nil }, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, args[0], f.Close, nil
}

func arrayMode() source.ArrayMode {
	switch {
	case analyzeArray:
		return source.ArrayAlways
	case analyzeNoArray:
		return source.ArrayNever
	default:
		return source.ArrayAuto
	}
}

// writeArtifactFiles writes the single-artifact files requested by flags.
func writeArtifactFiles(arts *emit.Artifacts) error {
	files := []struct {
		path string
		doc  any
	}{
		{outProfile, arts.Profile},
		{outPreview, arts.Preview},
		{outSchema, arts.Schema},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		data, err := encodeDoc(f.doc)
		if err != nil {
			return fmt.Errorf("failed to encode artifact: %w", err)
		}
		if err := os.WriteFile(f.path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}
	}
	return nil
}

func encodeDoc(doc any) ([]byte, error) {
	if analyzePretty {
		return emit.EncodePretty(doc)
	}
	return emit.Encode(doc)
}
