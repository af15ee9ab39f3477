// Package engine wires the shape pipeline together: each record is walked
// once and fanned out to the statistics aggregator, the schema builder and
// the preview sampler, and finalize assembles the three artifacts. An
// Engine owns all of its state including the sampler PRNG; two engines
// never share anything.
package engine

import (
	"errors"
	"io"

	"github.com/dbsmedya/goshape/internal/emit"
	"github.com/dbsmedya/goshape/internal/sample"
	"github.com/dbsmedya/goshape/internal/schema"
	"github.com/dbsmedya/goshape/internal/stats"
	"github.com/dbsmedya/goshape/internal/truncate"
	"github.com/dbsmedya/goshape/internal/value"
)

// Options is the full engine configuration, supplied by the caller.
type Options struct {
	Seed                 int64
	ReservoirSize        int
	ExampleCount         int
	MaxStringChars       int
	MaxDepth             int
	StatsMaxDepth        int
	CardinalityThreshold int
	EnumMaxCardinality   int
	FormatThreshold      float64
	ArrayPattern         truncate.SamplePattern
	BinaryThreshold      float64
}

// DefaultOptions returns the stock engine configuration.
func DefaultOptions() Options {
	return Options{
		Seed:                 0,
		ReservoirSize:        5,
		ExampleCount:         5,
		MaxStringChars:       24,
		MaxDepth:             3,
		StatsMaxDepth:        0,
		CardinalityThreshold: 64,
		EnumMaxCardinality:   16,
		FormatThreshold:      0.95,
		ArrayPattern:         truncate.SamplePattern{First: 1, Mid: 1, Last: 1},
		BinaryThreshold:      0.98,
	}
}

func (o Options) policy() truncate.Policy {
	return truncate.Policy{
		MaxStringChars:  o.MaxStringChars,
		Pattern:         o.ArrayPattern,
		MaxDepth:        o.MaxDepth,
		BinaryThreshold: o.BinaryThreshold,
	}
}

func (o Options) statsConfig() stats.Config {
	return stats.Config{
		Seed:              o.Seed,
		ExampleCap:        o.ExampleCount,
		DistinctThreshold: o.CardinalityThreshold,
	}
}

func (o Options) schemaConfig() schema.Config {
	return schema.Config{
		EnumLimit:       o.EnumMaxCardinality,
		MaxDepth:        o.StatsMaxDepth,
		FormatThreshold: o.FormatThreshold,
	}
}

// Engine is a single-stream shape engine. Methods are not safe for
// concurrent use; the parallel driver builds one partial state per worker
// instead of sharing an Engine.
type Engine struct {
	opts      Options
	agg       *stats.Aggregator
	builder   *schema.Builder
	reservoir *sample.Reservoir
	records   int64
}

// New returns an engine ready to observe records.
func New(opts Options) *Engine {
	policy := opts.policy()
	return &Engine{
		opts:    opts,
		agg:     stats.New(opts.statsConfig()),
		builder: schema.NewBuilder(opts.schemaConfig()),
		reservoir: sample.NewReservoir(opts.ReservoirSize, opts.Seed, func(v value.Value) value.Value {
			return truncate.Truncate(v, policy)
		}),
	}
}

// Observe ingests the next record in stream order.
func (e *Engine) Observe(record value.Value) {
	idx := e.records
	e.records++

	ord := 0
	value.Walk(record, e.opts.StatsMaxDepth, func(p value.Path, v value.Value) {
		e.agg.Observe(p, v, idx, ord)
		ord++
	})
	e.builder.Add(record)
	e.reservoir.Offer(idx, record)
}

// Records returns how many records have been observed.
func (e *Engine) Records() int64 { return e.records }

// Finalize assembles the three artifacts. It is valid after any prefix of
// the stream, including an empty one; the engine must not observe further
// records afterwards.
func (e *Engine) Finalize() *emit.Artifacts {
	return assemble(e.agg, e.builder, e.reservoir, e.records, e.opts)
}

func assemble(agg *stats.Aggregator, builder *schema.Builder, reservoir *sample.Reservoir, records int64, opts Options) *emit.Artifacts {
	fields := agg.Finalize()

	examples := make(map[value.Path][]string, len(fields))
	for p, fs := range fields {
		if s := fs.StringExamples(); len(s) > 0 {
			examples[p] = s
		}
	}
	root := builder.Finalize(examples)

	return &emit.Artifacts{
		Preview: emit.BuildPreview(reservoir.Snapshot()),
		Profile: emit.BuildProfile(fields, records, opts.MaxStringChars),
		Schema:  emit.BuildSchema(root),
	}
}

// Run drives a sequential pass over the record source. next returns
// io.EOF when the stream ends.
func Run(next func() (value.Value, error), opts Options) (*emit.Artifacts, error) {
	e := New(opts)
	for {
		v, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		e.Observe(v)
	}
	return e.Finalize(), nil
}
