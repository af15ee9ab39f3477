package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/goshape/internal/emit"
	"github.com/dbsmedya/goshape/internal/sample"
	"github.com/dbsmedya/goshape/internal/schema"
	"github.com/dbsmedya/goshape/internal/stats"
	"github.com/dbsmedya/goshape/internal/truncate"
	"github.com/dbsmedya/goshape/internal/value"
)

// ParallelRun shards records across workers goroutines, each owning a
// partial aggregator and schema builder, and merges the partials in
// worker order once the stream is drained. Records go to workers
// round-robin by index and the reader goroutine runs the preview sampler
// inline, so output is reproducible for a fixed (input, seed, workers)
// triple and the preview matches a sequential run byte for byte.
func ParallelRun(ctx context.Context, next func() (value.Value, error), workers int, opts Options) (*emit.Artifacts, error) {
	if workers <= 1 {
		return Run(next, opts)
	}

	type item struct {
		index  int64
		record value.Value
	}

	aggs := make([]*stats.Aggregator, workers)
	builders := make([]*schema.Builder, workers)
	feeds := make([]chan item, workers)
	for i := 0; i < workers; i++ {
		aggs[i] = stats.New(opts.statsConfig())
		builders[i] = schema.NewBuilder(opts.schemaConfig())
		feeds[i] = make(chan item, 64)
	}

	policy := opts.policy()
	reservoir := sample.NewReservoir(opts.ReservoirSize, opts.Seed, func(v value.Value) value.Value {
		return truncate.Truncate(v, policy)
	})

	g, ctx := errgroup.WithContext(ctx)

	var total int64
	g.Go(func() error {
		defer func() {
			for _, ch := range feeds {
				close(ch)
			}
		}()
		var idx int64
		for {
			v, err := next()
			if errors.Is(err, io.EOF) {
				total = idx
				return nil
			}
			if err != nil {
				total = idx
				return fmt.Errorf("read record %d: %w", idx, err)
			}
			reservoir.Offer(idx, v)
			select {
			case feeds[idx%int64(workers)] <- item{index: idx, record: v}:
			case <-ctx.Done():
				return ctx.Err()
			}
			idx++
		}
	})

	for w := 0; w < workers; w++ {
		agg, builder, feed := aggs[w], builders[w], feeds[w]
		g.Go(func() error {
			for it := range feed {
				ord := 0
				value.Walk(it.record, opts.StatsMaxDepth, func(p value.Path, v value.Value) {
					agg.Observe(p, v, it.index, ord)
					ord++
				})
				builder.Add(it.record)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := 1; i < workers; i++ {
		if err := aggs[0].Merge(aggs[i]); err != nil {
			return nil, fmt.Errorf("merge worker %d stats: %w", i, err)
		}
		builders[0].Merge(builders[i])
	}

	return assemble(aggs[0], builders[0], reservoir, total, opts), nil
}
