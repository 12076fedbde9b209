// Package replay feeds recorded ticks through series stores.
//
// Each stream owns its store, so streams run in parallel without sharing
// state. Within a stream every tick is written channel by channel and then
// advanced, exactly as an evaluation runtime would.
package replay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	defaults "github.com/xtxerr/tickseries/config"
	"github.com/xtxerr/tickseries/internal/aggregate"
	"github.com/xtxerr/tickseries/internal/config"
	"github.com/xtxerr/tickseries/internal/export"
	"github.com/xtxerr/tickseries/internal/logging"
	"github.com/xtxerr/tickseries/internal/series"
)

// Stream is one independent evaluation stream.
type Stream struct {
	Name   string
	Store  config.StoreConfig
	Source Source

	// Output is an optional Parquet file written after the last tick.
	Output string
}

// Hook is called after every committed tick of a stream.
type Hook func(ctx context.Context, stream string, s *series.Store) error

// Options configures a Runner.
type Options struct {
	Parallelism int
	Percentiles bool
	Export      export.Options
	OnTick      Hook
	Logger      *slog.Logger
}

// Result summarizes one replayed stream.
type Result struct {
	Stream       string
	Ticks        int64
	Retained     int
	Summaries    []aggregate.Result // one per channel, ordinal order
	RowsExported int64
	Duration     time.Duration
}

// Runner replays streams.
type Runner struct {
	opts Options
	log  *slog.Logger
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.Parallelism < 1 {
		opts.Parallelism = defaults.DefaultReplayParallelism
	}
	log := opts.Logger
	if log == nil {
		log = logging.Component("replay")
	}
	return &Runner{opts: opts, log: log}
}

// OptionsFromConfig derives runner options from the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Parallelism: cfg.Replay.Parallelism,
		Percentiles: cfg.Replay.Percentiles,
		Export: export.Options{
			Compression: export.ParseCompressionType(cfg.Export.Compression),
			Source:      export.ParseSource(cfg.Export.Source),
		},
	}
}

// StreamsFromConfig loads every configured stream's Parquet input.
func StreamsFromConfig(cfg *config.Config) ([]Stream, error) {
	streams := make([]Stream, 0, len(cfg.Streams))
	for _, sc := range cfg.Streams {
		src, err := LoadParquet(sc.Input)
		if err != nil {
			return nil, fmt.Errorf("stream %s: %w", sc.Name, err)
		}
		streams = append(streams, Stream{
			Name:   sc.Name,
			Store:  cfg.StoreFor(sc),
			Source: src,
			Output: sc.Output,
		})
	}
	return streams, nil
}

// Run replays every stream and returns results in input order.
// The first failing stream cancels the others.
func (r *Runner) Run(ctx context.Context, streams []Stream) ([]Result, error) {
	results := make([]Result, len(streams))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)

	for i := range streams {
		st := streams[i]
		g.Go(func() error {
			res, err := r.RunStream(ctx, st)
			if err != nil {
				return fmt.Errorf("stream %s: %w", st.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunStream replays a single stream on a fresh store.
func (r *Runner) RunStream(ctx context.Context, st Stream) (Result, error) {
	start := time.Now()
	log := r.log.With("stream", st.Name)
	ctx = logging.ContextWithStream(ctx, st.Name)

	store, err := series.NewFromConfig(st.Store, series.WithLogger(log))
	if err != nil {
		return Result{}, err
	}

	for {
		tick, err := st.Source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, err
		}

		for name, v := range tick {
			if err := store.Set(name, v); err != nil {
				return Result{}, fmt.Errorf("tick %d: %w", store.Ticks(), err)
			}
		}
		if err := store.Advance(); err != nil {
			return Result{}, fmt.Errorf("tick %d: %w", store.Ticks(), err)
		}

		if r.opts.OnTick != nil {
			if err := r.opts.OnTick(ctx, st.Name, store); err != nil {
				return Result{}, fmt.Errorf("tick %d hook: %w", store.Ticks()-1, err)
			}
		}
	}

	res := Result{
		Stream:   st.Name,
		Ticks:    store.Ticks(),
		Retained: store.Len(),
	}

	if store.Len() > 0 {
		for _, name := range store.Names() {
			v, err := store.Get(name)
			if err != nil {
				return Result{}, err
			}
			res.Summaries = append(res.Summaries, aggregate.Summarize(name, v.Values(), r.opts.Percentiles))
		}
	}

	if st.Output != "" {
		n, err := export.WriteStore(st.Output, store, r.opts.Export)
		if err != nil {
			return Result{}, fmt.Errorf("export: %w", err)
		}
		res.RowsExported = n
	}

	res.Duration = time.Since(start)
	log.Info("stream replayed", "ticks", res.Ticks, "retained", res.Retained, "exported", res.RowsExported)
	return res, nil
}
