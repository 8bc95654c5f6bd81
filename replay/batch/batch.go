// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package batch iterates many replays concurrently.
package batch

import (
	"context"
	"io"
	"time"

	"github.com/danjacques/gosc2replay/replay"
	"github.com/danjacques/gosc2replay/replay/archive"
	"github.com/danjacques/gosc2replay/support/logging"

	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/danjacques/gosc2replay/replay/batch"

// cancelCheckInterval is the number of events between context checks.
const cancelCheckInterval = 1024

// Config configures a batch run.
type Config struct {
	// Parallelism is the maximum number of replays processed at once. If
	// less than 1, replays are processed one at a time.
	Parallelism int

	// Options are applied to each replay's Iterator. Options.Logger is
	// replaced by Logger, prefixed with the replay's path.
	Options replay.Options

	// Open opens a replay at a path. If nil, paths are opened as bundles
	// with archive.OpenBundle.
	Open func(path string) (replay.Source, error)

	// Visit, if not nil, is called with every yielded event. It is called
	// concurrently for different replays. If it returns an error, that
	// replay stops and the error is recorded in its Result.
	Visit func(path string, item *replay.Item) error

	// Tracer, if not nil, records a span per replay. If nil, the global
	// OpenTelemetry tracer provider is used.
	Tracer trace.Tracer

	// Logger, if not nil, receives diagnostics.
	Logger logging.L
}

// Result is the outcome of one replay.
type Result struct {
	// Path is the path that the replay was opened from.
	Path string
	// Name is the replay's name.
	Name string
	// Build is the replay's protocol build.
	Build int64

	// Stats are the iterator's final counts.
	Stats replay.Stats
	// Units is the number of units alive at the end of the replay.
	Units int

	// StreamErrors are the errors that ended streams early.
	StreamErrors []error
	// Err is the error that stopped the replay, if any.
	Err error

	// Elapsed is the time spent on the replay.
	Elapsed time.Duration
}

// Failed returns true if the replay could not be iterated to completion.
func (r *Result) Failed() bool { return r.Err != nil }

// Partial returns true if the replay was iterated, but a stream ended early.
func (r *Result) Partial() bool { return r.Err == nil && len(r.StreamErrors) > 0 }

func (r *Result) outcome() string {
	switch {
	case r.Failed():
		return "failed"
	case r.Partial():
		return "partial"
	default:
		return "ok"
	}
}

func openBundle(path string) (replay.Source, error) { return archive.OpenBundle(path) }

// Run processes paths, and returns a Result for each in the same order.
//
// A replay that fails does not stop the others. If ctx is cancelled,
// replays that have not finished are given ctx's error.
func (cfg *Config) Run(ctx context.Context, paths []string) []*Result {
	parallelism := cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]*Result, len(paths))
	swg := sizedwaitgroup.New(parallelism)
	for i, path := range paths {
		if err := swg.AddWithContext(ctx); err != nil {
			for j := i; j < len(paths); j++ {
				results[j] = &Result{Path: paths[j], Err: err}
				batchReplays.WithLabelValues("failed").Inc()
			}
			break
		}

		go func(i int, path string) {
			defer swg.Done()
			results[i] = cfg.process(ctx, path)
		}(i, path)
	}
	swg.Wait()
	return results
}

func (cfg *Config) tracer() trace.Tracer {
	if cfg.Tracer != nil {
		return cfg.Tracer
	}
	return otel.Tracer(tracerName)
}

func (cfg *Config) process(ctx context.Context, path string) *Result {
	logger := logging.Must(cfg.Logger)
	ctx, span := cfg.tracer().Start(ctx, "replay", trace.WithAttributes(attribute.String("replay.path", path)))
	defer span.End()

	start := time.Now()
	res := Result{Path: path, Name: path}
	res.Err = cfg.iterate(ctx, &res)
	res.Elapsed = time.Since(start)

	span.SetAttributes(
		attribute.String("replay.name", res.Name),
		attribute.Int64("replay.build", res.Build),
		attribute.Int("replay.events", res.Stats.Emitted),
		attribute.Int("replay.skipped", res.Stats.TrackerSkipped+res.Stats.GameSkipped),
	)
	for _, err := range res.StreamErrors {
		span.RecordError(err)
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		logger.Warnf("Replay %q failed: %s", path, res.Err)
	}

	batchReplays.WithLabelValues(res.outcome()).Inc()
	batchDuration.Observe(res.Elapsed.Seconds())
	return &res
}

func (cfg *Config) iterate(ctx context.Context, res *Result) error {
	open := cfg.Open
	if open == nil {
		open = openBundle
	}

	src, err := open(res.Path)
	if err != nil {
		return &replay.FatalError{Name: res.Path, Err: errors.Wrap(err, "opening replay")}
	}
	res.Name = src.Name()

	opts := cfg.Options
	opts.Logger = logging.Prefix(cfg.Logger, "["+res.Path+"] ")
	it, err := replay.NewIterator(src, opts)
	if err != nil {
		return err
	}
	st := it.State()
	res.Build = st.Build

	defer func() {
		res.Stats = it.Stats()
		res.Units = st.UnitCount()
		res.StreamErrors = it.StreamErrors()
	}()

	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		item, err := it.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if cfg.Visit != nil {
			if err := cfg.Visit(res.Path, item); err != nil {
				return errors.Wrap(err, "visiting event")
			}
		}
	}
}

// Summary totals a set of Results.
type Summary struct {
	Replays int
	Failed  int
	Partial int

	Events   int
	Skipped  int
	Filtered int

	// GameLoops is the sum of each replay's final normalized loop.
	GameLoops int64
}

// Summarize totals results.
func Summarize(results []*Result) Summary {
	var s Summary
	for _, r := range results {
		s.Replays++
		switch {
		case r.Failed():
			s.Failed++
		case r.Partial():
			s.Partial++
		}
		s.Events += r.Stats.Emitted
		s.Skipped += r.Stats.TrackerSkipped + r.Stats.GameSkipped
		s.Filtered += r.Stats.Filtered
		s.GameLoops += int64(r.Stats.LastLoop)
	}
	return s
}
