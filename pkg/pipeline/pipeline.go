// Package pipeline orchestrates gap detection, segmentation and optional
// resampling of a time series.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/volcwatch/seistream/pkg/gaps"
	"github.com/volcwatch/seistream/pkg/resample"
	"github.com/volcwatch/seistream/pkg/segment"
	"github.com/volcwatch/seistream/pkg/series"
)

// Config holds the full configuration surface of the pipeline.
type Config struct {
	// GapThreshold is the interval above which two consecutive samples
	// are considered separated by a gap. Must be positive.
	GapThreshold time.Duration
	// Resample projects each segment onto a uniform grid when true.
	Resample bool
	// Delta is the target sample interval. Required when Resample is set.
	Delta time.Duration
	// Method selects the interpolation method. Defaults to linear.
	Method resample.Method
	// Strict validates timestamp monotonicity before processing.
	Strict bool
}

// DefaultConfig returns a configuration matching the library's historical
// defaults: two-minute gap threshold, one-minute resample interval.
func DefaultConfig() Config {
	return Config{
		GapThreshold: 2 * time.Minute,
		Resample:     true,
		Delta:        time.Minute,
		Method:       resample.Linear,
	}
}

// Assembler runs the detect -> split -> resample pipeline. Each call is an
// independent, side-effect-free computation, so a single Assembler may be
// used from multiple goroutines.
type Assembler struct {
	cfg       Config
	detector  *gaps.Detector
	resampler *resample.Resampler
	logger    *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used to report pipeline activity.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// New creates an Assembler, validating the configuration up front.
func New(cfg Config, opts ...Option) (*Assembler, error) {
	a := &Assembler{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}

	var detOpts []gaps.Option
	if cfg.Strict {
		detOpts = append(detOpts, gaps.WithStrict(true))
	}
	if a.logger != nil {
		detOpts = append(detOpts, gaps.WithLogger(a.logger))
	}
	detector, err := gaps.New(cfg.GapThreshold, detOpts...)
	if err != nil {
		return nil, err
	}
	a.detector = detector

	if cfg.Resample {
		var resOpts []resample.Option
		if cfg.Method != "" {
			resOpts = append(resOpts, resample.WithMethod(cfg.Method))
		}
		resampler, err := resample.New(cfg.Delta, resOpts...)
		if err != nil {
			return nil, err
		}
		a.resampler = resampler
	}
	return a, nil
}

// Process runs the pipeline over one series and returns its segments in
// time order. Errors from any stage propagate unchanged; there is no
// retry or silent recovery.
func (a *Assembler) Process(s *series.Series) ([]series.Segment, error) {
	if a.cfg.Strict {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	gapIndices, err := a.detector.Detect(s.Times)
	if err != nil {
		return nil, err
	}

	segments, err := segment.Split(s, gapIndices)
	if err != nil {
		return nil, err
	}
	if a.logger != nil {
		a.logger.Info("series segmented",
			"channel", s.Channel, "samples", s.Len(),
			"gaps", len(gapIndices), "segments", len(segments))
	}
	if a.resampler == nil {
		return segments, nil
	}

	resampled := make([]series.Segment, len(segments))
	for i, seg := range segments {
		out, err := a.resampler.Resample(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d starting %s: %w",
				i, seg.Start().Format(time.RFC3339), err)
		}
		resampled[i] = out
	}
	if a.logger != nil {
		a.logger.Info("segments resampled",
			"channel", s.Channel, "delta", a.cfg.Delta, "segments", len(resampled))
	}
	return resampled, nil
}

// ProcessAll runs the pipeline over many independent series using a
// bounded worker pool. Results are positionally aligned with the input.
// The first error cancels outstanding work.
func (a *Assembler) ProcessAll(ctx context.Context, in []*series.Series, workers int) ([][]series.Segment, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([][]series.Segment, len(in))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range in {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			segments, err := a.Process(s)
			if err != nil {
				return fmt.Errorf("series %d (%s): %w", i, s.Channel, err)
			}
			out[i] = segments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
