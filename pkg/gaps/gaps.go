// Package gaps detects missing intervals in a timestamp sequence.
package gaps

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/volcwatch/seistream/pkg/series"
)

// Gap describes a single detected gap.
type Gap struct {
	// Index is the position of the first sample after the gap.
	Index int
	// Start is the timestamp of the last sample before the gap.
	Start time.Time
	// Length is the elapsed time between the samples bracketing the gap.
	Length time.Duration
}

// Detector scans a timestamp sequence and flags positions where the
// interval to the previous sample exceeds a threshold.
type Detector struct {
	threshold time.Duration
	strict    bool
	logger    *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithStrict enables validation of timestamp monotonicity on every call.
// Without it, non-monotonic or duplicate timestamps are the caller's
// responsibility and the gap count is undefined.
func WithStrict(strict bool) Option {
	return func(d *Detector) {
		d.strict = strict
	}
}

// WithLogger sets the logger used to report detected gaps.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a Detector with the given gap threshold. The threshold
// must be positive.
func New(threshold time.Duration, opts ...Option) (*Detector, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: gap threshold must be positive, got %s",
			series.ErrInvalidInput, threshold)
	}
	d := &Detector{threshold: threshold}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Threshold returns the configured gap threshold.
func (d *Detector) Threshold() time.Duration {
	return d.threshold
}

// Detect returns the indices of the first sample after each gap, in
// ascending order. An index i is flagged when times[i]-times[i-1]
// exceeds the threshold. Sequences of length 0 or 1 yield no gaps.
func (d *Detector) Detect(times []time.Time) ([]int, error) {
	found, err := d.Report(times)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	indices := make([]int, len(found))
	for i, g := range found {
		indices[i] = g.Index
	}
	return indices, nil
}

// Report returns detailed information about each detected gap.
func (d *Detector) Report(times []time.Time) ([]Gap, error) {
	if d.strict {
		if err := series.ValidateTimes(times); err != nil {
			return nil, err
		}
	}

	var found []Gap
	for i := 1; i < len(times); i++ {
		diff := times[i].Sub(times[i-1])
		if diff > d.threshold {
			found = append(found, Gap{
				Index:  i,
				Start:  times[i-1],
				Length: diff,
			})
		}
	}

	if d.logger != nil {
		d.logger.Debug("gap detection complete",
			"gaps", len(found), "threshold", d.threshold)
		for _, g := range found {
			d.logger.Debug("gap detected",
				"index", g.Index, "start", g.Start, "length", g.Length)
		}
	}
	return found, nil
}
