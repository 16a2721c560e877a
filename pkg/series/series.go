// Package series provides the core time series data model shared by the
// gap detection, segmentation and resampling stages.
package series

import (
	"errors"
	"fmt"
	"time"
)

// Standard error variables for input validation failures.
var (
	// ErrInvalidInput indicates malformed input: non-monotonic timestamps,
	// mismatched lengths, or a non-positive threshold/delta.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData indicates a segment with fewer than two samples
	// where an operation requires at least two.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptyInput indicates a zero-length series where one is required.
	ErrEmptyInput = errors.New("empty input")
)

// Series is an ordered sequence of (timestamp, value) pairs. Timestamps
// must be strictly increasing. A Series is owned by the caller; pipeline
// components never mutate it in place and always return new slices.
type Series struct {
	// Times holds the sample timestamps in ascending order.
	Times []time.Time
	// Values holds the sample values, one per timestamp.
	Values []float64
	// Channel identifies the data source, e.g. "NPT$HWZ$HV".
	Channel string
}

// New creates a series from parallel timestamp and value slices.
// The slices must have equal length.
func New(times []time.Time, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps but %d values",
			ErrInvalidInput, len(times), len(values))
	}
	return &Series{Times: times, Values: values}, nil
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Validate checks that timestamps and values have equal length and that
// timestamps are strictly increasing.
func (s *Series) Validate() error {
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("%w: %d timestamps but %d values",
			ErrInvalidInput, len(s.Times), len(s.Values))
	}
	return ValidateTimes(s.Times)
}

// ValidateTimes checks that timestamps are strictly increasing.
func ValidateTimes(times []time.Time) error {
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d",
				ErrInvalidInput, i)
		}
	}
	return nil
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	times := make([]time.Time, len(s.Times))
	copy(times, s.Times)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{Times: times, Values: values, Channel: s.Channel}
}

// Segment is a maximal contiguous run of samples with no internal gap
// above the detection threshold. A resampled segment additionally carries
// its uniform sample interval and interpolation method; raw segments have
// a zero Delta and an empty Method. Segments are immutable once produced.
type Segment struct {
	Times  []time.Time
	Values []float64

	// Delta is the uniform sample interval. Zero for raw segments.
	Delta time.Duration
	// Method names the interpolation used to build the segment, e.g.
	// "linear". Empty for raw segments.
	Method string
}

// Len returns the number of samples in the segment.
func (g Segment) Len() int {
	return len(g.Values)
}

// Start returns the timestamp of the first sample.
func (g Segment) Start() time.Time {
	if len(g.Times) == 0 {
		return time.Time{}
	}
	return g.Times[0]
}

// End returns the timestamp of the last sample.
func (g Segment) End() time.Time {
	if len(g.Times) == 0 {
		return time.Time{}
	}
	return g.Times[len(g.Times)-1]
}

// Span returns the elapsed time covered by the segment.
func (g Segment) Span() time.Duration {
	if len(g.Times) < 2 {
		return 0
	}
	return g.End().Sub(g.Start())
}

// Resampled reports whether the segment lies on a uniform grid produced
// by the resampler.
func (g Segment) Resampled() bool {
	return g.Delta > 0
}
