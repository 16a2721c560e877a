// Package segment partitions a time series into contiguous gap-free runs.
package segment

import (
	"fmt"
	"time"

	"github.com/volcwatch/seistream/pkg/series"
)

// Split partitions a series into maximal contiguous runs using gapIndices
// as cut points. Each index marks the first sample after a gap, so the run
// boundaries are [0,g1), [g1,g2), ..., [gn,end). The partition is lossless:
// segments come back in time order and their concatenation reproduces the
// input sample set exactly. An empty series yields zero segments and no
// error.
//
// Gap indices must be strictly increasing and lie in [1, len-1]; anything
// else is rejected with series.ErrInvalidInput.
func Split(s *series.Series, gapIndices []int) ([]series.Segment, error) {
	if len(s.Times) != len(s.Values) {
		return nil, fmt.Errorf("%w: %d timestamps but %d values",
			series.ErrInvalidInput, len(s.Times), len(s.Values))
	}
	n := s.Len()
	if n == 0 {
		return nil, nil
	}

	prev := 0
	for _, g := range gapIndices {
		if g < 1 || g > n-1 {
			return nil, fmt.Errorf("%w: gap index %d outside [1, %d]",
				series.ErrInvalidInput, g, n-1)
		}
		if g <= prev {
			return nil, fmt.Errorf("%w: gap indices not strictly increasing at %d",
				series.ErrInvalidInput, g)
		}
		prev = g
	}

	segments := make([]series.Segment, 0, len(gapIndices)+1)
	start := 0
	for _, g := range gapIndices {
		segments = append(segments, slice(s, start, g))
		start = g
	}
	segments = append(segments, slice(s, start, n))
	return segments, nil
}

// slice copies the half-open range [start, end) into a new raw segment.
func slice(s *series.Series, start, end int) series.Segment {
	seg := series.Segment{
		Times:  make([]time.Time, end-start),
		Values: make([]float64, end-start),
	}
	copy(seg.Times, s.Times[start:end])
	copy(seg.Values, s.Values[start:end])
	return seg
}
