// Package resample projects a contiguous segment onto a uniform time grid.
package resample

import (
	"fmt"
	"time"

	"github.com/volcwatch/seistream/pkg/series"
)

// Method selects how grid values are derived from the original samples.
type Method string

const (
	// Linear interpolates proportionally between the bracketing samples.
	Linear Method = "linear"
	// Nearest takes the value of the closest original sample.
	Nearest Method = "nearest"
)

// coincidenceTolerance is the maximum distance at which a grid point is
// considered to coincide with an original sample and takes its exact
// value. Valve timestamps round-trip through float seconds, so exact
// nanosecond equality is too strict.
const coincidenceTolerance = time.Microsecond

// Resampler produces uniformly spaced segments by interpolation.
type Resampler struct {
	delta  time.Duration
	method Method
}

// Option configures a Resampler.
type Option func(*Resampler)

// WithMethod selects the interpolation method. The default is Linear.
func WithMethod(m Method) Option {
	return func(r *Resampler) {
		r.method = m
	}
}

// New creates a Resampler with the given target sample interval. The
// interval must be positive.
func New(delta time.Duration, opts ...Option) (*Resampler, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: sample interval must be positive, got %s",
			series.ErrInvalidInput, delta)
	}
	r := &Resampler{delta: delta, method: Linear}
	for _, opt := range opts {
		opt(r)
	}
	switch r.method {
	case Linear, Nearest:
	default:
		return nil, fmt.Errorf("%w: unknown interpolation method %q",
			series.ErrInvalidInput, r.method)
	}
	return r, nil
}

// Delta returns the configured sample interval.
func (r *Resampler) Delta() time.Duration {
	return r.delta
}

// Resample projects a segment onto a uniform grid that starts at the
// segment's first timestamp and steps by the configured interval. The
// grid never extends past the last original sample: its final point is
// the largest first+k*delta not exceeding the segment end. Grid values
// are interpolated from the bracketing originals; a grid point that
// coincides with an original sample takes that sample's exact value.
//
// Segments with fewer than two samples cannot define a slope and are
// rejected with series.ErrInsufficientData.
func (r *Resampler) Resample(seg series.Segment) (series.Segment, error) {
	if seg.Len() < 2 {
		return series.Segment{}, fmt.Errorf(
			"%w: resampling needs at least 2 samples, got %d",
			series.ErrInsufficientData, seg.Len())
	}
	if err := series.ValidateTimes(seg.Times); err != nil {
		return series.Segment{}, err
	}

	anchor := seg.Times[0]
	span := seg.Times[len(seg.Times)-1].Sub(anchor)
	npts := int(span/r.delta) + 1

	out := series.Segment{
		Times:  make([]time.Time, npts),
		Values: make([]float64, npts),
		Delta:  r.delta,
		Method: string(r.method),
	}

	// Interpolation runs in float64 seconds relative to the anchor so
	// precision is spent on the segment span rather than the epoch.
	j := 0
	for k := 0; k < npts; k++ {
		gt := anchor.Add(time.Duration(k) * r.delta)
		out.Times[k] = gt

		// Advance to the sample pair bracketing gt.
		for j < seg.Len()-2 && seg.Times[j+1].Before(gt) {
			j++
		}
		out.Values[k] = r.valueAt(seg, j, gt, anchor)
	}
	return out, nil
}

// valueAt computes the grid value at gt from the bracket starting at j.
func (r *Resampler) valueAt(seg series.Segment, j int, gt, anchor time.Time) float64 {
	t0, t1 := seg.Times[j], seg.Times[j+1]
	if within(gt, t0) {
		return seg.Values[j]
	}
	if within(gt, t1) {
		return seg.Values[j+1]
	}

	x := gt.Sub(anchor).Seconds()
	x0 := t0.Sub(anchor).Seconds()
	x1 := t1.Sub(anchor).Seconds()

	if r.method == Nearest {
		if x-x0 <= x1-x {
			return seg.Values[j]
		}
		return seg.Values[j+1]
	}
	frac := (x - x0) / (x1 - x0)
	return seg.Values[j] + (seg.Values[j+1]-seg.Values[j])*frac
}

// within reports whether two timestamps coincide for grid purposes.
func within(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= coincidenceTolerance
}
