// Package waveform packages conditioned segments as labelled traces for
// downstream waveform containers. It is a plain data-transfer contract:
// arrays plus metadata, with no dependency on any container library.
package waveform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/volcwatch/seistream/pkg/series"
)

// ChannelID identifies the instrument channel a trace came from. Valve
// channel names are $-separated in station$channel$network$location
// order with trailing parts optional.
type ChannelID struct {
	Station  string
	Channel  string
	Network  string
	Location string
}

// ParseChannelID splits a $-separated channel name. Missing trailing
// components are left empty.
func ParseChannelID(name string) ChannelID {
	parts := strings.SplitN(name, "$", 4)
	var id ChannelID
	switch len(parts) {
	case 4:
		id.Location = parts[3]
		fallthrough
	case 3:
		id.Network = parts[2]
		fallthrough
	case 2:
		id.Channel = parts[1]
		fallthrough
	case 1:
		id.Station = parts[0]
	}
	return id
}

// String reassembles the $-separated channel name, omitting empty
// trailing components.
func (id ChannelID) String() string {
	parts := []string{id.Station, id.Channel, id.Network, id.Location}
	end := len(parts)
	for end > 1 && parts[end-1] == "" {
		end--
	}
	return strings.Join(parts[:end], "$")
}

// Stats carries the metadata of a single trace.
type Stats struct {
	ChannelID
	// StartTime is the timestamp of the first sample.
	StartTime time.Time
	// Delta is the sample interval.
	Delta time.Duration
	// Npts is the number of samples.
	Npts int
}

// Trace is one contiguous, evenly sampled run of data plus metadata.
type Trace struct {
	Stats Stats
	Data  []float64
}

// Verify checks internal consistency of the trace metadata.
func (t Trace) Verify() error {
	if t.Stats.Npts != len(t.Data) {
		return fmt.Errorf("%w: stats declare %d samples but trace has %d",
			series.ErrInvalidInput, t.Stats.Npts, len(t.Data))
	}
	if t.Stats.Npts > 1 && t.Stats.Delta <= 0 {
		return fmt.Errorf("%w: trace with %d samples needs a positive delta",
			series.ErrInvalidInput, t.Stats.Npts)
	}
	return nil
}

// Stream is an ordered collection of traces from one channel.
type Stream struct {
	Traces []Trace
}

// FromSegments converts conditioned segments into a stream of labelled
// traces. Resampled segments carry their exact interval; for raw segments
// the interval is inferred from the first sample spacing rounded to whole
// seconds, matching how traces were historically labelled.
func FromSegments(segments []series.Segment, id ChannelID) (Stream, error) {
	stream := Stream{Traces: make([]Trace, 0, len(segments))}
	for i, seg := range segments {
		if seg.Len() == 0 {
			return Stream{}, fmt.Errorf("%w: segment %d is empty",
				series.ErrEmptyInput, i)
		}
		delta := seg.Delta
		if delta == 0 && seg.Len() > 1 {
			delta = roundToSecond(seg.Times[1].Sub(seg.Times[0]))
		}

		data := make([]float64, seg.Len())
		copy(data, seg.Values)
		tr := Trace{
			Stats: Stats{
				ChannelID: id,
				StartTime: seg.Start(),
				Delta:     delta,
				Npts:      seg.Len(),
			},
			Data: data,
		}
		if err := tr.Verify(); err != nil {
			return Stream{}, fmt.Errorf("segment %d: %w", i, err)
		}
		stream.Traces = append(stream.Traces, tr)
	}
	return stream, nil
}

// roundToSecond rounds a duration to the nearest whole second.
func roundToSecond(d time.Duration) time.Duration {
	secs := math.Round(d.Seconds())
	return time.Duration(secs * float64(time.Second))
}
