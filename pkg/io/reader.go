// Package io defines the provider and sink boundaries of the pipeline:
// where raw series come from and where conditioned segments go.
package io

import (
	"context"

	"github.com/volcwatch/seistream/pkg/series"
)

// Reader is the interface for reading a time series from a data source.
// The pipeline only ever consumes already-fetched series; fetch failures
// surface here, not inside the conditioning stages.
type Reader interface {
	// Read returns the complete series.
	Read(ctx context.Context) (*series.Series, error)

	// Close releases resources.
	Close() error
}

// Writer is the interface for writing conditioned segments.
type Writer interface {
	// Write outputs a single segment.
	Write(seg series.Segment) error

	// WriteAll outputs multiple segments.
	WriteAll(segments []series.Segment) error

	// Close releases resources.
	Close() error
}
