package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	seisio "github.com/volcwatch/seistream/pkg/io"
	"github.com/volcwatch/seistream/pkg/series"
)

var _ seisio.Writer = (*Writer)(nil)

// Writer writes segments as (timestamp, value) CSV rows. All segments go
// to the same file in time order; callers wanting one file per segment
// open one Writer per segment.
type Writer struct {
	file   *os.File
	writer *csv.Writer
	header bool
}

// WriterOption configures a CSV writer.
type WriterOption func(*Writer)

// WithWriterHeader controls whether a header row is emitted. Default on.
func WithWriterHeader(has bool) WriterOption {
	return func(w *Writer) {
		w.header = has
	}
}

// NewWriter creates a CSV segment writer, truncating any existing file.
func NewWriter(filename string, opts ...WriterOption) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		file:   file,
		writer: csv.NewWriter(file),
		header: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.header {
		if err := w.writer.Write([]string{"timestamp", "value"}); err != nil {
			file.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write outputs one segment.
func (w *Writer) Write(seg series.Segment) error {
	if seg.Len() == 0 {
		return fmt.Errorf("%w: cannot write empty segment", series.ErrEmptyInput)
	}
	for i := range seg.Values {
		row := []string{
			seg.Times[i].UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(seg.Values[i], 'f', -1, 64),
		}
		if err := w.writer.Write(row); err != nil {
			return err
		}
	}
	w.writer.Flush()
	return w.writer.Error()
}

// WriteAll outputs multiple segments in order.
func (w *Writer) WriteAll(segments []series.Segment) error {
	for _, seg := range segments {
		if err := w.Write(seg); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
