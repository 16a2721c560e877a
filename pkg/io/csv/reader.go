// Package csv reads and writes (timestamp, value) series as CSV files.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	seisio "github.com/volcwatch/seistream/pkg/io"
	"github.com/volcwatch/seistream/pkg/series"
)

var _ seisio.Reader = (*Reader)(nil)

// timeLayouts lists the accepted timestamp forms, tried in order. Plain
// numbers are treated as epoch seconds.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"20060102150405",
}

// Reader reads a two-column (timestamp, value) series from a CSV file.
// Exported CSVs from spreadsheet tools are sometimes UTF-16 with a BOM;
// the reader detects and transcodes those transparently.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	channel   string
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// WithChannel labels the resulting series with a channel identifier.
func WithChannel(channel string) Option {
	return func(r *Reader) {
		r.channel = channel
	}
}

// NewReader creates a new CSV series reader.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		hasHeader: true,
	}
	for _, opt := range opts {
		opt(r)
	}

	br := bufio.NewReader(file)
	if b, _ := br.Peek(2); len(b) >= 2 &&
		((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		br = bufio.NewReader(transform.NewReader(file, dec))
	}
	r.reader = csv.NewReader(br)
	r.reader.TrimLeadingSpace = true

	if r.hasHeader {
		if _, err := r.reader.Read(); err != nil && err != io.EOF {
			file.Close()
			return nil, err
		}
	}
	return r, nil
}

// Read returns the complete series. Rows must hold a timestamp followed
// by a numeric value; timestamps must already be in ascending order.
func (r *Reader) Read(ctx context.Context) (*series.Series, error) {
	s := &series.Series{Channel: r.channel}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		t, v, err := parseRow(record)
		if err != nil {
			return nil, err
		}
		s.Times = append(s.Times, t)
		s.Values = append(s.Values, v)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseRow converts a CSV record into a (timestamp, value) pair.
func parseRow(record []string) (time.Time, float64, error) {
	if len(record) < 2 {
		return time.Time{}, 0, fmt.Errorf("%w: row needs timestamp and value, got %d fields",
			series.ErrInvalidInput, len(record))
	}

	t, err := parseTimestamp(record[0])
	if err != nil {
		return time.Time{}, 0, err
	}
	v, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: bad value %q: %v",
			series.ErrInvalidInput, record[1], err)
	}
	return t, v, nil
}

// parseTimestamp accepts the layouts above or plain epoch seconds.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(secs), int64((secs-float64(int64(secs)))*1e9)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q",
		series.ErrInvalidInput, s)
}
