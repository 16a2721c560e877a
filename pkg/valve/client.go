// Package valve retrieves scalar time series from a Valve REST service.
// It is the data provider for the conditioning pipeline: every query
// returns an already-parsed series or fails; the pipeline itself performs
// no network I/O.
package valve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/volcwatch/seistream/pkg/series"
)

// Query carries the parameters common to the Valve dataset endpoints.
// Start and End accept absolute times (yyyy[MMdd[hhmm[ss]]]) or relative
// forms such as "-12h"; both pass through to the service unchanged. An
// empty End requests data up to now.
type Query struct {
	Channel  string
	Start    string
	End      string
	Timezone string // "utc" (default) or "hst"

	// Downsample is "none", "mean" or "decimate"; DownsampleFactor is the
	// reduction factor applied by the service.
	Downsample       string
	DownsampleFactor int

	// Series selects the data column for multi-column datasets, e.g.
	// "radial" for tilt or "bstflux" for flyspec.
	Series string
	// Rank selects the processing rank where the dataset supports it.
	Rank int
	// Baseline is the second station for GPS baseline-length queries.
	Baseline string
}

// Client talks to a Valve REST service.
type Client struct {
	host   string
	scheme string
	hc     *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithScheme sets the URL scheme. The default is "http", matching the
// deployed Valve services.
func WithScheme(scheme string) Option {
	return func(c *Client) {
		c.scheme = scheme
	}
}

// WithLogger sets the logger used to report queries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the Valve service at host.
func NewClient(host string, opts ...Option) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: valve host is required", series.ErrInvalidInput)
	}
	c := &Client{
		host:   host,
		scheme: "http",
		hc:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RSAM fetches RSAM amplitude data. The record column is "rsam".
func (c *Client) RSAM(ctx context.Context, q Query) (*series.Series, error) {
	return c.fetch(ctx, "rsam", q, "rsam")
}

// Triggers fetches event trigger counts. The record column is "triggers".
func (c *Client) Triggers(ctx context.Context, q Query) (*series.Series, error) {
	return c.fetch(ctx, "triggers", q, "triggers")
}

// Tilt fetches tiltmeter data for the series named in the query
// ("radial", "tangential", "east", "north" or "rainfall").
func (c *Client) Tilt(ctx context.Context, q Query) (*series.Series, error) {
	return c.fetchNamed(ctx, "tilt", q)
}

// Strain fetches strainmeter data for the series named in the query
// ("dt01", "dt02" or "barometer").
func (c *Client) Strain(ctx context.Context, q Query) (*series.Series, error) {
	return c.fetchNamed(ctx, "strain", q)
}

// FlySpec fetches SO2 flux spectrometer data for the series named in the
// query ("bstflux", "bstfluxmean", "ps", "pd", ...).
func (c *Client) FlySpec(ctx context.Context, q Query) (*series.Series, error) {
	return c.fetchNamed(ctx, "flyspec", q)
}

// RTNet fetches real-time GPS data for the series named in the query
// ("up", "north" or "east").
func (c *Client) RTNet(ctx context.Context, q Query) (*series.Series, error) {
	return c.fetchNamed(ctx, "rtnet", q)
}

// GPSLength fetches the baseline length between the query channel and its
// Baseline station. The record column is "length".
func (c *Client) GPSLength(ctx context.Context, q Query) (*series.Series, error) {
	if q.Baseline == "" {
		return nil, fmt.Errorf("%w: gps length queries need a baseline station",
			series.ErrInvalidInput)
	}
	q.Series = "length"
	return c.fetch(ctx, "gps", q, "length")
}

// DatasetInfo returns the service's description of a dataset endpoint
// such as "rsam" or "tilt".
func (c *Client) DatasetInfo(ctx context.Context, dataset string) (string, error) {
	body, err := c.get(ctx, dataset, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// fetchNamed fetches a dataset whose record column is the query's Series.
func (c *Client) fetchNamed(ctx context.Context, dataset string, q Query) (*series.Series, error) {
	if q.Series == "" {
		return nil, fmt.Errorf("%w: %s queries need a series name",
			series.ErrInvalidInput, dataset)
	}
	return c.fetch(ctx, dataset, q, q.Series)
}

func (c *Client) fetch(ctx context.Context, dataset string, q Query, column string) (*series.Series, error) {
	if q.Channel == "" {
		return nil, fmt.Errorf("%w: channel is required", series.ErrInvalidInput)
	}
	if q.Start == "" {
		return nil, fmt.Errorf("%w: start time is required", series.ErrInvalidInput)
	}

	body, err := c.get(ctx, dataset, q.values())
	if err != nil {
		return nil, err
	}
	s, err := parseRecords(body, q.Channel, column)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", dataset, err)
	}
	if c.logger != nil {
		c.logger.Debug("valve fetch complete",
			"dataset", dataset, "channel", q.Channel, "samples", s.Len())
	}
	return s, nil
}

func (c *Client) get(ctx context.Context, dataset string, params url.Values) ([]byte, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     "/api/" + dataset,
		RawQuery: params.Encode(),
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("valve request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("valve returned %s for %s", resp.Status, u.Path)
	}
	return io.ReadAll(resp.Body)
}

// values renders the query as endpoint parameters, omitting empties.
func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("channel", q.Channel)
	v.Set("starttime", q.Start)
	if q.End != "" {
		v.Set("endtime", q.End)
	}
	tz := q.Timezone
	if tz == "" {
		tz = "utc"
	}
	v.Set("timezone", tz)
	if q.Downsample != "" {
		v.Set("downsample", q.Downsample)
		v.Set("dsint", strconv.Itoa(q.DownsampleFactor))
	}
	if q.Series != "" {
		v.Set("series", q.Series)
	}
	if q.Rank != 0 {
		v.Set("rank", strconv.Itoa(q.Rank))
	}
	if q.Baseline != "" {
		v.Set("baseline", q.Baseline)
	}
	return v
}

// parseRecords extracts (date, column) pairs from a Valve response of the
// form {"records": {"<channel>": [{"date": ..., "<column>": v}, ...]}}.
// Records are sorted by timestamp; the service usually returns them
// ordered already.
func parseRecords(body []byte, channel, column string) (*series.Series, error) {
	var payload struct {
		Records map[string][]map[string]json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", series.ErrInvalidInput, err)
	}
	records, ok := payload.Records[channel]
	if !ok {
		return nil, fmt.Errorf("%w: no records for channel %q",
			series.ErrInvalidInput, channel)
	}

	s := &series.Series{
		Times:   make([]time.Time, 0, len(records)),
		Values:  make([]float64, 0, len(records)),
		Channel: channel,
	}
	for i, rec := range records {
		rawDate, ok := rec["date"]
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no date",
				series.ErrInvalidInput, i)
		}
		var dateStr string
		if err := json.Unmarshal(rawDate, &dateStr); err != nil {
			return nil, fmt.Errorf("%w: record %d date: %v",
				series.ErrInvalidInput, i, err)
		}
		t, err := parseRecordTime(dateStr)
		if err != nil {
			return nil, err
		}

		rawVal, ok := rec[column]
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no %q column",
				series.ErrInvalidInput, i, column)
		}
		var val float64
		if err := json.Unmarshal(rawVal, &val); err != nil {
			return nil, fmt.Errorf("%w: record %d value: %v",
				series.ErrInvalidInput, i, err)
		}

		s.Times = append(s.Times, t)
		s.Values = append(s.Values, val)
	}

	if !sort.SliceIsSorted(s.Times, func(i, j int) bool {
		return s.Times[i].Before(s.Times[j])
	}) {
		sort.Sort(byTime{s})
	}
	return s, nil
}

// byTime sorts a series by timestamp, keeping values aligned.
type byTime struct{ s *series.Series }

func (b byTime) Len() int           { return b.s.Len() }
func (b byTime) Less(i, j int) bool { return b.s.Times[i].Before(b.s.Times[j]) }
func (b byTime) Swap(i, j int) {
	b.s.Times[i], b.s.Times[j] = b.s.Times[j], b.s.Times[i]
	b.s.Values[i], b.s.Values[j] = b.s.Values[j], b.s.Values[i]
}
