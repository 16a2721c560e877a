package valve

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcwatch/seistream/pkg/series"
)

// newTestClient points a client at an httptest server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host := strings.TrimPrefix(srv.URL, "http://")
	c, err := NewClient(host)
	require.NoError(t, err)
	return c
}

const rsamBody = `{
  "records": {
    "NPT$HWZ$HV": [
      {"date": "2015-04-15T00:00:00Z", "rsam": 120.5},
      {"date": "2015-04-15T00:01:00Z", "rsam": 121.0},
      {"date": "2015-04-15T00:02:00Z", "rsam": 119.25}
    ]
  }
}`

func TestRSAM(t *testing.T) {
	var gotPath string
	var gotQuery url.Values

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		fmt.Fprint(w, rsamBody)
	})

	s, err := c.RSAM(context.Background(), Query{
		Channel: "NPT$HWZ$HV",
		Start:   "-12h",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/rsam", gotPath)
	assert.Equal(t, "NPT$HWZ$HV", gotQuery.Get("channel"))
	assert.Equal(t, "-12h", gotQuery.Get("starttime"))
	assert.Equal(t, "utc", gotQuery.Get("timezone"))
	assert.Empty(t, gotQuery.Get("endtime"))

	require.Equal(t, 3, s.Len())
	assert.Equal(t, "NPT$HWZ$HV", s.Channel)
	assert.Equal(t, time.Date(2015, 4, 15, 0, 0, 0, 0, time.UTC), s.Times[0])
	assert.Equal(t, []float64{120.5, 121.0, 119.25}, s.Values)
	assert.NoError(t, s.Validate())
}

func TestTiltQueryParams(t *testing.T) {
	var gotQuery url.Values

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"records": {"UWE": [{"date": "2015-04-15T00:00:00Z", "radial": 1.5}]}}`)
	})

	s, err := c.Tilt(context.Background(), Query{
		Channel:          "UWE",
		Start:            "201504150000",
		End:              "201504152030",
		Series:           "radial",
		Rank:             1,
		Downsample:       "mean",
		DownsampleFactor: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "radial", gotQuery.Get("series"))
	assert.Equal(t, "1", gotQuery.Get("rank"))
	assert.Equal(t, "mean", gotQuery.Get("downsample"))
	assert.Equal(t, "10", gotQuery.Get("dsint"))
	assert.Equal(t, "201504152030", gotQuery.Get("endtime"))
	assert.Equal(t, []float64{1.5}, s.Values)
}

func TestFetchValidation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rsamBody)
	})
	ctx := context.Background()

	_, err := c.RSAM(ctx, Query{Start: "-12h"})
	assert.ErrorIs(t, err, series.ErrInvalidInput, "missing channel")

	_, err = c.RSAM(ctx, Query{Channel: "NPT$HWZ$HV"})
	assert.ErrorIs(t, err, series.ErrInvalidInput, "missing start")

	_, err = c.Tilt(ctx, Query{Channel: "UWE", Start: "-12h"})
	assert.ErrorIs(t, err, series.ErrInvalidInput, "missing series")

	_, err = c.GPSLength(ctx, Query{Channel: "UWE", Start: "-12h"})
	assert.ErrorIs(t, err, series.ErrInvalidInput, "missing baseline")
}

func TestFetchHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.RSAM(context.Background(), Query{Channel: "NPT$HWZ$HV", Start: "-12h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestFetchUnknownChannel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"records": {}}`)
	})

	_, err := c.RSAM(context.Background(), Query{Channel: "NPT$HWZ$HV", Start: "-12h"})
	assert.ErrorIs(t, err, series.ErrInvalidInput)
}

func TestFetchSortsUnorderedRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "records": {
    "NPT$HWZ$HV": [
      {"date": "2015-04-15T00:02:00Z", "rsam": 3},
      {"date": "2015-04-15T00:00:00Z", "rsam": 1},
      {"date": "2015-04-15T00:01:00Z", "rsam": 2}
    ]
  }
}`)
	})

	s, err := c.RSAM(context.Background(), Query{Channel: "NPT$HWZ$HV", Start: "-12h"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Values)
	assert.NoError(t, s.Validate())
}

func TestDatasetInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rsam", r.URL.Path)
		fmt.Fprint(w, "rsam dataset: channels NPT$HWZ$HV ...")
	})

	info, err := c.DatasetInfo(context.Background(), "rsam")
	require.NoError(t, err)
	assert.Contains(t, info, "rsam dataset")
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, series.ErrInvalidInput)
}
