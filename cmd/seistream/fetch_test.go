package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFlagsReachService(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{
  "records": {
    "NPT$HWZ$HV": [
      {"date": "2015-04-15T00:00:00Z", "rsam": 120.5},
      {"date": "2015-04-15T00:01:00Z", "rsam": 121.0}
    ]
  }
}`)
	}))
	defer srv.Close()

	root := &rootOptions{
		host:      strings.TrimPrefix(srv.URL, "http://"),
		threshold: 2 * time.Minute,
		delta:     time.Minute,
		resample:  true,
		method:    "linear",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	cmd := newFetchCmd(root)
	cmd.SetArgs([]string{
		"--channel", "NPT$HWZ$HV",
		"--start", "-12h",
		"--downsample", "mean",
		"--dsint", "5",
		"--out", filepath.Join(t.TempDir(), "seg"),
	})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "mean", gotQuery.Get("downsample"))
	assert.Equal(t, "5", gotQuery.Get("dsint"))
	assert.Equal(t, "NPT$HWZ$HV", gotQuery.Get("channel"))
}
