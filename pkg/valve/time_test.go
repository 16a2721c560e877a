package valve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volcwatch/seistream/pkg/series"
)

func TestParseValveTime(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{
			name: "full form",
			in:   "20150415203015",
			want: time.Date(2015, 4, 15, 20, 30, 15, 0, time.UTC),
		},
		{
			name: "to the minute",
			in:   "201504152030",
			want: time.Date(2015, 4, 15, 20, 30, 0, 0, time.UTC),
		},
		{
			name: "date only",
			in:   "20150415",
			want: time.Date(2015, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year only",
			in:   "2015",
			want: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			in:      "yesterday",
			wantErr: true,
		},
		{
			name:    "wrong length",
			in:      "201504152",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValveTime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, series.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatValveTimeRoundTrip(t *testing.T) {
	want := time.Date(2015, 4, 15, 20, 30, 15, 0, time.UTC)
	got, err := ParseValveTime(FormatValveTime(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestJ2KConversion(t *testing.T) {
	// J2K zero corresponds to the fixed epoch offsets.
	assert.Equal(t, time.Unix(gmtJ2KOffset, 0).UTC(), J2KToTime(0, false))
	assert.Equal(t, time.Unix(hstJ2KOffset, 0).UTC(), J2KToTime(0, true))

	now := time.Date(2015, 4, 15, 20, 30, 15, 0, time.UTC)
	assert.Equal(t, now, J2KToTime(TimeToJ2K(now, false), false))
	assert.Equal(t, now, J2KToTime(TimeToJ2K(now, true), true))
}
