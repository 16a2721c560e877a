package valve

import (
	"fmt"
	"time"

	"github.com/volcwatch/seistream/pkg/series"
)

// J2K offsets convert Valve's J2000-based second counts to Unix epoch
// seconds for GMT and HST data.
const (
	gmtJ2KOffset = 946764000
	hstJ2KOffset = 946728000
)

// J2KToTime converts a Valve J2K second count to a UTC timestamp. Set hst
// for data served in Hawaii Standard Time.
func J2KToTime(j2k float64, hst bool) time.Time {
	offset := float64(gmtJ2KOffset)
	if hst {
		offset = hstJ2KOffset
	}
	secs := j2k + offset
	return time.Unix(int64(secs), int64((secs-float64(int64(secs)))*1e9)).UTC()
}

// TimeToJ2K converts a timestamp to a Valve J2K second count.
func TimeToJ2K(t time.Time, hst bool) float64 {
	offset := float64(gmtJ2KOffset)
	if hst {
		offset = hstJ2KOffset
	}
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9 - offset
}

// valveTimeLayouts lists the accepted absolute time forms, longest first:
// yyyy[MMdd[hhmm[ss]]].
var valveTimeLayouts = []string{
	"20060102150405",
	"200601021504",
	"20060102",
	"2006",
}

// ParseValveTime parses an absolute Valve time string of the form
// yyyy[MMdd[hhmm[ss]]] as UTC.
func ParseValveTime(s string) (time.Time, error) {
	for _, layout := range valveTimeLayouts {
		if len(s) != len(layout) {
			continue
		}
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized valve time %q",
		series.ErrInvalidInput, s)
}

// FormatValveTime renders a timestamp in Valve's yyyyMMddhhmmss form.
func FormatValveTime(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// recordTimeLayouts lists the timestamp forms seen in Valve JSON records.
var recordTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseRecordTime parses a timestamp from a Valve JSON record.
func parseRecordTime(s string) (time.Time, error) {
	for _, layout := range recordTimeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized record timestamp %q",
		series.ErrInvalidInput, s)
}
