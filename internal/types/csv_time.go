package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// csvTimeLayouts are tried in order when parsing a CSV timestamp.
var csvTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CSVTime is a UTC timestamp read from CSV. It accepts RFC3339, the common
// "2006-01-02 15:04:05" layout, and unix epochs in seconds or milliseconds.
type CSVTime struct {
	time.Time
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *CSVTime) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		if epoch > 1e11 {
			t.Time = time.UnixMilli(epoch).UTC()
		} else {
			t.Time = time.Unix(epoch, 0).UTC()
		}

		return nil
	}

	for _, layout := range csvTimeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			t.Time = parsed.UTC()

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeMarketDataParseFailed, "cannot parse timestamp %q", value)
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t CSVTime) MarshalCSV() (string, error) {
	return t.UTC().Format(time.RFC3339), nil
}
