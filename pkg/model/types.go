package model

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout is the layout of calendar dates in API payloads.
const DateLayout = "2006-01-02"

// Date is a calendar date encoded as "yyyy-mm-dd".
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrapf(err, "date %s", data)
	}
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return errors.Wrapf(err, "parse date %q", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(DateLayout))), nil
}

// String returns the date in DateLayout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Timestamp is a point in time encoded as unix seconds.
// A zero value in the payload decodes to the zero Timestamp.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "timestamp %s", data)
	}
	if secs == 0 {
		ts.Time = time.Time{}
		return nil
	}
	ts.Time = time.Unix(secs, 0).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ts.Unix(), 10)), nil
}

// Record is a win/loss/tie record.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// APIStatus describes the state of the upstream API.
type APIStatus struct {
	CurrentSeason  int      `json:"current_season"`
	MaxSeason      int      `json:"max_season"`
	IsDatafeedDown bool     `json:"is_datafeed_down"`
	DownEvents     []string `json:"down_events"`
}
