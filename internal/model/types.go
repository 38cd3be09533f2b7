package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FlexID is an identifier the backend may encode as either a JSON number or a string.
type FlexID string

func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

func (id FlexID) String() string { return string(id) }

// Amount is a gram or calorie quantity. Missing, null or unparseable values decode to 0.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*a = 0
		return nil
	}
	f, _ := ToFloat(v)
	*a = Amount(f)
	return nil
}

// ToFloat coerces a decoded JSON value into a finite float64.
// Numeric strings are accepted; anything else reports false.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		p, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Timestamp is a point in time that decodes from RFC 3339 strings, zone-less
// ISO date-times (interpreted in local time), plain dates, or epoch milliseconds.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, ok := ParseTime(v)
	if !ok {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// ParseTime interprets a decoded JSON value as a time.
func ParseTime(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timestampLayouts {
			if layout == time.RFC3339Nano {
				if t, err := time.Parse(layout, s); err == nil {
					return t, true
				}
				continue
			}
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, true
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.Time{}, false
		}
	}
	ms, ok := ToFloat(v)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}
