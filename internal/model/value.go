package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

var jsonNull = []byte("null")

// Value is a loosely typed JSON scalar kept in its wire form. The upstream
// feed is not validated beyond presence checks, so fields are displayed as
// received rather than coerced into Go numbers.
type Value struct {
	raw json.RawMessage
}

// NumberValue returns a Value holding f.
func NumberValue(f float64) Value {
	return Value{raw: json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))}
}

// StringValue returns a Value holding s.
func StringValue(s string) Value {
	b, _ := json.Marshal(s)
	return Value{raw: b}
}

// Null returns an explicit JSON null.
func Null() Value {
	return Value{raw: json.RawMessage(jsonNull)}
}

// UnmarshalJSON keeps the raw bytes.
func (v *Value) UnmarshalJSON(b []byte) error {
	v.raw = append(json.RawMessage(nil), bytes.TrimSpace(b)...)
	return nil
}

// MarshalJSON writes the raw bytes back, or null for a missing value.
func (v Value) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return jsonNull, nil
	}
	return v.raw, nil
}

// Present reports whether the value was sent and is not null.
func (v Value) Present() bool {
	return len(v.raw) > 0 && !bytes.Equal(v.raw, jsonNull)
}

// Truthy follows JSON truthiness: null, false, "" and numeric zero are falsy,
// as is a value that was never sent.
func (v Value) Truthy() bool {
	if !v.Present() {
		return false
	}
	switch v.raw[0] {
	case 'f':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(v.raw, &s); err != nil {
			return false
		}
		return s != ""
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(v.raw), 64)
		if err != nil {
			return true
		}
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Float returns the numeric value when the value is a JSON number.
func (v Value) Float() (float64, bool) {
	if !v.Present() {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v.raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// String renders the value for display: strings unquoted, numbers in their
// shortest decimal form, anything else as raw JSON. Missing values render as "".
func (v Value) String() string {
	if !v.Present() {
		return ""
	}
	switch v.raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if f, err := strconv.ParseFloat(string(v.raw), 64); err == nil {
			return formatNumber(f)
		}
	}
	return string(v.raw)
}

func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
