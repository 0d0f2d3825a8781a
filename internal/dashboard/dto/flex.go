package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat decodes a JSON number or a numeric string ("1.23", "1.23%",
// "1,234"). Alpha Vantage sends most numbers as strings and uses "None" or
// "-" for missing values; anything that is not a number decodes as 0.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexFloat(parseLooseFloat(s))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// NaN/Infinity leak out of pandas as bare tokens on some backends.
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// Float returns the value as a float64.
func (f FlexFloat) Float() float64 { return float64(f) }

func parseLooseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FlexString decodes a JSON string, number or bool into its text form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(data)
	return nil
}

func (s FlexString) String() string { return string(s) }

// fields indexes a JSON object by lower-cased key so that pandas column
// names ("Open"), Alpha Vantage keys ("05. price") and snake_case keys can be
// looked up uniformly.
type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(fields, len(raw))
	for k, v := range raw {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}

func (f fields) pick(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func (f fields) float(keys ...string) float64 {
	raw, ok := f.pick(keys...)
	if !ok {
		return 0
	}
	var v FlexFloat
	_ = v.UnmarshalJSON(raw)
	return v.Float()
}

func (f fields) string(keys ...string) string {
	raw, ok := f.pick(keys...)
	if !ok {
		return ""
	}
	var v FlexString
	_ = v.UnmarshalJSON(raw)
	return v.String()
}
