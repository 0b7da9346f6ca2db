// Package jsonutil decodes model output leniently. Gemini is asked for
// application/json, but replies occasionally arrive wrapped in markdown
// fences or with double-escaped unicode sequences.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StripFences removes a surrounding markdown code fence (``` or ```json)
// if present, returning the inner payload untouched otherwise.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		// drop the language tag line ("json", "JSON", ...)
		first := strings.TrimSpace(t[:i])
		if len(first) <= 8 {
			t = t[i+1:]
		}
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

// UnmarshalFlex unmarshals model output into v with best effort:
// 1) direct unmarshal
// 2) strip markdown fences and retry
// 3) unwrap a JSON-encoded string payload and retry
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	stripped := []byte(StripFences(string(raw)))
	if err := json.Unmarshal(stripped, v); err == nil {
		return nil
	}
	// The whole payload may be a quoted JSON string containing JSON.
	var s string
	if err := json.Unmarshal(stripped, &s); err == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return json.Unmarshal(stripped, v)
}

// MarshalNoEscape encodes v into JSON without HTML-escaping <, > and &,
// so prompt text and stored analysis stay readable.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
