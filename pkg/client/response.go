package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Response is a normalized Flickr response.
type Response map[string]any

// Stat returns the top-level stat field ("ok" or "fail").
func (r Response) Stat() string {
	s, _ := r["stat"].(string)
	return s
}

// Get walks path through nested objects.
func (r Response) Get(path ...string) (any, bool) {
	var cur any = map[string]any(r)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Map returns the object at path.
func (r Response) Map(path ...string) (Response, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	m, ok := asMap(v)
	if !ok {
		return nil, false
	}
	return Response(m), true
}

// List returns the array at path. A single object where an array is
// expected is returned as a one-element list.
func (r Response) List(path ...string) ([]any, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case []any:
		return val, true
	case map[string]any, Response:
		return []any{val}, true
	default:
		return nil, false
	}
}

// String returns the scalar at path rendered as a string.
func (r Response) String(path ...string) string {
	v, ok := r.Get(path...)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Int returns the number at path. Flickr sends many counts as strings.
func (r Response) Int(path ...string) int {
	v, ok := r.Get(path...)
	if !ok {
		return 0
	}
	n, _ := toInt(v)
	return n
}

// Decode re-encodes the subtree at path and unmarshals it into dst.
func (r Response) Decode(dst any, path ...string) error {
	v, ok := r.Get(path...)
	if !ok {
		return fmt.Errorf("response has no %v", path)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("re-encode response: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &DecodeError{Body: data, Err: err}
	}
	return nil
}

// IsEmpty reports whether r carries nothing besides stat.
func (r Response) IsEmpty() bool {
	for k := range r {
		if k != "stat" {
			return false
		}
	}
	return true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Response:
		return m, true
	default:
		return nil, false
	}
}

// FlexInt decodes a JSON number or a numeric string. An empty string is 0.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	i, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return fmt.Errorf("flexint: %w", err)
		}
		i = int64(f)
	}
	*n = FlexInt(i)
	return nil
}

// FlexBool decodes 0/1, "0"/"1" and true/false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch string(bytes.Trim(data, `"`)) {
	case "1", "true":
		*b = true
	case "0", "false", "", "null":
		*b = false
	default:
		return fmt.Errorf("flexbool: invalid value %s", data)
	}
	return nil
}
