package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// textContentKey is the key Flickr wraps scalar text nodes in.
const textContentKey = "_content"

// Normalize decodes a Flickr JSON body, collapses text-node wrappers and
// turns a stat=fail response into a *ServiceError. Numbers are kept as
// json.Number.
func Normalize(raw []byte) (Response, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &DecodeError{Body: raw, Err: err}
	}
	if dec.More() {
		return nil, &DecodeError{Body: raw, Err: fmt.Errorf("trailing data after JSON value")}
	}

	obj, ok := CleanTextNodes(v).(map[string]any)
	if !ok {
		return nil, &DecodeError{Body: raw, Err: fmt.Errorf("top-level value is %T, want object", v)}
	}

	resp := Response(obj)
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// CleanTextNodes replaces every object whose only key is _content with the
// value of that key, recursively. Empty objects and arrays are returned as
// they are. Maps and slices are rewritten in place. Applying it twice is the
// same as applying it once.
func CleanTextNodes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			if inner, ok := val[textContentKey]; ok {
				return CleanTextNodes(inner)
			}
		}
		for k, child := range val {
			val[k] = CleanTextNodes(child)
		}
		return val
	case Response:
		return CleanTextNodes(map[string]any(val))
	case []any:
		for i, child := range val {
			val[i] = CleanTextNodes(child)
		}
		return val
	default:
		return v
	}
}

// Err returns a *ServiceError when r is a stat=fail response.
func (r Response) Err() error {
	if r.Stat() != "fail" {
		return nil
	}
	code, _ := toInt(r["code"])
	msg, _ := r["message"].(string)
	return &ServiceError{Code: code, Message: msg}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
