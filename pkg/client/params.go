package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Params are request parameters. Values may be strings, bools, integers,
// floats, string or int slices (sent comma-joined), fmt.Stringers or nil.
// Nil and empty values are never sent.
type Params map[string]any

// Values converts p to wire form. Bools become 1/0 as Flickr expects.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for key, v := range p {
		if s, ok := FormatValue(v); ok {
			values.Set(key, s)
		}
	}
	return values
}

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// FormatValue renders a single parameter value. It reports false for
// values that must be dropped.
func FormatValue(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s = val
	case bool:
		if val {
			s = "1"
		} else {
			s = "0"
		}
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case int32:
		s = strconv.FormatInt(int64(val), 10)
	case uint:
		s = strconv.FormatUint(uint64(val), 10)
	case uint64:
		s = strconv.FormatUint(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(val), 'f', -1, 32)
	case []string:
		s = strings.Join(val, ",")
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = strconv.Itoa(n)
		}
		s = strings.Join(parts, ",")
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	return s, s != ""
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}
