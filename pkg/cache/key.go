package cache

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// MethodPrefix is the namespace every Flickr API method lives under.
const MethodPrefix = "flickr."

// excludedParams never take part in a cache key. They change on every
// request (signatures, nonces, timestamps) without changing the response.
var excludedParams = map[string]bool{
	"api_sig":                true,
	"oauth_signature":        true,
	"oauth_nonce":            true,
	"oauth_timestamp":        true,
	"oauth_signature_method": true,
	"oauth_version":          true,
}

// Key identifies a cached Flickr response.
type Key struct {
	// Method is the API method (e.g., "flickr.photos.getInfo").
	// The "flickr." prefix is added if missing.
	Method string

	// Params are the request parameters as they are sent on the wire.
	Params map[string]string
}

// String returns the namespaced store key.
// Format: flickr:<md5 hex>
func (k Key) String() string {
	return "flickr:" + ComputeKey(k.Method, k.Params)
}

// ComputeKey hashes the method together with all non-empty parameters.
// Signature and nonce parameters are ignored and parameters are sorted,
// so semantically identical requests always produce the same key.
func ComputeKey(method string, params map[string]string) string {
	if !strings.HasPrefix(method, MethodPrefix) {
		method = MethodPrefix + method
	}

	values := make(url.Values, len(params)+1)
	for key, value := range params {
		if value == "" || excludedParams[key] || key == "method" {
			continue
		}
		values.Set(key, value)
	}
	values.Set("method", method)

	// Encode escapes keys and values and sorts by key.
	sum := md5.Sum([]byte(values.Encode()))
	return hex.EncodeToString(sum[:])
}
