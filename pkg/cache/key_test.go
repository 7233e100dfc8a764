package cache

import (
	"strings"
	"testing"
)

func TestComputeKey_Normalization(t *testing.T) {
	base := ComputeKey("flickr.photos.getInfo", map[string]string{"photo_id": "42"})

	tests := []struct {
		name   string
		method string
		params map[string]string
		same   bool
	}{
		{
			name:   "identical request",
			method: "flickr.photos.getInfo",
			params: map[string]string{"photo_id": "42"},
			same:   true,
		},
		{
			name:   "method without prefix",
			method: "photos.getInfo",
			params: map[string]string{"photo_id": "42"},
			same:   true,
		},
		{
			name:   "empty params ignored",
			method: "flickr.photos.getInfo",
			params: map[string]string{"photo_id": "42", "secret": ""},
			same:   true,
		},
		{
			name:   "signature params ignored",
			method: "flickr.photos.getInfo",
			params: map[string]string{
				"photo_id":        "42",
				"oauth_nonce":     "abc",
				"oauth_timestamp": "1700000000",
				"oauth_signature": "sig",
				"api_sig":         "deadbeef",
			},
			same: true,
		},
		{
			name:   "method param ignored",
			method: "flickr.photos.getInfo",
			params: map[string]string{"photo_id": "42", "method": "flickr.photos.getInfo"},
			same:   true,
		},
		{
			name:   "different value",
			method: "flickr.photos.getInfo",
			params: map[string]string{"photo_id": "43"},
			same:   false,
		},
		{
			name:   "different method",
			method: "flickr.photos.getSizes",
			params: map[string]string{"photo_id": "42"},
			same:   false,
		},
		{
			name:   "extra param",
			method: "flickr.photos.getInfo",
			params: map[string]string{"photo_id": "42", "extras": "tags"},
			same:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeKey(tt.method, tt.params)
			if (got == base) != tt.same {
				t.Errorf("ComputeKey() = %v, base %v, want same=%v", got, base, tt.same)
			}
		})
	}
}

// TestComputeKey_Determinism ensures map iteration order never leaks into keys
func TestComputeKey_Determinism(t *testing.T) {
	params := map[string]string{
		"user_id":  "12345@N00",
		"tags":     "cat,dog",
		"page":     "2",
		"per_page": "500",
		"extras":   "url_o,date_taken",
	}

	first := ComputeKey("flickr.photos.search", params)
	for i := 0; i < 20; i++ {
		if got := ComputeKey("flickr.photos.search", params); got != first {
			t.Fatalf("iteration %d: ComputeKey() = %v, want %v (not deterministic)", i, got, first)
		}
	}
	if len(first) != 32 {
		t.Errorf("len(ComputeKey()) = %d, want 32 hex chars", len(first))
	}
}

func TestKey_String(t *testing.T) {
	key := Key{Method: "photos.getInfo", Params: map[string]string{"photo_id": "1"}}

	got := key.String()
	if !strings.HasPrefix(got, "flickr:") {
		t.Errorf("Key.String() = %v, want flickr: prefix", got)
	}
	if want := "flickr:" + ComputeKey("flickr.photos.getInfo", map[string]string{"photo_id": "1"}); got != want {
		t.Errorf("Key.String() = %v, want %v", got, want)
	}
}

func TestComputeKey_DistinctParamSets(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]string
	}{
		{
			name: "newline and equals inside a value",
			a:    map[string]string{"text": "cat\nuser_id=1"},
			b:    map[string]string{"text": "cat", "user_id": "1"},
		},
		{
			name: "ampersand inside a value",
			a:    map[string]string{"text": "cat&user_id=1"},
			b:    map[string]string{"text": "cat", "user_id": "1"},
		},
		{
			name: "equals moved between key and value",
			a:    map[string]string{"a=b": "c"},
			b:    map[string]string{"a": "b=c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := ComputeKey("photos.search", tt.a)
			kb := ComputeKey("photos.search", tt.b)
			if ka == kb {
				t.Errorf("ComputeKey(%q) == ComputeKey(%q) = %v", tt.a, tt.b, ka)
			}
		})
	}
}
