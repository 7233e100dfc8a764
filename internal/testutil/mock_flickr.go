// Package testutil provides testing utilities for the Flickr client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mocked Flickr method or path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Call records one REST request received by the mock.
type Call struct {
	Method string
	Form   url.Values
}

// MockFlickr is a configurable mock of the Flickr REST, upload and OAuth
// endpoints. Point a client at URL() through its proxy base URL.
type MockFlickr struct {
	server   *httptest.Server
	mu       sync.RWMutex
	methods  map[string]http.HandlerFunc
	paths    map[string]http.HandlerFunc
	calls    []Call
	requests int
}

// NewMockFlickr creates and starts a new mock server.
func NewMockFlickr() *MockFlickr {
	mock := &MockFlickr{
		methods: make(map[string]http.HandlerFunc),
		paths:   make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests++
		mock.mu.Unlock()

		if r.URL.Path == "/rest/" {
			mock.serveREST(w, r)
			return
		}

		mock.mu.RLock()
		handler, exists := mock.paths[r.URL.Path]
		mock.mu.RUnlock()
		if exists {
			handler(w, r)
			return
		}
		http.NotFound(w, r)
	}))

	return mock
}

func (m *MockFlickr) serveREST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	method := r.Form.Get("method")

	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, Form: cloneValues(r.Form)})
	handler, exists := m.methods[method]
	m.mu.Unlock()

	if exists {
		handler(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"stat":"fail","code":112,"message":"Method \"%s\" not found"}`, method)
}

// URL returns the mock server URL.
func (m *MockFlickr) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockFlickr) Close() {
	m.server.Close()
}

// Reset clears all recorded requests.
func (m *MockFlickr) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.requests = 0
}

// SetMethodHandler sets a custom handler for a REST method.
func (m *MockFlickr) SetMethodHandler(method string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[method] = handler
}

// SetPathHandler sets a custom handler for a non-REST path such as /upload/.
func (m *MockFlickr) SetPathHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[path] = handler
}

// SetMethodResponse configures a fixed response for a REST method.
func (m *MockFlickr) SetMethodResponse(method string, resp MockResponse) {
	m.SetMethodHandler(method, respond(resp))
}

// SetPathResponse configures a fixed response for a path.
func (m *MockFlickr) SetPathResponse(path string, resp MockResponse) {
	m.SetPathHandler(path, respond(resp))
}

// SetMethodJSON answers method with body and status 200.
func (m *MockFlickr) SetMethodJSON(method, body string) {
	m.SetMethodResponse(method, NewOKResponse(body))
}

// SetMethodFunc answers method with the JSON encoding of fn's result,
// computed from the request form.
func (m *MockFlickr) SetMethodFunc(method string, fn func(form url.Values) any) {
	m.SetMethodHandler(method, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fn(r.Form))
	})
}

// Calls returns the REST requests received, in order.
func (m *MockFlickr) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times method was requested.
func (m *MockFlickr) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastCall returns the most recent REST request.
func (m *MockFlickr) LastCall() (Call, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.calls) == 0 {
		return Call{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// GetRequestCount returns the number of HTTP requests made to the server.
func (m *MockFlickr) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

func respond(resp MockResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		status := resp.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if resp.Body != "" {
			_, _ = w.Write([]byte(resp.Body))
		}
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// NewOKResponse creates a 200 JSON response.
func NewOKResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

// NewFailResponse creates a stat=fail response with code and message.
func NewFailResponse(code int, message string) MockResponse {
	body, _ := json.Marshal(map[string]any{"stat": "fail", "code": code, "message": message})
	return NewOKResponse(string(body))
}

// NewOAuthProblemResponse creates the form-encoded body Flickr returns when
// a signature or token is rejected.
func NewOAuthProblemResponse(problem string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       "oauth_problem=" + url.QueryEscape(problem),
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "Internal Server Error",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}
}

// NewPhotoPage builds a photos.search style response with ids
// first..first+count-1.
func NewPhotoPage(key string, first, count, page, perPage, total int) map[string]any {
	photos := make([]map[string]any, 0, count)
	for i := 0; i < count; i++ {
		photos = append(photos, map[string]any{"id": fmt.Sprint(first + i), "title": fmt.Sprintf("photo %d", first+i)})
	}
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return map[string]any{
		"stat": "ok",
		key: map[string]any{
			"page":    page,
			"pages":   pages,
			"perpage": perPage,
			"total":   fmt.Sprint(total),
			"photo":   photos,
		},
	}
}
