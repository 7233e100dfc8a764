package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/flickr-client/internal/testutil"
	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type cliEnv struct {
	mock      *testutil.MockFlickr
	tokenFile string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	mock := testutil.NewMockFlickr()
	t.Cleanup(mock.Close)

	home := t.TempDir()
	tokenFile := filepath.Join(home, "tokens.json")
	t.Setenv("HOME", home)
	t.Setenv("FLICKR_API_KEY", "test-key")
	t.Setenv("FLICKR_API_SECRET", "test-secret")
	t.Setenv("FLICKR_PROXY_BASE_URL", mock.URL())
	t.Setenv("FLICKR_TOKEN_FILE", tokenFile)
	return &cliEnv{mock: mock, tokenFile: tokenFile}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCallCommand(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodFunc("flickr.test.echo", func(form url.Values) any {
		return map[string]any{"stat": "ok", "foo": map[string]any{"_content": form.Get("foo")}}
	})

	out, err := run(t, "", "call", "test.echo", "foo=bar", "-o", "json")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body), out)
	assert.Equal(t, "bar", body["foo"])
	assert.Equal(t, "ok", body["stat"])

	out, err = run(t, "", "call", "flickr.test.echo", "foo=baz")
	require.NoError(t, err)
	assert.Contains(t, out, "baz")
	assert.Contains(t, out, "stat")
}

func TestCallCommand_YAML(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodJSON("flickr.photos.getCounts", `{"stat":"ok","photocounts":{"photocount":[{"count":12}]}}`)

	out, err := run(t, "", "call", "photos.getCounts", "--output", "yaml")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &body), out)
	counts := body["photocounts"].(map[string]any)["photocount"].([]any)
	assert.Equal(t, 12, counts[0].(map[string]any)["count"])
}

func TestCallCommand_Errors(t *testing.T) {
	env := setupCLI(t)

	_, err := run(t, "", "call", "test.echo", "novalue")
	assert.ErrorContains(t, err, "expected key=value")

	_, err = run(t, "", "call", "photos.unknown")
	assert.ErrorContains(t, err, "112")
	assert.Equal(t, 1, env.mock.CallCount("flickr.photos.unknown"))

	_, err = run(t, "", "call")
	assert.Error(t, err)
}

func TestCallCommand_MissingCredentials(t *testing.T) {
	setupCLI(t)
	t.Setenv("FLICKR_API_KEY", "")

	_, err := run(t, "", "call", "test.echo")
	assert.ErrorContains(t, err, "api key is required")
}

func TestCallCommand_Cache(t *testing.T) {
	env := setupCLI(t)
	t.Setenv("FLICKR_CACHE_DIR", t.TempDir())
	env.mock.SetMethodJSON("flickr.test.echo", `{"stat":"ok","foo":"bar"}`)

	for i := 0; i < 2; i++ {
		_, err := run(t, "", "call", "test.echo", "--cache", "file", "-o", "json")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, env.mock.CallCount("flickr.test.echo"))

	_, err := run(t, "", "call", "test.echo", "--cache", "file", "--no-cache")
	require.NoError(t, err)
	assert.Equal(t, 2, env.mock.CallCount("flickr.test.echo"))
}

func TestPhotosInfoCommand(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodJSON("flickr.photos.getInfo", `{"stat":"ok","photo":{
		"id":"3392387861","secret":"abc","server":"3","farm":4,
		"title":{"_content":"castle"},
		"owner":{"nsid":"12037949754@N01","username":"bees"},
		"visibility":{"ispublic":1,"isfriend":0,"isfamily":0},
		"dates":{"taken":"2009-03-26 10:00:00"},
		"views":"42"}}`)

	out, err := run(t, "", "photos", "info", "3392387861")
	require.NoError(t, err)
	assert.Contains(t, out, "castle")
	assert.Contains(t, out, "bees (12037949754@N01)")
	assert.Contains(t, out, "https://flic.kr/p/6aLSHT")
	assert.Contains(t, out, "https://farm4.staticflickr.com/3/3392387861_abc_b.jpg")
	assert.Contains(t, out, "42")

	out, err = run(t, "", "photos", "info", "3392387861", "-o", "json")
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body), out)
	assert.Equal(t, "castle", body["title"])
}

func TestPhotosInfoCommand_NotFound(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodResponse("flickr.photos.getInfo", testutil.NewFailResponse(1, "Photo not found"))

	_, err := run(t, "", "photos", "info", "1")
	assert.ErrorContains(t, err, "photo 1 not found")
}

func TestPhotosSizesCommand(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodJSON("flickr.photos.getSizes", `{"stat":"ok","sizes":{"size":[
		{"label":"Square","width":75,"height":75,"source":"https://example.com/s.jpg"},
		{"label":"Original","width":"4000","height":"3000","source":"https://example.com/o.jpg"}]}}`)

	out, err := run(t, "", "photos", "sizes", "2733")
	require.NoError(t, err)
	assert.Contains(t, out, "Original")
	assert.Contains(t, out, "4000x3000")
	assert.Contains(t, out, "https://example.com/s.jpg")
}

func TestSearchCommand(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodFunc("flickr.photos.search", func(form url.Values) any {
		return testutil.NewPhotoPage("photos", 1, 2, 1, 2, 5)
	})

	out, err := run(t, "", "search", "--text", "sunset", "--per-page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "photo 1")
	assert.Contains(t, out, "photo 2")
	assert.Contains(t, out, "Page 1 of 3 (5 photos)")

	call, ok := env.mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "sunset", call.Form.Get("text"))
	assert.Equal(t, "2", call.Form.Get("per_page"))
	assert.Equal(t, "1", call.Form.Get("page"))
}

func TestSearchCommand_All(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodFunc("flickr.photos.search", func(form url.Values) any {
		switch form.Get("page") {
		case "1":
			return testutil.NewPhotoPage("photos", 1, 2, 1, 2, 3)
		default:
			return testutil.NewPhotoPage("photos", 3, 1, 2, 2, 3)
		}
	})

	out, err := run(t, "", "search", "--tags", "cat,dog", "--per-page", "2", "--all", "-o", "json")
	require.NoError(t, err)

	var result struct {
		Total  int              `json:"total"`
		Photos []map[string]any `json:"photos"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Photos, 3)
	assert.Equal(t, "3", result.Photos[2]["id"])
	assert.Equal(t, "cat,dog", env.mock.Calls()[0].Form.Get("tags"))
}

func TestSearchCommand_RequiresCriteria(t *testing.T) {
	setupCLI(t)
	_, err := run(t, "", "search")
	assert.ErrorContains(t, err, "at least one of")
}

func uploadHandler(t *testing.T, got *url.Values) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		*got = url.Values(r.MultipartForm.Value)
		w.Header().Set("Content-Type", "text/xml")
		if r.FormValue("async") == "1" {
			_, _ = io.WriteString(w, `<rsp stat="ok"><ticketid>1234-5678</ticketid></rsp>`)
			return
		}
		_, _ = io.WriteString(w, `<rsp stat="ok"><photoid secret="s3cr" originalsecret="o5">2733</photoid></rsp>`)
	}
}

func TestUploadCommand(t *testing.T) {
	env := setupCLI(t)
	var got url.Values
	env.mock.SetPathHandler("/upload/", uploadHandler(t, &got))

	photo := filepath.Join(t.TempDir(), "sunset.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))

	out, err := run(t, "", "upload", photo, "--title", "Sunset", "--tags", "beach,summer evening", "--public")
	require.NoError(t, err)
	assert.Contains(t, out, "2733")
	assert.Contains(t, out, "s3cr")

	assert.Equal(t, "Sunset", got.Get("title"))
	assert.Equal(t, `beach "summer evening"`, got.Get("tags"))
	assert.Equal(t, "1", got.Get("is_public"))
	assert.Empty(t, got.Get("is_friend"))
}

func TestUploadCommand_Async(t *testing.T) {
	env := setupCLI(t)
	var got url.Values
	env.mock.SetPathHandler("/upload/", uploadHandler(t, &got))

	photo := filepath.Join(t.TempDir(), "sunset.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))

	out, err := run(t, "", "upload", photo, "--async")
	require.NoError(t, err)
	assert.Contains(t, out, "Upload queued, ticket 1234-5678")
}

func TestUploadCommand_Replace(t *testing.T) {
	env := setupCLI(t)
	var got url.Values
	env.mock.SetPathHandler("/replace/", uploadHandler(t, &got))

	photo := filepath.Join(t.TempDir(), "fixed.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))

	out, err := run(t, "", "upload", photo, "--replace", "2733", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "2733", got.Get("photo_id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body), out)
	assert.Equal(t, "2733", body["photoid"])
}

func TestUploadCommand_MissingFile(t *testing.T) {
	env := setupCLI(t)

	_, err := run(t, "", "upload", filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
	assert.Zero(t, env.mock.GetRequestCount())
}

func TestShortURLCommand(t *testing.T) {
	out, err := run(t, "", "shorturl", "encode", "3392387861")
	require.NoError(t, err)
	assert.Equal(t, "https://flic.kr/p/6aLSHT\n", out)

	out, err = run(t, "", "shorturl", "decode", "https://flic.kr/p/6aLSHT")
	require.NoError(t, err)
	assert.Equal(t, "3392387861\n", out)

	_, err = run(t, "", "shorturl", "decode", "0OIl")
	assert.Error(t, err)

	_, err = run(t, "", "shorturl", "encode", "abc")
	assert.Error(t, err)
}

func TestAuthCommand(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetPathHandler("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = io.WriteString(w, "oauth_callback_confirmed=true&oauth_token=temp-token&oauth_token_secret=temp-secret")
	})
	var verifier string
	env.mock.SetPathHandler("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		verifier = r.Form.Get("oauth_verifier")
		if verifier == "" {
			verifier = oauthParam(r.Header.Get("Authorization"), "oauth_verifier")
		}
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = io.WriteString(w, "oauth_token=access-token&oauth_token_secret=access-secret&user_nsid=12037949754%40N01&username=bees")
	})

	out, err := run(t, "123-456-789\n", "auth", "--perm", "write")
	require.NoError(t, err)
	assert.Contains(t, out, "/oauth/authorize?")
	assert.Contains(t, out, "perms=write")
	assert.Contains(t, out, "Authorized as bees (12037949754@N01)")
	assert.Equal(t, "123-456-789", verifier)

	store, err := oauth.NewFileTokenStore(env.tokenFile)
	require.NoError(t, err)
	token, err := store.Token(context.Background(), oauth.DefaultService)
	require.NoError(t, err)
	assert.Equal(t, "access-token", token.Token)
	assert.Equal(t, "access-secret", token.Secret)
}

func TestAuthCommand_Errors(t *testing.T) {
	setupCLI(t)

	_, err := run(t, "", "auth", "--perm", "admin")
	assert.Error(t, err)

	t.Setenv("FLICKR_ACCESS_TOKEN", "static")
	_, err = run(t, "", "auth")
	assert.ErrorContains(t, err, "static access token")
}

func TestUnknownOutputFormat(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetMethodJSON("flickr.test.echo", `{"stat":"ok"}`)

	_, err := run(t, "", "call", "test.echo", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

// oauthParam extracts one parameter from an OAuth Authorization header.
func oauthParam(header, name string) string {
	for _, part := range strings.Split(strings.TrimPrefix(header, "OAuth "), ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && key == name {
			v, _ := url.QueryUnescape(strings.Trim(value, `"`))
			return v
		}
	}
	return ""
}

func TestAuthCommand_TokenRequestFailure(t *testing.T) {
	env := setupCLI(t)
	env.mock.SetPathResponse("/oauth/request_token", testutil.NewOAuthProblemResponse("consumer_key_unknown"))

	_, err := run(t, "", "auth")
	var authErr *client.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "token_request_failed", authErr.Problem)
}
