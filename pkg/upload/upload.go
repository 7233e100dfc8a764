// Package upload sends photos to the Flickr upload and replace endpoints.
//
// The metadata fields are OAuth1-signed through the client's token; the
// photo itself is streamed as a multipart part that is not part of the
// signature.
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/flickr"
	"github.com/Sternrassler/flickr-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the upload services root.
const DefaultBaseURL = "https://up.flickr.com/services"

var (
	uploadsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "flickr_uploads_total",
		Help: "Total Flickr upload and replace requests by endpoint and status",
	}, []string{"endpoint", "status"})

	uploadDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flickr_upload_duration_seconds",
		Help:    "Flickr upload duration in seconds by endpoint",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"endpoint"})
)

// Content types.
const (
	ContentPhoto      = 1
	ContentScreenshot = 2
	ContentOther      = 3
)

// Search visibility.
const (
	HiddenNo  = 1
	HiddenYes = 2
)

// Options are the optional upload metadata. Nil flags and zero values
// leave the user's defaults in place.
type Options struct {
	Title       string
	Description string
	Tags        []string
	IsPublic    *bool
	IsFriend    *bool
	IsFamily    *bool
	ContentType int
	Hidden      int
	// Async returns a ticket id instead of waiting for processing.
	Async bool
}

func (o Options) params() client.Params {
	p := client.Params{
		"title":       o.Title,
		"description": o.Description,
		"tags":        flickr.JoinTags(o.Tags),
	}
	if o.IsPublic != nil {
		p["is_public"] = *o.IsPublic
	}
	if o.IsFriend != nil {
		p["is_friend"] = *o.IsFriend
	}
	if o.IsFamily != nil {
		p["is_family"] = *o.IsFamily
	}
	if o.ContentType != 0 {
		p["content_type"] = o.ContentType
	}
	if o.Hidden != 0 {
		p["hidden"] = o.Hidden
	}
	if o.Async {
		p["async"] = 1
	}
	return p
}

// Uploader posts files for one client.
type Uploader struct {
	client  *client.Client
	baseURL string
	logger  zerolog.Logger
}

// New creates an Uploader on c. The upload root is DefaultBaseURL unless
// c was configured with a proxy base URL, which then serves uploads too.
func New(c *client.Client) *Uploader {
	base := DefaultBaseURL
	if c.BaseURL() != client.DefaultBaseURL {
		base = c.BaseURL()
	}
	return &Uploader{
		client:  c,
		baseURL: base,
		logger:  log.With().Str("component", "flickr-upload").Logger(),
	}
}

// WithLogger replaces the uploader's logger.
func (u *Uploader) WithLogger(logger zerolog.Logger) *Uploader {
	u.logger = logger.With().Str("component", "flickr-upload").Logger()
	return u
}

// BaseURL returns the upload root.
func (u *Uploader) BaseURL() string {
	return u.baseURL
}

// Upload sends a new photo.
func (u *Uploader) Upload(ctx context.Context, filename string, opts Options) (*Response, error) {
	return u.send(ctx, "upload", filename, opts.params())
}

// Replace swaps the file of an existing photo, keeping its metadata.
func (u *Uploader) Replace(ctx context.Context, filename, photoID string, async bool) (*Response, error) {
	params := client.Params{"photo_id": photoID}
	if async {
		params["async"] = 1
	}
	return u.send(ctx, "replace", filename, params)
}

func (u *Uploader) send(ctx context.Context, endpoint, filename string, params client.Params) (*Response, error) {
	file, err := openReadable(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	target := u.baseURL + "/" + endpoint + "/"
	form, err := u.client.SignedForm(ctx, target, params.Values())
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	defer func() {
		uploadDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	body, contentType := multipartBody(form, filepath.Base(filename), file)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		_ = body.Close()
		return nil, u.fail(endpoint, &client.TransportError{Method: endpoint, Err: fmt.Errorf("create request: %w", err)})
	}
	req.Header.Set("Content-Type", contentType)

	u.logger.Debug().Str("endpoint", endpoint).Str("file", filename).Msg("Uploading file")

	resp, err := u.client.HTTPClient().Do(req)
	if err != nil {
		return nil, u.fail(endpoint, &client.TransportError{Method: endpoint, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, u.fail(endpoint, &client.TransportError{Method: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)})
	}

	// OAuth rejections arrive as a form-encoded body or a bare 401, not XML.
	if authErr := client.RejectedAuth(resp.StatusCode, raw); authErr != nil {
		return nil, u.fail(endpoint, authErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, u.fail(endpoint, &client.TransportError{Method: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)})
	}

	result, err := Decode(raw)
	if err != nil {
		return result, u.fail(endpoint, err)
	}

	uploadsTotal.WithLabelValues(endpoint, "ok").Inc()
	u.logger.Info().
		Str("endpoint", endpoint).
		Str("photo_id", result.PhotoID).
		Str("ticket_id", result.TicketID).
		Msg("Upload accepted")
	return result, nil
}

func (u *Uploader) fail(endpoint string, err error) error {
	class := client.Classify(err)
	uploadsTotal.WithLabelValues(endpoint, string(class)).Inc()
	u.logger.Error().Err(err).Str("endpoint", endpoint).Str("error_class", string(class)).Msg("Upload failed")
	return err
}

func openReadable(filename string) (*os.File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("file not readable: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("file not readable: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("file not readable: %s is a directory", filename)
	}
	return file, nil
}

// multipartBody streams the signed fields followed by the photo part.
func multipartBody(form url.Values, name string, photo io.Reader) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeParts(mw, form, name, photo)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, form url.Values, name string, photo io.Reader) error {
	for key, values := range form {
		for _, v := range values {
			if err := mw.WriteField(key, v); err != nil {
				return err
			}
		}
	}
	part, err := mw.CreateFormFile("photo", strings.ReplaceAll(name, `"`, ""))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, photo)
	return err
}
