// Package flickr provides typed endpoint groups over the generic request
// pipeline in pkg/client.
//
// Read lookups return (value, found, error). found is false when the
// response lacks the expected key or the service answers with its "not
// found" code; err is reserved for transport, auth, decode and other
// service faults. Write methods always bypass the response cache.
//
// Usage:
//
//	c, _ := client.New(client.DefaultConfig(key, secret))
//	f := flickr.New(c)
//	info, found, err := f.Photos().GetInfo(ctx, "12345", "")
package flickr

import (
	"context"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// CodeNotFound is the error code Flickr uses for unknown photos,
// photosets, users and groups.
const CodeNotFound = 1

// Flickr groups the endpoint wrappers of one client.
type Flickr struct {
	client    *client.Client
	photos    *PhotosAPI
	photosets *PhotosetsAPI
	people    *PeopleAPI
	urls      *URLsAPI
	test      *TestAPI
	licenses  *LicensesAPI
	uploads   *UploadsAPI
}

// New wires every endpoint group to c.
func New(c *client.Client) *Flickr {
	f := &Flickr{client: c}
	f.photos = &PhotosAPI{c: c}
	f.photosets = &PhotosetsAPI{c: c}
	f.people = &PeopleAPI{c: c}
	f.urls = &URLsAPI{c: c}
	f.test = &TestAPI{c: c}
	f.licenses = &LicensesAPI{c: c}
	f.uploads = &UploadsAPI{c: c}
	return f
}

// Client returns the underlying request pipeline.
func (f *Flickr) Client() *client.Client { return f.client }

func (f *Flickr) Photos() *PhotosAPI       { return f.photos }
func (f *Flickr) Photosets() *PhotosetsAPI { return f.photosets }
func (f *Flickr) People() *PeopleAPI       { return f.people }
func (f *Flickr) URLs() *URLsAPI           { return f.urls }
func (f *Flickr) Test() *TestAPI           { return f.test }
func (f *Flickr) Licenses() *LicensesAPI   { return f.licenses }
func (f *Flickr) Uploads() *UploadsAPI     { return f.uploads }

// Call is the generic entry point for methods without a typed wrapper.
func (f *Flickr) Call(ctx context.Context, method string, params client.Params) (client.Response, bool, error) {
	return f.client.Call(ctx, method, params)
}

// lookup runs a cached read and returns the object at path.
func lookup(ctx context.Context, c *client.Client, method string, params client.Params, path ...string) (client.Response, bool, error) {
	resp, err := c.Request(ctx, method, params, false)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(path) == 0 {
		return resp, !resp.IsEmpty(), nil
	}
	sub, ok := resp.Map(path...)
	if !ok {
		return nil, false, nil
	}
	return sub, true, nil
}

// lookupInto decodes the object at path into a T.
func lookupInto[T any](ctx context.Context, c *client.Client, method string, params client.Params, path ...string) (T, bool, error) {
	var out T
	resp, found, err := lookup(ctx, c, method, params)
	if err != nil || !found {
		return out, false, err
	}
	if _, ok := resp.Get(path...); !ok {
		return out, false, nil
	}
	if err := resp.Decode(&out, path...); err != nil {
		return out, false, err
	}
	return out, true, nil
}

// write sends a state-changing method, never through the cache.
func write(ctx context.Context, c *client.Client, method string, params client.Params) (client.Response, error) {
	return c.Request(ctx, method, params, true)
}

func isNotFound(err error) bool {
	code, ok := client.ServiceCode(err)
	return ok && code == CodeNotFound
}
