package flickr

import (
	"context"
	"time"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// PeopleAPI wraps flickr.people.*.
type PeopleAPI struct {
	c *client.Client
}

// PeoplePhotosOptions are the filters of GetPhotos. Zero values are not
// sent.
type PeoplePhotosOptions struct {
	SafeSearch    int
	MinUpload     time.Time
	MaxUpload     time.Time
	MinTaken      time.Time
	MaxTaken      time.Time
	ContentType   int
	PrivacyFilter int
	Extras        []string
	PerPage       int
	Page          int
}

// FindByEmail returns the user with the given email address.
func (a *PeopleAPI) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	return lookupInto[User](ctx, a.c, "people.findByEmail", client.Params{"find_email": email}, "user")
}

// FindByUsername returns the user with the given screen name.
func (a *PeopleAPI) FindByUsername(ctx context.Context, username string) (User, bool, error) {
	return lookupInto[User](ctx, a.c, "people.findByUsername", client.Params{"username": username}, "user")
}

// GetPhotos returns one page of a user's photos. An empty userID means
// the calling user ("me").
func (a *PeopleAPI) GetPhotos(ctx context.Context, userID string, opts PeoplePhotosOptions) (PhotoList, bool, error) {
	if userID == "" {
		userID = "me"
	}
	perPage, page := opts.PerPage, opts.Page
	if perPage == 0 {
		perPage = 100
	}
	if page == 0 {
		page = 1
	}
	return lookupInto[PhotoList](ctx, a.c, "people.getPhotos", client.Params{
		"user_id":         userID,
		"safe_search":     nonZero(opts.SafeSearch),
		"min_upload_date": unixOrNil(opts.MinUpload),
		"max_upload_date": unixOrNil(opts.MaxUpload),
		"min_taken_date":  mysqlOrNil(opts.MinTaken),
		"max_taken_date":  mysqlOrNil(opts.MaxTaken),
		"content_type":    nonZero(opts.ContentType),
		"privacy_filter":  nonZero(opts.PrivacyFilter),
		"extras":          opts.Extras,
		"per_page":        perPage,
		"page":            page,
	}, "photos")
}

// Upload dates are unix timestamps, taken dates are MySQL datetimes.
func unixOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

func mysqlOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.DateTime)
}
