package flickr

import (
	"context"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/pagination"
)

// PhotosetsAPI wraps flickr.photosets.*.
type PhotosetsAPI struct {
	c *client.Client
}

// ListOptions are the optional arguments of GetList.
type ListOptions struct {
	UserID             string
	Page               int
	PerPage            int
	PrimaryPhotoExtras []string
	PhotoIDs           []string
}

// PhotosOptions are the optional arguments of GetPhotos.
type PhotosOptions struct {
	UserID        string
	Extras        []string
	PerPage       int
	Page          int
	PrivacyFilter int
	Media         string // all, photos or videos
}

func (o PhotosOptions) params(photosetID string) client.Params {
	return client.Params{
		"photoset_id":    photosetID,
		"user_id":        o.UserID,
		"extras":         o.Extras,
		"per_page":       nonZero(o.PerPage),
		"page":           nonZero(o.Page),
		"privacy_filter": nonZero(o.PrivacyFilter),
		"media":          o.Media,
	}
}

// GetList returns a page of a user's photosets.
func (a *PhotosetsAPI) GetList(ctx context.Context, opts ListOptions) (PhotosetList, bool, error) {
	return lookupInto[PhotosetList](ctx, a.c, "photosets.getList", client.Params{
		"user_id":              opts.UserID,
		"page":                 nonZero(opts.Page),
		"per_page":             nonZero(opts.PerPage),
		"primary_photo_extras": opts.PrimaryPhotoExtras,
		"photo_ids":            opts.PhotoIDs,
	}, "photosets")
}

// GetInfo returns a photoset. userID is optional but speeds the lookup up.
func (a *PhotosetsAPI) GetInfo(ctx context.Context, photosetID, userID string) (Photoset, bool, error) {
	return lookupInto[Photoset](ctx, a.c, "photosets.getInfo", client.Params{
		"photoset_id": photosetID,
		"user_id":     userID,
	}, "photoset")
}

// GetPhotos returns one page of a photoset's photos.
func (a *PhotosetsAPI) GetPhotos(ctx context.Context, photosetID string, opts PhotosOptions) (PhotosetPhotos, bool, error) {
	return lookupInto[PhotosetPhotos](ctx, a.c, "photosets.getPhotos", opts.params(photosetID), "photoset")
}

// PhotosPager returns a pager over a photoset. opts.Page and opts.PerPage
// are ignored; perPage sets the page size.
func (a *PhotosetsAPI) PhotosPager(photosetID string, opts PhotosOptions, perPage int, cached bool) (*pagination.Pager, error) {
	return pagination.NewPager(a.c, "photosets.getPhotos", opts.params(photosetID), perPage, cached)
}

// Create makes a photoset with primaryPhotoID as its cover and first
// photo. Only ID and URL are set in the result.
func (a *PhotosetsAPI) Create(ctx context.Context, title, description, primaryPhotoID string) (Photoset, error) {
	resp, err := write(ctx, a.c, "photosets.create", client.Params{
		"title":            title,
		"description":      description,
		"primary_photo_id": primaryPhotoID,
	})
	if err != nil {
		return Photoset{}, err
	}
	var set Photoset
	if err := resp.Decode(&set, "photoset"); err != nil {
		return Photoset{}, err
	}
	return set, nil
}

// AddPhoto adds a photo to the end of a photoset.
func (a *PhotosetsAPI) AddPhoto(ctx context.Context, photosetID, photoID string) error {
	_, err := write(ctx, a.c, "photosets.addPhoto", client.Params{
		"photoset_id": photosetID,
		"photo_id":    photoID,
	})
	return err
}

// RemovePhoto removes a photo from a photoset.
func (a *PhotosetsAPI) RemovePhoto(ctx context.Context, photosetID, photoID string) error {
	_, err := write(ctx, a.c, "photosets.removePhoto", client.Params{
		"photoset_id": photosetID,
		"photo_id":    photoID,
	})
	return err
}

// RemovePhotos removes several photos from a photoset.
func (a *PhotosetsAPI) RemovePhotos(ctx context.Context, photosetID string, photoIDs []string) error {
	_, err := write(ctx, a.c, "photosets.removePhotos", client.Params{
		"photoset_id": photosetID,
		"photo_ids":   photoIDs,
	})
	return err
}

// Delete removes a photoset. The photos in it are kept.
func (a *PhotosetsAPI) Delete(ctx context.Context, photosetID string) error {
	_, err := write(ctx, a.c, "photosets.delete", client.Params{"photoset_id": photosetID})
	return err
}

// EditMeta sets a photoset's title and description.
func (a *PhotosetsAPI) EditMeta(ctx context.Context, photosetID, title, description string) error {
	_, err := write(ctx, a.c, "photosets.editMeta", client.Params{
		"photoset_id": photosetID,
		"title":       title,
		"description": description,
	})
	return err
}

// EditPhotos replaces the photos of a photoset. primaryPhotoID must be in
// photoIDs.
func (a *PhotosetsAPI) EditPhotos(ctx context.Context, photosetID, primaryPhotoID string, photoIDs []string) error {
	_, err := write(ctx, a.c, "photosets.editPhotos", client.Params{
		"photoset_id":      photosetID,
		"primary_photo_id": primaryPhotoID,
		"photo_ids":        photoIDs,
	})
	return err
}

// OrderSets sets the order of the calling user's photosets. Sets not
// listed keep their relative order after the listed ones.
func (a *PhotosetsAPI) OrderSets(ctx context.Context, photosetIDs []string) error {
	_, err := write(ctx, a.c, "photosets.orderSets", client.Params{"photoset_ids": photosetIDs})
	return err
}

// ReorderPhotos sets the order of photos within a photoset.
func (a *PhotosetsAPI) ReorderPhotos(ctx context.Context, photosetID string, photoIDs []string) error {
	_, err := write(ctx, a.c, "photosets.reorderPhotos", client.Params{
		"photoset_id": photosetID,
		"photo_ids":   photoIDs,
	})
	return err
}

// SetPrimaryPhoto sets a photoset's cover photo.
func (a *PhotosetsAPI) SetPrimaryPhoto(ctx context.Context, photosetID, photoID string) error {
	_, err := write(ctx, a.c, "photosets.setPrimaryPhoto", client.Params{
		"photoset_id": photosetID,
		"photo_id":    photoID,
	})
	return err
}
