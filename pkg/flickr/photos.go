package flickr

import (
	"context"
	"strings"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/pagination"
)

// PhotosAPI wraps flickr.photos.*.
type PhotosAPI struct {
	c *client.Client
}

// GetInfo returns a photo's metadata. secret is optional; when given,
// the permission check is skipped for callers that know it.
func (a *PhotosAPI) GetInfo(ctx context.Context, photoID, secret string) (PhotoInfo, bool, error) {
	return lookupInto[PhotoInfo](ctx, a.c, "photos.getInfo", client.Params{
		"photo_id": photoID,
		"secret":   secret,
	}, "photo")
}

// GetSizes returns every rendition of a photo.
func (a *PhotosAPI) GetSizes(ctx context.Context, photoID string) ([]Size, bool, error) {
	sizes, found, err := lookupInto[sizeList](ctx, a.c, "photos.getSizes", client.Params{"photo_id": photoID}, "sizes")
	if err != nil || !found {
		return nil, false, err
	}
	return sizes.Size, true, nil
}

type sizeList struct {
	Size []Size `json:"size"`
}

// GetLargestSize returns the Original rendition if it is available,
// otherwise the one with the largest area. Ties go to the first listed.
func (a *PhotosAPI) GetLargestSize(ctx context.Context, photoID string) (Size, bool, error) {
	sizes, found, err := a.GetSizes(ctx, photoID)
	if err != nil || !found || len(sizes) == 0 {
		return Size{}, false, err
	}
	return LargestSize(sizes), true, nil
}

// LargestSize picks from sizes the way GetLargestSize does. sizes must
// not be empty.
func LargestSize(sizes []Size) Size {
	best := sizes[0]
	for _, s := range sizes {
		if s.Label == "Original" {
			return s
		}
		if s.Area() > best.Area() {
			best = s
		}
	}
	return best
}

// GetRecent returns the latest public photos. perPage and page of 0 use
// the service defaults.
func (a *PhotosAPI) GetRecent(ctx context.Context, extras []string, perPage, page int) ([]Photo, bool, error) {
	list, found, err := lookupInto[PhotoList](ctx, a.c, "photos.getRecent", client.Params{
		"extras":   extras,
		"per_page": nonZero(perPage),
		"page":     nonZero(page),
	}, "photos")
	if err != nil || !found {
		return nil, false, err
	}
	return list.Photos, true, nil
}

// Search runs flickr.photos.search for one page.
func (a *PhotosAPI) Search(ctx context.Context, params client.Params) (PhotoList, bool, error) {
	return lookupInto[PhotoList](ctx, a.c, "photos.search", params, "photos")
}

// SearchPager returns a pager over flickr.photos.search. In cached mode
// every request asks for pagination.NativePageSize photos so pages of
// any size are served from a few cacheable responses.
func (a *PhotosAPI) SearchPager(params client.Params, perPage int, cached bool) (*pagination.Pager, error) {
	return pagination.NewPager(a.c, "photos.search", params, perPage, cached)
}

// AddTags adds tags to a photo. Double quotes are removed from each tag
// and tags containing spaces are quoted, so every element stays a single
// tag.
func (a *PhotosAPI) AddTags(ctx context.Context, photoID string, tags []string) error {
	_, err := write(ctx, a.c, "photos.addTags", client.Params{
		"photo_id": photoID,
		"tags":     JoinTags(tags),
	})
	return err
}

// JoinTags renders tags in Flickr's space separated tag syntax.
func JoinTags(tags []string) string {
	quoted := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ReplaceAll(tag, `"`, "")
		if strings.Contains(tag, " ") {
			tag = `"` + tag + `"`
		}
		quoted = append(quoted, tag)
	}
	return strings.Join(quoted, " ")
}

// GetSets returns the photosets of userID that hold any of photoIDs.
// An empty userID means the calling user.
func (a *PhotosAPI) GetSets(ctx context.Context, photoIDs []string, userID string) ([]Photoset, bool, error) {
	list, found, err := lookupInto[PhotosetList](ctx, a.c, "photosets.getList", client.Params{
		"user_id":   userID,
		"photo_ids": photoIDs,
	}, "photosets")
	if err != nil || !found {
		return nil, false, err
	}

	var out []Photoset
	for _, set := range list.Photosets {
		for _, id := range photoIDs {
			if set.HasRequestedPhotos.Contains(id) {
				out = append(out, set)
				break
			}
		}
	}
	return out, true, nil
}

// SetMeta sets a photo's title and description.
func (a *PhotosAPI) SetMeta(ctx context.Context, photoID, title, description string) error {
	_, err := write(ctx, a.c, "photos.setMeta", client.Params{
		"photo_id":    photoID,
		"title":       title,
		"description": description,
	})
	return err
}

// Delete removes a photo.
func (a *PhotosAPI) Delete(ctx context.Context, photoID string) error {
	_, err := write(ctx, a.c, "photos.delete", client.Params{"photo_id": photoID})
	return err
}

// nonZero maps 0 to nil so the parameter is not sent.
func nonZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
