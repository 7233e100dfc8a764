package flickr

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// Size suffix letters for ImageURL.
const (
	SizeSmallSquare = "s" // 75x75
	SizeLargeSquare = "q" // 150x150
	SizeThumbnail   = "t" // 100 on longest side
	SizeSmall240    = "m"
	SizeSmall320    = "n"
	SizeMedium500   = "-"
	SizeMedium640   = "z"
	SizeMedium800   = "c"
	SizeLarge1024   = "b"
	SizeLarge1600   = "h"
	SizeLarge2048   = "k"
	SizeOriginal    = "o"
)

// sizeSuffixes maps the long size names to URL suffixes.
var sizeSuffixes = map[string]string{
	"square":     "_s",
	"square_75":  "_s",
	"square_150": "_q",
	"thumbnail":  "_t",
	"small":      "_m",
	"small_240":  "_m",
	"small_320":  "_n",
	"medium":     "",
	"medium_500": "",
	"medium_640": "_z",
	"medium_800": "_c",
	"large":      "_b",
	"large_1024": "_b",
	"large_1600": "_h",
	"large_2048": "_k",
	"original":   "_o",
}

func sizeSuffix(size string) string {
	if s, ok := sizeSuffixes[size]; ok {
		return s
	}
	for _, s := range sizeSuffixes {
		if s != "" && s == "_"+size {
			return s
		}
	}
	return ""
}

// ImageURL builds the static image URL of photo at size. size is either a
// suffix letter such as SizeLarge1024 or a long name such as "large_1600";
// anything else gives the medium 500 rendition. SizeOriginal uses the
// original secret and format, which Flickr returns only to callers allowed
// to see the original.
func ImageURL(photo Photo, size string) string {
	size = strings.ToLower(size)
	base := fmt.Sprintf("https://farm%d.staticflickr.com/%s/%s", photo.Farm, photo.Server, photo.ID)
	if size == SizeOriginal {
		return fmt.Sprintf("%s_%s_o.%s", base, photo.OriginalSecret, photo.OriginalFormat)
	}
	return fmt.Sprintf("%s_%s%s.jpg", base, photo.Secret, sizeSuffix(size))
}

// URLsAPI wraps flickr.urls.*.
type URLsAPI struct {
	c *client.Client
}

// ImageURL is the package-level ImageURL.
func (a *URLsAPI) ImageURL(photo Photo, size string) string {
	return ImageURL(photo, size)
}

// ShortURL is the package-level ShortURL.
func (a *URLsAPI) ShortURL(photoID string) (string, error) {
	return ShortURL(photoID)
}

// GetGroup returns the URL of a group's pool page.
func (a *URLsAPI) GetGroup(ctx context.Context, groupID string) (string, bool, error) {
	return a.url(ctx, "urls.getGroup", client.Params{"group_id": groupID}, "group")
}

// GetUserPhotos returns the URL of a user's photostream. An empty userID
// means the calling user.
func (a *URLsAPI) GetUserPhotos(ctx context.Context, userID string) (string, bool, error) {
	return a.url(ctx, "urls.getUserPhotos", client.Params{"user_id": userID}, "user")
}

// GetUserProfile returns the URL of a user's profile. An empty userID
// means the calling user.
func (a *URLsAPI) GetUserProfile(ctx context.Context, userID string) (string, bool, error) {
	return a.url(ctx, "urls.getUserProfile", client.Params{"user_id": userID}, "user")
}

// LookupGallery resolves a gallery URL. The whole response is returned
// since the gallery shape varies with the caller's permissions.
func (a *URLsAPI) LookupGallery(ctx context.Context, galleryURL string) (client.Response, bool, error) {
	return lookup(ctx, a.c, "urls.lookupGallery", client.Params{"url": galleryURL})
}

// LookupGroup resolves a group URL.
func (a *URLsAPI) LookupGroup(ctx context.Context, groupURL string) (Group, bool, error) {
	return lookupInto[Group](ctx, a.c, "urls.lookupGroup", client.Params{"url": groupURL}, "group")
}

// LookupUser resolves a photostream or profile URL.
func (a *URLsAPI) LookupUser(ctx context.Context, userURL string) (User, bool, error) {
	return lookupInto[User](ctx, a.c, "urls.lookupUser", client.Params{"url": userURL}, "user")
}

func (a *URLsAPI) url(ctx context.Context, method string, params client.Params, key string) (string, bool, error) {
	obj, found, err := lookup(ctx, a.c, method, params, key)
	if err != nil || !found {
		return "", false, err
	}
	u := obj.String("url")
	return u, u != "", nil
}
