// Package pagination walks Flickr's search-like endpoints page by page.
//
// Flickr serves at most 500 items per request. When responses are cached,
// a Pager always asks for full 500-item native pages and slices the
// caller's logical page out of them, so paging through results at a
// small page size costs one request per 500 items and repeated pages are
// served from the cache. A logical page that straddles two native pages
// costs two requests. Without a cache the Pager requests the caller's
// page size directly.
//
// Example usage:
//
//	pager, err := pagination.NewPager(c, "flickr.photos.search",
//		client.Params{"user_id": "12037949754@N01"}, 30, c.CacheEnabled())
//	if err != nil {
//		return err
//	}
//	for {
//		photos, err := pager.Next(ctx)
//		if err != nil {
//			return err
//		}
//		if pager.State() == pagination.StateExhausted {
//			break
//		}
//		// use photos
//	}
//
// Supported methods are flickr.photos.search and flickr.photosets.getPhotos.
package pagination
