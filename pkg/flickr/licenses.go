package flickr

import (
	"context"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// LicensesAPI wraps flickr.photos.licenses.*.
type LicensesAPI struct {
	c *client.Client
}

// GetInfo returns the available licenses keyed by license id.
func (a *LicensesAPI) GetInfo(ctx context.Context) (map[int]License, error) {
	var list struct {
		License []License `json:"license"`
	}
	resp, err := a.c.Request(ctx, "photos.licenses.getInfo", nil, false)
	if err != nil {
		return nil, err
	}
	if _, ok := resp.Get("licenses"); !ok {
		return map[int]License{}, nil
	}
	if err := resp.Decode(&list, "licenses"); err != nil {
		return nil, err
	}

	out := make(map[int]License, len(list.License))
	for _, l := range list.License {
		out[int(l.ID)] = l
	}
	return out, nil
}

// SetLicense sets the license of a photo.
func (a *LicensesAPI) SetLicense(ctx context.Context, photoID string, licenseID int) error {
	_, err := write(ctx, a.c, "photos.licenses.setLicense", client.Params{
		"photo_id":   photoID,
		"license_id": licenseID,
	})
	return err
}
