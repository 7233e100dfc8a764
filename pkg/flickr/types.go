package flickr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// Photo is the photo shape returned in lists (search, getRecent, photoset
// pages) and the common part of PhotoInfo.
type Photo struct {
	ID             string          `json:"id"`
	Owner          string          `json:"owner,omitempty"`
	Secret         string          `json:"secret"`
	Server         string          `json:"server"`
	Farm           client.FlexInt  `json:"farm"`
	Title          string          `json:"title"`
	IsPublic       client.FlexBool `json:"ispublic"`
	IsFriend       client.FlexBool `json:"isfriend"`
	IsFamily       client.FlexBool `json:"isfamily"`
	OriginalSecret string          `json:"originalsecret,omitempty"`
	OriginalFormat string          `json:"originalformat,omitempty"`
	License        string          `json:"license,omitempty"`
	DateTaken      string          `json:"datetaken,omitempty"`
	Tags           string          `json:"tags,omitempty"`
}

// Privacy returns the photo's privacy level.
func (p Photo) Privacy() int {
	return PrivacyLevel(bool(p.IsPublic), bool(p.IsFriend), bool(p.IsFamily))
}

// PhotoInfo is the result of flickr.photos.getInfo.
type PhotoInfo struct {
	Photo
	Owner       Owner          `json:"owner"`
	Description string         `json:"description"`
	Visibility  Visibility     `json:"visibility"`
	Dates       PhotoDates     `json:"dates"`
	Views       client.FlexInt `json:"views"`
	Media       string         `json:"media"`
	TagList     struct {
		Tag []Tag `json:"tag"`
	} `json:"tags"`
	URLs struct {
		URL []PhotoURL `json:"url"`
	} `json:"urls"`
}

// Privacy returns the privacy level from the visibility block.
func (p PhotoInfo) Privacy() int {
	return PrivacyLevel(bool(p.Visibility.IsPublic), bool(p.Visibility.IsFriend), bool(p.Visibility.IsFamily))
}

type Owner struct {
	NSID     string `json:"nsid"`
	Username string `json:"username"`
	Realname string `json:"realname"`
	Location string `json:"location"`
}

type Visibility struct {
	IsPublic client.FlexBool `json:"ispublic"`
	IsFriend client.FlexBool `json:"isfriend"`
	IsFamily client.FlexBool `json:"isfamily"`
}

type PhotoDates struct {
	Posted           string         `json:"posted"`
	Taken            string         `json:"taken"`
	TakenGranularity client.FlexInt `json:"takengranularity"`
	LastUpdate       string         `json:"lastupdate"`
}

type Tag struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Raw    string `json:"raw"`
	Text   string `json:"_content"`
}

type PhotoURL struct {
	Type string `json:"type"`
	URL  string `json:"_content"`
}

// PhotoList is one page of photos.
type PhotoList struct {
	Page    client.FlexInt `json:"page"`
	Pages   client.FlexInt `json:"pages"`
	PerPage client.FlexInt `json:"perpage"`
	Total   client.FlexInt `json:"total"`
	Photos  []Photo        `json:"photo"`
}

// Size is one rendition from flickr.photos.getSizes.
type Size struct {
	Label  string         `json:"label"`
	Width  client.FlexInt `json:"width"`
	Height client.FlexInt `json:"height"`
	Source string         `json:"source"`
	URL    string         `json:"url"`
	Media  string         `json:"media"`
}

// Area is Width*Height.
func (s Size) Area() int64 {
	return int64(s.Width) * int64(s.Height)
}

// Photoset is a Flickr album.
type Photoset struct {
	ID          string         `json:"id"`
	Owner       string         `json:"owner,omitempty"`
	Primary     string         `json:"primary"`
	Secret      string         `json:"secret"`
	Server      string         `json:"server"`
	Farm        client.FlexInt `json:"farm"`
	Photos      client.FlexInt `json:"photos"`
	Videos      client.FlexInt `json:"videos"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	// HasRequestedPhotos lists the ids given in photo_ids that are in
	// the set. Flickr sends it only when photo_ids was passed.
	HasRequestedPhotos stringList `json:"has_requested_photos,omitempty"`
}

// PhotosetList is one page of photosets.
type PhotosetList struct {
	Page      client.FlexInt `json:"page"`
	Pages     client.FlexInt `json:"pages"`
	PerPage   client.FlexInt `json:"perpage"`
	Total     client.FlexInt `json:"total"`
	Photosets []Photoset     `json:"photoset"`
}

// PhotosetPhotos is one page of flickr.photosets.getPhotos.
type PhotosetPhotos struct {
	ID      string         `json:"id"`
	Owner   string         `json:"owner"`
	Title   string         `json:"title"`
	Page    client.FlexInt `json:"page"`
	Pages   client.FlexInt `json:"pages"`
	PerPage client.FlexInt `json:"perpage"`
	Total   client.FlexInt `json:"total"`
	Photos  []Photo        `json:"photo"`
}

// User is the user shape of the people and urls lookups.
type User struct {
	ID       string `json:"id"`
	NSID     string `json:"nsid"`
	Username string `json:"username"`
	URL      string `json:"url,omitempty"`
}

// Group is the group shape of the urls lookups.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"groupname,omitempty"`
	URL  string `json:"url,omitempty"`
}

// License is one entry of flickr.photos.licenses.getInfo.
type License struct {
	ID   client.FlexInt `json:"id"`
	Name string         `json:"name"`
	URL  string         `json:"url"`
}

// Ticket is the status of an asynchronous upload.
type Ticket struct {
	ID       string          `json:"id"`
	Complete client.FlexInt  `json:"complete"` // 0 pending, 1 done, 2 failed
	Invalid  client.FlexBool `json:"invalid"`
	PhotoID  string          `json:"photoid"`
	Imported client.FlexInt  `json:"imported"`
}

// stringList decodes an array of strings or numbers, or a comma separated
// string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = splitList(v)
	case []any:
		out := make(stringList, 0, len(v))
		for _, item := range v {
			if s, ok := client.FormatValue(item); ok {
				out = append(out, s)
			}
		}
		*l = out
	default:
		return fmt.Errorf("stringList: unexpected %T", raw)
	}
	return nil
}

// Contains reports whether id is in l.
func (l stringList) Contains(id string) bool {
	for _, s := range l {
		if s == id {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
