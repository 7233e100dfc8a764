package flickr

import (
	"context"
	"net/url"
	"testing"

	"github.com/Sternrassler/flickr-client/internal/testutil"
	"github.com/Sternrassler/flickr-client/pkg/cache"
	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/Sternrassler/flickr-client/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlickr(t *testing.T, store cache.Store) (*Flickr, *testutil.MockFlickr) {
	t.Helper()
	mock := testutil.NewMockFlickr()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig("test-key", "test-secret")
	cfg.ProxyBaseURL = mock.URL()
	cfg.Cache = store
	c, err := client.New(cfg)
	require.NoError(t, err)
	return New(c), mock
}

func TestPhotosGetInfo(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.photos.getInfo", `{"stat":"ok","photo":{
		"id":"2733","secret":"123456","server":"12","farm":1,
		"title":{"_content":"orford_castle_taster"},
		"description":{"_content":"a castle"},
		"owner":{"nsid":"12037949754@N01","username":"Bees"},
		"visibility":{"ispublic":1,"isfriend":0,"isfamily":0},
		"dates":{"posted":"1100897479","taken":"2004-11-19 12:51:19","takengranularity":"0"},
		"views":"42"}}`)

	info, found, err := f.Photos().GetInfo(context.Background(), "2733", "")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2733", info.ID)
	assert.Equal(t, "orford_castle_taster", info.Title)
	assert.Equal(t, "a castle", info.Description)
	assert.Equal(t, "Bees", info.Owner.Username)
	assert.Equal(t, client.FlexInt(1), info.Farm)
	assert.Equal(t, client.FlexInt(42), info.Views)
	assert.Equal(t, PrivacyPublic, info.Privacy())

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "2733", call.Form.Get("photo_id"))
	_, hasSecret := call.Form["secret"]
	assert.False(t, hasSecret, "empty secret must not be sent")
}

func TestPhotosGetInfo_NotFound(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodResponse("flickr.photos.getInfo", testutil.NewFailResponse(1, "Photo not found"))

	_, found, err := f.Photos().GetInfo(context.Background(), "1", "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPhotosGetInfo_OtherServiceError(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodResponse("flickr.photos.getInfo", testutil.NewFailResponse(100, "Invalid API Key"))

	_, found, err := f.Photos().GetInfo(context.Background(), "1", "")
	require.Error(t, err)
	assert.False(t, found)
	code, ok := client.ServiceCode(err)
	assert.True(t, ok)
	assert.Equal(t, 100, code)
}

func TestPhotosGetInfo_MissingKey(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.photos.getInfo", `{"stat":"ok"}`)

	_, found, err := f.Photos().GetInfo(context.Background(), "1", "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPhotosGetLargestSize(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		label string
	}{
		{
			name: "original preferred",
			body: `{"stat":"ok","sizes":{"size":[
				{"label":"Large","width":1024,"height":768},
				{"label":"Original","width":"800","height":"600"},
				{"label":"Large 2048","width":2048,"height":1536}]}}`,
			label: "Original",
		},
		{
			name: "largest area",
			body: `{"stat":"ok","sizes":{"size":[
				{"label":"Square","width":75,"height":75},
				{"label":"Large 1600","width":"1600","height":"1200"},
				{"label":"Large","width":1024,"height":768}]}}`,
			label: "Large 1600",
		},
		{
			name: "tie keeps first",
			body: `{"stat":"ok","sizes":{"size":[
				{"label":"A","width":10,"height":20},
				{"label":"B","width":20,"height":10}]}}`,
			label: "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, mock := newTestFlickr(t, nil)
			mock.SetMethodJSON("flickr.photos.getSizes", tt.body)

			size, found, err := f.Photos().GetLargestSize(context.Background(), "1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.label, size.Label)
		})
	}
}

func TestPhotosGetLargestSize_NoSizes(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.photos.getSizes", `{"stat":"ok","sizes":{"size":[]}}`)

	_, found, err := f.Photos().GetLargestSize(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJoinTags(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{[]string{"a b", `c"d`}, `"a b" cd`},
		{[]string{"one", "two"}, "one two"},
		{[]string{`"quoted phrase"`}, `"quoted phrase"`},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinTags(tt.tags))
	}
}

func TestPhotosAddTags_BypassesCache(t *testing.T) {
	store := cache.NewMemoryStore()
	f, mock := newTestFlickr(t, store)
	mock.SetMethodJSON("flickr.photos.addTags", `{"stat":"ok"}`)

	ctx := context.Background()
	require.NoError(t, f.Photos().AddTags(ctx, "42", []string{"a b", "c"}))
	require.NoError(t, f.Photos().AddTags(ctx, "42", []string{"a b", "c"}))

	assert.Equal(t, 2, mock.CallCount("flickr.photos.addTags"))
	assert.Equal(t, 0, store.Len())

	call, _ := mock.LastCall()
	assert.Equal(t, `"a b" c`, call.Form.Get("tags"))
}

func TestPhotosGetSets(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodFunc("flickr.photosets.getList", func(form url.Values) any {
		return map[string]any{
			"stat": "ok",
			"photosets": map[string]any{
				"page": 1, "pages": 1, "perpage": 500, "total": 3,
				"photoset": []any{
					map[string]any{"id": "s1", "title": map[string]any{"_content": "one"}, "has_requested_photos": []any{"10"}},
					map[string]any{"id": "s2", "title": map[string]any{"_content": "two"}, "has_requested_photos": []any{}},
					map[string]any{"id": "s3", "title": map[string]any{"_content": "three"}, "has_requested_photos": []any{"10", "20"}},
				},
			},
		}
	})

	sets, found, err := f.Photos().GetSets(context.Background(), []string{"10", "20"}, "")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, sets, 2)
	assert.Equal(t, "s1", sets[0].ID)
	assert.Equal(t, "s3", sets[1].ID)
	assert.Equal(t, "three", sets[1].Title)

	call, _ := mock.LastCall()
	assert.Equal(t, "10,20", call.Form.Get("photo_ids"))
}

func TestPhotosSearchPager(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodFunc("flickr.photos.search", func(form url.Values) any {
		return testutil.NewPhotoPage("photos", 0, 500, 1, 500, 20)
	})

	pager, err := f.Photos().SearchPager(client.Params{"text": "castle"}, 10, true)
	require.NoError(t, err)

	items, err := pager.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, pagination.StateLoaded, pager.State())

	call, _ := mock.LastCall()
	assert.Equal(t, "castle", call.Form.Get("text"))
	assert.Equal(t, "500", call.Form.Get("per_page"))
}

func TestPhotosetsWrites(t *testing.T) {
	store := cache.NewMemoryStore()
	f, mock := newTestFlickr(t, store)
	ctx := context.Background()

	mock.SetMethodJSON("flickr.photosets.create", `{"stat":"ok","photoset":{"id":"72157","url":"https://www.flickr.com/photos/me/sets/72157/"}}`)
	set, err := f.Photosets().Create(ctx, "Trip", "", "99")
	require.NoError(t, err)
	assert.Equal(t, "72157", set.ID)
	assert.Equal(t, "https://www.flickr.com/photos/me/sets/72157/", set.URL)

	for _, method := range []string{
		"flickr.photosets.addPhoto", "flickr.photosets.removePhoto", "flickr.photosets.delete",
		"flickr.photosets.editMeta", "flickr.photosets.orderSets", "flickr.photosets.setPrimaryPhoto",
	} {
		mock.SetMethodJSON(method, `{"stat":"ok"}`)
	}
	require.NoError(t, f.Photosets().AddPhoto(ctx, "72157", "1"))
	require.NoError(t, f.Photosets().RemovePhoto(ctx, "72157", "1"))
	require.NoError(t, f.Photosets().EditMeta(ctx, "72157", "Trip 2", "desc"))
	require.NoError(t, f.Photosets().SetPrimaryPhoto(ctx, "72157", "2"))
	require.NoError(t, f.Photosets().OrderSets(ctx, []string{"3", "1", "2"}))
	require.NoError(t, f.Photosets().Delete(ctx, "72157"))

	call, _ := mock.LastCall()
	assert.Equal(t, "flickr.photosets.delete", call.Method)
	assert.Equal(t, 0, store.Len(), "writes must not populate the cache")

	mock.SetMethodResponse("flickr.photosets.addPhoto", testutil.NewFailResponse(3, "Photo already in set"))
	err = f.Photosets().AddPhoto(ctx, "72157", "1")
	require.Error(t, err)
	assert.Equal(t, client.ErrorClassService, client.Classify(err))
}

func TestPhotosetsGetPhotos(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodFunc("flickr.photosets.getPhotos", func(form url.Values) any {
		page := testutil.NewPhotoPage("photoset", 1, 3, 1, 3, 3)
		page["photoset"].(map[string]any)["id"] = form.Get("photoset_id")
		return page
	})

	photos, found, err := f.Photosets().GetPhotos(context.Background(), "777", PhotosOptions{PerPage: 3, Media: "photos"})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "777", photos.ID)
	assert.Len(t, photos.Photos, 3)
	assert.Equal(t, client.FlexInt(3), photos.Total)

	call, _ := mock.LastCall()
	assert.Equal(t, "photos", call.Form.Get("media"))
	_, hasPage := call.Form["page"]
	assert.False(t, hasPage)
}

func TestPeople(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	ctx := context.Background()

	mock.SetMethodJSON("flickr.people.findByUsername", `{"stat":"ok","user":{"id":"12037949632@N01","nsid":"12037949632@N01","username":{"_content":"Stewart"}}}`)
	user, found, err := f.People().FindByUsername(ctx, "Stewart")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Stewart", user.Username)

	mock.SetMethodResponse("flickr.people.findByEmail", testutil.NewFailResponse(1, "User not found"))
	_, found, err = f.People().FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, found)

	mock.SetMethodFunc("flickr.people.getPhotos", func(form url.Values) any {
		return testutil.NewPhotoPage("photos", 1, 2, 1, 100, 2)
	})
	list, found, err := f.People().GetPhotos(ctx, "", PeoplePhotosOptions{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, list.Photos, 2)

	call, _ := mock.LastCall()
	assert.Equal(t, "me", call.Form.Get("user_id"))
	assert.Equal(t, "100", call.Form.Get("per_page"))
	assert.Equal(t, "1", call.Form.Get("page"))
}

func TestURLsLookups(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	ctx := context.Background()

	mock.SetMethodJSON("flickr.urls.getUserProfile", `{"stat":"ok","user":{"nsid":"12037949754@N01","url":"https://www.flickr.com/people/bees/"}}`)
	u, found, err := f.URLs().GetUserProfile(ctx, "12037949754@N01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://www.flickr.com/people/bees/", u)

	mock.SetMethodJSON("flickr.urls.lookupGroup", `{"stat":"ok","group":{"id":"34427465497@N01","groupname":{"_content":"FlickrAPI"}}}`)
	group, found, err := f.URLs().LookupGroup(ctx, "https://www.flickr.com/groups/api/")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "FlickrAPI", group.Name)

	mock.SetMethodResponse("flickr.urls.getGroup", testutil.NewFailResponse(1, "Group not found"))
	_, found, err = f.URLs().GetGroup(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTestEchoAndLogin(t *testing.T) {
	store := cache.NewMemoryStore()
	f, mock := newTestFlickr(t, store)
	ctx := context.Background()

	mock.SetMethodFunc("flickr.test.echo", func(form url.Values) any {
		return map[string]any{"stat": "ok", "foo": map[string]any{"_content": form.Get("foo")}}
	})
	resp, err := f.Test().Echo(ctx, client.Params{"foo": "bar"})
	require.NoError(t, err)
	assert.Equal(t, "bar", resp.String("foo"))
	_, err = f.Test().Echo(ctx, client.Params{"foo": "bar"})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount("flickr.test.echo"))
	assert.Equal(t, 0, store.Len())

	mock.SetMethodResponse("flickr.test.login", testutil.NewOAuthProblemResponse("token_rejected"))
	_, found, err := f.Test().Login(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	mock.SetMethodJSON("flickr.test.login", `{"stat":"ok","user":{"id":"51035@N01","username":{"_content":"someone"}}}`)
	user, found, err := f.Test().Login(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "someone", user.Username)
}

func TestLicenses(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.photos.licenses.getInfo", `{"stat":"ok","licenses":{"license":[
		{"id":0,"name":"All Rights Reserved","url":""},
		{"id":"4","name":"Attribution License","url":"https://creativecommons.org/licenses/by/2.0/"}]}}`)

	licenses, err := f.Licenses().GetInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, licenses, 2)
	assert.Equal(t, "All Rights Reserved", licenses[0].Name)
	assert.Equal(t, "Attribution License", licenses[4].Name)

	mock.SetMethodJSON("flickr.photos.licenses.setLicense", `{"stat":"ok"}`)
	require.NoError(t, f.Licenses().SetLicense(context.Background(), "1", 4))
	call, _ := mock.LastCall()
	assert.Equal(t, "4", call.Form.Get("license_id"))
}

func TestUploadsCheckTickets(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.photos.upload.checkTickets", `{"stat":"ok","uploader":{"ticket":[
		{"id":"128","complete":1,"photoid":"2995"},
		{"id":"129","complete":0},
		{"id":"130","invalid":1}]}}`)

	tickets, err := f.Uploads().CheckTickets(context.Background(), []string{"128", "129", "130"})
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, client.FlexInt(TicketComplete), tickets[0].Complete)
	assert.Equal(t, "2995", tickets[0].PhotoID)
	assert.Equal(t, client.FlexInt(TicketPending), tickets[1].Complete)
	assert.True(t, bool(tickets[2].Invalid))

	call, _ := mock.LastCall()
	assert.Equal(t, "128,129,130", call.Form.Get("tickets"))
}

func TestUploadsCheckTickets_SingleTicket(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.photos.upload.checkTickets", `{"stat":"ok","uploader":{"ticket":{"id":"128","complete":2}}}`)

	tickets, err := f.Uploads().CheckTickets(context.Background(), []string{"128"})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, client.FlexInt(TicketFailed), tickets[0].Complete)
}

func TestCall_Generic(t *testing.T) {
	f, mock := newTestFlickr(t, nil)
	mock.SetMethodJSON("flickr.stats.getTotalViews", `{"stat":"ok","stats":{"total":{"views":"12"}}}`)

	resp, found, err := f.Call(context.Background(), "stats.getTotalViews", nil)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 12, resp.Int("stats", "total", "views"))
}
