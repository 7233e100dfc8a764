package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/flickr-client/pkg/client"
)

// fakeFetcher serves total items with ids 0..total-1 and records every call.
type fakeFetcher struct {
	total int
	key   string
	err   error
	calls []client.Params
}

func (f *fakeFetcher) Call(_ context.Context, method string, params client.Params) (client.Response, bool, error) {
	f.calls = append(f.calls, params.Clone())
	if f.err != nil {
		return nil, false, f.err
	}

	page := params["page"].(int)
	perPage := params["per_page"].(int)

	photos := []any{}
	for i := (page - 1) * perPage; i < page*perPage && i < f.total; i++ {
		photos = append(photos, map[string]any{"id": fmt.Sprint(i)})
	}
	if f.total == 0 {
		return client.Response{"stat": "ok", f.key: map[string]any{"total": "0", "pages": 0, "photo": []any{}}}, true, nil
	}

	pages := (f.total + perPage - 1) / perPage
	return client.Response{
		"stat": "ok",
		f.key: map[string]any{
			"page":    page,
			"pages":   pages,
			"perpage": perPage,
			"total":   fmt.Sprint(f.total),
			"photo":   photos,
		},
	}, true, nil
}

func ids(items []client.Response) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String("id")
	}
	return out
}

func TestNewPager_Methods(t *testing.T) {
	f := &fakeFetcher{}
	tests := []struct {
		method  string
		wantErr bool
	}{
		{"flickr.photos.search", false},
		{"photos.search", false},
		{"flickr.photosets.getPhotos", false},
		{"flickr.photos.getRecent", true},
		{"flickr.people.getPhotos", true},
	}
	for _, tt := range tests {
		_, err := NewPager(f, tt.method, nil, 30, true)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPager(%s) error = %v, wantErr %v", tt.method, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedMethod) {
			t.Errorf("NewPager(%s) error = %v, want ErrUnsupportedMethod", tt.method, err)
		}
	}
}

func TestNewPager_PerPageBounds(t *testing.T) {
	f := &fakeFetcher{}
	tests := []struct{ in, want int }{
		{0, DefaultPerPage},
		{-3, DefaultPerPage},
		{100, 100},
		{1000, NativePageSize},
	}
	for _, tt := range tests {
		p, _ := NewPager(f, "flickr.photos.search", nil, tt.in, true)
		if p.PerPage() != tt.want {
			t.Errorf("perPage %d -> %d, want %d", tt.in, p.PerPage(), tt.want)
		}
	}
}

func TestPager_CachedSingleNativePage(t *testing.T) {
	f := &fakeFetcher{total: 1200, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", client.Params{"user_id": "me"}, 30, true)

	items, err := p.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if len(f.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(f.calls))
	}
	call := f.calls[0]
	if call["per_page"] != NativePageSize || call["page"] != 1 || call["user_id"] != "me" {
		t.Errorf("call params = %v", call)
	}
	got := ids(items)
	if len(got) != 30 || got[0] != "30" || got[29] != "59" {
		t.Errorf("items = %v, want ids 30..59", got)
	}
	if p.Total() != 1200 || p.Pages() != 40 {
		t.Errorf("total/pages = %d/%d, want 1200/40", p.Total(), p.Pages())
	}
	if p.State() != StateLoaded {
		t.Errorf("State() = %v, want loaded", p.State())
	}
}

// TestPager_CachedStraddle covers page 17 at 30 per page: items 480..509
// span native pages 1 and 2.
func TestPager_CachedStraddle(t *testing.T) {
	f := &fakeFetcher{total: 1200, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", nil, 30, true)

	items, err := p.Get(context.Background(), 17)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if len(f.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(f.calls))
	}
	if f.calls[0]["page"] != 1 || f.calls[1]["page"] != 2 {
		t.Errorf("native pages = %v,%v, want 1,2", f.calls[0]["page"], f.calls[1]["page"])
	}
	got := ids(items)
	if len(got) != 30 {
		t.Fatalf("len(items) = %d, want 30", len(got))
	}
	for i, id := range got {
		if want := fmt.Sprint(480 + i); id != want {
			t.Errorf("items[%d] = %s, want %s", i, id, want)
		}
	}
}

func TestPager_CachedLastPartialPage(t *testing.T) {
	f := &fakeFetcher{total: 95, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", nil, 30, true)

	items, err := p.Get(context.Background(), 4)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := ids(items); len(got) != 5 || got[0] != "90" {
		t.Errorf("items = %v, want ids 90..94", got)
	}
	if p.Pages() != 4 {
		t.Errorf("Pages() = %d, want 4", p.Pages())
	}
}

func TestPager_Uncached(t *testing.T) {
	f := &fakeFetcher{total: 100, key: "photoset"}
	p, _ := NewPager(f, "flickr.photosets.getPhotos", client.Params{"photoset_id": "72157"}, 25, false)

	items, err := p.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if len(f.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(f.calls))
	}
	if f.calls[0]["page"] != 3 || f.calls[0]["per_page"] != 25 {
		t.Errorf("call params = %v, want page 3 per_page 25", f.calls[0])
	}
	if got := ids(items); len(got) != 25 || got[0] != "50" {
		t.Errorf("items = %v", got)
	}
	if p.Total() != 100 || p.Pages() != 4 {
		t.Errorf("total/pages = %d/%d, want 100/4", p.Total(), p.Pages())
	}
}

func TestPager_EmptyResult(t *testing.T) {
	for _, cached := range []bool{true, false} {
		t.Run(fmt.Sprintf("cached=%v", cached), func(t *testing.T) {
			f := &fakeFetcher{total: 0, key: "photos"}
			p, _ := NewPager(f, "flickr.photos.search", nil, 30, cached)

			items, err := p.Next(context.Background())
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if items == nil || len(items) != 0 {
				t.Errorf("items = %v, want empty non-nil slice", items)
			}
			if p.Total() != 0 || p.Pages() != 0 {
				t.Errorf("total/pages = %d/%d, want 0/0", p.Total(), p.Pages())
			}
			if p.State() != StateExhausted {
				t.Errorf("State() = %v, want exhausted", p.State())
			}
		})
	}
}

// absentFetcher returns a response without a result object.
type absentFetcher struct{}

func (absentFetcher) Call(context.Context, string, client.Params) (client.Response, bool, error) {
	return client.Response{"stat": "ok"}, false, nil
}

func TestPager_AbsentResult(t *testing.T) {
	p, _ := NewPager(absentFetcher{}, "flickr.photos.search", nil, 30, true)
	items, err := p.Get(context.Background(), 1)
	if err != nil || len(items) != 0 || p.State() != StateExhausted {
		t.Errorf("Get() = %v, %v, state %v; want empty, nil, exhausted", items, err, p.State())
	}
}

func TestPager_ErrorPropagates(t *testing.T) {
	boom := &client.TransportError{Method: "flickr.photos.search", Err: errors.New("dial tcp")}
	f := &fakeFetcher{err: boom, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", nil, 30, true)

	_, err := p.Next(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Next() error = %v, want transport error", err)
	}
}

func TestPager_GetZeroUsesCurrentPage(t *testing.T) {
	f := &fakeFetcher{total: 100, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", nil, 10, false)

	items, _ := p.Get(context.Background(), 0)
	if p.Page() != 1 || ids(items)[0] != "0" {
		t.Errorf("Get(0) from idle loaded page %d", p.Page())
	}

	_, _ = p.Next(context.Background())
	items, _ = p.Get(context.Background(), 0)
	if p.Page() != 2 || ids(items)[0] != "10" {
		t.Errorf("Get(0) after Next loaded page %d, first id %s", p.Page(), ids(items)[0])
	}
}

func TestPager_All(t *testing.T) {
	f := &fakeFetcher{total: 1234, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", nil, 100, true)

	var seen []string
	err := p.All(context.Background(), func(item client.Response) error {
		seen = append(seen, item.String("id"))
		return nil
	})
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(seen) != 1234 {
		t.Fatalf("All() visited %d items, want 1234", len(seen))
	}
	for i, id := range seen {
		if id != fmt.Sprint(i) {
			t.Fatalf("seen[%d] = %s", i, id)
		}
	}
	if p.Page() != 13 {
		t.Errorf("Page() = %d, want 13", p.Page())
	}
}

func TestPager_AllStopsOnCallbackError(t *testing.T) {
	f := &fakeFetcher{total: 50, key: "photos"}
	p, _ := NewPager(f, "flickr.photos.search", nil, 10, false)

	stop := errors.New("stop")
	n := 0
	err := p.All(context.Background(), func(client.Response) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || n != 3 {
		t.Errorf("All() = %v after %d items, want stop after 3", err, n)
	}
}

func TestState_String(t *testing.T) {
	if StateIdle.String() != "idle" || StateLoaded.String() != "loaded" || StateExhausted.String() != "exhausted" {
		t.Error("unexpected State strings")
	}
}
