package pagination

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// NativePageSize is the largest page Flickr serves.
	NativePageSize = 500

	// DefaultPerPage applies when NewPager is given perPage <= 0.
	DefaultPerPage = 30
)

// ErrUnsupportedMethod is returned by NewPager for methods it cannot page.
var ErrUnsupportedMethod = errors.New("method does not support paging")

// resultKeys maps each pageable method to the key its result lives under.
var resultKeys = map[string]string{
	"flickr.photos.search":       "photos",
	"flickr.photosets.getPhotos": "photoset",
}

// State is the pager lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher is the interface the Flickr client must implement for paging.
type Fetcher interface {
	Call(ctx context.Context, method string, params client.Params) (client.Response, bool, error)
}

// Pager holds the paging position over one query. It is not safe for
// concurrent use.
type Pager struct {
	fetcher Fetcher
	method  string
	key     string
	params  client.Params
	perPage int
	cached  bool

	page  int
	total int
	pages int
	items []client.Response
	state State

	logger zerolog.Logger
}

// NewPager creates a Pager for method. params are sent with every request;
// page and per_page are managed by the Pager. cached selects native-page
// translation and should match whether fetcher caches responses.
func NewPager(fetcher Fetcher, method string, params client.Params, perPage int, cached bool) (*Pager, error) {
	method = client.QualifyMethod(method)
	key, ok := resultKeys[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}

	switch {
	case perPage <= 0:
		perPage = DefaultPerPage
	case perPage > NativePageSize:
		perPage = NativePageSize
	}

	base := params.Clone()
	delete(base, "page")
	delete(base, "per_page")

	return &Pager{
		fetcher: fetcher,
		method:  method,
		key:     key,
		params:  base,
		perPage: perPage,
		cached:  cached,
		state:   StateIdle,
		logger:  log.With().Str("component", "flickr-pager").Str("method", method).Logger(),
	}, nil
}

// State returns the current lifecycle state.
func (p *Pager) State() State { return p.state }

// Page returns the last requested logical page (0 before the first request).
func (p *Pager) Page() int { return p.page }

// PerPage returns the logical page size.
func (p *Pager) PerPage() int { return p.perPage }

// Total returns the item count reported by the last successful request.
func (p *Pager) Total() int { return p.total }

// Pages returns the number of logical pages.
func (p *Pager) Pages() int { return p.pages }

// Items returns the items of the last loaded page.
func (p *Pager) Items() []client.Response { return p.items }

// Get loads logical page page (1-based). A page of 0 reloads the current
// page, or the first page if nothing was loaded yet. An empty result moves
// the pager to StateExhausted and returns an empty slice without error.
func (p *Pager) Get(ctx context.Context, page int) ([]client.Response, error) {
	if page <= 0 {
		page = p.page
		if page <= 0 {
			page = 1
		}
	}
	p.page = page
	return p.load(ctx, page)
}

// Next advances to the following page and loads it.
func (p *Pager) Next(ctx context.Context) ([]client.Response, error) {
	p.page++
	return p.load(ctx, p.page)
}

// All calls fn for every item, page by page, until the results are
// exhausted, the last page is reached or fn returns an error.
func (p *Pager) All(ctx context.Context, fn func(item client.Response) error) error {
	for {
		items, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if p.state == StateExhausted {
			return nil
		}
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
		if p.page >= p.pages {
			return nil
		}
	}
}

func (p *Pager) load(ctx context.Context, page int) ([]client.Response, error) {
	if !p.cached {
		return p.loadDirect(ctx, page)
	}

	first := (page - 1) * p.perPage
	last := page*p.perPage - 1
	native := first/NativePageSize + 1

	result, photos, err := p.fetch(ctx, native, NativePageSize)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return p.exhaust(true), nil
	}

	p.total = result.Int("total")
	p.pages = ceilDiv(p.total, p.perPage)

	if first/NativePageSize == last/NativePageSize {
		items := window(photos, first%NativePageSize, first%NativePageSize+p.perPage)
		return p.loaded(items, 1), nil
	}

	items := window(photos, first%NativePageSize, len(photos))
	_, next, err := p.fetch(ctx, native+1, NativePageSize)
	if err != nil {
		return nil, err
	}
	items = append(items, window(next, 0, last%NativePageSize+1)...)
	return p.loaded(items, 2), nil
}

func (p *Pager) loadDirect(ctx context.Context, page int) ([]client.Response, error) {
	result, photos, err := p.fetch(ctx, page, p.perPage)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return p.exhaust(true), nil
	}

	p.total = result.Int("total")
	p.pages = result.Int("pages")
	return p.loaded(photos, 1), nil
}

// fetch requests one backend page and returns the result object and its items.
func (p *Pager) fetch(ctx context.Context, page, perPage int) (client.Response, []client.Response, error) {
	params := p.params.Clone()
	params["page"] = page
	params["per_page"] = perPage

	resp, found, err := p.fetcher.Call(ctx, p.method, params)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, nil
	}

	result, ok := resp.Map(p.key)
	if !ok {
		return nil, nil, nil
	}
	list, _ := result.List("photo")

	photos := make([]client.Response, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			photos = append(photos, client.Response(m))
		}
	}

	p.logger.Debug().
		Int("native_page", page).
		Int("per_page", perPage).
		Int("items", len(photos)).
		Msg("Fetched page")
	return result, photos, nil
}

func (p *Pager) loaded(items []client.Response, requests int) []client.Response {
	if len(items) == 0 {
		return p.exhaust(false)
	}
	p.items = items
	p.state = StateLoaded
	p.logger.Debug().
		Int("page", p.page).
		Int("items", len(items)).
		Int("requests", requests).
		Int("total", p.total).
		Msg("Page loaded")
	return items
}

// exhaust marks the pager exhausted. reset clears total and pages, which
// happens when the backend itself returned nothing.
func (p *Pager) exhaust(reset bool) []client.Response {
	if reset {
		p.total = 0
		p.pages = 0
	}
	p.items = []client.Response{}
	p.state = StateExhausted
	return p.items
}

// window returns s[from:to] clamped to the bounds of s.
func window(s []client.Response, from, to int) []client.Response {
	if from >= len(s) {
		return nil
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
