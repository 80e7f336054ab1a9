package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/handiism/quran-downloader/internal/catalog/dto"
	"github.com/handiism/quran-downloader/internal/model"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the root of the mp3quran.net v3 API.
const DefaultBaseURL = "https://mp3quran.net/api/v3"

var (
	// ErrNotFound is returned when no moshaf of a reciter covers a chapter,
	// or the chapter number does not exist.
	ErrNotFound = errors.New("no audio found")

	// ErrReciterNotFound is returned for an unknown reciter id.
	ErrReciterNotFound = errors.New("reciter not found")

	// ErrNotInitialized is returned when the catalog is used before
	// Initialize succeeded.
	ErrNotInitialized = errors.New("catalog not initialized")
)

// Fetcher performs JSON queries. *http.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Options configures a Catalog.
type Options struct {
	BaseURL  string
	Language string

	// PreferredMoshaf is tried first when resolving a chapter.
	PreferredMoshaf MoshafType

	// AllowOtherMoshaf permits falling back to any moshaf covering the
	// chapter when the preferred one does not.
	AllowOtherMoshaf bool
}

// DefaultOptions returns options targeting the public API in English,
// preferring Hafs 'an 'Asim (murattal).
func DefaultOptions() Options {
	return Options{
		BaseURL:          DefaultBaseURL,
		Language:         "eng",
		PreferredMoshaf:  MoshafHafsAnAssemMurattal,
		AllowOtherMoshaf: true,
	}
}

// Resource is a resolved download: where to fetch a chapter and the records
// needed to name and tag the file.
type Resource struct {
	URL     string
	Reciter *model.Reciter
	Chapter model.Chapter
	Moshaf  *model.Moshaf
}

// Catalog is a cached view of the reciters served by the API.
//
// Catalog is safe for concurrent use. After Initialize it only touches the
// network for reciters missing from the cached listing.
type Catalog struct {
	fetcher Fetcher
	opts    Options

	mu       sync.RWMutex
	ready    bool
	reciters []*model.Reciter
	byID     map[int]*model.Reciter
	byName   map[string]*model.Reciter

	lookups singleflight.Group
}

// New creates a Catalog that queries the API through fetcher.
func New(fetcher Fetcher, opts Options) *Catalog {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = "eng"
	}
	return &Catalog{
		fetcher: fetcher,
		opts:    opts,
		byID:    make(map[int]*model.Reciter),
		byName:  make(map[string]*model.Reciter),
	}
}

// Initialize fetches the reciter listing and caches it.
func (c *Catalog) Initialize(ctx context.Context) error {
	var resp dto.RecitersResponse
	if err := c.fetcher.GetJSON(ctx, c.recitersURL(0), &resp); err != nil {
		return fmt.Errorf("fetch reciters: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reciters = c.reciters[:0]
	c.byID = make(map[int]*model.Reciter, len(resp.Reciters))
	c.byName = make(map[string]*model.Reciter, len(resp.Reciters))
	for i := range resp.Reciters {
		c.addLocked(resp.Reciters[i].ToReciter())
	}
	c.ready = true

	return nil
}

// Reciters returns every cached reciter in catalog order.
func (c *Catalog) Reciters() []*model.Reciter {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*model.Reciter, len(c.reciters))
	copy(out, c.reciters)
	return out
}

// Reciter returns the cached reciter with the given id.
func (c *Catalog) Reciter(id int) (*model.Reciter, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if r, ok := c.byID[id]; ok {
		return r, nil
	}
	if !c.ready {
		return nil, ErrNotInitialized
	}
	return nil, fmt.Errorf("%w: id %d", ErrReciterNotFound, id)
}

// ReciterByName finds a reciter by name, ignoring case and surrounding space.
func (c *Catalog) ReciterByName(name string) (*model.Reciter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byName[normalizeName(name)]
	return r, ok
}

// FindReciter looks a reciter up by id (a number) or by name.
func (c *Catalog) FindReciter(input string) (*model.Reciter, error) {
	input = strings.TrimSpace(input)
	if id, err := strconv.Atoi(input); err == nil {
		return c.Reciter(id)
	}
	if r, ok := c.ReciterByName(input); ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrReciterNotFound, input)
}

// SortedNames returns the reciter names sorted case-insensitively.
func (c *Catalog) SortedNames() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.reciters))
	for _, r := range c.reciters {
		names = append(names, r.Name)
	}
	c.mu.RUnlock()

	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// ResolveResourceURL returns the audio URL of chapter recited by reciterID.
func (c *Catalog) ResolveResourceURL(ctx context.Context, chapter, reciterID int) (string, error) {
	res, err := c.Resolve(ctx, model.WorkItem{Chapter: chapter, ReciterID: reciterID})
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// Resolve maps a work item to its Resource.
//
// Unknown chapters and chapters no moshaf covers yield ErrNotFound; an
// unknown reciter yields ErrReciterNotFound. A reciter missing from the
// cached listing is looked up through the API once and cached.
func (c *Catalog) Resolve(ctx context.Context, item model.WorkItem) (*Resource, error) {
	chapter, ok := Chapters().ByNumber(item.Chapter)
	if !ok {
		return nil, fmt.Errorf("%w: surah %d does not exist", ErrNotFound, item.Chapter)
	}

	reciter, err := c.Reciter(item.ReciterID)
	if errors.Is(err, ErrReciterNotFound) || errors.Is(err, ErrNotInitialized) {
		reciter, err = c.fetchReciter(ctx, item.ReciterID)
	}
	if err != nil {
		return nil, err
	}

	moshaf := SelectMoshaf(reciter, item.Chapter, c.opts.PreferredMoshaf, c.opts.AllowOtherMoshaf)
	if moshaf == nil {
		return nil, fmt.Errorf("%w for surah %d and reciter %d", ErrNotFound, item.Chapter, item.ReciterID)
	}

	return &Resource{
		URL:     moshaf.ResourceURL(item.Chapter),
		Reciter: reciter,
		Chapter: chapter,
		Moshaf:  moshaf,
	}, nil
}

// fetchReciter queries a single reciter and adds it to the cache.
// Concurrent lookups of the same id share one request.
func (c *Catalog) fetchReciter(ctx context.Context, id int) (*model.Reciter, error) {
	ch := c.lookups.DoChan(strconv.Itoa(id), func() (any, error) {
		if r, err := c.Reciter(id); err == nil {
			return r, nil
		}
		return c.queryReciter(ctx, id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Reciter), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Catalog) queryReciter(ctx context.Context, id int) (*model.Reciter, error) {
	var resp dto.RecitersResponse
	if err := c.fetcher.GetJSON(ctx, c.recitersURL(id), &resp); err != nil {
		return nil, fmt.Errorf("fetch reciter %d: %w", id, err)
	}
	if len(resp.Reciters) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrReciterNotFound, id)
	}

	reciter := resp.Reciters[0].ToReciter()

	c.mu.Lock()
	if cached, ok := c.byID[reciter.ID]; ok {
		reciter = cached
	} else {
		c.addLocked(reciter)
	}
	c.mu.Unlock()

	return reciter, nil
}

func (c *Catalog) addLocked(r *model.Reciter) {
	c.reciters = append(c.reciters, r)
	c.byID[r.ID] = r
	c.byName[normalizeName(r.Name)] = r
}

func (c *Catalog) recitersURL(reciterID int) string {
	q := url.Values{}
	q.Set("language", c.opts.Language)
	if reciterID > 0 {
		q.Set("reciter", strconv.Itoa(reciterID))
	}
	return strings.TrimRight(c.opts.BaseURL, "/") + "/reciters?" + q.Encode()
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
