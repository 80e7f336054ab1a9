package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	qhttp "github.com/handiism/quran-downloader/internal/http"
	"github.com/handiism/quran-downloader/internal/model"
)

const recitersJSON = `{"reciters":[
	{"id":1,"name":"Mishary Alafasi","letter":"M","moshaf":[
		{"id":10,"name":"Mojawwad","server":"https://server-b.example/afs/","surah_total":114,"moshaf_type":222,"surah_list":"1,2,3,50,114"},
		{"id":11,"name":"Hafs Murattal","server":"https://server-a.example/afs/","surah_total":3,"moshaf_type":11,"surah_list":"1,2,3"}
	]},
	{"id":2,"name":"abdulbasit","letter":"A","moshaf":[
		{"id":20,"name":"Warsh","server":"https://server-c.example/basit/","surah_total":1,"moshaf_type":21,"surah_list":"1"}
	]}
]}`

// fakeFetcher serves canned JSON by URL substring and counts calls.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

func (f *fakeFetcher) GetJSON(ctx context.Context, url string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)

	for key, body := range f.responses {
		if strings.Contains(url, key) {
			return json.Unmarshal([]byte(body), v)
		}
	}
	return &qhttp.StatusError{Code: 404, Status: "404 Not Found", URL: url}
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestCatalog(t *testing.T, opts Options) (*Catalog, *fakeFetcher) {
	t.Helper()
	f := &fakeFetcher{responses: map[string]string{"language=eng": recitersJSON}}
	c := New(f, opts)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return c, f
}

func TestCatalog_Initialize(t *testing.T) {
	c, _ := newTestCatalog(t, DefaultOptions())

	if got := len(c.Reciters()); got != 2 {
		t.Fatalf("Reciters() returned %d, want 2", got)
	}

	names := c.SortedNames()
	if names[0] != "abdulbasit" || names[1] != "Mishary Alafasi" {
		t.Errorf("SortedNames() = %v, want case-insensitive order", names)
	}

	r, ok := c.ReciterByName("  mishary ALAFASI ")
	if !ok || r.ID != 1 {
		t.Errorf("ReciterByName() = %v, %v", r, ok)
	}
	if len(r.Moshafs) != 2 || len(r.Moshafs[0].Surahs) != 5 {
		t.Errorf("moshafs not converted: %+v", r.Moshafs)
	}
}

func TestCatalog_ResolveResourceURL(t *testing.T) {
	tests := []struct {
		name       string
		allowOther bool
		chapter    int
		reciter    int
		want       string
		wantErr    error
	}{
		{"preferred moshaf", true, 2, 1, "https://server-a.example/afs/002.mp3", nil},
		{"fallback moshaf", true, 50, 1, "https://server-b.example/afs/050.mp3", nil},
		{"fallback disabled", false, 50, 1, "", ErrNotFound},
		{"no preferred moshaf at all", true, 1, 2, "https://server-c.example/basit/001.mp3", nil},
		{"chapter not covered", true, 99, 1, "", ErrNotFound},
		{"chapter out of range", true, 115, 1, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.AllowOtherMoshaf = tt.allowOther
			c, _ := newTestCatalog(t, opts)

			got, err := c.ResolveResourceURL(context.Background(), tt.chapter, tt.reciter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveResourceURL() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveResourceURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveResourceURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalog_ResolveNotFoundMakesNoRequest(t *testing.T) {
	c, f := newTestCatalog(t, DefaultOptions())
	before := f.callCount()

	_, err := c.ResolveResourceURL(context.Background(), 99, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if f.callCount() != before {
		t.Errorf("resolution made %d requests, want 0", f.callCount()-before)
	}
}

func TestCatalog_ResolveFetchesUnknownReciter(t *testing.T) {
	c, f := newTestCatalog(t, DefaultOptions())
	f.responses = map[string]string{
		"reciter=7": `{"reciters":[{"id":7,"name":"Late Addition","moshaf":[{"server":"https://s.example/late/","moshaf_type":11,"surah_list":"1,2"}]}]}`,
		"reciter=8": `{"reciters":[]}`,
	}

	res, err := c.Resolve(context.Background(), workItem(1, 7))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Reciter.Name != "Late Addition" || res.Chapter.Name != "Al-Fatiha" {
		t.Errorf("Resolve() = %+v", res)
	}

	// Cached now: a second resolve does not query again.
	calls := f.callCount()
	if _, err := c.Resolve(context.Background(), workItem(2, 7)); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if f.callCount() != calls {
		t.Error("cached reciter fetched again")
	}

	if _, err := c.Resolve(context.Background(), workItem(1, 8)); !errors.Is(err, ErrReciterNotFound) {
		t.Errorf("Resolve() error = %v, want ErrReciterNotFound", err)
	}
}

// gatedFetcher holds every request until release is closed.
type gatedFetcher struct {
	release chan struct{}
	calls   atomic.Int32
}

func (f *gatedFetcher) GetJSON(ctx context.Context, url string, v any) error {
	f.calls.Add(1)
	<-f.release
	return json.Unmarshal([]byte(`{"reciters":[{"id":7,"name":"Late Addition","moshaf":[{"server":"https://s.example/late/","moshaf_type":11,"surah_list":"1,2,3"}]}]}`), v)
}

func TestCatalog_ConcurrentResolveSharesLookup(t *testing.T) {
	f := &gatedFetcher{release: make(chan struct{})}
	c := New(f, DefaultOptions())

	const workers = 8
	var wg sync.WaitGroup
	reciters := make(chan *model.Reciter, workers)
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Resolve(context.Background(), workItem(i%3+1, 7))
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			reciters <- res.Reciter
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(f.release)
	wg.Wait()
	close(reciters)

	if n := f.calls.Load(); n != 1 {
		t.Errorf("reciter fetched %d times, want 1", n)
	}
	var first *model.Reciter
	for r := range reciters {
		if first == nil {
			first = r
		} else if r != first {
			t.Error("callers got different reciter records")
		}
	}
	if got := len(c.Reciters()); got != 1 {
		t.Errorf("Reciters() returned %d, want 1", got)
	}

	// Cached before Initialize: found without another request.
	if r, err := c.Reciter(7); err != nil || r != first {
		t.Errorf("Reciter() = %v, %v", r, err)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("reciter fetched %d times after caching, want 1", n)
	}
}

func TestCatalog_ReciterBeforeInitialize(t *testing.T) {
	c := New(&fakeFetcher{}, DefaultOptions())
	if _, err := c.Reciter(1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Reciter() error = %v, want ErrNotInitialized", err)
	}
}

func TestCatalog_WithHTTPClient(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/reciters" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		io.WriteString(w, recitersJSON)
	}))
	defer srv.Close()

	opts := DefaultOptions()
	opts.BaseURL = srv.URL + "/api/v3/"
	c := New(qhttp.NewClient(qhttp.DefaultOptions()), opts)

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if gotQuery != "language=eng" {
		t.Errorf("query = %q, want %q", gotQuery, "language=eng")
	}
	if len(c.Reciters()) != 2 {
		t.Errorf("Reciters() = %d, want 2", len(c.Reciters()))
	}
}

func TestCatalog_FindReciter(t *testing.T) {
	c, _ := newTestCatalog(t, DefaultOptions())

	tests := []struct {
		input   string
		wantID  int
		wantErr bool
	}{
		{"1", 1, false},
		{" 2 ", 2, false},
		{"Abdulbasit", 2, false},
		{"99", 0, true},
		{"nobody", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := c.FindReciter(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrReciterNotFound) {
					t.Errorf("FindReciter(%q) error = %v, want ErrReciterNotFound", tt.input, err)
				}
				return
			}
			if err != nil || r.ID != tt.wantID {
				t.Errorf("FindReciter(%q) = %v, %v; want id %d", tt.input, r, err, tt.wantID)
			}
		})
	}
}
