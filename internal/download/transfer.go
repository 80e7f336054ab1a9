package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/handiism/quran-downloader/internal/catalog"
	"github.com/handiism/quran-downloader/internal/http"
	"github.com/handiism/quran-downloader/internal/model"
)

// Resolver maps a work item to the resource to download.
// *catalog.Catalog satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, item model.WorkItem) (*catalog.Resource, error)
}

// Fetcher downloads a URL to a file. *http.Client satisfies it.
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Tagger writes metadata to a downloaded chapter. *audio.Tagger satisfies it.
type Tagger interface {
	SaveTags(path string, reciter *model.Reciter, chapter model.Chapter) error
}

// RetryPolicy computes the wait between attempts: Cooldown * Exponent^i
// after failed attempt i (0-based).
type RetryPolicy struct {
	Cooldown time.Duration
	Exponent float64
}

// DefaultRetryPolicy waits 1s, 2s, 4s, ...
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Cooldown: time.Second, Exponent: 2}
}

// Delay returns the wait after failed attempt i.
func (p RetryPolicy) Delay(i int) time.Duration {
	return time.Duration(float64(p.Cooldown) * math.Pow(p.Exponent, float64(i)))
}

// fatalError marks an error that must not be retried, whatever it wraps.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Transferer downloads a single work item with retries.
//
// A Transferer holds no per-item state and may be shared by any number of
// goroutines.
type Transferer struct {
	resolver Resolver
	fetcher  Fetcher
	tagger   Tagger
	policy   RetryPolicy
	events   emitter

	// wait sleeps between attempts. Replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewTransferer creates a Transferer. tagger may be nil to skip tagging.
func NewTransferer(resolver Resolver, fetcher Fetcher, tagger Tagger, policy RetryPolicy, onProgress func(ProgressEvent)) *Transferer {
	return &Transferer{
		resolver: resolver,
		fetcher:  fetcher,
		tagger:   tagger,
		policy:   policy,
		events:   onProgress,
		wait:     sleep,
	}
}

// Transfer resolves item, downloads it under root and tags it.
//
// Up to maxAttempts attempts are made (at least one). Only transient
// transport failures are retried; resolution, file system and tagging
// errors fail the item at once. Transfer never returns an error: every
// path ends in an Outcome.
func (t *Transferer) Transfer(ctx context.Context, item model.WorkItem, root string, maxAttempts int) model.Outcome {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var res *catalog.Resource
	for attempt := 0; ; attempt++ {
		path, err := t.attempt(ctx, item, root, &res)
		if err == nil {
			t.events.emit(LevelVerbose, fmt.Sprintf("Downloaded: %s", path))
			return model.Succeeded(item, path, attempt+1)
		}

		if !t.retryable(ctx, err) || attempt == maxAttempts-1 {
			t.events.emit(LevelError, fmt.Sprintf("Failed %s: %v", t.label(item, res), err))
			return model.Failed(item, attempt+1, err)
		}

		delay := t.policy.Delay(attempt)
		t.events.emit(LevelWarning, fmt.Sprintf("Retry %d/%d for %s in %s: %v",
			attempt+1, maxAttempts-1, t.label(item, res), delay, err))

		if werr := t.wait(ctx, delay); werr != nil {
			return model.Failed(item, attempt+1, fmt.Errorf("%w (last error: %v)", werr, err))
		}
	}
}

// attempt performs one resolve-download-tag cycle. A resolved resource is
// kept in *res across attempts.
func (t *Transferer) attempt(ctx context.Context, item model.WorkItem, root string, res **catalog.Resource) (string, error) {
	if *res == nil {
		r, err := t.resolver.Resolve(ctx, item)
		if err != nil {
			return "", err
		}
		*res = r
	}
	r := *res

	path := model.ChapterPath(root, r.Reciter, r.Chapter)
	if err := t.fetcher.DownloadFile(ctx, r.URL, path, nil); err != nil {
		return "", err
	}

	if t.tagger != nil {
		if err := t.tagger.SaveTags(path, r.Reciter, r.Chapter); err != nil {
			return "", &fatalError{fmt.Errorf("tag %s: %w", path, err)}
		}
	}

	return path, nil
}

func (t *Transferer) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var fatal *fatalError
	if errors.As(err, &fatal) {
		return false
	}
	if errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, catalog.ErrReciterNotFound) ||
		errors.Is(err, catalog.ErrNotInitialized) {
		return false
	}
	return http.IsRetryable(err)
}

func (t *Transferer) label(item model.WorkItem, res *catalog.Resource) string {
	if res == nil {
		return item.String()
	}
	return fmt.Sprintf("%s (%s)", res.Chapter.Name, res.Reciter.Name)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
