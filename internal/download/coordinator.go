package download

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/handiism/quran-downloader/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 5
	DefaultMaxAttempts = 3
)

// TransferUnit downloads one item. *Transferer satisfies it.
type TransferUnit interface {
	Transfer(ctx context.Context, item model.WorkItem, root string, maxAttempts int) model.Outcome
}

// ProgressReporter is ticked once per finished item.
//
// Tick calls are serialized by the coordinator.
type ProgressReporter interface {
	Tick(outcome model.Outcome)
}

// ReporterFunc adapts a function to ProgressReporter.
type ReporterFunc func(outcome model.Outcome)

func (f ReporterFunc) Tick(outcome model.Outcome) { f(outcome) }

// BatchOptions configures one RunBatch call.
type BatchOptions struct {
	// Root is the download directory.
	Root string

	// Concurrency is the gate capacity. Defaults to DefaultConcurrency.
	Concurrency int

	// MaxAttempts per item. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// Reporter is optional.
	Reporter ProgressReporter
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Concurrency < 1 {
		o.Concurrency = DefaultConcurrency
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// BatchResult is the summary of one batch.
type BatchResult struct {
	ID        uuid.UUID
	Total     int
	Succeeded int

	// Failed holds the items that did not succeed, in no particular order.
	// Passing it to RunBatch again retries them.
	Failed []model.WorkItem

	// Outcomes holds one outcome per item, in completion order.
	Outcomes []model.Outcome
}

// OK reports whether every item succeeded.
func (r *BatchResult) OK() bool {
	return len(r.Failed) == 0
}

// Coordinator runs batches of work items through a TransferUnit.
//
// A Coordinator keeps no state between batches.
type Coordinator struct {
	unit    TransferUnit
	events  emitter
	newGate func(k int) Gate
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(unit TransferUnit, onProgress func(ProgressEvent)) *Coordinator {
	return &Coordinator{
		unit:    unit,
		events:  onProgress,
		newGate: NewGate,
	}
}

// RunBatch transfers every item, at most opts.Concurrency at a time, and
// waits for all of them. Each item yields exactly one outcome, so
// Succeeded + len(Failed) == len(items).
//
// Once ctx is done, items still waiting for the gate fail with the context
// error.
func (c *Coordinator) RunBatch(ctx context.Context, items []model.WorkItem, opts BatchOptions) *BatchResult {
	opts = opts.withDefaults()
	result := &BatchResult{
		ID:       uuid.New(),
		Total:    len(items),
		Outcomes: make([]model.Outcome, 0, len(items)),
	}

	c.events.emit(LevelVerbose, fmt.Sprintf("Batch %s: %d item(s), %d at a time", result.ID, len(items), opts.Concurrency))

	var mu sync.Mutex
	record := func(o model.Outcome) {
		mu.Lock()
		defer mu.Unlock()

		result.Outcomes = append(result.Outcomes, o)
		if o.OK() {
			result.Succeeded++
		} else {
			result.Failed = append(result.Failed, o.Item)
		}
		if opts.Reporter != nil {
			opts.Reporter.Tick(o)
		}
	}

	gate := c.newGate(opts.Concurrency)

	// Tasks never return errors; the group only waits.
	var g errgroup.Group
	for _, item := range items {
		item := item
		g.Go(func() error {
			record(c.run(ctx, gate, item, opts))
			return nil
		})
	}
	_ = g.Wait()

	return result
}

// run holds a gate permit for the duration of one transfer. A panicking
// transfer becomes a failed outcome.
func (c *Coordinator) run(ctx context.Context, gate Gate, item model.WorkItem, opts BatchOptions) (out model.Outcome) {
	if err := gate.Acquire(ctx); err != nil {
		return model.Failed(item, 0, err)
	}
	defer gate.Release()

	defer func() {
		if r := recover(); r != nil {
			c.events.emit(LevelError, fmt.Sprintf("Panic while downloading %s: %v", item, r))
			c.events.emit(LevelVerbose, string(debug.Stack()))
			out = model.Failed(item, 0, fmt.Errorf("panic: %v", r))
		}
	}()

	return c.unit.Transfer(ctx, item, opts.Root, opts.MaxAttempts)
}
