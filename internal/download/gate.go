package download

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds how many transfers of a batch run at once.
//
// Acquire blocks until a permit is free or ctx is done. Every successful
// Acquire must be paired with exactly one Release.
type Gate interface {
	Acquire(ctx context.Context) error
	Release()
}

type semaphoreGate struct {
	sem *semaphore.Weighted
}

// NewGate returns a Gate holding k permits. k below 1 is treated as 1.
func NewGate(k int) Gate {
	if k < 1 {
		k = 1
	}
	return &semaphoreGate{sem: semaphore.NewWeighted(int64(k))}
}

func (g *semaphoreGate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *semaphoreGate) Release() {
	g.sem.Release(1)
}
