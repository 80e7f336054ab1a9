package model

import "fmt"

// WorkItem is one chapter to fetch for one reciter.
//
// Items are values: a batch never mutates them, and the same item may be
// submitted again in a later batch.
type WorkItem struct {
	Chapter   int
	ReciterID int
}

func (w WorkItem) String() string {
	return fmt.Sprintf("surah %d (reciter %d)", w.Chapter, w.ReciterID)
}

// OutcomeStatus tells whether a transfer succeeded.
type OutcomeStatus int

const (
	OutcomeSuccess OutcomeStatus = iota
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// Outcome is the result of transferring a WorkItem.
type Outcome struct {
	Item   WorkItem
	Status OutcomeStatus

	// Path is the file written on success.
	Path string

	// Attempts is the number of attempts made. A failure before the
	// first attempt (e.g. a cancelled batch) reports zero.
	Attempts int

	// Err is the reason of a failure; nil on success.
	Err error
}

// Succeeded returns a success outcome for item.
func Succeeded(item WorkItem, path string, attempts int) Outcome {
	return Outcome{Item: item, Status: OutcomeSuccess, Path: path, Attempts: attempts}
}

// Failed returns a failure outcome for item.
func Failed(item WorkItem, attempts int, err error) Outcome {
	return Outcome{Item: item, Status: OutcomeFailed, Attempts: attempts, Err: err}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.Status == OutcomeSuccess
}
