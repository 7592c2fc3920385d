package detection

import (
	"context"
	"image"
)

// eventBuffer bounds how far the worker may run ahead of a slow reader.
const eventBuffer = 16

// EventKind identifies a Job notification.
type EventKind int

const (
	// EventProgress carries a scan-completion ratio.
	EventProgress EventKind = iota

	// EventCompleted carries the final bounds. Terminal.
	EventCompleted

	// EventAborted reports cancellation. Terminal; no bounds.
	EventAborted
)

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Event is a notification posted by a running Job.
type Event struct {
	Kind   EventKind
	Ratio  float64 // set for EventProgress
	Bounds []Box   // set for EventCompleted
}

// Job is a detection run on its own goroutine.
//
// A Job posts zero or more EventProgress events with non-decreasing ratios,
// then exactly one EventCompleted or EventAborted, then closes Events. While
// the job is running the worker blocks on a full event buffer, so callers
// must range over Events, call Wait, or Cancel. A cancelled job finishes even
// if Events is never read again; unread progress may then be discarded.
type Job struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc
	result *Result
}

// FindAsync starts scanning img on a new goroutine.
//
// Input is validated before the goroutine starts; ErrInvalidInput is returned
// directly. Cancelling ctx has the same effect as Job.Cancel.
func FindAsync(ctx context.Context, img image.Image) (*Job, error) {
	grid, err := NewAlphaGrid(img)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go j.run(ctx, grid)
	return j, nil
}

func (j *Job) run(ctx context.Context, grid *AlphaGrid) {
	defer j.cancel()

	res := scan(ctx, grid, func(ratio float64) {
		// A cancelled job stops waiting on the reader; the scan loop then
		// aborts at the next opaque pixel.
		select {
		case j.events <- Event{Kind: EventProgress, Ratio: ratio}:
		case <-ctx.Done():
		}
	})

	j.result = res
	final := Event{Kind: EventCompleted, Bounds: res.Bounds}
	if res.Status == StatusAborted {
		final = Event{Kind: EventAborted}
	}
	j.post(final)
	close(j.events)
	close(j.done)
}

// post delivers the terminal event without blocking. If the buffer is full
// of unread progress, those stale events are dropped to make room; run is
// the only sender, so the following send always succeeds.
func (j *Job) post(final Event) {
	select {
	case j.events <- final:
		return
	default:
	}
	for drained := false; !drained; {
		select {
		case <-j.events:
		default:
			drained = true
		}
	}
	j.events <- final
}

// Events returns the job's notification channel.
func (j *Job) Events() <-chan Event {
	return j.events
}

// Cancel requests cooperative cancellation. It is safe to call more than
// once and after the job has finished.
func (j *Job) Cancel() {
	j.cancel()
}

// Done is closed once the terminal event has been posted.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait discards any unread events, blocks until the job finishes and returns
// its result.
func (j *Job) Wait() *Result {
	for range j.events {
	}
	<-j.done
	return j.result
}
