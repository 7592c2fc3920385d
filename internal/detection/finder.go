package detection

import (
	"context"
	"image"
)

// Status is the terminal outcome of a detection run.
type Status int

const (
	// StatusCompleted means the whole image was scanned.
	StatusCompleted Status = iota

	// StatusAborted means the run was cancelled. No bounds are reported.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result is the outcome of one detection run.
type Result struct {
	// Status tells whether the scan ran to completion.
	Status Status `json:"status"`

	// Bounds lists one box per sprite in discovery order: row-major order
	// of each sprite's first opaque pixel. Nil when Status is StatusAborted,
	// empty (not nil) when a completed scan found nothing.
	Bounds []Box `json:"bounds"`
}

// ProgressFunc receives the scan-completion ratio in [0, 1). Calls are made
// from the scanning goroutine with non-decreasing values.
type ProgressFunc func(ratio float64)

// Find returns the bounding boxes of all sprites in img.
//
// It blocks until the scan completes. img is never modified.
func Find(img image.Image) ([]Box, error) {
	res, err := FindContext(context.Background(), img, nil)
	if err != nil {
		return nil, err
	}
	return res.Bounds, nil
}

// FindContext scans img like Find, reporting progress and stopping early when
// ctx is cancelled.
//
// Cancellation is not an error: it yields a Result with StatusAborted. The
// only error is ErrInvalidInput, returned before any scanning.
func FindContext(ctx context.Context, img image.Image, progress ProgressFunc) (*Result, error) {
	grid, err := NewAlphaGrid(img)
	if err != nil {
		return nil, err
	}
	return scan(ctx, grid, progress), nil
}

// scan walks grid in row-major order, tracing every opaque pixel of a private
// working copy and clearing each found box so it is never traced twice.
func scan(ctx context.Context, grid *AlphaGrid, progress ProgressFunc) *Result {
	work := grid.WorkingCopy()
	width, height := grid.Width(), grid.Height()
	total := float64(width * height)
	bounds := make([]Box, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !work.IsOpaque(x, y) {
				continue
			}

			select {
			case <-ctx.Done():
				return &Result{Status: StatusAborted}
			default:
			}

			box := Trace(work, x, y)
			bounds = append(bounds, box.Add(grid.Origin()))
			work.ClearRect(box)

			if progress != nil {
				progress(float64(x+y*width) / total)
			}
		}
	}

	return &Result{Status: StatusCompleted, Bounds: bounds}
}
