package detection

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrInvalidInput is returned for nil or zero-area images.
	ErrInvalidInput = errors.New("invalid input image")

	// ErrOutOfRange is returned by the unchecked accessors for coordinates
	// outside the grid.
	ErrOutOfRange = errors.New("pixel out of range")
)

// AlphaView is the part of a grid the tracer needs.
type AlphaView interface {
	IsOpaque(x, y int) bool
	IsOutOfBounds(x, y int) bool
}

// AlphaGrid is a read-only copy of an image's alpha channel.
//
// Coordinates are 0-based relative to the image's bounds origin: (0,0) is
// img.Bounds().Min. Only alpha is kept; color channels are never consulted.
type AlphaGrid struct {
	width  int
	height int
	origin image.Point
	pix    []uint8
}

// NewAlphaGrid extracts the alpha channel of img.
//
// Images without an alpha channel (JPEG, opaque paletted images) produce a
// fully opaque grid. Alpha is read at 16 bits and stored as its high byte,
// except that any non-zero 16-bit alpha is stored as at least 1, so a pixel
// is opaque exactly when its source alpha is non-zero.
//
// A nil image, including a typed nil pointer of a standard image type, fails
// with ErrInvalidInput.
func NewAlphaGrid(img image.Image) (*AlphaGrid, error) {
	if isNilImage(img) {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidInput, bounds)
	}

	w, h := bounds.Dx(), bounds.Dy()
	alpha := image.NewAlpha16(image.Rect(0, 0, w, h))
	draw.Copy(alpha, image.Point{}, img, bounds, draw.Src, nil)

	// A freshly allocated image.Alpha16 has Stride == 2*width, big-endian.
	pix := make([]uint8, w*h)
	for i := range pix {
		hi, lo := alpha.Pix[2*i], alpha.Pix[2*i+1]
		if hi == 0 && lo != 0 {
			hi = 1
		}
		pix[i] = hi
	}

	return &AlphaGrid{
		width:  w,
		height: h,
		origin: bounds.Min,
		pix:    pix,
	}, nil
}

// isNilImage reports whether img is nil or a nil pointer to one of the
// image package's concrete types.
func isNilImage(img image.Image) bool {
	switch m := img.(type) {
	case nil:
		return true
	case *image.RGBA:
		return m == nil
	case *image.NRGBA:
		return m == nil
	case *image.RGBA64:
		return m == nil
	case *image.NRGBA64:
		return m == nil
	case *image.Alpha:
		return m == nil
	case *image.Alpha16:
		return m == nil
	case *image.Gray:
		return m == nil
	case *image.Gray16:
		return m == nil
	case *image.Paletted:
		return m == nil
	case *image.YCbCr:
		return m == nil
	case *image.NYCbCrA:
		return m == nil
	case *image.CMYK:
		return m == nil
	case *image.Uniform:
		return m == nil
	}
	return false
}

// Width returns the grid width in pixels.
func (g *AlphaGrid) Width() int { return g.width }

// Height returns the grid height in pixels.
func (g *AlphaGrid) Height() int { return g.height }

// Origin returns the source image's bounds minimum.
func (g *AlphaGrid) Origin() image.Point { return g.origin }

// IsOutOfBounds reports whether (x, y) lies outside [0,width) x [0,height).
func (g *AlphaGrid) IsOutOfBounds(x, y int) bool {
	return x < 0 || y < 0 || x >= g.width || y >= g.height
}

// AlphaAt returns the alpha value at (x, y).
//
// Callers must bounds-check first; coordinates outside the grid return
// ErrOutOfRange. Traversal code should use IsOpaque instead.
func (g *AlphaGrid) AlphaAt(x, y int) (uint8, error) {
	if g.IsOutOfBounds(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfRange, x, y, g.width, g.height)
	}
	return g.pix[y*g.width+x], nil
}

// IsOpaque reports whether (x, y) has a non-zero alpha. Out-of-bounds pixels
// are transparent, so the image edge acts as a transparent border.
func (g *AlphaGrid) IsOpaque(x, y int) bool {
	if g.IsOutOfBounds(x, y) {
		return false
	}
	return g.pix[y*g.width+x] > 0
}

// WorkingCopy returns a mutable clone of the grid. Changes to the copy never
// reach g.
func (g *AlphaGrid) WorkingCopy() *WorkingCopy {
	pix := make([]uint8, len(g.pix))
	copy(pix, g.pix)
	return &WorkingCopy{AlphaGrid{
		width:  g.width,
		height: g.height,
		origin: g.origin,
		pix:    pix,
	}}
}

// WorkingCopy is an AlphaGrid that may be modified. A detection pass owns one
// for its whole run and zeroes pixels as sprites claim them.
type WorkingCopy struct {
	AlphaGrid
}

// SetAlpha stores v at (x, y).
func (w *WorkingCopy) SetAlpha(x, y int, v uint8) error {
	if w.IsOutOfBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrOutOfRange, x, y, w.width, w.height)
	}
	w.pix[y*w.width+x] = v
	return nil
}

// ClearRect zeroes every pixel inside b, clipped to the grid. b is in grid
// coordinates.
func (w *WorkingCopy) ClearRect(b Box) {
	r := b.Rect().Intersect(image.Rect(0, 0, w.width, w.height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := w.pix[y*w.width : (y+1)*w.width]
		clear(row[r.Min.X:r.Max.X])
	}
}
