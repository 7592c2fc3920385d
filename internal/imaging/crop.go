package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// TrimTransparent shrinks a slice rectangle to the opaque pixels it contains.
//
// rect is first clipped to the image bounds, then fully transparent rows and
// columns are removed from all four edges. The result uses the usual
// exclusive-Max convention, so a single opaque pixel at (x, y) trims to
// image.Rect(x, y, x+1, y+1).
//
// This is the cropping step that follows sprite detection: detected boxes are
// padded by one pixel on the right and bottom and may contain transparent
// margins, and trimming removes both.
//
// Returns false if the clipped rectangle is empty or contains no opaque pixel.
func TrimTransparent(img image.Image, rect image.Rectangle) (image.Rectangle, bool) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return image.Rectangle{}, false
	}

	// Crop returns an NRGBA with origin (0,0), so alpha is every 4th byte.
	sub := imaging.Crop(img, rect)
	w, h := sub.Bounds().Dx(), sub.Bounds().Dy()
	opaque := func(x, y int) bool {
		return sub.Pix[y*sub.Stride+x*4+3] > 0
	}
	rowOpaque := func(y int) bool {
		for x := 0; x < w; x++ {
			if opaque(x, y) {
				return true
			}
		}
		return false
	}
	colOpaque := func(x, top, bottom int) bool {
		for y := top; y <= bottom; y++ {
			if opaque(x, y) {
				return true
			}
		}
		return false
	}

	top := 0
	for top < h && !rowOpaque(top) {
		top++
	}
	if top == h {
		return image.Rectangle{}, false
	}
	bottom := h - 1
	for !rowOpaque(bottom) {
		bottom--
	}
	left := 0
	for !colOpaque(left, top, bottom) {
		left++
	}
	right := w - 1
	for !colOpaque(right, top, bottom) {
		right--
	}

	return image.Rect(
		rect.Min.X+left, rect.Min.Y+top,
		rect.Min.X+right+1, rect.Min.Y+bottom+1,
	), true
}

// TrimAll trims every rectangle in rects, keeping their order and dropping
// those that contain no opaque pixel.
func TrimAll(img image.Image, rects []image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		if t, ok := TrimTransparent(img, r); ok {
			out = append(out, t)
		}
	}
	return out
}
