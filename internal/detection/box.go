package detection

import (
	"fmt"
	"image"
)

// Padding is added to the width and height of every traced box.
//
// The sprite editor this engine serves has always produced boxes one pixel
// wider and taller than the sprite; its cropping step trims the extra
// transparent row and column. Keep it at 1 for output compatibility.
const Padding = 1

// Box is an axis-aligned sprite bounding box.
//
// (X, Y) is the top-left pixel. Width and Height include Padding, so the
// rectangle spans X..X+Width-1 inclusive.
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts b to an image.Rectangle with an exclusive Max.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Add translates b by p.
func (b Box) Add(p image.Point) Box {
	return Box{X: b.X + p.X, Y: b.Y + p.Y, Width: b.Width, Height: b.Height}
}

// BoxFromRect converts an image.Rectangle back to a Box.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", b.X, b.Y, b.Width, b.Height)
}
