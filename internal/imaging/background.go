package imaging

import (
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// AutoKey is the color key value that selects BackgroundColor's guess.
const AutoKey = "auto"

// BorderColor is one color found along an image border.
type BorderColor struct {
	Hex   string  `json:"hex"`   // "#rrggbb"
	Share float64 `json:"share"` // fraction of opaque border pixels, 0-1
}

// BackgroundColor guesses the background color of a sheet without
// transparency.
//
// Sprite sheets leave a margin around their sprites, so the border of the
// image is almost entirely background. The guess is the most frequent exact
// color among the opaque pixels of the outermost rows and columns. Ties go to
// the lexically smaller hex value.
//
// Returns false if every border pixel is fully transparent, in which case the
// image needs no color key.
func BackgroundColor(img image.Image) (BorderColor, bool) {
	colors := BorderColors(img)
	if len(colors) == 0 {
		return BorderColor{}, false
	}
	return colors[0], true
}

// BorderColors counts the opaque colors along the border of img, most
// frequent first.
func BorderColors(img image.Image) []BorderColor {
	b := img.Bounds()
	if b.Empty() {
		return nil
	}

	counts := make(map[string]int)
	total := 0
	visit := func(x, y int) {
		c, ok := colorful.MakeColor(img.At(x, y))
		if !ok {
			return
		}
		counts[c.Hex()]++
		total++
	}

	for x := b.Min.X; x < b.Max.X; x++ {
		visit(x, b.Min.Y)
		if b.Dy() > 1 {
			visit(x, b.Max.Y-1)
		}
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		visit(b.Min.X, y)
		if b.Dx() > 1 {
			visit(b.Max.X-1, y)
		}
	}

	colors := make([]BorderColor, 0, len(counts))
	for hex, n := range counts {
		colors = append(colors, BorderColor{
			Hex:   hex,
			Share: float64(n) / float64(total),
		})
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Share != colors[j].Share {
			return colors[i].Share > colors[j].Share
		}
		return colors[i].Hex < colors[j].Hex
	})
	return colors
}
