package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// keyEpsilon absorbs float rounding between the two 8-bit to float paths, so
// a tolerance of 0 still matches the key color itself.
const keyEpsilon = 1e-9

// ApplyColorKey returns a copy of img in which every pixel matching the key
// color is fully transparent.
//
// Many older sprite sheets have no alpha channel and use a solid background
// color (often magenta #FF00FF) instead. Keying that color out produces an
// image the alpha-based sprite detector can work with. img is not modified,
// and the result's bounds start at (0,0).
//
// Parameters:
//   - keyHex: the background color as "#RRGGBB", "RRGGBB" or "#RGB", or
//     AutoKey to key out the color BackgroundColor guesses. An image whose
//     border is already transparent is returned unkeyed in that case.
//   - tolerance: maximum CIEDE2000 distance, in go-colorful's 0-1 Lab scale,
//     for a pixel to count as background. 0 keys only the exact color;
//     around 0.05 also absorbs JPEG noise.
//
// Pixels that are already fully transparent stay transparent. Partially
// transparent pixels are compared by their un-premultiplied color.
func ApplyColorKey(img image.Image, keyHex string, tolerance float64) (*image.NRGBA, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be non-negative, got %g", tolerance)
	}
	if strings.EqualFold(strings.TrimSpace(keyHex), AutoKey) {
		bg, ok := BackgroundColor(img)
		if !ok {
			return imaging.Clone(img), nil
		}
		keyHex = bg.Hex
	}
	key, err := ParseKeyColor(keyHex)
	if err != nil {
		return nil, err
	}

	out := imaging.Clone(img)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		px := out.Pix[i : i+4 : i+4]
		c, ok := colorful.MakeColor(color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
		if !ok {
			continue
		}
		if c.DistanceCIEDE2000(key) <= tolerance+keyEpsilon {
			px[3] = 0
		}
	}
	return out, nil
}

// ParseKeyColor parses a hex color, with or without the leading '#'.
func ParseKeyColor(hex string) (colorful.Color, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return colorful.Color{}, fmt.Errorf("empty color key")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color key %q: %w", hex, err)
	}
	return c, nil
}
