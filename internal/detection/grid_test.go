package detection

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// newSheet creates a fully transparent NRGBA image.
func newSheet(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// fillRect makes every pixel of the w x h rectangle at (x, y) opaque red.
func fillRect(img *image.NRGBA, x, y, w, h int) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			img.SetNRGBA(px, py, color.NRGBA{255, 0, 0, 255})
		}
	}
}

// setPixels makes the listed pixels opaque.
func setPixels(img *image.NRGBA, pts ...image.Point) {
	for _, p := range pts {
		img.SetNRGBA(p.X, p.Y, color.NRGBA{0, 0, 255, 255})
	}
}

func TestNewAlphaGrid(t *testing.T) {
	img := newSheet(8, 5)
	fillRect(img, 2, 1, 3, 2)

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}
	if g.Width() != 8 || g.Height() != 5 {
		t.Errorf("dimensions: got %dx%d, want 8x5", g.Width(), g.Height())
	}

	tests := []struct {
		x, y int
		want bool
	}{
		{2, 1, true},
		{4, 2, true},
		{1, 1, false},
		{5, 1, false},
		{2, 3, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := g.IsOpaque(tt.x, tt.y); got != tt.want {
			t.Errorf("IsOpaque(%d,%d): got %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestNewAlphaGrid_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil image", nil},
		{"nil NRGBA", (*image.NRGBA)(nil)},
		{"nil RGBA", (*image.RGBA)(nil)},
		{"nil Paletted", (*image.Paletted)(nil)},
		{"nil Gray16", (*image.Gray16)(nil)},
		{"zero width", image.NewNRGBA(image.Rect(0, 0, 0, 10))},
		{"zero height", image.NewNRGBA(image.Rect(0, 0, 10, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAlphaGrid(tt.img)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNewAlphaGrid_NoAlphaChannel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if !g.IsOpaque(x, y) {
				t.Fatalf("gray pixel (%d,%d) should be opaque", x, y)
			}
		}
	}
}

func TestNewAlphaGrid_SixteenBitAlpha(t *testing.T) {
	img := image.NewNRGBA64(image.Rect(0, 0, 4, 4))
	img.SetNRGBA64(1, 2, color.NRGBA64{R: 0xffff, A: 0x00ff})
	img.SetNRGBA64(3, 3, color.NRGBA64{A: 0x1234})

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}

	tests := []struct {
		x, y int
		want uint8
	}{
		{1, 2, 1},    // below one 8-bit step, still opaque
		{3, 3, 0x12}, // high byte
		{0, 0, 0},
	}
	for _, tt := range tests {
		got, err := g.AlphaAt(tt.x, tt.y)
		if err != nil {
			t.Fatalf("AlphaAt(%d,%d) failed: %v", tt.x, tt.y, err)
		}
		if got != tt.want {
			t.Errorf("AlphaAt(%d,%d): got %#x, want %#x", tt.x, tt.y, got, tt.want)
		}
	}

	boxes, err := Find(img)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	want := []Box{{X: 1, Y: 2, Width: 2, Height: 2}, {X: 3, Y: 3, Width: 2, Height: 2}}
	if len(boxes) != len(want) {
		t.Fatalf("got %v, want %v", boxes, want)
	}
	for i := range want {
		if boxes[i] != want[i] {
			t.Errorf("box %d: got %v, want %v", i, boxes[i], want[i])
		}
	}
}

func TestNewAlphaGrid_Paletted(t *testing.T) {
	palette := color.Palette{color.Transparent, color.NRGBA{0, 255, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 3, 3), palette)
	img.SetColorIndex(1, 1, 1)

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}
	if !g.IsOpaque(1, 1) {
		t.Error("palette index 1 should be opaque")
	}
	if g.IsOpaque(0, 0) {
		t.Error("palette index 0 should be transparent")
	}
}

func TestNewAlphaGrid_SubImageOrigin(t *testing.T) {
	img := newSheet(20, 20)
	fillRect(img, 12, 14, 1, 1)
	sub := img.SubImage(image.Rect(10, 10, 20, 20))

	g, err := NewAlphaGrid(sub)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}
	if g.Origin() != image.Pt(10, 10) {
		t.Errorf("Origin: got %v, want (10,10)", g.Origin())
	}
	if !g.IsOpaque(2, 4) {
		t.Error("grid (2,4) should map to image (12,14) and be opaque")
	}
}

func TestAlphaGrid_AlphaAt(t *testing.T) {
	img := newSheet(4, 4)
	img.SetNRGBA(1, 2, color.NRGBA{10, 20, 30, 77})

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}

	a, err := g.AlphaAt(1, 2)
	if err != nil {
		t.Fatalf("AlphaAt failed: %v", err)
	}
	if a != 77 {
		t.Errorf("AlphaAt(1,2): got %d, want 77", a)
	}

	outside := []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}}
	for _, p := range outside {
		if _, err := g.AlphaAt(p.X, p.Y); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("AlphaAt(%d,%d): got %v, want ErrOutOfRange", p.X, p.Y, err)
		}
		if g.IsOpaque(p.X, p.Y) {
			t.Errorf("IsOpaque(%d,%d) should be false out of bounds", p.X, p.Y)
		}
		if !g.IsOutOfBounds(p.X, p.Y) {
			t.Errorf("IsOutOfBounds(%d,%d) should be true", p.X, p.Y)
		}
	}
}

func TestWorkingCopy_Independent(t *testing.T) {
	img := newSheet(4, 4)
	fillRect(img, 0, 0, 4, 4)

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}

	w := g.WorkingCopy()
	if err := w.SetAlpha(1, 1, 0); err != nil {
		t.Fatalf("SetAlpha failed: %v", err)
	}
	if w.IsOpaque(1, 1) {
		t.Error("working copy pixel should be cleared")
	}
	if !g.IsOpaque(1, 1) {
		t.Error("source grid must not change when the working copy does")
	}

	if err := w.SetAlpha(4, 0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("SetAlpha out of range: got %v, want ErrOutOfRange", err)
	}
}

func TestWorkingCopy_ClearRect(t *testing.T) {
	img := newSheet(6, 6)
	fillRect(img, 0, 0, 6, 6)

	g, err := NewAlphaGrid(img)
	if err != nil {
		t.Fatalf("NewAlphaGrid failed: %v", err)
	}
	w := g.WorkingCopy()

	// Extends past the right and bottom edges; must be clipped.
	w.ClearRect(Box{X: 4, Y: 3, Width: 5, Height: 5})

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			want := !(x >= 4 && y >= 3)
			if got := w.IsOpaque(x, y); got != want {
				t.Errorf("after ClearRect, IsOpaque(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}
