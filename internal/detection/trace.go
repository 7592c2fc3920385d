package detection

// pixel is a grid coordinate used by the tracer.
type pixel struct {
	x, y int
}

var (
	cardinalOffsets = [4]pixel{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	cornerOffsets   = [4]pixel{{1, -1}, {1, 1}, {-1, 1}, {-1, -1}}
)

func (p pixel) neighbors(offsets *[4]pixel) [4]pixel {
	var out [4]pixel
	for i, o := range offsets {
		out[i] = pixel{p.x + o.x, p.y + o.y}
	}
	return out
}

// tracer holds the state of one Trace call.
type tracer struct {
	view    AlphaView
	stack   []pixel
	visited map[pixel]struct{}

	left, right, top, bottom int
}

// Trace explores the region reachable from the seed (x, y) and returns its
// bounding box, padded by Padding.
//
// The seed should be opaque; its own coordinates always lie inside the box.
// The walk is iterative, so region size is bounded by memory, not stack depth.
//
// Expansion rules, applied to each newly visited pixel:
//
//  1. If any cardinal neighbor is opaque and unvisited, push the four
//     cardinal neighbors.
//  2. Otherwise, if a previous pixel exists and all four diagonal neighbors of
//     the current pixel are transparent or out of bounds, push the diagonal
//     neighbors of the previous pixel.
//  3. Otherwise push the diagonal neighbors of the current pixel.
func Trace(view AlphaView, x, y int) Box {
	t := &tracer{
		view:    view,
		stack:   make([]pixel, 0, 64),
		visited: make(map[pixel]struct{}),
		left:    x,
		right:   x,
		top:     y,
		bottom:  y,
	}

	start := pixel{x, y}
	t.push(start.neighbors(&cardinalOffsets))
	t.push(start.neighbors(&cornerOffsets))

	var last pixel
	hasLast := false

	for len(t.stack) > 0 {
		p := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]

		if t.view.IsOutOfBounds(p.x, p.y) || !t.view.IsOpaque(p.x, p.y) {
			continue
		}
		if _, seen := t.visited[p]; seen {
			continue
		}
		t.visited[p] = struct{}{}
		t.extend(p)

		cardinals := p.neighbors(&cardinalOffsets)
		switch {
		case !t.exhausted(cardinals):
			t.push(cardinals)
		case hasLast && t.allClear(p.neighbors(&cornerOffsets)):
			t.push(last.neighbors(&cornerOffsets))
		default:
			t.push(p.neighbors(&cornerOffsets))
		}

		last, hasLast = p, true
	}

	return Box{
		X:      t.left,
		Y:      t.top,
		Width:  t.right - t.left + 1 + Padding,
		Height: t.bottom - t.top + 1 + Padding,
	}
}

func (t *tracer) push(ps [4]pixel) {
	t.stack = append(t.stack, ps[:]...)
}

func (t *tracer) extend(p pixel) {
	t.left = min(t.left, p.x)
	t.right = max(t.right, p.x)
	t.top = min(t.top, p.y)
	t.bottom = max(t.bottom, p.y)
}

// exhausted reports whether every pixel in ps is transparent, out of bounds,
// or already visited.
func (t *tracer) exhausted(ps [4]pixel) bool {
	for _, p := range ps {
		if !t.view.IsOpaque(p.x, p.y) {
			continue
		}
		if _, seen := t.visited[p]; !seen {
			return false
		}
	}
	return true
}

// allClear reports whether every pixel in ps is transparent or out of bounds.
// Visited status is ignored.
func (t *tracer) allClear(ps [4]pixel) bool {
	for _, p := range ps {
		if t.view.IsOpaque(p.x, p.y) {
			return false
		}
	}
	return true
}
