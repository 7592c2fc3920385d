// Package detection finds sprite boundaries in images with an alpha channel.
//
// A sprite sheet is a single image holding many small pictures separated by
// transparent pixels. This package partitions the opaque pixels of such an
// image into regions and reports the bounding rectangle of each region, which
// callers turn into slice rectangles.
//
// # Components
//
//   - AlphaGrid: read-only view of an image's alpha channel, with bounds-safe
//     opacity queries. WorkingCopy is its private mutable clone.
//   - Trace: walks one region outward from a seed pixel and returns its
//     bounding box.
//   - Find, FindContext, FindAsync: scan the whole image in row-major order,
//     tracing every opaque pixel not already claimed by an earlier sprite.
//
// # Connectivity
//
// Trace is not a textbook flood fill. It expands the four cardinal neighbors
// of every pixel that still has an unvisited opaque cardinal neighbor, and
// only falls back to the four diagonal neighbors when the cardinal directions
// are exhausted. When a pixel is a dead end in all eight directions the walk
// steps back to the diagonals of the previously visited pixel. This bridges
// single-pixel diagonal joints while staying close to 4-connectivity. It is a
// heuristic: some topologies may split or merge differently from a true
// connected-component labelling.
//
// # Bounding Boxes
//
// A Box covers every visited pixel and is padded by one pixel on its width and
// height (see Padding). A lone opaque pixel yields a 2x2 box and a fully opaque
// WxH image yields a (W+1)x(H+1) box. Downstream cropping trims transparent
// edge rows and columns, so the pad is harmless there and is kept for output
// compatibility.
//
// Once a sprite is found its whole box is cleared in the working copy, so any
// opaque pixel inside that rectangle is treated as consumed, even if the walk
// never reached it.
//
// # Coordinate System
//
// Boxes are reported in the coordinate space of the source image: a sub-image
// whose bounds start at (10,20) reports boxes starting at or after (10,20).
//
// # Cancellation and Progress
//
// FindContext and FindAsync poll their context once per opaque pixel, before
// tracing it, so at most one more trace completes after cancellation. A
// cancelled run reports StatusAborted and no bounds. Progress is the fraction
// of the scan completed, (x + y*width) / (width*height), reported after every
// trace.
package detection
