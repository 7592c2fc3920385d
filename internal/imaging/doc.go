// Package imaging provides the image handling around sprite detection.
//
// It covers the steps before and after the detection engine: loading and
// caching sprite sheets, turning a background color into transparency for
// sheets without an alpha channel, and trimming detected slice rectangles down
// to their opaque pixels.
//
// # Color Keys
//
// Older sheets paint the background a solid color instead of leaving it
// transparent. ApplyColorKey clears every pixel within a CIEDE2000 tolerance
// of a key color. The key can be given explicitly or as AutoKey, in which case
// BackgroundColor picks the most common color along the image border.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles are
// image.Rectangle values: Min is inclusive, Max is exclusive.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached images are shared
// between callers and must be treated as read-only; ApplyColorKey and
// TrimTransparent never modify their input.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O and decoding errors during image loading
//   - Malformed color key strings
//   - Negative color key tolerances
//
// Trimming never fails; a rectangle without opaque pixels is reported with a
// false second return value.
package imaging
