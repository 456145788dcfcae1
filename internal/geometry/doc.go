// Package geometry converts between the three shapes a detection can carry:
// bounding boxes, polygon outlines, and rasterized binary masks.
//
// Every function in this package is pure. Nothing performs I/O, nothing holds
// state between calls, and all functions are safe to call concurrently.
//
// # Coordinate System
//
// All coordinates are in image pixel space:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Bounding Boxes
//
// Canonical boxes are stored as [x, y, width, height]. Wire formats usually
// carry two corner points instead; CocoBoxToBoundingBox and
// BoundingBoxToCorners convert between the two forms. Width and height are
// always non-negative because they are computed as absolute differences.
//
// # Binary Masks
//
// A BinaryMask is stored relative to its own extent rather than the full
// image:
//   - Bitmap: row-major 0/1 values, len = Extent[0] * Extent[1]
//   - Origin: [minX, minY] of the extent in image space
//   - Extent: [width, height] of the rasterized region
//
// The JSON form is the triple [bitmap, origin, extent].
//
// # Degenerate Input
//
// Empty vertex sets and polygons with fewer than three vertices are
// legitimate "no mask" states in the wire formats, so they produce nil or
// false instead of an error.
package geometry
