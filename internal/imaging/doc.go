// Package imaging provides the raster operations behind pixel payloads:
// decoding and encoding viewpoint images, converting between 16-bit
// greyscale and 8-bit RGBA, rendering binary masks, and cropping
// detections.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Masks and bounding boxes use the same image space, so a mask origin of
// (10, 20) lands on pixel (10, 20) of its viewpoint image.
//
// # Pixel Depth
//
// Tag-structured pixel images are 16-bit greyscale; raster images are
// 8-bit. Narrowing splits the 16-bit range into 256 equal intervals and
// keeps the interval index (FindGrayValue). Widening reads the red channel
// as an interval index and yields that interval's midpoint
// (IntervalMidpoint). Narrowing a widened value returns the original level.
//
// # Thread Safety
//
// Every function is stateless and can be called concurrently on different
// images.
package imaging
