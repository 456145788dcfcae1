// Package container reads and writes scan containers: zip archives holding a
// mimetype entry, a stack.xml manifest, one pixel entry per viewpoint, and
// zero or more annotation entries per viewpoint.
//
// # Layout
//
//	mimetype             "image/openraster", stored uncompressed, always first
//	stack.xml            manifest
//	data/top_pixel.dcs   pixel layer of the "top" viewpoint
//	data/top_1.dcs       annotation layers of the "top" viewpoint
//	...
//
// The manifest has a single image element with one stack per viewpoint:
//
//	<image format="DICOS">
//	  <stack name="pixel_1" view="top">
//	    <layer src="data/top_pixel.dcs"/>
//	    <layer src="data/top_1.dcs"/>
//	  </stack>
//	</image>
//
// The first layer of a stack is always the pixel data; the rest are
// annotations. When the format attribute is absent the annotation format is
// inferred from the first pixel layer's extension (see ClassifyFile).
package container
