// Package coco converts between the canonical detection model and
// COCO-style JSON annotation files, one detection per file.
//
// # Wire Shape
//
//	{
//	  "info": {...},
//	  "images": [{"id": 1, "width": 640, "height": 480, "file_name": "top_pixel.png"}],
//	  "annotations": [{
//	    "id": 1, "image_id": 1, "iscrowd": 0,
//	    "bbox": [x1, y1, x2, y2], "area": 1200, "category_id": 55,
//	    "segmentation": [[x1, y1, x2, y2, ...]],
//	    "className": "knife", "confidence": 82
//	  }],
//	  "categories": [{"id": 55, "name": "knife"}]
//	}
//
// The bbox holds two corners rather than a width and height. Confidence is
// a whole percentage; fractions below one are accepted on read.
package coco
