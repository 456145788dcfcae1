// Package detection defines the canonical model shared by every codec: the
// Detection record, per-viewpoint pixel payloads, algorithm metadata, the
// aggregate decode Result, and the error taxonomy.
//
// Each wire format has its own native record shape. Codecs normalize those
// shapes into a Detection at their package boundary, so nothing above the
// codec layer knows which format a detection came from.
//
// # Errors
//
// All decode and encode failures wrap one of the Err* kinds and, where one
// exists, name the failing path or field:
//
//	if errors.Is(err, detection.ErrMissingDetectionField) {
//	    log.Printf("missing %s", detection.SubjectOf(err))
//	}
package detection
