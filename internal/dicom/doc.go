// Package dicom reads and writes DICOM Part 10 streams as an attribute tree.
//
// Only what the scan codecs need is supported: explicit and implicit VR
// little endian bodies, defined and undefined length sequences on read, and
// explicit VR little endian with defined lengths on write.
//
// # Tree Representation
//
// A Dataset keeps every Element and every sequence Item in flat arenas.
// Items are addressed by ItemID (Root for the top level) and index their
// elements by Tag, so navigating nested sequences is a chain of typed
// lookups:
//
//	threats, ok := ds.Items(dicom.Root, threatSequence)
//	for _, threat := range threats {
//	    desc, ok := ds.String(threat, threatCategoryDescription)
//	    ...
//	}
//
// Every accessor returns an ok flag so callers can fail fast on the first
// missing required attribute.
package dicom
