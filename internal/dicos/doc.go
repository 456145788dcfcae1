// Package dicos converts between the canonical detection model and DICOS
// files: threat detection reports (one detection per report) and the
// monochrome pixel images they annotate.
//
// Reports are read through a fixed path of nested sequences, failing on the
// first required attribute that is missing. Attributes the canonical model
// has no equivalent for are filled with stable placeholders when writing.
package dicos
