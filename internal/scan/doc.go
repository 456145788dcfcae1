// Package scan assembles decoded containers into one canonical result and
// writes canonical results back into containers.
//
// Decoding fans out one goroutine per pixel entry and per annotation entry
// and joins them before the result is built. Any failing entry fails the
// whole call.
package scan
