package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
)

const (
	// MimeTypeEntry is the first entry of every container, stored uncompressed.
	MimeTypeEntry = "mimetype"

	// MimeType is the fixed content of the mimetype entry.
	MimeType = "image/openraster"

	// ManifestEntry is the stack document listing viewpoints and layers.
	ManifestEntry = "stack.xml"
)

// Container is an opened archive. It is read-only: edits are written into a
// fresh archive with Write.
type Container struct {
	// Manifest is the parsed stack document.
	Manifest *Manifest

	files map[string]*zip.File
	names []string
}

// Open unpacks an archive and parses its manifest.
//
// Entries are not read until ReadEntry is called. ReadEntry may be called
// from several goroutines at once.
//
// # Errors
//
//   - ErrMalformedArchive: not a zip archive, or no mimetype entry
//   - ErrMissingManifest: no stack.xml entry
//   - ErrMalformedManifest, ErrMissingPixelLayer: see ParseManifest
func Open(data []byte) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, detection.NewError(detection.ErrMalformedArchive, "", err)
	}

	c := &Container{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if _, dup := c.files[f.Name]; dup {
			continue
		}
		c.files[f.Name] = f
		c.names = append(c.names, f.Name)
	}

	if _, ok := c.files[MimeTypeEntry]; !ok {
		return nil, detection.NewError(detection.ErrMalformedArchive, MimeTypeEntry, nil)
	}
	if _, ok := c.files[ManifestEntry]; !ok {
		return nil, detection.NewError(detection.ErrMissingManifest, ManifestEntry, nil)
	}

	raw, err := c.ReadEntry(ManifestEntry)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, err
	}
	c.Manifest = m
	return c, nil
}

// Entries returns the entry names in archive order.
func (c *Container) Entries() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// ReadEntry returns the bytes of the named entry.
//
// Returns ErrMissingEntry when the archive has no such entry and
// ErrMalformedArchive when the entry cannot be inflated.
func (c *Container) ReadEntry(name string) ([]byte, error) {
	f, ok := c.files[name]
	if !ok {
		return nil, detection.NewError(detection.ErrMissingEntry, name, nil)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, detection.NewError(detection.ErrMalformedArchive, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, detection.NewError(detection.ErrMalformedArchive, name, err)
	}
	return data, nil
}

// Write builds a new archive.
//
// The mimetype entry comes first and is stored uncompressed, as readers of
// the format require. The manifest follows, then every entry in sorted path
// order, deflated. Entries named like the mimetype or manifest are ignored.
func Write(manifest []byte, entries map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: MimeTypeEntry, Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MimeTypeEntry, err)
	}
	if _, err := io.WriteString(w, MimeType); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", MimeTypeEntry, err)
	}

	if err := writeDeflated(zw, ManifestEntry, manifest); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		if name == MimeTypeEntry || name == ManifestEntry {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeDeflated(zw, name, entries[name]); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDeflated(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
