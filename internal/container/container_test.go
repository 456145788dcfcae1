package container

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
)

const twoViewManifest = `<?xml version="1.0" encoding="UTF-8"?>
<image format="DICOS">
  <stack name="pixel_1" view="top">
    <layer src="data/top_pixel.dcs"/>
    <layer src="data/top_1.dcs"/>
    <layer src="data/top_2.dcs"/>
  </stack>
  <stack name="pixel_2" view="side">
    <layer src="data/side_pixel.dcs"/>
  </stack>
</image>`

// buildArchive writes a raw zip with the given entries in order, without
// any of the conventions Write enforces.
func buildArchive(t *testing.T, entries ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		if err != nil {
			t.Fatalf("failed to create entry %s: %v", e[0], err)
		}
		if _, err := w.Write([]byte(e[1])); err != nil {
			t.Fatalf("failed to write entry %s: %v", e[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
	return buf.Bytes()
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	entries := map[string][]byte{
		"data/top_pixel.dcs":  []byte("top pixels"),
		"data/top_1.dcs":      []byte("first"),
		"data/top_2.dcs":      []byte("second"),
		"data/side_pixel.dcs": []byte("side pixels"),
	}

	data, err := Write([]byte(twoViewManifest), entries)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if c.Manifest.Format != detection.FormatDICOS {
		t.Errorf("Format: got %q, want DICOS", c.Manifest.Format)
	}
	if len(c.Manifest.Stacks) != 2 {
		t.Fatalf("Stacks: got %d, want 2", len(c.Manifest.Stacks))
	}

	for name, want := range entries {
		got, err := c.ReadEntry(name)
		if err != nil {
			t.Fatalf("ReadEntry(%s) failed: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("ReadEntry(%s): got %q, want %q", name, got, want)
		}
	}
}

func TestWrite_MimetypeFirstAndStored(t *testing.T) {
	data, err := Write([]byte(twoViewManifest), map[string][]byte{
		"b.dcs":    []byte("b"),
		"a.dcs":    []byte("a"),
		"mimetype": []byte("ignored"),
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader failed: %v", err)
	}

	wantOrder := []string{MimeTypeEntry, ManifestEntry, "a.dcs", "b.dcs"}
	if len(zr.File) != len(wantOrder) {
		t.Fatalf("got %d entries, want %d", len(zr.File), len(wantOrder))
	}
	for i, name := range wantOrder {
		if zr.File[i].Name != name {
			t.Errorf("entry %d: got %s, want %s", i, zr.File[i].Name, name)
		}
	}
	if zr.File[0].Method != zip.Store {
		t.Errorf("mimetype method: got %d, want Store", zr.File[0].Method)
	}

	// The mimetype bytes sit uncompressed right after the first local header.
	if !bytes.Contains(data[:100], []byte(MimeType)) {
		t.Error("mimetype content not found uncompressed at the start of the archive")
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantKind error
	}{
		{"not a zip", []byte("definitely not a zip archive"), detection.ErrMalformedArchive},
		{"no mimetype", buildArchive(t, [2]string{ManifestEntry, twoViewManifest}), detection.ErrMalformedArchive},
		{"no manifest", buildArchive(t, [2]string{MimeTypeEntry, MimeType}), detection.ErrMissingManifest},
		{
			"manifest not xml",
			buildArchive(t, [2]string{MimeTypeEntry, MimeType}, [2]string{ManifestEntry, "{not xml"}),
			detection.ErrMalformedManifest,
		},
		{
			"stack without view",
			buildArchive(t, [2]string{MimeTypeEntry, MimeType}, [2]string{ManifestEntry,
				`<image><stack name="pixel_1"><layer src="a.png"/></stack></image>`}),
			detection.ErrMalformedManifest,
		},
		{
			"stack without layers",
			buildArchive(t, [2]string{MimeTypeEntry, MimeType}, [2]string{ManifestEntry,
				`<image><stack name="pixel_1" view="top"></stack></image>`}),
			detection.ErrMissingPixelLayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.wantKind) {
				t.Errorf("got %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestReadEntry_Missing(t *testing.T) {
	data, err := Write([]byte(twoViewManifest), nil)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	c, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = c.ReadEntry("data/top_pixel.dcs")
	if !errors.Is(err, detection.ErrMissingEntry) {
		t.Fatalf("got %v, want ErrMissingEntry", err)
	}
	if detection.SubjectOf(err) != "data/top_pixel.dcs" {
		t.Errorf("subject: got %q", detection.SubjectOf(err))
	}

	names := c.Entries()
	if len(names) != 2 || names[0] != MimeTypeEntry || names[1] != ManifestEntry {
		t.Errorf("Entries: got %v", names)
	}
}
