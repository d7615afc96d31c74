package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

const sample = "MTD\tmzTab-version\t1.0.0\nMTD\ttitle\ttest\n"

func writePlain(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.mztab")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}
	return path
}

func writeGzip(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.mztab.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create gzip sample: %v", err)
	}
	defer f.Close()
	w := gzip.NewWriter(f)
	if _, err := w.Write([]byte(sample)); err != nil {
		t.Fatalf("failed to write gzip sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return path
}

func writeXz(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "sample.mztab.xz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create xz sample: %v", err)
	}
	defer f.Close()
	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("failed to create xz writer: %v", err)
	}
	if _, err := w.Write([]byte(sample)); err != nil {
		t.Fatalf("failed to write xz sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close xz writer: %v", err)
	}
	return path
}

func TestOpenTransparentDecompression(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name       string
		path       string
		compressed bool
	}{
		{"plain", writePlain(t, dir), false},
		{"gzip", writeGzip(t, dir), true},
		{"xz", writeXz(t, dir), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Open(tt.path)
			if err != nil {
				t.Fatalf("Open(%s) failed: %v", tt.path, err)
			}
			defer src.Close()

			data, err := io.ReadAll(src)
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			if string(data) != sample {
				t.Errorf("content = %q, want %q", data, sample)
			}
			if src.Compressed() != tt.compressed {
				t.Errorf("Compressed() = %v, want %v", src.Compressed(), tt.compressed)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mztab")); err == nil {
		t.Error("Open on a missing file succeeded, want error")
	}
}

func TestDigestStable(t *testing.T) {
	dir := t.TempDir()
	path := writePlain(t, dir)

	first, err := Digest(path)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	second, err := Digest(path)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if first != second {
		t.Errorf("digest not stable: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(first))
	}

	other := filepath.Join(dir, "other.mztab")
	if err := os.WriteFile(other, []byte(sample+"extra\n"), 0644); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	otherDigest, err := Digest(other)
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if otherDigest == first {
		t.Error("different contents produced the same digest")
	}
}
