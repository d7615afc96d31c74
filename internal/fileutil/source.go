// Package fileutil provides helpers for opening possibly-compressed
// source files and digesting their contents.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Source is a readable input with transparent decompression. Closing it
// closes the decompressor and the underlying file.
type Source struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
	compressed   bool
}

// Open opens path for reading. Files ending in .gz or .xz are wrapped
// in the matching decompressor; everything else is read as-is.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	src := &Source{Reader: f, file: f}
	switch {
	case strings.HasSuffix(path, ".gz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		src.Reader = gzr
		src.decompressor = gzr
		src.compressed = true
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		// xz reader doesn't need closing
		src.Reader = xzr
		src.compressed = true
	}
	return src, nil
}

// Compressed reports whether reads pass through a decompressor. Byte
// offsets recorded against a compressed source are not seekable.
func (s *Source) Compressed() bool { return s.compressed }

// Close closes the decompressor, if any, and the underlying file.
func (s *Source) Close() error {
	var errs []error
	if s.decompressor != nil {
		if err := s.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
