// Package validation classifies input documents by content so callers
// can reject the wrong kind of file before handing it to a parser.
package validation

import (
	"bytes"
	"fmt"
	"io"

	"github.com/radusuciu/pyteomics/internal/fileutil"
)

// Kind labels the classified content of an input document.
type Kind string

const (
	// KindXML is an XML spectrum document.
	KindXML Kind = "xml"
	// KindTabular is a tab-delimited identification document.
	KindTabular Kind = "tabular"
	// KindSQLite is a SQLite database, such as a sidecar scan index.
	KindSQLite Kind = "sqlite"
	// KindUnknown is anything the probe could not place.
	KindUnknown Kind = "unknown"
)

// probeSize bounds the content probe. The discriminating bytes of every
// supported kind sit well inside the first half kilobyte.
const probeSize = 512

var (
	sqliteMagic = []byte("SQLite format 3")
	utf8BOM     = []byte{0xef, 0xbb, 0xbf}
)

// Sniff classifies path by reading the first probeSize bytes of its
// content. Compression wrappers are transparent: a gzipped XML document
// classifies as XML, since every reader decompresses on open.
func Sniff(path string) (Kind, error) {
	src, err := fileutil.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer src.Close()

	buf := make([]byte, probeSize)
	n, err := io.ReadFull(src, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return KindUnknown, fmt.Errorf("probe %s: %w", path, err)
	}
	return Classify(buf[:n]), nil
}

// Classify labels a content probe.
func Classify(buf []byte) Kind {
	if bytes.HasPrefix(buf, sqliteMagic) {
		return KindSQLite
	}
	text := bytes.TrimLeft(bytes.TrimPrefix(buf, utf8BOM), " \t\r\n")
	if len(text) > 0 && text[0] == '<' {
		return KindXML
	}
	if looksTabular(buf) {
		return KindTabular
	}
	return KindUnknown
}

// looksTabular reports whether the probe reads as tab-delimited text: no
// null bytes, almost entirely printable, with a tab on the first line.
func looksTabular(buf []byte) bool {
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	firstLine := buf
	if i := bytes.IndexByte(buf, '\n'); i != -1 {
		firstLine = buf[:i]
	}
	if !bytes.ContainsRune(firstLine, '\t') {
		return false
	}

	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b >= 0x20 && b <= 0x7e, b == '\t', b == '\n', b == '\r':
			printable++
		case b < 0x20:
			control++
		}
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
