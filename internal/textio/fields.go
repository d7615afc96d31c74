// Package textio provides line-oriented readers for tab-delimited text
// formats.
package textio

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single input line. Identification tables carry
// long rows; spectra never appear in them.
const maxLineSize = 4 << 20

// FieldScanner reads a stream line by line, trimming surrounding
// whitespace before splitting each line on tabs.
type FieldScanner struct {
	s    *bufio.Scanner
	line int
}

// NewFieldScanner returns a FieldScanner reading from r.
func NewFieldScanner(r io.Reader) *FieldScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineSize)
	return &FieldScanner{s: s}
}

// Next returns the fields of the next line. Trimming happens before the
// split, so trailing empty cells are dropped with the line ending. A
// blank line yields a single empty field. Next returns io.EOF after the
// last line.
func (fs *FieldScanner) Next() ([]string, error) {
	if !fs.s.Scan() {
		if err := fs.s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	fs.line++
	return strings.Split(strings.TrimSpace(fs.s.Text()), "\t"), nil
}

// Line returns the 1-based number of the most recently read line.
func (fs *FieldScanner) Line() int { return fs.line }
