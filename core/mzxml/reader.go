// Package mzxml reads spectrum documents: scan elements are streamed,
// flattened to document order, reassembled into their level hierarchy,
// and yielded one record at a time with peak payloads decoded on
// demand.
package mzxml

import (
	"fmt"
	"io"

	corexml "github.com/radusuciu/pyteomics/core/xml"
	"github.com/radusuciu/pyteomics/internal/fileutil"
)

// scanPath addresses the repeated top-level scan elements. Literally
// nested scans arrive inside their parent's subtree and are flattened
// before reassembly.
const scanPath = "/mzXML/msRun/scan"

// Reader yields reassembled scans from one document in pre-order.
type Reader struct {
	stream *corexml.Stream
	asm    *Reassembler
	queue  []*Scan
	closer io.Closer
	eof    bool
	err    error
}

// Open reads the document at path. Inputs ending in .gz or .xz are
// decompressed transparently.
func Open(path string) (*Reader, error) {
	src, err := fileutil.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	r.closer = src
	return r, nil
}

// NewReader streams scans from r.
func NewReader(r io.Reader) (*Reader, error) {
	stream, err := corexml.NewStream(r, scanPath)
	if err != nil {
		return nil, err
	}
	return &Reader{stream: stream, asm: NewReassembler()}, nil
}

// Next returns the next reassembled scan, decoding its peak payload at
// yield time. It returns io.EOF at end of document. A nesting-order
// violation is terminal; a peak decode failure reports that scan and
// the stream continues.
func (r *Reader) Next() (*Scan, error) {
	for len(r.queue) == 0 {
		if r.err != nil {
			return nil, r.err
		}
		if r.eof {
			return nil, io.EOF
		}
		node, err := r.stream.Next()
		if err == io.EOF {
			r.eof = true
			flushed, ferr := r.asm.Flush()
			if ferr != nil {
				r.err = ferr
				return nil, ferr
			}
			r.queue = append(r.queue, flushed...)
			continue
		}
		if err != nil {
			r.err = fmt.Errorf("reading scan element: %w", err)
			return nil, r.err
		}
		for _, rec := range flattenSubtree(node) {
			out, err := r.asm.Feed(rec)
			if err != nil {
				r.err = err
				return nil, err
			}
			r.queue = append(r.queue, out...)
		}
	}

	s := r.queue[0]
	r.queue = r.queue[1:]
	if err := s.Decode(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying file when the reader owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// flattenSubtree converts one streamed scan subtree into flat records
// in document order.
func flattenSubtree(n *corexml.Node) []*Scan {
	var out []*Scan
	var walk func(*corexml.Node)
	walk = func(n *corexml.Node) {
		out = append(out, scanFromNode(n))
		for _, child := range n.ChildrenNamed("scan") {
			walk(child)
		}
	}
	walk(n)
	return out
}
