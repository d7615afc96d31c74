package mzxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	corexml "github.com/radusuciu/pyteomics/core/xml"
)

// ParseScanAt reads the single scan element starting at offset in rs,
// with any literally nested scans attached as children. All peak
// payloads in the subtree are decoded before return.
func ParseScanAt(rs io.ReadSeeker, offset int64) (*Scan, error) {
	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to scan: %w", err)
	}
	raw, err := readElement(rs)
	if err != nil {
		return nil, fmt.Errorf("scan element at offset %d: %w", offset, err)
	}
	doc, err := corexml.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("scan element at offset %d: %w", offset, err)
	}
	root := doc.Root()
	if root == nil || root.Name() != "scan" {
		return nil, fmt.Errorf("element at offset %d is not a scan", offset)
	}

	s := scanTree(root)
	if err := decodeTree(s); err != nil {
		return nil, err
	}
	return s, nil
}

// scanTree builds a scan with nested scans attached in document order.
func scanTree(n *corexml.Node) *Scan {
	s := scanFromNode(n)
	for _, child := range n.ChildrenNamed("scan") {
		s.Children = append(s.Children, scanTree(child))
	}
	return s
}

func decodeTree(s *Scan) error {
	if err := s.Decode(); err != nil {
		return err
	}
	for _, child := range s.Children {
		if err := decodeTree(child); err != nil {
			return err
		}
	}
	return nil
}

// readElement copies one complete element, byte for byte, from the
// start of r. The token stream partitions the input, so the offset
// after the matching end tag bounds the copy exactly.
func readElement(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	dec := xml.NewDecoder(io.TeeReader(r, &buf))
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return nil, fmt.Errorf("unexpected end tag %s", tok.(xml.EndElement).Name.Local)
			}
			depth--
			if depth == 0 {
				return buf.Bytes()[:dec.InputOffset()], nil
			}
		}
	}
}
