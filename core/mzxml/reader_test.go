package mzxml

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func runDoc(scans string) string {
	return `<?xml version="1.0" encoding="ISO-8859-1"?>
<mzXML xmlns="http://sashimi.sourceforge.net/schema_revision/mzXML_3.2">
<msRun scanCount="0">
` + scans + `
</msRun>
</mzXML>`
}

func readAll(t *testing.T, doc string) []*Scan {
	t.Helper()
	r, err := NewReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	var out []*Scan
	for {
		s, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, s)
	}
}

// TestReaderLiterallyNested verifies nested scan elements come back as
// parent and child records in document order.
func TestReaderLiterallyNested(t *testing.T) {
	payload := encodePairs32([]float64{100.5, 200.25}, []float64{10, 20})
	doc := runDoc(`
<scan num="1" msLevel="1" peaksCount="2" retentionTime="PT1.5S">
	<peaks precision="32" byteOrder="network" pairOrder="m/z-int">` + payload + `</peaks>
	<scan num="2" msLevel="2" peaksCount="0">
		<precursorMz precursorIntensity="120053">445.34</precursorMz>
		<peaks precision="32"></peaks>
	</scan>
</scan>
<scan num="3" msLevel="1" peaksCount="0">
	<peaks precision="32"></peaks>
</scan>`)

	scans := readAll(t, doc)
	if len(scans) != 3 {
		t.Fatalf("read %d scans, want 3", len(scans))
	}
	wantOrder(t, scans, "1", "2", "3")
	wantChildren(t, scans[0], "2")

	if scans[0].RetentionTime != 1.5 {
		t.Errorf("RetentionTime = %v, want 1.5", scans[0].RetentionTime)
	}
	if len(scans[0].MzArray) != 2 || scans[0].MzArray[0] != 100.5 {
		t.Errorf("MzArray = %v, want [100.5 200.25]", scans[0].MzArray)
	}
	if len(scans[1].Precursors) != 1 || scans[1].Precursors[0].Mz != 445.34 {
		t.Errorf("Precursors = %+v, want one at 445.34", scans[1].Precursors)
	}
	if len(scans[2].MzArray) != 0 || scans[2].MzArray == nil {
		t.Errorf("MzArray = %v, want empty non-nil", scans[2].MzArray)
	}
}

// TestReaderSiblingScans verifies flat sibling scans group under the
// preceding survey scan.
func TestReaderSiblingScans(t *testing.T) {
	doc := runDoc(`
<scan num="1" msLevel="1" peaksCount="0"><peaks precision="32"></peaks></scan>
<scan num="2" msLevel="2" peaksCount="0"><peaks precision="32"></peaks></scan>
<scan num="3" msLevel="2" peaksCount="0"><peaks precision="32"></peaks></scan>
<scan num="4" msLevel="1" peaksCount="0"><peaks precision="32"></peaks></scan>`)

	scans := readAll(t, doc)
	wantOrder(t, scans, "1", "2", "3", "4")
	wantChildren(t, scans[0], "2", "3")
	wantChildren(t, scans[3])
}

// TestReaderNestingViolation verifies a deep scan without a root
// surfaces the nesting error from Next.
func TestReaderNestingViolation(t *testing.T) {
	doc := runDoc(`<scan num="9" msLevel="2" peaksCount="0"><peaks precision="32"></peaks></scan>`)

	r, err := NewReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	_, err = r.Next()
	if !errors.Is(err, ErrNestingOrder) {
		t.Fatalf("Next error = %v, want ErrNestingOrder", err)
	}
	// And it stays terminal.
	if _, err := r.Next(); !errors.Is(err, ErrNestingOrder) {
		t.Errorf("second Next = %v, want the same error", err)
	}
}

// TestReaderDecodeFailureContinues verifies one bad payload does not
// end the stream.
func TestReaderDecodeFailureContinues(t *testing.T) {
	good := encodePairs32([]float64{1}, []float64{2})
	doc := runDoc(`
<scan num="1" msLevel="1" peaksCount="1"><peaks precision="32">!!bad!!</peaks></scan>
<scan num="2" msLevel="1" peaksCount="1"><peaks precision="32">` + good + `</peaks></scan>`)

	r, err := NewReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	_, err = r.Next()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Next error = %v, want DecodeError", err)
	}
	if de.ScanID != "1" {
		t.Errorf("ScanID = %q, want 1", de.ScanID)
	}

	s, err := r.Next()
	if err != nil {
		t.Fatalf("Next after decode failure: %v", err)
	}
	if s.Num != "2" || len(s.MzArray) != 1 {
		t.Errorf("scan = %s with %d peaks, want 2 with 1", s.Num, len(s.MzArray))
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next at end = %v, want io.EOF", err)
	}
}

// TestReaderEmptyRun verifies a document without scans yields io.EOF
// immediately.
func TestReaderEmptyRun(t *testing.T) {
	scans := readAll(t, runDoc(""))
	if len(scans) != 0 {
		t.Errorf("read %d scans, want 0", len(scans))
	}
}
