package mzxml

import (
	"errors"
	"testing"

	corexml "github.com/radusuciu/pyteomics/core/xml"
)

func parseScan(t *testing.T, src string) *Scan {
	t.Helper()
	doc, err := corexml.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	root := doc.Root()
	if root == nil {
		t.Fatal("no root element")
	}
	return scanFromNode(root)
}

// TestScanAttributeTyping verifies recognized attributes land in typed
// fields and the rest stay raw.
func TestScanAttributeTyping(t *testing.T) {
	s := parseScan(t, `<scan num="5" msLevel="2" peaksCount="42"
		retentionTime="PT60.5S" lowMz="300.5" highMz="1800"
		basePeakMz="445.34" totIonCurrent="1.5e7" polarity="+"
		centroided="1" msInstrumentID="IC1"/>`)

	if s.Num != "5" || s.ID != "5" {
		t.Errorf("Num/ID = %q/%q, want 5/5", s.Num, s.ID)
	}
	if s.MSLevel != 2 {
		t.Errorf("MSLevel = %d, want 2", s.MSLevel)
	}
	if s.PeaksCount != 42 {
		t.Errorf("PeaksCount = %d, want 42", s.PeaksCount)
	}
	if s.RetentionTime != 60.5 {
		t.Errorf("RetentionTime = %v, want 60.5", s.RetentionTime)
	}
	if s.LowMz != 300.5 || s.HighMz != 1800 {
		t.Errorf("LowMz/HighMz = %v/%v, want 300.5/1800", s.LowMz, s.HighMz)
	}
	if s.TotIonCurrent != 1.5e7 {
		t.Errorf("TotIonCurrent = %v, want 1.5e7", s.TotIonCurrent)
	}
	if s.Polarity != "+" {
		t.Errorf("Polarity = %q, want %q", s.Polarity, "+")
	}
	if !s.Centroided {
		t.Error("Centroided = false, want true")
	}
	if s.Attrs["msInstrumentID"] != "IC1" {
		t.Errorf("Attrs[msInstrumentID] = %q, want IC1", s.Attrs["msInstrumentID"])
	}
}

// TestScanDefaultLevel verifies a missing msLevel is treated as a
// top-level scan.
func TestScanDefaultLevel(t *testing.T) {
	s := parseScan(t, `<scan num="1"/>`)
	if s.MSLevel != 1 {
		t.Errorf("MSLevel = %d, want 1", s.MSLevel)
	}
}

// TestScanBadNumericAttr verifies unparseable values stay raw instead
// of failing the record.
func TestScanBadNumericAttr(t *testing.T) {
	s := parseScan(t, `<scan num="1" retentionTime="soon" lowMz="wide"/>`)
	if s.RetentionTime != 0 || s.LowMz != 0 {
		t.Errorf("typed fields = %v/%v, want zero", s.RetentionTime, s.LowMz)
	}
	if s.Attrs["retentionTime"] != "soon" || s.Attrs["lowMz"] != "wide" {
		t.Errorf("raw attrs = %v, want originals kept", s.Attrs)
	}
}

// TestScanPrecursors verifies precursor children are typed.
func TestScanPrecursors(t *testing.T) {
	s := parseScan(t, `<scan num="2" msLevel="2">
		<precursorMz precursorIntensity="120053" precursorScanNum="1"
			precursorCharge="2" activationMethod="CID">445.34</precursorMz>
	</scan>`)

	if len(s.Precursors) != 1 {
		t.Fatalf("Precursors = %d, want 1", len(s.Precursors))
	}
	p := s.Precursors[0]
	if p.Mz != 445.34 {
		t.Errorf("Mz = %v, want 445.34", p.Mz)
	}
	if p.Intensity != 120053 {
		t.Errorf("Intensity = %v, want 120053", p.Intensity)
	}
	if p.ScanNum != "1" || p.Charge != 2 || p.ActivationMethod != "CID" {
		t.Errorf("precursor = %+v, want scan 1 charge 2 CID", p)
	}
}

// TestScanPeaksElement verifies the raw payload and its encoding
// attributes are captured, ignoring nested scans.
func TestScanPeaksElement(t *testing.T) {
	s := parseScan(t, `<scan num="1" msLevel="1">
		<peaks precision="64" byteOrder="network" pairOrder="m/z-int"
			compressionType="zlib">QUJD</peaks>
		<scan num="2" msLevel="2"/>
	</scan>`)

	if s.Peaks.Precision != 64 {
		t.Errorf("Precision = %d, want 64", s.Peaks.Precision)
	}
	if s.Peaks.Compression != "zlib" {
		t.Errorf("Compression = %q, want zlib", s.Peaks.Compression)
	}
	if s.Peaks.Data != "QUJD" {
		t.Errorf("Data = %q, want QUJD", s.Peaks.Data)
	}
	if len(s.Children) != 0 {
		t.Errorf("Children = %d, want none before reassembly", len(s.Children))
	}
}

// TestScanDecodeError verifies decode failures identify the scan.
func TestScanDecodeError(t *testing.T) {
	s := &Scan{Num: "7", Peaks: RawPeaks{Precision: 32, Data: "@@@"}}
	err := s.Decode()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Decode error = %v, want DecodeError", err)
	}
	if de.ScanID != "7" {
		t.Errorf("ScanID = %q, want 7", de.ScanID)
	}
}

// TestScanDecodeIdempotent verifies Decode fills the arrays once.
func TestScanDecodeIdempotent(t *testing.T) {
	payload := encodePairs32([]float64{1, 2}, []float64{3, 4})
	s := &Scan{Num: "1", Peaks: RawPeaks{Precision: 32, Data: payload}}
	if err := s.Decode(); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(s.MzArray) != 2 || s.MzArray[1] != 2 {
		t.Errorf("MzArray = %v, want [1 2]", s.MzArray)
	}
	if err := s.Decode(); err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}
	if len(s.IntensityArray) != 2 || s.IntensityArray[0] != 3 {
		t.Errorf("IntensityArray = %v, want [3 4]", s.IntensityArray)
	}
}
