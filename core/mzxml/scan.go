package mzxml

import (
	"strconv"
	"strings"

	corexml "github.com/radusuciu/pyteomics/core/xml"
)

// Scan is one spectrum record. Typed fields mirror the format's scan
// attributes; anything unrecognized stays raw in Attrs. Children holds
// the scans reassembled underneath this one; the peak arrays are
// filled by Decode.
type Scan struct {
	Num               string  `json:"num"`
	ID                string  `json:"id"`
	MSLevel           int     `json:"msLevel"`
	PeaksCount        int     `json:"peaksCount"`
	Polarity          string  `json:"polarity,omitempty"`
	ScanType          string  `json:"scanType,omitempty"`
	FilterLine        string  `json:"filterLine,omitempty"`
	RetentionTime     float64 `json:"retentionTime,omitempty"`
	LowMz             float64 `json:"lowMz,omitempty"`
	HighMz            float64 `json:"highMz,omitempty"`
	BasePeakMz        float64 `json:"basePeakMz,omitempty"`
	BasePeakIntensity float64 `json:"basePeakIntensity,omitempty"`
	TotIonCurrent     float64 `json:"totIonCurrent,omitempty"`
	CollisionEnergy   float64 `json:"collisionEnergy,omitempty"`
	Centroided        bool    `json:"centroided,omitempty"`
	Deisotoped        bool    `json:"deisotoped,omitempty"`

	Attrs      map[string]string `json:"attrs,omitempty"`
	Precursors []Precursor       `json:"precursors,omitempty"`
	Peaks      RawPeaks          `json:"-"`
	Children   []*Scan           `json:"-"`

	MzArray        []float64 `json:"mzArray,omitempty"`
	IntensityArray []float64 `json:"intensityArray,omitempty"`

	decoded bool
}

// Precursor is one precursor ion reference: the m/z text value plus the
// selection attributes.
type Precursor struct {
	Mz               float64 `json:"mz"`
	Intensity        float64 `json:"precursorIntensity,omitempty"`
	ScanNum          string  `json:"precursorScanNum,omitempty"`
	Charge           int     `json:"precursorCharge,omitempty"`
	ActivationMethod string  `json:"activationMethod,omitempty"`
	WindowWideness   float64 `json:"windowWideness,omitempty"`
}

// RawPeaks is the undecoded peak payload with its encoding attributes.
type RawPeaks struct {
	Precision   int
	Compression string
	ByteOrder   string
	PairOrder   string
	Data        string
}

// Decode fills MzArray and IntensityArray from the raw peak payload.
// It is idempotent; an absent payload decodes to two empty arrays.
func (s *Scan) Decode() error {
	if s.decoded {
		return nil
	}
	mz, intensity, err := DecodePeaks(s.Peaks.Data, s.Peaks.Precision, s.Peaks.Compression == "zlib")
	if err != nil {
		return &DecodeError{ScanID: s.Num, Err: err}
	}
	s.MzArray, s.IntensityArray = mz, intensity
	s.decoded = true
	return nil
}

// ChildNums returns the scan numbers of the direct children.
func (s *Scan) ChildNums() []string {
	if len(s.Children) == 0 {
		return nil
	}
	nums := make([]string, len(s.Children))
	for i, c := range s.Children {
		nums[i] = c.Num
	}
	return nums
}

// scanFromNode types one scan element's own attributes and children.
// Nested scan elements are the reassembler's concern and are ignored
// here.
func scanFromNode(n *corexml.Node) *Scan {
	s := &Scan{MSLevel: 1}
	for name, val := range n.Attributes() {
		switch name {
		case "num":
			s.Num = val
			s.ID = val
		case "msLevel":
			if lv, err := strconv.Atoi(val); err == nil && lv > 0 {
				s.MSLevel = lv
			} else {
				s.setAttr(name, val)
			}
		case "peaksCount":
			s.PeaksCount = intAttr(s, name, val)
		case "polarity":
			s.Polarity = val
		case "scanType":
			s.ScanType = val
		case "filterLine":
			s.FilterLine = val
		case "retentionTime":
			// ISO-8601-style duration, e.g. PT60.5S.
			if rt, err := strconv.ParseFloat(strings.Trim(val, "PTS"), 64); err == nil {
				s.RetentionTime = rt
			} else {
				s.setAttr(name, val)
			}
		case "lowMz":
			s.LowMz = floatAttr(s, name, val)
		case "highMz":
			s.HighMz = floatAttr(s, name, val)
		case "basePeakMz":
			s.BasePeakMz = floatAttr(s, name, val)
		case "basePeakIntensity":
			s.BasePeakIntensity = floatAttr(s, name, val)
		case "totIonCurrent":
			s.TotIonCurrent = floatAttr(s, name, val)
		case "collisionEnergy":
			s.CollisionEnergy = floatAttr(s, name, val)
		case "centroided":
			s.Centroided = boolAttr(s, name, val)
		case "deisotoped":
			s.Deisotoped = boolAttr(s, name, val)
		default:
			s.setAttr(name, val)
		}
	}

	for _, p := range n.ChildrenNamed("precursorMz") {
		s.Precursors = append(s.Precursors, precursorFromNode(p))
	}

	if peaks := n.ChildrenNamed("peaks"); len(peaks) > 0 {
		p := peaks[0]
		s.Peaks = RawPeaks{
			Compression: p.Attr("compressionType"),
			ByteOrder:   p.Attr("byteOrder"),
			PairOrder:   p.Attr("pairOrder"),
			Data:        p.OwnText(),
		}
		if prec, err := strconv.Atoi(p.Attr("precision")); err == nil {
			s.Peaks.Precision = prec
		}
	}

	return s
}

func precursorFromNode(n *corexml.Node) Precursor {
	var p Precursor
	p.Mz, _ = strconv.ParseFloat(n.OwnText(), 64)
	p.Intensity, _ = strconv.ParseFloat(n.Attr("precursorIntensity"), 64)
	p.ScanNum = n.Attr("precursorScanNum")
	p.Charge, _ = strconv.Atoi(n.Attr("precursorCharge"))
	p.ActivationMethod = n.Attr("activationMethod")
	p.WindowWideness, _ = strconv.ParseFloat(n.Attr("windowWideness"), 64)
	return p
}

func (s *Scan) setAttr(name, val string) {
	if s.Attrs == nil {
		s.Attrs = make(map[string]string)
	}
	s.Attrs[name] = val
}

func intAttr(s *Scan, name, val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		s.setAttr(name, val)
		return 0
	}
	return i
}

func floatAttr(s *Scan, name, val string) float64 {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		s.setAttr(name, val)
		return 0
	}
	return f
}

func boolAttr(s *Scan, name, val string) bool {
	b, err := strconv.ParseBool(val)
	if err != nil {
		s.setAttr(name, val)
		return false
	}
	return b
}
