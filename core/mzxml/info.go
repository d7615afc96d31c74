package mzxml

import (
	"fmt"
	"regexp"
	"strconv"

	corexml "github.com/radusuciu/pyteomics/core/xml"
	"github.com/radusuciu/pyteomics/internal/fileutil"
)

// FileInfo summarizes a document's run-level header.
type FileInfo struct {
	Version        string               `json:"version,omitempty"`
	ScanCount      int                  `json:"scanCount"`
	StartTime      string               `json:"startTime,omitempty"`
	EndTime        string               `json:"endTime,omitempty"`
	ParentFiles    []ParentFile         `json:"parentFiles,omitempty"`
	Instrument     *InstrumentInfo      `json:"instrument,omitempty"`
	DataProcessing []DataProcessingInfo `json:"dataProcessing,omitempty"`
}

// ParentFile is one acquisition source listed in the run header.
type ParentFile struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType,omitempty"`
	FileSha1 string `json:"fileSha1,omitempty"`
}

// InstrumentInfo is the acquisition instrument description.
type InstrumentInfo struct {
	Manufacturer string       `json:"manufacturer,omitempty"`
	Model        string       `json:"model,omitempty"`
	Ionisation   string       `json:"ionisation,omitempty"`
	MassAnalyzer string       `json:"massAnalyzer,omitempty"`
	Detector     string       `json:"detector,omitempty"`
	Software     SoftwareInfo `json:"software,omitempty"`
}

// SoftwareInfo names one software stage.
type SoftwareInfo struct {
	Type    string `json:"type,omitempty"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// DataProcessingInfo is one processing stage applied to the run.
type DataProcessingInfo struct {
	Centroided bool         `json:"centroided,omitempty"`
	Deisotoped bool         `json:"deisotoped,omitempty"`
	Software   SoftwareInfo `json:"software,omitempty"`
}

// versionFromSchema pulls the format version out of a namespace or
// schema-location URL.
var versionFromSchema = regexp.MustCompile(`mzXML[_/](\d+(?:\.\d+)*)`)

// Info parses the run-level header of the document at path.
func Info(path string) (*FileInfo, error) {
	src, err := fileutil.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	doc, err := corexml.ParseReader(src)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{}
	if root := doc.Root(); root != nil {
		attrs := root.Attributes()
		for _, candidate := range []string{attrs["schemaLocation"], attrs["xmlns"]} {
			if m := versionFromSchema.FindStringSubmatch(candidate); m != nil {
				info.Version = m[1]
				break
			}
		}
	}

	run, err := doc.XPathFirst("//msRun")
	if err != nil {
		return nil, err
	}
	if run != nil {
		info.ScanCount, _ = strconv.Atoi(run.Attr("scanCount"))
		info.StartTime = run.Attr("startTime")
		info.EndTime = run.Attr("endTime")
	}

	parents, err := doc.XPath("//parentFile")
	if err != nil {
		return nil, err
	}
	for _, p := range parents {
		info.ParentFiles = append(info.ParentFiles, ParentFile{
			FileName: p.Attr("fileName"),
			FileType: p.Attr("fileType"),
			FileSha1: p.Attr("fileSha1"),
		})
	}

	inst, err := doc.XPathFirst("//msInstrument")
	if err != nil {
		return nil, err
	}
	if inst != nil {
		ii := &InstrumentInfo{
			Manufacturer: childValue(inst, "msManufacturer"),
			Model:        childValue(inst, "msModel"),
			Ionisation:   childValue(inst, "msIonisation"),
			MassAnalyzer: childValue(inst, "msMassAnalyzer"),
			Detector:     childValue(inst, "msDetector"),
		}
		if sw := inst.ChildrenNamed("software"); len(sw) > 0 {
			ii.Software = softwareFromNode(sw[0])
		}
		info.Instrument = ii
	}

	stages, err := doc.XPath("//dataProcessing")
	if err != nil {
		return nil, err
	}
	for _, st := range stages {
		dp := DataProcessingInfo{}
		dp.Centroided, _ = strconv.ParseBool(st.Attr("centroided"))
		dp.Deisotoped, _ = strconv.ParseBool(st.Attr("deisotoped"))
		if sw := st.ChildrenNamed("software"); len(sw) > 0 {
			dp.Software = softwareFromNode(sw[0])
		}
		info.DataProcessing = append(info.DataProcessing, dp)
	}

	return info, nil
}

// Validate checks the document at path for XML well-formedness.
func Validate(path string) error {
	src, err := fileutil.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	result := corexml.ValidateReader(src)
	if !result.Valid {
		if len(result.Errors) > 0 {
			return fmt.Errorf("%s: %s", path, result.Errors[0].Message)
		}
		return fmt.Errorf("%s: malformed XML", path)
	}
	return nil
}

func childValue(n *corexml.Node, name string) string {
	children := n.ChildrenNamed(name)
	if len(children) == 0 {
		return ""
	}
	return children[0].Attr("value")
}

func softwareFromNode(n *corexml.Node) SoftwareInfo {
	return SoftwareInfo{
		Type:    n.Attr("type"),
		Name:    n.Attr("name"),
		Version: n.Attr("version"),
	}
}
