// Command mstool inspects mass spectrometry documents. It reads
// tab-delimited identification files and XML spectrum files, prints
// their reconstructed metadata and tables, and serves scans over
// HTTP/WebSocket.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/radusuciu/pyteomics/core/group"
	"github.com/radusuciu/pyteomics/core/mztab"
	"github.com/radusuciu/pyteomics/core/mzxml"
	"github.com/radusuciu/pyteomics/core/sqlite"
	corexml "github.com/radusuciu/pyteomics/core/xml"
	"github.com/radusuciu/pyteomics/internal/api"
	"github.com/radusuciu/pyteomics/internal/fileutil"
	"github.com/radusuciu/pyteomics/internal/logging"
	"github.com/radusuciu/pyteomics/internal/scanindex"
)

const version = "0.1.0"

// CLI defines the command-line interface for mstool.
var CLI struct {
	// Global flags
	LogLevel  string `help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string `help:"Log format (text, json)" default:"text" enum:"text,json"`

	// Command groups (noun-first organization)
	Mztab    MztabGroup  `cmd:"" help:"Tab-delimited identification document operations"`
	Mzxml    MzxmlGroup  `cmd:"" help:"XML spectrum document operations"`
	Validate ValidateCmd `cmd:"" help:"Check a document for well-formedness"`
	Serve    ServeCmd    `cmd:"" help:"Serve scans over HTTP/WebSocket"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// MztabGroup contains tab-delimited document operations.
type MztabGroup struct {
	Info     MztabInfoCmd     `cmd:"" help:"Print variant, version, and table sizes"`
	Metadata MztabMetadataCmd `cmd:"" help:"Print the reconstructed metadata mapping"`
	Table    MztabTableCmd    `cmd:"" help:"Print one section table"`
}

// MzxmlGroup contains spectrum document operations.
type MzxmlGroup struct {
	Info  MzxmlInfoCmd  `cmd:"" help:"Print the run-level header summary"`
	Scans MzxmlScansCmd `cmd:"" help:"Stream reassembled scans"`
	Get   MzxmlGetCmd   `cmd:"" help:"Fetch one scan by number via the scan index"`
	Index MzxmlIndexCmd `cmd:"" help:"Build or refresh the sidecar scan index"`
	Query MzxmlQueryCmd `cmd:"" help:"Run a raw XPath query against the document"`
}

// MztabInfoCmd prints variant, version, and table sizes.
type MztabInfoCmd struct {
	Path string `arg:"" help:"Document path" type:"existingfile"`
}

func (c *MztabInfoCmd) Run() error {
	doc, err := mztab.Open(c.Path)
	if err != nil {
		return err
	}

	variant := doc.Variant()
	if variant == "" {
		variant = "undetermined"
	}
	fmt.Printf("File: %s\n", c.Path)
	fmt.Printf("Variant: %s\n", variant)
	if nv := doc.NumVersion(); nv != nil {
		parts := make([]string, len(nv))
		for i, n := range nv {
			parts[i] = strconv.Itoa(n)
		}
		fmt.Printf("Version: %s\n", strings.Join(parts, "."))
	}
	fmt.Printf("Metadata entries: %d\n", doc.Metadata.Len())
	if len(doc.Comments) > 0 {
		fmt.Printf("Comments: %d\n", len(doc.Comments))
	}

	fmt.Println("Tables:")
	for _, nt := range doc.Tables() {
		if nt.Table.Len() == 0 && nt.Table.Width() == 0 {
			fmt.Printf("  %-4s empty\n", nt.Key)
			continue
		}
		fmt.Printf("  %-4s %d rows x %d columns\n", nt.Key, nt.Table.Len(), nt.Table.Width())
	}
	return nil
}

// MztabMetadataCmd prints the reconstructed metadata mapping.
type MztabMetadataCmd struct {
	Path   string `arg:"" help:"Document path" type:"existingfile"`
	Gather bool   `help:"Gather bracketed keys into nested collections"`
	JSON   bool   `help:"Emit JSON instead of text"`
}

func (c *MztabMetadataCmd) Run() error {
	doc, err := mztab.Open(c.Path)
	if err != nil {
		return err
	}

	meta := doc.Metadata
	if c.Gather {
		meta = doc.GatherMetadata()
	}

	if c.JSON {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printGroup(os.Stdout, meta, "")
	return nil
}

// MztabTableCmd prints one section table.
type MztabTableCmd struct {
	Path   string `arg:"" help:"Document path" type:"existingfile"`
	Name   string `arg:"" help:"Section key (prt, pep, psm, sml, smf, sme)"`
	Format string `help:"Output format" default:"table" enum:"table,dict,csv"`
	Limit  int    `help:"Print at most this many rows (0 = all)"`
}

func (c *MztabTableCmd) Run() error {
	doc, err := mztab.Open(c.Path)
	if err != nil {
		return err
	}
	table, err := doc.Table(c.Name)
	if err != nil {
		return err
	}

	if c.Format == "dict" {
		dict := table.Dict()
		if c.Limit > 0 && c.Limit < len(dict.Rows) {
			dict.Rows = dict.Rows[:c.Limit]
		}
		data, err := json.MarshalIndent(dict, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	df, err := table.DataFrame("")
	if err != nil {
		return err
	}
	if c.Limit > 0 && c.Limit < df.Nrow() {
		idx := make([]int, c.Limit)
		for i := range idx {
			idx[i] = i
		}
		df = df.Subset(idx)
	}

	if c.Format == "csv" {
		return df.WriteCSV(os.Stdout)
	}
	fmt.Println(df)
	return nil
}

// MzxmlInfoCmd prints the run-level header summary.
type MzxmlInfoCmd struct {
	Path string `arg:"" help:"Document path" type:"existingfile"`
	JSON bool   `help:"Emit JSON instead of text"`
}

func (c *MzxmlInfoCmd) Run() error {
	info, err := mzxml.Info(c.Path)
	if err != nil {
		return err
	}
	digest, err := fileutil.Digest(c.Path)
	if err != nil {
		return err
	}

	if c.JSON {
		payload := struct {
			File   string          `json:"file"`
			Digest string          `json:"digest"`
			Info   *mzxml.FileInfo `json:"info"`
		}{c.Path, digest, info}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("File: %s\n", c.Path)
	fmt.Printf("Digest: %s\n", digest)
	if info.Version != "" {
		fmt.Printf("Format version: %s\n", info.Version)
	}
	fmt.Printf("Scans: %d\n", info.ScanCount)
	if info.StartTime != "" {
		fmt.Printf("Time range: %s .. %s\n", info.StartTime, info.EndTime)
	}
	for _, pf := range info.ParentFiles {
		fmt.Printf("Parent file: %s (%s)\n", pf.FileName, pf.FileType)
	}
	if inst := info.Instrument; inst != nil {
		fmt.Printf("Instrument: %s %s\n", inst.Manufacturer, inst.Model)
		if inst.Software.Name != "" {
			fmt.Printf("Acquisition software: %s %s\n", inst.Software.Name, inst.Software.Version)
		}
	}
	for _, dp := range info.DataProcessing {
		flags := ""
		if dp.Centroided {
			flags += " centroided"
		}
		if dp.Deisotoped {
			flags += " deisotoped"
		}
		fmt.Printf("Processing: %s %s%s\n", dp.Software.Name, dp.Software.Version, flags)
	}
	return nil
}

// MzxmlScansCmd streams reassembled scans to stdout.
type MzxmlScansCmd struct {
	Path  string `arg:"" help:"Document path" type:"existingfile"`
	Limit int    `help:"Stop after this many scans (0 = all)"`
	JSON  bool   `help:"Emit one JSON object per scan"`
	Peaks bool   `help:"Include decoded peak arrays in JSON output"`
}

func (c *MzxmlScansCmd) Run() error {
	reader, err := mzxml.Open(c.Path)
	if err != nil {
		return err
	}
	defer reader.Close()
	logging.DocumentOpened(c.Path, "mzxml")

	enc := json.NewEncoder(os.Stdout)
	count := 0
	for {
		if c.Limit > 0 && count >= c.Limit {
			break
		}
		s, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var derr *mzxml.DecodeError
			if errors.As(err, &derr) {
				logging.DecodeFailure(c.Path, derr.ScanID, err)
				continue
			}
			return err
		}
		count++

		if c.JSON {
			out := s
			if !c.Peaks {
				trimmed := *s
				trimmed.MzArray = nil
				trimmed.IntensityArray = nil
				out = &trimmed
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
			continue
		}

		line := fmt.Sprintf("scan %s  level=%d  peaks=%d", s.Num, s.MSLevel, len(s.MzArray))
		if s.RetentionTime > 0 {
			line += fmt.Sprintf("  rt=%.2fs", s.RetentionTime)
		}
		if kids := s.ChildNums(); len(kids) > 0 {
			line += fmt.Sprintf("  children=%s", strings.Join(kids, ","))
		}
		fmt.Println(line)
	}

	if !c.JSON {
		fmt.Printf("%d scans\n", count)
	}
	return nil
}

// MzxmlGetCmd fetches one scan by number via the scan index.
type MzxmlGetCmd struct {
	Path string `arg:"" help:"Document path" type:"existingfile"`
	Num  string `arg:"" help:"Scan number"`
	JSON bool   `help:"Emit JSON instead of text"`
}

func (c *MzxmlGetCmd) Run() error {
	ix, err := scanindex.Open(c.Path)
	if err != nil {
		return err
	}
	defer ix.Close()

	s, err := ix.Scan(c.Num)
	if err != nil {
		return err
	}

	if c.JSON {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Scan %s\n", s.Num)
	fmt.Printf("  Level: %d\n", s.MSLevel)
	if s.RetentionTime > 0 {
		fmt.Printf("  Retention time: %.2fs\n", s.RetentionTime)
	}
	fmt.Printf("  Peaks: %d\n", len(s.MzArray))
	for _, p := range s.Precursors {
		fmt.Printf("  Precursor: m/z %.4f intensity %.1f\n", p.Mz, p.Intensity)
	}
	if kids := s.ChildNums(); len(kids) > 0 {
		fmt.Printf("  Children: %s\n", strings.Join(kids, ", "))
	}
	return nil
}

// MzxmlIndexCmd builds or refreshes the sidecar scan index.
type MzxmlIndexCmd struct {
	Path  string `arg:"" help:"Document path" type:"existingfile"`
	Force bool   `help:"Rebuild even if the existing index is fresh"`
}

func (c *MzxmlIndexCmd) Run() error {
	jobID := uuid.New().String()
	start := time.Now()

	var ix *scanindex.Index
	var err error
	if c.Force {
		ix, err = scanindex.Build(c.Path)
	} else {
		ix, err = scanindex.Open(c.Path)
	}
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Len()
	if err != nil {
		return err
	}
	logging.IndexBuild(c.Path, n, time.Since(start), "job_id", jobID)
	fmt.Printf("Indexed %d scans in %s\n", n, scanindex.IndexPath(c.Path))
	return nil
}

// MzxmlQueryCmd runs a raw XPath query against the document.
type MzxmlQueryCmd struct {
	Path  string `arg:"" help:"Document path" type:"existingfile"`
	XPath string `arg:"" help:"XPath expression"`
}

func (c *MzxmlQueryCmd) Run() error {
	src, err := fileutil.Open(c.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	doc, err := corexml.ParseReader(src)
	if err != nil {
		return err
	}
	nodes, err := doc.XPath(c.XPath)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		fmt.Println(n.OuterXML())
	}
	fmt.Fprintf(os.Stderr, "%d nodes\n", len(nodes))
	return nil
}

// ValidateCmd checks a document for well-formedness.
type ValidateCmd struct {
	Path string `arg:"" help:"Document path" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	if err := mzxml.Validate(c.Path); err != nil {
		return err
	}
	fmt.Printf("OK: %s is well-formed\n", c.Path)
	return nil
}

// ServeCmd serves scans over HTTP/WebSocket.
type ServeCmd struct {
	Path string `arg:"" help:"Document path" type:"existingfile"`
	Addr string `help:"Listen address" default:":8080"`
}

func (c *ServeCmd) Run() error {
	return api.Start(api.Config{Addr: c.Addr, File: c.Path})
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("mstool version %s\n", version)
	info := sqlite.GetInfo()
	fmt.Printf("sqlite driver: %s (%s)\n", info.DriverType, info.Package)
	return nil
}

// printGroup renders a reconstructed mapping as indented text.
func printGroup(w io.Writer, g *group.Group, indent string) {
	for _, k := range g.Keys() {
		v, _ := g.Get(k)
		if child, ok := v.(*group.Group); ok {
			fmt.Fprintf(w, "%s%s:\n", indent, k)
			printGroup(w, child, indent+"  ")
			continue
		}
		fmt.Fprintf(w, "%s%s: %v\n", indent, k, v)
	}
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseFormat(s string) logging.Format {
	if s == "json" {
		return logging.FormatJSON
	}
	return logging.FormatText
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("mstool"),
		kong.Description("Mass spectrometry document toolkit - reads, indexes, and serves mzTab and mzXML files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(parseLevel(CLI.LogLevel), parseFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
