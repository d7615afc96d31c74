// Package mztab reads tab-delimited identification documents: flat
// dash-delimited metadata lines and header/row table sections, typed at
// parse time and reconstructed into nested form on demand.
//
// A document is read in one pass. Metadata stays in its flat, ordered
// form; entity grouping and collection indexing happen lazily through
// Gather, the metadata accessors, and table row materialization.
package mztab

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/radusuciu/pyteomics/core/group"
	"github.com/radusuciu/pyteomics/internal/fileutil"
	"github.com/radusuciu/pyteomics/internal/textio"
)

// Section prefixes of the tab-delimited encoding.
const (
	prefixMetadata = "MTD"
	prefixComment  = "COM"
)

// versionPattern extracts the numeric schema version and the optional
// variant letter from the version metadata value.
var versionPattern = regexp.MustCompile(`(\d+.\d+.\d+)(?:-([MP]))?`)

// Document is one parsed document: ordered flat metadata, comments, and
// the six identification tables.
type Document struct {
	Metadata *group.Group
	Comments []Value

	Proteins              *Table
	Peptides              *Table
	SpectrumMatches       *Table
	SmallMolecules        *Table
	SmallMoleculeFeatures *Table
	SmallMoleculeEvidence *Table

	variant    string
	numVersion []int
}

// NamedTable pairs a table with its section key.
type NamedTable struct {
	Key   string
	Table *Table
}

func newDocument() *Document {
	return &Document{
		Metadata:              group.New(),
		Proteins:              NewTable("protein"),
		Peptides:              NewTable("peptide"),
		SpectrumMatches:       NewTable("psm"),
		SmallMolecules:        NewTable("small molecule"),
		SmallMoleculeFeatures: NewTable("small molecule feature"),
		SmallMoleculeEvidence: NewTable("small molecule evidence"),
	}
}

// Open reads the document at path. Inputs ending in .gz or .xz are
// decompressed transparently.
func Open(path string) (*Document, error) {
	src, err := fileutil.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return Read(src)
}

// Read parses a whole document from r. Lines dispatch on their first
// tab-delimited token; blank lines and unknown tokens are skipped. One
// malformed value never fails the document, but a structural defect
// such as a ragged table row does.
func Read(r io.Reader) (*Document, error) {
	doc := newDocument()
	fs := textio.NewFieldScanner(r)
	for {
		fields, err := fs.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		if err := doc.dispatch(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", fs.Line(), err)
		}
	}
	doc.determineSchemaVersion()
	return doc, nil
}

func (d *Document) dispatch(fields []string) error {
	switch fields[0] {
	case prefixMetadata:
		if len(fields) >= 3 {
			d.Metadata.Set(group.NameKey(fields[1]), CastValue(fields[2]))
		}
	case prefixComment:
		if len(fields) >= 2 {
			d.Comments = append(d.Comments, CastValue(fields[1]))
		}
	case "PRH":
		d.Proteins.SetHeader(fields[1:])
	case "PEH":
		d.Peptides.SetHeader(fields[1:])
	case "PSH":
		d.SpectrumMatches.SetHeader(fields[1:])
	case "SMH":
		d.SmallMolecules.SetHeader(fields[1:])
	case "SFH":
		d.SmallMoleculeFeatures.SetHeader(fields[1:])
	case "SEH":
		d.SmallMoleculeEvidence.SetHeader(fields[1:])
	case "PRT":
		return d.Proteins.Add(fields[1:])
	case "PEP":
		return d.Peptides.Add(fields[1:])
	case "PSM":
		return d.SpectrumMatches.Add(fields[1:])
	case "SML":
		return d.SmallMolecules.Add(fields[1:])
	case "SMF":
		return d.SmallMoleculeFeatures.Add(fields[1:])
	case "SME":
		return d.SmallMoleculeEvidence.Add(fields[1:])
	}
	return nil
}

// determineSchemaVersion parses the version metadata value into the
// numeric triple and the variant letter, defaulting the variant to P.
// A missing or unparseable version leaves the variant undetermined so
// that access stays lazy.
func (d *Document) determineSchemaVersion() {
	v, ok := d.Metadata.Get(group.NameKey("mzTab-version"))
	if !ok {
		return
	}
	val, ok := v.(Value)
	if !ok {
		return
	}
	m := versionPattern.FindStringSubmatch(val.String())
	if m == nil {
		return
	}
	var nums []int
	for _, part := range strings.Split(m[1], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return
		}
		nums = append(nums, n)
	}
	d.numVersion = nums
	d.variant = m[2]
	if d.variant == "" {
		d.variant = "P"
	}
}

// Variant returns the schema variant letter, or "" when the document
// does not carry a parseable version.
func (d *Document) Variant() string { return d.variant }

// NumVersion returns the numeric schema version triple, or nil.
func (d *Document) NumVersion() []int {
	return append([]int(nil), d.numVersion...)
}

// GatherMetadata gathers the flat metadata mapping into its nested
// tree form. The tree is rebuilt on every call; the flat mapping stays
// the stored representation.
func (d *Document) GatherMetadata() *group.Group {
	return Gather(d.Metadata)
}

// Tables returns the tables in their variant order: the P variant
// carries proteins, peptides, spectrum matches, and small molecules;
// the M variant the three small-molecule tables. An undetermined
// variant returns all six.
func (d *Document) Tables() []NamedTable {
	switch d.variant {
	case "P":
		return []NamedTable{
			{"PRT", d.Proteins},
			{"PEP", d.Peptides},
			{"PSM", d.SpectrumMatches},
			{"SML", d.SmallMolecules},
		}
	case "M":
		return []NamedTable{
			{"SML", d.SmallMolecules},
			{"SMF", d.SmallMoleculeFeatures},
			{"SME", d.SmallMoleculeEvidence},
		}
	}
	return []NamedTable{
		{"PRT", d.Proteins},
		{"PEP", d.Peptides},
		{"PSM", d.SpectrumMatches},
		{"SML", d.SmallMolecules},
		{"SMF", d.SmallMoleculeFeatures},
		{"SME", d.SmallMoleculeEvidence},
	}
}

// Table returns a table by its section key (prt, pep, psm, sml, smf,
// sme), case-insensitively.
func (d *Document) Table(key string) (*Table, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "prt":
		return d.Proteins, nil
	case "pep":
		return d.Peptides, nil
	case "psm":
		return d.SpectrumMatches, nil
	case "sml":
		return d.SmallMolecules, nil
	case "smf":
		return d.SmallMoleculeFeatures, nil
	case "sme":
		return d.SmallMoleculeEvidence, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTable, key)
}
