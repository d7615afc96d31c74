package mztab

import (
	"fmt"
	"strings"

	"github.com/radusuciu/pyteomics/core/group"
)

// propKind distinguishes scalar metadata keys from indexed collections.
type propKind int

const (
	scalarProp propKind = iota
	collectionProp
)

// propSpec is one metadata-backed property: the metadata key (or
// collection prefix), the exported property name, and the variants that
// require the key to be present.
type propSpec struct {
	key      string
	name     string
	kind     propKind
	required string
}

// metadataProperties is the static mapping behind Property and the
// named accessors. Collections address bracket-indexed key families;
// scalars address a single metadata key.
var metadataProperties = []propSpec{
	{"mzTab-version", "version", scalarProp, "MP"},
	{"mzTab-mode", "mode", scalarProp, "P"},
	{"mzTab-type", "type", scalarProp, "P"},
	{"mzTab-ID", "id", scalarProp, "M"},
	{"title", "title", scalarProp, ""},
	{"description", "description", scalarProp, ""},
	{"ms_run", "ms_runs", collectionProp, "MP"},
	{"instrument", "instruments", collectionProp, ""},
	{"software", "software", collectionProp, ""},
	{"publication", "publications", collectionProp, ""},
	{"contact", "contacts", collectionProp, ""},
	{"uri", "uris", collectionProp, ""},
	{"external_study_uri", "external_study_uris", collectionProp, ""},
	{"quantification_method", "quantification_method", scalarProp, "M"},
	{"sample", "samples", collectionProp, ""},
	{"assay", "assays", collectionProp, ""},
	{"study_variable", "study_variables", collectionProp, "M"},
	{"custom", "custom", collectionProp, ""},
	{"cv", "cvs", collectionProp, "M"},
	{"database", "databases", collectionProp, "M"},
	{"psm_search_engine_score", "psm_search_engine_scores", collectionProp, ""},
	{"protein_search_engine_score", "protein_search_engine_scores", collectionProp, ""},
	{"fixed_mod", "fixed_mods", collectionProp, "P"},
	{"variable_mod", "variable_mods", collectionProp, "P"},
	{"colunit_protein", "colunit_protein", scalarProp, ""},
	{"colunit_peptide", "colunit_peptide", scalarProp, ""},
	{"colunit_psm", "colunit_psm", scalarProp, ""},
	{"colunit-small_molecule", "colunit_small_molecule", scalarProp, ""},
	{"false_discovery_rate", "false_discovery_rate", scalarProp, ""},
	{"derivatization_agent", "derivatization_agents", collectionProp, ""},
	{"small_molecule-quantification_unit", "small_molecule_quantification_unit", scalarProp, "M"},
	{"small_molecule_feature-quantification_unit", "small_molecule_feature_quantification_unit", scalarProp, "M"},
	{"small_molecule-identification_reliability", "small_molecule_identification_reliability", scalarProp, ""},
	{"id_confidence_measure", "id_confidence_measures", collectionProp, "M"},
	{"colunit-small_molecule_feature", "colunit_small_molecule_feature", scalarProp, ""},
	{"colunit-small_molecule_evidence", "colunit_small_molecule_evidence", scalarProp, ""},
	{"sample_processing", "sample_processing", collectionProp, ""},
}

// PropertyNames returns the exported property names in table order.
func PropertyNames() []string {
	names := make([]string, len(metadataProperties))
	for i, p := range metadataProperties {
		names[i] = p.name
	}
	return names
}

// Property resolves a metadata-backed property by its exported name.
// Scalars return their typed Value; collections gather the metadata and
// return the keyed sub-tree. A property whose key is absent yields nil
// unless the document's variant requires it, in which case a
// RequiredFieldError is returned. Absence is only ever reported here,
// never during parsing.
func (d *Document) Property(name string) (any, error) {
	for _, p := range metadataProperties {
		if p.name == name {
			return d.resolve(p)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

func (d *Document) resolve(p propSpec) (any, error) {
	if p.kind == collectionProp {
		if v, ok := Gather(d.Metadata).Get(group.NameKey(p.key)); ok {
			return v, nil
		}
	} else if v, ok := d.Metadata.Get(group.NameKey(p.key)); ok {
		return v, nil
	}
	if d.requiredBy(p.required) {
		return nil, &RequiredFieldError{Key: p.key, Variant: d.variant}
	}
	return nil, nil
}

// requiredBy reports whether the document's variant is among the
// letters that mark a property required. An undetermined variant
// requires nothing.
func (d *Document) requiredBy(required string) bool {
	return d.variant != "" && required != "" && strings.Contains(required, d.variant)
}

func (d *Document) scalar(key, required string) (Value, error) {
	if v, ok := d.Metadata.Get(group.NameKey(key)); ok {
		if val, ok := v.(Value); ok {
			return val, nil
		}
	}
	if d.requiredBy(required) {
		return Value{}, &RequiredFieldError{Key: key, Variant: d.variant}
	}
	return Null(), nil
}

func (d *Document) collection(key, required string) (*group.Group, error) {
	if v, ok := Gather(d.Metadata).Get(group.NameKey(key)); ok {
		if sub, ok := v.(*group.Group); ok {
			return sub, nil
		}
	}
	if d.requiredBy(required) {
		return nil, &RequiredFieldError{Key: key, Variant: d.variant}
	}
	return nil, nil
}

// Version returns the schema version value, required in both variants.
func (d *Document) Version() (Value, error) { return d.scalar("mzTab-version", "MP") }

// Mode returns the document mode, required in the P variant.
func (d *Document) Mode() (Value, error) { return d.scalar("mzTab-mode", "P") }

// Type returns the document type, required in the P variant.
func (d *Document) Type() (Value, error) { return d.scalar("mzTab-type", "P") }

// ID returns the document identifier, required in the M variant.
func (d *Document) ID() (Value, error) { return d.scalar("mzTab-ID", "M") }

// Title returns the optional document title.
func (d *Document) Title() (Value, error) { return d.scalar("title", "") }

// Description returns the optional document description.
func (d *Document) Description() (Value, error) { return d.scalar("description", "") }

// MsRuns gathers the ms_run collection, required in both variants.
func (d *Document) MsRuns() (*group.Group, error) { return d.collection("ms_run", "MP") }

// Instruments gathers the instrument collection.
func (d *Document) Instruments() (*group.Group, error) { return d.collection("instrument", "") }

// Software gathers the software collection.
func (d *Document) Software() (*group.Group, error) { return d.collection("software", "") }

// Samples gathers the sample collection.
func (d *Document) Samples() (*group.Group, error) { return d.collection("sample", "") }

// Assays gathers the assay collection.
func (d *Document) Assays() (*group.Group, error) { return d.collection("assay", "") }

// StudyVariables gathers the study_variable collection, required in
// the M variant.
func (d *Document) StudyVariables() (*group.Group, error) {
	return d.collection("study_variable", "M")
}

// Contacts gathers the contact collection.
func (d *Document) Contacts() (*group.Group, error) { return d.collection("contact", "") }

// CVs gathers the controlled-vocabulary collection, required in the M
// variant.
func (d *Document) CVs() (*group.Group, error) { return d.collection("cv", "M") }

// Databases gathers the database collection, required in the M variant.
func (d *Document) Databases() (*group.Group, error) { return d.collection("database", "M") }

// SampleProcessing gathers the sample_processing collection.
func (d *Document) SampleProcessing() (*group.Group, error) {
	return d.collection("sample_processing", "")
}

// FixedMods gathers the fixed_mod collection, required in the P variant.
func (d *Document) FixedMods() (*group.Group, error) { return d.collection("fixed_mod", "P") }

// VariableMods gathers the variable_mod collection, required in the P
// variant.
func (d *Document) VariableMods() (*group.Group, error) { return d.collection("variable_mod", "P") }
