package mztab

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// nullMarker is the literal cell content that denotes an absent value.
const nullMarker = "null"

// Kind identifies the interpreted type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindParam
	KindList
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindParam:
		return "param"
	case KindList:
		return "list"
	}
	return "unknown"
}

// Param is a controlled-vocabulary parameter: an accession, a
// human-readable name, and an optional literal value. The vocabulary
// label from the source tuple is not retained.
type Param struct {
	Accession string
	Name      string
	Value     string
}

// HasValue reports whether the parameter carries a literal value.
func (p Param) HasValue() bool { return p.Value != "" }

// String renders a name-only parameter as its bare name, and a valued
// one as name=value.
func (p Param) String() string {
	if p.Value == "" {
		return p.Name
	}
	return p.Name + "=" + p.Value
}

// Value is one interpreted metadata or cell value. The zero Value is
// the null marker.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	p    Param
	list []Value
}

// Null returns the null-marker Value.
func Null() Value { return Value{} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str returns a string Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// ParamValue returns a parameter Value.
func ParamValue(p Param) Value { return Value{kind: KindParam, p: p} }

// List returns a list Value.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Kind returns the interpreted type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the integer value, or 0 for other kinds.
func (v Value) Int() int64 {
	if v.kind == KindInt {
		return v.i
	}
	return 0
}

// Float returns the numeric value for float and integer kinds, or 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	}
	return 0
}

// Str returns the raw string for string kinds, or "".
func (v Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// Param returns the parameter and whether the value holds one.
func (v Value) Param() (Param, bool) {
	if v.kind == KindParam {
		return v.p, true
	}
	return Param{}, false
}

// List returns the element values for list kinds, or nil.
func (v Value) List() []Value {
	if v.kind == KindList {
		return v.list
	}
	return nil
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindParam:
		return v.p == o.p
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders the value for display. Lists join their elements with
// the source separator.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return nullMarker
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindParam:
		return v.p.String()
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return strings.Join(parts, "|")
	}
	return ""
}

// MarshalJSON renders null, numbers, and strings natively; parameters
// as objects; lists as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindParam:
		obj := struct {
			Accession string `json:"accession,omitempty"`
			Name      string `json:"name"`
			Value     string `json:"value,omitempty"`
		}{v.p.Accession, v.p.Name, v.p.Value}
		return json.Marshal(obj)
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return []byte("null"), nil
}

// paramFieldSplit splits a tuple interior on commas, eating the
// whitespace around each comma.
var paramFieldSplit = regexp.MustCompile(`\s*,\s*`)

// CastValue interprets one raw cell or metadata value. The ladder is:
// the null marker, then bracketed forms (a |-separated list of values,
// or a parameter tuple), then integer, then float, then the raw string.
func CastValue(raw string) Value {
	if raw == nullMarker {
		return Null()
	}
	if strings.HasPrefix(raw, "[") {
		if strings.Contains(raw, "|") {
			parts := strings.Split(raw, "|")
			items := make([]Value, len(parts))
			for i, part := range parts {
				items[i] = CastValue(part)
			}
			return List(items...)
		}
		return castParam(raw)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Float(f)
	}
	return Str(raw)
}

// castParam parses a bracketed tuple (label, accession, name, value).
// The label field is dropped, and an empty value field collapses the
// parameter to its name identity. Anything that does not split into
// exactly four fields keeps its raw form.
func castParam(raw string) Value {
	if len(raw) < 2 {
		return Str(raw)
	}
	interior := raw[1 : len(raw)-1]
	fields := paramFieldSplit.Split(interior, -1)
	if len(fields) != 4 {
		return Str(raw)
	}
	return ParamValue(Param{Accession: fields[1], Name: fields[2], Value: fields[3]})
}
