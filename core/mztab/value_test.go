package mztab

import "testing"

// TestCastValue verifies the interpretation ladder for raw cells.
func TestCastValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Value
	}{
		{"null marker", "null", Null()},
		{"integer", "42", Int(42)},
		{"negative integer", "-7", Int(-7)},
		{"float", "3.25", Float(3.25)},
		{"scientific float", "1e-3", Float(0.001)},
		{"plain string", "HeLa cells", Str("HeLa cells")},
		{
			"param without value",
			"[MS, MS:1001207, Mascot, ]",
			ParamValue(Param{Accession: "MS:1001207", Name: "Mascot"}),
		},
		{
			"param with value",
			"[MS, MS:1001171, Mascot:score, 30]",
			ParamValue(Param{Accession: "MS:1001171", Name: "Mascot:score", Value: "30"}),
		},
		{
			"malformed tuple stays text",
			"[only, three, fields]",
			Str("[only, three, fields]"),
		},
		{
			"list of params",
			"[MS, MS:1001207, Mascot, ]|[MS, MS:1001208, SEQUEST, ]",
			List(
				ParamValue(Param{Accession: "MS:1001207", Name: "Mascot"}),
				ParamValue(Param{Accession: "MS:1001208", Name: "SEQUEST"}),
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CastValue(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("CastValue(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// TestParamString verifies display rendering of parameters.
func TestParamString(t *testing.T) {
	scored := Param{Accession: "MS:1001171", Name: "Mascot:score", Value: "30"}
	if got := scored.String(); got != "Mascot:score=30" {
		t.Errorf("String() = %q, want %q", got, "Mascot:score=30")
	}
	bare := Param{Accession: "MS:1001207", Name: "Mascot"}
	if got := bare.String(); got != "Mascot" {
		t.Errorf("String() = %q, want %q", got, "Mascot")
	}
}

// TestValueString verifies display rendering across kinds.
func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "null"},
		{"int", Int(42), "42"},
		{"float", Float(1.5), "1.5"},
		{"string", Str("abc"), "abc"},
		{"list", List(Int(1), Str("x")), "1|x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestValueFloatCoversInt verifies Float reads integer values too.
func TestValueFloatCoversInt(t *testing.T) {
	if got := Int(3).Float(); got != 3 {
		t.Errorf("Float() = %v, want 3", got)
	}
}

// TestValueMarshalJSON verifies the JSON form of each kind.
func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), `null`},
		{"int", Int(7), `7`},
		{"string", Str("a b"), `"a b"`},
		{"param", ParamValue(Param{Accession: "MS:1", Name: "n"}), `{"accession":"MS:1","name":"n"}`},
		{"list", List(Int(1), Null()), `[1,null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.v.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON failed: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("MarshalJSON = %s, want %s", b, tt.want)
			}
		})
	}
}
