package mzxml

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func encodePairs32(mz, intensity []float64) string {
	var buf bytes.Buffer
	for i := range mz {
		binary.Write(&buf, binary.BigEndian, float32(mz[i]))
		binary.Write(&buf, binary.BigEndian, float32(intensity[i]))
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func encodePairs64Zlib(t *testing.T, mz, intensity []float64) string {
	t.Helper()
	var raw bytes.Buffer
	for i := range mz {
		binary.Write(&raw, binary.BigEndian, mz[i])
		binary.Write(&raw, binary.BigEndian, intensity[i])
	}
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	return base64.StdEncoding.EncodeToString(compressed.Bytes())
}

// TestDecodePeaksEmpty verifies an empty payload yields two empty
// arrays and no error, whatever the stated precision.
func TestDecodePeaksEmpty(t *testing.T) {
	for _, precision := range []int{0, 32, 64} {
		mz, intensity, err := DecodePeaks("", precision, false)
		if err != nil {
			t.Fatalf("DecodePeaks empty, precision %d: %v", precision, err)
		}
		if len(mz) != 0 || len(intensity) != 0 {
			t.Errorf("precision %d: got %d/%d values, want empty arrays", precision, len(mz), len(intensity))
		}
		if mz == nil || intensity == nil {
			t.Errorf("precision %d: arrays should be empty, not nil", precision)
		}
	}
}

// TestDecodePeaks32 verifies a 32-bit uncompressed payload
// de-interleaves into the source arrays.
func TestDecodePeaks32(t *testing.T) {
	wantMz := []float64{100.5, 200.25}
	wantIntensity := []float64{10, 20}
	payload := encodePairs32(wantMz, wantIntensity)

	mz, intensity, err := DecodePeaks(payload, 32, false)
	if err != nil {
		t.Fatalf("DecodePeaks failed: %v", err)
	}
	for i := range wantMz {
		if mz[i] != wantMz[i] {
			t.Errorf("mz[%d] = %v, want %v", i, mz[i], wantMz[i])
		}
		if intensity[i] != wantIntensity[i] {
			t.Errorf("intensity[%d] = %v, want %v", i, intensity[i], wantIntensity[i])
		}
	}
}

// TestDecodePeaks64Zlib verifies a compressed 64-bit payload
// round-trips to the source arrays.
func TestDecodePeaks64Zlib(t *testing.T) {
	wantMz := []float64{445.34, 551.21, 1024.0}
	wantIntensity := []float64{120053.0, 2779.5, 13.25}
	payload := encodePairs64Zlib(t, wantMz, wantIntensity)

	mz, intensity, err := DecodePeaks(payload, 64, true)
	if err != nil {
		t.Fatalf("DecodePeaks failed: %v", err)
	}
	if len(mz) != 3 || len(intensity) != 3 {
		t.Fatalf("got %d/%d values, want 3/3", len(mz), len(intensity))
	}
	for i := range wantMz {
		if mz[i] != wantMz[i] {
			t.Errorf("mz[%d] = %v, want %v", i, mz[i], wantMz[i])
		}
		if intensity[i] != wantIntensity[i] {
			t.Errorf("intensity[%d] = %v, want %v", i, intensity[i], wantIntensity[i])
		}
	}
}

// TestDecodePeaksWhitespace verifies wrapped payloads decode.
func TestDecodePeaksWhitespace(t *testing.T) {
	payload := encodePairs32([]float64{1}, []float64{2})
	wrapped := payload[:4] + "\n  " + payload[4:] + "\n"

	mz, _, err := DecodePeaks(wrapped, 32, false)
	if err != nil {
		t.Fatalf("DecodePeaks failed: %v", err)
	}
	if len(mz) != 1 || mz[0] != 1 {
		t.Errorf("mz = %v, want [1]", mz)
	}
}

// TestDecodePeaksErrors verifies each malformed input class fails.
func TestDecodePeaksErrors(t *testing.T) {
	onePair := encodePairs32([]float64{1}, []float64{2})
	tests := []struct {
		name       string
		payload    string
		precision  int
		compressed bool
	}{
		{"invalid base64", "@@@@", 32, false},
		{"unsupported precision", onePair, 16, false},
		{"misaligned pairs", base64.StdEncoding.EncodeToString([]byte{1, 2, 3, 4, 5}), 32, false},
		{"invalid zlib stream", onePair, 32, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodePeaks(tt.payload, tt.precision, tt.compressed)
			if err == nil {
				t.Error("DecodePeaks should fail")
			}
		})
	}
}
