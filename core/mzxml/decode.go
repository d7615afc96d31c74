package mzxml

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// DecodePeaks decodes an interleaved base64 peak payload into parallel
// m/z and intensity arrays. The decoded bytes are optionally
// zlib-compressed and hold big-endian floats of the stated precision
// (32 or 64), alternating m/z and intensity. An empty payload yields
// two empty arrays and skips every later stage.
func DecodePeaks(payload string, precision int, compressed bool) ([]float64, []float64, error) {
	raw, err := base64.StdEncoding.DecodeString(stripSpace(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("base64: %w", err)
	}
	if len(raw) == 0 {
		return []float64{}, []float64{}, nil
	}

	if compressed {
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("zlib: %w", err)
		}
		inflated, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("zlib: %w", err)
		}
		raw = inflated
	}

	var width int
	switch precision {
	case 32:
		width = 4
	case 64:
		width = 8
	default:
		return nil, nil, fmt.Errorf("unsupported precision %d", precision)
	}

	pair := 2 * width
	if len(raw)%pair != 0 {
		return nil, nil, fmt.Errorf("%d bytes is not a whole number of %d-byte peak pairs", len(raw), pair)
	}

	n := len(raw) / pair
	mz := make([]float64, n)
	intensity := make([]float64, n)
	for i := 0; i < n; i++ {
		off := i * pair
		if width == 4 {
			mz[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[off:])))
			intensity[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(raw[off+4:])))
		} else {
			mz[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[off:]))
			intensity[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[off+8:]))
		}
	}
	return mz, intensity, nil
}

// stripSpace drops the whitespace XML writers wrap long payloads with.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
