package scanindex

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/radusuciu/pyteomics/core/sqlite"
)

func encodePairs32(t *testing.T, mz, intensity []float64) string {
	t.Helper()
	var buf bytes.Buffer
	for i := range mz {
		if err := binary.Write(&buf, binary.BigEndian, float32(mz[i])); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if err := binary.Write(&buf, binary.BigEndian, float32(intensity[i])); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func indexDoc(t *testing.T, extraScan string) string {
	t.Helper()
	outer := encodePairs32(t, []float64{100.5, 200.25}, []float64{10, 20})
	inner := encodePairs32(t, []float64{445.25}, []float64{13.5})
	return fmt.Sprintf(`<?xml version="1.0" encoding="ISO-8859-1"?>
<mzXML xmlns="http://sashimi.sourceforge.net/schema_revision/mzXML_3.2">
<msRun scanCount="3">
<scan num="1" msLevel="1" peaksCount="2" retentionTime="PT1.5S">
	<peaks precision="32" byteOrder="network" pairOrder="m/z-int">%s</peaks>
	<scan num="2" msLevel="2" peaksCount="1">
		<precursorMz precursorIntensity="120053">445.34</precursorMz>
		<peaks precision="32">%s</peaks>
	</scan>
</scan>
<scan num="3" msLevel="1" peaksCount="0"><peaks precision="32"></peaks></scan>
%s</msRun>
</mzXML>`, outer, inner, extraScan)
}

func writeSource(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.mzXML")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

// TestBuildAndLookup verifies offsets land on scan tags, nested scans
// included, and that lookups return decoded records.
func TestBuildAndLookup(t *testing.T) {
	source := writeSource(t, indexDoc(t, ""))

	ix, err := Build(source)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer ix.Close()

	n, err := ix.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}

	nums, err := ix.Nums()
	if err != nil {
		t.Fatalf("Nums failed: %v", err)
	}
	want := []string{"1", "2", "3"}
	if len(nums) != len(want) {
		t.Fatalf("Nums = %v, want %v", nums, want)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("Nums[%d] = %s, want %s", i, nums[i], want[i])
		}
	}

	s, err := ix.Scan("1")
	if err != nil {
		t.Fatalf("Scan(1) failed: %v", err)
	}
	if s.Num != "1" {
		t.Errorf("Num = %s, want 1", s.Num)
	}
	if got := s.ChildNums(); len(got) != 1 || got[0] != "2" {
		t.Errorf("ChildNums = %v, want [2]", got)
	}
	if len(s.MzArray) != 2 || s.MzArray[0] != 100.5 {
		t.Errorf("MzArray = %v, want [100.5 200.25]", s.MzArray)
	}

	nested, err := ix.Scan("2")
	if err != nil {
		t.Fatalf("Scan(2) failed: %v", err)
	}
	if nested.MSLevel != 2 {
		t.Errorf("MSLevel = %d, want 2", nested.MSLevel)
	}
	if len(nested.Precursors) != 1 || nested.Precursors[0].Mz != 445.34 {
		t.Errorf("Precursors = %+v, want mz 445.34", nested.Precursors)
	}
	if len(nested.MzArray) != 1 || nested.MzArray[0] != 445.25 {
		t.Errorf("MzArray = %v, want [445.25]", nested.MzArray)
	}

	if _, err := ix.Scan("9"); !errors.Is(err, ErrNotIndexed) {
		t.Errorf("Scan(9) error = %v, want ErrNotIndexed", err)
	}
}

// TestOpenReusesFreshIndex verifies Open keeps a sidecar whose digest
// still matches instead of rebuilding it.
func TestOpenReusesFreshIndex(t *testing.T) {
	source := writeSource(t, indexDoc(t, ""))

	ix, err := Build(source)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ix.Close()

	// Plant a sentinel a rebuild would wipe out.
	db, err := sqlite.Open(IndexPath(source))
	if err != nil {
		t.Fatalf("open sidecar: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES ('sentinel', 'kept')`); err != nil {
		t.Fatalf("insert sentinel: %v", err)
	}
	db.Close()

	reopened, err := Open(source)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	reopened.Close()

	db, err = sqlite.Open(IndexPath(source))
	if err != nil {
		t.Fatalf("open sidecar: %v", err)
	}
	defer db.Close()
	var v string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'sentinel'`).Scan(&v); err != nil {
		t.Fatalf("sentinel lost, index was rebuilt: %v", err)
	}
}

// TestOpenRebuildsStaleIndex verifies a digest mismatch triggers a
// rebuild against the current source bytes.
func TestOpenRebuildsStaleIndex(t *testing.T) {
	source := writeSource(t, indexDoc(t, ""))

	ix, err := Build(source)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ix.Close()

	extra := `<scan num="4" msLevel="1" peaksCount="0"><peaks precision="32"></peaks></scan>
`
	if err := os.WriteFile(source, []byte(indexDoc(t, extra)), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reopened, err := Open(source)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Len = %d, want 4 after rebuild", n)
	}
}

// TestCompressedSourceRejected verifies gzip inputs refuse to index.
func TestCompressedSourceRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.mzXML.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(indexDoc(t, ""))); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	f.Close()

	if _, err := Build(path); !errors.Is(err, ErrCompressedSource) {
		t.Errorf("Build error = %v, want ErrCompressedSource", err)
	}
}
