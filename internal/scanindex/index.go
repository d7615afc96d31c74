// Package scanindex builds and queries sidecar SQLite indexes that map
// scan numbers to byte offsets in their source document, giving random
// access without re-reading the whole file.
package scanindex

import (
	"database/sql"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/radusuciu/pyteomics/core/mzxml"
	"github.com/radusuciu/pyteomics/core/sqlite"
	"github.com/radusuciu/pyteomics/internal/fileutil"
)

// Suffix is appended to the source path to name its index file.
const Suffix = ".sidx"

const schemaVersion = "1"

var (
	// ErrNotIndexed reports a scan number absent from the index.
	ErrNotIndexed = errors.New("scan not indexed")

	// ErrCompressedSource reports a source whose byte offsets are not
	// seekable because reads pass through a decompressor.
	ErrCompressedSource = errors.New("compressed sources cannot be byte indexed")
)

// IndexPath returns the sidecar index path for source.
func IndexPath(source string) string {
	return source + Suffix
}

// Index is an open scan index tied to its source document.
type Index struct {
	db     *sql.DB
	source string
}

// Open returns the index for source, reusing the sidecar file when its
// recorded digest still matches the source and rebuilding otherwise.
func Open(source string) (*Index, error) {
	digest, err := fileutil.Digest(source)
	if err != nil {
		return nil, err
	}

	idxPath := IndexPath(source)
	if _, err := os.Stat(idxPath); err == nil {
		db, err := sqlite.Open(idxPath)
		if err == nil {
			var stored string
			qerr := db.QueryRow(`SELECT value FROM meta WHERE key = 'digest'`).Scan(&stored)
			if qerr == nil && stored == digest {
				return &Index{db: db, source: source}, nil
			}
			// Stale or unreadable index. Rebuild below.
			db.Close()
		}
	}
	return build(source, digest)
}

// Build indexes source unconditionally, replacing any existing sidecar.
func Build(source string) (*Index, error) {
	digest, err := fileutil.Digest(source)
	if err != nil {
		return nil, err
	}
	return build(source, digest)
}

func build(source, digest string) (*Index, error) {
	src, err := fileutil.Open(source)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if src.Compressed() {
		return nil, fmt.Errorf("%s: %w", source, ErrCompressedSource)
	}

	rows, err := scanOffsets(src)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", source, err)
	}

	idxPath := IndexPath(source)
	os.Remove(idxPath)
	db, err := sqlite.Open(idxPath)
	if err != nil {
		return nil, fmt.Errorf("creating index %s: %w", idxPath, err)
	}

	if err := fill(db, rows, digest); err != nil {
		db.Close()
		os.Remove(idxPath)
		return nil, fmt.Errorf("writing index %s: %w", idxPath, err)
	}
	return &Index{db: db, source: source}, nil
}

func fill(db *sql.DB, rows []scanRow, digest string) error {
	if _, err := db.Exec(`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE scans (num TEXT PRIMARY KEY, offset INTEGER NOT NULL)`); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO scans (num, offset) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, r := range rows {
		if _, err := stmt.Exec(r.num, r.offset); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('digest', ?), ('version', ?)`, digest, schemaVersion); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type scanRow struct {
	num    string
	offset int64
}

// scanOffsets records the byte offset of every scan start tag, nested
// ones included. Offsets are taken before each token is read, so they
// land exactly on the opening angle bracket.
func scanOffsets(r io.Reader) ([]scanRow, error) {
	dec := xml.NewDecoder(r)
	var rows []scanRow
	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "scan" {
			continue
		}
		var num string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "num":
				num = a.Value
			case "id":
				if num == "" {
					num = a.Value
				}
			}
		}
		if num == "" {
			continue
		}
		rows = append(rows, scanRow{num: num, offset: off})
	}
}

// Source returns the indexed document's path.
func (ix *Index) Source() string { return ix.source }

// Len returns the number of indexed scans.
func (ix *Index) Len() (int, error) {
	var n int
	if err := ix.db.QueryRow(`SELECT COUNT(*) FROM scans`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Nums returns the indexed scan numbers in document order.
func (ix *Index) Nums() ([]string, error) {
	rows, err := ix.db.Query(`SELECT num FROM scans ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nums []string
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			return nil, err
		}
		nums = append(nums, num)
	}
	return nums, rows.Err()
}

// Offset returns the byte offset recorded for num.
func (ix *Index) Offset(num string) (int64, error) {
	var off int64
	err := ix.db.QueryRow(`SELECT offset FROM scans WHERE num = ?`, num).Scan(&off)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("scan %q: %w", num, ErrNotIndexed)
	}
	if err != nil {
		return 0, err
	}
	return off, nil
}

// Scan seeks to num in the source document and returns its fully
// decoded record, nested children attached.
func (ix *Index) Scan(num string) (*mzxml.Scan, error) {
	off, err := ix.Offset(num)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(ix.source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mzxml.ParseScanAt(f, off)
}

// Close releases the index database.
func (ix *Index) Close() error {
	return ix.db.Close()
}
