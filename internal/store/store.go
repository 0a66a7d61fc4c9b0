// Package store exports element trees to a SQLite database so that large
// ARXML projects can be inspected with SQL.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
)

// Store provides SQLite persistence for exported documents.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens or creates the database at dbPath.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS elements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		path TEXT NOT NULL,
		depth INTEGER NOT NULL,
		tag TEXT NOT NULL,
		name TEXT,
		text TEXT,
		arpath TEXT,
		kind TEXT,
		line INTEGER,
		col INTEGER,
		UNIQUE(file, path)
	);

	CREATE TABLE IF NOT EXISTS attributes (
		element_id INTEGER NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS refs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		path TEXT NOT NULL,
		target TEXT NOT NULL,
		leaf TEXT,
		dest TEXT,
		line INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_elements_tag ON elements(tag);
	CREATE INDEX IF NOT EXISTS idx_elements_arpath ON elements(arpath);
	CREATE INDEX IF NOT EXISTS idx_refs_target ON refs(target);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the connection for ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Export replaces everything stored for file with the tree below root.
func (s *Store) Export(file string, root *parser.Element) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM attributes WHERE element_id IN (SELECT id FROM elements WHERE file = ?)`, file); err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM elements WHERE file = ?`, file); err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM refs WHERE file = ?`, file); err != nil {
		return err
	}

	if root != nil {
		if err = exportTree(tx, file, root); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func exportTree(tx *sql.Tx, file string, root *parser.Element) error {
	insElem, err := tx.Prepare(`
		INSERT INTO elements (file, path, depth, tag, name, text, arpath, kind, line, col)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer insElem.Close()

	insAttr, err := tx.Prepare(`INSERT INTO attributes (element_id, position, name, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insAttr.Close()

	insRef, err := tx.Prepare(`INSERT INTO refs (file, path, target, leaf, dest, line) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insRef.Close()

	var werr error
	arPaths := semantic.NewPathCache()
	document.WalkPaths(root, func(e *parser.Element, indexPath []int) bool {
		if werr != nil {
			return false
		}
		path := document.FormatPath(indexPath)
		kind := ""
		if k := semantic.ClassifyPort(e); k != semantic.PortNone {
			kind = k.String()
		}
		res, err := insElem.Exec(file, path, e.Depth(), e.Tag, semantic.DisplayName(e),
			semantic.LeafText(e), arPaths.ARPath(e), kind, e.Pos.Line, e.Pos.Column)
		if err != nil {
			werr = fmt.Errorf("insert element %s: %w", path, err)
			return false
		}
		id, err := res.LastInsertId()
		if err != nil {
			werr = err
			return false
		}
		for i, a := range e.Attrs {
			if _, err := insAttr.Exec(id, i, a.Name, a.Value); err != nil {
				werr = fmt.Errorf("insert attribute %s of %s: %w", a.Name, path, err)
				return false
			}
		}
		if semantic.IsReference(e) {
			ref := semantic.ReferenceOf(e)
			if _, err := insRef.Exec(file, path, ref.Path, ref.Leaf, ref.Dest, e.Pos.Line); err != nil {
				werr = fmt.Errorf("insert reference %s: %w", path, err)
				return false
			}
		}
		return true
	})
	return werr
}

// ElementRow is one row of the elements table.
type ElementRow struct {
	File   string
	Path   string
	Depth  int
	Tag    string
	Name   string
	Text   string
	ARPath string
	Kind   string
	Line   int
}

// ElementsByTag lists the stored elements tagged tag, ordered by file and
// insertion order.
func (s *Store) ElementsByTag(tag string) ([]ElementRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT file, path, depth, tag, name, text, arpath, kind, line
		FROM elements WHERE tag = ? ORDER BY file, id
	`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ElementRow
	for rows.Next() {
		var r ElementRow
		var name, text, arpath, kind sql.NullString
		var line sql.NullInt64
		if err := rows.Scan(&r.File, &r.Path, &r.Depth, &r.Tag, &name, &text, &arpath, &kind, &line); err != nil {
			return nil, err
		}
		r.Name = name.String
		r.Text = text.String
		r.ARPath = arpath.String
		r.Kind = kind.String
		r.Line = int(line.Int64)
		res = append(res, r)
	}
	return res, rows.Err()
}

// Attributes returns the attributes stored for the element at path of file.
func (s *Store) Attributes(file, path string) ([]parser.Attr, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT a.name, a.value FROM attributes a
		JOIN elements e ON e.id = a.element_id
		WHERE e.file = ? AND e.path = ?
		ORDER BY a.position
	`, file, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []parser.Attr
	for rows.Next() {
		var a parser.Attr
		if err := rows.Scan(&a.Name, &a.Value); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

// DanglingRefs lists the targets of references that do not match the
// AUTOSAR path of any stored element.
func (s *Store) DanglingRefs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT DISTINCT r.target FROM refs r
		LEFT JOIN elements e ON e.arpath = r.target
		WHERE e.id IS NULL
		ORDER BY r.target
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, err
		}
		res = append(res, target)
	}
	return res, rows.Err()
}

// Count returns the number of elements stored for file.
func (s *Store) Count(file string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM elements WHERE file = ?`, file).Scan(&n)
	return n, err
}
