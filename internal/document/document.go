// Package document holds the in-memory model of one ARXML file.
//
// A Document owns a single Element tree. Loading replaces the tree wholesale,
// saving serializes it, and elements are addressed by index paths (child
// positions from the root) so that callers can keep references that survive
// edits elsewhere in the tree.
//
// The tree is one unit of mutual exclusion: every method takes the document
// lock, and callers that mutate elements directly from several goroutines must
// do so inside Update or View.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/arxml-community/arxml-dev-tools/internal/formatter"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

// ParseError is returned by Load and Read for input that is not well-formed.
type ParseError = parser.ParseError

// IOError is returned when a file cannot be opened, read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

type Document struct {
	// Format controls Save and Write.
	Format formatter.Options

	mu      sync.RWMutex
	root    *parser.Element
	path    string
	lastErr string
}

func New() *Document {
	return &Document{}
}

// NewFromRoot wraps an existing tree. root must not have a parent.
func NewFromRoot(root *parser.Element) *Document {
	return &Document{root: root}
}

// Load parses the file at path and, on success, replaces the current tree.
// On failure the current tree is left untouched.
func (d *Document) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return d.fail(&IOError{Op: "open", Path: path, Err: err})
	}
	defer f.Close()

	root, err := parser.NewParser(f).Parse()
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &IOError{Op: "read", Path: path, Err: err}
		}
		return d.fail(err)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	d.mu.Lock()
	d.root = root
	d.path = path
	d.lastErr = ""
	d.mu.Unlock()
	return nil
}

// Read parses r and replaces the current tree. The document path is cleared.
func (d *Document) Read(r io.Reader) error {
	root, err := parser.NewParser(r).Parse()
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			err = &IOError{Op: "read", Path: "", Err: err}
		}
		return d.fail(err)
	}
	d.mu.Lock()
	d.root = root
	d.path = ""
	d.lastErr = ""
	d.mu.Unlock()
	return nil
}

// Save writes the tree to path. The file is truncated first.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return d.fail(&IOError{Op: "create", Path: path, Err: err})
	}
	werr := d.Write(f)
	cerr := f.Close()
	if werr == nil && cerr != nil {
		werr = &IOError{Op: "close", Path: path, Err: cerr}
	}
	if werr != nil {
		var ioe *IOError
		if errors.As(werr, &ioe) {
			ioe.Path = path
		}
		return d.fail(werr)
	}
	return nil
}

func (d *Document) Write(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := formatter.Format(d.root, w, d.Format); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	d.Write(&buf)
	return buf.Bytes()
}

func (d *Document) fail(err error) error {
	d.mu.Lock()
	d.lastErr = err.Error()
	d.mu.Unlock()
	return err
}

func (d *Document) Root() *parser.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

func (d *Document) SetRoot(root *parser.Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if root != nil {
		root.Parent = nil
	}
	d.root = root
}

// Path is the absolute path of the last successfully loaded file.
func (d *Document) Path() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path
}

func (d *Document) LastError() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

func (d *Document) IsEmpty() bool {
	return d.Root() == nil
}

// Reset discards the tree.
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.root = nil
	d.path = ""
	d.lastErr = ""
}

// Update runs fn with exclusive access to the tree. fn must not call other
// Document methods.
func (d *Document) Update(fn func(root *parser.Element) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.root)
}

// View runs fn with shared access to the tree. fn must not mutate it.
func (d *Document) View(fn func(root *parser.Element) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(d.root)
}
