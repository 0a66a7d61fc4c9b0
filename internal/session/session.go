// Package session implements the editing workflow of the ARXML editor
// without any user interface: a current document and file, index path
// addressed edits, the property table and the remembered validation schema.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/formatter"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
	"github.com/arxml-community/arxml-dev-tools/internal/validator"
)

var (
	ErrNoDocument = errors.New("no document is open")
	ErrNoFile     = errors.New("document has no file name, use save as")
	ErrNoSchema   = errors.New("no schema selected")
	ErrNotFound   = errors.New("no element at path")
	ErrRoot       = errors.New("the root element cannot be deleted")
	ErrEmptyTag   = errors.New("tag must not be empty")
	ErrReadOnly   = errors.New("field is read-only")
)

const (
	FieldTag  = "Tag"
	FieldText = "Text"
)

type Session struct {
	mu        sync.Mutex
	doc       *document.Document
	file      string
	schema    string
	validator validator.Validator
}

// New returns an empty session validating with v. A nil v uses xmllint with
// default settings.
func New(v validator.Validator, format formatter.Options) *Session {
	if v == nil {
		v = validator.NewXMLLint("", 0)
	}
	doc := document.New()
	doc.Format = format
	return &Session{doc: doc, validator: v}
}

func (s *Session) Document() *document.Document {
	return s.doc
}

// File is the file the document was opened from or last saved to.
func (s *Session) File() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Schema is the schema remembered from the last validation.
func (s *Session) Schema() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

func (s *Session) SetSchema(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = path
}

// Open loads path. On failure the previous document and file stay current.
func (s *Session) Open(path string) error {
	if err := s.doc.Load(path); err != nil {
		return err
	}
	s.mu.Lock()
	s.file = s.doc.Path()
	s.mu.Unlock()
	return nil
}

// Save writes the document to the current file.
func (s *Session) Save() error {
	if s.doc.IsEmpty() {
		return ErrNoDocument
	}
	file := s.File()
	if file == "" {
		return ErrNoFile
	}
	return s.doc.Save(file)
}

// SaveAs writes the document to path, which becomes the current file.
func (s *Session) SaveAs(path string) error {
	if s.doc.IsEmpty() {
		return ErrNoDocument
	}
	if err := s.doc.Save(path); err != nil {
		return err
	}
	s.mu.Lock()
	s.file = path
	s.mu.Unlock()
	return nil
}

func (s *Session) lookup(root *parser.Element, path []int) (*parser.Element, error) {
	if root == nil {
		return nil, ErrNoDocument
	}
	n := document.Descend(root, path)
	if n == nil {
		return nil, fmt.Errorf("%w %s", ErrNotFound, document.FormatPath(path))
	}
	return n, nil
}

// AddChild appends a new element tagged tag under the element at path and
// returns the index path of the new element.
func (s *Session) AddChild(path []int, tag string) ([]int, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}
	var res []int
	err := s.doc.Update(func(root *parser.Element) error {
		parent, err := s.lookup(root, path)
		if err != nil {
			return err
		}
		child := parent.CreateChild(tag)
		res = document.IndexPath(child)
		return nil
	})
	return res, err
}

// Delete removes the element at path and its subtree.
func (s *Session) Delete(path []int) error {
	if len(path) == 0 {
		return ErrRoot
	}
	return s.doc.Update(func(root *parser.Element) error {
		n, err := s.lookup(root, path)
		if err != nil {
			return err
		}
		n.Parent.RemoveChild(n)
		return nil
	})
}

// SetProperty edits one row of the property table of the element at path.
func (s *Session) SetProperty(path []int, field, value string) error {
	if field == FieldTag {
		return fmt.Errorf("%w: %s", ErrReadOnly, field)
	}
	return s.doc.Update(func(root *parser.Element) error {
		n, err := s.lookup(root, path)
		if err != nil {
			return err
		}
		if field == FieldText {
			n.SetText(value)
			return nil
		}
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("attribute name must not be empty")
		}
		n.SetAttribute(field, value)
		return nil
	})
}

// SetText replaces the text of the element at path.
func (s *Session) SetText(path []int, text string) error {
	return s.SetProperty(path, FieldText, text)
}

// Property is one row of the property table.
type Property struct {
	Field    string `yaml:"field"`
	Value    string `yaml:"value"`
	ReadOnly bool   `yaml:"readOnly,omitempty"`
}

// Properties returns the property table of the element at path: the tag,
// each attribute in document order, then the simplified text when present.
func (s *Session) Properties(path []int) ([]Property, error) {
	var rows []Property
	err := s.doc.View(func(root *parser.Element) error {
		n, err := s.lookup(root, path)
		if err != nil {
			return err
		}
		rows = append(rows, Property{Field: FieldTag, Value: n.Tag, ReadOnly: true})
		for _, a := range n.Attrs {
			rows = append(rows, Property{Field: a.Name, Value: a.Value})
		}
		if text := strings.Join(strings.Fields(n.Text), " "); text != "" {
			rows = append(rows, Property{Field: FieldText, Value: text})
		}
		return nil
	})
	return rows, err
}

// Row is one line of the tree view.
type Row struct {
	Path  []int
	Depth int
	Tag   string
	Label string
	Value string
	Kind  semantic.PortKind
}

// Rows lists the whole tree in pre-order.
func (s *Session) Rows() []Row {
	var rows []Row
	s.doc.View(func(root *parser.Element) error {
		if root == nil {
			return nil
		}
		document.WalkPaths(root, func(e *parser.Element, path []int) bool {
			rows = append(rows, Row{
				Path:  path,
				Depth: len(path),
				Tag:   e.Tag,
				Label: semantic.LabelOf(e).String(),
				Value: semantic.LeafText(e),
				Kind:  semantic.ClassifyPort(e),
			})
			return true
		})
		return nil
	})
	return rows
}

// Validate checks the document against schema and remembers it. An empty
// schema reuses the remembered one. The result is empty when the document is
// valid.
func (s *Session) Validate(ctx context.Context, schema string) (string, error) {
	res, err := s.Run(ctx, schema)
	if err != nil {
		return "", err
	}
	return res.Diagnostic, nil
}

// Run is Validate with the details of the validation run.
func (s *Session) Run(ctx context.Context, schema string) (validator.Result, error) {
	if s.doc.IsEmpty() {
		return validator.Result{}, ErrNoDocument
	}
	s.mu.Lock()
	if schema == "" {
		schema = s.schema
	}
	if schema == "" {
		s.mu.Unlock()
		return validator.Result{}, ErrNoSchema
	}
	s.schema = schema
	v := s.validator
	s.mu.Unlock()

	return validator.Run(ctx, v, s.doc, schema), nil
}
