package validator

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/schema"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
)

type DiagnosticLevel int

const (
	LevelError DiagnosticLevel = iota
	LevelWarning
)

func (l DiagnosticLevel) String() string {
	if l == LevelWarning {
		return "WARNING"
	}
	return "ERROR"
}

type Diagnostic struct {
	Level    DiagnosticLevel
	Code     string
	Message  string
	Position parser.Position
	Path     []int
	File     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Position.Line, d.Position.Column, d.Level, d.Message)
}

// Linter checks a tree against the CUE element rules and a few structural
// AUTOSAR conventions that a schema cannot express.
type Linter struct {
	Diagnostics []Diagnostic
	Schema      *schema.Schema
	File        string
}

func NewLinter(s *schema.Schema, file string) *Linter {
	if s == nil {
		s = schema.DefaultSchema()
	}
	return &Linter{Schema: s, File: file}
}

// Lint appends the diagnostics for root to l.Diagnostics and returns them.
func (l *Linter) Lint(root *parser.Element) []Diagnostic {
	if root == nil {
		return l.Diagnostics
	}
	root.Walk(func(e *parser.Element) bool {
		if rule, ok := l.Schema.Rule(e.Tag); ok {
			l.validateWithCUE(e, rule)
		}
		l.checkMixedText(e)
		l.checkDuplicateNames(e)
		return true
	})
	return l.Diagnostics
}

func (l *Linter) report(e *parser.Element, code string, level DiagnosticLevel, msg string) {
	l.Diagnostics = append(l.Diagnostics, Diagnostic{
		Level:    level,
		Code:     code,
		Message:  msg,
		Position: e.Pos,
		Path:     document.IndexPath(e),
		File:     l.File,
	})
}

func (l *Linter) HasErrors() bool {
	for _, d := range l.Diagnostics {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

func elementData(e *parser.Element) map[string]interface{} {
	attrs := make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		attrs[a.Name] = a.Value
	}
	children := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		children = append(children, c.Tag)
	}
	m := map[string]interface{}{
		"tag":        e.Tag,
		"text":       strings.TrimSpace(e.Text),
		"attributes": attrs,
		"children":   children,
	}
	if name, ok := semantic.ShortName(e); ok {
		m["shortName"] = name
	}
	return m
}

func (l *Linter) validateWithCUE(e *parser.Element, rule cue.Value) {
	dataVal := l.Schema.Context.Encode(elementData(e))
	res := rule.Unify(dataVal)

	if err := res.Validate(cue.Concrete(true)); err != nil {
		l.reportCUEError(err, e)
	}

	meta := res.LookupPath(cue.ParsePath("#meta"))
	if meta.Exists() {
		l.validateMeta(e, meta)
	}
}

func (l *Linter) validateMeta(e *parser.Element, meta cue.Value) {
	needsRef := meta.LookupPath(cue.ParsePath("interfaceRef"))
	if !needsRef.Exists() {
		return
	}
	if b, err := needsRef.Bool(); err != nil || !b {
		return
	}
	name := semantic.DisplayName(e)
	if semantic.InterfaceTRef(e) == nil {
		l.report(e, "missing_interface_ref", LevelError,
			fmt.Sprintf("Port '%s' has no interface reference", name))
		return
	}
	if semantic.ClassifyPort(e) == semantic.PortNone {
		ref, _ := semantic.InterfaceRef(e)
		l.report(e, "unknown_interface_kind", LevelWarning,
			fmt.Sprintf("Port '%s' references an interface of unrecognized kind '%s'", name, ref.Dest))
	}
}

func (l *Linter) reportCUEError(err error, e *parser.Element) {
	for _, ce := range errors.Errors(err) {
		l.report(e, "schema_validation", LevelError,
			fmt.Sprintf("Schema Validation Error in <%s>: %v", e.Tag, ce.Error()))
	}
}

func (l *Linter) checkMixedText(e *parser.Element) {
	if len(e.Children) > 0 && strings.TrimSpace(e.Text) != "" {
		l.report(e, "mixed_content", LevelWarning,
			fmt.Sprintf("Element <%s> has both text and child elements; its text is not saved", e.Tag))
	}
}

// checkDuplicateNames reports siblings sharing a SHORT-NAME.
func (l *Linter) checkDuplicateNames(e *parser.Element) {
	seen := make(map[string]*parser.Element)
	for _, c := range e.Children {
		name, ok := semantic.ShortName(c)
		if !ok {
			continue
		}
		if first, dup := seen[name]; dup {
			l.report(c, "duplicate_short_name", LevelError,
				fmt.Sprintf("Duplicate SHORT-NAME '%s' (first defined at line %d)", name, first.Pos.Line))
			continue
		}
		seen[name] = c
	}
}
