// Package builder merges several ARXML files into a single document.
//
// Packages are matched by their SHORT-NAME path and merged recursively, so a
// package split over many files comes out as one package. Every other
// identifiable element is appended in file order.
package builder

import (
	"fmt"
	"io"
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/formatter"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
)

type Builder struct {
	Files  []string
	Format formatter.Options
}

func NewBuilder(files []string) *Builder {
	return &Builder{Files: files}
}

// Build loads every file, merges them and writes the result to w.
func (b *Builder) Build(w io.Writer) error {
	var roots []*parser.Element
	for _, file := range b.Files {
		doc := document.New()
		if err := doc.Load(file); err != nil {
			return fmt.Errorf("error parsing %s: %w", file, err)
		}
		roots = append(roots, doc.Root())
	}

	merged, err := Merge(roots...)
	if err != nil {
		return err
	}
	return formatter.Format(merged, w, b.Format)
}

// Merge combines roots into a new tree. The inputs are not modified. All
// roots must have the same tag; attributes of later roots are added when the
// first root lacks them.
func Merge(roots ...*parser.Element) (*parser.Element, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}
	res := roots[0].Clone()
	for _, r := range roots[1:] {
		if r.Tag != res.Tag {
			return nil, fmt.Errorf("cannot merge <%s> into <%s>: root elements differ", r.Tag, res.Tag)
		}
		for _, a := range r.Attrs {
			if !res.HasAttribute(a.Name) {
				res.SetAttribute(a.Name, a.Value)
			}
		}
		mergeChildren(res, r)
	}
	return res, nil
}

func localName(tag string) string {
	if i := strings.LastIndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

func isPackage(e *parser.Element) bool {
	return strings.EqualFold(localName(e.Tag), "AR-PACKAGE")
}

// containers hold packages or elements and have no identity of their own.
func isContainer(e *parser.Element) bool {
	switch strings.ToUpper(localName(e.Tag)) {
	case "AR-PACKAGES", "ELEMENTS", "SUB-PACKAGES":
		return true
	}
	return false
}

func findNamed(parent *parser.Element, tag, name string) *parser.Element {
	for _, c := range parent.Children {
		if c.Tag != tag {
			continue
		}
		if n, ok := semantic.ShortName(c); ok && n == name {
			return c
		}
	}
	return nil
}

func findTag(parent *parser.Element, tag string) *parser.Element {
	for _, c := range parent.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func mergeChildren(dst, src *parser.Element) {
	for _, c := range src.Children {
		name, named := semantic.ShortName(c)
		switch {
		case named && isPackage(c):
			if m := findNamed(dst, c.Tag, name); m != nil {
				mergeChildren(m, c)
				continue
			}
		case isContainer(c):
			if m := findTag(dst, c.Tag); m != nil {
				mergeChildren(m, c)
				continue
			}
		case !named:
			// Unnamed properties such as SHORT-NAME or ADMIN-DATA: the first
			// file wins.
			if findTag(dst, c.Tag) != nil {
				continue
			}
		}
		dst.AppendChild(c.Clone())
	}
}
