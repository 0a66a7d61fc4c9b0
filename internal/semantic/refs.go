package semantic

import (
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

// Reference is the content of an AUTOSAR reference element such as
// REQUIRED-INTERFACE-TREF: a slash separated path plus its DEST type.
type Reference struct {
	Path string
	Leaf string
	Dest string
}

// LeafName returns the last non-empty segment of a slash separated path.
func LeafName(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(segments[i]); s != "" {
			return s
		}
	}
	return ""
}

// ReferenceOf reads n as a reference element.
func ReferenceOf(n *parser.Element) Reference {
	if n == nil {
		return Reference{}
	}
	path := strings.TrimSpace(n.Text)
	return Reference{
		Path: path,
		Leaf: LeafName(path),
		Dest: n.GetAttribute("DEST"),
	}
}

// IsReference reports whether n looks like a reference element: it carries a
// DEST attribute and its tag ends in REF or TREF.
func IsReference(n *parser.Element) bool {
	if n == nil || !n.HasAttribute("DEST") {
		return false
	}
	tag := strings.ToUpper(n.Tag)
	return strings.HasSuffix(tag, "-REF") || strings.HasSuffix(tag, "-TREF") || strings.HasSuffix(tag, "-IREF")
}

// References collects every reference element below root in document order.
func References(root *parser.Element) []*parser.Element {
	var res []*parser.Element
	if root == nil {
		return res
	}
	root.Walk(func(e *parser.Element) bool {
		if IsReference(e) {
			res = append(res, e)
		}
		return true
	})
	return res
}
