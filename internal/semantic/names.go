// Package semantic interprets AUTOSAR naming conventions on top of the generic
// element tree. Everything here is a read-only function of the tree; results
// are recomputed on every call.
//
// Tag and attribute matching is case-insensitive and substring based because
// ARXML produced by different tools varies in casing and prefixes.
package semantic

import (
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

// Label is the human readable name of an element.
type Label struct {
	Name    string
	Package string
}

func (l Label) String() string {
	if l.Package == "" {
		return l.Name
	}
	return l.Name + " (" + l.Package + ")"
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(substr))
}

// LabelOf derives the display label of n.
//
// The name starts as the tag. A child whose tag contains SHORT-NAME and has
// text replaces it. Any other child whose tag contains NAME and has text
// replaces it only while the name is still the tag. The package comes from an
// XMLNS attribute and is overridden by a child whose tag contains PACKAGE and
// has text.
func LabelOf(n *parser.Element) Label {
	if n == nil {
		return Label{}
	}
	l := Label{Name: n.Tag}
	for _, a := range n.Attrs {
		if containsFold(a.Name, "XMLNS") {
			l.Package = a.Value
		}
	}
	for _, c := range n.Children {
		if c.Text == "" {
			continue
		}
		switch {
		case containsFold(c.Tag, "SHORT-NAME"):
			l.Name = c.Text
		case containsFold(c.Tag, "PACKAGE"):
			l.Package = c.Text
		case containsFold(c.Tag, "NAME") && l.Name == n.Tag:
			l.Name = c.Text
		}
	}
	return l
}

func DisplayName(n *parser.Element) string {
	return LabelOf(n).Name
}

// ShortName returns the text of the SHORT-NAME child of n.
func ShortName(n *parser.Element) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, c := range n.Children {
		if containsFold(c.Tag, "SHORT-NAME") && c.Text != "" {
			return c.Text, true
		}
	}
	return "", false
}

// ARPath builds the absolute AUTOSAR path of n from the SHORT-NAMEs of n and
// its ancestors, e.g. "/Pkg/Swc/Port". It is empty when n has no SHORT-NAME.
func ARPath(n *parser.Element) string {
	name, ok := ShortName(n)
	if !ok {
		return ""
	}
	segments := []string{name}
	for p := n.Parent; p != nil; p = p.Parent {
		if s, ok := ShortName(p); ok {
			segments = append(segments, s)
		}
	}
	var sb strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		sb.WriteByte('/')
		sb.WriteString(segments[i])
	}
	return sb.String()
}

// PathCache resolves AUTOSAR paths for many elements of one tree, remembering
// the path of every ancestor it has looked at. It must not be used across
// structural edits.
type PathCache struct {
	scopes map[*parser.Element]string
}

func NewPathCache() *PathCache {
	return &PathCache{scopes: make(map[*parser.Element]string)}
}

// ARPath is ARPath(n) served from the cache.
func (c *PathCache) ARPath(n *parser.Element) string {
	name, ok := ShortName(n)
	if !ok {
		return ""
	}
	return c.scope(n.Parent) + "/" + name
}

// scope is the AUTOSAR path of the closest named element at or above n.
func (c *PathCache) scope(n *parser.Element) string {
	if n == nil {
		return ""
	}
	if s, ok := c.scopes[n]; ok {
		return s
	}
	s := c.scope(n.Parent)
	if name, ok := ShortName(n); ok {
		s += "/" + name
	}
	c.scopes[n] = s
	return s
}

// LeafText is the whitespace-simplified text of a leaf element. Elements with
// children have no leaf text.
func LeafText(n *parser.Element) string {
	if n == nil || len(n.Children) > 0 {
		return ""
	}
	return strings.Join(strings.Fields(n.Text), " ")
}
