// Package query filters elements with boolean expressions such as
//
//	kind == "R-PORT sender-receiver" && attrs["UUID"] != ""
//	tag endsWith "-TREF" && leafName(text) == "SpeedIf"
//
// Every expression is evaluated once per element against an environment
// describing that element.
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/parser"
	"github.com/arxml-community/arxml-dev-tools/internal/semantic"
)

// Env names available to expressions:
//
//	tag      element tag
//	text     whitespace-simplified text
//	name     display name (SHORT-NAME when present)
//	package  package label
//	attrs    attribute map
//	depth    distance from the root
//	path     index path, e.g. "/0/2/1"
//	arpath   AUTOSAR path, empty without SHORT-NAME
//	kind     port kind, "none" for non-ports
//	leaf     true when the element has no children
//	hasChild(substr) reports a child whose tag contains substr
func Env(n *parser.Element) map[string]any {
	return env(n, document.IndexPath(n), semantic.ARPath(n))
}

func env(n *parser.Element, path []int, arPath string) map[string]any {
	attrs := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		attrs[a.Name] = a.Value
	}
	label := semantic.LabelOf(n)
	return map[string]any{
		"tag":     n.Tag,
		"text":    strings.Join(strings.Fields(n.Text), " "),
		"name":    label.Name,
		"package": label.Package,
		"attrs":   attrs,
		"depth":   n.Depth(),
		"path":    document.FormatPath(path),
		"arpath":  arPath,
		"kind":    semantic.ClassifyPort(n).String(),
		"leaf":    n.IsLeaf(),
		"hasChild": func(substr string) bool {
			return n.FindChild(substr) != nil
		},
	}
}

func options() []expr.Option {
	return []expr.Option{
		expr.Env(Env(parser.NewElement(""))),
		expr.AsBool(),
		expr.Function("leafName", func(params ...any) (any, error) {
			return semantic.LeafName(params[0].(string)), nil
		},
			new(func(string) string)),
	}
}

type Query struct {
	Source  string
	program *vm.Program
}

// Compile type-checks src. The expression must produce a bool.
func Compile(src string) (*Query, error) {
	program, err := expr.Compile(src, options()...)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", src, err)
	}
	return &Query{Source: src, program: program}, nil
}

func (q *Query) Match(n *parser.Element) (bool, error) {
	if n == nil {
		return false, nil
	}
	return q.match(n, Env(n))
}

func (q *Query) match(n *parser.Element, env map[string]any) (bool, error) {
	out, err := expr.Run(q.program, env)
	if err != nil {
		return false, fmt.Errorf("query %q on <%s>: %w", q.Source, n.Tag, err)
	}
	b, _ := out.(bool)
	return b, nil
}

// Select returns the elements below and including root that match, in
// document order.
func (q *Query) Select(root *parser.Element) ([]*parser.Element, error) {
	var res []*parser.Element
	if root == nil {
		return res, nil
	}
	var err error
	arPaths := semantic.NewPathCache()
	document.WalkPaths(root, func(e *parser.Element, path []int) bool {
		if err != nil {
			return false
		}
		var ok bool
		ok, err = q.match(e, env(e, path, arPaths.ARPath(e)))
		if ok {
			res = append(res, e)
		}
		return err == nil
	})
	return res, err
}
