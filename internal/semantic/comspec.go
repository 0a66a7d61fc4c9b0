package semantic

import (
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

// comSpecsContainer returns the PROVIDED-COM-SPECS or REQUIRED-COM-SPECS child
// of a port.
func comSpecsContainer(port *parser.Element) *parser.Element {
	if port == nil {
		return nil
	}
	for _, c := range port.Children {
		if containsFold(c.Tag, "PROVIDED-COM-SPECS") || containsFold(c.Tag, "REQUIRED-COM-SPECS") {
			return c
		}
	}
	return nil
}

// findRefText searches the descendants of n depth-first for an element whose
// tag contains refTag and returns its trimmed text.
func findRefText(n *parser.Element, refTag string) string {
	for _, c := range n.Children {
		if containsFold(c.Tag, refTag) {
			if t := strings.TrimSpace(c.Text); t != "" {
				return t
			}
		}
		if t := findRefText(c, refTag); t != "" {
			return t
		}
	}
	return ""
}

func collectComSpecs(port *parser.Element, specTags []string, refTag string) map[string]*parser.Element {
	res := make(map[string]*parser.Element)
	specs := comSpecsContainer(port)
	if specs == nil {
		return res
	}
	for _, spec := range specs.Children {
		matched := false
		for _, tag := range specTags {
			if containsFold(spec.Tag, tag) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		path := findRefText(spec, refTag)
		if path == "" {
			continue
		}
		res[LeafName(path)] = spec
	}
	return res
}

// DataElementComSpecs maps the display name of each data element referenced
// by a sender or receiver com-spec of port to that com-spec. When two
// com-specs reference data elements with the same leaf name the later one
// wins.
func DataElementComSpecs(port *parser.Element) map[string]*parser.Element {
	return collectComSpecs(port, []string{"SENDER-COM-SPEC", "RECEIVER-COM-SPEC"}, "DATA-ELEMENT-REF")
}

// OperationComSpecs is the client-server counterpart of DataElementComSpecs,
// keyed by the leaf name of each OPERATION-REF.
func OperationComSpecs(port *parser.Element) map[string]*parser.Element {
	return collectComSpecs(port, []string{"CLIENT-COM-SPEC", "SERVER-COM-SPEC"}, "OPERATION-REF")
}
