package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

// IndexPath lists the child positions leading from the top of n's tree down
// to n. It is empty for a root and for nil.
func IndexPath(n *parser.Element) []int {
	if n == nil {
		return []int{}
	}
	var rev []int
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		idx := cur.Index()
		if idx < 0 {
			return []int{}
		}
		rev = append(rev, idx)
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path
}

// WalkPaths visits root and its descendants in document order together with
// their index paths. Each path is a fresh slice. Returning false from fn
// skips the subtree below the visited element.
func WalkPaths(root *parser.Element, fn func(e *parser.Element, path []int) bool) {
	if root == nil {
		return
	}
	walkPaths(root, IndexPath(root), fn)
}

func walkPaths(e *parser.Element, path []int, fn func(*parser.Element, []int) bool) {
	if !fn(e, path) {
		return
	}
	for i, c := range e.Children {
		child := make([]int, len(path)+1)
		copy(child, path)
		child[len(path)] = i
		walkPaths(c, child, fn)
	}
}

// Descend follows path from root. It returns nil when any index is out of
// range.
func Descend(root *parser.Element, path []int) *parser.Element {
	cur := root
	for _, idx := range path {
		if cur == nil || idx < 0 || idx >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[idx]
	}
	return cur
}

// IndexPath returns the path of n, or nil if n does not belong to this
// document's tree.
func (d *Document) IndexPath(n *parser.Element) []int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n == nil || d.root == nil {
		return []int{}
	}
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	if top != d.root {
		return nil
	}
	return IndexPath(n)
}

// FindByIndexPath resolves path from the root. An empty path yields the root.
func (d *Document) FindByIndexPath(path []int) *parser.Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Descend(d.root, path)
}

// FormatPath renders a path as "/0/2/1"; the root is "/".
func FormatPath(path []int) string {
	if len(path) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, idx := range path {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(idx))
	}
	return sb.String()
}

// ParsePath accepts the FormatPath syntax as well as dotted ("0.2.1") and
// bare forms. "", "/" and "." denote the root.
func ParsePath(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "/" || s == "." {
		return []int{}, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '.' })
	path := make([]int, 0, len(fields))
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid index path %q: bad segment %q", s, f)
		}
		path = append(path, idx)
	}
	return path, nil
}
