package parser

import "strings"

type Position struct {
	Line   int
	Column int
}

type Attr struct {
	Name  string
	Value string
}

// Element is one XML element of an ARXML document. Parent is a back-reference
// only; a node is owned by its parent's Children slice.
type Element struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Children []*Element
	Parent   *Element
	Pos      Position
}

func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// CreateChild appends a new empty element under e and returns it.
func (e *Element) CreateChild(tag string) *Element {
	child := &Element{Tag: tag, Parent: e}
	e.Children = append(e.Children, child)
	return child
}

// AppendChild attaches an existing detached element as the last child of e.
func (e *Element) AppendChild(child *Element) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = e
	e.Children = append(e.Children, child)
}

// RemoveChild detaches child (matched by identity). It is a no-op when child
// is not a direct child of e.
func (e *Element) RemoveChild(child *Element) {
	for i, c := range e.Children {
		if c == child {
			e.Children = append(e.Children[:i:i], e.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

func (e *Element) SetAttribute(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// GetAttribute returns "" for a missing attribute. Use LookupAttribute to
// tell a missing attribute from an empty one.
func (e *Element) GetAttribute(name string) string {
	v, _ := e.LookupAttribute(name)
	return v
}

func (e *Element) LookupAttribute(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) HasAttribute(name string) bool {
	_, ok := e.LookupAttribute(name)
	return ok
}

func (e *Element) RemoveAttribute(name string) bool {
	for i, a := range e.Attrs {
		if a.Name == name {
			e.Attrs = append(e.Attrs[:i:i], e.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Attributes returns a copy of the attribute list in stored order.
func (e *Element) Attributes() []Attr {
	res := make([]Attr, len(e.Attrs))
	copy(res, e.Attrs)
	return res
}

func (e *Element) SetText(text string) {
	e.Text = text
}

func (e *Element) IsLeaf() bool {
	return len(e.Children) == 0
}

// Index returns the position of e among its parent's children, or -1 for a
// root or detached element.
func (e *Element) Index() int {
	if e.Parent == nil {
		return -1
	}
	for i, c := range e.Parent.Children {
		if c == e {
			return i
		}
	}
	return -1
}

// Depth is 0 for the root.
func (e *Element) Depth() int {
	d := 0
	for p := e.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Walk visits e and its descendants in document order. Returning false from
// fn skips the subtree below the visited element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// FindChild returns the first direct child whose tag contains substr,
// ignoring case.
func (e *Element) FindChild(substr string) *Element {
	substr = strings.ToUpper(substr)
	for _, c := range e.Children {
		if strings.Contains(strings.ToUpper(c.Tag), substr) {
			return c
		}
	}
	return nil
}

// Clone deep-copies e. The copy is detached (no parent).
func (e *Element) Clone() *Element {
	res := &Element{
		Tag:  e.Tag,
		Text: e.Text,
		Pos:  e.Pos,
	}
	if len(e.Attrs) > 0 {
		res.Attrs = e.Attributes()
	}
	for _, c := range e.Children {
		cc := c.Clone()
		cc.Parent = res
		res.Children = append(res.Children, cc)
	}
	return res
}
