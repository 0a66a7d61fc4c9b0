package parser

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<!-- exported by tool -->
<AUTOSAR xmlns="http://autosar.org/schema/r4.0" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://autosar.org/schema/r4.0 AUTOSAR_4-2-2.xsd">
  <AR-PACKAGES>
    <AR-PACKAGE>
      <SHORT-NAME>Pkg</SHORT-NAME>
      <ELEMENTS/>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>
`
	root, err := ParseString(input)
	require.NoError(t, err)

	assert.Equal(t, "AUTOSAR", root.Tag)
	assert.Nil(t, root.Parent)
	assert.Equal(t, []Attr{
		{Name: "xmlns", Value: "http://autosar.org/schema/r4.0"},
		{Name: "xmlns:xsi", Value: "http://www.w3.org/2001/XMLSchema-instance"},
		{Name: "xsi:schemaLocation", Value: "http://autosar.org/schema/r4.0 AUTOSAR_4-2-2.xsd"},
	}, root.Attrs)
	assert.Empty(t, root.Text)

	require.Len(t, root.Children, 1)
	pkgs := root.Children[0]
	assert.Same(t, root, pkgs.Parent)
	require.Len(t, pkgs.Children, 1)
	pkg := pkgs.Children[0]
	require.Len(t, pkg.Children, 2)
	assert.Equal(t, "SHORT-NAME", pkg.Children[0].Tag)
	assert.Equal(t, "Pkg", pkg.Children[0].Text)
	assert.Equal(t, "ELEMENTS", pkg.Children[1].Tag)
	assert.Empty(t, pkg.Children[1].Children)
	assert.Equal(t, 6, pkg.Children[0].Pos.Line)
}

func TestParseMinimal(t *testing.T) {
	root, err := ParseString(`<A x="1"><B>hi</B></A>`)
	require.NoError(t, err)
	assert.Equal(t, "A", root.Tag)
	assert.Equal(t, []Attr{{Name: "x", Value: "1"}}, root.Attrs)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "B", root.Children[0].Tag)
	assert.Equal(t, "hi", root.Children[0].Text)
}

func TestParseLastTextChunkWins(t *testing.T) {
	root, err := ParseString(`<A>first<B/>second<C/>  </A>`)
	require.NoError(t, err)
	assert.Equal(t, "second", root.Text)
	assert.Len(t, root.Children, 2)
}

func TestParseEntitiesAndCDATA(t *testing.T) {
	root, err := ParseString(`<A v="a&amp;b"><B>1 &lt; 2</B><C><![CDATA[<raw>]]></C></A>`)
	require.NoError(t, err)
	assert.Equal(t, "a&b", root.GetAttribute("v"))
	assert.Equal(t, "1 < 2", root.Children[0].Text)
	assert.Equal(t, "<raw>", root.Children[1].Text)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"mismatched", "<A><B></A>", 1},
		{"unclosed", "<A>\n<B>\n</B>\n", 4},
		{"empty", "", 1},
		{"prolog only", `<?xml version="1.0"?>` + "\n", 2},
		{"two roots", "<A/>\n<B/>", 2},
		{"text outside root", "<A/>junk", 1},
		{"syntax", "<A>\n<B x=1/></A>", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
			assert.Equal(t, tt.line, pe.Line)
			assert.NotEmpty(t, pe.Msg)
		})
	}
}

func TestParseByteOrderMark(t *testing.T) {
	root, err := ParseString("\ufeff<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<A><B>hi</B></A>")
	require.NoError(t, err)
	assert.Equal(t, "A", root.Tag)
	assert.Equal(t, "hi", root.Children[0].Text)
	assert.Equal(t, 2, root.Pos.Line)

	root, err = ParseString("\ufeff<A/>")
	require.NoError(t, err)
	assert.Equal(t, "A", root.Tag)
}

func TestParseDeclaredEncoding(t *testing.T) {
	input := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<A n=\"\xe9\">caf\xe9</A>")
	root, err := ParseBytes(input)
	require.NoError(t, err)
	assert.Equal(t, "café", root.Text)
	assert.Equal(t, "é", root.GetAttribute("n"))

	_, err = ParseString(`<?xml version="1.0" encoding="no-such-charset"?><A/>`)
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "expected *ParseError, got %T", err)
	assert.Contains(t, pe.Msg, "no-such-charset")
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestParseReaderError(t *testing.T) {
	readErr := errors.New("disk gone")
	_, err := NewParser(io.MultiReader(
		strings.NewReader("<A><B>"),
		failingReader{readErr},
	)).Parse()
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
	var pe *ParseError
	assert.False(t, errors.As(err, &pe))
}

func TestElementAttributes(t *testing.T) {
	e := NewElement("E")
	e.SetAttribute("a", "1")
	e.SetAttribute("b", "2")
	e.SetAttribute("a", "3")

	assert.Equal(t, []Attr{{"a", "3"}, {"b", "2"}}, e.Attrs)
	assert.Equal(t, "3", e.GetAttribute("a"))
	assert.Equal(t, "", e.GetAttribute("missing"))

	e.SetAttribute("empty", "")
	v, ok := e.LookupAttribute("empty")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.False(t, e.HasAttribute("missing"))

	assert.True(t, e.RemoveAttribute("a"))
	assert.False(t, e.RemoveAttribute("a"))
	assert.Equal(t, []Attr{{"b", "2"}, {"empty", ""}}, e.Attributes())
}

func TestCreateRemoveChild(t *testing.T) {
	root := NewElement("R")
	a := root.CreateChild("A")
	b := root.CreateChild("B")
	before := append([]*Element(nil), root.Children...)

	c := root.CreateChild("C")
	assert.Same(t, root, c.Parent)
	assert.Equal(t, 2, c.Index())
	root.RemoveChild(c)
	assert.Equal(t, before, root.Children)
	assert.Nil(t, c.Parent)

	root.RemoveChild(NewElement("X"))
	assert.Equal(t, []*Element{a, b}, root.Children)

	root.RemoveChild(a)
	assert.Equal(t, []*Element{b}, root.Children)
	assert.Equal(t, 0, b.Index())
	assert.Equal(t, -1, root.Index())
}

func TestFindChildAndWalk(t *testing.T) {
	root, err := ParseString(`<R><short-name>n</short-name><X><Y/></X><Z/></R>`)
	require.NoError(t, err)

	assert.Equal(t, "n", root.FindChild("SHORT-NAME").Text)
	assert.Nil(t, root.FindChild("NOPE"))

	var tags []string
	root.Walk(func(e *Element) bool {
		tags = append(tags, e.Tag)
		return e.Tag != "X"
	})
	assert.Equal(t, []string{"R", "short-name", "X", "Z"}, tags)
	assert.Equal(t, 2, root.Children[1].Children[0].Depth())
}

func TestClone(t *testing.T) {
	root, err := ParseString(`<R a="1"><S>t</S></R>`)
	require.NoError(t, err)
	cp := root.Clone()
	cp.Children[0].Text = "changed"
	cp.SetAttribute("a", "2")

	assert.Equal(t, "t", root.Children[0].Text)
	assert.Equal(t, "1", root.GetAttribute("a"))
	assert.Same(t, cp, cp.Children[0].Parent)
}
