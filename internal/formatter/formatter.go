package formatter

import (
	"bufio"
	"io"
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

const DefaultIndent = 4

const Header = `<?xml version="1.0" encoding="UTF-8"?>`

type Options struct {
	// Indent is the number of spaces per depth level. Zero means DefaultIndent.
	Indent int
	// KeepMixedText writes the text of an element that also has children
	// right after its start tag. Without it such text is dropped.
	KeepMixedText bool
	// OnDroppedText is called for every element whose text is dropped.
	OnDroppedText func(*parser.Element)
	// OmitHeader suppresses the XML declaration.
	OmitHeader bool
}

type Formatter struct {
	opts   Options
	writer *bufio.Writer
	unit   string
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\t", "&#x9;", "\n", "&#xA;", "\r", "&#xD;",
	)
)

// Format writes root and its subtree as an XML document.
func Format(root *parser.Element, w io.Writer, opts Options) error {
	if opts.Indent <= 0 {
		opts.Indent = DefaultIndent
	}
	f := &Formatter{
		opts:   opts,
		writer: bufio.NewWriter(w),
		unit:   strings.Repeat(" ", opts.Indent),
	}
	if !opts.OmitHeader {
		f.writer.WriteString(Header)
		f.writer.WriteByte('\n')
	}
	if root != nil {
		f.formatElement(root, 0, true)
	}
	return f.writer.Flush()
}

// String formats root without the XML declaration.
func String(root *parser.Element, opts Options) string {
	var sb strings.Builder
	opts.OmitHeader = true
	Format(root, &sb, opts)
	return sb.String()
}

// formatElement writes e at depth. Without indent the start tag follows the
// previous output directly.
func (f *Formatter) formatElement(e *parser.Element, depth int, indent bool) {
	indentStr := strings.Repeat(f.unit, depth)
	if indent {
		f.writer.WriteString(indentStr)
	}
	f.writer.WriteByte('<')
	f.writer.WriteString(e.Tag)
	for _, a := range e.Attrs {
		f.writer.WriteByte(' ')
		f.writer.WriteString(a.Name)
		f.writer.WriteString(`="`)
		attrEscaper.WriteString(f.writer, a.Value)
		f.writer.WriteByte('"')
	}

	if len(e.Children) == 0 {
		if e.Text == "" {
			f.writer.WriteString("/>\n")
			return
		}
		f.writer.WriteByte('>')
		textEscaper.WriteString(f.writer, e.Text)
		f.writeEnd(e.Tag)
		return
	}

	f.writer.WriteByte('>')
	// Kept text runs straight into the first child, so no layout whitespace
	// is added to it.
	inline := false
	if e.Text != "" {
		if f.opts.KeepMixedText {
			textEscaper.WriteString(f.writer, e.Text)
			inline = true
		} else if f.opts.OnDroppedText != nil {
			f.opts.OnDroppedText(e)
		}
	}
	if !inline {
		f.writer.WriteByte('\n')
	}
	for i, c := range e.Children {
		f.formatElement(c, depth+1, i > 0 || !inline)
	}
	f.writer.WriteString(indentStr)
	f.writeEnd(e.Tag)
}

func (f *Formatter) writeEnd(tag string) {
	f.writer.WriteString("</")
	f.writer.WriteString(tag)
	f.writer.WriteString(">\n")
}
