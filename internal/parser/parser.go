package parser

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports a document that is not well-formed.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parser builds an Element tree from a token stream. Namespace prefixes are
// kept verbatim in tag and attribute names; nothing is resolved.
type Parser struct {
	decoder *xml.Decoder
	input   *inputReader
	stack   []*Element
}

// inputReader remembers the last error of the underlying reader so that
// read failures can be told apart from malformed input.
type inputReader struct {
	r   io.Reader
	err error
}

func (in *inputReader) Read(b []byte) (int, error) {
	n, err := in.r.Read(b)
	if err != nil && err != io.EOF {
		in.err = err
	}
	return n, err
}

// NewParser reads a document from r. A leading UTF-8 byte order mark is
// skipped and declared encodings other than UTF-8 are converted.
func NewParser(r io.Reader) *Parser {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(byteOrderMark)); err == nil && bytes.Equal(b, byteOrderMark) {
		br.Discard(len(byteOrderMark))
	}
	in := &inputReader{r: br}
	d := xml.NewDecoder(in)
	d.CharsetReader = charset.NewReaderLabel
	return &Parser{
		decoder: d,
		input:   in,
	}
}

// ParseBytes is a shorthand for NewParser(bytes.NewReader(b)).Parse().
func ParseBytes(b []byte) (*Element, error) {
	return NewParser(bytes.NewReader(b)).Parse()
}

func ParseString(s string) (*Element, error) {
	return NewParser(strings.NewReader(s)).Parse()
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	line, col := p.decoder.InputPos()
	return &ParseError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) top() *Element {
	return p.stack[len(p.stack)-1]
}

// Parse consumes the whole input. The prolog, comments, processing
// instructions and directives are not part of the tree.
func (p *Parser) Parse() (*Element, error) {
	container := &Element{}
	p.stack = []*Element{container}

	for {
		tok, err := p.decoder.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if p.input.err != nil && errors.Is(err, p.input.err) {
				return nil, err
			}
			var syn *xml.SyntaxError
			if errors.As(err, &syn) {
				pe := p.errorf("%s", syn.Msg)
				pe.Line = syn.Line
				return nil, pe
			}
			return nil, p.errorf("%s", strings.TrimPrefix(err.Error(), "xml: "))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line, col := p.decoder.InputPos()
			el := p.top().CreateChild(qualifiedName(t.Name))
			el.Pos = Position{Line: line, Column: col}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
			}
			p.stack = append(p.stack, el)
		case xml.EndElement:
			if len(p.stack) == 1 {
				return nil, p.errorf("unexpected end element </%s>", qualifiedName(t.Name))
			}
			name := qualifiedName(t.Name)
			if cur := p.top(); cur.Tag != name {
				return nil, p.errorf("element <%s> closed by </%s>", cur.Tag, name)
			}
			p.stack = p.stack[:len(p.stack)-1]
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			if len(p.stack) == 1 {
				return nil, p.errorf("character data outside of root element")
			}
			p.top().Text = string(t)
		}
	}

	if len(p.stack) > 1 {
		return nil, p.errorf("unexpected end of input: element <%s> is not closed", p.top().Tag)
	}

	switch len(container.Children) {
	case 0:
		return nil, p.errorf("document has no root element")
	case 1:
		root := container.Children[0]
		root.Parent = nil
		return root, nil
	default:
		return nil, p.errorf("document has %d root elements", len(container.Children))
	}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
