package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: "LParen", Pattern: `\(`},
		{Name: "RParen", Pattern: `\)`},
		{Name: "Atom", Pattern: `[^\s()"]+`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace"),
	)
)

// Document is the root AST node of a page layout description file.
type Document struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Root *List          `parser:"@@"`
}

// List is a parenthesised expression: a head symbol followed by nodes.
//
//	(start 10 5 ltcorner)
type List struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Head  string         `parser:"'(' @Atom"`
	Items []*Node        `parser:"@@* ')'"`
}

// Node is one element inside a list: a nested list, a quoted string or a bare atom.
type Node struct {
	Pos    lexer.Position `parser:"" json:"-"`
	List   *List          `parser:"  @@"`
	String *StringLiteral `parser:"| @String"`
	Atom   *string        `parser:"| @Atom"`
}

// StringLiteral unquotes strings on capture.
// Only \" and \\ are decoded; any other backslash sequence (for example the
// two characters \n inside a text template) is kept verbatim.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	raw := values[0]
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("invalid string literal %s", raw)
	}
	*s = StringLiteral(unescape(raw[1 : len(raw)-1]))
	return nil
}

// Parse parses a layout description from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a layout description from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// ParseFile parses content, using name as the file name in error positions.
func ParseFile(name string, r io.Reader) (*Document, error) {
	return documentParser.Parse(name, r)
}

// Text returns the string value of an atom or string node.
func (n *Node) Text() (string, bool) {
	switch {
	case n == nil:
		return "", false
	case n.String != nil:
		return string(*n.String), true
	case n.Atom != nil:
		return *n.Atom, true
	default:
		return "", false
	}
}

// Float parses the node as a number.
func (n *Node) Float() (float64, error) {
	if n == nil || n.Atom == nil {
		return 0, fmt.Errorf("%s: 期望数值", n.position())
	}
	v, err := strconv.ParseFloat(*n.Atom, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: 无效数值 %q", n.position(), *n.Atom)
	}
	return v, nil
}

func (n *Node) position() string {
	if n == nil {
		return "<nil>"
	}
	return n.Pos.String()
}

// Lists returns the nested lists of l, optionally filtered by head.
func (l *List) Lists(head string) []*List {
	if l == nil {
		return nil
	}
	var out []*List
	for _, item := range l.Items {
		if item.List == nil {
			continue
		}
		if head == "" || item.List.Head == head {
			out = append(out, item.List)
		}
	}
	return out
}

// Find returns the first nested list with the given head.
func (l *List) Find(head string) *List {
	if ls := l.Lists(head); len(ls) > 0 {
		return ls[0]
	}
	return nil
}

// Values returns the non-list nodes of l in order.
func (l *List) Values() []*Node {
	if l == nil {
		return nil
	}
	var out []*Node
	for _, item := range l.Items {
		if item.List == nil {
			out = append(out, item)
		}
	}
	return out
}

// Floats parses the first n values of l as numbers.
func (l *List) Floats(n int) ([]float64, error) {
	values := l.Values()
	if len(values) < n {
		return nil, fmt.Errorf("%s: (%s) 需要 %d 个数值，实际 %d 个", l.Pos, l.Head, n, len(values))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := values[i].Float()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
