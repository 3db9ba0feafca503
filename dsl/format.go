package dsl

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// breakThreshold 超过该数量子列表的列表会逐行输出，避免 pts/pngdata 挤在一行。
const breakThreshold = 8

// NewList builds a list node from a head and items.
func NewList(head string, items ...*Node) *List {
	return &List{Head: head, Items: items}
}

// L wraps a new list into a Node.
func L(head string, items ...*Node) *Node {
	return &Node{List: NewList(head, items...)}
}

// Sym returns a bare atom node.
func Sym(s string) *Node { return &Node{Atom: &s} }

// Str returns a quoted string node.
func Str(s string) *Node {
	v := StringLiteral(s)
	return &Node{String: &v}
}

// Num returns a numeric atom using the shortest representation that parses back to f.
func Num(f float64) *Node { return Sym(strconv.FormatFloat(f, 'f', -1, 64)) }

// Int returns an integer atom.
func Int(i int) *Node { return Sym(strconv.Itoa(i)) }

// Add appends nodes to the list and returns it for chaining.
func (l *List) Add(items ...*Node) *List {
	l.Items = append(l.Items, items...)
	return l
}

// Format writes the list as an indented s-expression. Children of the root
// list go on their own lines; deeper lists stay inline unless they hold many
// nested lists.
func Format(w io.Writer, root *List) error {
	bw := bufio.NewWriter(w)
	writeList(bw, root, 0, true)
	bw.WriteByte('\n')
	return bw.Flush()
}

// FormatString returns the formatted text of root.
func FormatString(root *List) string {
	var b strings.Builder
	_ = Format(&b, root)
	return b.String()
}

func writeList(w *bufio.Writer, l *List, depth int, multiline bool) {
	w.WriteByte('(')
	w.WriteString(quoteAtom(l.Head))
	nested := len(l.Lists(""))
	breakChildren := multiline || nested > breakThreshold
	for _, item := range l.Items {
		if item.List != nil && breakChildren {
			w.WriteByte('\n')
			w.WriteString(strings.Repeat("  ", depth+1))
			writeList(w, item.List, depth+1, false)
			continue
		}
		w.WriteByte(' ')
		writeNode(w, item, depth)
	}
	if breakChildren && nested > 0 {
		w.WriteByte('\n')
		w.WriteString(strings.Repeat("  ", depth))
	}
	w.WriteByte(')')
}

func writeNode(w *bufio.Writer, n *Node, depth int) {
	switch {
	case n.List != nil:
		writeList(w, n.List, depth, false)
	case n.String != nil:
		w.WriteString(quoteString(string(*n.String)))
	case n.Atom != nil:
		w.WriteString(quoteAtom(*n.Atom))
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// quoteAtom 原子中出现空白、括号或引号时只能以字符串形式写出。
func quoteAtom(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n()\"") {
		return quoteString(s)
	}
	return s
}
