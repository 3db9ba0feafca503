package layout

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ByLCY/pagelayout/dsl"
)

// 每个 (data ...) 列表写出的字节数。
const pngBytesPerLine = 32

// Save writes the model as a layout description.
func Save(w io.Writer, m *Model) error {
	root, err := Encode(m)
	if err != nil {
		return err
	}
	return dsl.Format(w, root)
}

// SaveFile writes the model to path.
func SaveFile(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建布局文件失败: %w", err)
	}
	if err := Save(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Format returns the layout description text of m.
func Format(m *Model) (string, error) {
	var b strings.Builder
	if err := Save(&b, m); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode converts the model into the list AST written by Save.
func Encode(m *Model) (*dsl.List, error) {
	root := dsl.NewList("page_layout", encodeSetup(m.Setup))
	for _, it := range m.items {
		node, err := encodeItem(it)
		if err != nil {
			return nil, err
		}
		root.Add(&dsl.Node{List: node})
	}
	return root, nil
}

func encodeSetup(s Setup) *dsl.Node {
	return dsl.L("setup",
		dsl.L("textsize", dsl.Num(s.TextSize.W), dsl.Num(s.TextSize.H)),
		dsl.L("linewidth", dsl.Num(s.LineWidth)),
		dsl.L("textlinewidth", dsl.Num(s.TextLineWidth)),
		dsl.L("left_margin", dsl.Num(s.Margins.Left)),
		dsl.L("right_margin", dsl.Num(s.Margins.Right)),
		dsl.L("top_margin", dsl.Num(s.Margins.Top)),
		dsl.L("bottom_margin", dsl.Num(s.Margins.Bottom)),
	)
}

func encodeItem(it *Item) (*dsl.List, error) {
	switch {
	case it.Type == TypeText && it.Text == nil,
		it.Type == TypePolygon && it.Polygon == nil,
		it.Type == TypeBitmap && it.Bitmap == nil:
		return nil, fmt.Errorf("%w: %s %s", ErrMissingPayload, it.Type.Keyword(), it.ID)
	}
	l := dsl.NewList(it.Type.Keyword())
	if it.Type == TypeText {
		l.Add(dsl.Str(it.Text.Template))
	}
	l.Add(dsl.L("name", dsl.Str(it.Name)))
	switch it.Type {
	case TypeSegment, TypeRect:
		l.Add(encodeAnchor("start", it.Start), encodeAnchor("end", it.End))
	default:
		l.Add(encodeAnchor("pos", it.Start))
	}

	switch it.Type {
	case TypeText:
		encodeText(l, it.Text)
	case TypePolygon:
		encodePolygon(l, it.Polygon)
	case TypeBitmap:
		if err := encodeBitmap(l, it.Bitmap); err != nil {
			return nil, err
		}
	}

	if kw := it.Page.keyword(); kw != "" {
		l.Add(dsl.L("option", dsl.Sym(kw)))
	}
	if it.LineWidth > 0 {
		l.Add(dsl.L("linewidth", dsl.Num(it.LineWidth)))
	}
	if it.RepeatCount > 1 {
		l.Add(dsl.L("repeat", dsl.Int(it.RepeatCount)))
	}
	if it.Increment.X != 0 {
		l.Add(dsl.L("incrx", dsl.Num(it.Increment.X)))
	}
	if it.Increment.Y != 0 {
		l.Add(dsl.L("incry", dsl.Num(it.Increment.Y)))
	}
	if it.IncrementLabel != 1 {
		l.Add(dsl.L("incrlabel", dsl.Int(it.IncrementLabel)))
	}
	if it.Comment != "" {
		l.Add(dsl.L("comment", dsl.Str(it.Comment)))
	}
	return l, nil
}

func encodeAnchor(head string, a Anchor) *dsl.Node {
	n := dsl.L(head, dsl.Num(a.Offset.X), dsl.Num(a.Offset.Y))
	if a.Corner != RightBottom {
		n.List.Add(dsl.Sym(a.Corner.String()))
	}
	return n
}

func encodeText(l *dsl.List, ts *TextSpec) {
	font := dsl.NewList("font")
	if !ts.Size.IsZero() {
		font.Add(dsl.L("size", dsl.Num(ts.Size.W), dsl.Num(ts.Size.H)))
	}
	if ts.PenWidth > 0 {
		font.Add(dsl.L("linewidth", dsl.Num(ts.PenWidth)))
	}
	if ts.Bold {
		font.Add(dsl.Sym("bold"))
	}
	if ts.Italic {
		font.Add(dsl.Sym("italic"))
	}
	if len(font.Items) > 0 {
		l.Add(&dsl.Node{List: font})
	}

	justify := dsl.NewList("justify")
	switch ts.HAlign {
	case AlignCenter:
		justify.Add(dsl.Sym("center"))
	case AlignRight:
		justify.Add(dsl.Sym("right"))
	}
	switch ts.VAlign {
	case AlignTop:
		justify.Add(dsl.Sym("top"))
	case AlignBottom:
		justify.Add(dsl.Sym("bottom"))
	}
	if len(justify.Items) > 0 {
		l.Add(&dsl.Node{List: justify})
	}
	if ts.Orientation != 0 {
		l.Add(dsl.L("rotate", dsl.Num(ts.Orientation)))
	}
	if ts.MaxLength > 0 {
		l.Add(dsl.L("maxlen", dsl.Num(ts.MaxLength)))
	}
	if ts.MaxHeight > 0 {
		l.Add(dsl.L("maxheight", dsl.Num(ts.MaxHeight)))
	}
}

func encodePolygon(l *dsl.List, ps *PolygonSpec) {
	if ps.Orientation != 0 {
		l.Add(dsl.L("rotate", dsl.Num(ps.Orientation)))
	}
	if !ps.Filled {
		l.Add(dsl.L("fill", dsl.Sym("no")))
	}
	for _, outline := range ps.Outlines {
		pts := dsl.NewList("pts")
		for _, p := range outline {
			pts.Add(dsl.L("xy", dsl.Num(p.X), dsl.Num(p.Y)))
		}
		l.Add(&dsl.Node{List: pts})
	}
}

func encodeBitmap(l *dsl.List, bs *BitmapSpec) error {
	l.Add(dsl.L("scale", dsl.Num(bs.Scale)))
	if bs.PPI != DefaultBitmapPPI {
		l.Add(dsl.L("ppi", dsl.Num(bs.PPI)))
	}
	if bs.Source != "" {
		l.Add(dsl.L("file", dsl.Str(bs.Source)))
		return nil
	}
	data, err := bs.encodedData()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	png := dsl.NewList("pngdata")
	for start := 0; start < len(data); start += pngBytesPerLine {
		end := min(start+pngBytesPerLine, len(data))
		row := dsl.NewList("data")
		for _, b := range data[start:end] {
			row.Add(dsl.Sym(strings.ToUpper(hex.EncodeToString([]byte{b}))))
		}
		png.Add(&dsl.Node{List: row})
	}
	l.Add(&dsl.Node{List: png})
	return nil
}
