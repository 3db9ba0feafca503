package worksheet

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
)

// Painter 接收绘制意图，每种图形一个方法。绘图后端实现该接口。
type Painter interface {
	Line(s *Segment)
	Rect(r *Rect)
	Polygon(p *Polygon)
	Text(t *Text)
	Bitmap(b *Bitmap)
}

// Item 是一个已解析到页面坐标的绘制条目。五种实现构成封闭集合。
type Item interface {
	Kind() layout.ItemType
	// Peer 返回来源布局条目的 ID，通过 layout.Model.Item 解析。
	Peer() uuid.UUID
	// Repeat 返回该条目代表的重复序号（从 0 开始）。
	Repeat() int
	PenWidth() float64
	Position() geom.Point
	BoundingBox() geom.Box
	HitTest(p geom.Point, tol float64) bool
	HitTestRect(r geom.Box, contained bool, tol float64) bool
	// Describe 返回选择菜单中显示的说明。
	Describe() string
	Draw(p Painter)
}

var (
	_ Item = (*Segment)(nil)
	_ Item = (*Rect)(nil)
	_ Item = (*Text)(nil)
	_ Item = (*Polygon)(nil)
	_ Item = (*Bitmap)(nil)
)

type base struct {
	peer   uuid.UUID
	repeat int
	pen    float64
	scale  float64
}

func (b *base) Peer() uuid.UUID { return b.peer }
func (b *base) Repeat() int { return b.repeat }
func (b *base) PenWidth() float64 { return b.pen }

// mm 将绘图单位格式化为毫米文本。
func (b *base) mm(v float64) string {
	s := b.scale
	if s <= 0 {
		s = 1
	}
	return strconv.FormatFloat(v/s, 'f', 2, 64)
}

func (b *base) at(p geom.Point) string {
	return "(" + b.mm(p.X) + ", " + b.mm(p.Y) + ")"
}

// hitTestBox 是通用的矩形选择测试：容差先放大选择框，再判断包含或相交。
func hitTestBox(bbox, r geom.Box, contained bool, tol float64) bool {
	if r.IsEmpty() {
		return false
	}
	sel := geom.BoxOf(r.Min, r.Max)
	if tol != 0 {
		sel = sel.Inflate(tol)
	}
	if contained {
		return sel.ContainsBox(bbox)
	}
	return sel.Intersects(bbox)
}

// Segment 线段。
type Segment struct {
	base
	Start geom.Point
	End   geom.Point
}

func (s *Segment) Kind() layout.ItemType { return layout.TypeSegment }
func (s *Segment) Position() geom.Point { return s.Start }
func (s *Segment) BoundingBox() geom.Box { return geom.BoxOf(s.Start, s.End) }
func (s *Segment) Draw(p Painter) { p.Line(s) }

func (s *Segment) HitTest(p geom.Point, tol float64) bool {
	return geom.TestSegmentHit(p, s.Start, s.End, tol+s.pen/2)
}

func (s *Segment) HitTestRect(r geom.Box, contained bool, tol float64) bool {
	return hitTestBox(s.BoundingBox(), r, contained, tol)
}

func (s *Segment) Describe() string {
	return fmt.Sprintf("Line from %s to %s", s.at(s.Start), s.at(s.End))
}

// Rect 矩形外框（不填充）。
type Rect struct {
	base
	Start geom.Point
	End   geom.Point
}

func (r *Rect) Kind() layout.ItemType { return layout.TypeRect }
func (r *Rect) Position() geom.Point { return r.Start }
func (r *Rect) BoundingBox() geom.Box { return geom.BoxOf(r.Start, r.End) }
func (r *Rect) Draw(p Painter) { p.Rect(r) }

// HitTest 只测试四条边，不测试内部区域。
func (r *Rect) HitTest(p geom.Point, tol float64) bool {
	dist := tol + r.pen/2
	corners := [4]geom.Point{r.Start, {X: r.End.X, Y: r.Start.Y}, r.End, {X: r.Start.X, Y: r.End.Y}}
	for i := range corners {
		if geom.TestSegmentHit(p, corners[i], corners[(i+1)%4], dist) {
			return true
		}
	}
	return false
}

func (r *Rect) HitTestRect(sel geom.Box, contained bool, tol float64) bool {
	return hitTestBox(r.BoundingBox(), sel, contained, tol)
}

func (r *Rect) Describe() string {
	return fmt.Sprintf("Rectangle from %s to %s", r.at(r.Start), r.at(r.End))
}

// Text 已替换标记的文本。Size 与坐标均为绘图单位。
type Text struct {
	base
	Pos         geom.Point
	Text        string
	Size        layout.Size
	Orientation float64
	HAlign      layout.HAlign
	VAlign      layout.VAlign
	Bold        bool
	Italic      bool
	// LineWidths 为每行测得的宽度，供后端按对齐方式摆放各行。
	LineWidths []float64

	box geom.Box // 未旋转的文本框
}

func (t *Text) Kind() layout.ItemType { return layout.TypeText }
func (t *Text) Position() geom.Point { return t.Pos }
func (t *Text) Draw(p Painter) { p.Text(t) }

// Lines returns the text split on line breaks.
func (t *Text) Lines() []string { return strings.Split(t.Text, "\n") }

// LinePitch returns the distance between consecutive baselines.
func (t *Text) LinePitch() float64 { return t.Size.H * LineSpacing }

// TextBox returns the unrotated text box; rotate it by Orientation around Pos
// to get the drawn extent.
func (t *Text) TextBox() geom.Box { return t.box }

func (t *Text) BoundingBox() geom.Box {
	if t.Orientation == 0 {
		return t.box
	}
	out := geom.EmptyBox()
	for _, c := range t.box.Corners() {
		out = out.Merge(geom.Rotate(c, t.Pos, t.Orientation))
	}
	return out
}

// HitTest 把点反向旋转到文本坐标系后测试文本框。
func (t *Text) HitTest(p geom.Point, tol float64) bool {
	q := geom.Rotate(p, t.Pos, -t.Orientation)
	return t.box.Inflate(tol).Contains(q)
}

func (t *Text) HitTestRect(r geom.Box, contained bool, tol float64) bool {
	return hitTestBox(t.BoundingBox(), r, contained, tol)
}

func (t *Text) Describe() string {
	return fmt.Sprintf("Text %s at %s", t.Text, t.at(t.Pos))
}

// Polygon 一个或多个闭合轮廓，坐标已旋转并平移到页面。
type Polygon struct {
	base
	Pos      geom.Point
	Outlines [][]geom.Point
	Filled   bool
}

func (p *Polygon) Kind() layout.ItemType { return layout.TypePolygon }
func (p *Polygon) Position() geom.Point { return p.Pos }
func (p *Polygon) Draw(pt Painter) { pt.Polygon(p) }

// BoundingBox 包含起点位置以及所有轮廓点。
func (p *Polygon) BoundingBox() geom.Box {
	box := geom.BoxOf(p.Pos, p.Pos)
	for _, outline := range p.Outlines {
		for _, c := range outline {
			box = box.Merge(c)
		}
	}
	return box
}

// HitTest 测试每条边（首尾相连），只使用容差，不计线宽。
func (p *Polygon) HitTest(pt geom.Point, tol float64) bool {
	for _, outline := range p.Outlines {
		n := len(outline)
		for i := 0; i < n; i++ {
			if geom.TestSegmentHit(pt, outline[i], outline[(i+1)%n], tol) {
				return true
			}
		}
	}
	return false
}

func (p *Polygon) HitTestRect(r geom.Box, contained bool, tol float64) bool {
	if r.IsEmpty() {
		return false
	}
	sel := geom.BoxOf(r.Min, r.Max)
	if tol != 0 {
		sel = sel.Inflate(tol)
	}
	bbox := p.BoundingBox()
	if contained {
		return sel.ContainsBox(bbox)
	}
	if !sel.Intersects(bbox) {
		return false
	}
	for _, outline := range p.Outlines {
		n := len(outline)
		for i := 0; i < n; i++ {
			if sel.Contains(outline[i]) {
				return true
			}
			if sel.IntersectsSegment(outline[i], outline[(i+1)%n]) {
				return true
			}
		}
	}
	return false
}

func (p *Polygon) Describe() string {
	return fmt.Sprintf("Imported shape at %s", p.at(p.Pos))
}

// Bitmap 以 Pos 为中心放置的位图。Width/Height 为绘图单位。
type Bitmap struct {
	base
	Pos    geom.Point
	Image  image.Image
	Width  float64
	Height float64
}

func (b *Bitmap) Kind() layout.ItemType { return layout.TypeBitmap }
func (b *Bitmap) Position() geom.Point { return b.Pos }
func (b *Bitmap) Draw(p Painter) { p.Bitmap(b) }

func (b *Bitmap) BoundingBox() geom.Box {
	half := geom.Pt(b.Width/2, b.Height/2)
	return geom.BoxOf(b.Pos.Sub(half), b.Pos.Add(half))
}

func (b *Bitmap) HitTest(p geom.Point, tol float64) bool {
	return b.BoundingBox().Inflate(tol).Contains(p)
}

func (b *Bitmap) HitTestRect(r geom.Box, contained bool, tol float64) bool {
	return hitTestBox(b.BoundingBox(), r, contained, tol)
}

func (b *Bitmap) Describe() string {
	return fmt.Sprintf("Image at %s", b.at(b.Pos))
}
