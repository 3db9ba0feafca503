package worksheet

import "github.com/ByLCY/pagelayout/geom"

// List 是一张图纸的绘制列表，每次渲染或绘图时重新构建，不做持久化。
// 坐标单位为绘图单位（毫米 × UnitsPerMM）。
type List struct {
	Items       []Item
	PageWidth   float64
	PageHeight  float64
	UnitsPerMM  float64
	SheetIndex  int
	SheetCount  int
	PaperFormat string
}

// Len returns the number of draw items.
func (l *List) Len() int { return len(l.Items) }

// Draw sends every item to p in declaration order, so later items paint over earlier ones.
func (l *List) Draw(p Painter) {
	for _, it := range l.Items {
		it.Draw(p)
	}
}

// HitTest returns the items hit by point p, topmost (last drawn) first.
func (l *List) HitTest(p geom.Point, tol float64) []Item {
	var out []Item
	for i := len(l.Items) - 1; i >= 0; i-- {
		if l.Items[i].HitTest(p, tol) {
			out = append(out, l.Items[i])
		}
	}
	return out
}

// Select returns the items matched by the selection rectangle, in declaration order.
func (l *List) Select(r geom.Box, contained bool, tol float64) []Item {
	var out []Item
	for _, it := range l.Items {
		if it.HitTestRect(r, contained, tol) {
			out = append(out, it)
		}
	}
	return out
}

// BoundingBox returns the union of all item bounding boxes.
func (l *List) BoundingBox() geom.Box {
	box := geom.EmptyBox()
	for _, it := range l.Items {
		box = box.Union(it.BoundingBox())
	}
	return box
}
