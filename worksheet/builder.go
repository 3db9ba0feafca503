package worksheet

import (
	"log/slog"
	"strings"

	"github.com/ByLCY/pagelayout/binding"
	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
)

// Build 将布局模型展开为一张图纸的绘制列表。
//
// 模型为空且不允许空列表时，会先调用 EnsureDefaultLayout（对模型的一次性修改）。
// 输出顺序与条目声明顺序一致，同一条目内按重复序号排列。Build 不会失败：
// 无法绘制的条目（例如缺少图像的位图）只会被跳过并记录日志。
func Build(model *layout.Model, ctx Context, opts BuildOptions) *List {
	ctx = ctx.normalized()
	log := opts.logger()
	if model == nil {
		model = layout.NewModel()
		model.AllowVoidList(true)
	}
	if model.Count() == 0 && !model.IsVoidListAllowed() {
		model.EnsureDefaultLayout()
		log.Debug("布局为空，已载入内置默认布局", slog.Int("items", model.Count()))
	}

	b := newBuilder(model.Setup, ctx, opts, log)
	list := &List{
		PageWidth:   ctx.Page.Width * ctx.UnitsPerMM,
		PageHeight:  ctx.Page.Height * ctx.UnitsPerMM,
		UnitsPerMM:  ctx.UnitsPerMM,
		SheetIndex:  ctx.SheetIndex,
		SheetCount:  ctx.SheetCount,
		PaperFormat: ctx.Page.Format,
	}
	for _, it := range model.Items() {
		if !it.Page.VisibleOn(ctx.SheetIndex) {
			continue
		}
		list.Items = b.expand(list.Items, it)
	}
	return list
}

type builder struct {
	setup    layout.Setup
	margins  layout.Margin
	page     layout.PageInfo
	scale    float64
	area     geom.Box
	clip     bool
	measurer TextMeasurer
	fields   binding.Fields
	log      *slog.Logger
}

func newBuilder(setup layout.Setup, ctx Context, opts BuildOptions, log *slog.Logger) *builder {
	b := &builder{
		setup:    setup,
		margins:  ctx.Page.EffectiveMargins(setup),
		page:     ctx.Page,
		scale:    ctx.UnitsPerMM,
		clip:     opts.ClipRepeats,
		measurer: opts.measurer(),
		log:      log,
		fields: binding.Fields{
			Title:            ctx.TitleBlock.Title,
			Date:             ctx.TitleBlock.Date,
			Revision:         ctx.TitleBlock.Revision,
			Company:          ctx.TitleBlock.Company,
			Comments:         ctx.TitleBlock.Comments,
			SheetIndex:       ctx.SheetIndex,
			SheetCount:       ctx.SheetCount,
			FileName:         ctx.FileName,
			SheetPath:        ctx.SheetPath,
			PaperFormat:      ctx.Page.Format,
			LayerName:        ctx.LayerName,
			AppVersion:       ctx.AppVersion,
			CommentSeparator: opts.CommentSeparator,
			Vars:             ctx.Vars,
		},
	}
	b.area = geom.BoxOf(b.anchor(layout.At(0, 0, layout.LeftTop)), b.anchor(layout.At(0, 0, layout.RightBottom)))
	return b
}

// anchor 以页面角（向内收缩页边距）为原点解析偏移：左/上角偏移相加，右/下角偏移相减。
func (b *builder) anchor(a layout.Anchor) geom.Point {
	var x, y float64
	if a.Corner.IsLeft() {
		x = b.margins.Left + a.Offset.X
	} else {
		x = b.page.Width - b.margins.Right - a.Offset.X
	}
	if a.Corner.IsTop() {
		y = b.margins.Top + a.Offset.Y
	} else {
		y = b.page.Height - b.margins.Bottom - a.Offset.Y
	}
	return geom.Pt(x*b.scale, y*b.scale)
}

// clipped 只在开启 ClipRepeats 时生效。
func (b *builder) clipped(pts ...geom.Point) bool {
	if !b.clip {
		return false
	}
	for _, p := range pts {
		if !b.area.Contains(p) {
			return true
		}
	}
	return false
}

func (b *builder) pen(width, fallback float64) float64 {
	if width <= 0 {
		width = fallback
	}
	return width * b.scale
}

func (b *builder) expand(out []Item, it *layout.Item) []Item {
	n := max(it.RepeatCount, 1)
	step := it.Increment.Mul(b.scale)
	start := b.anchor(it.Start)

	switch it.Type {
	case layout.TypeSegment, layout.TypeRect:
		end := b.anchor(it.End)
		pen := b.pen(it.LineWidth, b.setup.LineWidth)
		for k := 0; k < n; k++ {
			off := step.Mul(float64(k))
			s, e := start.Add(off), end.Add(off)
			if k > 0 && b.clipped(s, e) {
				continue
			}
			bs := b.base(it, k, pen)
			if it.Type == layout.TypeSegment {
				out = append(out, &Segment{base: bs, Start: s, End: e})
			} else {
				out = append(out, &Rect{base: bs, Start: s, End: e})
			}
		}
	case layout.TypeText:
		out = b.expandText(out, it, start, step, n)
	case layout.TypePolygon:
		out = b.expandPolygon(out, it, start, step, n)
	case layout.TypeBitmap:
		out = b.expandBitmap(out, it, start, step, n)
	}
	return out
}

func (b *builder) base(it *layout.Item, k int, pen float64) base {
	return base{peer: it.ID, repeat: k, pen: pen, scale: b.scale}
}

func (b *builder) expandText(out []Item, it *layout.Item, start, step geom.Point, n int) []Item {
	ts := it.Text
	if ts == nil {
		b.log.Warn("文本条目缺少文本内容，已跳过", slog.String("id", it.ID.String()))
		return out
	}
	size := ts.Size
	if size.W <= 0 {
		size.W = b.setup.TextSize.W
	}
	if size.H <= 0 {
		size.H = b.setup.TextSize.H
	}
	size = layout.Size{W: size.W * b.scale, H: size.H * b.scale}
	pen := b.pen(ts.PenWidth, b.setup.TextLineWidth)

	resolved := binding.Expand(strings.ReplaceAll(ts.Template, `\n`, "\n"), b.fields)
	for k := 0; k < n; k++ {
		pos := start.Add(step.Mul(float64(k)))
		if k > 0 && b.clipped(pos) {
			continue
		}
		content := resolved
		if k > 0 {
			content = binding.IncrementLabel(resolved, k*it.IncrementLabel)
		}
		t := &Text{
			base:        b.base(it, k, pen),
			Pos:         pos,
			Text:        content,
			Size:        size,
			Orientation: ts.Orientation,
			HAlign:      ts.HAlign,
			VAlign:      ts.VAlign,
			Bold:        ts.Bold,
			Italic:      ts.Italic,
		}
		b.layoutText(t, ts.MaxLength*b.scale, ts.MaxHeight*b.scale)
		out = append(out, t)
	}
	return out
}

// layoutText 测量文本并计算未旋转的文本框，必要时按 maxLen/maxHeight 等比缩小字号。
func (b *builder) layoutText(t *Text, maxLen, maxHeight float64) {
	lines := t.Lines()
	t.LineWidths = make([]float64, len(lines))
	w := 0.0
	for i, line := range lines {
		t.LineWidths[i] = b.measurer.LineWidth(line, t.Size, t.Bold, t.Italic)
		w = max(w, t.LineWidths[i])
	}
	h := t.Size.H + float64(len(lines)-1)*t.LinePitch()

	if maxLen > 0 && w > maxLen {
		f := maxLen / w
		t.Size.W *= f
		for i := range t.LineWidths {
			t.LineWidths[i] *= f
		}
		w = maxLen
	}
	if maxHeight > 0 && h > maxHeight {
		t.Size.H *= maxHeight / h
		h = maxHeight
	}

	x := t.Pos.X
	switch t.HAlign {
	case layout.AlignCenter:
		x -= w / 2
	case layout.AlignRight:
		x -= w
	}
	y := t.Pos.Y
	switch t.VAlign {
	case layout.AlignMiddle:
		y -= h / 2
	case layout.AlignBottom:
		y -= h
	}
	t.box = geom.BoxAt(geom.Pt(x, y), w, h)
}

func (b *builder) expandPolygon(out []Item, it *layout.Item, start, step geom.Point, n int) []Item {
	ps := it.Polygon
	if ps == nil || len(ps.Outlines) == 0 {
		b.log.Warn("多边形条目没有轮廓，已跳过", slog.String("id", it.ID.String()))
		return out
	}
	pen := b.pen(it.LineWidth, b.setup.LineWidth)
	// 轮廓点先绕起点旋转再缩放，重复副本只做平移。
	local := make([][]geom.Point, len(ps.Outlines))
	for i, outline := range ps.Outlines {
		local[i] = make([]geom.Point, len(outline))
		for j, p := range outline {
			local[i][j] = geom.Rotate(p, geom.Point{}, ps.Orientation).Mul(b.scale)
		}
	}
	for k := 0; k < n; k++ {
		pos := start.Add(step.Mul(float64(k)))
		if k > 0 && b.clipped(pos) {
			continue
		}
		outlines := make([][]geom.Point, len(local))
		for i, outline := range local {
			outlines[i] = make([]geom.Point, len(outline))
			for j, p := range outline {
				outlines[i][j] = pos.Add(p)
			}
		}
		out = append(out, &Polygon{base: b.base(it, k, pen), Pos: pos, Outlines: outlines, Filled: ps.Filled})
	}
	return out
}

func (b *builder) expandBitmap(out []Item, it *layout.Item, start, step geom.Point, n int) []Item {
	bs := it.Bitmap
	if bs == nil || bs.Image == nil {
		b.log.Info("位图条目没有图像数据，不会绘制", slog.String("id", it.ID.String()))
		return out
	}
	wmm, hmm := bs.SizeMM()
	pen := b.pen(it.LineWidth, b.setup.LineWidth)
	for k := 0; k < n; k++ {
		pos := start.Add(step.Mul(float64(k)))
		if k > 0 && b.clipped(pos) {
			continue
		}
		out = append(out, &Bitmap{
			base:   b.base(it, k, pen),
			Pos:    pos,
			Image:  bs.Image,
			Width:  wmm * b.scale,
			Height: hmm * b.scale,
		})
	}
	return out
}
