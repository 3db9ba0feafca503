package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/pagelayout/fonts"
	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
	"github.com/ByLCY/pagelayout/logging"
	"github.com/ByLCY/pagelayout/renderer"
	"github.com/ByLCY/pagelayout/worksheet"
)

// 输出格式。
const (
	FormatPDF = "pdf"
	FormatSVG = "svg"
)

// minStroke 线宽为零时使用的最细线（mm）。
const minStroke = 0.05

// Renderer draws worksheet draw lists via github.com/tdewolff/canvas.
type Renderer struct {
	format     string
	unitsPerMM float64
	meta       renderer.Metadata
	color      color.Color
	font       Resource
	log        *slog.Logger

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var (
	_ renderer.Renderer      = (*Renderer)(nil)
	_ worksheet.TextMeasurer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Format     string  // "pdf"（默认）或 "svg"
	UnitsPerMM float64 // 绘制列表的单位，测量文本时使用，缺省为 1
	Meta       renderer.Metadata
	Color      color.Color // 缺省为黑色
	Font       Resource    // 替换内置常规字体
	Logger     *slog.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer with default options.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with the given options.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		format:     strings.ToLower(opts.Format),
		unitsPerMM: opts.UnitsPerMM,
		meta:       opts.Meta,
		color:      opts.Color,
		font:       opts.Font,
		log:        opts.Logger,
	}
	if r.format == "" {
		r.format = FormatPDF
	}
	if r.unitsPerMM <= 0 {
		r.unitsPerMM = 1
	}
	if r.color == nil {
		r.color = canvas.Black
	}
	if r.log == nil {
		r.log = logging.WithComponent("canvas")
	}
	return r
}

// Render renders the sheets into a PDF (one page per sheet) or a single-sheet SVG.
func (r *Renderer) Render(sheets []*worksheet.List) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("缺少可渲染的图纸")
	}
	for i, s := range sheets {
		if s == nil {
			return nil, fmt.Errorf("第 %d 张图纸为空", i+1)
		}
	}
	var buf bytes.Buffer
	switch r.format {
	case FormatPDF:
		if err := r.renderPDF(&buf, sheets); err != nil {
			return nil, err
		}
	case FormatSVG:
		if len(sheets) != 1 {
			return nil, fmt.Errorf("SVG 输出只支持单张图纸，实际 %d 张", len(sheets))
		}
		if err := r.renderSVG(&buf, sheets[0]); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式 %q", r.format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderPDF(w io.Writer, sheets []*worksheet.List) error {
	width, height := pageSize(sheets[0])
	writer := pdf.New(w, width, height, nil)
	m := r.meta
	writer.SetInfo(m.Title, m.Subject, strings.Join(m.Keywords, ", "), m.Author, m.Creator)
	for i, sheet := range sheets {
		width, height := pageSize(sheet)
		if i > 0 {
			writer.NewPage(width, height)
		}
		c, err := r.drawSheet(sheet)
		if err != nil {
			return err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return nil
}

func (r *Renderer) renderSVG(w io.Writer, sheet *worksheet.List) error {
	width, height := pageSize(sheet)
	writer := svg.New(w, width, height, nil)
	c, err := r.drawSheet(sheet)
	if err != nil {
		return err
	}
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 SVG 失败: %w", err)
	}
	return nil
}

// drawSheet 把一张图纸绘制到新的画布上，坐标统一换算为毫米。
func (r *Renderer) drawSheet(sheet *worksheet.List) (*canvas.Canvas, error) {
	width, height := pageSize(sheet)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，y 轴向下，与绘制列表一致

	p := &painter{r: r, ctx: ctx, upm: unitsOf(sheet)}
	sheet.Draw(p)
	if p.err != nil {
		return nil, fmt.Errorf("绘制第 %d 张图纸失败: %w", sheet.SheetIndex, p.err)
	}
	if p.skipped > 0 {
		r.log.Debug("部分条目未绘制", slog.Int("sheet", sheet.SheetIndex), slog.Int("skipped", p.skipped))
	}
	return c, nil
}

// LineWidth 实现 worksheet.TextMeasurer。size 与返回值使用绘制列表单位（mm × UnitsPerMM）。
// 字体以字符高度作为字号，字符宽度通过水平缩放实现。
func (r *Renderer) LineWidth(line string, size layout.Size, bold, italic bool) float64 {
	if line == "" || size.H <= 0 {
		return 0
	}
	face, err := r.fontFace(size.H/r.unitsPerMM, bold, italic)
	if err != nil {
		r.log.Warn("字体加载失败，改用估算宽度", "err", err)
		return worksheet.EstimateMeasurer{}.LineWidth(line, size, bold, italic)
	}
	return face.TextWidth(line) * r.unitsPerMM * stretch(size)
}

func (r *Renderer) fontFace(heightMM float64, bold, italic bool) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	return family.Face(toPt(heightMM), r.color, fontStyle(bold, italic), canvas.FontNormal), nil
}

func fontStyle(bold, italic bool) canvas.FontStyle {
	style := canvas.FontRegular
	if bold {
		style |= canvas.FontBold
	}
	if italic {
		style |= canvas.FontItalic
	}
	return style
}

func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}

	family := canvas.NewFontFamily("worksheet")
	for _, bold := range []bool{false, true} {
		for _, italic := range []bool{false, true} {
			name := fonts.ForStyle(bold, italic)
			data, err := r.loadFontBytes(name)
			if err != nil {
				return nil, err
			}
			if err := family.LoadFont(data, 0, fontStyle(bold, italic)); err != nil {
				return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
			}
		}
	}
	r.family = family
	return family, nil
}

// loadFontBytes 常规字体可由 Options.Font 替换（文件路径或 "embed:名称"），其余样式总是使用内置字体。
func (r *Renderer) loadFontBytes(name string) ([]byte, error) {
	if name == fonts.Regular {
		if len(r.font.Bytes) > 0 {
			return r.font.Bytes, nil
		}
		if strings.HasPrefix(r.font.Path, "embed:") {
			return fonts.Load(r.font.Path)
		}
		if r.font.Path != "" {
			data, err := os.ReadFile(r.font.Path)
			if err != nil {
				return nil, fmt.Errorf("读取字体 %s 失败: %w", r.font.Path, err)
			}
			return data, nil
		}
	}
	return fonts.Load(name)
}

// painter 实现 worksheet.Painter，把绘制意图转换为 canvas 路径与文本。
type painter struct {
	r       *Renderer
	ctx     *canvas.Context
	upm     float64
	err     error
	skipped int
}

func (p *painter) mm(v float64) float64 { return v / p.upm }

func (p *painter) xy(v geom.Point) (float64, float64) { return v.X / p.upm, v.Y / p.upm }

func (p *painter) stroke(width float64) {
	w := p.mm(width)
	if w <= 0 {
		w = minStroke
	}
	p.ctx.SetStrokeColor(p.r.color)
	p.ctx.SetStrokeWidth(w)
}

func (p *painter) Line(s *worksheet.Segment) {
	p.stroke(s.PenWidth())
	p.ctx.SetFillColor(color.RGBA{})
	x1, y1 := p.xy(s.Start)
	x2, y2 := p.xy(s.End)
	path := &canvas.Path{}
	path.MoveTo(0, 0)
	path.LineTo(x2-x1, y2-y1)
	p.ctx.DrawPath(x1, y1, path)
}

func (p *painter) Rect(rc *worksheet.Rect) {
	box := rc.BoundingBox()
	p.stroke(rc.PenWidth())
	p.ctx.SetFillColor(color.RGBA{})
	x, y := p.xy(box.Min)
	p.ctx.DrawPath(x, y, canvas.Rectangle(p.mm(box.Width()), p.mm(box.Height())))
}

func (p *painter) Polygon(pg *worksheet.Polygon) {
	path := &canvas.Path{}
	for _, outline := range pg.Outlines {
		if len(outline) < 2 {
			continue
		}
		path.MoveTo(p.xy(outline[0]))
		for _, pt := range outline[1:] {
			path.LineTo(p.xy(pt))
		}
		path.Close()
	}
	p.stroke(pg.PenWidth())
	if pg.Filled {
		p.ctx.SetFillColor(p.r.color)
	} else {
		p.ctx.SetFillColor(color.RGBA{})
	}
	p.ctx.DrawPath(0, 0, path)
}

// Text 逐行绘制：行框按对齐方式放在未旋转的文本框内，再绕 Pos 旋转。
func (p *painter) Text(t *worksheet.Text) {
	if p.err != nil || strings.TrimSpace(t.Text) == "" {
		return
	}
	face, err := p.r.fontFace(p.mm(t.Size.H), t.Bold, t.Italic)
	if err != nil {
		p.err = err
		return
	}
	box := t.TextBox()
	sx := stretch(t.Size)
	for i, line := range t.Lines() {
		if line == "" {
			continue
		}
		lw := 0.0
		if i < len(t.LineWidths) {
			lw = t.LineWidths[i]
		}
		x := box.Min.X
		switch t.HAlign {
		case layout.AlignCenter:
			x += (box.Width() - lw) / 2
		case layout.AlignRight:
			x = box.Max.X - lw
		}
		// 基线位于该行字符高度的底部
		baseline := geom.Pt(x, box.Min.Y+float64(i)*t.LinePitch()+t.Size.H)
		at := geom.Rotate(baseline, t.Pos, t.Orientation)
		ax, ay := p.xy(at)

		p.ctx.Push()
		// CartesianIV 下 y 轴向下，页面上的逆时针对应负角度
		p.ctx.ComposeView(canvas.Identity.Translate(ax, ay).Rotate(-t.Orientation).Scale(sx, 1))
		p.ctx.DrawText(0, 0, canvas.NewTextLine(face, line, canvas.Left))
		p.ctx.Pop()
	}
}

func (p *painter) Bitmap(b *worksheet.Bitmap) {
	if b.Image == nil || b.Width <= 0 {
		p.skipped++
		return
	}
	px := b.Image.Bounds().Dx()
	if px <= 0 {
		p.skipped++
		return
	}
	box := b.BoundingBox()
	x, y := p.xy(box.Min)
	dpmm := float64(px) / p.mm(b.Width)
	p.ctx.DrawImage(x, y, b.Image, canvas.DPMM(dpmm))
}

func unitsOf(sheet *worksheet.List) float64 {
	if sheet.UnitsPerMM <= 0 {
		return 1
	}
	return sheet.UnitsPerMM
}

func pageSize(sheet *worksheet.List) (float64, float64) {
	upm := unitsOf(sheet)
	return sheet.PageWidth / upm, sheet.PageHeight / upm
}

// stretch 字符宽高比，作用于字形的水平缩放。
func stretch(size layout.Size) float64 {
	if size.H <= 0 || size.W <= 0 {
		return 1
	}
	return size.W / size.H
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
