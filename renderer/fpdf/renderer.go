// Package fpdfrenderer plots worksheet draw lists with gofpdf's core fonts.
// It embeds no font files, which keeps the output small at the cost of
// Latin-1 only text.
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"log/slog"
	"strings"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
	"github.com/ByLCY/pagelayout/logging"
	"github.com/ByLCY/pagelayout/renderer"
	"github.com/ByLCY/pagelayout/worksheet"
)

const (
	fontFamily = "Helvetica"
	minStroke  = 0.05
)

// Renderer draws worksheet draw lists into a PDF via github.com/jung-kurt/gofpdf.
type Renderer struct {
	unitsPerMM float64
	meta       renderer.Metadata
	r, g, b    int
	log        *slog.Logger

	measureMu sync.Mutex
	measure   *gofpdf.Fpdf
}

var (
	_ renderer.Renderer      = (*Renderer)(nil)
	_ worksheet.TextMeasurer = (*Renderer)(nil)
)

// Options configures the gofpdf renderer.
type Options struct {
	UnitsPerMM float64
	Meta       renderer.Metadata
	Color      color.Color
	Logger     *slog.Logger
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{unitsPerMM: opts.UnitsPerMM, meta: opts.Meta, log: opts.Logger}
	if r.unitsPerMM <= 0 {
		r.unitsPerMM = 1
	}
	if opts.Color != nil {
		cr, cg, cb, _ := opts.Color.RGBA()
		r.r, r.g, r.b = int(cr>>8), int(cg>>8), int(cb>>8)
	}
	if r.log == nil {
		r.log = logging.WithComponent("fpdf")
	}
	return r
}

// Render writes one PDF page per sheet.
func (r *Renderer) Render(sheets []*worksheet.List) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("缺少可渲染的图纸")
	}
	for i, s := range sheets {
		if s == nil {
			return nil, fmt.Errorf("第 %d 张图纸为空", i+1)
		}
	}

	w, h := pageSize(sheets[0])
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	m := r.meta
	pdf.SetTitle(m.Title, true)
	pdf.SetSubject(m.Subject, true)
	pdf.SetAuthor(m.Author, true)
	pdf.SetCreator(m.Creator, true)
	pdf.SetKeywords(strings.Join(m.Keywords, " "), true)
	pdf.SetFont(fontFamily, "", 10)

	p := &painter{
		r:      r,
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: map[string]bool{},
	}
	for _, sheet := range sheets {
		w, h := pageSize(sheet)
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})
		p.upm = unitsOf(sheet)
		sheet.Draw(p)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("绘制第 %d 张图纸失败: %w", sheet.SheetIndex, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LineWidth 实现 worksheet.TextMeasurer，使用核心字体的字宽表。
func (r *Renderer) LineWidth(line string, size layout.Size, bold, italic bool) float64 {
	if line == "" || size.H <= 0 {
		return 0
	}
	r.measureMu.Lock()
	defer r.measureMu.Unlock()
	if r.measure == nil {
		r.measure = gofpdf.New("L", "mm", "A4", "")
	}
	r.measure.SetFont(fontFamily, fontStyle(bold, italic), toPt(size.H/r.unitsPerMM))
	tr := r.measure.UnicodeTranslatorFromDescriptor("")
	return r.measure.GetStringWidth(tr(line)) * r.unitsPerMM * stretch(size)
}

type painter struct {
	r      *Renderer
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	upm    float64
	images map[string]bool
}

func (p *painter) mm(v float64) float64 { return v / p.upm }

func (p *painter) xy(v geom.Point) (float64, float64) { return v.X / p.upm, v.Y / p.upm }

func (p *painter) stroke(width float64) {
	w := p.mm(width)
	if w <= 0 {
		w = minStroke
	}
	p.pdf.SetDrawColor(p.r.r, p.r.g, p.r.b)
	p.pdf.SetLineWidth(w)
}

func (p *painter) Line(s *worksheet.Segment) {
	p.stroke(s.PenWidth())
	x1, y1 := p.xy(s.Start)
	x2, y2 := p.xy(s.End)
	p.pdf.Line(x1, y1, x2, y2)
}

func (p *painter) Rect(rc *worksheet.Rect) {
	box := rc.BoundingBox()
	p.stroke(rc.PenWidth())
	x, y := p.xy(box.Min)
	p.pdf.Rect(x, y, p.mm(box.Width()), p.mm(box.Height()), "D")
}

func (p *painter) Polygon(pg *worksheet.Polygon) {
	p.stroke(pg.PenWidth())
	style := "D"
	if pg.Filled {
		p.pdf.SetFillColor(p.r.r, p.r.g, p.r.b)
		style = "FD"
	}
	for _, outline := range pg.Outlines {
		if len(outline) < 3 {
			continue
		}
		pts := make([]gofpdf.PointType, len(outline))
		for i, pt := range outline {
			pts[i].X, pts[i].Y = p.xy(pt)
		}
		p.pdf.Polygon(pts, style)
	}
}

// Text 与 canvas 后端相同：按行定位基线，再以 Pos 为中心旋转、以基线起点为中心横向缩放。
func (p *painter) Text(t *worksheet.Text) {
	if strings.TrimSpace(t.Text) == "" {
		return
	}
	p.pdf.SetTextColor(p.r.r, p.r.g, p.r.b)
	p.pdf.SetFont(fontFamily, fontStyle(t.Bold, t.Italic), toPt(p.mm(t.Size.H)))
	box := t.TextBox()
	sx := stretch(t.Size)
	px, py := p.xy(t.Pos)

	p.pdf.TransformBegin()
	if t.Orientation != 0 {
		p.pdf.TransformRotate(t.Orientation, px, py)
	}
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
		bx, by := p.xy(geom.Pt(x, box.Min.Y+float64(i)*t.LinePitch()+t.Size.H))
		p.pdf.TransformBegin()
		if sx != 1 {
			p.pdf.TransformScale(sx*100, 100, bx, by)
		}
		p.pdf.Text(bx, by, p.tr(line))
		p.pdf.TransformEnd()
	}
	p.pdf.TransformEnd()
}

func (p *painter) Bitmap(b *worksheet.Bitmap) {
	if b.Image == nil || b.Width <= 0 || b.Height <= 0 {
		return
	}
	name := b.Peer().String()
	if !p.images[name] {
		var buf bytes.Buffer
		if err := png.Encode(&buf, b.Image); err != nil {
			p.r.log.Warn("位图编码失败，已跳过", "peer", name, "err", err)
			return
		}
		p.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
		p.images[name] = true
	}
	box := b.BoundingBox()
	x, y := p.xy(box.Min)
	p.pdf.ImageOptions(name, x, y, p.mm(b.Width), p.mm(b.Height), false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func fontStyle(bold, italic bool) string {
	s := ""
	if bold {
		s += "B"
	}
	if italic {
		s += "I"
	}
	return s
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

func stretch(size layout.Size) float64 {
	if size.H <= 0 || size.W <= 0 {
		return 1
	}
	return size.W / size.H
}

func toPt(mm float64) float64 { return mm * layout.MmToPt }
