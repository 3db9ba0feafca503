// Package worksheet expands a layout model into the draw list of one sheet:
// resolved, page-space shapes that renderers draw and selection tools hit-test.
package worksheet

import (
	"log/slog"

	"golang.org/x/text/width"

	"github.com/ByLCY/pagelayout/layout"
	"github.com/ByLCY/pagelayout/logging"
)

// LineSpacing 多行文本的行距系数（相对字符高度）。
const LineSpacing = 1.6

// TitleBlock 标题栏文本。Comments 最多使用 9 条。
type TitleBlock struct {
	Title    string   `json:"title" yaml:"title"`
	Date     string   `json:"date" yaml:"date"`
	Revision string   `json:"revision" yaml:"revision"`
	Company  string   `json:"company" yaml:"company"`
	Comments []string `json:"comments" yaml:"comments"`
}

// Context 是构建一张图纸所需的外部输入。
type Context struct {
	Page       layout.PageInfo
	TitleBlock TitleBlock
	SheetIndex int     // 从 1 开始
	SheetCount int
	UnitsPerMM float64 // 每毫米的绘图单位数

	FileName   string
	SheetPath  string
	LayerName  string
	AppVersion string
	Vars       map[string]any
}

func (c Context) normalized() Context {
	if c.SheetIndex < 1 {
		c.SheetIndex = 1
	}
	if c.SheetCount < c.SheetIndex {
		c.SheetCount = c.SheetIndex
	}
	if c.UnitsPerMM <= 0 {
		c.UnitsPerMM = 1
	}
	return c
}

// TextMeasurer 测量单行文本的宽度，结果与 size 使用同一单位。
type TextMeasurer interface {
	LineWidth(line string, size layout.Size, bold, italic bool) float64
}

// BuildOptions 配置绘制列表的构建。
type BuildOptions struct {
	Measurer         TextMeasurer // 为空时使用 EstimateMeasurer
	ClipRepeats      bool         // 跳过落在可绘制区域外的重复副本（k ≥ 1）
	CommentSeparator string       // %C* 与 ${COMMENTS} 的连接符，缺省为单个空格
	Logger           *slog.Logger
}

func (o BuildOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.WithComponent("worksheet")
}

func (o BuildOptions) measurer() TextMeasurer {
	if o.Measurer != nil {
		return o.Measurer
	}
	return EstimateMeasurer{}
}

// EstimateMeasurer 以固定字距估算文本宽度，东亚宽字符与全角字符按两格计算。
type EstimateMeasurer struct {
	Pitch float64 // 单格字宽相对字符宽度的系数，0 表示 1
}

// LineWidth implements TextMeasurer.
func (m EstimateMeasurer) LineWidth(line string, size layout.Size, bold, _ bool) float64 {
	pitch := m.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	cells := 0
	for _, r := range line {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			cells += 2
		default:
			cells++
		}
	}
	w := float64(cells) * size.W * pitch
	if bold && cells > 0 {
		w += size.W / 8
	}
	return w
}
