package layout

// 该文件定义页面布局模型的条目、锚点与页面选项，供加载、保存与绘制列表构建共用。

import (
	"fmt"
	"image"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/pagelayout/geom"
)

// ItemType 区分五种布局条目。
type ItemType int

const (
	TypeSegment ItemType = iota
	TypeRect
	TypeText
	TypePolygon
	TypeBitmap
)

// Keyword returns the token used for the item in a layout description.
func (t ItemType) Keyword() string {
	switch t {
	case TypeSegment:
		return "line"
	case TypeRect:
		return "rect"
	case TypeText:
		return "tbtext"
	case TypePolygon:
		return "polygon"
	case TypeBitmap:
		return "bitmap"
	default:
		return ""
	}
}

// String returns the display name shown by inspectors.
func (t ItemType) String() string {
	switch t {
	case TypeSegment:
		return "Line"
	case TypeRect:
		return "Rectangle"
	case TypeText:
		return "Text"
	case TypePolygon:
		return "Imported Shape"
	case TypeBitmap:
		return "Image"
	default:
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
}

func itemTypeFromKeyword(s string) (ItemType, bool) {
	switch s {
	case "line":
		return TypeSegment, true
	case "rect":
		return TypeRect, true
	case "tbtext":
		return TypeText, true
	case "polygon":
		return TypePolygon, true
	case "bitmap":
		return TypeBitmap, true
	}
	return 0, false
}

// Corner 锚点所参照的页面角。零值为右下角（rbcorner），与描述文件缺省一致。
type Corner int

const (
	RightBottom Corner = iota
	RightTop
	LeftBottom
	LeftTop
)

func (c Corner) String() string {
	switch c {
	case RightBottom:
		return "rbcorner"
	case RightTop:
		return "rtcorner"
	case LeftBottom:
		return "lbcorner"
	case LeftTop:
		return "ltcorner"
	default:
		return fmt.Sprintf("Corner(%d)", int(c))
	}
}

// ParseCorner parses one of ltcorner, rtcorner, lbcorner or rbcorner.
func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(s) {
	case "rbcorner":
		return RightBottom, nil
	case "rtcorner":
		return RightTop, nil
	case "lbcorner":
		return LeftBottom, nil
	case "ltcorner":
		return LeftTop, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCorner, s)
}

// IsLeft reports whether offsets from this corner grow to the right.
func (c Corner) IsLeft() bool { return c == LeftTop || c == LeftBottom }

// IsTop reports whether offsets from this corner grow downwards.
func (c Corner) IsTop() bool { return c == LeftTop || c == RightTop }

// Anchor 以毫米记录相对某个页面角的偏移，偏移总是朝页面内部为正。
type Anchor struct {
	Corner Corner     `json:"corner"`
	Offset geom.Point `json:"offset"`
}

// At is a shorthand for an anchor at (x, y) from corner c.
func At(x, y float64, c Corner) Anchor { return Anchor{Corner: c, Offset: geom.Pt(x, y)} }

// PageOption 控制条目在哪些页面上出现。
type PageOption int

const (
	AllPages PageOption = iota
	FirstPageOnly
	SubsequentPagesOnly
)

// VisibleOn reports whether an item with this option is drawn on the 1-based sheet.
func (o PageOption) VisibleOn(sheetIndex int) bool {
	switch o {
	case FirstPageOnly:
		return sheetIndex == 1
	case SubsequentPagesOnly:
		return sheetIndex != 1
	default:
		return true
	}
}

func (o PageOption) String() string {
	switch o {
	case FirstPageOnly:
		return "First Page Only"
	case SubsequentPagesOnly:
		return "Subsequent Pages"
	default:
		return "All Pages"
	}
}

func (o PageOption) keyword() string {
	switch o {
	case FirstPageOnly:
		return "page1only"
	case SubsequentPagesOnly:
		return "notonpage1"
	default:
		return ""
	}
}

// HAlign 水平对齐，零值为左对齐。
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign 垂直对齐，零值为居中。
type VAlign int

const (
	AlignMiddle VAlign = iota
	AlignTop
	AlignBottom
)

// Size 字符宽高（mm）。
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// IsZero reports whether both dimensions are unset.
func (s Size) IsZero() bool { return s.W == 0 && s.H == 0 }

// TextSpec 文本条目的专属字段。Template 可能包含 %X / ${VAR} 标记以及字面量 \n。
type TextSpec struct {
	Template    string  `json:"template"`
	Size        Size    `json:"size"`        // 为零时使用 Setup.TextSize
	Orientation float64 `json:"orientation"` // 逆时针角度
	HAlign      HAlign  `json:"hAlign"`
	VAlign      VAlign  `json:"vAlign"`
	Bold        bool    `json:"bold"`
	Italic      bool    `json:"italic"`
	PenWidth    float64 `json:"penWidth"`  // 为零时使用 Setup.TextLineWidth
	MaxLength   float64 `json:"maxLength"` // mm，0 表示不限制
	MaxHeight   float64 `json:"maxHeight"`
}

// PolygonSpec 多边形条目：若干闭合轮廓，坐标相对起点锚点（mm）。
type PolygonSpec struct {
	Outlines    [][]geom.Point `json:"outlines"`
	Orientation float64        `json:"orientation"`
	Filled      bool           `json:"filled"`
}

// BitmapSpec 位图条目。Image 为解码后的共享只读资源，缺失时为 nil。
type BitmapSpec struct {
	Image  image.Image `json:"-"`
	PPI    float64     `json:"ppi"`
	Scale  float64     `json:"scale"`
	Source string      `json:"source,omitempty"` // 描述文件中的 file 引用
	Data   []byte      `json:"-"`                // 原始编码字节，无 Source 时以 pngdata 写回
}

// PixelSize returns the image size in pixels, or zero when no image is loaded.
func (b *BitmapSpec) PixelSize() (int, int) {
	if b == nil || b.Image == nil {
		return 0, 0
	}
	r := b.Image.Bounds()
	return r.Dx(), r.Dy()
}

// Item 是一个声明式的布局条目。Start 用于所有类型，End 仅用于线段与矩形。
type Item struct {
	ID             uuid.UUID  `json:"id"`
	Type           ItemType   `json:"type"`
	Name           string     `json:"name,omitempty"`
	Start          Anchor     `json:"start"`
	End            Anchor     `json:"end"`
	Page           PageOption `json:"page"`
	LineWidth      float64    `json:"lineWidth"` // 为零时使用 Setup.LineWidth
	RepeatCount    int        `json:"repeatCount"`
	Increment      geom.Point `json:"increment"`
	IncrementLabel int        `json:"incrementLabel"`
	Comment        string     `json:"comment,omitempty"`

	Text    *TextSpec    `json:"text,omitempty"`
	Polygon *PolygonSpec `json:"polygon,omitempty"`
	Bitmap  *BitmapSpec  `json:"bitmap,omitempty"`
}

func newItem(t ItemType) *Item {
	return &Item{ID: uuid.New(), Type: t, RepeatCount: 1, IncrementLabel: 1}
}

// NewSegment creates a line from start to end.
func NewSegment(start, end Anchor) *Item {
	it := newItem(TypeSegment)
	it.Start, it.End = start, end
	return it
}

// NewRect creates a rectangle outline spanning start and end.
func NewRect(start, end Anchor) *Item {
	it := newItem(TypeRect)
	it.Start, it.End = start, end
	return it
}

// NewText creates a text item at pos with the given template.
func NewText(pos Anchor, template string) *Item {
	it := newItem(TypeText)
	it.Start = pos
	it.Text = &TextSpec{Template: template}
	return it
}

// NewPolygon creates a filled polygon item anchored at pos.
func NewPolygon(pos Anchor, outlines ...[]geom.Point) *Item {
	it := newItem(TypePolygon)
	it.Start = pos
	it.Polygon = &PolygonSpec{Outlines: outlines, Filled: true}
	return it
}

// NewBitmap creates a bitmap item centered on pos. img may be nil.
func NewBitmap(pos Anchor, img image.Image) *Item {
	it := newItem(TypeBitmap)
	it.Start = pos
	it.Bitmap = &BitmapSpec{Image: img, PPI: DefaultBitmapPPI, Scale: 1}
	return it
}

// Setup 对应描述文件中的 setup 块。
type Setup struct {
	TextSize      Size    `json:"textSize"`
	LineWidth     float64 `json:"lineWidth"`
	TextLineWidth float64 `json:"textLineWidth"`
	Margins       Margin  `json:"margins"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// 缺省值与 setup 块缺省一致。
const (
	DefaultTextSize      = 1.5
	DefaultLineWidth     = 0.15
	DefaultTextLineWidth = 0.15
	DefaultMargin        = 10.0
	DefaultBitmapPPI     = 300.0

	MaxRepeatCount = 1000 // 单个条目最多展开的次数
)

// DefaultSetup returns the setup used when a description omits the block.
func DefaultSetup() Setup {
	return Setup{
		TextSize:      Size{W: DefaultTextSize, H: DefaultTextSize},
		LineWidth:     DefaultLineWidth,
		TextLineWidth: DefaultTextLineWidth,
		Margins:       Margin{Top: DefaultMargin, Right: DefaultMargin, Bottom: DefaultMargin, Left: DefaultMargin},
	}
}
