package layout

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/pagelayout/dsl"
	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/logging"
)

// 解析阶段直接拒绝的错误类别，其余格式问题只会跳过对应条目。
var (
	ErrNotPageLayout   = errors.New("not a page layout description")
	ErrUnknownItemType = errors.New("unknown layout item type")
	ErrInvalidCorner   = errors.New("invalid anchor corner")
	ErrMissingPayload  = errors.New("layout item has no content")
)

// ParseOptions 控制描述文件的读取。
type ParseOptions struct {
	BaseDir string       // 位图 file 引用的相对路径基准
	Logger  *slog.Logger // 为空时使用 logging.WithComponent("layout")
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.WithComponent("layout")
}

// Parse reads a layout description.
func Parse(r io.Reader, opts ParseOptions) (*Model, error) {
	doc, err := dsl.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析布局描述失败: %w", err)
	}
	return Load(doc, opts)
}

// ParseString reads a layout description from a string.
func ParseString(input string, opts ParseOptions) (*Model, error) {
	doc, err := dsl.ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("解析布局描述失败: %w", err)
	}
	return Load(doc, opts)
}

// LoadFile reads a layout description file. An empty BaseDir defaults to the
// file's directory.
func LoadFile(path string, opts ParseOptions) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取布局文件失败: %w", err)
	}
	defer f.Close()
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	doc, err := dsl.ParseFile(path, f)
	if err != nil {
		return nil, fmt.Errorf("解析布局描述失败: %w", err)
	}
	return Load(doc, opts)
}

// Load converts a parsed document into a Model.
func Load(doc *dsl.Document, opts ParseOptions) (*Model, error) {
	if doc == nil || doc.Root == nil {
		return nil, ErrNotPageLayout
	}
	root := doc.Root
	if root.Head != "page_layout" && root.Head != "kicad_wks" {
		return nil, fmt.Errorf("%s: %w: (%s ...)", root.Pos, ErrNotPageLayout, root.Head)
	}
	l := &loader{opts: opts, log: opts.logger()}
	m := NewModel()
	for _, node := range root.Items {
		if node.List == nil {
			l.log.Debug("忽略顶层原子", "pos", node.Pos.String())
			continue
		}
		list := node.List
		switch list.Head {
		case "setup":
			l.setup(list, &m.Setup)
			continue
		case "version", "generator", "generator_version":
			continue
		}
		t, ok := itemTypeFromKeyword(list.Head)
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", list.Pos, ErrUnknownItemType, list.Head)
		}
		it, err := l.item(t, list)
		if err != nil {
			if errors.Is(err, ErrInvalidCorner) {
				return nil, fmt.Errorf("%s: %w", list.Pos, err)
			}
			l.log.Warn("跳过无效的布局条目", "item", list.Head, "pos", list.Pos.String(), "err", err)
			continue
		}
		m.Append(it)
	}
	return m, nil
}

type loader struct {
	opts ParseOptions
	log  *slog.Logger
}

func (l *loader) setup(list *dsl.List, s *Setup) {
	for _, attr := range list.Lists("") {
		var err error
		switch attr.Head {
		case "textsize":
			var v []float64
			if v, err = attr.Floats(2); err == nil {
				s.TextSize = Size{W: v[0], H: v[1]}
			}
		case "linewidth":
			err = setNumber(attr, &s.LineWidth)
		case "textlinewidth":
			err = setNumber(attr, &s.TextLineWidth)
		case "left_margin":
			err = setNumber(attr, &s.Margins.Left)
		case "right_margin":
			err = setNumber(attr, &s.Margins.Right)
		case "top_margin":
			err = setNumber(attr, &s.Margins.Top)
		case "bottom_margin":
			err = setNumber(attr, &s.Margins.Bottom)
		default:
			l.log.Debug("忽略未知的 setup 属性", "attr", attr.Head, "pos", attr.Pos.String())
		}
		if err != nil {
			l.log.Warn("setup 属性无效，保留缺省值", "attr", attr.Head, "err", err)
		}
	}
}

func (l *loader) item(t ItemType, list *dsl.List) (*Item, error) {
	// 角点错误优先于其它属性错误，保证整体载入失败
	if err := checkCorners(list); err != nil {
		return nil, err
	}
	it := newItem(t)
	switch t {
	case TypeText:
		values := list.Values()
		if len(values) == 0 {
			return nil, fmt.Errorf("缺少文本内容")
		}
		tpl, _ := values[0].Text()
		it.Text = &TextSpec{Template: tpl}
	case TypePolygon:
		it.Polygon = &PolygonSpec{Filled: true}
	case TypeBitmap:
		it.Bitmap = &BitmapSpec{PPI: DefaultBitmapPPI, Scale: 1}
	}

	var hasStart, hasEnd bool
	var pngHex strings.Builder
	for _, attr := range list.Lists("") {
		var err error
		switch attr.Head {
		case "name":
			it.Name, err = text(attr)
		case "start", "pos":
			it.Start, err = anchor(attr)
			hasStart = true
		case "end":
			it.End, err = anchor(attr)
			hasEnd = true
		case "option":
			for _, v := range attr.Values() {
				switch s, _ := v.Text(); s {
				case "page1only":
					it.Page = FirstPageOnly
				case "notonpage1":
					it.Page = SubsequentPagesOnly
				default:
					l.log.Debug("忽略未知的页面选项", "option", s, "pos", v.Pos.String())
				}
			}
		case "linewidth":
			err = setNumber(attr, &it.LineWidth)
		case "repeat":
			if err = setInt(attr, &it.RepeatCount); err == nil && it.RepeatCount > MaxRepeatCount {
				l.log.Warn("重复次数过大，已截断", "item", list.Head, "repeat", it.RepeatCount, "max", MaxRepeatCount)
				it.RepeatCount = MaxRepeatCount
			}
		case "incrx":
			err = setNumber(attr, &it.Increment.X)
		case "incry":
			err = setNumber(attr, &it.Increment.Y)
		case "incrlabel":
			err = setInt(attr, &it.IncrementLabel)
		case "comment":
			it.Comment, err = text(attr)
		case "pngdata":
			if t == TypeBitmap {
				for _, data := range attr.Lists("data") {
					for _, v := range data.Values() {
						s, _ := v.Text()
						pngHex.WriteString(s)
					}
				}
				break
			}
			l.log.Debug("忽略未知属性", "item", list.Head, "attr", attr.Head, "pos", attr.Pos.String())
		default:
			var handled bool
			handled, err = l.variant(it, attr)
			if !handled {
				l.log.Debug("忽略未知属性", "item", list.Head, "attr", attr.Head, "pos", attr.Pos.String())
			}
		}
		if err != nil {
			return nil, err
		}
	}

	if !hasStart {
		return nil, fmt.Errorf("缺少起点坐标")
	}
	if (t == TypeSegment || t == TypeRect) && !hasEnd {
		return nil, fmt.Errorf("缺少终点坐标")
	}
	if t == TypePolygon && len(it.Polygon.Outlines) == 0 {
		return nil, fmt.Errorf("多边形没有轮廓")
	}
	if t == TypeBitmap {
		l.loadBitmap(it.Bitmap, pngHex.String())
	}
	return it, nil
}

// variant 处理各类型专属的属性，返回是否识别了该属性。
func (l *loader) variant(it *Item, attr *dsl.List) (bool, error) {
	switch it.Type {
	case TypeText:
		ts := it.Text
		switch attr.Head {
		case "font":
			return true, l.font(ts, attr)
		case "justify":
			for _, v := range attr.Values() {
				switch s, _ := v.Text(); s {
				case "left":
					ts.HAlign = AlignLeft
				case "center":
					ts.HAlign = AlignCenter
				case "right":
					ts.HAlign = AlignRight
				case "top":
					ts.VAlign = AlignTop
				case "bottom":
					ts.VAlign = AlignBottom
				default:
					l.log.Debug("忽略未知的对齐方式", "justify", s)
				}
			}
			return true, nil
		case "rotate":
			return true, setNumber(attr, &ts.Orientation)
		case "maxlen":
			return true, setNumber(attr, &ts.MaxLength)
		case "maxheight":
			return true, setNumber(attr, &ts.MaxHeight)
		}
	case TypePolygon:
		ps := it.Polygon
		switch attr.Head {
		case "rotate":
			return true, setNumber(attr, &ps.Orientation)
		case "fill":
			s, err := text(attr)
			ps.Filled = s != "no" && s != "false"
			return true, err
		case "pts":
			var outline []geom.Point
			for _, xy := range attr.Lists("xy") {
				v, err := xy.Floats(2)
				if err != nil {
					return true, err
				}
				outline = append(outline, geom.Pt(v[0], v[1]))
			}
			if len(outline) < 3 {
				return true, fmt.Errorf("%s: 多边形轮廓至少需要 3 个点，实际 %d 个", attr.Pos, len(outline))
			}
			ps.Outlines = append(ps.Outlines, outline)
			return true, nil
		}
	case TypeBitmap:
		bs := it.Bitmap
		switch attr.Head {
		case "scale":
			return true, setNumber(attr, &bs.Scale)
		case "ppi":
			return true, setNumber(attr, &bs.PPI)
		case "file":
			s, err := text(attr)
			bs.Source = s
			return true, err
		}
	}
	return false, nil
}

func (l *loader) font(ts *TextSpec, attr *dsl.List) error {
	for _, node := range attr.Items {
		if node.List == nil {
			switch s, _ := node.Text(); s {
			case "bold":
				ts.Bold = true
			case "italic":
				ts.Italic = true
			default:
				l.log.Debug("忽略未知的字体标志", "flag", s)
			}
			continue
		}
		switch node.List.Head {
		case "size":
			v, err := node.List.Floats(2)
			if err != nil {
				return err
			}
			ts.Size = Size{W: v[0], H: v[1]}
		case "linewidth":
			if err := setNumber(node.List, &ts.PenWidth); err != nil {
				return err
			}
		default:
			l.log.Debug("忽略未知的字体属性", "attr", node.List.Head)
		}
	}
	return nil
}

func (l *loader) loadBitmap(bs *BitmapSpec, pngHex string) {
	if bs.PPI <= 0 {
		bs.PPI = DefaultBitmapPPI
	}
	if bs.Scale <= 0 {
		bs.Scale = 1
	}
	var err error
	switch {
	case bs.Source != "":
		path := bs.Source
		if !filepath.IsAbs(path) && l.opts.BaseDir != "" {
			path = filepath.Join(l.opts.BaseDir, path)
		}
		bs.Data, err = os.ReadFile(path)
	case pngHex != "":
		bs.Data, err = decodeHex(pngHex)
	default:
		err = fmt.Errorf("位图缺少 file 或 pngdata")
	}
	if err == nil {
		bs.Image, err = DecodeImage(bs.Data)
	}
	if err != nil {
		l.log.Warn("位图无法加载，将不会绘制", "source", bs.Source, "err", err)
		bs.Image = nil
	}
}

func text(attr *dsl.List) (string, error) {
	values := attr.Values()
	if len(values) == 0 {
		return "", fmt.Errorf("%s: (%s) 缺少取值", attr.Pos, attr.Head)
	}
	s, _ := values[0].Text()
	return s, nil
}

func setNumber(attr *dsl.List, dst *float64) error {
	v, err := attr.Floats(1)
	if err != nil {
		return err
	}
	*dst = v[0]
	return nil
}

func setInt(attr *dsl.List, dst *int) error {
	v, err := attr.Floats(1)
	if err != nil {
		return err
	}
	n := math.Round(v[0])
	if math.IsNaN(n) || math.Abs(n) > math.MaxInt32 {
		return fmt.Errorf("(%s) 整数超出范围: %g", attr.Head, v[0])
	}
	*dst = int(n)
	return nil
}

func checkCorners(list *dsl.List) error {
	for _, attr := range list.Lists("") {
		switch attr.Head {
		case "start", "end", "pos":
		default:
			continue
		}
		if values := attr.Values(); len(values) > 2 {
			s, _ := values[2].Text()
			if _, err := ParseCorner(s); err != nil {
				return fmt.Errorf("%s: %w", values[2].Pos, err)
			}
		}
	}
	return nil
}

func anchor(attr *dsl.List) (Anchor, error) {
	v, err := attr.Floats(2)
	if err != nil {
		return Anchor{}, err
	}
	a := Anchor{Corner: RightBottom, Offset: geom.Pt(v[0], v[1])}
	if values := attr.Values(); len(values) > 2 {
		s, _ := values[2].Text()
		c, err := ParseCorner(s)
		if err != nil {
			return Anchor{}, fmt.Errorf("%s: %w", values[2].Pos, err)
		}
		a.Corner = c
	}
	return a, nil
}
