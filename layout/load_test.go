package layout

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ByLCY/pagelayout/geom"
)

func quietOptions(buf *bytes.Buffer) ParseOptions {
	var w io.Writer = io.Discard
	if buf != nil {
		w = buf
	}
	return ParseOptions{Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestParseItems(t *testing.T) {
	src := `(page_layout
  (setup (textsize 2 2.5) (linewidth 0.2) (left_margin 5) (bogus 1))
  (line (name "l1") (start 10 20 ltcorner) (end 30 40) (option page1only) (repeat 0) (incrx 5) (incry -1))
  (tbtext "Sheet %S" (pos 1 2 rtcorner) (font (size 3 4) bold (linewidth 0.3)) (justify right bottom)
    (rotate 90) (maxlen 50) (incrlabel 2) (comment "note") (unknown_attr 1))
  (polygon (pos 5 5 lbcorner) (rotate 45) (fill no) (pts (xy 0 0) (xy 1 0) (xy 1 1)))
)`
	var logs bytes.Buffer
	m, err := ParseString(src, quietOptions(&logs))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.Setup.TextSize != (Size{W: 2, H: 2.5}) || m.Setup.LineWidth != 0.2 || m.Setup.Margins.Left != 5 {
		t.Fatalf("setup not applied: %+v", m.Setup)
	}
	if m.Setup.TextLineWidth != DefaultTextLineWidth || m.Setup.Margins.Right != DefaultMargin {
		t.Fatalf("setup defaults lost: %+v", m.Setup)
	}
	items := m.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	line := items[0]
	if line.Type != TypeSegment || line.Name != "l1" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Start != At(10, 20, LeftTop) || line.End != At(30, 40, RightBottom) {
		t.Fatalf("anchors: %+v %+v", line.Start, line.End)
	}
	if line.Page != FirstPageOnly || line.RepeatCount != 1 || line.Increment != geom.Pt(5, -1) {
		t.Fatalf("common attrs: %+v", line)
	}
	if line.IncrementLabel != 1 {
		t.Fatalf("default label increment should be 1, got %d", line.IncrementLabel)
	}

	text := items[1]
	ts := text.Text
	if ts == nil || ts.Template != "Sheet %S" {
		t.Fatalf("text payload: %+v", ts)
	}
	if ts.Size != (Size{W: 3, H: 4}) || !ts.Bold || ts.Italic || ts.PenWidth != 0.3 {
		t.Fatalf("font: %+v", ts)
	}
	if ts.HAlign != AlignRight || ts.VAlign != AlignBottom || ts.Orientation != 90 || ts.MaxLength != 50 {
		t.Fatalf("layout attrs: %+v", ts)
	}
	if text.IncrementLabel != 2 || text.Comment != "note" || text.Start.Corner != RightTop {
		t.Fatalf("text common attrs: %+v", text)
	}

	poly := items[2].Polygon
	if poly == nil || poly.Filled || poly.Orientation != 45 || len(poly.Outlines) != 1 || len(poly.Outlines[0]) != 3 {
		t.Fatalf("polygon payload: %+v", poly)
	}
	if !strings.Contains(logs.String(), "unknown_attr") {
		t.Fatalf("unknown attribute should be logged at debug level: %s", logs.String())
	}
}

func TestParseRejectsUnknownItemType(t *testing.T) {
	_, err := ParseString(`(page_layout (circle (pos 1 1)))`, quietOptions(nil))
	if !errors.Is(err, ErrUnknownItemType) {
		t.Fatalf("expected ErrUnknownItemType, got %v", err)
	}
	if !strings.Contains(err.Error(), "circle") || !strings.Contains(err.Error(), "1:") {
		t.Fatalf("error should name the item and its position: %v", err)
	}
}

func TestParseRejectsInvalidCorner(t *testing.T) {
	_, err := ParseString(`(page_layout (line (start 1 1 middle) (end 2 2)))`, quietOptions(nil))
	if !errors.Is(err, ErrInvalidCorner) {
		t.Fatalf("expected ErrInvalidCorner, got %v", err)
	}
}

func TestInvalidCornerFailsAfterOtherBadAttribute(t *testing.T) {
	srcs := []string{
		`(page_layout (line (linewidth) (start 1 2 zzcorner) (end 3 4)))`,
		`(page_layout (rect (start 1 2) (repeat x) (end 3 4 zzcorner)))`,
		`(page_layout (tbtext (pos 1 2 zzcorner)))`,
	}
	for _, src := range srcs {
		if _, err := ParseString(src, quietOptions(nil)); !errors.Is(err, ErrInvalidCorner) {
			t.Fatalf("%s: expected ErrInvalidCorner, got %v", src, err)
		}
	}
}

func TestParseClampsRepeat(t *testing.T) {
	var logs bytes.Buffer
	m, err := ParseString(`(page_layout (line (start 0 0) (end 1 0) (repeat 1e12)) (line (start 0 0) (end 1 0) (repeat 1e300)))`, quietOptions(&logs))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Count() != 1 {
		t.Fatalf("out of range repeat should skip the item, got %d items", m.Count())
	}
	if got := m.Items()[0].RepeatCount; got != MaxRepeatCount {
		t.Fatalf("repeat = %d, want %d", got, MaxRepeatCount)
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Fatalf("clamping should be logged:\n%s", logs.String())
	}
}

func TestFormatRejectsItemWithoutContent(t *testing.T) {
	for _, typ := range []ItemType{TypeText, TypePolygon, TypeBitmap} {
		m := NewModel()
		m.Append(&Item{Type: typ, RepeatCount: 1})
		if _, err := Format(m); !errors.Is(err, ErrMissingPayload) {
			t.Fatalf("%s: expected ErrMissingPayload, got %v", typ, err)
		}
	}
	m := NewModel()
	m.Append(&Item{Type: TypeSegment})
	if _, err := Format(m); err != nil {
		t.Fatalf("segment needs no payload: %v", err)
	}
}

func TestParseRejectsOtherRoot(t *testing.T) {
	if _, err := ParseString(`(schematic)`, quietOptions(nil)); !errors.Is(err, ErrNotPageLayout) {
		t.Fatalf("expected ErrNotPageLayout, got %v", err)
	}
	if _, err := ParseString(`(page_layout`, quietOptions(nil)); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestParseSkipsMalformedItems(t *testing.T) {
	src := `(page_layout
  (line (start 1 1))
  (tbtext (pos 1 1))
  (rect (start a 1) (end 2 2))
  (polygon (pos 0 0) (pts (xy 0 0) (xy 1 1)))
  (rect (start 1 1) (end 2 2))
)`
	var logs bytes.Buffer
	m, err := ParseString(src, quietOptions(&logs))
	if err != nil {
		t.Fatalf("malformed items must not be fatal: %v", err)
	}
	if m.Count() != 1 || m.Items()[0].Type != TypeRect {
		t.Fatalf("expected only the valid rect, got %d items", m.Count())
	}
	if got := strings.Count(logs.String(), "level=WARN"); got != 4 {
		t.Fatalf("expected 4 warnings, got %d:\n%s", got, logs.String())
	}
}

func TestBitmapFromFileAndPNGData(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), testPNG(t, 30, 60), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	src := `(page_layout
  (bitmap (pos 10 10) (scale 2) (ppi 150) (file "logo.png"))
  (bitmap (pos 10 10) (file "missing.png"))
  (bitmap (pos 10 10) (pngdata (data ZZ)))
)`
	opts := quietOptions(nil)
	opts.BaseDir = dir
	m, err := ParseString(src, opts)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if m.Count() != 3 {
		t.Fatalf("bitmaps with unreadable data must be kept, got %d", m.Count())
	}
	bs := m.Items()[0].Bitmap
	if bs.Image == nil || bs.Scale != 2 || bs.PPI != 150 {
		t.Fatalf("bitmap not loaded: %+v", bs)
	}
	w, h := bs.SizeMM()
	if math.Abs(w-10.16) > 1e-9 || math.Abs(h-20.32) > 1e-9 {
		t.Fatalf("SizeMM = %g x %g", w, h)
	}
	for _, it := range m.Items()[1:] {
		if it.Bitmap.Image != nil {
			t.Fatalf("broken bitmap should have a nil image")
		}
	}
}

// stripIDs 清除 ID 与解码后的图像，便于比较往返前后的模型。
func stripIDs(items []*Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		c := *it
		c.ID = uuid.Nil
		if c.Bitmap != nil {
			b := *c.Bitmap
			b.Image = nil
			c.Bitmap = &b
		}
		out[i] = c
	}
	return out
}

func TestFormatRoundTrip(t *testing.T) {
	m := DefaultLayout()
	tx := NewText(At(12.345, 0.1, LeftBottom), `Line one\nLine "two"`)
	tx.Text.Size = Size{W: 1.7, H: 1.9}
	tx.Text.HAlign = AlignCenter
	tx.Text.VAlign = AlignTop
	tx.Text.Italic = true
	tx.Text.Orientation = 30
	tx.Text.MaxHeight = 4
	tx.RepeatCount = 3
	tx.Increment = geom.Pt(0, 3.3)
	tx.IncrementLabel = 0
	tx.Page = SubsequentPagesOnly
	m.Append(tx)
	m.Append(NewPolygon(At(1, 2, RightTop),
		[]geom.Point{{X: 0, Y: 0}, {X: 1.5, Y: 0}, {X: 0.75, Y: 1}},
		[]geom.Point{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 2, Y: 3}}))

	img, err := DecodeImage(testPNG(t, 4, 4))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	bm := NewBitmap(At(50, 50, LeftTop), img)
	bm.Bitmap.Scale = 0.5
	m.Append(bm)

	text, err := Format(m)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	back, err := ParseString(text, quietOptions(nil))
	if err != nil {
		t.Fatalf("reparse failed: %v\n%s", err, text)
	}
	if !reflect.DeepEqual(m.Setup, back.Setup) {
		t.Fatalf("setup differs: %+v vs %+v", m.Setup, back.Setup)
	}
	want, got := stripIDs(m.Items()), stripIDs(back.Items())
	// 原模型中的位图没有保留原始字节，写出时重新编码。
	want[len(want)-1].Bitmap.Data = got[len(got)-1].Bitmap.Data
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	if back.Items()[len(got)-1].Bitmap.Image == nil {
		t.Fatalf("inline bitmap should decode after round trip")
	}
}
