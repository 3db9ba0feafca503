package worksheet

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
)

//go:embed debug.schema.json
var debugSchema []byte

type debugDump struct {
	Sheets []debugSheet `json:"sheets"`
}

type debugSheet struct {
	PageWidth   float64     `json:"pageWidth"`
	PageHeight  float64     `json:"pageHeight"`
	UnitsPerMM  float64     `json:"unitsPerMM"`
	SheetIndex  int         `json:"sheetIndex"`
	SheetCount  int         `json:"sheetCount"`
	PaperFormat string      `json:"paperFormat"`
	Items       []debugItem `json:"items"`
}

type debugItem struct {
	Type        string         `json:"type"`
	Peer        string         `json:"peer"`
	Repeat      int            `json:"repeat"`
	PenWidth    float64        `json:"penWidth"`
	BBox        geom.Box       `json:"bbox"`
	Start       *geom.Point    `json:"start,omitempty"`
	End         *geom.Point    `json:"end,omitempty"`
	Pos         *geom.Point    `json:"pos,omitempty"`
	Text        *string        `json:"text,omitempty"`
	Size        *layout.Size   `json:"size,omitempty"`
	Orientation float64        `json:"orientation,omitempty"`
	Outlines    [][]geom.Point `json:"outlines,omitempty"`
	Filled      *bool          `json:"filled,omitempty"`
	Width       float64        `json:"width,omitempty"`
	Height      float64        `json:"height,omitempty"`
}

// MarshalDebugJSON 将绘制列表输出为带缩进的 JSON，便于调试或可视化。
func MarshalDebugJSON(lists []*List) ([]byte, error) {
	dump := debugDump{Sheets: make([]debugSheet, 0, len(lists))}
	for _, l := range lists {
		if l == nil {
			continue
		}
		sheet := debugSheet{
			PageWidth:   l.PageWidth,
			PageHeight:  l.PageHeight,
			UnitsPerMM:  l.UnitsPerMM,
			SheetIndex:  l.SheetIndex,
			SheetCount:  l.SheetCount,
			PaperFormat: l.PaperFormat,
			Items:       make([]debugItem, 0, len(l.Items)),
		}
		for _, it := range l.Items {
			sheet.Items = append(sheet.Items, toDebugItem(it))
		}
		dump.Sheets = append(dump.Sheets, sheet)
	}
	return json.MarshalIndent(dump, "", "  ")
}

// WriteDebugJSON writes MarshalDebugJSON output to path after checking it
// against the embedded schema. Nothing is written when validation fails.
func WriteDebugJSON(lists []*List, path string) error {
	data, err := MarshalDebugJSON(lists)
	if err != nil {
		return err
	}
	if err := ValidateDebugJSON(data); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ValidateDebugJSON 使用内置 JSON Schema 校验调试输出。
func ValidateDebugJSON(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(debugSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("校验调试 JSON 失败: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("调试 JSON 不符合 schema: %s", strings.Join(msgs, "; "))
}

func toDebugItem(it Item) debugItem {
	d := debugItem{
		Type:     it.Kind().Keyword(),
		Peer:     it.Peer().String(),
		Repeat:   it.Repeat(),
		PenWidth: it.PenWidth(),
		BBox:     it.BoundingBox(),
	}
	switch v := it.(type) {
	case *Segment:
		d.Start, d.End = &v.Start, &v.End
	case *Rect:
		d.Start, d.End = &v.Start, &v.End
	case *Text:
		d.Pos, d.Text, d.Size = &v.Pos, &v.Text, &v.Size
		d.Orientation = v.Orientation
	case *Polygon:
		d.Pos, d.Outlines, d.Filled = &v.Pos, v.Outlines, &v.Filled
	case *Bitmap:
		d.Pos = &v.Pos
		d.Width, d.Height = v.Width, v.Height
	}
	return d
}
