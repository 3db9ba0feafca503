package worksheet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/pagelayout/geom"
	"github.com/ByLCY/pagelayout/layout"
)

func TestDebugJSONMatchesSchema(t *testing.T) {
	m := layout.DefaultLayout()
	m.Append(layout.NewPolygon(layout.At(30, 30, layout.LeftTop), []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 0, Y: 5}}))
	m.Append(layout.NewBitmap(layout.At(60, 60, layout.LeftTop), testImage(3, 3)))

	var lists []*List
	for sheet := 1; sheet <= 2; sheet++ {
		ctx := a4(sheet, 2)
		ctx.UnitsPerMM = 1000
		lists = append(lists, Build(m, ctx, testOptions()))
	}
	data, err := MarshalDebugJSON(lists)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateDebugJSON(data); err != nil {
		t.Fatalf("dump should match the schema: %v", err)
	}

	var decoded struct {
		Sheets []struct {
			SheetIndex int `json:"sheetIndex"`
			Items      []struct {
				Type string `json:"type"`
			} `json:"items"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Sheets) != 2 || decoded.Sheets[1].SheetIndex != 2 {
		t.Fatalf("unexpected sheets: %+v", decoded.Sheets)
	}
	if got, want := len(decoded.Sheets[0].Items), lists[0].Len(); got != want {
		t.Fatalf("sheet 1 has %d items, want %d", got, want)
	}
	kinds := map[string]bool{}
	for _, it := range decoded.Sheets[0].Items {
		kinds[it.Type] = true
	}
	for _, k := range []string{"line", "rect", "tbtext", "polygon", "bitmap"} {
		if !kinds[k] {
			t.Fatalf("dump is missing %s items", k)
		}
	}
}

func TestValidateDebugJSONRejectsBadDump(t *testing.T) {
	bad := []string{
		`{}`,
		`{"sheets":[{"pageWidth":1,"pageHeight":1,"unitsPerMM":1,"sheetIndex":0,"sheetCount":1,"items":[]}]}`,
		`{"sheets":[{"pageWidth":1,"pageHeight":1,"unitsPerMM":1,"sheetIndex":1,"sheetCount":1,"items":[{"type":"circle"}]}]}`,
	}
	for _, doc := range bad {
		if err := ValidateDebugJSON([]byte(doc)); err == nil {
			t.Fatalf("expected validation error for %s", doc)
		}
	}
}

func TestWriteDebugJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	empty := layout.NewModel()
	empty.AllowVoidList(true)
	if err := WriteDebugJSON([]*List{Build(empty, a4(1, 1), testOptions()), nil}, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := ValidateDebugJSON(data); err != nil {
		t.Fatalf("empty sheet dump should validate: %v", err)
	}
}

func TestWriteDebugJSONRefusesInvalidDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.json")
	// 零值图纸没有页面尺寸与页码
	if err := WriteDebugJSON([]*List{{}}, path); err == nil {
		t.Fatalf("expected schema error for a sheet without page size")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("invalid dump should not be written, stat err = %v", err)
	}
}
