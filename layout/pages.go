package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPage is returned by LookupPage for names outside the preset table.
var ErrUnknownPage = errors.New("unknown page format")

// PageInfo 描述一张图纸的纸张。Width/Height 已考虑纵横方向（mm）。
// Margins 为 nil 时使用模型 setup 中的页边距。
type PageInfo struct {
	Format   string  `json:"format"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Portrait bool    `json:"portrait"`
	Margins  *Margin `json:"margins,omitempty"`
}

// EffectiveMargins returns the page margin override or the setup margins.
func (p PageInfo) EffectiveMargins(setup Setup) Margin {
	if p.Margins != nil {
		return *p.Margins
	}
	return setup.Margins
}

// 横向尺寸（宽 × 高，mm）。
var pagePresets = map[string][2]float64{
	"A5":       {210, 148},
	"A4":       {297, 210},
	"A3":       {420, 297},
	"A2":       {594, 420},
	"A1":       {841, 594},
	"A0":       {1189, 841},
	"A":        {279.4, 215.9},
	"B":        {431.8, 279.4},
	"C":        {558.8, 431.8},
	"D":        {863.6, 558.8},
	"E":        {1117.6, 863.6},
	"USLETTER": {279.4, 215.9},
	"USLEGAL":  {355.6, 215.9},
	"USLEDGER": {431.8, 279.4},
}

var presetNames = map[string]string{
	"USLETTER": "USLetter",
	"USLEGAL":  "USLegal",
	"USLEDGER": "USLedger",
}

// LookupPage returns a preset page. Presets are landscape unless portrait is set.
func LookupPage(name string, portrait bool) (PageInfo, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	base, ok := pagePresets[key]
	if !ok {
		return PageInfo{}, fmt.Errorf("%w: %s", ErrUnknownPage, name)
	}
	format := key
	if n, ok := presetNames[key]; ok {
		format = n
	}
	width, height := base[0], base[1]
	if portrait {
		width, height = height, width
	}
	return PageInfo{Format: format, Width: width, Height: height, Portrait: portrait}, nil
}

// CustomPage returns a user-sized page.
func CustomPage(width, height float64) PageInfo {
	return PageInfo{Format: "User", Width: width, Height: height, Portrait: height > width}
}

// PageFormats lists the preset names accepted by LookupPage.
func PageFormats() []string {
	out := make([]string, 0, len(pagePresets))
	for key := range pagePresets {
		if n, ok := presetNames[key]; ok {
			key = n
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
