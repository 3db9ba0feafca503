package layout

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
)

// 内置的兜底布局：外框、边框网格标签以及标题栏。
//
//go:embed default_layout.kicad_wks
var defaultLayout string

// DefaultLayoutText returns the built-in layout description.
func DefaultLayoutText() string { return defaultLayout }

// DefaultLayout returns a fresh model holding the built-in layout. Each call
// assigns new item IDs.
func DefaultLayout() *Model {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := ParseString(defaultLayout, ParseOptions{Logger: quiet})
	if err != nil {
		panic(fmt.Sprintf("内置默认布局无效: %v", err))
	}
	return m
}
