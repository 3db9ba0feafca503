// Package fonts exposes the built-in Go fonts used to plot worksheet text.
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称。
const (
	Regular    = "go-regular"
	Bold       = "go-bold"
	Italic     = "go-italic"
	BoldItalic = "go-bolditalic"
	Mono       = "go-mono"
)

var builtin = map[string][]byte{
	Regular:    goregular.TTF,
	Bold:       gobold.TTF,
	Italic:     goitalic.TTF,
	BoldItalic: gobolditalic.TTF,
	Mono:       gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:go-bold" 或直接 "go-bold"，也接受 ".ttf" 后缀。
func Load(name string) ([]byte, error) {
	key := strings.TrimSuffix(strings.TrimPrefix(name, "embed:"), ".ttf")
	data, ok := builtin[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体，可用 %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// ForStyle returns the name of the built-in face for the style flags.
func ForStyle(bold, italic bool) string {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	}
	return Regular
}

// Names lists the built-in font names.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
