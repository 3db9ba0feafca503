// Package renderer defines the plotting backends for worksheet draw lists.
package renderer

import "github.com/ByLCY/pagelayout/worksheet"

// Renderer 将图纸绘制列表输出为最终文件，例如 PDF 或 SVG。
// sheets 按页序排列，每个元素对应一页；Render 返回生成的二进制数据。
type Renderer interface {
	Render(sheets []*worksheet.List) ([]byte, error)
}

// Metadata 是写入输出文件的文档信息。
type Metadata struct {
	Title    string
	Subject  string
	Keywords []string
	Author   string
	Creator  string
}
