package layout

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DecodeImage decodes PNG, JPEG, GIF, BMP or TIFF data.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("图片数据为空")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

// SizeMM returns the printed size of the bitmap in millimeters.
func (b *BitmapSpec) SizeMM() (float64, float64) {
	w, h := b.PixelSize()
	if w == 0 || h == 0 {
		return 0, 0
	}
	ppi := b.PPI
	if ppi <= 0 {
		ppi = DefaultBitmapPPI
	}
	scale := b.Scale
	if scale <= 0 {
		scale = 1
	}
	f := 25.4 / ppi * scale
	return float64(w) * f, float64(h) * f
}

// encodedData returns the bytes to embed as pngdata, encoding the image when
// no original bytes are kept.
func (b *BitmapSpec) encodedData() ([]byte, error) {
	if len(b.Data) > 0 {
		return b.Data, nil
	}
	if b.Image == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.Image); err != nil {
		return nil, fmt.Errorf("编码位图失败: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("pngdata 不是有效的十六进制: %w", err)
	}
	return data, nil
}
