package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// EncodePNG serializes a bitmap to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imaging: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
