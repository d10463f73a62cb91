// Package imaging turns raw page bytes into bitmaps and extracts the
// exact pixel regions callers need: crop, zoom scaling, gamma
// correction, and conversion to the foreign layout the text engine
// consumes.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports corrupt or unsupported image bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("imaging: decode: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes raw page bytes into a bitmap. PNG, JPEG, GIF, TIFF,
// BMP and WebP payloads are recognized.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}
