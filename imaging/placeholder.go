package imaging

import "image"

// Placeholder dimensions, A4 at 72 dpi.
const (
	PlaceholderWidth  = 595
	PlaceholderHeight = 842
)

// Placeholder returns the bundled fallback bitmap shown when a page
// cannot be fetched or decoded: a light page with a border and a turned
// corner. A fresh bitmap is returned on every call so callers can
// mutate it freely.
func Placeholder() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))

	const (
		paper  = 0xF2
		ink    = 0x40
		shadow = 0xC0
		fold   = 48
	)
	for i := range img.Pix {
		img.Pix[i] = paper
	}

	// Border, two pixels wide.
	for x := 0; x < PlaceholderWidth; x++ {
		for _, y := range []int{0, 1, PlaceholderHeight - 2, PlaceholderHeight - 1} {
			img.Pix[y*img.Stride+x] = ink
		}
	}
	for y := 0; y < PlaceholderHeight; y++ {
		for _, x := range []int{0, 1, PlaceholderWidth - 2, PlaceholderWidth - 1} {
			img.Pix[y*img.Stride+x] = ink
		}
	}

	// Turned corner, top right.
	for y := 0; y < fold; y++ {
		for x := PlaceholderWidth - fold + y; x < PlaceholderWidth; x++ {
			img.Pix[y*img.Stride+x] = shadow
		}
		img.Pix[y*img.Stride+(PlaceholderWidth-fold+y)] = ink
	}

	return img
}
