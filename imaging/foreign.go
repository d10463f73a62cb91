package imaging

import (
	"image"
	"image/color"
)

// ForeignBitmap is pixel data laid out the way the external text engine
// expects it: row-major, 24 bits per pixel in blue-green-red channel
// order for color, or 8 bits per pixel with an identity grayscale
// palette. It is built fresh per extraction and never cached.
type ForeignBitmap struct {
	Width        int
	Height       int
	BitsPerPixel int // 8 or 24
	Stride       int // bytes per row
	Data         []byte
	// Palette holds 256 RGB triples for 8-bpp bitmaps, nil otherwise.
	Palette [][3]uint8
}

// grayPalette returns the identity palette: entry i maps to gray
// level i.
func grayPalette() [][3]uint8 {
	p := make([][3]uint8, 256)
	for i := range p {
		p[i] = [3]uint8{uint8(i), uint8(i), uint8(i)}
	}
	return p
}

// ToForeign converts a bitmap into the foreign layout. Grayscale
// sources become 8-bpp paletted bitmaps; everything else becomes
// 24-bpp BGR. The data buffer is freshly allocated to exactly
// width*height*bytesPerPixel.
func ToForeign(src image.Image) *ForeignBitmap {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if gray, ok := src.(*image.Gray); ok {
		fb := &ForeignBitmap{
			Width:        w,
			Height:       h,
			BitsPerPixel: 8,
			Stride:       w,
			Data:         make([]byte, w*h),
			Palette:      grayPalette(),
		}
		for y := 0; y < h; y++ {
			si := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(fb.Data[y*w:], gray.Pix[si:si+w])
		}
		return fb
	}

	fb := &ForeignBitmap{
		Width:        w,
		Height:       h,
		BitsPerPixel: 24,
		Stride:       w * 3,
		Data:         make([]byte, w*h*3),
	}
	if rgba, ok := src.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			si := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			di := y * fb.Stride
			for x := 0; x < w; x++ {
				fb.Data[di] = rgba.Pix[si+2]   // B
				fb.Data[di+1] = rgba.Pix[si+1] // G
				fb.Data[di+2] = rgba.Pix[si]   // R
				si += 4
				di += 3
			}
		}
		return fb
	}
	for y := 0; y < h; y++ {
		di := y * fb.Stride
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			fb.Data[di] = uint8(b >> 8)
			fb.Data[di+1] = uint8(g >> 8)
			fb.Data[di+2] = uint8(r >> 8)
			di += 3
		}
	}
	return fb
}

// ToImage converts the foreign bitmap back into a standard bitmap. The
// text engine adapters use this to hand pixel data to encoders that
// work on image.Image.
func (fb *ForeignBitmap) ToImage() image.Image {
	if fb.BitsPerPixel == 8 {
		img := image.NewGray(image.Rect(0, 0, fb.Width, fb.Height))
		for y := 0; y < fb.Height; y++ {
			copy(img.Pix[y*img.Stride:], fb.Data[y*fb.Stride:y*fb.Stride+fb.Width])
		}
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		si := y * fb.Stride
		di := y * img.Stride
		for x := 0; x < fb.Width; x++ {
			img.Pix[di] = fb.Data[si+2]
			img.Pix[di+1] = fb.Data[si+1]
			img.Pix[di+2] = fb.Data[si]
			img.Pix[di+3] = 0xFF
			si += 3
			di += 4
		}
	}
	return img
}

// At returns the color of the pixel at (x, y) in source channel order.
func (fb *ForeignBitmap) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return color.RGBA{}
	}
	if fb.BitsPerPixel == 8 {
		return color.Gray{Y: fb.Data[y*fb.Stride+x]}
	}
	i := y*fb.Stride + x*3
	return color.RGBA{R: fb.Data[i+2], G: fb.Data[i+1], B: fb.Data[i], A: 0xFF}
}
