package imaging

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// ExtractRegion crops src to rect, scales the crop by zoom, and
// optionally applies gamma correction.
//
// The rectangle is clamped to the source bounds; if nothing of it
// remains, the whole source is cropped instead so the result is never
// empty. Output dimensions are round(cropped*zoom) with a floor of one
// pixel per axis. Gamma is applied when it is non-negative and differs
// from 1; pass a negative value (or 1) to skip it.
//
// When every step is a no-op the source image itself is returned;
// otherwise the result is a freshly allocated bitmap and the source is
// left untouched.
func ExtractRegion(src image.Image, rect image.Rectangle, zoom, gamma float64) image.Image {
	bounds := src.Bounds()

	crop := rect.Intersect(bounds)
	if crop.Empty() {
		crop = bounds
	}

	outW := scaledExtent(crop.Dx(), zoom)
	outH := scaledExtent(crop.Dy(), zoom)

	needScale := outW != crop.Dx() || outH != crop.Dy()
	needGamma := gamma >= 0 && gamma != 1
	needCrop := crop != bounds

	if !needCrop && !needScale && !needGamma {
		return src
	}

	dst := newCompatible(src, outW, outH)
	if needScale {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	} else {
		draw.Copy(dst, image.Point{}, src, crop, draw.Src, nil)
	}

	if needGamma {
		applyGamma(dst, gammaTable(gamma))
	}
	return dst
}

// scaledExtent returns round(d*zoom) floored at one pixel.
func scaledExtent(d int, zoom float64) int {
	n := int(math.Round(float64(d) * zoom))
	if n < 1 {
		n = 1
	}
	return n
}

// newCompatible allocates a destination bitmap that preserves the
// source's grayscale/color nature.
func newCompatible(src image.Image, w, h int) draw.Image {
	switch src.(type) {
	case *image.Gray:
		return image.NewGray(image.Rect(0, 0, w, h))
	default:
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
}

// gammaTable builds the 256-entry power-law lookup table
// round(255 * (c/255)^gamma).
func gammaTable(gamma float64) *[256]uint8 {
	var table [256]uint8
	for i := range table {
		table[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, gamma)))
	}
	return &table
}

// applyGamma remaps every channel of dst through the lookup table; for
// grayscale images the single luminance channel is remapped, for color
// images each of R, G and B. Alpha is left alone.
func applyGamma(dst draw.Image, table *[256]uint8) {
	switch img := dst.(type) {
	case *image.Gray:
		for i, v := range img.Pix {
			img.Pix[i] = table[v]
		}
	case *image.RGBA:
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = table[img.Pix[i]]
			img.Pix[i+1] = table[img.Pix[i+1]]
			img.Pix[i+2] = table[img.Pix[i+2]]
		}
	}
}
