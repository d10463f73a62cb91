// Package textengine defines the narrow contract a page-stream document
// uses to delegate word and text geometry queries to an external OCR
// engine. The document renders page pixels into a foreign bitmap and
// hands it over; the engine owns everything from there.
package textengine

import (
	"context"

	"github.com/wudi/pagestream/imaging"
)

// Region describes a rectangular area in pixel coordinates with the
// origin in the upper-left corner of the page bitmap.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point (x, y) falls inside the region.
func (r Region) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Word is a single recognized token with its bounding box.
type Word struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// Engine is the text/OCR capability a document is constructed with.
type Engine interface {
	Name() string
	// WordAt locates the recognized word under the point (x, y), if any.
	WordAt(ctx context.Context, bm *imaging.ForeignBitmap, x, y float64) (Word, bool, error)
	// TextInRegion extracts the text covered by the region.
	TextInRegion(ctx context.Context, bm *imaging.ForeignBitmap, region Region) (string, error)
}

// NopEngine recognizes nothing. Documents constructed without an engine
// use it so text queries degrade to empty results instead of errors.
type NopEngine struct{}

func (NopEngine) Name() string { return "nop" }

func (NopEngine) WordAt(context.Context, *imaging.ForeignBitmap, float64, float64) (Word, bool, error) {
	return Word{}, false, nil
}

func (NopEngine) TextInRegion(context.Context, *imaging.ForeignBitmap, Region) (string, error) {
	return "", nil
}
