// Package tesseract adapts the gosseract client to the textengine
// contract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/pagestream/imaging"
	"github.com/wudi/pagestream/textengine"
)

// Engine implements textengine.Engine using a local Tesseract
// installation through gosseract.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
	variables     map[string]string
}

// Option configures the engine.
type Option func(*Engine)

// WithLanguages sets the trained-data language hints (e.g. "eng").
func WithLanguages(langs ...string) Option {
	return func(e *Engine) { e.languages = append([]string(nil), langs...) }
}

// WithPageSegMode sets Tesseract's page segmentation mode.
func WithPageSegMode(mode int) Option {
	return func(e *Engine) { e.variables["tessedit_pageseg_mode"] = fmt.Sprint(mode) }
}

// WithVariable passes an arbitrary Tesseract variable through.
func WithVariable(key, value string) Option {
	return func(e *Engine) { e.variables[key] = value }
}

// New constructs a Tesseract-backed text engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clientFactory: gosseract.NewClient,
		variables:     make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return "tesseract" }

// WordAt recognizes the page and returns the word whose bounding box
// contains (x, y).
func (e *Engine) WordAt(ctx context.Context, bm *imaging.ForeignBitmap, x, y float64) (textengine.Word, bool, error) {
	c, err := e.prepare(bm)
	if err != nil {
		return textengine.Word{}, false, err
	}
	defer c.Close()

	if err := ctx.Err(); err != nil {
		return textengine.Word{}, false, err
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return textengine.Word{}, false, fmt.Errorf("bounding boxes: %w", err)
	}
	for _, b := range boxes {
		w := textengine.Word{
			Text: b.Word,
			Bounds: textengine.Region{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: b.Confidence / 100.0,
		}
		if w.Bounds.Contains(x, y) {
			return w, true, nil
		}
	}
	return textengine.Word{}, false, nil
}

// TextInRegion recognizes the page and returns the concatenated text of
// every word whose box intersects the region. An empty region yields
// the full page text.
func (e *Engine) TextInRegion(ctx context.Context, bm *imaging.ForeignBitmap, region textengine.Region) (string, error) {
	c, err := e.prepare(bm)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if region.IsEmpty() {
		text, err := c.Text()
		if err != nil {
			return "", fmt.Errorf("recognize text: %w", err)
		}
		return strings.TrimSpace(text), nil
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return "", fmt.Errorf("bounding boxes: %w", err)
	}
	var parts []string
	for _, b := range boxes {
		bx := textengine.Region{
			X:      float64(b.Box.Min.X),
			Y:      float64(b.Box.Min.Y),
			Width:  float64(b.Box.Dx()),
			Height: float64(b.Box.Dy()),
		}
		if intersects(bx, region) {
			parts = append(parts, b.Word)
		}
	}
	return strings.Join(parts, " "), nil
}

func intersects(a, b textengine.Region) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

// prepare encodes the foreign bitmap to PNG and seeds a fresh client
// with it and the configured variables.
func (e *Engine) prepare(bm *imaging.ForeignBitmap) (*gosseract.Client, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, bm.ToImage()); err != nil {
		return nil, fmt.Errorf("encode bitmap: %w", err)
	}
	c := e.clientFactory()
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		c.Close()
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			c.Close()
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	for k, v := range e.variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			c.Close()
			return nil, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return c, nil
}
