package document

import "image"

// Page is the transient value produced by OpenPage. It owns its decoded
// bitmap exclusively for its own lifetime and must be closed when the
// render or inspect cycle that opened it finishes; the document does
// not track open pages, so holding one longer risks memory growth.
type Page struct {
	Number int
	img    image.Image
}

// Image returns the page bitmap. It is nil after Close.
func (p *Page) Image() image.Image { return p.img }

// Size reports the bitmap's pixel dimensions.
func (p *Page) Size() (int, int) {
	if p.img == nil {
		return 0, 0
	}
	b := p.img.Bounds()
	return b.Dx(), b.Dy()
}

// Close releases the bitmap. Closing twice is safe.
func (p *Page) Close() {
	p.img = nil
}
