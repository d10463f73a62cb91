// Package document presents a remotely hosted sequence of page images
// as a randomly-accessible paginated document. Pages are fetched lazily
// over HTTP, cached in bounded in-memory caches, and decoded on demand;
// a page that cannot be fetched or decoded renders as a bundled
// placeholder instead of failing the document.
//
// A Document is not safe for concurrent use: the design assumes one
// logical caller drives an instance at a time, and every accessor may
// block for up to the fetcher's total transfer timeout. Callers that
// need responsiveness must drive it from a worker context.
package document

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/wudi/pagestream/cache"
	"github.com/wudi/pagestream/config"
	"github.com/wudi/pagestream/fetch"
	"github.com/wudi/pagestream/imaging"
	"github.com/wudi/pagestream/observability"
	"github.com/wudi/pagestream/textengine"
)

// DefaultDisplayWidth is substituted for {maxWidth} when no display
// width is configured.
const DefaultDisplayWidth = 1080

// ErrClosed is returned by every accessor once the document is closed.
var ErrClosed = errors.New("document: closed")

// InitializationError reports a failure while opening a document. It is
// fatal: the document never reaches the open state.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string { return fmt.Sprintf("document: open: %v", e.Err) }

func (e *InitializationError) Unwrap() error { return e.Err }

// InvalidPageError marks a page number outside [1, PageCount]. It is
// never propagated to callers; pages it names resolve to the
// placeholder image.
type InvalidPageError struct {
	PageNumber int
	PageCount  int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("document: page %d outside [1, %d]", e.PageNumber, e.PageCount)
}

// Document is the page-stream façade. It owns the two caches and the
// fetcher and delegates text queries to the configured engine.
type Document struct {
	cfg     *config.Config
	fetcher *fetch.Client

	rawCache     *cache.PageCache
	metricsCache *cache.MetricsCache
	cover        []byte

	engine textengine.Engine
	logger observability.Logger
	tracer observability.Tracer
	width  int

	closed bool
}

// Option configures a Document at open time.
type Option func(*settings)

type settings struct {
	fetchOptions    []fetch.Option
	engine          textengine.Engine
	logger          observability.Logger
	tracer          observability.Tracer
	width           int
	rawCapacity     int
	metricsCapacity int
}

// WithFetchOptions forwards options to the underlying fetch client.
func WithFetchOptions(opts ...fetch.Option) Option {
	return func(s *settings) { s.fetchOptions = append(s.fetchOptions, opts...) }
}

// WithTextEngine injects the OCR/text engine text queries delegate to.
func WithTextEngine(e textengine.Engine) Option {
	return func(s *settings) { s.engine = e }
}

// WithLogger attaches a structured logger.
func WithLogger(l observability.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithTracer attaches a tracer whose spans wrap fetch and decode.
func WithTracer(t observability.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// WithDisplayWidth sets the pixel width substituted for {maxWidth}.
func WithDisplayWidth(w int) Option {
	return func(s *settings) {
		if w > 0 {
			s.width = w
		}
	}
}

// WithCacheCapacities overrides the raw page and metrics cache bounds.
func WithCacheCapacities(raw, metrics int) Option {
	return func(s *settings) {
		s.rawCapacity = raw
		s.metricsCapacity = metrics
	}
}

// Open builds a document from an already loaded configuration.
func Open(cfg *config.Config, opts ...Option) (*Document, error) {
	if cfg == nil {
		return nil, &InitializationError{Err: fmt.Errorf("nil configuration")}
	}
	if cfg.PageCount <= 0 {
		return nil, &InitializationError{Err: fmt.Errorf("page count %d not positive", cfg.PageCount)}
	}

	s := settings{
		engine: textengine.NopEngine{},
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
		width:  DefaultDisplayWidth,
	}
	for _, opt := range opts {
		opt(&s)
	}

	fetchOpts := append([]fetch.Option{fetch.WithLogger(s.logger)}, s.fetchOptions...)
	return &Document{
		cfg:          cfg,
		fetcher:      fetch.NewClient(cfg, fetchOpts...),
		rawCache:     cache.NewPageCache(s.rawCapacity),
		metricsCache: cache.NewMetricsCache(s.metricsCapacity),
		engine:       s.engine,
		logger:       s.logger,
		tracer:       s.tracer,
		width:        s.width,
	}, nil
}

// OpenFile loads the configuration from path and opens a document.
func OpenFile(path string, opts ...Option) (*Document, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, &InitializationError{Err: err}
	}
	return Open(cfg, opts...)
}

// PageCount reports the number of pages the stream serves.
func (d *Document) PageCount() int { return d.cfg.PageCount }

// Title reports the configured document title.
func (d *Document) Title() string { return d.cfg.Title }

// OpenPage fetches, decodes and returns page n. Pages outside
// [1, PageCount] and pages that fail to fetch or decode come back as
// the placeholder bitmap; the only error is ErrClosed.
func (d *Document) OpenPage(ctx context.Context, n int) (*Page, error) {
	if d.closed {
		return nil, ErrClosed
	}
	img := d.pageBitmap(ctx, n)
	return &Page{Number: n, img: img}, nil
}

// PageSize reports page n's pixel dimensions. A metrics cache hit
// answers without any fetch or decode.
func (d *Document) PageSize(ctx context.Context, n int) (int, int, error) {
	if d.closed {
		return 0, 0, ErrClosed
	}
	if m, ok := d.metricsCache.Get(n); ok {
		d.logger.Debug("metrics cache hit", observability.Int("page", n))
		return m.Width, m.Height, nil
	}
	img := d.pageBitmap(ctx, n)
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// ContentBounds reports the used-content bounding box of page n. The
// remote stream carries no layout information, so this is the
// degenerate answer: the full page rectangle.
func (d *Document) ContentBounds(ctx context.Context, n int) (image.Rectangle, error) {
	w, h, err := d.PageSize(ctx, n)
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rect(0, 0, w, h), nil
}

// RenderRegion opens page n and extracts the requested pixel region at
// the given zoom, with optional gamma correction (negative disables).
func (d *Document) RenderRegion(ctx context.Context, n int, rect image.Rectangle, zoom, gamma float64) (image.Image, error) {
	if d.closed {
		return nil, ErrClosed
	}
	src := d.pageBitmap(ctx, n)
	return imaging.ExtractRegion(src, rect, zoom, gamma), nil
}

// CoverImage returns the raw bytes of the representative cover image,
// which is page 1. The bytes are retained from the first time page 1 is
// fetched; if it never was, the cover path fetches it on demand.
func (d *Document) CoverImage(ctx context.Context) ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.cover != nil {
		return d.cover, nil
	}
	if data := d.fetchRaw(ctx, 1); data != nil {
		d.cover = data
		return d.cover, nil
	}
	// No reachable cover; fall back to an encoded placeholder so the
	// host viewer still gets a representative image.
	data, err := imaging.EncodePNG(imaging.Placeholder())
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WordAt renders page n and asks the text engine for the word under the
// point (x, y) in page pixel coordinates.
func (d *Document) WordAt(ctx context.Context, n int, x, y float64) (textengine.Word, bool, error) {
	if d.closed {
		return textengine.Word{}, false, ErrClosed
	}
	bm := imaging.ToForeign(d.pageBitmap(ctx, n))
	return d.engine.WordAt(ctx, bm, x, y)
}

// TextInRegion renders page n and asks the text engine for the text
// covered by the region.
func (d *Document) TextInRegion(ctx context.Context, n int, region textengine.Region) (string, error) {
	if d.closed {
		return "", ErrClosed
	}
	bm := imaging.ToForeign(d.pageBitmap(ctx, n))
	return d.engine.TextInRegion(ctx, bm, region)
}

// ClearCaches empties both caches without closing the document.
func (d *Document) ClearCaches() {
	d.rawCache.Clear()
	d.metricsCache.Clear()
}

// Close releases the document: both caches are cleared, the cover bytes
// dropped, and an ephemeral backing configuration file removed. Closing
// an already closed document is a no-op.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.rawCache.Clear()
	d.metricsCache.Clear()
	d.cover = nil
	if d.cfg.Ephemeral && d.cfg.SourcePath != "" {
		if err := os.Remove(d.cfg.SourcePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("document: remove backing file: %w", err)
		}
	}
	return nil
}

// pageBitmap produces the decoded bitmap for page n, substituting the
// placeholder on any failure, and records the resulting dimensions in
// the metrics cache under n.
func (d *Document) pageBitmap(ctx context.Context, n int) image.Image {
	img := d.decodePage(ctx, n)
	b := img.Bounds()
	d.metricsCache.Put(n, cache.Metrics{Width: b.Dx(), Height: b.Dy()})
	return img
}

func (d *Document) decodePage(ctx context.Context, n int) image.Image {
	if n < 1 || n > d.cfg.PageCount {
		d.logger.Warn("invalid page resolved to placeholder",
			observability.Error("err", &InvalidPageError{PageNumber: n, PageCount: d.cfg.PageCount}))
		return imaging.Placeholder()
	}

	data := d.fetchRaw(ctx, n)
	if data == nil {
		return imaging.Placeholder()
	}

	_, span := d.tracer.StartSpan(ctx, "pagestream.decode")
	defer span.Finish()
	start := time.Now()
	img, err := imaging.Decode(data)
	if err != nil {
		span.SetError(err)
		d.logger.Error("decode failed, using placeholder",
			observability.Int("page", n),
			observability.Error("err", err))
		return imaging.Placeholder()
	}
	d.logger.Debug("decoded page",
		observability.Int("page", n),
		observability.Duration("elapsed", time.Since(start)))
	return img
}

// fetchRaw returns the raw bytes for page n, consulting the raw page
// cache first. Successful fetches of page 1 are retained as the cover
// source. A nil return means the fetch failed; the failure has already
// been logged.
func (d *Document) fetchRaw(ctx context.Context, n int) []byte {
	if data := d.rawCache.Get(n); data != nil {
		d.logger.Debug("raw cache hit", observability.Int("page", n))
		return data
	}
	d.logger.Debug("raw cache miss", observability.Int("page", n))

	ctx, span := d.tracer.StartSpan(ctx, "pagestream.fetch")
	defer span.Finish()
	span.SetTag("page", n)

	data, err := d.fetcher.Fetch(ctx, n, d.width)
	if err != nil {
		span.SetError(err)
		return nil
	}
	d.rawCache.Put(n, data)
	if n == 1 {
		d.cover = data
	}
	return data
}
