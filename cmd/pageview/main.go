// Command pageview opens a page-stream configuration, fetches pages
// over HTTP and renders them to PNG files. It exercises the whole
// pipeline: config loading, fetch, caching, decode-with-fallback,
// region extraction and optional OCR.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/wudi/pagestream/document"
	"github.com/wudi/pagestream/imaging"
	"github.com/wudi/pagestream/textengine"
	"github.com/wudi/pagestream/textengine/tesseract"
)

type options struct {
	configPath string
	page       int
	width      int
	zoom       float64
	gamma      float64
	rect       image.Rectangle
	outPath    string
	cover      bool
	info       bool
	text       bool
	languages  string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pageview: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pageview: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pageview [flags] <config>\n")
		flag.PrintDefaults()
	}
	page := flag.Int("page", 1, "1-based page number to render")
	width := flag.Int("width", document.DefaultDisplayWidth, "Display width substituted for {maxWidth}")
	zoom := flag.Float64("zoom", 1.0, "Zoom factor applied to the crop")
	gamma := flag.Float64("gamma", -1, "Gamma correction (negative disables)")
	rect := flag.String("rect", "", "Crop rectangle as x0,y0,x1,y1 (default: full page)")
	out := flag.String("out", "page.png", "Output PNG path")
	cover := flag.Bool("cover", false, "Write the cover image instead of a page")
	info := flag.Bool("info", false, "Print title, page count and page dimensions")
	text := flag.Bool("text", false, "Run OCR over the page and print the text")
	languages := flag.String("languages", "eng", "Comma-separated OCR language hints")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing config path")
	}
	opts.configPath = flag.Arg(0)
	opts.page = *page
	opts.width = *width
	opts.zoom = *zoom
	opts.gamma = *gamma
	opts.outPath = *out
	opts.cover = *cover
	opts.info = *info
	opts.text = *text
	opts.languages = *languages

	if *rect != "" {
		r, err := parseRect(*rect)
		if err != nil {
			return options{}, err
		}
		opts.rect = r
	}
	return opts, nil
}

func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rect %q: want x0,y0,x1,y1", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rect %q: %v", s, err)
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

func run(opts options) error {
	docOpts := []document.Option{document.WithDisplayWidth(opts.width)}
	if opts.text {
		langs := strings.Split(opts.languages, ",")
		docOpts = append(docOpts, document.WithTextEngine(tesseract.New(tesseract.WithLanguages(langs...))))
	}

	doc, err := document.OpenFile(opts.configPath, docOpts...)
	if err != nil {
		return err
	}
	defer doc.Close()

	ctx := context.Background()

	if opts.info {
		w, h, err := doc.PageSize(ctx, opts.page)
		if err != nil {
			return err
		}
		fmt.Printf("title: %s\npages: %d\npage %d: %dx%d px\n", doc.Title(), doc.PageCount(), opts.page, w, h)
	}

	if opts.cover {
		data, err := doc.CoverImage(ctx)
		if err != nil {
			return err
		}
		return os.WriteFile(opts.outPath, data, 0o644)
	}

	rect := opts.rect
	if rect.Empty() {
		bounds, err := doc.ContentBounds(ctx, opts.page)
		if err != nil {
			return err
		}
		rect = bounds
	}
	img, err := doc.RenderRegion(ctx, opts.page, rect, opts.zoom, opts.gamma)
	if err != nil {
		return err
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.outPath, data, 0o644); err != nil {
		return err
	}

	if opts.text {
		region := textengine.Region{}
		if !opts.rect.Empty() {
			region = textengine.Region{
				X:      float64(opts.rect.Min.X),
				Y:      float64(opts.rect.Min.Y),
				Width:  float64(opts.rect.Dx()),
				Height: float64(opts.rect.Dy()),
			}
		}
		text, err := doc.TextInRegion(ctx, opts.page, region)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}
	return nil
}
