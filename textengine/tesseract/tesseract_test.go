package tesseract

import (
	"testing"

	"github.com/wudi/pagestream/textengine"
)

func TestOptions(t *testing.T) {
	e := New(
		WithLanguages("eng", "deu"),
		WithPageSegMode(6),
		WithVariable("tessedit_char_whitelist", "0123456789"),
	)
	if e.Name() != "tesseract" {
		t.Fatalf("name: %q", e.Name())
	}
	if len(e.languages) != 2 || e.languages[0] != "eng" {
		t.Fatalf("languages: %v", e.languages)
	}
	if e.variables["tessedit_pageseg_mode"] != "6" {
		t.Fatalf("psm: %v", e.variables)
	}
	if e.variables["tessedit_char_whitelist"] != "0123456789" {
		t.Fatalf("whitelist: %v", e.variables)
	}
}

func TestIntersects(t *testing.T) {
	a := textengine.Region{X: 0, Y: 0, Width: 10, Height: 10}
	cases := []struct {
		b    textengine.Region
		want bool
	}{
		{textengine.Region{X: 5, Y: 5, Width: 10, Height: 10}, true},
		{textengine.Region{X: 10, Y: 0, Width: 5, Height: 5}, false}, // touching edge
		{textengine.Region{X: -5, Y: -5, Width: 6, Height: 6}, true},
		{textengine.Region{X: 20, Y: 20, Width: 5, Height: 5}, false},
	}
	for _, c := range cases {
		if got := intersects(a, c.b); got != c.want {
			t.Errorf("intersects(%+v): got %v, want %v", c.b, got, c.want)
		}
	}
}
