package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "fetch")
	if ctx2 != ctx {
		t.Fatalf("nop tracer must return the same context")
	}
	span.SetTag("page", 1)
	span.SetError(errors.New("x"))
	span.Finish()
}

func TestFields(t *testing.T) {
	cases := []struct {
		field Field
		key   string
		value interface{}
	}{
		{String("url", "http://example.com"), "url", "http://example.com"},
		{Int("page", 3), "page", 3},
		{Int64("bytes", 1024), "bytes", int64(1024)},
		{Float64("zoom", 1.5), "zoom", 1.5},
		{Duration("elapsed", time.Second), "elapsed", time.Second},
	}
	for _, c := range cases {
		if c.field.Key() != c.key {
			t.Errorf("key: got %q, want %q", c.field.Key(), c.key)
		}
		if c.field.Value() != c.value {
			t.Errorf("value for %q: got %v, want %v", c.key, c.field.Value(), c.value)
		}
	}
	err := errors.New("boom")
	f := Error("err", err)
	if f.Key() != "err" || f.Value() != err {
		t.Fatalf("error field mismatch: %v", f.Value())
	}
}

func TestNopLoggerWith(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("component", "fetch"))
	l.Debug("cache miss", Int("page", 2))
	l.Error("fetch failed", Error("err", errors.New("404")))
}
