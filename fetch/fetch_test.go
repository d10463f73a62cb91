package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wudi/pagestream/config"
)

func testConfig(template string) *config.Config {
	return &config.Config{URLTemplate: template, PageCount: 3}
}

func TestPageURL(t *testing.T) {
	c := NewClient(testConfig("http://host/pages/{pageNumber}?w={maxWidth}"))
	got := c.PageURL(2, 800)
	want := "http://host/pages/1?w=800"
	if got != want {
		t.Fatalf("page URL: got %q, want %q", got, want)
	}
}

func TestFetchSuccess(t *testing.T) {
	var gotPath, gotQuery, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotEncoding = r.Header.Get("Accept-Encoding")
		w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL + "/pages/{pageNumber}?w={maxWidth}"))
	data, err := c.Fetch(context.Background(), 2, 640)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("body: got %q", data)
	}
	if gotPath != "/pages/1" {
		t.Fatalf("path: got %q, want /pages/1", gotPath)
	}
	if gotQuery != "w=640" {
		t.Fatalf("query: got %q, want w=640", gotQuery)
	}
	if gotEncoding != "identity" {
		t.Fatalf("Accept-Encoding: got %q, want identity", gotEncoding)
	}
}

func TestFetchBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "reader" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/{pageNumber}/{maxWidth}")
	cfg.Username = "reader"
	cfg.Password = "s3cret"
	c := NewClient(cfg)
	if _, err := c.Fetch(context.Background(), 1, 100); err != nil {
		t.Fatalf("authenticated fetch: %v", err)
	}

	// Without credentials the same endpoint must fail with 401.
	anon := NewClient(testConfig(srv.URL + "/{pageNumber}/{maxWidth}"))
	_, err := anon.Fetch(context.Background(), 1, 100)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 FetchError, got %v", err)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL + "/{pageNumber}/{maxWidth}"))
	_, err := c.Fetch(context.Background(), 1, 100)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("want *FetchError, got %v", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", fe.StatusCode)
	}
}

func TestFetchDisallowedScheme(t *testing.T) {
	for _, template := range []string{
		"file:///etc/passwd?p={pageNumber}&w={maxWidth}",
		"ftp://host/{pageNumber}/{maxWidth}",
	} {
		c := NewClient(testConfig(template))
		_, err := c.Fetch(context.Background(), 1, 100)
		var pe *ProtocolError
		if !errors.As(err, &pe) {
			t.Fatalf("template %q: want *ProtocolError, got %v", template, err)
		}
	}
}

func TestFetchTotalTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL+"/{pageNumber}/{maxWidth}"),
		WithTimeouts(50*time.Millisecond, 100*time.Millisecond))
	start := time.Now()
	_, err := c.Fetch(context.Background(), 1, 100)
	if err == nil {
		t.Fatal("want timeout error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("want *FetchError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("fetch did not respect timeout, took %v", elapsed)
	}
}

func TestFetchStalledBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL+"/{pageNumber}/{maxWidth}"),
		WithTimeouts(100*time.Millisecond, 10*time.Second))
	start := time.Now()
	_, err := c.Fetch(context.Background(), 1, 100)
	if err == nil {
		t.Fatal("want stalled-read error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("block timeout not applied, took %v", elapsed)
	}
}
