// Package config loads the flat key=value description of a page-stream
// document: the remote URL template, the page count, and optional
// credentials and title.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultTitle is used when a configuration carries no title key.
const DefaultTitle = "Page stream"

// Placeholders that must both appear in the remote URL template.
const (
	PagePlaceholder  = "{pageNumber}"
	WidthPlaceholder = "{maxWidth}"
)

// Config describes one remote page stream. It is immutable once loaded.
type Config struct {
	// URLTemplate contains the {pageNumber} and {maxWidth} placeholders.
	URLTemplate string
	// PageCount is the number of pages the remote stream serves.
	PageCount int
	// Username and Password are optional HTTP basic auth credentials.
	Username string
	Password string
	// Title is the display title, defaulted when absent.
	Title string

	// SourcePath is the file the configuration was loaded from, if any.
	SourcePath string
	// Ephemeral marks SourcePath as a temporary backing file that should
	// be removed when the owning document closes.
	Ephemeral bool
}

// ConfigError reports a missing or malformed configuration. It is fatal:
// a document whose configuration fails to load never opens.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("config: key %q: %s", e.Key, e.Reason)
}

// Load parses a key=value configuration from r. Keys and values are
// trimmed of surrounding whitespace; blank lines and lines without an
// equals sign are skipped; unknown keys are ignored.
func Load(r io.Reader) (*Config, error) {
	cfg := &Config{Title: DefaultTitle}
	seenCount := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])
		switch key {
		case "remote_url":
			cfg.URLTemplate = value
		case "count":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, &ConfigError{Key: "count", Reason: fmt.Sprintf("not an integer: %q", value)}
			}
			cfg.PageCount = n
			seenCount = true
		case "username":
			cfg.Username = value
		case "password":
			cfg.Password = value
		case "title":
			if value != "" {
				cfg.Title = value
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("read: %v", err)}
	}

	if cfg.URLTemplate == "" {
		return nil, &ConfigError{Key: "remote_url", Reason: "missing"}
	}
	if !strings.Contains(cfg.URLTemplate, PagePlaceholder) || !strings.Contains(cfg.URLTemplate, WidthPlaceholder) {
		return nil, &ConfigError{Key: "remote_url", Reason: fmt.Sprintf("template must contain %s and %s", PagePlaceholder, WidthPlaceholder)}
	}
	if !seenCount {
		return nil, &ConfigError{Key: "count", Reason: "missing"}
	}
	if cfg.PageCount <= 0 {
		return nil, &ConfigError{Key: "count", Reason: fmt.Sprintf("must be positive, got %d", cfg.PageCount)}
	}
	return cfg, nil
}

// LoadFile loads a configuration from path and records the source path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("open %s: %v", path, err)}
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, err
	}
	cfg.SourcePath = path
	return cfg, nil
}

// LoadEphemeralFile behaves like LoadFile but marks the file as a
// temporary backing file to be removed when the document closes.
func LoadEphemeralFile(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Ephemeral = true
	return cfg, nil
}
