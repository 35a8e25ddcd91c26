package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/reliverse/reliverse/internal/fsutil"
)

// readDocument loads and parses the config file at path. It returns
// ErrConfigNotFound when the file does not exist.
func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// writeDocument encodes doc and writes it atomically to path.
func writeDocument(path string, doc *document) error {
	data, err := doc.encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// Load reads the project config at path without reconciling it.
func Load(path string) (*ProjectConfig, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return doc.decode()
}

// Create writes cfg as a new config file at path, stamping the
// revalidation time. An existing file is left alone and reported as
// fs.ErrExist.
func Create(path string, cfg *ProjectConfig, now time.Time) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("create %s: %w", path, fs.ErrExist)
	}
	doc, err := documentFromConfig(cfg)
	if err != nil {
		return err
	}
	doc.set(FieldLastRevalidate, FormatRevalidate(now))
	return writeDocument(path, doc)
}

// Get returns the value at a gjson path (for example "features.i18n" or
// "codeStyle.lineWidth") from the config file at path.
func Get(path, field string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return gjson.Result{}, ErrConfigNotFound
		}
		return gjson.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	std, err := standardize(data)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("parse %s: %w", path, err)
	}

	res := gjson.GetBytes(std, strings.TrimSpace(field))
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrFieldNotFound, field)
	}
	return res, nil
}
