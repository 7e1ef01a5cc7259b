// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact manages the transient on-disk form of an uploaded
// document: spool the bytes to a temp file the conversion engine can
// address, then release the file once the attempt is over.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Handle addresses one spooled artifact. Handles are independent and live
// only for the duration of a single conversion attempt.
type Handle struct {
	path string
	ext  string
}

// Path returns the artifact's filesystem location.
func (h Handle) Path() string { return h.path }

// Ext returns the artifact's filename extension, dot included, or "" when
// the source name had none. Engines use it as the format hint.
func (h Handle) Ext() string { return h.ext }

// Spool writes data to a private temp file whose name keeps the extension
// of name, so format detection keyed on the suffix still works.
func Spool(name string, data []byte) (Handle, error) {
	ext := filepath.Ext(name)

	f, err := os.CreateTemp("", "doc2md-*"+ext)
	if err != nil {
		return Handle{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return Handle{}, fmt.Errorf("writing artifact: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return Handle{}, fmt.Errorf("closing artifact: %w", closeErr)
	}

	return Handle{path: tmpPath, ext: ext}, nil
}

// Release removes the artifact. Every spooled handle must be released
// exactly once; releasing an already-removed artifact is not an error.
func (h Handle) Release() error {
	if h.path == "" {
		return nil
	}
	if err := os.Remove(h.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing artifact: %w", err)
	}
	return nil
}
