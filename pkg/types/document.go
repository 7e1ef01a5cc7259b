// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the doc2md conversion
// pipeline.
package types

import (
	"path/filepath"
	"strings"
)

// ConversionStatus classifies the outcome of converting one document.
type ConversionStatus string

const (
	ConversionSuccess ConversionStatus = "success"
	ConversionFailure ConversionStatus = "failure"
)

// KnownExtensions lists the input formats the conversion engine is expected to
// handle. The list is advisory: inputs with other extensions are passed through
// and the engine's own verdict stands.
var KnownExtensions = []string{".pptx", ".docx", ".xlsx", ".pdf", ".html", ".htm"}

// InputDocument is one uploaded file. Name is the identity key for
// session-level deduplication; Data is immutable once captured and is not
// retained after a ConversionResult has been produced.
type InputDocument struct {
	// Name is the original filename, extension included.
	Name string `json:"name" yaml:"name"`

	// Data is the uploaded content.
	Data []byte `json:"-" yaml:"-"`

	// Size is the original length in bytes.
	Size int64 `json:"size" yaml:"size"`
}

// NewInputDocument captures an uploaded file's name and bytes.
func NewInputDocument(name string, data []byte) InputDocument {
	return InputDocument{Name: name, Data: data, Size: int64(len(data))}
}

// ConversionResult is the recorded outcome of converting one named document.
// A session's ledger holds at most one result per Name.
type ConversionResult struct {
	// Name is the dedup key, unique across the session ledger.
	Name string `json:"name" yaml:"name"`

	// Status is success or failure.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Text is the converted output; set only on success and never empty.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// ErrorMessage describes what went wrong; set only on failure.
	ErrorMessage string `json:"error,omitempty" yaml:"error,omitempty"`

	// OriginalSize is the uploaded size in bytes.
	OriginalSize int64 `json:"original_size" yaml:"original_size"`

	// ConvertedSize is the UTF-8 byte length of Text; set only on success.
	ConvertedSize int64 `json:"converted_size" yaml:"converted_size"`
}

// BaseName returns the result's filename with its extension removed. Download
// names derive from it: <base>.md and <base>.txt.
func (r ConversionResult) BaseName() string {
	return strings.TrimSuffix(r.Name, filepath.Ext(r.Name))
}

// SizeReport compares a document's original and converted sizes. It is derived
// from a ConversionResult on demand and never stored.
type SizeReport struct {
	// Name is the source document's filename.
	Name string `json:"name" yaml:"name"`

	// OriginalBytes is the uploaded size in bytes.
	OriginalBytes int64 `json:"original_bytes" yaml:"original_bytes"`

	// ConvertedBytes is the converted text's size in bytes.
	ConvertedBytes int64 `json:"converted_bytes" yaml:"converted_bytes"`

	// Original is OriginalBytes in human-scaled form (e.g. "1.50 KB").
	Original string `json:"original" yaml:"original"`

	// Converted is ConvertedBytes in human-scaled form.
	Converted string `json:"converted" yaml:"converted"`

	// Reduction is the percentage decrease, e.g. "60.0% smaller", or "N/A"
	// when the original size is zero.
	Reduction string `json:"reduction" yaml:"reduction"`

	// Improvement is true when the converted form is strictly smaller.
	Improvement bool `json:"improvement" yaml:"improvement"`
}
