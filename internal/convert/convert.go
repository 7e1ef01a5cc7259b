// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert invokes an external conversion engine on uploaded
// documents and classifies the outcome. Engines are pluggable: the
// markitdown container image, a remote conversion service, or a test fake.
package convert

import (
	"context"
	"time"

	"github.com/pdiddy/doc2md/internal/artifact"
	"github.com/pdiddy/doc2md/pkg/types"
)

// EmptyResultMessage is the failure reason reported when the engine comes
// back with no text. The exact wording is part of the user-facing contract.
const EmptyResultMessage = "Conversion yielded empty result."

// Engine turns a materialized document into text. The path's filename
// extension is the format hint; implementations must not assume anything
// else about the file.
type Engine interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Convert reads the document at path and returns its text form.
	Convert(ctx context.Context, path string) (string, error)
}

// Outcome is the classified result of one conversion attempt: Success with
// non-empty text, or Failure with a human-readable reason.
type Outcome struct {
	Status types.ConversionStatus
	Text   string
	Reason string
}

// Success reports whether the attempt produced usable text.
func (o Outcome) Success() bool {
	return o.Status == types.ConversionSuccess
}

// Run converts one document through eng: spool the bytes to a temp
// artifact, convert, release the artifact on every exit path. Engine errors
// surface as Failure with the engine's own message; empty engine output
// becomes Failure with EmptyResultMessage. Run never propagates a fault.
func Run(ctx context.Context, eng Engine, doc types.InputDocument) Outcome {
	handle, err := artifact.Spool(doc.Name, doc.Data)
	if err != nil {
		return failure(err.Error())
	}
	defer handle.Release()

	text, err := eng.Convert(ctx, handle.Path())
	if err != nil {
		return failure(err.Error())
	}
	if text == "" {
		return failure(EmptyResultMessage)
	}

	return Outcome{Status: types.ConversionSuccess, Text: text}
}

func failure(reason string) Outcome {
	return Outcome{Status: types.ConversionFailure, Reason: reason}
}

// WithTimeout bounds each conversion through eng to d. A non-positive d
// returns eng unchanged.
func WithTimeout(eng Engine, d time.Duration) Engine {
	if d <= 0 {
		return eng
	}
	return &timeoutEngine{inner: eng, limit: d}
}

type timeoutEngine struct {
	inner Engine
	limit time.Duration
}

func (t *timeoutEngine) Name() string { return t.inner.Name() }

func (t *timeoutEngine) Convert(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()
	return t.inner.Convert(ctx, path)
}
