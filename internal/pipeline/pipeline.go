// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives batches of documents through a conversion engine,
// deduplicating against the session ledger and fanning the work out to a
// bounded pool of workers.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/doc2md/internal/convert"
	"github.com/pdiddy/doc2md/internal/history"
	"github.com/pdiddy/doc2md/internal/session"
	"github.com/pdiddy/doc2md/pkg/types"
)

// DefaultParallel bounds the worker pool when Runner.Parallel is unset.
const DefaultParallel = 4

// Status classifies what a batch run did with one document.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// FileResult reports the disposition of a single document in a batch.
type FileResult struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	// Reason carries the failure message; empty for converted and skipped.
	Reason string `json:"reason,omitempty"`
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Runner executes conversion batches. Engine and Ledger must be set; the
// remaining fields are optional.
type Runner struct {
	// Engine performs the individual conversions.
	Engine convert.Engine
	// Ledger records successes for the session. Documents whose names it
	// already holds are skipped without touching the engine.
	Ledger *session.Ledger
	// History, when non-nil, receives an audit row per converted document.
	History *history.Store
	// OutDir, when non-empty, receives <base>.md and <base>.txt per success.
	OutDir string
	// Parallel bounds concurrent conversions. Zero or negative means
	// DefaultParallel; 1 converts sequentially.
	Parallel int
}

// Process converts docs through the engine, writing per-file progress lines
// and a closing summary to w. It returns the per-document dispositions in
// input order plus the batch tally. Names already in the ledger, or repeated
// within docs, are skipped. A failed document never aborts the batch; its
// error lands in the corresponding FileResult. The returned error is non-nil
// only when ctx ended before the batch settled.
func (r *Runner) Process(ctx context.Context, docs []types.InputDocument, w io.Writer) ([]FileResult, BatchResult, error) {
	type slot struct {
		doc     types.InputDocument
		skip    bool
		outcome convert.Outcome
	}

	slots := make([]slot, len(docs))
	seen := make(map[string]bool, len(docs))
	for i, doc := range docs {
		slots[i].doc = doc
		if r.Ledger.Has(doc.Name) || seen[doc.Name] {
			slots[i].skip = true
			continue
		}
		seen[doc.Name] = true
	}

	workers := r.Parallel
	if workers <= 0 {
		workers = DefaultParallel
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range slots {
		if slots[i].skip {
			continue
		}
		s := &slots[i]
		eg.Go(func() error {
			// A failure lands in its slot; it must not cancel the
			// rest of the batch.
			s.outcome = convert.Run(gctx, r.Engine, s.doc)
			return nil
		})
	}
	// Workers always return nil, so Wait is purely a join.
	_ = eg.Wait()

	var result BatchResult
	files := make([]FileResult, 0, len(slots))
	for i := range slots {
		s := &slots[i]
		fr := r.settle(ctx, s.doc, s.skip, s.outcome, w)
		files = append(files, fr)
		switch fr.Status {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return files, result, ctx.Err()
}

// ProcessPaths loads the named files from disk and runs them through Process.
func (r *Runner) ProcessPaths(ctx context.Context, paths []string, w io.Writer) ([]FileResult, BatchResult, error) {
	docs, err := LoadFiles(paths)
	if err != nil {
		return nil, BatchResult{}, err
	}
	return r.Process(ctx, docs, w)
}

// LoadFiles reads the named files into InputDocuments, preserving order.
// Document names are the path basenames, so two paths with the same filename
// deduplicate against each other.
func LoadFiles(paths []string) ([]types.InputDocument, error) {
	docs := make([]types.InputDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, types.NewInputDocument(filepath.Base(p), data))
	}
	return docs, nil
}

// settle finishes one document after its worker ran: output files, ledger
// record, history row, progress line.
func (r *Runner) settle(ctx context.Context, doc types.InputDocument, skip bool, outcome convert.Outcome, w io.Writer) FileResult {
	if skip {
		fmt.Fprintf(w, "skipped: %s (already converted)\n", doc.Name)
		return FileResult{Name: doc.Name, Status: StatusSkipped}
	}
	if !outcome.Success() {
		fmt.Fprintf(w, "failed:  %s (%s)\n", doc.Name, outcome.Reason)
		return FileResult{Name: doc.Name, Status: StatusFailed, Reason: outcome.Reason}
	}

	res := types.ConversionResult{
		Name:          doc.Name,
		Status:        types.ConversionSuccess,
		Text:          outcome.Text,
		OriginalSize:  doc.Size,
		ConvertedSize: int64(len(outcome.Text)),
	}

	if r.OutDir != "" {
		if err := r.writeOutputs(res); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc.Name, err)
			return FileResult{Name: doc.Name, Status: StatusFailed, Reason: err.Error()}
		}
	}

	if !r.Ledger.RecordSuccess(res) {
		// Another batch recorded this name between our pre-pass and now.
		fmt.Fprintf(w, "skipped: %s (already converted)\n", doc.Name)
		return FileResult{Name: doc.Name, Status: StatusSkipped}
	}

	if r.History != nil {
		if err := r.History.Record(ctx, res, r.Engine.Name()); err != nil {
			fmt.Fprintf(w, "warning: recording history for %s: %v\n", doc.Name, err)
		}
	}

	fmt.Fprintf(w, "converted: %s\n", doc.Name)
	return FileResult{Name: doc.Name, Status: StatusConverted}
}

// writeOutputs writes the converted text to <base>.md and <base>.txt under
// OutDir. The two files carry identical bytes.
func (r *Runner) writeOutputs(res types.ConversionResult) error {
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data := []byte(res.Text)
	for _, ext := range []string{".md", ".txt"} {
		path := filepath.Join(r.OutDir, res.BaseName()+ext)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
