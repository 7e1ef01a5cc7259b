// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the per-session result ledger: a deduplicated,
// insertion-ordered collection of successful conversions. A session is one
// CLI run or one server process; the ledger lives and dies with it.
package session

import (
	"sync"

	"github.com/pdiddy/doc2md/pkg/types"
)

// Ledger accumulates successful conversion results, keyed by document name.
// It is the single source of truth for the results and size-report views.
// Safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	order  []string
	byName map[string]types.ConversionResult
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byName: make(map[string]types.ConversionResult)}
}

// Has reports whether a result for name is already recorded. The pipeline
// checks this before converting, making resubmission of a name a cheap skip.
func (l *Ledger) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.byName[name]
	return ok
}

// RecordSuccess stores a successful result. The first record for a name
// wins: recording a name already present is a no-op returning false.
// Failures never enter the ledger; there is no record-failure operation.
func (l *Ledger) RecordSuccess(res types.ConversionResult) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byName[res.Name]; ok {
		return false
	}
	l.byName[res.Name] = res
	l.order = append(l.order, res.Name)
	return true
}

// Get returns the recorded result for name.
func (l *Ledger) Get(name string) (types.ConversionResult, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, ok := l.byName[name]
	return res, ok
}

// List returns all recorded results in insertion order, as a copy.
func (l *Ledger) List() []types.ConversionResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.ConversionResult, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.byName[name])
	}
	return out
}

// Len returns the number of recorded results.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
