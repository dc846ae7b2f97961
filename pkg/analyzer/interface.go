package analyzer

import (
	"context"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// Collector accumulates one family of statistics over a transcript.
type Collector interface {
	// Name returns the collector name used for filtering and reporting.
	Name() string

	// Process handles a single record, updating internal state.
	Process(ctx context.Context, record parser.Record) error

	// Finalize writes the collected statistics into result.
	// Called after all records have been processed.
	Finalize(ctx context.Context, result *Result) error

	// Reset clears internal state for reuse.
	Reset()
}
