// Package output provides formatting and output generation for parse results.
package output

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollicutt/wareader/pkg/analyzer"
	"github.com/ccollicutt/wareader/pkg/palette"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// Report is the complete output for one transcript.
type Report struct {
	// Source names the parsed input.
	Source string `json:"source"`

	// Self is the perspective the records were relabelled for, if any.
	Self string `json:"self,omitempty"`

	// Participants are the distinct senders in first-appearance order.
	Participants []string `json:"participants"`

	// Colors maps each participant to a display colour.
	Colors map[string]string `json:"colors"`

	// Records are in file order with Outgoing set for Self.
	Records []parser.Record `json:"records"`

	// Summary provides aggregate statistics.
	Summary *analyzer.Result `json:"summary"`

	// Metadata provides context about the parse.
	Metadata Metadata `json:"metadata"`
}

// Metadata provides context about the parse run.
type Metadata struct {
	// ID is the store identifier when the transcript was saved or loaded.
	ID string `json:"id,omitempty"`

	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Duration is how long the parse took.
	Duration time.Duration `json:"duration_ns,omitempty"`

	// Lines, Continuations and Discarded describe the parse pass. They are
	// zero for transcripts loaded from the store.
	Lines         int `json:"lines,omitempty"`
	Continuations int `json:"continuations,omitempty"`
	Discarded     int `json:"discarded,omitempty"`
}

// ReportOptions controls how NewReport builds a report.
type ReportOptions struct {
	Self       string
	Colors     []string
	ConfigFile string
	ID         string
	Duration   time.Duration
}

// NewReport relabels t for opts.Self, computes its statistics and assigns
// participant colours. t itself is not modified.
func NewReport(ctx context.Context, t *parser.Transcript, opts ReportOptions) (*Report, error) {
	relabelled := parser.Relabel(t, opts.Self)

	a, err := analyzer.New()
	if err != nil {
		return nil, err
	}
	summary, err := a.Analyze(ctx, relabelled)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", t.Source, err)
	}

	report := &Report{
		Source:       relabelled.Source,
		Self:         opts.Self,
		Participants: relabelled.Participants,
		Colors:       palette.Assign(relabelled.Participants, opts.Colors),
		Records:      relabelled.Records,
		Summary:      summary,
		Metadata: Metadata{
			ID:          opts.ID,
			ConfigFile:  opts.ConfigFile,
			GeneratedAt: time.Now().UTC(),
			Duration:    opts.Duration,
		},
	}

	if s := relabelled.Stats; s != nil {
		report.Metadata.Lines = s.Lines
		report.Metadata.Continuations = s.Continuations
		report.Metadata.Discarded = s.Discarded
	}

	return report, nil
}

// HasMessages returns true if the transcript holds at least one user message.
func (r *Report) HasMessages() bool {
	return r.Summary != nil && r.Summary.Totals.UserMessages > 0
}
