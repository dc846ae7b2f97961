package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/wareader/pkg/analyzer"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		// Quiet mode: just summary
		return encoder.Encode(report.Summary)
	}

	return encoder.Encode(report)
}

// FormatAll renders the reports as one JSON array, so the output stays a
// single document however many inputs were parsed.
func (f *JSONFormatter) FormatAll(ctx context.Context, reports []*Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		summaries := make([]*analyzer.Result, 0, len(reports))
		for _, r := range reports {
			summaries = append(summaries, r.Summary)
		}
		return encoder.Encode(summaries)
	}

	if reports == nil {
		reports = []*Report{}
	}
	return encoder.Encode(reports)
}
