package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders parse reports in a specific format.
type Formatter interface {
	// Format renders a single report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// FormatAll renders several reports, one per input file, as one document.
	FormatAll(ctx context.Context, reports []*Report, w io.Writer) error

	// Name returns the format name (text, json, markdown).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds participant and per-day statistics plus parse metadata.
	Verbose bool

	// Quiet reduces output to the summary.
	Quiet bool

	// Render passes Markdown through the terminal renderer.
	Render bool

	// Width is the wrap width for rendered Markdown (default 80).
	Width int
}

// New returns the formatter registered under name.
func New(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(opts), nil
	case "json":
		return NewJSONFormatter(opts), nil
	case "markdown", "md":
		return NewMarkdownFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (must be text, json, or markdown)", name)
	}
}
