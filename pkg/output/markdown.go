package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/wareader/pkg/parser"
)

// DefaultGlamourStyle is the standard style used when rendering Markdown.
const DefaultGlamourStyle = "dark"

// MarkdownFormatter formats reports as Markdown, optionally rendered for the
// terminal with glamour.
type MarkdownFormatter struct {
	opts FormatOptions
	now  func() time.Time
}

// NewMarkdownFormatter creates a new Markdown formatter with the given options.
func NewMarkdownFormatter(opts FormatOptions) *MarkdownFormatter {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	return &MarkdownFormatter{opts: opts, now: time.Now}
}

// Name returns the format name.
func (f *MarkdownFormatter) Name() string {
	return "markdown"
}

// Format renders the report as Markdown.
func (f *MarkdownFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	return f.write(f.build(report), w)
}

// FormatAll renders the reports as one document separated by rules.
func (f *MarkdownFormatter) FormatAll(ctx context.Context, reports []*Report, w io.Writer) error {
	parts := make([]string, 0, len(reports))
	for _, r := range reports {
		parts = append(parts, f.build(r))
	}
	return f.write(strings.Join(parts, "\n---\n\n"), w)
}

func (f *MarkdownFormatter) build(report *Report) string {
	if f.opts.Quiet {
		return fmt.Sprintf("**%s**: %s\n", report.Source, countLine(report))
	}
	return BuildMarkdown(report, f.opts.Verbose, f.now())
}

func (f *MarkdownFormatter) write(md string, w io.Writer) error {
	if f.opts.Render {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(DefaultGlamourStyle),
			glamour.WithWordWrap(f.opts.Width),
		)
		if err != nil {
			return fmt.Errorf("creating markdown renderer: %w", err)
		}
		rendered, err := r.Render(md)
		if err != nil {
			return fmt.Errorf("rendering markdown: %w", err)
		}
		md = rendered
	}
	_, err := io.WriteString(w, md)
	return err
}

// BuildMarkdown renders a report as a Markdown transcript: a heading per day,
// a bold header per message and notices in italics.
func BuildMarkdown(report *Report, verbose bool, now time.Time) string {
	var b strings.Builder
	b.WriteString("# " + report.Source + "\n\n")

	if len(report.Records) == 0 {
		b.WriteString("_No messages found._\n")
		return b.String()
	}

	day := ""
	for _, rec := range report.Records {
		if d := rec.Day(); d != "" && d != day {
			day = d
			b.WriteString("## " + FormatDay(d, now) + "\n\n")
		}

		switch v := rec.(type) {
		case *parser.SystemNotice:
			b.WriteString("_" + parser.UnescapeContent(v.Content) + "_\n\n")
		case *parser.UserMessage:
			header := "**" + v.Sender + "**"
			switch {
			case v.Outgoing:
				header = "**You**"
			case !ShowSender(v, len(report.Participants), report.Self):
				header = "**" + v.Sender + "** ←"
			}
			b.WriteString(header + " · " + v.Time + "\n\n")
			for _, line := range strings.Split(DisplayContent(v), "\n") {
				b.WriteString("> " + linkify(line) + "\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n\n")
	b.WriteString(countLine(report) + "\n")

	if verbose && report.Summary != nil && len(report.Summary.Participants) > 0 {
		b.WriteString("\n| Participant | Messages | Words | Media |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, p := range report.Summary.Participants {
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
				p.Name, humanize.Comma(int64(p.Messages)), humanize.Comma(int64(p.Words)), p.Media)
		}
	}

	return b.String()
}
