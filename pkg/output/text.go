package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ccollicutt/wareader/pkg/palette"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// TextFormatter formats reports as a readable plain-text transcript. Sender
// names are coloured when w is a terminal.
type TextFormatter struct {
	opts FormatOptions
	now  func() time.Time
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts, now: time.Now}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

// FormatAll renders each report in turn, separated by a blank line.
func (f *TextFormatter) FormatAll(ctx context.Context, reports []*Report, w io.Writer) error {
	for i, report := range reports {
		if i > 0 && !f.opts.Quiet {
			fmt.Fprintln(w)
		}
		if err := f.Format(ctx, report, w); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "wareader: %s: %s\n", report.Source, countLine(report))
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	notice := r.NewStyle().Faint(true).Italic(true)
	separator := r.NewStyle().Faint(true)

	fmt.Fprintln(w, header.Render(fmt.Sprintf("=== %s ===", report.Source)))
	if len(report.Participants) > 0 {
		fmt.Fprintf(w, "Participants: %s\n", strings.Join(palette.Sorted(report.Participants), ", "))
	}
	if report.Self != "" {
		fmt.Fprintf(w, "Perspective: %s\n", report.Self)
	}
	fmt.Fprintln(w)

	if len(report.Records) == 0 {
		fmt.Fprintln(w, "  No messages found")
		fmt.Fprintln(w)
	}

	now := f.now()
	day := ""
	for _, rec := range report.Records {
		if d := rec.Day(); d != "" && d != day {
			day = d
			fmt.Fprintln(w, separator.Render(fmt.Sprintf("--- %s ---", FormatDay(d, now))))
		}

		switch v := rec.(type) {
		case *parser.SystemNotice:
			fmt.Fprintf(w, "  %s\n", notice.Render(parser.UnescapeContent(v.Content)))
		case *parser.UserMessage:
			sender := r.NewStyle().Bold(true).Foreground(lipgloss.Color(report.Colors[v.Sender]))
			f.formatMessage(v, report, sender, w)
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %s\n", countLine(report))

	if f.opts.Verbose {
		f.formatStats(report, now, w)
	}

	return nil
}

func (f *TextFormatter) formatMessage(m *parser.UserMessage, report *Report, sender lipgloss.Style, w io.Writer) {
	var prefix string
	switch {
	case m.Outgoing:
		prefix = "→ "
	case ShowSender(m, len(report.Participants), report.Self):
		prefix = sender.Render(m.Sender) + ": "
	default:
		prefix = "← "
	}

	lines := strings.Split(DisplayContent(m), "\n")
	fmt.Fprintf(w, "[%s] %s%s\n", m.Time, prefix, lines[0])
	for _, line := range lines[1:] {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func (f *TextFormatter) formatStats(report *Report, now time.Time, w io.Writer) {
	s := report.Summary
	if s == nil {
		return
	}

	if len(s.Participants) > 0 {
		fmt.Fprintln(w, "Participants:")
		for _, p := range s.Participants {
			fmt.Fprintf(w, "  %-2s %s: %s message(s) (%.1f%%), %s word(s)",
				palette.Initials(p.Name), p.Name,
				humanize.Comma(int64(p.Messages)),
				p.Share(s.Totals.UserMessages)*100,
				humanize.Comma(int64(p.Words)))
			if p.Media > 0 {
				fmt.Fprintf(w, ", %d media", p.Media)
			}
			fmt.Fprintln(w)
		}
	}

	if s.BusiestDay != nil {
		fmt.Fprintf(w, "Busiest day: %s (%s message(s))\n",
			FormatDay(s.BusiestDay.Date, now), humanize.Comma(int64(s.BusiestDay.Messages)))
	}
	if s.Totals.Media+s.Totals.Deleted+s.Totals.Edited > 0 {
		fmt.Fprintf(w, "Media: %d, deleted: %d, edited: %d\n", s.Totals.Media, s.Totals.Deleted, s.Totals.Edited)
	}
	if report.Self != "" {
		fmt.Fprintf(w, "Sent: %d, received: %d\n", s.Totals.Outgoing, s.Totals.Incoming)
	}

	if report.Metadata.Lines > 0 {
		fmt.Fprintf(w, "Lines processed: %s\n", humanize.Comma(int64(report.Metadata.Lines)))
		fmt.Fprintf(w, "Continuations: %d, discarded: %d\n", report.Metadata.Continuations, report.Metadata.Discarded)
	}
	if report.Metadata.Duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
	}
}

// countLine summarizes a report as "1,234 messages, 2 notices, 3 participants".
func countLine(report *Report) string {
	var messages, notices int
	if report.Summary != nil {
		messages = report.Summary.Totals.UserMessages
		notices = report.Summary.Totals.SystemNotices
	}
	return fmt.Sprintf("%s message(s), %s notice(s), %d participant(s)",
		humanize.Comma(int64(messages)),
		humanize.Comma(int64(notices)),
		len(report.Participants))
}
