package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ccollicutt/wareader/pkg/output"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// minWidth is the narrowest layout the renderer attempts.
const minWidth = 24

// renderTranscript lays the report out as chat bubbles: incoming on the left,
// outgoing on the right, notices and day separators centered. Occurrences of
// query are highlighted.
func renderTranscript(report *output.Report, width int, query string, now time.Time) string {
	if width < minWidth {
		width = minWidth
	}
	if report == nil {
		return ""
	}
	if len(report.Records) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, noticeStyle.Render("No messages found"))
	}

	var blocks []string
	day := ""
	for _, rec := range report.Records {
		if d := rec.Day(); d != "" && d != day {
			day = d
			blocks = append(blocks, "", lipgloss.PlaceHorizontal(width, lipgloss.Center,
				separatorStyle.Render(output.FormatDay(d, now))))
		}

		switch v := rec.(type) {
		case *parser.SystemNotice:
			text := ansi.Wordwrap(highlight(parser.UnescapeContent(v.Content), query), width*3/4, " ")
			blocks = append(blocks, lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Align(lipgloss.Center).Render(noticeStyle.Render(text))))
		case *parser.UserMessage:
			blocks = append(blocks, renderBubble(v, report, width, query))
		}
	}

	return strings.Join(blocks, "\n")
}

func renderBubble(m *parser.UserMessage, report *output.Report, width int, query string) string {
	color := report.Colors[m.Sender]
	if m.Outgoing {
		color = outgoingColor
	}

	// Border and padding take four columns.
	inner := width*3/4 - 4
	if inner < minWidth-4 {
		inner = minWidth - 4
	}

	var lines []string
	if output.ShowSender(m, len(report.Participants), report.Self) {
		lines = append(lines, senderStyle(color).Render(ansi.Truncate(m.Sender, inner, "…")))
	}

	body := output.DisplayContent(m)
	if m.IsMedia || m.IsDeleted {
		body = flagStyle.Render(highlight(body, query))
	} else {
		body = highlight(body, query)
	}
	lines = append(lines, ansi.Wordwrap(body, inner, " "))
	lines = append(lines, timeStyle.Render(m.Time))

	content := strings.Join(lines, "\n")
	contentWidth := 0
	for _, l := range strings.Split(content, "\n") {
		if w := ansi.StringWidth(l); w > contentWidth {
			contentWidth = w
		}
	}
	if contentWidth > inner {
		contentWidth = inner
	}

	bubble := bubbleStyle(color).Width(contentWidth + 2).Render(content)
	if m.Outgoing {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}
	return bubble
}

// highlight wraps case-insensitive occurrences of query in the match style.
func highlight(text, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return text
	}
	lower := strings.ToLower(text)
	q := strings.ToLower(query)
	if len(lower) != len(text) {
		// Case folding changed byte offsets; leave the text as is.
		return text
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, q)
		if i < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:i])
		b.WriteString(searchMatchStyle.Render(text[i : i+len(q)]))
		text, lower = text[i+len(q):], lower[i+len(q):]
	}
	return b.String()
}

// matchingLines returns the indices of rendered lines whose visible text
// contains query.
func matchingLines(rendered, query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []int
	for i, line := range strings.Split(rendered, "\n") {
		if strings.Contains(strings.ToLower(ansi.Strip(line)), q) {
			out = append(out, i)
		}
	}
	return out
}
